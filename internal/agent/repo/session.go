package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"

	"github.com/sharpchat/server/internal/agent/model"
	errx "github.com/sharpchat/server/internal/core/error"
	logx "github.com/sharpchat/server/pkg/logger"
)

// RedisSessionRepository persists one ConversationState per thread as a
// message list plus a scalar hash. Distinct threads never share keys, so
// concurrent access across threads is safe by construction.
type RedisSessionRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisSessionRepository(rdb redis.Cmdable, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisSessionRepository) messagesKey(threadID string) string {
	return fmt.Sprintf("thread:%s:messages", threadID)
}

func (r *RedisSessionRepository) stateKey(threadID string) string {
	return fmt.Sprintf("thread:%s:state", threadID)
}

// Load returns the persisted state for threadID, or a fresh default state
// when the thread has never been seen. It never fails with not-found.
func (r *RedisSessionRepository) Load(ctx context.Context, threadID string) (*model.ConversationState, error) {
	state := &model.ConversationState{ThreadID: threadID, Messages: []*schema.Message{}}

	rows, err := r.rdb.LRange(ctx, r.messagesKey(threadID), 0, -1).Result()
	if err != nil && err != redis.Nil {
		logx.Error().Err(err).Str("thread_id", threadID).Msg("failed to load conversation messages")
		return nil, errx.WrapRedis(err)
	}
	for i, row := range rows {
		var m schema.Message
		if err := json.Unmarshal([]byte(row), &m); err != nil {
			return nil, fmt.Errorf("unmarshal message at index %d: %w", i, err)
		}
		state.Messages = append(state.Messages, &m)
	}

	fields, err := r.rdb.HGetAll(ctx, r.stateKey(threadID)).Result()
	if err != nil && err != redis.Nil {
		logx.Error().Err(err).Str("thread_id", threadID).Msg("failed to load conversation state")
		return nil, errx.WrapRedis(err)
	}

	state.BusinessID = fields["business_id"]
	state.BusinessName = fields["business_name"]
	state.BusinessEmail = fields["business_email"]
	state.UserEmail = fields["user_email"]
	state.UserPhone = fields["user_phone"]
	if m, ok := model.ParseContactMethod(fields["preferred_contact"]); ok {
		state.PreferredContact = m
	}
	if route, ok := model.ParseRoute(fields["route"]); ok {
		state.Route = route
	}
	state.EmailSent = fields["email_sent"] == "1"

	return state, nil
}

// Save merges a delta into the persisted state: message deltas append to the
// list, scalar deltas overwrite their hash field. Nil scalars are left alone.
func (r *RedisSessionRepository) Save(ctx context.Context, threadID string, delta model.StateDelta) error {
	msgKey := r.messagesKey(threadID)
	stKey := r.stateKey(threadID)

	for _, msg := range delta.Append {
		b, err := json.Marshal(msg)
		if err != nil {
			logx.Error().Err(err).Str("thread_id", threadID).Msg("failed to marshal message")
			return fmt.Errorf("marshal message: %w", err)
		}
		if err := r.rdb.RPush(ctx, msgKey, b).Err(); err != nil {
			logx.Error().Err(err).Str("key", msgKey).Msg("failed to push message to redis")
			return errx.WrapRedis(err)
		}
	}

	fields := scalarFields(delta)
	if len(fields) > 0 {
		if err := r.rdb.HSet(ctx, stKey, fields).Err(); err != nil {
			logx.Error().Err(err).Str("key", stKey).Msg("failed to save conversation state")
			return errx.WrapRedis(err)
		}
	}

	// extend TTL on touch
	if r.ttl > 0 {
		for _, key := range []string{msgKey, stKey} {
			if ok, err := r.rdb.Expire(ctx, key, r.ttl).Result(); err != nil {
				logx.Error().Err(err).Str("key", key).Msg("failed to set expire")
				return errx.WrapRedis(err)
			} else if !ok {
				logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("failed to set TTL on session key")
			}
		}
	}

	return nil
}

// Delete removes the thread outright; the next Load recreates a fresh state.
func (r *RedisSessionRepository) Delete(ctx context.Context, threadID string) error {
	if err := r.rdb.Del(ctx, r.messagesKey(threadID), r.stateKey(threadID)).Err(); err != nil {
		logx.Error().Err(err).Str("thread_id", threadID).Msg("failed to delete conversation state")
		return errx.WrapRedis(err)
	}
	return nil
}

func scalarFields(delta model.StateDelta) map[string]any {
	fields := map[string]any{}
	if delta.BusinessID != nil {
		fields["business_id"] = *delta.BusinessID
	}
	if delta.BusinessName != nil {
		fields["business_name"] = *delta.BusinessName
	}
	if delta.BusinessEmail != nil {
		fields["business_email"] = *delta.BusinessEmail
	}
	if delta.UserEmail != nil {
		fields["user_email"] = *delta.UserEmail
	}
	if delta.UserPhone != nil {
		fields["user_phone"] = *delta.UserPhone
	}
	if delta.PreferredContact != nil {
		fields["preferred_contact"] = string(*delta.PreferredContact)
	}
	if delta.Route != nil {
		fields["route"] = string(*delta.Route)
	}
	if delta.EmailSent != nil {
		if *delta.EmailSent {
			fields["email_sent"] = "1"
		} else {
			fields["email_sent"] = "0"
		}
	}
	return fields
}

var _ model.SessionRepository = (*RedisSessionRepository)(nil)
