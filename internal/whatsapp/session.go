// Package whatsapp implements the channel bootstrap: a small keyed state
// machine that walks a WhatsApp sender from first contact to an active chat
// thread, then hands every message to the routing core.
package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	errx "github.com/sharpchat/server/internal/core/error"
)

// State is the bootstrap phase for one sender.
type State string

const (
	StateInitial          State = "INITIAL"
	StateAwaitingName     State = "AWAITING_NAME"
	StateAwaitingBusiness State = "AWAITING_BUSINESS"
	StateChatting         State = "CHATTING"
)

// valid reports whether s is a phase the machine knows how to resume from.
func (s State) valid() bool {
	switch s {
	case StateInitial, StateAwaitingName, StateAwaitingBusiness, StateChatting:
		return true
	}
	return false
}

// Session is the per-sender bootstrap record, keyed by the sender's number.
// ThreadID is minted fresh on every business selection so conversations with
// different businesses never share history.
type Session struct {
	State      State  `json:"state"`
	Name       string `json:"name,omitempty"`
	BusinessID string `json:"business_id,omitempty"`
	ThreadID   string `json:"thread_id,omitempty"`
}

// SessionStore persists bootstrap sessions. Load yields a fresh INITIAL
// session for an unseen sender; it never reports not-found.
type SessionStore interface {
	Load(ctx context.Context, sender string) (*Session, error)
	Save(ctx context.Context, sender string, s *Session) error
	Delete(ctx context.Context, sender string) error
}

type redisSessionStore struct {
	rdb redis.Cmdable
}

func NewSessionStore(rdb redis.Cmdable) SessionStore {
	return &redisSessionStore{rdb: rdb}
}

func sessionKey(sender string) string {
	return fmt.Sprintf("whatsapp:session:%s", sender)
}

func (s *redisSessionStore) Load(ctx context.Context, sender string) (*Session, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(sender)).Result()
	if err == redis.Nil {
		return &Session{State: StateInitial}, nil
	}
	if err != nil {
		return nil, errx.WrapRedis(err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		// Corrupted record: treat as unseen rather than failing the webhook.
		return &Session{State: StateInitial}, nil
	}
	return &sess, nil
}

func (s *redisSessionStore) Save(ctx context.Context, sender string, sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, sessionKey(sender), raw, 0).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	return nil
}

func (s *redisSessionStore) Delete(ctx context.Context, sender string) error {
	if err := s.rdb.Del(ctx, sessionKey(sender)).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	return nil
}
