package model

import "context"

// SessionRepository is the durable keyed store for per-thread conversation
// state. Load never fails with not-found: an unseen thread yields a fresh
// default state. Save merges a StateDelta (messages append, scalars
// overwrite). Delete removes the record outright so the next message
// recreates it.
type SessionRepository interface {
	Load(ctx context.Context, threadID string) (*ConversationState, error)
	Save(ctx context.Context, threadID string, delta StateDelta) error
	Delete(ctx context.Context, threadID string) error
}
