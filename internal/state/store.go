package state

import "context"

// Store is the persistence boundary for conversation records.
// Get returns (nil, nil) when no record exists for the user.
// Update is a full-record replacement keyed by UserID.
type Store interface {
	Get(ctx context.Context, userID string) (*Conversation, error)
	Insert(ctx context.Context, conv *Conversation) error
	Update(ctx context.Context, conv *Conversation) error
	Delete(ctx context.Context, userID string) error
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
	Close() error
}

// Compile-time interface checks.
var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
