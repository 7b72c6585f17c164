package repository

import (
	"context"

	"github.com/fwwzhai/thrifty-backend/internal/domain/entity"
)

type InboxRepository interface {
	// Put upserts by entry id; callers that need idempotent delivery
	// (the sale fan-out) use a deterministic id.
	Put(ctx context.Context, entry *entity.InboxEntry) error
	ListByRecipient(ctx context.Context, userID string) ([]entity.InboxEntry, error)
	CountUnread(ctx context.Context, userID string) (int64, error)

	// MarkRead is a no-op when the entry is already read; it returns
	// ErrNotFound when the entry does not exist.
	MarkRead(ctx context.Context, userID, entryID string) error
	Delete(ctx context.Context, userID, entryID string) error

	// Watch emits a signal whenever the user's inbox changes; the
	// channel closes when ctx is cancelled.
	Watch(ctx context.Context, userID string) (<-chan struct{}, error)
}
