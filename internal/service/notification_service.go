package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fwwzhai/thrifty-backend/internal/domain/entity"
	"github.com/fwwzhai/thrifty-backend/internal/platform/logger"
	"github.com/fwwzhai/thrifty-backend/internal/repository"
)

// InboxSnapshot is one emission of a live inbox subscription: the
// entries newest-first plus the derived unread count.
type InboxSnapshot struct {
	Entries     []entity.InboxEntry `json:"entries"`
	UnreadCount int64               `json:"unread_count"`
}

// InboxSubscription mirrors FeedSubscription for the inbox.
type InboxSubscription struct {
	updates chan InboxSnapshot
	cancel  context.CancelFunc
	done    chan struct{}
}

func (s *InboxSubscription) Updates() <-chan InboxSnapshot {
	return s.updates
}

func (s *InboxSubscription) Cancel() {
	s.cancel()
	<-s.done
}

type NotificationService struct {
	inbox repository.InboxRepository
	log   logger.Logger
}

func NewNotificationService(inbox repository.InboxRepository, log logger.Logger) *NotificationService {
	return &NotificationService{inbox: inbox, log: log}
}

// Subscribe opens a live view of the user's inbox. The first snapshot
// is emitted immediately; later ones follow every change to the user's
// entries.
func (n *NotificationService) Subscribe(ctx context.Context, userID string) (*InboxSubscription, error) {
	subCtx, cancel := context.WithCancel(ctx)

	signals, err := n.inbox.Watch(subCtx, userID)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to watch inbox: %w", err)
	}

	sub := &InboxSubscription{
		updates: make(chan InboxSnapshot, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go func() {
		defer close(sub.done)
		defer close(sub.updates)

		emit := func() {
			snapshot, err := n.Snapshot(subCtx, userID)
			if err != nil {
				if subCtx.Err() != nil {
					return
				}
				n.log.Errorf("inbox query failed for user %s: %v", userID, err)
				return
			}
			select {
			case sub.updates <- *snapshot:
			case <-subCtx.Done():
			default:
				select {
				case <-sub.updates:
				default:
				}
				select {
				case sub.updates <- *snapshot:
				case <-subCtx.Done():
				}
			}
		}

		emit()
		for {
			select {
			case <-subCtx.Done():
				return
			case _, ok := <-signals:
				if !ok {
					return
				}
				emit()
			}
		}
	}()

	return sub, nil
}

// Snapshot reads the inbox once.
func (n *NotificationService) Snapshot(ctx context.Context, userID string) (*InboxSnapshot, error) {
	entries, err := n.inbox.ListByRecipient(ctx, userID)
	if err != nil {
		return nil, err
	}

	var unread int64
	for i := range entries {
		if !entries[i].Read {
			unread++
		}
	}
	return &InboxSnapshot{Entries: entries, UnreadCount: unread}, nil
}

// MarkRead transitions an entry to read. Marking an already-read entry
// is a no-op; a missing entry is ErrNotFound.
func (n *NotificationService) MarkRead(ctx context.Context, userID, entryID string) error {
	if err := n.inbox.MarkRead(ctx, userID, entryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return entity.ErrNotFound
		}
		return err
	}
	return nil
}

func (n *NotificationService) Delete(ctx context.Context, userID, entryID string) error {
	if err := n.inbox.Delete(ctx, userID, entryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return entity.ErrNotFound
		}
		return err
	}
	return nil
}

func (n *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return n.inbox.CountUnread(ctx, userID)
}
