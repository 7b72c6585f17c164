package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fwwzhai/thrifty-backend/internal/domain/entity"
	"github.com/fwwzhai/thrifty-backend/internal/platform/logger"
	"github.com/fwwzhai/thrifty-backend/internal/repository"
)

func inboxEntries() []entity.InboxEntry {
	now := time.Now().UTC()
	return []entity.InboxEntry{
		{ID: "sale-l2", RecipientID: "seller-1", Kind: entity.InboxKindPurchase, Read: false, Timestamp: now},
		{ID: "sale-l1", RecipientID: "seller-1", Kind: entity.InboxKindPurchase, Read: true, Timestamp: now.Add(-time.Hour)},
	}
}

func TestInboxSnapshot_DerivesUnreadCount(t *testing.T) {
	inbox := new(MockInboxRepository)
	svc := NewNotificationService(inbox, logger.NewNoOp())

	inbox.On("ListByRecipient", mock.Anything, "seller-1").Return(inboxEntries(), nil)

	snapshot, err := svc.Snapshot(context.Background(), "seller-1")

	require.NoError(t, err)
	assert.Len(t, snapshot.Entries, 2)
	assert.Equal(t, int64(1), snapshot.UnreadCount)
}

func TestMarkRead_MissingEntry(t *testing.T) {
	inbox := new(MockInboxRepository)
	svc := NewNotificationService(inbox, logger.NewNoOp())

	inbox.On("MarkRead", mock.Anything, "seller-1", "ghost").Return(repository.ErrNotFound)

	err := svc.MarkRead(context.Background(), "seller-1", "ghost")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestMarkRead_AlreadyReadIsNoOp(t *testing.T) {
	inbox := new(MockInboxRepository)
	svc := NewNotificationService(inbox, logger.NewNoOp())

	inbox.On("MarkRead", mock.Anything, "seller-1", "sale-l1").Return(nil)

	err := svc.MarkRead(context.Background(), "seller-1", "sale-l1")
	assert.NoError(t, err)
}

func TestInboxSubscribe_EmitsOnChange(t *testing.T) {
	inbox := new(MockInboxRepository)
	svc := NewNotificationService(inbox, logger.NewNoOp())

	signals := make(chan struct{}, 1)
	inbox.On("Watch", mock.Anything, "seller-1").Return(signals, nil)
	inbox.On("ListByRecipient", mock.Anything, "seller-1").Return(inboxEntries(), nil)

	sub, err := svc.Subscribe(context.Background(), "seller-1")
	require.NoError(t, err)
	defer sub.Cancel()

	select {
	case snapshot := <-sub.Updates():
		assert.Equal(t, int64(1), snapshot.UnreadCount)
	case <-time.After(2 * time.Second):
		t.Fatal("no initial snapshot")
	}

	signals <- struct{}{}
	select {
	case <-sub.Updates():
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot after change signal")
	}
}
