package repository

import (
	"context"

	"github.com/fwwzhai/thrifty-backend/internal/domain/entity"
)

// HistoryRepository stores the two denormalized sides of a completed
// sale. Writes are keyed upserts on (user, listing) so re-running the
// purchase fan-out repairs missing rows without duplicating existing
// ones.
type HistoryRepository interface {
	PutPurchase(ctx context.Context, entry *entity.HistoryEntry) error
	PutSold(ctx context.Context, entry *entity.HistoryEntry) error
	GetPurchase(ctx context.Context, userID, listingID string) (*entity.HistoryEntry, error)
	GetSold(ctx context.Context, userID, listingID string) (*entity.HistoryEntry, error)
	ListPurchases(ctx context.Context, userID string) ([]entity.HistoryEntry, error)
	ListSold(ctx context.Context, userID string) ([]entity.HistoryEntry, error)
}
