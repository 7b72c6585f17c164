package repository

import (
	"context"
	"time"

	"github.com/fwwzhai/thrifty-backend/internal/domain/entity"
)

type MarkSoldParams struct {
	ListingID string
	BuyerID   string
	SoldAt    time.Time
}

type ListingRepository interface {
	Create(ctx context.Context, listing *entity.Listing) error
	GetByID(ctx context.Context, id string) (*entity.Listing, error)

	// MarkSold performs the conditional active->sold transition. It
	// returns ErrConflict when the listing exists but is no longer
	// active (another buyer won the race) and ErrNotFound when it does
	// not exist. At most one caller ever succeeds per listing.
	MarkSold(ctx context.Context, params MarkSoldParams) error

	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]entity.Listing, error)
	List(ctx context.Context) ([]entity.Listing, error)

	// Watch emits a signal whenever the listing collection changes. The
	// channel is closed when ctx is cancelled or the underlying stream
	// ends.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
