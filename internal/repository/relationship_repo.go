package repository

import (
	"context"
	"time"

	"github.com/fwwzhai/thrifty-backend/internal/domain/entity"
)

type WishlistRepository interface {
	// Contains is the membership predicate: existence of the
	// (user, listing) key, nothing else.
	Contains(ctx context.Context, userID, listingID string) (bool, error)
	Add(ctx context.Context, entry *entity.WishlistEntry) error
	Remove(ctx context.Context, userID, listingID string) error
	ListByUser(ctx context.Context, userID string) ([]entity.WishlistEntry, error)
}

// EdgeSide names which half of a mirrored follow edge a document
// belongs to.
type EdgeSide string

const (
	// SideFollowing edges live under the follower and point at who they
	// follow. This side is the read source of truth.
	SideFollowing EdgeSide = "following"
	// SideFollowers edges live under the target and point back at the
	// follower.
	SideFollowers EdgeSide = "followers"
)

type FollowRepository interface {
	// AddEdge returns ErrDuplicate when the edge already exists, which
	// callers treat as success.
	AddEdge(ctx context.Context, side EdgeSide, ownerID, relatedID string, since time.Time) error
	RemoveEdge(ctx context.Context, side EdgeSide, ownerID, relatedID string) error
	HasEdge(ctx context.Context, side EdgeSide, ownerID, relatedID string) (bool, error)
	ListEdges(ctx context.Context, side EdgeSide, ownerID string) ([]entity.FollowEdge, error)
}
