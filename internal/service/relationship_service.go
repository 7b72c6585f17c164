package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fwwzhai/thrifty-backend/internal/app/config"
	"github.com/fwwzhai/thrifty-backend/internal/domain/entity"
	"github.com/fwwzhai/thrifty-backend/internal/platform/logger"
	"github.com/fwwzhai/thrifty-backend/internal/platform/metrics"
	"github.com/fwwzhai/thrifty-backend/internal/repository"
)

// WishlistOutcome reports which way a toggle went.
type WishlistOutcome string

const (
	WishlistAdded   WishlistOutcome = "added"
	WishlistRemoved WishlistOutcome = "removed"
)

// FollowingCache keeps a user's following set hot for feed queries.
// Misses return ok=false; all methods are best effort at call sites.
type FollowingCache interface {
	Get(ctx context.Context, userID string) ([]string, bool, error)
	Store(ctx context.Context, userID string, followingIDs []string) error
	Invalidate(ctx context.Context, userID string) error
}

type RelationshipService struct {
	wishlist repository.WishlistRepository
	follows  repository.FollowRepository
	listings repository.ListingRepository
	cache    FollowingCache
	retry    retryPolicy
	metrics  *metrics.Manager
	log      logger.Logger
}

func NewRelationshipService(
	wishlist repository.WishlistRepository,
	follows repository.FollowRepository,
	listings repository.ListingRepository,
	cache FollowingCache,
	retryCfg config.RetryConfig,
	m *metrics.Manager,
	log logger.Logger,
) *RelationshipService {
	return &RelationshipService{
		wishlist: wishlist,
		follows:  follows,
		listings: listings,
		cache:    cache,
		retry:    newRetryPolicy(retryCfg),
		metrics:  m,
		log:      log,
	}
}

// ToggleWishlist flips membership for (user, listing). Adding snapshots
// the listing's current name, price and primary image; the snapshot is
// never refreshed afterwards. Toggling is last-write-wins under
// concurrency: whichever operation lands second determines the final
// state.
func (s *RelationshipService) ToggleWishlist(ctx context.Context, userID, listingID string) (WishlistOutcome, error) {
	present, err := s.wishlist.Contains(ctx, userID, listingID)
	if err != nil {
		return "", fmt.Errorf("failed to check wishlist membership: %w", err)
	}

	if present {
		if err := s.wishlist.Remove(ctx, userID, listingID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// Raced with another remove; the end state is what the
				// user wanted.
				return WishlistRemoved, nil
			}
			return "", fmt.Errorf("failed to remove wishlist entry: %w", err)
		}
		return WishlistRemoved, nil
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", entity.ErrNotFound
		}
		return "", err
	}

	if err := s.wishlist.Add(ctx, entity.NewWishlistEntry(userID, listing)); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return WishlistAdded, nil
		}
		return "", fmt.Errorf("failed to add wishlist entry: %w", err)
	}
	return WishlistAdded, nil
}

func (s *RelationshipService) IsWishlisted(ctx context.Context, userID, listingID string) (bool, error) {
	return s.wishlist.Contains(ctx, userID, listingID)
}

func (s *RelationshipService) ListWishlist(ctx context.Context, userID string) ([]entity.WishlistEntry, error) {
	return s.wishlist.ListByUser(ctx, userID)
}

// Follow records followerID following targetID. The edge is written
// twice, once per side; the following side is written first because it
// is the read source of truth. If the mirror write fails after retries
// the first write is compensated away and ErrPartialFailure returned.
func (s *RelationshipService) Follow(ctx context.Context, followerID, targetID string) error {
	if followerID == targetID {
		return fmt.Errorf("%w: cannot follow yourself", entity.ErrInvalidOperation)
	}
	now := time.Now().UTC()

	err := s.retry.run(ctx, func() error {
		return s.follows.AddEdge(ctx, repository.SideFollowing, followerID, targetID, now)
	})
	if err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return fmt.Errorf("failed to record follow: %w", err)
	}

	err = s.retry.run(ctx, func() error {
		return s.follows.AddEdge(ctx, repository.SideFollowers, targetID, followerID, now)
	})
	if err != nil && !errors.Is(err, repository.ErrDuplicate) {
		s.compensateFollow(ctx, followerID, targetID)
		s.metrics.FollowSagaFailsTotal.Inc()
		return fmt.Errorf("%w: follow mirror write failed: %v", entity.ErrPartialFailure, err)
	}

	s.invalidateFollowing(ctx, followerID)
	return nil
}

// Unfollow removes both halves of the edge. The following side goes
// first for the same reason it is written first on Follow: reads trust
// it, so it must never claim a relationship the user has ended.
func (s *RelationshipService) Unfollow(ctx context.Context, followerID, targetID string) error {
	err := s.retry.run(ctx, func() error {
		return s.follows.RemoveEdge(ctx, repository.SideFollowing, followerID, targetID)
	})
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to remove follow: %w", err)
	}

	err = s.retry.run(ctx, func() error {
		return s.follows.RemoveEdge(ctx, repository.SideFollowers, targetID, followerID)
	})
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.metrics.FollowSagaFailsTotal.Inc()
		s.invalidateFollowing(ctx, followerID)
		return fmt.Errorf("%w: unfollow mirror removal failed: %v", entity.ErrPartialFailure, err)
	}

	s.invalidateFollowing(ctx, followerID)
	return nil
}

func (s *RelationshipService) compensateFollow(ctx context.Context, followerID, targetID string) {
	err := s.retry.run(ctx, func() error {
		return s.follows.RemoveEdge(ctx, repository.SideFollowing, followerID, targetID)
	})
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.log.Errorf("failed to compensate follow edge %s->%s: %v", followerID, targetID, err)
	}
}

// IsFollowing consults the following side only.
func (s *RelationshipService) IsFollowing(ctx context.Context, followerID, targetID string) (bool, error) {
	return s.follows.HasEdge(ctx, repository.SideFollowing, followerID, targetID)
}

func (s *RelationshipService) ListFollowing(ctx context.Context, userID string) ([]entity.FollowEdge, error) {
	return s.follows.ListEdges(ctx, repository.SideFollowing, userID)
}

func (s *RelationshipService) ListFollowers(ctx context.Context, userID string) ([]entity.FollowEdge, error) {
	return s.follows.ListEdges(ctx, repository.SideFollowers, userID)
}

// FollowingIDs returns the set of user ids the given user follows,
// served from the cache when it is warm.
func (s *RelationshipService) FollowingIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	if s.cache != nil {
		ids, ok, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.log.Warnf("following cache read failed for %s: %v", userID, err)
		} else if ok {
			return idSet(ids), nil
		}
	}

	edges, err := s.follows.ListEdges(ctx, repository.SideFollowing, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list following edges: %w", err)
	}

	ids := make([]string, 0, len(edges))
	for _, edge := range edges {
		ids = append(ids, edge.RelatedID)
	}

	if s.cache != nil {
		if err := s.cache.Store(ctx, userID, ids); err != nil {
			s.log.Warnf("following cache write failed for %s: %v", userID, err)
		}
	}
	return idSet(ids), nil
}

func (s *RelationshipService) invalidateFollowing(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warnf("following cache invalidation failed for %s: %v", userID, err)
	}
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}
