package service

import (
	"context"
	"fmt"

	"github.com/fwwzhai/thrifty-backend/internal/domain/entity"
	"github.com/fwwzhai/thrifty-backend/internal/platform/logger"
	"github.com/fwwzhai/thrifty-backend/internal/repository"
)

// ImageResolver turns stored object keys into client-fetchable URLs.
type ImageResolver interface {
	PresignGet(ctx context.Context, objectKey string) (string, error)
}

// FeedSubscription is one live feed query. Updates carries a fresh,
// fully filtered and sorted snapshot after every relevant store change;
// the first snapshot arrives without waiting for a change. Cancel is
// synchronous: when it returns, no further snapshots will be emitted.
type FeedSubscription struct {
	updates chan []entity.ListingView
	cancel  context.CancelFunc
	done    chan struct{}
}

func (s *FeedSubscription) Updates() <-chan []entity.ListingView {
	return s.updates
}

func (s *FeedSubscription) Cancel() {
	s.cancel()
	<-s.done
}

type FeedService struct {
	listings repository.ListingRepository
	rels     *RelationshipService
	images   ImageResolver
	log      logger.Logger
}

func NewFeedService(
	listings repository.ListingRepository,
	rels *RelationshipService,
	images ImageResolver,
	log logger.Logger,
) *FeedService {
	return &FeedService{listings: listings, rels: rels, images: images, log: log}
}

// Subscribe opens a live feed for one user. Each snapshot excludes the
// user's own listings, then applies the filter and sort. Sold listings
// stay visible so clients can mark them; status travels on the view.
// Filter parameters are fixed for the subscription's lifetime; changing
// them means a new subscription.
func (f *FeedService) Subscribe(ctx context.Context, userID string, filter entity.FilterSpec) (*FeedSubscription, error) {
	subCtx, cancel := context.WithCancel(ctx)

	signals, err := f.listings.Watch(subCtx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to watch listings: %w", err)
	}

	sub := &FeedSubscription{
		updates: make(chan []entity.ListingView, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go func() {
		defer close(sub.done)
		defer close(sub.updates)

		emit := func() {
			snapshot, err := f.query(subCtx, userID, filter)
			if err != nil {
				if subCtx.Err() != nil {
					return
				}
				f.log.Errorf("feed query failed for user %s: %v", userID, err)
				return
			}
			select {
			case sub.updates <- snapshot:
			case <-subCtx.Done():
			default:
				// Subscriber has not drained the previous snapshot;
				// replace it so they only ever see the latest.
				select {
				case <-sub.updates:
				default:
				}
				select {
				case sub.updates <- snapshot:
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

// Query runs the feed once, without a live subscription.
func (f *FeedService) Query(ctx context.Context, userID string, filter entity.FilterSpec) ([]entity.ListingView, error) {
	return f.query(ctx, userID, filter)
}

func (f *FeedService) query(ctx context.Context, userID string, filter entity.FilterSpec) ([]entity.ListingView, error) {
	listings, err := f.listings.List(ctx)
	if err != nil {
		return nil, err
	}

	var following map[string]struct{}
	if filter.FollowingOnly {
		following, err = f.rels.FollowingIDs(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	matched := make([]entity.Listing, 0, len(listings))
	for i := range listings {
		l := &listings[i]
		if l.OwnerID == userID {
			continue
		}
		if filter.FollowingOnly {
			if _, ok := following[l.OwnerID]; !ok {
				continue
			}
		}
		if !filter.Matches(l) {
			continue
		}
		matched = append(matched, *l)
	}
	filter.Sort(matched)

	views := make([]entity.ListingView, 0, len(matched))
	for i := range matched {
		views = append(views, entity.ListingView{
			Listing:   matched[i],
			ImageURLs: f.resolveImages(ctx, &matched[i]),
		})
	}
	return views, nil
}

func (f *FeedService) resolveImages(ctx context.Context, l *entity.Listing) []string {
	if f.images == nil || len(l.ImageRefs) == 0 {
		return nil
	}
	urls := make([]string, 0, len(l.ImageRefs))
	for _, ref := range l.ImageRefs {
		u, err := f.images.PresignGet(ctx, ref)
		if err != nil {
			f.log.Warnf("failed to presign image %s for listing %s: %v", ref, l.ID, err)
			continue
		}
		urls = append(urls, u)
	}
	return urls
}
