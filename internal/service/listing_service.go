package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	natsadapter "github.com/fwwzhai/thrifty-backend/internal/adapter/nats"
	"github.com/fwwzhai/thrifty-backend/internal/app/config"
	"github.com/fwwzhai/thrifty-backend/internal/domain/entity"
	"github.com/fwwzhai/thrifty-backend/internal/platform/logger"
	"github.com/fwwzhai/thrifty-backend/internal/platform/metrics"
	"github.com/fwwzhai/thrifty-backend/internal/repository"
)

// ListingCache is the read-through cache in front of single-listing
// reads. A miss returns (nil, nil).
type ListingCache interface {
	Get(ctx context.Context, id string) (*entity.Listing, error)
	Set(ctx context.Context, listing *entity.Listing) error
	Delete(ctx context.Context, id string) error
}

// EventPublisher announces listing lifecycle transitions to the rest
// of the system. Best effort: failures are logged, never surfaced.
type EventPublisher interface {
	Publish(subject string, event natsadapter.ListingEvent) error
}

// SaleMailer emails the seller when their item sells. Best effort.
type SaleMailer interface {
	SendSaleNotification(toEmail string, listing *entity.Listing) error
}

// CreateListingParams carries everything needed to publish a listing.
// Image uploads happen before this call; ImageRefs are object keys.
type CreateListingParams struct {
	OwnerID              string
	Title                string
	PriceMinor           int64
	Currency             string
	Category             string
	Condition            string
	Colors               []string
	SizeLabel            string
	Description          string
	ImageRefs            []string
	DeliveryFeeMinor     int64
	DeliveryPaidBySeller bool
}

// PlaceOrderParams is one purchase attempt against an active listing.
type PlaceOrderParams struct {
	ListingID string
	BuyerID   string
	Payment   entity.PaymentConfirmation
}

// OrderResult reports a completed purchase. Partial is set when the
// ownership transfer committed but one or more follow-up writes could
// not be completed; Incomplete names the failed steps.
type OrderResult struct {
	ListingID  string
	BuyerID    string
	Partial    bool
	Incomplete []string
}

const (
	stepBuyerHistory  = "buyer_history"
	stepSellerHistory = "seller_history"
	stepSellerInbox   = "seller_inbox"
)

type ListingService struct {
	listings  repository.ListingRepository
	histories repository.HistoryRepository
	inbox     repository.InboxRepository
	users     repository.UserRepository
	cache     ListingCache
	publisher EventPublisher
	mailer    SaleMailer
	retry     retryPolicy
	metrics   *metrics.Manager
	log       logger.Logger
}

func NewListingService(
	listings repository.ListingRepository,
	histories repository.HistoryRepository,
	inbox repository.InboxRepository,
	users repository.UserRepository,
	cache ListingCache,
	publisher EventPublisher,
	mailer SaleMailer,
	retryCfg config.RetryConfig,
	m *metrics.Manager,
	log logger.Logger,
) *ListingService {
	return &ListingService{
		listings:  listings,
		histories: histories,
		inbox:     inbox,
		users:     users,
		cache:     cache,
		publisher: publisher,
		mailer:    mailer,
		retry:     newRetryPolicy(retryCfg),
		metrics:   m,
		log:       log,
	}
}

func (s *ListingService) CreateListing(ctx context.Context, params CreateListingParams) (*entity.Listing, error) {
	listing, err := entity.NewListing(params.OwnerID, "", params.Title, params.PriceMinor, params.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidOperation, err)
	}

	owner, err := s.users.GetByID(ctx, params.OwnerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}

	listing.ID = uuid.NewString()
	listing.SellerName = owner.Name
	listing.Category = params.Category
	listing.Condition = params.Condition
	listing.Colors = params.Colors
	listing.SizeLabel = params.SizeLabel
	listing.Description = params.Description
	listing.ImageRefs = params.ImageRefs
	listing.DeliveryFeeMinor = params.DeliveryFeeMinor
	listing.DeliveryPaidBySeller = params.DeliveryPaidBySeller

	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	s.publishEvent(natsadapter.SubjectListingCreated, natsadapter.ListingEvent{
		ListingID: listing.ID,
		OwnerID:   listing.OwnerID,
		Timestamp: listing.CreatedAt,
	})
	return listing, nil
}

// GetListing reads through the cache.
func (s *ListingService) GetListing(ctx context.Context, id string) (*entity.Listing, error) {
	if cached, err := s.cache.Get(ctx, id); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		s.log.Warnf("listing cache read failed for %s: %v", id, err)
	}

	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(ctx, listing); err != nil {
		s.log.Warnf("listing cache write failed for %s: %v", id, err)
	}
	return listing, nil
}

func (s *ListingService) ListActive(ctx context.Context) ([]entity.Listing, error) {
	return s.listings.List(ctx)
}

func (s *ListingService) ListByOwner(ctx context.Context, ownerID string) ([]entity.Listing, error) {
	return s.listings.ListByOwner(ctx, ownerID)
}

// PlaceOrder performs the purchase: payment check, preconditions, the
// conditional active->sold transition, then the denormalized fan-out.
// The transition is the commit point; everything after it is repairable
// and never rolls the sale back.
func (s *ListingService) PlaceOrder(ctx context.Context, params PlaceOrderParams) (*OrderResult, error) {
	if !params.Payment.Success {
		return nil, fmt.Errorf("%w: payment was not confirmed", entity.ErrInvalidOperation)
	}

	listing, err := s.listings.GetByID(ctx, params.ListingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	if listing.OwnerID == params.BuyerID {
		return nil, entity.ErrSelfPurchase
	}
	if listing.IsSold() {
		return nil, entity.ErrAlreadySold
	}

	soldAt := time.Now().UTC()
	err = s.retry.run(ctx, func() error {
		return s.listings.MarkSold(ctx, repository.MarkSoldParams{
			ListingID: params.ListingID,
			BuyerID:   params.BuyerID,
			SoldAt:    soldAt,
		})
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			s.metrics.OrderRacesLostTotal.Inc()
			return nil, entity.ErrAlreadySold
		case errors.Is(err, repository.ErrNotFound):
			return nil, entity.ErrNotFound
		default:
			return nil, err
		}
	}

	s.metrics.OrdersPlacedTotal.Inc()

	listing.Status = entity.StatusSold
	listing.BuyerID = params.BuyerID
	listing.SoldAt = &soldAt

	result := &OrderResult{ListingID: listing.ID, BuyerID: params.BuyerID}
	result.Incomplete = s.fanOut(ctx, listing, params.BuyerID, soldAt)
	result.Partial = len(result.Incomplete) > 0

	if err := s.cache.Delete(ctx, listing.ID); err != nil {
		s.log.Warnf("failed to invalidate listing cache for %s: %v", listing.ID, err)
	}
	s.publishEvent(natsadapter.SubjectListingSold, natsadapter.ListingEvent{
		ListingID: listing.ID,
		OwnerID:   listing.OwnerID,
		BuyerID:   params.BuyerID,
		Timestamp: soldAt,
	})
	s.notifySellerByEmail(ctx, listing)

	return result, nil
}

// fanOut writes the three denormalized records of a sale. Each step is
// retried independently and failures are collected, not propagated:
// the sale has already committed.
func (s *ListingService) fanOut(ctx context.Context, listing *entity.Listing, buyerID string, soldAt time.Time) []string {
	var incomplete []string

	steps := []struct {
		name string
		op   func() error
	}{
		{stepBuyerHistory, func() error {
			return s.histories.PutPurchase(ctx, &entity.HistoryEntry{
				UserID:         buyerID,
				ListingID:      listing.ID,
				Name:           listing.Title,
				PriceMinor:     listing.PriceMinor,
				ImageRef:       listing.PrimaryImageRef(),
				CounterpartyID: listing.OwnerID,
				Timestamp:      soldAt,
			})
		}},
		{stepSellerHistory, func() error {
			return s.histories.PutSold(ctx, &entity.HistoryEntry{
				UserID:         listing.OwnerID,
				ListingID:      listing.ID,
				Name:           listing.Title,
				PriceMinor:     listing.PriceMinor,
				ImageRef:       listing.PrimaryImageRef(),
				CounterpartyID: buyerID,
				Timestamp:      soldAt,
			})
		}},
		{stepSellerInbox, func() error {
			return s.inbox.Put(ctx, &entity.InboxEntry{
				ID:             entity.SaleInboxID(listing.ID),
				RecipientID:    listing.OwnerID,
				Kind:           entity.InboxKindPurchase,
				Message:        fmt.Sprintf("Your item '%s' has been sold!", listing.Title),
				ListingID:      listing.ID,
				CounterpartyID: buyerID,
				Timestamp:      soldAt,
			})
		}},
	}

	for _, step := range steps {
		if err := s.retry.run(ctx, step.op); err != nil {
			s.log.Errorf("sale fan-out step %s failed for listing %s: %v", step.name, listing.ID, err)
			s.metrics.FanoutFailuresTotal.WithLabelValues(step.name).Inc()
			incomplete = append(incomplete, step.name)
		}
	}
	return incomplete
}

// RepairSale re-runs the fan-out for a listing that is already sold.
// All writes are keyed upserts, so repair is idempotent: completed
// steps are rewritten identically, missing ones are filled in.
func (s *ListingService) RepairSale(ctx context.Context, listingID string) (*OrderResult, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	if !listing.IsSold() || listing.BuyerID == "" || listing.SoldAt == nil {
		return nil, fmt.Errorf("%w: listing %s has no completed sale to repair", entity.ErrInvalidOperation, listingID)
	}

	result := &OrderResult{ListingID: listing.ID, BuyerID: listing.BuyerID}
	result.Incomplete = s.fanOut(ctx, listing, listing.BuyerID, *listing.SoldAt)
	result.Partial = len(result.Incomplete) > 0
	return result, nil
}

// DeleteListing removes a listing. Only the owner may delete; history
// and inbox records survive because they are snapshots, not references.
func (s *ListingService) DeleteListing(ctx context.Context, listingID, requesterID string) error {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return entity.ErrNotFound
		}
		return err
	}
	if listing.OwnerID != requesterID {
		return entity.ErrForbidden
	}

	if err := s.listings.Delete(ctx, listingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return entity.ErrNotFound
		}
		return err
	}

	if err := s.cache.Delete(ctx, listingID); err != nil {
		s.log.Warnf("failed to invalidate listing cache for %s: %v", listingID, err)
	}
	s.publishEvent(natsadapter.SubjectListingDeleted, natsadapter.ListingEvent{
		ListingID: listingID,
		OwnerID:   listing.OwnerID,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

func (s *ListingService) ListPurchases(ctx context.Context, userID string) ([]entity.HistoryEntry, error) {
	return s.histories.ListPurchases(ctx, userID)
}

func (s *ListingService) ListSold(ctx context.Context, userID string) ([]entity.HistoryEntry, error) {
	return s.histories.ListSold(ctx, userID)
}

func (s *ListingService) publishEvent(subject string, event natsadapter.ListingEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(subject, event); err != nil {
		s.log.Warnf("failed to publish %s event for listing %s: %v", subject, event.ListingID, err)
	}
}

func (s *ListingService) notifySellerByEmail(ctx context.Context, listing *entity.Listing) {
	if s.mailer == nil {
		return
	}
	seller, err := s.users.GetByID(ctx, listing.OwnerID)
	if err != nil || seller.Email == "" {
		return
	}
	if err := s.mailer.SendSaleNotification(seller.Email, listing); err != nil {
		s.log.Warnf("failed to send sale email for listing %s: %v", listing.ID, err)
	}
}
