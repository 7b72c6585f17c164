package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	natsadapter "github.com/fwwzhai/thrifty-backend/internal/adapter/nats"
	"github.com/fwwzhai/thrifty-backend/internal/app/config"
	"github.com/fwwzhai/thrifty-backend/internal/domain/entity"
	"github.com/fwwzhai/thrifty-backend/internal/repository"
)

func testRetryConfig() config.RetryConfig {
	return config.RetryConfig{MaxAttempts: 3, InitialInterval: 1}
}

type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	args := m.Called(ctx, id)
	if l, ok := args.Get(0).(*entity.Listing); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListingRepository) MarkSold(ctx context.Context, params repository.MarkSoldParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *MockListingRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockListingRepository) ListByOwner(ctx context.Context, ownerID string) ([]entity.Listing, error) {
	args := m.Called(ctx, ownerID)
	if l, ok := args.Get(0).([]entity.Listing); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListingRepository) List(ctx context.Context) ([]entity.Listing, error) {
	args := m.Called(ctx)
	if l, ok := args.Get(0).([]entity.Listing); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListingRepository) Watch(ctx context.Context) (<-chan struct{}, error) {
	args := m.Called(ctx)
	if ch, ok := args.Get(0).(chan struct{}); ok {
		return ch, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) PutPurchase(ctx context.Context, entry *entity.HistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) PutSold(ctx context.Context, entry *entity.HistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) GetPurchase(ctx context.Context, userID, listingID string) (*entity.HistoryEntry, error) {
	args := m.Called(ctx, userID, listingID)
	if e, ok := args.Get(0).(*entity.HistoryEntry); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockHistoryRepository) GetSold(ctx context.Context, userID, listingID string) (*entity.HistoryEntry, error) {
	args := m.Called(ctx, userID, listingID)
	if e, ok := args.Get(0).(*entity.HistoryEntry); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockHistoryRepository) ListPurchases(ctx context.Context, userID string) ([]entity.HistoryEntry, error) {
	args := m.Called(ctx, userID)
	if e, ok := args.Get(0).([]entity.HistoryEntry); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockHistoryRepository) ListSold(ctx context.Context, userID string) ([]entity.HistoryEntry, error) {
	args := m.Called(ctx, userID)
	if e, ok := args.Get(0).([]entity.HistoryEntry); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockInboxRepository struct {
	mock.Mock
}

func (m *MockInboxRepository) Put(ctx context.Context, entry *entity.InboxEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockInboxRepository) ListByRecipient(ctx context.Context, userID string) ([]entity.InboxEntry, error) {
	args := m.Called(ctx, userID)
	if e, ok := args.Get(0).([]entity.InboxEntry); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInboxRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInboxRepository) MarkRead(ctx context.Context, userID, entryID string) error {
	args := m.Called(ctx, userID, entryID)
	return args.Error(0)
}

func (m *MockInboxRepository) Delete(ctx context.Context, userID, entryID string) error {
	args := m.Called(ctx, userID, entryID)
	return args.Error(0)
}

func (m *MockInboxRepository) Watch(ctx context.Context, userID string) (<-chan struct{}, error) {
	args := m.Called(ctx, userID)
	if ch, ok := args.Get(0).(chan struct{}); ok {
		return ch, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*entity.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, params repository.UpdateProfileParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

type MockWishlistRepository struct {
	mock.Mock
}

func (m *MockWishlistRepository) Contains(ctx context.Context, userID, listingID string) (bool, error) {
	args := m.Called(ctx, userID, listingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockWishlistRepository) Add(ctx context.Context, entry *entity.WishlistEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockWishlistRepository) Remove(ctx context.Context, userID, listingID string) error {
	args := m.Called(ctx, userID, listingID)
	return args.Error(0)
}

func (m *MockWishlistRepository) ListByUser(ctx context.Context, userID string) ([]entity.WishlistEntry, error) {
	args := m.Called(ctx, userID)
	if e, ok := args.Get(0).([]entity.WishlistEntry); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockFollowRepository struct {
	mock.Mock
}

func (m *MockFollowRepository) AddEdge(ctx context.Context, side repository.EdgeSide, ownerID, relatedID string, since time.Time) error {
	args := m.Called(ctx, side, ownerID, relatedID, since)
	return args.Error(0)
}

func (m *MockFollowRepository) RemoveEdge(ctx context.Context, side repository.EdgeSide, ownerID, relatedID string) error {
	args := m.Called(ctx, side, ownerID, relatedID)
	return args.Error(0)
}

func (m *MockFollowRepository) HasEdge(ctx context.Context, side repository.EdgeSide, ownerID, relatedID string) (bool, error) {
	args := m.Called(ctx, side, ownerID, relatedID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) ListEdges(ctx context.Context, side repository.EdgeSide, ownerID string) ([]entity.FollowEdge, error) {
	args := m.Called(ctx, side, ownerID)
	if e, ok := args.Get(0).([]entity.FollowEdge); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

// stubCache satisfies ListingCache without caching anything.
type stubCache struct{}

func (stubCache) Get(context.Context, string) (*entity.Listing, error) { return nil, nil }
func (stubCache) Set(context.Context, *entity.Listing) error           { return nil }
func (stubCache) Delete(context.Context, string) error                 { return nil }

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(subject string, _ natsadapter.ListingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, subject)
	return nil
}
