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
)

func feedListings() []entity.Listing {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return []entity.Listing{
		{
			ID: "a", OwnerID: "seller-1", SellerName: "Alice", Title: "Denim Jacket",
			PriceMinor: 3000, Category: "Jacket", Condition: "Like New",
			Colors: []string{"blue"}, SizeLabel: "Man - Jacket - M",
			Status: entity.StatusActive, CreatedAt: base,
		},
		{
			ID: "b", OwnerID: "seller-2", SellerName: "Bea", Title: "Summer Dress",
			PriceMinor: 9000, Category: "Dress", Condition: "New",
			Colors: []string{"red"}, SizeLabel: "Woman - Dress - S",
			Status: entity.StatusActive, CreatedAt: base.Add(time.Hour),
		},
		{
			ID: "c", OwnerID: "seller-1", SellerName: "Alice", Title: "Leather Jacket",
			PriceMinor: 4000, Category: "Jacket", Condition: "Good",
			Colors: []string{"black", "blue"}, SizeLabel: "Man - Jacket - L",
			Status: entity.StatusActive, CreatedAt: base.Add(2 * time.Hour),
		},
		{
			ID: "d", OwnerID: "seller-3", SellerName: "Cara", Title: "Wool Jacket",
			PriceMinor: 2000, Category: "Jacket", Condition: "Good",
			Colors: []string{"blue"}, SizeLabel: "Man - Jacket - M",
			Status: entity.StatusSold, BuyerID: "someone", CreatedAt: base.Add(3 * time.Hour),
		},
		{
			ID: "mine", OwnerID: "viewer", SellerName: "Me", Title: "My Jacket",
			PriceMinor: 1000, Category: "Jacket", Condition: "Good",
			Colors: []string{"blue"}, Status: entity.StatusActive, CreatedAt: base.Add(4 * time.Hour),
		},
	}
}

func newTestFeedService(listings *MockListingRepository, follows *MockFollowRepository) *FeedService {
	rels := newTestRelationshipService(new(MockWishlistRepository), follows, listings)
	return NewFeedService(listings, rels, nil, logger.NewNoOp())
}

func TestFeedQuery_FiltersAndSortsNewestFirst(t *testing.T) {
	listings := new(MockListingRepository)
	svc := newTestFeedService(listings, new(MockFollowRepository))

	listings.On("List", mock.Anything).Return(feedListings(), nil)

	views, err := svc.Query(context.Background(), "viewer", entity.FilterSpec{
		Types:         []string{"Jacket"},
		Colors:        []string{"blue"},
		MaxPriceMinor: 5000,
	})

	require.NoError(t, err)
	// The viewer's own listing is excluded; sold listings stay visible.
	// The rest match type+color+price and come back newest first.
	require.Len(t, views, 3)
	assert.Equal(t, "d", views[0].ID)
	assert.Equal(t, entity.StatusSold, views[0].Status)
	assert.Equal(t, "c", views[1].ID)
	assert.Equal(t, "a", views[2].ID)
}

func TestFeedQuery_TypeAndPriceCeiling(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	catalog := []entity.Listing{
		{ID: "A", OwnerID: "s1", Title: "Shirt A", Category: "Shirt",
			PriceMinor: 50, Status: entity.StatusActive, CreatedAt: base},
		{ID: "B", OwnerID: "s2", Title: "Jacket B", Category: "Jacket",
			PriceMinor: 200, Status: entity.StatusSold, BuyerID: "x", CreatedAt: base.Add(time.Hour)},
		{ID: "C", OwnerID: "s3", Title: "Shirt C", Category: "Shirt",
			PriceMinor: 80, Status: entity.StatusActive, CreatedAt: base.Add(2 * time.Hour)},
	}

	listings := new(MockListingRepository)
	svc := newTestFeedService(listings, new(MockFollowRepository))
	listings.On("List", mock.Anything).Return(catalog, nil)

	views, err := svc.Query(context.Background(), "viewer", entity.FilterSpec{
		Types:         []string{"Shirt"},
		MaxPriceMinor: 100,
	})

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "C", views[0].ID)
	assert.Equal(t, "A", views[1].ID)
}

func TestFeedQuery_PriceAscending(t *testing.T) {
	listings := new(MockListingRepository)
	svc := newTestFeedService(listings, new(MockFollowRepository))

	listings.On("List", mock.Anything).Return(feedListings(), nil)

	views, err := svc.Query(context.Background(), "viewer", entity.FilterSpec{
		SortKey: entity.SortByPrice,
		SortDir: entity.SortAsc,
	})

	require.NoError(t, err)
	require.Len(t, views, 4)
	assert.Equal(t, []string{"d", "a", "c", "b"},
		[]string{views[0].ID, views[1].ID, views[2].ID, views[3].ID})
}

func TestFeedQuery_FollowingOnly(t *testing.T) {
	listings := new(MockListingRepository)
	follows := new(MockFollowRepository)
	svc := newTestFeedService(listings, follows)

	listings.On("List", mock.Anything).Return(feedListings(), nil)
	follows.On("ListEdges", mock.Anything, mock.Anything, "viewer").Return([]entity.FollowEdge{
		{OwnerID: "viewer", RelatedID: "seller-2"},
	}, nil)

	views, err := svc.Query(context.Background(), "viewer", entity.FilterSpec{FollowingOnly: true})

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "b", views[0].ID)
}

func TestFeedQuery_TextSearchCoversSellerName(t *testing.T) {
	listings := new(MockListingRepository)
	svc := newTestFeedService(listings, new(MockFollowRepository))

	listings.On("List", mock.Anything).Return(feedListings(), nil)

	views, err := svc.Query(context.Background(), "viewer", entity.FilterSpec{Query: "bea"})

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "b", views[0].ID)
}

func TestFeedSubscribe_EmitsInitialSnapshotAndReQueriesOnSignal(t *testing.T) {
	listings := new(MockListingRepository)
	svc := newTestFeedService(listings, new(MockFollowRepository))

	signals := make(chan struct{}, 1)
	listings.On("Watch", mock.Anything).Return(signals, nil)
	listings.On("List", mock.Anything).Return(feedListings(), nil)

	sub, err := svc.Subscribe(context.Background(), "viewer", entity.FilterSpec{})
	require.NoError(t, err)
	defer sub.Cancel()

	select {
	case snapshot := <-sub.Updates():
		assert.Len(t, snapshot, 4)
	case <-time.After(2 * time.Second):
		t.Fatal("no initial snapshot")
	}

	signals <- struct{}{}
	select {
	case snapshot := <-sub.Updates():
		assert.Len(t, snapshot, 4)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot after change signal")
	}
}

func TestFeedSubscribe_CancelStopsEmissions(t *testing.T) {
	listings := new(MockListingRepository)
	svc := newTestFeedService(listings, new(MockFollowRepository))

	signals := make(chan struct{})
	listings.On("Watch", mock.Anything).Return(signals, nil)
	listings.On("List", mock.Anything).Return(feedListings(), nil)

	sub, err := svc.Subscribe(context.Background(), "viewer", entity.FilterSpec{})
	require.NoError(t, err)

	<-sub.Updates()
	sub.Cancel()

	// After Cancel returns the updates channel must be closed.
	_, open := <-sub.Updates()
	assert.False(t, open)
}
