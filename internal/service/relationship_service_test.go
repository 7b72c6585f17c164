package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fwwzhai/thrifty-backend/internal/domain/entity"
	"github.com/fwwzhai/thrifty-backend/internal/platform/logger"
	"github.com/fwwzhai/thrifty-backend/internal/platform/metrics"
	"github.com/fwwzhai/thrifty-backend/internal/repository"
)

func newTestRelationshipService(
	wishlist repository.WishlistRepository,
	follows repository.FollowRepository,
	listings repository.ListingRepository,
) *RelationshipService {
	return NewRelationshipService(
		wishlist, follows, listings, nil,
		testRetryConfig(), metrics.NewManager("test"), logger.NewNoOp(),
	)
}

func TestToggleWishlist_AddSnapshotsListing(t *testing.T) {
	wishlist := new(MockWishlistRepository)
	listings := new(MockListingRepository)
	svc := newTestRelationshipService(wishlist, new(MockFollowRepository), listings)

	listing := activeListing()
	wishlist.On("Contains", mock.Anything, "user-1", "listing-1").Return(false, nil)
	listings.On("GetByID", mock.Anything, "listing-1").Return(listing, nil)
	wishlist.On("Add", mock.Anything, mock.MatchedBy(func(e *entity.WishlistEntry) bool {
		return e.UserID == "user-1" &&
			e.ListingID == "listing-1" &&
			e.Name == "Vintage Jacket" &&
			e.PriceMinor == 4500 &&
			e.ImageRef == "photos/a.jpg"
	})).Return(nil)

	outcome, err := svc.ToggleWishlist(context.Background(), "user-1", "listing-1")

	require.NoError(t, err)
	assert.Equal(t, WishlistAdded, outcome)
	wishlist.AssertExpectations(t)
}

func TestToggleWishlist_RemovesWhenPresent(t *testing.T) {
	wishlist := new(MockWishlistRepository)
	svc := newTestRelationshipService(wishlist, new(MockFollowRepository), new(MockListingRepository))

	wishlist.On("Contains", mock.Anything, "user-1", "listing-1").Return(true, nil)
	wishlist.On("Remove", mock.Anything, "user-1", "listing-1").Return(nil)

	outcome, err := svc.ToggleWishlist(context.Background(), "user-1", "listing-1")

	require.NoError(t, err)
	assert.Equal(t, WishlistRemoved, outcome)
}

func TestToggleWishlist_ConcurrentRemoveIsIdempotent(t *testing.T) {
	wishlist := new(MockWishlistRepository)
	svc := newTestRelationshipService(wishlist, new(MockFollowRepository), new(MockListingRepository))

	wishlist.On("Contains", mock.Anything, "user-1", "listing-1").Return(true, nil)
	wishlist.On("Remove", mock.Anything, "user-1", "listing-1").Return(repository.ErrNotFound)

	outcome, err := svc.ToggleWishlist(context.Background(), "user-1", "listing-1")

	require.NoError(t, err)
	assert.Equal(t, WishlistRemoved, outcome)
}

func TestToggleWishlist_MissingListing(t *testing.T) {
	wishlist := new(MockWishlistRepository)
	listings := new(MockListingRepository)
	svc := newTestRelationshipService(wishlist, new(MockFollowRepository), listings)

	wishlist.On("Contains", mock.Anything, "user-1", "ghost").Return(false, nil)
	listings.On("GetByID", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

	_, err := svc.ToggleWishlist(context.Background(), "user-1", "ghost")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestFollow_WritesBothSides(t *testing.T) {
	follows := new(MockFollowRepository)
	svc := newTestRelationshipService(new(MockWishlistRepository), follows, new(MockListingRepository))

	follows.On("AddEdge", mock.Anything, repository.SideFollowing, "alice", "bob", mock.Anything).Return(nil)
	follows.On("AddEdge", mock.Anything, repository.SideFollowers, "bob", "alice", mock.Anything).Return(nil)

	err := svc.Follow(context.Background(), "alice", "bob")

	require.NoError(t, err)
	follows.AssertExpectations(t)
}

func TestFollow_SelfFollowRejected(t *testing.T) {
	svc := newTestRelationshipService(new(MockWishlistRepository), new(MockFollowRepository), new(MockListingRepository))

	err := svc.Follow(context.Background(), "alice", "alice")
	assert.ErrorIs(t, err, entity.ErrInvalidOperation)
}

func TestFollow_DuplicateIsSuccess(t *testing.T) {
	follows := new(MockFollowRepository)
	svc := newTestRelationshipService(new(MockWishlistRepository), follows, new(MockListingRepository))

	follows.On("AddEdge", mock.Anything, repository.SideFollowing, "alice", "bob", mock.Anything).Return(repository.ErrDuplicate)
	follows.On("AddEdge", mock.Anything, repository.SideFollowers, "bob", "alice", mock.Anything).Return(repository.ErrDuplicate)

	err := svc.Follow(context.Background(), "alice", "bob")
	assert.NoError(t, err)
}

func TestFollow_MirrorFailureCompensates(t *testing.T) {
	follows := new(MockFollowRepository)
	svc := newTestRelationshipService(new(MockWishlistRepository), follows, new(MockListingRepository))

	follows.On("AddEdge", mock.Anything, repository.SideFollowing, "alice", "bob", mock.Anything).Return(nil)
	follows.On("AddEdge", mock.Anything, repository.SideFollowers, "bob", "alice", mock.Anything).Return(errors.New("store down"))
	follows.On("RemoveEdge", mock.Anything, repository.SideFollowing, "alice", "bob").Return(nil)

	err := svc.Follow(context.Background(), "alice", "bob")

	assert.ErrorIs(t, err, entity.ErrPartialFailure)
	// The first write must be rolled back so reads never show a
	// half-established relationship.
	follows.AssertCalled(t, "RemoveEdge", mock.Anything, repository.SideFollowing, "alice", "bob")
}

func TestUnfollow_RemovesBothSides(t *testing.T) {
	follows := new(MockFollowRepository)
	svc := newTestRelationshipService(new(MockWishlistRepository), follows, new(MockListingRepository))

	follows.On("RemoveEdge", mock.Anything, repository.SideFollowing, "alice", "bob").Return(nil)
	follows.On("RemoveEdge", mock.Anything, repository.SideFollowers, "bob", "alice").Return(nil)

	err := svc.Unfollow(context.Background(), "alice", "bob")

	require.NoError(t, err)
	follows.AssertExpectations(t)
}

func TestUnfollow_MissingEdgesAreFine(t *testing.T) {
	follows := new(MockFollowRepository)
	svc := newTestRelationshipService(new(MockWishlistRepository), follows, new(MockListingRepository))

	follows.On("RemoveEdge", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(repository.ErrNotFound)

	err := svc.Unfollow(context.Background(), "alice", "bob")
	assert.NoError(t, err)
}

func TestUnfollow_MirrorFailureReportsUncertainty(t *testing.T) {
	follows := new(MockFollowRepository)
	svc := newTestRelationshipService(new(MockWishlistRepository), follows, new(MockListingRepository))

	follows.On("RemoveEdge", mock.Anything, repository.SideFollowing, "alice", "bob").Return(nil)
	follows.On("RemoveEdge", mock.Anything, repository.SideFollowers, "bob", "alice").Return(errors.New("store down"))

	err := svc.Unfollow(context.Background(), "alice", "bob")
	assert.ErrorIs(t, err, entity.ErrPartialFailure)
}

func TestIsFollowing_ReadsFollowingSideOnly(t *testing.T) {
	follows := new(MockFollowRepository)
	svc := newTestRelationshipService(new(MockWishlistRepository), follows, new(MockListingRepository))

	follows.On("HasEdge", mock.Anything, repository.SideFollowing, "alice", "bob").Return(true, nil)

	following, err := svc.IsFollowing(context.Background(), "alice", "bob")

	require.NoError(t, err)
	assert.True(t, following)
	follows.AssertNotCalled(t, "HasEdge", mock.Anything, repository.SideFollowers, mock.Anything, mock.Anything)
}

func TestFollowingIDs_BuildsSetFromEdges(t *testing.T) {
	follows := new(MockFollowRepository)
	svc := newTestRelationshipService(new(MockWishlistRepository), follows, new(MockListingRepository))

	follows.On("ListEdges", mock.Anything, repository.SideFollowing, "alice").Return([]entity.FollowEdge{
		{OwnerID: "alice", RelatedID: "bob"},
		{OwnerID: "alice", RelatedID: "carol"},
	}, nil)

	ids, err := svc.FollowingIDs(context.Background(), "alice")

	require.NoError(t, err)
	assert.Len(t, ids, 2)
	_, hasBob := ids["bob"]
	assert.True(t, hasBob)
}
