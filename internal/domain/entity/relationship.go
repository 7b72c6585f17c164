package entity

import "time"

// WishlistEntry is a denormalized snapshot of a listing taken when the
// user added it. Existence of the (user, listing) key is the membership
// predicate; there is no separate boolean flag. Snapshots are not
// refreshed when the listing changes later.
type WishlistEntry struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	UserID     string    `bson:"user_id" json:"user_id"`
	ListingID  string    `bson:"listing_id" json:"listing_id"`
	Name       string    `bson:"name" json:"name"`
	PriceMinor int64     `bson:"price_minor" json:"price_minor"`
	ImageRef   string    `bson:"image_ref,omitempty" json:"image_ref,omitempty"`
	AddedAt    time.Time `bson:"added_at" json:"added_at"`
}

func NewWishlistEntry(userID string, listing *Listing) *WishlistEntry {
	return &WishlistEntry{
		UserID:     userID,
		ListingID:  listing.ID,
		Name:       listing.Title,
		PriceMinor: listing.PriceMinor,
		ImageRef:   listing.PrimaryImageRef(),
		AddedAt:    time.Now().UTC(),
	}
}

// FollowEdge is one half of a mirrored follow relationship. Each edge
// exists twice: under the follower ("following" side) and under the
// target ("followers" side).
type FollowEdge struct {
	OwnerID   string    `bson:"owner_id" json:"owner_id"`
	RelatedID string    `bson:"related_id" json:"related_id"`
	Since     time.Time `bson:"since" json:"since"`
}
