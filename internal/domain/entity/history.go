package entity

import "time"

// HistoryEntry records one side of a completed sale. It is keyed by
// (user, listing), written exactly once by the purchase fan-out, and
// immutable afterwards. For a buyer's purchase history the counterparty
// is the seller; for a seller's sold history it is the buyer.
type HistoryEntry struct {
	UserID         string    `bson:"user_id" json:"user_id"`
	ListingID      string    `bson:"listing_id" json:"listing_id"`
	Name           string    `bson:"name" json:"name"`
	PriceMinor     int64     `bson:"price_minor" json:"price_minor"`
	ImageRef       string    `bson:"image_ref,omitempty" json:"image_ref,omitempty"`
	CounterpartyID string    `bson:"counterparty_id" json:"counterparty_id"`
	Timestamp      time.Time `bson:"timestamp" json:"timestamp"`
}
