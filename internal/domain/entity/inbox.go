package entity

import "time"

type InboxKind string

const (
	InboxKindPurchase InboxKind = "purchase"
)

type InboxEntry struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	RecipientID    string    `bson:"recipient_id" json:"recipient_id"`
	Kind           InboxKind `bson:"kind" json:"kind"`
	Message        string    `bson:"message" json:"message"`
	ListingID      string    `bson:"listing_id,omitempty" json:"listing_id,omitempty"`
	CounterpartyID string    `bson:"counterparty_id,omitempty" json:"counterparty_id,omitempty"`
	Read           bool      `bson:"read" json:"read"`
	Timestamp      time.Time `bson:"timestamp" json:"timestamp"`
}

// SaleInboxID gives the sale notification for a listing a deterministic
// id so that repairing a failed fan-out write never duplicates it.
func SaleInboxID(listingID string) string {
	return "sale-" + listingID
}
