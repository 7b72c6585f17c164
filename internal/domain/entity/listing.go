package entity

import (
	"errors"
	"strings"
	"time"
)

type ListingStatus string

const (
	StatusActive ListingStatus = "active"
	StatusSold   ListingStatus = "sold"
)

type Listing struct {
	ID                   string        `bson:"_id,omitempty" json:"id"`
	OwnerID              string        `bson:"owner_id" json:"owner_id"`
	SellerName           string        `bson:"seller_name" json:"seller_name"`
	Title                string        `bson:"title" json:"title"`
	PriceMinor           int64         `bson:"price_minor" json:"price_minor"`
	Currency             string        `bson:"currency" json:"currency"`
	Category             string        `bson:"category" json:"category"`
	Condition            string        `bson:"condition" json:"condition"`
	Colors               []string      `bson:"colors,omitempty" json:"colors,omitempty"`
	SizeLabel            string        `bson:"size_label,omitempty" json:"size_label,omitempty"`
	Description          string        `bson:"description,omitempty" json:"description,omitempty"`
	ImageRefs            []string      `bson:"image_refs,omitempty" json:"image_refs,omitempty"`
	Status               ListingStatus `bson:"status" json:"status"`
	BuyerID              string        `bson:"buyer_id,omitempty" json:"buyer_id,omitempty"`
	SoldAt               *time.Time    `bson:"sold_at,omitempty" json:"sold_at,omitempty"`
	DeliveryFeeMinor     int64         `bson:"delivery_fee_minor" json:"delivery_fee_minor"`
	DeliveryPaidBySeller bool          `bson:"delivery_paid_by_seller" json:"delivery_paid_by_seller"`
	CreatedAt            time.Time     `bson:"created_at" json:"created_at"`
}

func NewListing(ownerID, sellerName, title string, priceMinor int64, currency string) (*Listing, error) {
	if ownerID == "" {
		return nil, errors.New("listing owner is required")
	}
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("listing title is required")
	}
	if priceMinor < 0 {
		return nil, errors.New("listing price cannot be negative")
	}
	return &Listing{
		OwnerID:    ownerID,
		SellerName: sellerName,
		Title:      title,
		PriceMinor: priceMinor,
		Currency:   currency,
		Status:     StatusActive,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

func (l *Listing) IsSold() bool {
	return l.Status == StatusSold
}

// PrimaryImageRef is the reference snapshotted into wishlist and history
// entries.
func (l *Listing) PrimaryImageRef() string {
	if len(l.ImageRefs) == 0 {
		return ""
	}
	return l.ImageRefs[0]
}

// PaymentConfirmation is the opaque token handed over by the payment
// collaborator. The engine only checks Success; authenticity is the
// collaborator's contract.
type PaymentConfirmation struct {
	Success   bool   `json:"success"`
	Reference string `json:"reference"`
}
