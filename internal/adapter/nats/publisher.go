package nats

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/fwwzhai/thrifty-backend/internal/platform/logger"
)

const (
	SubjectListingCreated = "listing.created"
	SubjectListingSold    = "listing.sold"
	SubjectListingDeleted = "listing.deleted"
)

// ListingEvent is the payload published for every listing lifecycle
// transition.
type ListingEvent struct {
	ListingID string    `json:"listing_id"`
	OwnerID   string    `json:"owner_id"`
	BuyerID   string    `json:"buyer_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher struct {
	conn *nats.Conn
	log  logger.Logger
}

func NewPublisher(url string, log logger.Logger) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", url, err)
	}
	return &Publisher{conn: conn, log: log}, nil
}

func (p *Publisher) Publish(subject string, event ListingEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event for subject %s: %w", subject, err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	p.log.Debugf("published event to %s for listing %s", subject, event.ListingID)
	return nil
}

func (p *Publisher) Close() {
	if p.conn != nil && !p.conn.IsClosed() {
		if err := p.conn.Drain(); err != nil {
			p.log.Errorf("failed to drain nats connection: %v", err)
		}
	}
}
