package notifications

import (
	"context"

	"github.com/google/uuid"
)

// Event types emitted by the bidding engine.
const (
	EventBidPlaced = "bid_placed"
	EventOutbid    = "outbid"
)

// Event is the payload published for downstream notification delivery
// (template rendering and fan-out live outside this service).
type Event struct {
	Type      string    `json:"type"`
	AuctionID uuid.UUID `json:"auction_id"`
	BidderID  uuid.UUID `json:"bidder_id"`
	Amount    string    `json:"amount"`
}

// Sink receives events fire-and-forget, at-least-once. Emit is never called
// while the bidding lock is held; a slow consumer cannot stall bid acceptance.
type Sink interface {
	Emit(ctx context.Context, ev Event) error
}

// NopSink drops all events (tests, notifications disabled).
type NopSink struct{}

func (NopSink) Emit(context.Context, Event) error { return nil }
