package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Auction event types.
const (
	AuctionEventCreated  = "CREATED"
	AuctionEventBid      = "BID_PLACED"
	AuctionEventExtended = "EXTENDED"
)

// AuctionEvent is the append-only audit trail for an auction: creation,
// accepted bids and soft-close extensions, with a JSON payload per event.
type AuctionEvent struct {
	EventID     uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	AuctionID   uuid.UUID      `gorm:"column:auction_id;type:uuid;not null;index" json:"auction_id"`
	EventType   string         `gorm:"column:event_type;type:varchar(20);not null" json:"event_type"`
	ActorUserID *uuid.UUID     `gorm:"column:actor_user_id;type:uuid" json:"actor_user_id"`
	EventData   datatypes.JSON `gorm:"column:event_data;type:json" json:"event_data"`
	CreatedAt   time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (AuctionEvent) TableName() string {
	return "AuctionEvents"
}

func (e *AuctionEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
