package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Bid is an append-only ledger row. Bids are never updated or deleted;
// CreatedAt is server-assigned and is the tie-break order within an auction.
type Bid struct {
	BidID     uuid.UUID       `gorm:"column:bid_id;type:uuid;primaryKey" json:"bid_id"`
	AuctionID uuid.UUID       `gorm:"column:auction_id;type:uuid;not null;index" json:"auction_id"`
	BidderID  uuid.UUID       `gorm:"column:bidder_id;type:uuid;not null;index" json:"bidder_id"`
	Amount    decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	CreatedAt time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (Bid) TableName() string {
	return "Bids"
}

func (b *Bid) BeforeCreate(tx *gorm.DB) error {
	if b.BidID == uuid.Nil {
		b.BidID = uuid.New()
	}
	return nil
}
