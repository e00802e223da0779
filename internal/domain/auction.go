package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Minimum-increment strategies.
const (
	IncrementFixed   = "fixed"
	IncrementPercent = "percent"
)

// Auction is the timed, price-ascending sale attached 1:1 to a Listing.
// EndAt is mutable: soft-close extensions may push it forward (never backward).
// SellerID is denormalized from the listing so the self-bid check can run
// against the locked auction row alone.
type Auction struct {
	AuctionID            uuid.UUID       `gorm:"column:auction_id;type:uuid;primaryKey" json:"auction_id"`
	ListingID            uuid.UUID       `gorm:"column:listing_id;type:uuid;not null;uniqueIndex" json:"listing_id"`
	SellerID             uuid.UUID       `gorm:"column:seller_id;type:uuid;not null" json:"seller_id"`
	StartAt              time.Time       `gorm:"column:start_at;not null" json:"start_at"`
	EndAt                time.Time       `gorm:"column:end_at;not null" json:"end_at"`
	StartingPrice        decimal.Decimal `gorm:"column:starting_price;type:decimal(18,2);not null" json:"starting_price"`
	MinIncrementStrategy string          `gorm:"column:min_increment_strategy;type:varchar(10);not null;default:'fixed'" json:"min_increment_strategy"`
	MinIncrementValue    decimal.Decimal `gorm:"column:min_increment_value;type:decimal(18,4);not null" json:"min_increment_value"`
	SoftCloseWindowSecs  int             `gorm:"column:soft_close_window_secs;not null;default:120" json:"soft_close_window_secs"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

func (Auction) TableName() string {
	return "Auctions"
}

func (a *Auction) BeforeCreate(tx *gorm.DB) error {
	if a.AuctionID == uuid.Nil {
		a.AuctionID = uuid.New()
	}
	return nil
}

// SoftCloseWindow returns the soft-close window as a duration.
func (a *Auction) SoftCloseWindow() time.Duration {
	return time.Duration(a.SoftCloseWindowSecs) * time.Second
}
