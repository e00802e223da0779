package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Deposit statuses.
const (
	DepositStatusPending    = "pending"
	DepositStatusAuthorized = "authorized"
	DepositStatusReleased   = "released"
	DepositStatusForfeited  = "forfeited"
)

// Deposit tracks the refundable bidder deposit per auction. A deposit becomes
// "authorized" when the Stripe webhook confirms the payment intent; an
// authorized deposit is one of the eligibility-gate inputs for bidding.
// Capture/settlement is out of scope — only authorization bookkeeping lives here.
type Deposit struct {
	DepositID             uuid.UUID `gorm:"column:deposit_id;type:uuid;primaryKey" json:"deposit_id"`
	AuctionID             uuid.UUID `gorm:"column:auction_id;type:uuid;not null;index:idx_deposit_auction_bidder" json:"auction_id"`
	BidderID              uuid.UUID `gorm:"column:bidder_id;type:uuid;not null;index:idx_deposit_auction_bidder" json:"bidder_id"`
	AmountCents           int64     `gorm:"column:amount_cents;not null" json:"amount_cents"`
	Currency              string    `gorm:"column:currency;type:varchar(3);not null;default:'usd'" json:"currency"`
	StripePaymentIntentID string    `gorm:"column:stripe_payment_intent_id;uniqueIndex" json:"stripe_payment_intent_id"`
	Status                string    `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

func (Deposit) TableName() string {
	return "Deposits"
}

func (d *Deposit) BeforeCreate(tx *gorm.DB) error {
	if d.DepositID == uuid.Nil {
		d.DepositID = uuid.New()
	}
	return nil
}
