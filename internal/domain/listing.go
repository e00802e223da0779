package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Listing statuses.
const (
	ListingStatusOpen      = "open"
	ListingStatusAuction   = "auction"
	ListingStatusSold      = "sold"
	ListingStatusCancelled = "cancelled"
)

// Listing is a surplus/scrap lot put up for sale. A listing starts with
// fixed-price ("open") status; converting it to auction pricing flips the
// status to "auction" and creates exactly one Auction row for it.
type Listing struct {
	ListingID       uuid.UUID       `gorm:"column:listing_id;type:uuid;primaryKey" json:"listing_id"`
	SellerID        uuid.UUID       `gorm:"column:seller_id;type:uuid;not null;index" json:"seller_id"`
	Title           string          `gorm:"column:title;not null" json:"title"`
	Material        string          `gorm:"column:material;not null" json:"material"`
	Description     string          `gorm:"column:description" json:"description"`
	Quantity        decimal.Decimal `gorm:"column:quantity;type:decimal(18,2);not null" json:"quantity"`
	QuantityUnit    string          `gorm:"column:quantity_unit;not null" json:"quantity_unit"`
	AskingPrice     decimal.Decimal `gorm:"column:asking_price;type:decimal(18,2);not null" json:"asking_price"`
	LocationCity    string          `gorm:"column:location_city" json:"location_city"`
	LocationState   string          `gorm:"column:location_state" json:"location_state"`
	LocationCountry string          `gorm:"column:location_country" json:"location_country"`
	Status          string          `gorm:"column:status;type:varchar(20);default:'open'" json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (Listing) TableName() string {
	return "Listings"
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ListingID == uuid.Nil {
		l.ListingID = uuid.New()
	}
	return nil
}
