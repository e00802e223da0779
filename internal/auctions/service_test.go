package auctions

import (
	"context"
	"testing"
	"time"

	"scrapmarket-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAuctionsTest(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Listing{}, &domain.Auction{},
		&domain.Bid{}, &domain.AuctionEvent{},
	))
	return &Service{DB: db}, db
}

func createOpenListing(t *testing.T, db *gorm.DB, sellerID uuid.UUID) *domain.Listing {
	t.Helper()
	l := &domain.Listing{
		SellerID:     sellerID,
		Title:        "Copper wire offcuts",
		Material:     "copper",
		Quantity:     decimal.NewFromInt(500),
		QuantityUnit: "kg",
		AskingPrice:  decimal.NewFromInt(1200),
		Status:       domain.ListingStatusOpen,
	}
	require.NoError(t, db.Create(l).Error)
	return l
}

func validInput(listingID, sellerID uuid.UUID) CreateAuctionInput {
	return CreateAuctionInput{
		ListingID:            listingID,
		SellerID:             sellerID,
		StartAt:              time.Now().Add(time.Hour),
		EndAt:                time.Now().Add(25 * time.Hour),
		StartingPrice:        decimal.NewFromInt(1000),
		MinIncrementStrategy: domain.IncrementFixed,
		MinIncrementValue:    decimal.NewFromInt(25),
		SoftCloseWindowSecs:  120,
	}
}

func TestCreateAuction_FlipsListingAndRecordsEvent(t *testing.T) {
	s, db := setupAuctionsTest(t)
	seller := uuid.New()
	listing := createOpenListing(t, db, seller)

	a, err := s.CreateAuction(context.Background(), validInput(listing.ListingID, seller))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, a.AuctionID)
	assert.Equal(t, seller, a.SellerID)
	assert.Equal(t, "1000.00", a.StartingPrice.StringFixed(2))

	var stored domain.Listing
	require.NoError(t, db.Where("listing_id = ?", listing.ListingID).First(&stored).Error)
	assert.Equal(t, domain.ListingStatusAuction, stored.Status)

	var events []domain.AuctionEvent
	require.NoError(t, db.Where("auction_id = ?", a.AuctionID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, domain.AuctionEventCreated, events[0].EventType)
	require.NotNil(t, events[0].ActorUserID)
	assert.Equal(t, seller, *events[0].ActorUserID)
}

func TestCreateAuction_DefaultsToAskingPrice(t *testing.T) {
	s, db := setupAuctionsTest(t)
	seller := uuid.New()
	listing := createOpenListing(t, db, seller)

	in := validInput(listing.ListingID, seller)
	in.StartingPrice = decimal.Zero
	a, err := s.CreateAuction(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "1200.00", a.StartingPrice.StringFixed(2))
}

func TestCreateAuction_Rejections(t *testing.T) {
	s, db := setupAuctionsTest(t)
	seller := uuid.New()
	listing := createOpenListing(t, db, seller)

	t.Run("unknown listing", func(t *testing.T) {
		_, err := s.CreateAuction(context.Background(), validInput(uuid.New(), seller))
		assert.ErrorIs(t, err, ErrListingNotFound)
	})

	t.Run("not the seller", func(t *testing.T) {
		_, err := s.CreateAuction(context.Background(), validInput(listing.ListingID, uuid.New()))
		assert.ErrorIs(t, err, ErrNotListingSeller)
	})

	t.Run("invalid window", func(t *testing.T) {
		in := validInput(listing.ListingID, seller)
		in.EndAt = in.StartAt
		_, err := s.CreateAuction(context.Background(), in)
		assert.ErrorIs(t, err, ErrInvalidWindow)
	})

	t.Run("invalid strategy", func(t *testing.T) {
		in := validInput(listing.ListingID, seller)
		in.MinIncrementStrategy = "linear"
		_, err := s.CreateAuction(context.Background(), in)
		assert.ErrorIs(t, err, ErrInvalidStrategy)
	})

	t.Run("non-positive increment", func(t *testing.T) {
		in := validInput(listing.ListingID, seller)
		in.MinIncrementValue = decimal.Zero
		_, err := s.CreateAuction(context.Background(), in)
		assert.ErrorIs(t, err, ErrInvalidIncrement)
	})

	t.Run("listing not open", func(t *testing.T) {
		_, err := s.CreateAuction(context.Background(), validInput(listing.ListingID, seller))
		require.NoError(t, err)
		_, err = s.CreateAuction(context.Background(), validInput(listing.ListingID, seller))
		assert.ErrorIs(t, err, ErrListingNotOpen)
	})
}

func TestGetAuction_DerivedState(t *testing.T) {
	s, db := setupAuctionsTest(t)
	seller := uuid.New()
	listing := createOpenListing(t, db, seller)

	a, err := s.CreateAuction(context.Background(), validInput(listing.ListingID, seller))
	require.NoError(t, err)

	view, err := s.GetAuction(context.Background(), a.AuctionID)
	require.NoError(t, err)
	assert.Equal(t, "1000.00", view.CurrentPrice.StringFixed(2))
	assert.Nil(t, view.LeaderID)
	assert.Equal(t, int64(0), view.BidCount)

	leader := uuid.New()
	base := time.Now().UTC()
	require.NoError(t, db.Create(&domain.Bid{
		AuctionID: a.AuctionID, BidderID: uuid.New(),
		Amount: decimal.NewFromInt(1050), CreatedAt: base,
	}).Error)
	require.NoError(t, db.Create(&domain.Bid{
		AuctionID: a.AuctionID, BidderID: leader,
		Amount: decimal.NewFromInt(1100), CreatedAt: base.Add(time.Second),
	}).Error)

	view, err = s.GetAuction(context.Background(), a.AuctionID)
	require.NoError(t, err)
	assert.Equal(t, "1100.00", view.CurrentPrice.StringFixed(2))
	require.NotNil(t, view.LeaderID)
	assert.Equal(t, leader, *view.LeaderID)
	assert.Equal(t, int64(2), view.BidCount)
}

func TestGetAuction_NotFound(t *testing.T) {
	s, _ := setupAuctionsTest(t)
	_, err := s.GetAuction(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrAuctionNotFound)
}

func TestListBids_NewestFirst(t *testing.T) {
	s, db := setupAuctionsTest(t)
	seller := uuid.New()
	listing := createOpenListing(t, db, seller)
	a, err := s.CreateAuction(context.Background(), validInput(listing.ListingID, seller))
	require.NoError(t, err)

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&domain.Bid{
			AuctionID: a.AuctionID, BidderID: uuid.New(),
			Amount:    decimal.NewFromInt(int64(1050 + i*50)),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}).Error)
	}

	bids, err := s.ListBids(context.Background(), a.AuctionID)
	require.NoError(t, err)
	require.Len(t, bids, 3)
	assert.Equal(t, "1150.00", bids[0].Amount.StringFixed(2))
	assert.Equal(t, "1050.00", bids[2].Amount.StringFixed(2))
}

func TestListBids_UnknownAuction(t *testing.T) {
	s, _ := setupAuctionsTest(t)
	_, err := s.ListBids(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrAuctionNotFound)
}

func TestListEvents_OldestFirst(t *testing.T) {
	s, db := setupAuctionsTest(t)
	seller := uuid.New()
	listing := createOpenListing(t, db, seller)
	a, err := s.CreateAuction(context.Background(), validInput(listing.ListingID, seller))
	require.NoError(t, err)

	require.NoError(t, db.Create(&domain.AuctionEvent{
		AuctionID: a.AuctionID,
		EventType: domain.AuctionEventBid,
		CreatedAt: time.Now().Add(time.Minute),
	}).Error)

	events, err := s.ListEvents(context.Background(), a.AuctionID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.AuctionEventCreated, events[0].EventType)
	assert.Equal(t, domain.AuctionEventBid, events[1].EventType)
}
