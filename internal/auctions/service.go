package auctions

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"scrapmarket-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrListingNotFound  = errors.New("Listing not found")
	ErrNotListingSeller = errors.New("Only the seller can convert a listing to auction")
	ErrListingNotOpen   = errors.New("Listing is not open for auction conversion")
	ErrAuctionNotFound  = errors.New("Auction not found")
	ErrInvalidWindow    = errors.New("end_at must be after start_at")
	ErrInvalidIncrement = errors.New("min_increment_value must be positive")
	ErrInvalidStrategy  = errors.New("min_increment_strategy must be fixed or percent")
)

type Service struct {
	DB *gorm.DB
}

type CreateAuctionInput struct {
	ListingID            uuid.UUID
	SellerID             uuid.UUID
	StartAt              time.Time
	EndAt                time.Time
	StartingPrice        decimal.Decimal // zero → listing asking price
	MinIncrementStrategy string
	MinIncrementValue    decimal.Decimal
	SoftCloseWindowSecs  int
}

// CreateAuction converts an open listing the caller sells to auction pricing.
// The listing status flip, the auction row and the CREATED audit event commit
// together.
func (s *Service) CreateAuction(ctx context.Context, in CreateAuctionInput) (*domain.Auction, error) {
	if !in.EndAt.After(in.StartAt) {
		return nil, ErrInvalidWindow
	}
	switch in.MinIncrementStrategy {
	case domain.IncrementFixed, domain.IncrementPercent:
	default:
		return nil, ErrInvalidStrategy
	}
	if in.MinIncrementValue.Cmp(decimal.Zero) <= 0 {
		return nil, ErrInvalidIncrement
	}
	if in.SoftCloseWindowSecs <= 0 {
		in.SoftCloseWindowSecs = 120
	}

	var auction *domain.Auction
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var listing domain.Listing
		if err := tx.Where("listing_id = ?", in.ListingID).First(&listing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrListingNotFound
			}
			return err
		}
		if listing.SellerID != in.SellerID {
			return ErrNotListingSeller
		}
		if listing.Status != domain.ListingStatusOpen {
			return ErrListingNotOpen
		}

		startingPrice := in.StartingPrice
		if startingPrice.Cmp(decimal.Zero) <= 0 {
			startingPrice = listing.AskingPrice
		}

		a := domain.Auction{
			ListingID:            listing.ListingID,
			SellerID:             listing.SellerID,
			StartAt:              in.StartAt,
			EndAt:                in.EndAt,
			StartingPrice:        startingPrice,
			MinIncrementStrategy: in.MinIncrementStrategy,
			MinIncrementValue:    in.MinIncrementValue,
			SoftCloseWindowSecs:  in.SoftCloseWindowSecs,
		}
		if err := tx.Create(&a).Error; err != nil {
			return err
		}

		if err := tx.Model(&domain.Listing{}).
			Where("listing_id = ?", listing.ListingID).
			Update("status", domain.ListingStatusAuction).Error; err != nil {
			return err
		}

		eventData, _ := json.Marshal(map[string]interface{}{
			"starting_price":    startingPrice.StringFixed(2),
			"start_at":          a.StartAt,
			"end_at":            a.EndAt,
			"soft_close_window": a.SoftCloseWindowSecs,
		})
		if err := tx.Create(&domain.AuctionEvent{
			AuctionID:   a.AuctionID,
			EventType:   domain.AuctionEventCreated,
			ActorUserID: &in.SellerID,
			EventData:   datatypes.JSON(eventData),
		}).Error; err != nil {
			return err
		}

		auction = &a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return auction, nil
}

// AuctionView is the auction plus its derived price state.
type AuctionView struct {
	domain.Auction
	CurrentPrice decimal.Decimal `json:"current_price"`
	LeaderID     *uuid.UUID      `json:"leader_id"`
	BidCount     int64           `json:"bid_count"`
}

// GetAuction returns the auction with current highest derived from the bid
// ledger (read-only; the authoritative derivation happens under the engine's
// lock at bid time).
func (s *Service) GetAuction(ctx context.Context, auctionID uuid.UUID) (*AuctionView, error) {
	var auction domain.Auction
	if err := s.DB.WithContext(ctx).Where("auction_id = ?", auctionID).First(&auction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, err
	}

	view := &AuctionView{Auction: auction, CurrentPrice: auction.StartingPrice}

	var top domain.Bid
	err := s.DB.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("amount DESC").Order("created_at ASC").
		First(&top).Error
	if err == nil {
		view.CurrentPrice = top.Amount
		view.LeaderID = &top.BidderID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).Model(&domain.Bid{}).
		Where("auction_id = ?", auctionID).
		Count(&view.BidCount).Error; err != nil {
		return nil, err
	}
	return view, nil
}

// ListBids returns the auction's bid ledger, newest first.
func (s *Service) ListBids(ctx context.Context, auctionID uuid.UUID) ([]domain.Bid, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&domain.Auction{}).
		Where("auction_id = ?", auctionID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrAuctionNotFound
	}
	var bids []domain.Bid
	if err := s.DB.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("created_at DESC").
		Find(&bids).Error; err != nil {
		return nil, err
	}
	return bids, nil
}

// ListEvents returns the auction's audit trail, oldest first.
func (s *Service) ListEvents(ctx context.Context, auctionID uuid.UUID) ([]domain.AuctionEvent, error) {
	var events []domain.AuctionEvent
	if err := s.DB.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
