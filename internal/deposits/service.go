package deposits

import (
	"context"
	"errors"
	"strconv"

	"scrapmarket-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrAuctionNotFound  = errors.New("Auction not found")
	ErrAlreadyDeposited = errors.New("Deposit already authorized for this auction")
)

// Service owns deposit bookkeeping and is the eligibility gate for bidding:
// a bidder may bid when KYC is verified, terms are accepted and an authorized
// deposit exists for the auction. Capture/settlement never happens here.
type Service struct {
	DB             *gorm.DB
	PaymentIntents PaymentIntentCreator
}

// RequestDepositResult is returned to the frontend to complete payment.
type RequestDepositResult struct {
	DepositID       uuid.UUID `json:"deposit_id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	ClientSecret    string    `json:"client_secret"`
}

// RequestDeposit creates a pending Deposit row plus a Stripe PaymentIntent
// for it. The deposit flips to authorized when the webhook confirms payment.
func (s *Service) RequestDeposit(ctx context.Context, auctionID, bidderID uuid.UUID, amountCents int64, currency string) (*RequestDepositResult, error) {
	var auction domain.Auction
	if err := s.DB.WithContext(ctx).Where("auction_id = ?", auctionID).First(&auction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, err
	}

	var existing domain.Deposit
	err := s.DB.WithContext(ctx).
		Where("auction_id = ? AND bidder_id = ? AND status = ?", auctionID, bidderID, domain.DepositStatusAuthorized).
		First(&existing).Error
	if err == nil {
		return nil, ErrAlreadyDeposited
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	deposit := domain.Deposit{
		DepositID:   uuid.New(),
		AuctionID:   auctionID,
		BidderID:    bidderID,
		AmountCents: amountCents,
		Currency:    currency,
		Status:      domain.DepositStatusPending,
	}

	pi, err := s.PaymentIntents.Create(amountCents, currency, map[string]string{
		"deposit_id": deposit.DepositID.String(),
		"auction_id": auctionID.String(),
		"bidder_id":  bidderID.String(),
		"amount":     strconv.FormatInt(amountCents, 10),
	})
	if err != nil {
		return nil, err
	}
	deposit.StripePaymentIntentID = pi.ID

	if err := s.DB.WithContext(ctx).Create(&deposit).Error; err != nil {
		return nil, err
	}

	return &RequestDepositResult{
		DepositID:       deposit.DepositID,
		PaymentIntentID: pi.ID,
		ClientSecret:    pi.ClientSecret,
	}, nil
}

// IsEligibleToBid implements the bidding eligibility gate.
func (s *Service) IsEligibleToBid(ctx context.Context, auctionID, bidderID uuid.UUID) (bool, error) {
	var user domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", bidderID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if !user.KycVerified || user.TermsAcceptedAt == nil {
		return false, nil
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&domain.Deposit{}).
		Where("auction_id = ? AND bidder_id = ? AND status = ?", auctionID, bidderID, domain.DepositStatusAuthorized).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
