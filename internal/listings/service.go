package listings

import (
	"context"
	"errors"
	"fmt"

	"scrapmarket-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrListingNotFound = errors.New("Listing not found")
	ErrNotSeller       = errors.New("Only the seller can cancel a listing")
	ErrNotCancellable  = errors.New("Only open listings can be cancelled")
)

type Service struct {
	DB *gorm.DB
}

type CreateListingInput struct {
	SellerID        uuid.UUID
	Title           string
	Material        string
	Description     string
	Quantity        decimal.Decimal
	QuantityUnit    string
	AskingPrice     decimal.Decimal
	LocationCity    string
	LocationState   string
	LocationCountry string
}

func (s *Service) CreateListing(ctx context.Context, in CreateListingInput) (*domain.Listing, error) {
	listing := &domain.Listing{
		SellerID:        in.SellerID,
		Title:           in.Title,
		Material:        in.Material,
		Description:     in.Description,
		Quantity:        in.Quantity,
		QuantityUnit:    in.QuantityUnit,
		AskingPrice:     in.AskingPrice,
		LocationCity:    in.LocationCity,
		LocationState:   in.LocationState,
		LocationCountry: in.LocationCountry,
		Status:          domain.ListingStatusOpen,
	}

	if err := s.DB.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, fmt.Errorf("Failed to create listing: %v", err)
	}
	return listing, nil
}

func (s *Service) GetListingByID(ctx context.Context, listingID uuid.UUID) (*domain.Listing, error) {
	var listing domain.Listing
	if err := s.DB.WithContext(ctx).Where("listing_id = ?", listingID).First(&listing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &listing, nil
}

func (s *Service) GetAllActiveListings(ctx context.Context) ([]domain.Listing, error) {
	var listings []domain.Listing
	if err := s.DB.WithContext(ctx).
		Where("status IN ?", []string{domain.ListingStatusOpen, domain.ListingStatusAuction}).
		Order("created_at DESC").Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

func (s *Service) GetSellerListings(ctx context.Context, sellerID uuid.UUID) ([]domain.Listing, error) {
	var listings []domain.Listing
	if err := s.DB.WithContext(ctx).Where("seller_id = ?", sellerID).
		Order("created_at DESC").Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

// CancelListing cancels an open listing. Listings converted to auction are
// owned by the auction lifecycle and cannot be cancelled here.
func (s *Service) CancelListing(ctx context.Context, listingID, sellerID uuid.UUID) (*domain.Listing, error) {
	var listing domain.Listing
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", listingID).First(&listing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrListingNotFound
			}
			return err
		}
		if listing.SellerID != sellerID {
			return ErrNotSeller
		}
		if listing.Status != domain.ListingStatusOpen {
			return ErrNotCancellable
		}
		listing.Status = domain.ListingStatusCancelled
		return tx.Save(&listing).Error
	})
	if err != nil {
		return nil, err
	}
	return &listing, nil
}
