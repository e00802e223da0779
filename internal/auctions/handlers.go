package auctions

import (
	"time"

	"scrapmarket-backend/internal/middleware"
	"scrapmarket-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *Service
}

// CreateAuction POST /api/v1/auctions/create-auction
func (h *Handlers) CreateAuction(c *fiber.Ctx) error {
	var body struct {
		ListingID            string          `json:"listing_id"`
		StartAt              time.Time       `json:"start_at"`
		EndAt                time.Time       `json:"end_at"`
		StartingPrice        decimal.Decimal `json:"starting_price"`
		MinIncrementStrategy string          `json:"min_increment_strategy"`
		MinIncrementValue    decimal.Decimal `json:"min_increment_value"`
		SoftCloseWindowSecs  int             `json:"soft_close_window_secs"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.ListingID == "" || body.StartAt.IsZero() || body.EndAt.IsZero() {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	listingID, err := uuid.Parse(body.ListingID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for listing_id", 400, nil)
	}

	actor := getActorAuctions(c)
	if actor == nil || actor.UserID == "" {
		return response.Unauthorized(c, "Unauthorized")
	}
	sellerID, err := uuid.Parse(actor.UserID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for user_id", 400, nil)
	}

	strategy := body.MinIncrementStrategy
	if strategy == "" {
		strategy = "fixed"
	}

	auction, err := h.Service.CreateAuction(c.Context(), CreateAuctionInput{
		ListingID:            listingID,
		SellerID:             sellerID,
		StartAt:              body.StartAt,
		EndAt:                body.EndAt,
		StartingPrice:        body.StartingPrice,
		MinIncrementStrategy: strategy,
		MinIncrementValue:    body.MinIncrementValue,
		SoftCloseWindowSecs:  body.SoftCloseWindowSecs,
	})
	if err != nil {
		statusMap := map[string]int{
			ErrListingNotFound.Error():  404,
			ErrNotListingSeller.Error(): 403,
			ErrListingNotOpen.Error():   400,
			ErrInvalidWindow.Error():    400,
			ErrInvalidStrategy.Error():  400,
			ErrInvalidIncrement.Error(): 400,
		}
		if code, ok := statusMap[err.Error()]; ok {
			return response.Error(c, err.Error(), code, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.SuccessCreated(c, "Auction created", auction, nil)
}

// GetAuction GET /api/v1/auctions/:auction_id
func (h *Handlers) GetAuction(c *fiber.Ctx) error {
	auctionID, err := uuid.Parse(c.Params("auction_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for auction_id", 400, nil)
	}
	view, err := h.Service.GetAuction(c.Context(), auctionID)
	if err != nil {
		if err == ErrAuctionNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Auction fetched", view, nil)
}

// ListBids GET /api/v1/auctions/:auction_id/bids
func (h *Handlers) ListBids(c *fiber.Ctx) error {
	auctionID, err := uuid.Parse(c.Params("auction_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for auction_id", 400, nil)
	}
	bids, err := h.Service.ListBids(c.Context(), auctionID)
	if err != nil {
		if err == ErrAuctionNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Bids fetched", bids, nil)
}

// ListEvents GET /api/v1/auctions/:auction_id/events
func (h *Handlers) ListEvents(c *fiber.Ctx) error {
	auctionID, err := uuid.Parse(c.Params("auction_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for auction_id", 400, nil)
	}
	events, err := h.Service.ListEvents(c.Context(), auctionID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Auction events fetched", events, nil)
}

type auctionsActor struct {
	UserID string
}

func getActorAuctions(c *fiber.Ctx) *auctionsActor {
	u := middleware.GetUser(c)
	if u == nil {
		return nil
	}
	m, ok := u.(map[string]interface{})
	if !ok {
		return nil
	}
	userID, _ := m["user_id"].(string)
	return &auctionsActor{UserID: userID}
}
