package bidding

import (
	"context"
	"errors"

	"scrapmarket-backend/internal/middleware"
	"scrapmarket-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EligibilityGate answers "is this bidder allowed to bid on this auction"
// (deposit authorized, KYC, terms). Checked before PlaceBid; the engine
// itself only enforces auction-state and price invariants.
type EligibilityGate interface {
	IsEligibleToBid(ctx context.Context, auctionID, bidderID uuid.UUID) (bool, error)
}

type Handlers struct {
	Engine *Engine
	Gate   EligibilityGate
}

// PlaceBid POST /api/v1/auctions/:auction_id/bids
func (h *Handlers) PlaceBid(c *fiber.Ctx) error {
	auctionID, err := uuid.Parse(c.Params("auction_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for auction_id", 400, nil)
	}

	var body struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "amount is required", 400, nil)
	}
	if body.Amount.Cmp(decimal.Zero) <= 0 {
		return response.Error(c, "Amount must be a positive number", 400, nil)
	}

	actor := getActorBidding(c)
	if actor == nil || actor.UserID == "" {
		return response.Unauthorized(c, "Unauthorized")
	}
	bidderID, err := uuid.Parse(actor.UserID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for user_id", 400, nil)
	}

	if h.Gate != nil {
		ok, err := h.Gate.IsEligibleToBid(c.Context(), auctionID, bidderID)
		if err != nil {
			return response.Error(c, "Internal Server Error", 500, nil)
		}
		if !ok {
			return response.Error(c, "Bidder is not eligible to bid on this auction", 403, nil)
		}
	}

	result, err := h.Engine.PlaceBid(c.Context(), auctionID, bidderID, body.Amount)
	if err != nil {
		var be *Error
		if errors.As(err, &be) {
			details := fiber.Map{"code": string(be.Kind), "retryable": be.Retryable}
			if be.MinAcceptable != nil {
				details["min_acceptable"] = be.MinAcceptable.StringFixed(2)
			}
			return response.Error(c, be.Message, httpStatus(be.Kind), details)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}

	payload := fiber.Map{
		"bid_id":              result.BidID,
		"amount":              result.Amount.StringFixed(2),
		"created_at":          result.CreatedAt,
		"soft_close_extended": result.SoftCloseExtended,
	}
	if result.NewEndAt != nil {
		payload["new_end_at"] = result.NewEndAt
	}
	return response.Success(c, "Bid placed", payload, nil)
}

func httpStatus(k Kind) int {
	switch k {
	case KindAuctionNotFound:
		return 404
	case KindAuctionNotStarted, KindAuctionEnded, KindBidTooLow:
		return 400
	case KindSelfBidding:
		return 403
	case KindContention:
		return 409
	default:
		return 500
	}
}

type biddingActor struct {
	UserID string
}

func getActorBidding(c *fiber.Ctx) *biddingActor {
	u := middleware.GetUser(c)
	if u == nil {
		return nil
	}
	m, ok := u.(map[string]interface{})
	if !ok {
		return nil
	}
	userID, _ := m["user_id"].(string)
	return &biddingActor{UserID: userID}
}
