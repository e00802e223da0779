package deposits

import (
	"scrapmarket-backend/internal/middleware"
	"scrapmarket-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

// RequestDeposit POST /api/v1/deposits/request-deposit
func (h *Handlers) RequestDeposit(c *fiber.Ctx) error {
	var body struct {
		AuctionID   string `json:"auction_id"`
		AmountCents int64  `json:"amount_cents"`
		Currency    string `json:"currency"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.AuctionID == "" || body.AmountCents == 0 {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	auctionID, err := uuid.Parse(body.AuctionID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for auction_id", 400, nil)
	}
	if body.AmountCents <= 0 {
		return response.Error(c, "Amount must be a positive number", 400, nil)
	}
	currency := body.Currency
	if currency == "" {
		currency = "usd"
	}

	actor := getActorDeposits(c)
	if actor == nil || actor.UserID == "" {
		return response.Unauthorized(c, "Unauthorized")
	}
	bidderID, err := uuid.Parse(actor.UserID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for user_id", 400, nil)
	}

	result, err := h.Service.RequestDeposit(c.Context(), auctionID, bidderID, body.AmountCents, currency)
	if err != nil {
		switch err {
		case ErrAuctionNotFound:
			return response.Error(c, err.Error(), 404, nil)
		case ErrAlreadyDeposited:
			return response.Error(c, err.Error(), 400, nil)
		default:
			return response.Error(c, "Internal Server Error", 500, nil)
		}
	}
	return response.Success(c, "Deposit payment intent created", result, nil)
}

// Eligibility GET /api/v1/deposits/eligibility/:auction_id
func (h *Handlers) Eligibility(c *fiber.Ctx) error {
	auctionID, err := uuid.Parse(c.Params("auction_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for auction_id", 400, nil)
	}
	actor := getActorDeposits(c)
	if actor == nil || actor.UserID == "" {
		return response.Unauthorized(c, "Unauthorized")
	}
	bidderID, err := uuid.Parse(actor.UserID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for user_id", 400, nil)
	}

	eligible, err := h.Service.IsEligibleToBid(c.Context(), auctionID, bidderID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Eligibility checked", fiber.Map{"eligible": eligible}, nil)
}

type depositsActor struct {
	UserID string
}

func getActorDeposits(c *fiber.Ctx) *depositsActor {
	u := middleware.GetUser(c)
	if u == nil {
		return nil
	}
	m, ok := u.(map[string]interface{})
	if !ok {
		return nil
	}
	userID, _ := m["user_id"].(string)
	return &depositsActor{UserID: userID}
}
