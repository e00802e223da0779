package listings

import (
	"scrapmarket-backend/internal/middleware"
	"scrapmarket-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *Service
}

// CreateListing POST /api/v1/listings/create-listing
func (h *Handlers) CreateListing(c *fiber.Ctx) error {
	var body struct {
		Title           string          `json:"title"`
		Material        string          `json:"material"`
		Description     string          `json:"description"`
		Quantity        decimal.Decimal `json:"quantity"`
		QuantityUnit    string          `json:"quantity_unit"`
		AskingPrice     decimal.Decimal `json:"asking_price"`
		LocationCity    string          `json:"location_city"`
		LocationState   string          `json:"location_state"`
		LocationCountry string          `json:"location_country"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.Title == "" || body.Material == "" || body.QuantityUnit == "" {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.Quantity.Cmp(decimal.Zero) <= 0 || body.AskingPrice.Cmp(decimal.Zero) <= 0 {
		return response.Error(c, "Amount must be a positive number", 400, nil)
	}

	actor := getActorListings(c)
	if actor == nil || actor.UserID == "" {
		return response.Unauthorized(c, "Unauthorized")
	}
	sellerID, err := uuid.Parse(actor.UserID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for user_id", 400, nil)
	}

	listing, err := h.Service.CreateListing(c.Context(), CreateListingInput{
		SellerID:        sellerID,
		Title:           body.Title,
		Material:        body.Material,
		Description:     body.Description,
		Quantity:        body.Quantity,
		QuantityUnit:    body.QuantityUnit,
		AskingPrice:     body.AskingPrice,
		LocationCity:    body.LocationCity,
		LocationState:   body.LocationState,
		LocationCountry: body.LocationCountry,
	})
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.SuccessCreated(c, "Listing created successfully", listing, nil)
}

// GetListingByID GET /api/v1/listings/get-listing/:listing_id
func (h *Handlers) GetListingByID(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("listing_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for listing_id", 400, nil)
	}
	listing, err := h.Service.GetListingByID(c.Context(), listingID)
	if err != nil {
		if err == ErrListingNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Listing fetched", listing, nil)
}

// GetAllActiveListings GET /api/v1/listings/get-all-active-listings
func (h *Handlers) GetAllActiveListings(c *fiber.Ctx) error {
	listings, err := h.Service.GetAllActiveListings(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Listings fetched", listings, nil)
}

// GetMyListings GET /api/v1/listings/get-my-listings
func (h *Handlers) GetMyListings(c *fiber.Ctx) error {
	actor := getActorListings(c)
	if actor == nil || actor.UserID == "" {
		return response.Unauthorized(c, "Unauthorized")
	}
	sellerID, err := uuid.Parse(actor.UserID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for user_id", 400, nil)
	}
	listings, err := h.Service.GetSellerListings(c.Context(), sellerID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Listings fetched", listings, nil)
}

// CancelListing POST /api/v1/listings/cancel-listing
func (h *Handlers) CancelListing(c *fiber.Ctx) error {
	var body struct {
		ListingID string `json:"listing_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.ListingID == "" {
		return response.Error(c, "listing_id is required", 400, nil)
	}
	listingID, err := uuid.Parse(body.ListingID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for listing_id", 400, nil)
	}
	actor := getActorListings(c)
	if actor == nil || actor.UserID == "" {
		return response.Unauthorized(c, "Unauthorized")
	}
	sellerID, err := uuid.Parse(actor.UserID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for user_id", 400, nil)
	}

	listing, err := h.Service.CancelListing(c.Context(), listingID, sellerID)
	if err != nil {
		statusMap := map[string]int{
			ErrListingNotFound.Error(): 404,
			ErrNotSeller.Error():       403,
			ErrNotCancellable.Error():  400,
		}
		if code, ok := statusMap[err.Error()]; ok {
			return response.Error(c, err.Error(), code, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Listing cancelled", listing, nil)
}

type listingsActor struct {
	UserID string
}

func getActorListings(c *fiber.Ctx) *listingsActor {
	u := middleware.GetUser(c)
	if u == nil {
		return nil
	}
	m, ok := u.(map[string]interface{})
	if !ok {
		return nil
	}
	userID, _ := m["user_id"].(string)
	return &listingsActor{UserID: userID}
}
