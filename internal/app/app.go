package app

import (
	"scrapmarket-backend/internal/auctions"
	"scrapmarket-backend/internal/auth"
	"scrapmarket-backend/internal/bidding"
	"scrapmarket-backend/internal/config"
	"scrapmarket-backend/internal/database"
	"scrapmarket-backend/internal/deposits"
	"scrapmarket-backend/internal/health"
	"scrapmarket-backend/internal/listings"
	"scrapmarket-backend/internal/middleware"
	"scrapmarket-backend/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route registration.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
	}))

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	// Stripe webhook mounted before the session middleware so nothing
	// consumes the raw body the signature is computed over.
	stripeWebhook := &deposits.WebhookHandler{DB: db, WebhookSecret: cfg.StripeWebhookSecret}
	app.Post("/api/v1/stripe/webhook", stripeWebhook.HandleWebhook)

	sessionCfg := middleware.SessionConfig{
		Secret:       cfg.SessionSecret,
		RedisURL:     cfg.RedisURL,
		IsProduction: cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	// Health (no auth)
	healthHandlers := &health.Handlers{DB: db, Rdb: rdb}
	app.Get("/health/json", healthHandlers.JSON)

	// Auth (no auth middleware)
	var userFinder auth.UserFinder
	if db != nil {
		userFinder = &auth.GormUserFinder{DB: db}
	}
	authHandlers := &auth.Handlers{UserFinder: userFinder, Rdb: rdb, Config: sessionCfg}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)

	// --- Protected modules (auth required) ---
	if db != nil && rdb != nil {
		sink := &notifications.RedisSink{Rdb: rdb, Channel: cfg.NotifyChannel}

		// Listings module
		listingsService := &listings.Service{DB: db}
		listingsHandlers := &listings.Handlers{Service: listingsService}
		listingsGroup := app.Group("/api/v1/listings", middleware.RequireAuth())
		listingsGroup.Post("/create-listing", listingsHandlers.CreateListing)
		listingsGroup.Get("/get-all-active-listings", listingsHandlers.GetAllActiveListings)
		listingsGroup.Get("/get-my-listings", listingsHandlers.GetMyListings)
		listingsGroup.Get("/get-listing/:listing_id", listingsHandlers.GetListingByID)
		listingsGroup.Post("/cancel-listing", listingsHandlers.CancelListing)

		// Deposits module (eligibility gate)
		depositsService := &deposits.Service{
			DB:             db,
			PaymentIntents: &deposits.StripeCreator{SecretKey: cfg.StripeSecretKey},
		}
		depositsHandlers := &deposits.Handlers{Service: depositsService}
		depositsGroup := app.Group("/api/v1/deposits", middleware.RequireAuth())
		depositsGroup.Post("/request-deposit", depositsHandlers.RequestDeposit)
		depositsGroup.Get("/eligibility/:auction_id", depositsHandlers.Eligibility)

		// Auctions module + bidding engine
		engine := bidding.NewEngine(db, sink)
		engine.LockWait = cfg.BidLockWait
		biddingHandlers := &bidding.Handlers{Engine: engine, Gate: depositsService}

		auctionsService := &auctions.Service{DB: db}
		auctionsHandlers := &auctions.Handlers{Service: auctionsService}
		auctionsGroup := app.Group("/api/v1/auctions", middleware.RequireAuth())
		auctionsGroup.Post("/create-auction", auctionsHandlers.CreateAuction)
		auctionsGroup.Get("/:auction_id", auctionsHandlers.GetAuction)
		auctionsGroup.Get("/:auction_id/bids", auctionsHandlers.ListBids)
		auctionsGroup.Get("/:auction_id/events", auctionsHandlers.ListEvents)
		auctionsGroup.Post("/:auction_id/bids", biddingHandlers.PlaceBid)
	}

	return app, db, rdb, nil
}
