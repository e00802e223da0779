package deposits

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"scrapmarket-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testWebhookSecret = "whsec_test_secret"

func setupWebhookTest(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Deposit{}))

	wh := &WebhookHandler{DB: db, WebhookSecret: testWebhookSecret}
	app := fiber.New()
	app.Post("/api/v1/stripe/webhook", wh.HandleWebhook)
	return app, db
}

func signPayload(payload []byte, secret string, ts time.Time) string {
	timestamp := fmt.Sprintf("%d", ts.Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "." + string(payload)))
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func succeededEvent(t *testing.T, piID, depositID string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"id":   "evt_" + uuid.New().String()[:8],
		"type": "payment_intent.succeeded",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":     piID,
				"status": "succeeded",
				"metadata": map[string]string{
					"deposit_id": depositID,
				},
			},
		},
	})
	require.NoError(t, err)
	return body
}

func postWebhook(t *testing.T, app *fiber.App, body []byte, sig string) int {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/v1/stripe/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sig != "" {
		req.Header.Set("Stripe-Signature", sig)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestWebhook_AuthorizesPendingDeposit(t *testing.T) {
	app, db := setupWebhookTest(t)

	deposit := domain.Deposit{
		AuctionID:             uuid.New(),
		BidderID:              uuid.New(),
		AmountCents:           5000,
		Currency:              "usd",
		StripePaymentIntentID: "pi_webhook_1",
		Status:                domain.DepositStatusPending,
	}
	require.NoError(t, db.Create(&deposit).Error)

	body := succeededEvent(t, "pi_webhook_1", deposit.DepositID.String())
	status := postWebhook(t, app, body, signPayload(body, testWebhookSecret, time.Now()))
	assert.Equal(t, 200, status)

	var stored domain.Deposit
	require.NoError(t, db.Where("deposit_id = ?", deposit.DepositID).First(&stored).Error)
	assert.Equal(t, domain.DepositStatusAuthorized, stored.Status)
}

func TestWebhook_Idempotent(t *testing.T) {
	app, db := setupWebhookTest(t)

	deposit := domain.Deposit{
		AuctionID:             uuid.New(),
		BidderID:              uuid.New(),
		AmountCents:           5000,
		Currency:              "usd",
		StripePaymentIntentID: "pi_webhook_2",
		Status:                domain.DepositStatusPending,
	}
	require.NoError(t, db.Create(&deposit).Error)

	body := succeededEvent(t, "pi_webhook_2", deposit.DepositID.String())
	for i := 0; i < 2; i++ {
		status := postWebhook(t, app, body, signPayload(body, testWebhookSecret, time.Now()))
		assert.Equal(t, 200, status)
	}

	var stored domain.Deposit
	require.NoError(t, db.Where("deposit_id = ?", deposit.DepositID).First(&stored).Error)
	assert.Equal(t, domain.DepositStatusAuthorized, stored.Status)
}

func TestWebhook_RejectsBadSignature(t *testing.T) {
	app, db := setupWebhookTest(t)

	deposit := domain.Deposit{
		AuctionID:             uuid.New(),
		BidderID:              uuid.New(),
		AmountCents:           5000,
		Currency:              "usd",
		StripePaymentIntentID: "pi_webhook_3",
		Status:                domain.DepositStatusPending,
	}
	require.NoError(t, db.Create(&deposit).Error)

	body := succeededEvent(t, "pi_webhook_3", deposit.DepositID.String())

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, 400, postWebhook(t, app, body, ""))
	})

	t.Run("wrong secret", func(t *testing.T) {
		assert.Equal(t, 400, postWebhook(t, app, body, signPayload(body, "whsec_wrong", time.Now())))
	})

	t.Run("stale timestamp", func(t *testing.T) {
		stale := signPayload(body, testWebhookSecret, time.Now().Add(-10*time.Minute))
		assert.Equal(t, 400, postWebhook(t, app, body, stale))
	})

	var stored domain.Deposit
	require.NoError(t, db.Where("deposit_id = ?", deposit.DepositID).First(&stored).Error)
	assert.Equal(t, domain.DepositStatusPending, stored.Status, "rejected webhooks must not touch the deposit")
}

func TestWebhook_UnknownIntentStillReturns200(t *testing.T) {
	app, _ := setupWebhookTest(t)
	body := succeededEvent(t, "pi_unknown", uuid.New().String())
	assert.Equal(t, 200, postWebhook(t, app, body, signPayload(body, testWebhookSecret, time.Now())))
}

func TestWebhook_IgnoresOtherEventTypes(t *testing.T) {
	app, db := setupWebhookTest(t)

	deposit := domain.Deposit{
		AuctionID:             uuid.New(),
		BidderID:              uuid.New(),
		AmountCents:           5000,
		Currency:              "usd",
		StripePaymentIntentID: "pi_webhook_4",
		Status:                domain.DepositStatusPending,
	}
	require.NoError(t, db.Create(&deposit).Error)

	body, err := json.Marshal(map[string]interface{}{
		"id":   "evt_other",
		"type": "payment_intent.created",
		"data": map[string]interface{}{
			"object": map[string]interface{}{"id": "pi_webhook_4"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 200, postWebhook(t, app, body, signPayload(body, testWebhookSecret, time.Now())))

	var stored domain.Deposit
	require.NoError(t, db.Where("deposit_id = ?", deposit.DepositID).First(&stored).Error)
	assert.Equal(t, domain.DepositStatusPending, stored.Status)
}
