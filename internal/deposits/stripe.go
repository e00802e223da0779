package deposits

import (
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// PaymentIntentResult is the subset of the Stripe PaymentIntent the frontend needs.
type PaymentIntentResult struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// PaymentIntentCreator abstracts Stripe PaymentIntent creation for testability.
type PaymentIntentCreator interface {
	Create(amountCents int64, currency string, metadata map[string]string) (*PaymentIntentResult, error)
}

// StripeCreator creates PaymentIntents via the Stripe Go SDK.
type StripeCreator struct {
	SecretKey string
}

func (s *StripeCreator) Create(amountCents int64, currency string, metadata map[string]string) (*PaymentIntentResult, error) {
	stripe.Key = s.SecretKey
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}
	return &PaymentIntentResult{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}
