package bidding

import (
	"github.com/shopspring/decimal"

	"scrapmarket-backend/internal/domain"
)

// MinimumIncrement returns the smallest amount by which a new bid must exceed
// the current highest. Fixed strategy is a flat amount; percent is a fraction
// of the current highest (e.g. value 0.05 on $200 → $10), rounded to cents.
func MinimumIncrement(strategy string, value, currentHighest decimal.Decimal) decimal.Decimal {
	if strategy == domain.IncrementPercent {
		return currentHighest.Mul(value).Round(2)
	}
	return value
}
