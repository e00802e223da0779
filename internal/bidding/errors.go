package bidding

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind is the machine-readable rejection code returned to API callers.
type Kind string

const (
	KindAuctionNotFound   Kind = "auction_not_found"
	KindAuctionNotStarted Kind = "auction_not_started"
	KindAuctionEnded      Kind = "auction_ended"
	KindSelfBidding       Kind = "self_bidding"
	KindBidTooLow         Kind = "bid_too_low"
	KindContention        Kind = "contention"
	KindStorageFailure    Kind = "storage_failure"
)

// Error is a rejected bid. Only Contention is retryable with the same input:
// the operation has not taken effect. BidTooLow carries the minimum acceptable
// amount so the caller can resubmit a corrected bid.
type Error struct {
	Kind          Kind
	Message       string
	MinAcceptable *decimal.Decimal
	Retryable     bool
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func errBidTooLow(minAcceptable decimal.Decimal) *Error {
	return &Error{
		Kind:          KindBidTooLow,
		Message:       fmt.Sprintf("Bid too low; minimum acceptable amount is %s", minAcceptable.StringFixed(2)),
		MinAcceptable: &minAcceptable,
	}
}

func errContention() *Error {
	return &Error{
		Kind:      KindContention,
		Message:   "Auction is busy, please retry",
		Retryable: true,
	}
}
