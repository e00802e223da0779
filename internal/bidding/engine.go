package bidding

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"scrapmarket-backend/internal/domain"
	"scrapmarket-backend/internal/notifications"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultLockWait = 3 * time.Second

// Engine owns the auction price state machine. PlaceBid is the only write
// path for Bid rows and for Auction.EndAt; every other component goes through
// it. "Current highest bid" is always derived from the ledger under the lock,
// never cached.
type Engine struct {
	DB       *gorm.DB
	Sink     notifications.Sink
	LockWait time.Duration
	Clock    func() time.Time

	locks *auctionLocks
}

// NewEngine wires an engine with defaults (wall clock, 3s lock wait).
func NewEngine(db *gorm.DB, sink notifications.Sink) *Engine {
	return &Engine{
		DB:       db,
		Sink:     sink,
		LockWait: defaultLockWait,
		Clock:    time.Now,
		locks:    newAuctionLocks(),
	}
}

// BidResult is returned for an accepted bid.
type BidResult struct {
	BidID             uuid.UUID       `json:"bid_id"`
	Amount            decimal.Decimal `json:"amount"`
	CreatedAt         time.Time       `json:"created_at"`
	SoftCloseExtended bool            `json:"soft_close_extended"`
	NewEndAt          *time.Time      `json:"new_end_at,omitempty"`
}

// PlaceBid atomically records a bid against a live auction or rejects it with
// a typed reason. All validation runs inside the locked transaction against
// freshly-read state; nothing trusted from before the lock. On success the
// bid row and any soft-close extension commit together, then notifications
// are emitted outside the lock.
func (e *Engine) PlaceBid(ctx context.Context, auctionID, bidderID uuid.UUID, amount decimal.Decimal) (*BidResult, error) {
	lockWait := e.LockWait
	if lockWait <= 0 {
		lockWait = defaultLockWait
	}
	lockCtx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()

	release, err := e.locks.acquire(lockCtx, auctionID)
	if err != nil {
		return nil, errContention()
	}
	defer release()

	now := e.now()

	var res BidResult
	var outbid *domain.Bid // displaced leader, notified after commit
	err = e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		auction, err := getAuctionForUpdate(tx, auctionID)
		if err != nil {
			return err
		}

		if now.Before(auction.StartAt) {
			return newError(KindAuctionNotStarted, "Auction has not started")
		}
		if !now.Before(auction.EndAt) {
			return newError(KindAuctionEnded, "Auction has ended")
		}
		if bidderID == auction.SellerID {
			return newError(KindSelfBidding, "Sellers cannot bid on their own auction")
		}

		highest := auction.StartingPrice
		var top domain.Bid
		err = tx.Where("auction_id = ?", auctionID).
			Order("amount DESC").Order("created_at ASC").
			First(&top).Error
		switch {
		case err == nil:
			highest = top.Amount
			outbid = &top
		case errors.Is(err, gorm.ErrRecordNotFound):
			// no bids yet; the listing's starting price stands
		default:
			return err
		}

		minAcceptable := highest.Add(MinimumIncrement(auction.MinIncrementStrategy, auction.MinIncrementValue, highest))
		// strict inequality: a bid equal to highest+increment is rejected
		if amount.Cmp(minAcceptable) <= 0 {
			return errBidTooLow(minAcceptable)
		}

		bid := domain.Bid{
			AuctionID: auctionID,
			BidderID:  bidderID,
			Amount:    amount,
			CreatedAt: now,
		}
		if err := tx.Create(&bid).Error; err != nil {
			return err
		}
		res = BidResult{BidID: bid.BidID, Amount: amount, CreatedAt: now}

		oldEndAt := auction.EndAt
		if window := auction.SoftCloseWindow(); window > 0 && auction.EndAt.Sub(now) <= window {
			newEndAt := now.Add(window)
			if newEndAt.After(auction.EndAt) {
				if err := tx.Model(&domain.Auction{}).
					Where("auction_id = ?", auctionID).
					Update("end_at", newEndAt).Error; err != nil {
					return err
				}
				res.SoftCloseExtended = true
				res.NewEndAt = &newEndAt
			}
		}

		bidData, _ := json.Marshal(map[string]interface{}{
			"bid_id": bid.BidID,
			"amount": amount.StringFixed(2),
		})
		if err := tx.Create(&domain.AuctionEvent{
			AuctionID:   auctionID,
			EventType:   domain.AuctionEventBid,
			ActorUserID: &bidderID,
			EventData:   datatypes.JSON(bidData),
			CreatedAt:   now,
		}).Error; err != nil {
			return err
		}
		if res.SoftCloseExtended {
			extData, _ := json.Marshal(map[string]interface{}{
				"old_end_at": oldEndAt,
				"new_end_at": *res.NewEndAt,
			})
			if err := tx.Create(&domain.AuctionEvent{
				AuctionID: auctionID,
				EventType: domain.AuctionEventExtended,
				EventData: datatypes.JSON(extData),
				CreatedAt: now,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var be *Error
		if errors.As(err, &be) {
			return nil, be
		}
		log.Error().Err(err).
			Str("auction_id", auctionID.String()).
			Str("bidder_id", bidderID.String()).
			Str("amount", amount.StringFixed(2)).
			Msg("bid transaction failed")
		return nil, newError(KindStorageFailure, "Internal Server Error")
	}

	e.emit(auctionID, bidderID, amount, outbid)
	return &res, nil
}

// getAuctionForUpdate re-reads the auction row with an exclusive row lock.
// sqlite (tests) has no FOR UPDATE and serializes writes itself, so the
// clause is applied on postgres only.
func getAuctionForUpdate(tx *gorm.DB, auctionID uuid.UUID) (*domain.Auction, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var auction domain.Auction
	if err := q.Where("auction_id = ?", auctionID).First(&auction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindAuctionNotFound, "Auction not found")
		}
		return nil, err
	}
	return &auction, nil
}

func (e *Engine) now() time.Time {
	if e.Clock != nil {
		return e.Clock().UTC()
	}
	return time.Now().UTC()
}

// emit publishes bid_placed (and outbid for the displaced leader) after
// commit, outside the lock. Failures are logged by the sink and dropped.
func (e *Engine) emit(auctionID, bidderID uuid.UUID, amount decimal.Decimal, outbid *domain.Bid) {
	if e.Sink == nil {
		return
	}
	events := []notifications.Event{{
		Type:      notifications.EventBidPlaced,
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount.StringFixed(2),
	}}
	if outbid != nil && outbid.BidderID != bidderID {
		events = append(events, notifications.Event{
			Type:      notifications.EventOutbid,
			AuctionID: auctionID,
			BidderID:  outbid.BidderID,
			Amount:    amount.StringFixed(2),
		})
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, ev := range events {
			_ = e.Sink.Emit(ctx, ev)
		}
	}()
}
