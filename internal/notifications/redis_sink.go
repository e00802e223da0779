package notifications

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const defaultChannel = "auction.events"

// RedisSink publishes events as JSON on a Redis pub/sub channel. Consumers
// (email/push workers) subscribe out of process.
type RedisSink struct {
	Rdb     *redis.Client
	Channel string
}

func (s *RedisSink) Emit(ctx context.Context, ev Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	ch := s.Channel
	if ch == "" {
		ch = defaultChannel
	}
	if err := s.Rdb.Publish(ctx, ch, b).Err(); err != nil {
		log.Warn().Err(err).Str("type", ev.Type).Str("auction_id", ev.AuctionID.String()).Msg("notification publish failed")
		return err
	}
	return nil
}
