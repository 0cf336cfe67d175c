package chain

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/puzzlewager/puzzlewager/internal/metrics"
)

// Ingestor consumes record change events from the indexer's Redis Pub/Sub
// channel and applies them to the snapshot store.
type Ingestor struct {
	redis   *redis.Client
	store   *Store
	channel string
	logger  zerolog.Logger
}

// NewIngestor creates a Pub/Sub powered chain event ingestor.
func NewIngestor(redisClient *redis.Client, store *Store, channel string, logger zerolog.Logger) *Ingestor {
	if channel == "" {
		channel = "chain:record-events"
	}
	return &Ingestor{
		redis:   redisClient,
		store:   store,
		channel: channel,
		logger:  logger.With().Str("component", "chain_ingestor").Logger(),
	}
}

// Run subscribes to the event channel and blocks until the context is
// cancelled. Malformed events are logged and skipped; the stream must
// keep flowing even when one table update is garbage.
func (in *Ingestor) Run(ctx context.Context) error {
	sub := in.redis.Subscribe(ctx, in.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			in.apply(msg.Payload)
		}
	}
}

func (in *Ingestor) apply(payload string) {
	var ev RecordEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		in.logger.Warn().Err(err).Msg("skip undecodable record event")
		return
	}
	if err := in.store.Apply(ev); err != nil {
		in.logger.Warn().Err(err).Str("table", ev.Table).Str("match_id", ev.MatchID).
			Msg("skip unappliable record event")
		return
	}
	metrics.ChainEventsTotal.WithLabelValues(ev.Table).Inc()
}
