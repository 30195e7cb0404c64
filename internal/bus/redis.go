package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/parleyhq/parley/internal/core"
)

const defaultChannel = "parley:messages"

// Redis is a Pub/Sub backed bus for multi-node deployments. Redis
// preserves publish order per connection and the drain goroutine
// handles messages one at a time, so the ordering guarantee of the
// in-proc bus carries over.
type Redis struct {
	client  *redis.Client
	channel string
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, channel: defaultChannel}
}

func (b *Redis) Publish(ctx context.Context, env core.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("bus publish encode: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("bus publish: %w", err)
	}
	return nil
}

func (b *Redis) Subscribe(ctx context.Context, h Handler) error {
	sub := b.client.Subscribe(ctx, b.channel)
	// Force the subscription to be established before returning so a
	// publish issued right after Subscribe is not lost.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("bus subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				log.Info().Str("module", "bus.redis").Msg("subscriber stopped")
				return
			case msg, ok := <-ch:
				if !ok {
					log.Warn().Str("module", "bus.redis").Msg("subscription channel closed")
					return
				}
				var env core.Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					log.Error().Str("module", "bus.redis").Err(err).Msg("undecodable bus message dropped")
					continue
				}
				h(env)
			}
		}
	}()
	return nil
}
