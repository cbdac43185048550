package feed

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

var _ Feed = (*RedisFeed)(nil)

// RedisFeed carries changes over Redis pub/sub so every API replica sees the
// writes of the others.
type RedisFeed struct {
	client  *redis.Client
	channel string
}

func NewRedisFeed(client *redis.Client, channel string) *RedisFeed {
	if channel == "" {
		channel = Channel
	}
	return &RedisFeed{client: client, channel: channel}
}

func (f *RedisFeed) Publish(ctx context.Context, change domain.TrackingChange) error {
	data, err := encode(change)
	if err != nil {
		return err
	}
	if err := f.client.Publish(ctx, f.channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (f *RedisFeed) Subscribe(ctx context.Context) (<-chan domain.TrackingChange, error) {
	pubsub := f.client.Subscribe(ctx, f.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", f.channel, err)
	}

	out := make(chan domain.TrackingChange)
	go func() {
		defer close(out)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case msg, ok := <-messages:
				if !ok {
					return
				}
				change, err := decode(msg.Payload)
				if err != nil {
					log.WithError(err).Warn("[FEED] dropping malformed redis message")
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
