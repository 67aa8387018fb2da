package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mvaleed/mjcatalog/internal/domain"
)

// ChannelPrefix is prepended to the event type to form the Pub/Sub channel:
// mjcatalog:events:{type}.
const ChannelPrefix = "mjcatalog:events:"

// RedisPublisher publishes events as JSON over Redis Pub/Sub.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Channel returns the channel an event type is published on.
func Channel(eventType string) string {
	return ChannelPrefix + eventType
}

func (p *RedisPublisher) Publish(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event %s: %w", event.ID, err)
	}
	if err := p.client.Publish(ctx, Channel(event.Type), payload).Err(); err != nil {
		return fmt.Errorf("publishing event %s: %w", event.ID, err)
	}
	return nil
}

// PublishBatch sends all events in a single pipeline round trip.
func (p *RedisPublisher) PublishBatch(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	pipe := p.client.Pipeline()
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshaling event %s: %w", e.ID, err)
		}
		pipe.Publish(ctx, Channel(e.Type), payload)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publishing %d events: %w", len(events), err)
	}
	return nil
}

// Close is a no-op; the Redis client is owned by the caller.
func (p *RedisPublisher) Close() error {
	return nil
}
