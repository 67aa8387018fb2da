// Package event provides event publishing abstractions.
//
// The service layer publishes a domain event after every successful
// mutation and never fails a request because publishing failed. Which
// publisher runs is chosen in main.go from the EVENT_SINK setting.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mvaleed/mjcatalog/internal/domain"
)

// Publisher is the interface for publishing domain events.
// Implementations can be swapped without changing business logic.
type Publisher interface {
	// Publish sends an event to the sink.
	Publish(ctx context.Context, event domain.Event) error

	// PublishBatch sends multiple events. Some sinks optimize for batching.
	PublishBatch(ctx context.Context, events []domain.Event) error

	// Close cleanly shuts down the publisher.
	Close() error
}

// New returns the publisher for the named sink: "log", "redis" or "none".
// The redis sink needs a non-nil publisher built with NewRedisPublisher.
func New(sink string, logger *slog.Logger, redisPublisher *RedisPublisher) (Publisher, error) {
	switch sink {
	case "log", "":
		return NewLoggingPublisher(logger), nil
	case "redis":
		if redisPublisher == nil {
			return nil, fmt.Errorf("event sink %q requires a redis client", sink)
		}
		return redisPublisher, nil
	case "none":
		return NewNoopPublisher(), nil
	}
	return nil, fmt.Errorf("unknown event sink %q", sink)
}

// LoggingPublisher writes each event as one structured log line.
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) Publish(ctx context.Context, event domain.Event) error {
	p.logger.InfoContext(ctx, "catalog event", eventAttrs(event)...)
	return nil
}

func (p *LoggingPublisher) PublishBatch(ctx context.Context, events []domain.Event) error {
	for i, e := range events {
		attrs := append(eventAttrs(e), slog.Int("batch_index", i), slog.Int("batch_size", len(events)))
		p.logger.InfoContext(ctx, "catalog event", attrs...)
	}
	return nil
}

func eventAttrs(e domain.Event) []any {
	data, err := json.Marshal(e.Data)
	if err != nil {
		data = []byte(fmt.Sprintf("%q", err.Error()))
	}
	return []any{
		slog.String("event_id", e.ID.String()),
		slog.String("event_type", e.Type),
		slog.String("subject", e.Subject),
		slog.Time("timestamp", e.Timestamp),
		slog.String("data", string(data)),
	}
}

func (p *LoggingPublisher) Close() error {
	return nil
}

// NoopPublisher drops every event. Selected by EVENT_SINK=none.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (p *NoopPublisher) Publish(ctx context.Context, event domain.Event) error {
	return nil
}

func (p *NoopPublisher) PublishBatch(ctx context.Context, events []domain.Event) error {
	return nil
}

func (p *NoopPublisher) Close() error {
	return nil
}
