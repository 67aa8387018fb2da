package service

import (
	"context"
	"log/slog"

	"github.com/mvaleed/mjcatalog/internal/domain"
	"github.com/mvaleed/mjcatalog/internal/event"
	"github.com/mvaleed/mjcatalog/internal/result"
)

// emitter publishes domain events after successful mutations. Publish
// failures are logged and never change the use case's result.
type emitter struct {
	publisher event.Publisher
	logger    *slog.Logger
}

func (e emitter) emit(ctx context.Context, ev domain.Event) {
	if err := e.publisher.Publish(ctx, ev); err != nil {
		e.logger.WarnContext(ctx, "event publish failed",
			slog.String("event_type", ev.Type),
			slog.String("subject", ev.Subject),
			slog.String("error", err.Error()),
		)
	}
}

// emitOnSuccess publishes build(value) when r succeeded and returns r unchanged.
func emitOnSuccess[T any](ctx context.Context, e emitter, r result.Result[T], build func(T) domain.Event) result.Result[T] {
	if r.IsSuccess() {
		e.emit(ctx, build(r.Value()))
	}
	return r
}
