package services

import (
	"context"
	"log/slog"

	"github.com/dukex/flywheel/pkg/eventbus"
	"github.com/dukex/flywheel/pkg/events"
)

// publishEvent emits an activity event. The operation it records already
// succeeded, so a bus failure is only logged.
func publishEvent(ctx context.Context, publisher eventbus.EventPublisher, logger *slog.Logger, key string, event events.Event) {
	if publisher == nil {
		return
	}

	err := publisher.Publish(ctx, key, event)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to publish event",
			"event_type", event.GetType(),
			"key", key,
			"error", err)
	}
}
