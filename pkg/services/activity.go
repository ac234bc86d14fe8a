package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dukex/flywheel/pkg/eventbus"
	"github.com/dukex/flywheel/pkg/events"
	"github.com/dukex/flywheel/pkg/models"
	"github.com/dukex/flywheel/pkg/persistence"
)

// Activity keeps the log of everything the service did.
type Activity struct {
	persistence persistence.Persistence
	logger      *slog.Logger
}

func NewActivity(persistence persistence.Persistence, logger *slog.Logger) *Activity {
	return &Activity{
		persistence: persistence,
		logger:      logger.With("service", "activity"),
	}
}

// Register subscribes the recorder to every event type.
func (a *Activity) Register(subscriber eventbus.EventSubscriber) error {
	for _, eventType := range events.Types {
		err := subscriber.Handle(eventType, a.Record)
		if err != nil {
			return fmt.Errorf("failed to register activity handler for %s: %w", eventType, err)
		}
	}

	return nil
}

// Record stores event as an activity. It is an eventbus.EventHandler.
func (a *Activity) Record(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.GetType(), err)
	}

	envelope := event.Envelope()

	activity := &models.Activity{
		ID:         envelope.ID,
		Type:       string(event.GetType()),
		Key:        eventbus.KeyFromContext(ctx),
		Summary:    event.Summary(),
		Payload:    payload,
		OccurredAt: envelope.Timestamp,
	}

	err = a.persistence.SaveActivity(ctx, activity)
	if err != nil {
		return fmt.Errorf("failed to record activity %s: %w", activity.ID, err)
	}

	a.logger.DebugContext(ctx, "Recorded activity", "type", activity.Type, "summary", activity.Summary)

	return nil
}

// Recent returns up to limit activities, newest first. Non-positive limits
// use the default and large ones are capped.
func (a *Activity) Recent(ctx context.Context, limit int) ([]*models.Activity, error) {
	activities, err := a.persistence.Activities(ctx, persistence.NormalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	return activities, nil
}
