package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/flywheel/pkg/models"
)

type ActivityRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewActivityRepository(db *sql.DB, logger *slog.Logger) *ActivityRepository {
	return &ActivityRepository{db: db, logger: logger}
}

// Save records an activity. Saving the same id twice keeps the first row,
// since the event bus delivers at least once.
func (r *ActivityRepository) Save(ctx context.Context, activity *models.Activity) error {
	if activity.OccurredAt.IsZero() {
		activity.OccurredAt = time.Now().UTC()
	}

	var payload any
	if len(activity.Payload) > 0 {
		payload = []byte(activity.Payload)
	}

	query := `
		INSERT INTO activities (id, type, event_key, summary, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		activity.ID,
		activity.Type,
		activity.Key,
		activity.Summary,
		payload,
		activity.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save activity %s: %w", activity.ID, err)
	}

	return nil
}

// GetRecent returns up to limit activities, newest first.
func (r *ActivityRepository) GetRecent(ctx context.Context, limit int) ([]*models.Activity, error) {
	query := `
		SELECT id, type, event_key, summary, payload, occurred_at
		FROM activities
		ORDER BY occurred_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	activities := make([]*models.Activity, 0, limit)

	for rows.Next() {
		var (
			activity models.Activity
			payload  []byte
		)

		err := rows.Scan(&activity.ID, &activity.Type, &activity.Key, &activity.Summary, &payload, &activity.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}

		if len(payload) > 0 {
			activity.Payload = payload
		}

		activities = append(activities, &activity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}

	r.logger.DebugContext(ctx, "Loaded activities", "count", len(activities))

	return activities, nil
}
