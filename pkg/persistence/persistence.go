// Package persistence provides the storage abstraction for built workflows
// and the activity log.
package persistence

import (
	"context"

	"github.com/dukex/flywheel/pkg/models"
)

// DefaultActivityLimit applies when a caller asks for a non-positive number
// of activities.
const DefaultActivityLimit = 50

// MaxActivityLimit caps a single activity query.
const MaxActivityLimit = 500

type Persistence interface {
	// Workflows returns the stored workflows, newest first.
	Workflows(ctx context.Context) ([]*models.StoredWorkflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.StoredWorkflow) error
	// WorkflowByVersionID fails with ErrWorkflowNotFound for unknown versions.
	WorkflowByVersionID(ctx context.Context, versionID string) (*models.StoredWorkflow, error)

	SaveActivity(ctx context.Context, activity *models.Activity) error
	// Activities returns up to limit activities, newest first.
	Activities(ctx context.Context, limit int) ([]*models.Activity, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// NormalizeLimit clamps an activity limit into [1, MaxActivityLimit].
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultActivityLimit
	}

	if limit > MaxActivityLimit {
		return MaxActivityLimit
	}

	return limit
}
