package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/flywheel/pkg/eventbus"
	"github.com/dukex/flywheel/pkg/events"
	"github.com/dukex/flywheel/pkg/models"
	"github.com/dukex/flywheel/pkg/persistence"
	"github.com/dukex/flywheel/pkg/workflow"
)

type Workflow struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	builder     *workflow.Builder
	logger      *slog.Logger
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(
	persistence persistence.Persistence,
	publisher eventbus.EventPublisher,
	builder *workflow.Builder,
	logger *slog.Logger,
) *Workflow {
	if builder == nil {
		builder = workflow.NewBuilder()
	}

	return &Workflow{
		persistence: persistence,
		publisher:   publisher,
		builder:     builder,
		logger:      logger.With("service", "workflow"),
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// Build assembles a workflow document, stores it for later download and
// records a workflow.built event.
func (w *Workflow) Build(ctx context.Context, opts workflow.Options) (*workflow.BuildResult, error) {
	result := w.builder.Build(opts)

	stored := &models.StoredWorkflow{
		VersionID:    result.Workflow.VersionID,
		Name:         result.Workflow.Name,
		FormPath:     opts.FormPath,
		DownloadName: result.Metadata.DownloadName,
		Result:       result,
		CreatedAt:    time.Now().UTC(),
	}

	err := w.persistence.SaveWorkflow(ctx, stored)
	if err != nil {
		return nil, fmt.Errorf("failed to store workflow: %w", err)
	}

	w.logger.InfoContext(ctx, "Built workflow",
		"version_id", stored.VersionID,
		"download_name", stored.DownloadName)

	publishEvent(ctx, w.publisher, w.logger, stored.VersionID, &events.WorkflowBuilt{
		BaseEvent:         events.NewBaseEvent(events.WorkflowBuiltEvent),
		VersionID:         stored.VersionID,
		Name:              stored.Name,
		FormPath:          stored.FormPath,
		DownloadName:      stored.DownloadName,
		IncludeEngagement: opts.IncludeEngagement,
		IncludeDM:         opts.IncludeDM,
	})

	return &result, nil
}

// FetchByVersionID returns a stored workflow.
func (w *Workflow) FetchByVersionID(ctx context.Context, versionID string) (*models.StoredWorkflow, error) {
	if strings.TrimSpace(versionID) == "" {
		return nil, NewValidationError("fetch_workflow", "validation_error", "workflow version id is required", ErrInvalidRequest)
	}

	stored, err := w.persistence.WorkflowByVersionID(ctx, versionID)
	if err != nil {
		return nil, err
	}

	return stored, nil
}

// List returns summaries of the stored workflows, newest first.
func (w *Workflow) List(ctx context.Context) ([]models.WorkflowSummary, error) {
	stored, err := w.persistence.Workflows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	summaries := make([]models.WorkflowSummary, 0, len(stored))
	for _, item := range stored {
		summaries = append(summaries, item.Summary())
	}

	return summaries, nil
}
