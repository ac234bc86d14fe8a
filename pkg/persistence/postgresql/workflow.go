package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/flywheel/pkg/models"
	"github.com/dukex/flywheel/pkg/persistence"
)

// WorkflowRepository handles workflow-related database operations.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

// GetAll returns every stored workflow, newest first.
func (r *WorkflowRepository) GetAll(ctx context.Context) ([]*models.StoredWorkflow, error) {
	query := `
		SELECT version_id, name, form_path, download_name, result, created_at
		FROM workflows
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	workflows := make([]*models.StoredWorkflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workflows: %w", err)
	}

	return workflows, nil
}

func (r *WorkflowRepository) GetByVersionID(ctx context.Context, versionID string) (*models.StoredWorkflow, error) {
	query := `
		SELECT version_id, name, form_path, download_name, result, created_at
		FROM workflows
		WHERE version_id = $1
	`

	workflow, err := scanWorkflow(r.db.QueryRowContext(ctx, query, versionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewWorkflowError("GetByVersionID", versionID, persistence.ErrWorkflowNotFound)
	}

	if err != nil {
		return nil, err
	}

	return workflow, nil
}

// Save inserts the workflow or replaces an existing row with the same version id.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.StoredWorkflow) error {
	if workflow.VersionID == "" {
		return persistence.NewWorkflowError("Save", workflow.VersionID, persistence.ErrInvalidVersionID)
	}

	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = time.Now().UTC()
	}

	result, err := json.Marshal(workflow.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow %s: %w", workflow.VersionID, err)
	}

	query := `
		INSERT INTO workflows (version_id, name, form_path, download_name, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (version_id) DO UPDATE SET
			name = EXCLUDED.name,
			form_path = EXCLUDED.form_path,
			download_name = EXCLUDED.download_name,
			result = EXCLUDED.result
	`

	_, err = r.db.ExecContext(ctx, query,
		workflow.VersionID,
		workflow.Name,
		workflow.FormPath,
		workflow.DownloadName,
		result,
		workflow.CreatedAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to save workflow", "version_id", workflow.VersionID, "error", err)

		return fmt.Errorf("failed to save workflow %s: %w", workflow.VersionID, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.StoredWorkflow, error) {
	var (
		workflow models.StoredWorkflow
		result   []byte
	)

	err := row.Scan(
		&workflow.VersionID,
		&workflow.Name,
		&workflow.FormPath,
		&workflow.DownloadName,
		&result,
		&workflow.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	err = json.Unmarshal(result, &workflow.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow %s: %w", workflow.VersionID, err)
	}

	return &workflow, nil
}
