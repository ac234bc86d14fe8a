// Package postgresql provides PostgreSQL persistence for built workflows and
// the activity log.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dukex/flywheel/pkg/models"
	"github.com/dukex/flywheel/pkg/persistence"
	"github.com/dukex/flywheel/pkg/persistence/sqlbase"
	_ "github.com/lib/pq"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db           *sql.DB
	logger       *slog.Logger
	workflowRepo *WorkflowRepository
	activityRepo *ActivityRepository
}

// NewPersistence connects to databaseURL and brings the schema up to date.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		_ = database.Close()

		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		_ = database.Close()

		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:           database,
		logger:       logger,
		workflowRepo: NewWorkflowRepository(database, logger),
		activityRepo: NewActivityRepository(database, logger),
	}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) Workflows(ctx context.Context) ([]*models.StoredWorkflow, error) {
	return p.workflowRepo.GetAll(ctx)
}

func (p *Persistence) WorkflowByVersionID(ctx context.Context, versionID string) (*models.StoredWorkflow, error) {
	return p.workflowRepo.GetByVersionID(ctx, versionID)
}

func (p *Persistence) SaveWorkflow(ctx context.Context, workflow *models.StoredWorkflow) error {
	return p.workflowRepo.Save(ctx, workflow)
}

func (p *Persistence) SaveActivity(ctx context.Context, activity *models.Activity) error {
	return p.activityRepo.Save(ctx, activity)
}

func (p *Persistence) Activities(ctx context.Context, limit int) ([]*models.Activity, error) {
	return p.activityRepo.GetRecent(ctx, persistence.NormalizeLimit(limit))
}
