// Package file provides file-based persistence for built workflows and the
// activity log.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/dukex/flywheel/pkg/models"
	"github.com/dukex/flywheel/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root         string
	workflowRepo *WorkflowRepository
	activityRepo *ActivityRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) persistence.Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:         cleanRoot,
		workflowRepo: NewWorkflowRepository(cleanRoot),
		activityRepo: NewActivityRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck creates the root directory when missing and fails when it
// cannot be used.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if err := os.MkdirAll(fp.root, 0750); err != nil {
		return err
	}

	info, err := os.Stat(fp.root)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return os.ErrInvalid
	}

	return nil
}

func (fp *Persistence) Workflows(ctx context.Context) ([]*models.StoredWorkflow, error) {
	return fp.workflowRepo.GetAll(ctx)
}

func (fp *Persistence) SaveWorkflow(ctx context.Context, workflow *models.StoredWorkflow) error {
	return fp.workflowRepo.Save(ctx, workflow)
}

func (fp *Persistence) WorkflowByVersionID(ctx context.Context, versionID string) (*models.StoredWorkflow, error) {
	return fp.workflowRepo.GetByVersionID(ctx, versionID)
}

func (fp *Persistence) SaveActivity(ctx context.Context, activity *models.Activity) error {
	return fp.activityRepo.Save(ctx, activity)
}

func (fp *Persistence) Activities(ctx context.Context, limit int) ([]*models.Activity, error) {
	return fp.activityRepo.GetRecent(ctx, persistence.NormalizeLimit(limit))
}
