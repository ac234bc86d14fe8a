package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dukex/flywheel/pkg/models"
	"github.com/dukex/flywheel/pkg/persistence"
)

// Version ids become file names, so they are restricted to a safe alphabet.
var versionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// WorkflowRepository stores one JSON file per workflow version under
// <root>/workflows.
type WorkflowRepository struct {
	root string
}

func NewWorkflowRepository(root string) *WorkflowRepository {
	return &WorkflowRepository{root: root}
}

func (wr *WorkflowRepository) dir() string {
	return filepath.Join(wr.root, "workflows")
}

// GetAll returns every stored workflow, newest first.
func (wr *WorkflowRepository) GetAll(ctx context.Context) ([]*models.StoredWorkflow, error) {
	jsonFiles, err := fs.Glob(os.DirFS(wr.dir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow files: %w", err)
	}

	workflows := make([]*models.StoredWorkflow, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		workflow, err := wr.GetByVersionID(ctx, strings.TrimSuffix(file, ".json"))
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow %s: %w", file, err)
		}

		workflows = append(workflows, workflow)
	}

	sort.SliceStable(workflows, func(i, j int) bool {
		return workflows[i].CreatedAt.After(workflows[j].CreatedAt)
	})

	return workflows, nil
}

func (wr *WorkflowRepository) GetByVersionID(_ context.Context, versionID string) (*models.StoredWorkflow, error) {
	if !versionIDPattern.MatchString(versionID) {
		return nil, persistence.NewWorkflowError("GetByVersionID", versionID, persistence.ErrWorkflowNotFound)
	}

	body, err := os.ReadFile(filepath.Join(wr.dir(), versionID+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewWorkflowError("GetByVersionID", versionID, persistence.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to fetch workflow %s: %w", versionID, err)
	}

	var workflow models.StoredWorkflow

	err = json.Unmarshal(body, &workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow %s: %w", versionID, err)
	}

	return &workflow, nil
}

func (wr *WorkflowRepository) Save(_ context.Context, workflow *models.StoredWorkflow) error {
	if !versionIDPattern.MatchString(workflow.VersionID) {
		return persistence.NewWorkflowError("Save", workflow.VersionID, persistence.ErrInvalidVersionID)
	}

	err := os.MkdirAll(wr.dir(), 0750)
	if err != nil {
		return fmt.Errorf("failed to create workflows directory: %w", err)
	}

	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workflow %s: %w", workflow.VersionID, err)
	}

	return os.WriteFile(filepath.Join(wr.dir(), workflow.VersionID+".json"), data, 0600)
}
