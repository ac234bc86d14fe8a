package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dukex/flywheel/pkg/models"
)

// ActivityRepository appends activities as individual JSON files under
// <root>/activities. File names start with the zero-padded occurrence time so
// that a reverse lexical sort yields the newest entries first.
type ActivityRepository struct {
	root string
}

func NewActivityRepository(root string) *ActivityRepository {
	return &ActivityRepository{root: root}
}

func (ar *ActivityRepository) dir() string {
	return filepath.Join(ar.root, "activities")
}

func (ar *ActivityRepository) Save(_ context.Context, activity *models.Activity) error {
	err := os.MkdirAll(ar.dir(), 0750)
	if err != nil {
		return fmt.Errorf("failed to create activities directory: %w", err)
	}

	if activity.OccurredAt.IsZero() {
		activity.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("failed to marshal activity %s: %w", activity.ID, err)
	}

	name := fmt.Sprintf("%020d-%s.json", activity.OccurredAt.UnixNano(), safeName(activity.ID))

	return os.WriteFile(filepath.Join(ar.dir(), name), data, 0600)
}

// GetRecent returns up to limit activities, newest first.
func (ar *ActivityRepository) GetRecent(_ context.Context, limit int) ([]*models.Activity, error) {
	jsonFiles, err := fs.Glob(os.DirFS(ar.dir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list activity files: %w", err)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(jsonFiles)))

	if len(jsonFiles) > limit {
		jsonFiles = jsonFiles[:limit]
	}

	activities := make([]*models.Activity, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		body, err := os.ReadFile(filepath.Join(ar.dir(), file))
		if err != nil {
			return nil, fmt.Errorf("failed to read activity %s: %w", file, err)
		}

		var activity models.Activity
		if err := json.Unmarshal(body, &activity); err != nil {
			return nil, fmt.Errorf("failed to unmarshal activity %s: %w", file, err)
		}

		activities = append(activities, &activity)
	}

	return activities, nil
}

func safeName(id string) string {
	if versionIDPattern.MatchString(id) {
		return id
	}

	return "activity"
}
