// Package models defines the records the flywheel service stores.
package models

import (
	"time"

	"github.com/dukex/flywheel/pkg/workflow"
)

// StoredWorkflow is a built workflow document kept for later download.
// VersionID is the document's versionId and identifies the build.
type StoredWorkflow struct {
	VersionID    string               `json:"version_id"`
	Name         string               `json:"name"`
	FormPath     string               `json:"form_path"`
	DownloadName string               `json:"download_name"`
	Result       workflow.BuildResult `json:"result"`
	CreatedAt    time.Time            `json:"created_at"`
}

// WorkflowSummary is the listing view of a stored workflow.
type WorkflowSummary struct {
	VersionID    string    `json:"versionId"`
	Name         string    `json:"name"`
	FormPath     string    `json:"formPath"`
	DownloadName string    `json:"downloadName"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (w *StoredWorkflow) Summary() WorkflowSummary {
	return WorkflowSummary{
		VersionID:    w.VersionID,
		Name:         w.Name,
		FormPath:     w.FormPath,
		DownloadName: w.DownloadName,
		CreatedAt:    w.CreatedAt,
	}
}
