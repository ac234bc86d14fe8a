// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrWorkflowNotFound indicates no workflow is stored under the given version id.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrInvalidVersionID indicates a version id that cannot name a stored workflow.
	ErrInvalidVersionID = errors.New("invalid workflow version id")
)

// WorkflowError wraps workflow-related errors with additional context.
type WorkflowError struct {
	Op        string // Operation being performed (e.g., "Save", "ByVersionID")
	VersionID string
	Err       error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s operation failed for workflow %s: %v", e.Op, e.VersionID, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for workflow errors.
func (e *WorkflowError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func NewWorkflowError(op, versionID string, err error) *WorkflowError {
	return &WorkflowError{
		Op:        op,
		VersionID: versionID,
		Err:       err,
	}
}

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}
