// Package services provides standardized error types for service layer operations.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/flywheel/pkg/persistence"
	"github.com/dukex/flywheel/pkg/twitter"
)

// Client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest = errors.New("invalid request")

	// ErrWorkflowNotFound is returned when no workflow is stored under a version id (404 Not Found).
	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound
)

// Dependency errors (5xx responses).
var (
	// ErrNotConfigured means the vendor credentials for an operation are missing (503).
	ErrNotConfigured = errors.New("service not configured")

	// ErrUpstream means a vendor API call failed (502).
	ErrUpstream = errors.New("upstream request failed")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, persistence.ErrInvalidVersionID) ||
		errors.Is(err, twitter.ErrReplyMessageRequired) ||
		errors.Is(err, twitter.ErrRecipientMissing) ||
		errors.Is(err, twitter.ErrUserNotFound)
}

// IsNotFoundError checks if an error should return HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsUnavailableError checks if an error should return HTTP 503.
func IsUnavailableError(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}

// IsUpstreamError checks if an error should return HTTP 502.
func IsUpstreamError(err error) bool {
	return errors.Is(err, ErrUpstream)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func notConfigured(op, message string) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    "not_configured",
		Message: message,
		Err:     ErrNotConfigured,
	}
}

// vendorError classifies a vendor client failure. Caller mistakes the
// client detects keep their validation meaning; everything else is an
// upstream failure.
func vendorError(op string, err error) *ServiceError {
	if IsValidationError(err) {
		return NewValidationError(op, "validation_error", err.Error(), err)
	}

	return &ServiceError{
		Op:      op,
		Code:    "upstream_error",
		Message: err.Error(),
		Err:     fmt.Errorf("%w: %w", ErrUpstream, err),
	}
}
