package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stockpix/stockpix/internal/domain"
)

// Common service errors. Callers check these with errors.Is; the API
// layer maps them to HTTP status codes.
var (
	// ErrNothingRegistered indicates an export was requested for a run
	// with no registered images.
	ErrNothingRegistered = errors.New("run has no registered images")

	// ErrNoImagesGenerated indicates a generation run produced no
	// usable images.
	ErrNoImagesGenerated = errors.New("no images were generated")
)

// ServiceError wraps errors from the pipeline services with additional
// context. This allows consumers to differentiate between different
// types of service errors using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit_batch", "export")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// BatchProblem describes one rejected ID of a batch request.
type BatchProblem struct {
	// ID is the image record ID that failed validation.
	ID string `json:"id"`
	// Reason is a human-readable rejection reason.
	Reason string `json:"reason"`
}

// BatchValidationError reports a batch whose ID set failed up-front
// validation. The whole batch is rejected and the run's status document
// is left untouched.
type BatchValidationError struct {
	RunID    string
	Problems []BatchProblem
}

// Error implements the error interface.
func (e *BatchValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = fmt.Sprintf("%s: %s", p.ID, p.Reason)
	}
	return fmt.Sprintf("batch for run %q rejected: %s", e.RunID, strings.Join(parts, "; "))
}

// ExternalServiceError ties an upscale or metadata-generation failure
// to the single image it affected. Sibling images in the same batch are
// not aborted.
type ExternalServiceError struct {
	// ID is the affected image record ID.
	ID string
	// Op names the failed step ("upscale" or "metadata").
	Op string
	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s failed for image %q: %v", e.Op, e.ID, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// unknownIDProblem builds the validation problem for an ID that is not
// part of the run.
func unknownIDProblem(id string) BatchProblem {
	return BatchProblem{ID: id, Reason: "unknown image ID"}
}

// ineligibleProblem builds the validation problem for a record whose
// current status does not allow the requested transition.
func ineligibleProblem(id string, from, to domain.ImageStatus) BatchProblem {
	return BatchProblem{
		ID:     id,
		Reason: fmt.Sprintf("status %s cannot change to %s", from, to),
	}
}
