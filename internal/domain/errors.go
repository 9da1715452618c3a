package domain

import (
	"errors"
	"fmt"
)

// Common validation errors for records and manifests.
var (
	// ErrEmptyRecordID is returned when an image record has no ID.
	ErrEmptyRecordID = errors.New("image record ID cannot be empty")

	// ErrEmptyRunID is returned when a run ID is missing.
	ErrEmptyRunID = errors.New("run ID cannot be empty")

	// ErrEmptySourcePath is returned when a record has no source object key.
	ErrEmptySourcePath = errors.New("image record source path cannot be empty")

	// ErrInvalidStatus is returned when a status is outside the closed set.
	ErrInvalidStatus = errors.New("invalid image status")

	// ErrDuplicateRecord is returned when a record ID is added to a
	// manifest twice.
	ErrDuplicateRecord = errors.New("duplicate image record ID")

	// ErrEmptyKeyword is returned when run parameters have no keyword.
	ErrEmptyKeyword = errors.New("run keyword cannot be empty")
)

// InvalidTransitionError reports a status change that the transition
// table does not allow, such as registered -> excluded.
type InvalidTransitionError struct {
	ID   string
	From ImageStatus
	To   ImageStatus
}

// Error implements the error interface.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition for %q: %s -> %s", e.ID, e.From, e.To)
}
