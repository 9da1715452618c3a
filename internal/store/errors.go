package store

import "errors"

// Common store errors used across all store implementations.
var (
	// ErrObjectNotFound is returned when a requested object key does not
	// exist in the bucket.
	ErrObjectNotFound = errors.New("object not found")

	// ErrManifestNotFound is returned when no status document exists for
	// the requested run.
	ErrManifestNotFound = errors.New("run manifest not found")

	// ErrVersionConflict is returned when a manifest save observes a
	// persisted version newer than the one the caller loaded. The caller
	// must reload and retry; writing would silently discard another
	// batch's transitions.
	ErrVersionConflict = errors.New("manifest version conflict")
)
