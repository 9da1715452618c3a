package domain

import "time"

// ImageStatus represents the curation state of a generated image.
type ImageStatus string

// Possible image status values. The set is closed: no other value is
// ever persisted or accepted.
const (
	StatusUnprocessed ImageStatus = "unprocessed"
	StatusRegistered  ImageStatus = "registered"
	StatusExcluded    ImageStatus = "excluded"
)

// Valid reports whether the status belongs to the closed set.
func (s ImageStatus) Valid() bool {
	switch s {
	case StatusUnprocessed, StatusRegistered, StatusExcluded:
		return true
	default:
		return false
	}
}

// CanTransition reports whether a status change is allowed. Identical
// statuses are always allowed as a no-op; registered and excluded may
// only be left via unprocessed.
func CanTransition(from, to ImageStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusUnprocessed:
		return to == StatusRegistered || to == StatusExcluded
	case StatusRegistered, StatusExcluded:
		return to == StatusUnprocessed
	default:
		return false
	}
}

// Metadata holds the stock-marketplace submission fields synthesized
// for a registered image.
type Metadata struct {
	// Title is a short descriptive title for the marketplace listing.
	Title string `json:"title"`

	// Category is the marketplace category ID (1-21).
	Category int `json:"category"`

	// Tags are the search keywords attached to the submission.
	Tags []string `json:"tags"`
}

// ImageRecord tracks one generated image through the curation
// workflow. UpscaledPath and Metadata stay empty until the record
// first reaches registered; they survive a later revert so that
// re-registration can reuse them.
type ImageRecord struct {
	ID              string      `json:"id"`
	RunID           string      `json:"run_id"`
	Status          ImageStatus `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	StatusChangedAt time.Time   `json:"status_changed_at"`
	Prompt          string      `json:"prompt"`
	SourcePath      string      `json:"source_path"`
	UpscaledPath    string      `json:"upscaled_path,omitempty"`
	Metadata        *Metadata   `json:"metadata,omitempty"`
}

// NewImageRecord creates an unprocessed record for a freshly generated
// image. Returns an error if validation fails.
func NewImageRecord(runID, id, prompt, sourcePath string, createdAt time.Time) (*ImageRecord, error) {
	rec := &ImageRecord{
		ID:              id,
		RunID:           runID,
		Status:          StatusUnprocessed,
		CreatedAt:       createdAt.UTC(),
		StatusChangedAt: createdAt.UTC(),
		Prompt:          prompt,
		SourcePath:      sourcePath,
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// Validate checks that the record has valid data.
func (r *ImageRecord) Validate() error {
	if r.ID == "" {
		return ErrEmptyRecordID
	}
	if r.RunID == "" {
		return ErrEmptyRunID
	}
	if r.SourcePath == "" {
		return ErrEmptySourcePath
	}
	if !r.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// Fulfilled reports whether the record already carries the artifacts
// produced by registration.
func (r *ImageRecord) Fulfilled() bool {
	return r.UpscaledPath != "" && r.Metadata != nil
}

// Clone returns a deep copy of the record.
func (r *ImageRecord) Clone() *ImageRecord {
	cp := *r
	if r.Metadata != nil {
		meta := *r.Metadata
		meta.Tags = append([]string(nil), r.Metadata.Tags...)
		cp.Metadata = &meta
	}
	return &cp
}
