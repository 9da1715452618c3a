package domain

import (
	"sort"
	"time"
)

// RunParams are the shared parameters of one generation run.
type RunParams struct {
	Keyword string   `json:"keyword"`
	Tags    []string `json:"tags,omitempty"`
	Model   string   `json:"model"`
	Size    string   `json:"size,omitempty"`
	Quality string   `json:"quality,omitempty"`
	Style   string   `json:"style,omitempty"`
	Count   int      `json:"count"`
}

// RunManifest is the authoritative status document for one run. It is
// persisted as a single versioned JSON blob; Version increases on every
// save and backs the store's optimistic-concurrency check.
type RunManifest struct {
	RunID     string                  `json:"run_id"`
	Params    RunParams               `json:"params"`
	Version   int64                   `json:"version"`
	CreatedAt time.Time               `json:"created_at"`
	Archived  bool                    `json:"archived"`
	Records   map[string]*ImageRecord `json:"records"`
}

// NewRunManifest creates an empty manifest for a run.
func NewRunManifest(runID string, params RunParams, createdAt time.Time) (*RunManifest, error) {
	if runID == "" {
		return nil, ErrEmptyRunID
	}
	if params.Keyword == "" {
		return nil, ErrEmptyKeyword
	}
	return &RunManifest{
		RunID:     runID,
		Params:    params,
		CreatedAt: createdAt.UTC(),
		Records:   make(map[string]*ImageRecord),
	}, nil
}

// Add inserts a record into the manifest. IDs are unique within a run.
func (m *RunManifest) Add(rec *ImageRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if _, exists := m.Records[rec.ID]; exists {
		return ErrDuplicateRecord
	}
	m.Records[rec.ID] = rec
	return nil
}

// Record returns the record with the given ID, if present.
func (m *RunManifest) Record(id string) (*ImageRecord, bool) {
	rec, ok := m.Records[id]
	return rec, ok
}

// ApplyTransition sets the status of every listed record and refreshes
// its StatusChangedAt timestamp. IDs not present in the manifest are
// ignored so a stale UI selection cannot fail a batch. A record already
// in the target status is left untouched, timestamp included. The
// manifest is not persisted; the caller decides when to save.
//
// Returns an *InvalidTransitionError if any listed record would take a
// disallowed edge (registered <-> excluded); the manifest is unchanged
// in that case.
func (m *RunManifest) ApplyTransition(ids []string, to ImageStatus, now time.Time) error {
	if !to.Valid() {
		return ErrInvalidStatus
	}

	// Validate every edge before mutating anything.
	for _, id := range ids {
		rec, ok := m.Records[id]
		if !ok {
			continue
		}
		if !CanTransition(rec.Status, to) {
			return &InvalidTransitionError{ID: id, From: rec.Status, To: to}
		}
	}

	for _, id := range ids {
		rec, ok := m.Records[id]
		if !ok || rec.Status == to {
			continue
		}
		rec.Status = to
		rec.StatusChangedAt = now.UTC()
	}
	return nil
}

// ListByStatus returns the records currently in the given status,
// ordered by CreatedAt ascending with ID as tie-breaker. The ordering
// is stable regardless of the persisted document's internal map order.
func (m *RunManifest) ListByStatus(status ImageStatus) []*ImageRecord {
	var out []*ImageRecord
	for _, rec := range m.Records {
		if rec.Status == status {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// CountByStatus returns how many records sit in each status.
func (m *RunManifest) CountByStatus() map[ImageStatus]int {
	counts := map[ImageStatus]int{
		StatusUnprocessed: 0,
		StatusRegistered:  0,
		StatusExcluded:    0,
	}
	for _, rec := range m.Records {
		counts[rec.Status]++
	}
	return counts
}

// Clone returns a deep copy of the manifest. Services mutate a clone
// and persist it in one write so a failed batch leaves the loaded
// manifest untouched.
func (m *RunManifest) Clone() *RunManifest {
	cp := *m
	cp.Params.Tags = append([]string(nil), m.Params.Tags...)
	cp.Records = make(map[string]*ImageRecord, len(m.Records))
	for id, rec := range m.Records {
		cp.Records[id] = rec.Clone()
	}
	return &cp
}
