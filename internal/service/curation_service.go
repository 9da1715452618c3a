package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stockpix/stockpix/internal/domain"
	"github.com/stockpix/stockpix/internal/store"
)

// BatchAction is a reviewer decision applied to a set of images.
type BatchAction string

// Supported batch actions. Register flows through FulfillmentService
// because it has external side effects; exclude and revert are pure
// status changes handled by CurationService.
const (
	ActionRegister BatchAction = "register"
	ActionExclude  BatchAction = "exclude"
	ActionRevert   BatchAction = "revert"
)

// Valid reports whether the action is one of the supported values.
func (a BatchAction) Valid() bool {
	switch a {
	case ActionRegister, ActionExclude, ActionRevert:
		return true
	default:
		return false
	}
}

// targetStatus maps an action to the status it drives records toward.
func (a BatchAction) targetStatus() domain.ImageStatus {
	switch a {
	case ActionRegister:
		return domain.StatusRegistered
	case ActionExclude:
		return domain.StatusExcluded
	default:
		return domain.StatusUnprocessed
	}
}

// CurationService applies reviewer status decisions to a run's status
// document.
type CurationService struct {
	manifests store.ManifestStore
	locks     *RunLocks
	logger    *slog.Logger
}

// NewCurationService creates a CurationService. The locks argument may
// be nil, in which case the service uses its own lock set; passing a
// shared set lets CurationService and FulfillmentService serialize
// against each other.
func NewCurationService(manifests store.ManifestStore, locks *RunLocks, logger *slog.Logger) (*CurationService, error) {
	if manifests == nil {
		return nil, errors.New("manifest store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if locks == nil {
		locks = NewRunLocks()
	}
	return &CurationService{manifests: manifests, locks: locks, logger: logger}, nil
}

// ListByStatus returns the run's records currently in the given
// status, ordered by creation time with ID as tie-breaker.
func (s *CurationService) ListByStatus(ctx context.Context, runID string, status domain.ImageStatus) ([]*domain.ImageRecord, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	manifest, err := s.manifests.Load(ctx, runID)
	if err != nil {
		return nil, err
	}
	return manifest.ListByStatus(status), nil
}

// Manifest loads the run's status document.
func (s *CurationService) Manifest(ctx context.Context, runID string) (*domain.RunManifest, error) {
	return s.manifests.Load(ctx, runID)
}

// ListRuns enumerates the known run IDs, newest first.
func (s *CurationService) ListRuns(ctx context.Context) ([]string, error) {
	return s.manifests.ListRuns(ctx)
}

// SubmitBatch applies an exclude or revert decision to the listed
// images. Validation is all-or-nothing: any unknown ID or ineligible
// status rejects the whole batch with a *BatchValidationError and the
// persisted document is left untouched. An empty ID set is a no-op.
//
// Register batches are not accepted here; they carry external side
// effects and go through FulfillmentService.Register.
func (s *CurationService) SubmitBatch(ctx context.Context, runID string, ids []string, action BatchAction) error {
	if action != ActionExclude && action != ActionRevert {
		return &ServiceError{
			Operation: "submit_batch",
			Message:   fmt.Sprintf("unsupported action %q", action),
		}
	}
	if len(ids) == 0 {
		return nil
	}

	lock := s.locks.get(runID)
	lock.Lock()
	defer lock.Unlock()

	manifest, err := s.manifests.Load(ctx, runID)
	if err != nil {
		return err
	}

	target := action.targetStatus()
	if verr := validateBatch(manifest, ids, target); verr != nil {
		return verr
	}

	if err := manifest.ApplyTransition(ids, target, time.Now()); err != nil {
		return err
	}
	if err := s.manifests.Save(ctx, manifest); err != nil {
		return &ServiceError{
			Operation: "submit_batch",
			Message:   fmt.Sprintf("failed to save status document for run %q", runID),
			Err:       err,
		}
	}

	s.logger.Info("applied batch",
		"run_id", runID,
		"action", string(action),
		"count", len(ids))
	return nil
}

// validateBatch checks every ID for membership and transition
// eligibility before anything is mutated.
func validateBatch(manifest *domain.RunManifest, ids []string, target domain.ImageStatus) *BatchValidationError {
	var problems []BatchProblem
	for _, id := range ids {
		rec, ok := manifest.Record(id)
		if !ok {
			problems = append(problems, unknownIDProblem(id))
			continue
		}
		if !domain.CanTransition(rec.Status, target) {
			problems = append(problems, ineligibleProblem(id, rec.Status, target))
		}
	}
	if len(problems) > 0 {
		return &BatchValidationError{RunID: manifest.RunID, Problems: problems}
	}
	return nil
}
