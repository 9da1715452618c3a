package service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/stockpix/stockpix/internal/domain"
	"github.com/stockpix/stockpix/internal/generation"
	"github.com/stockpix/stockpix/internal/store"
)

// ImageUpscaler is the post-processing step FulfillmentService runs on
// each image before registration.
type ImageUpscaler interface {
	Upscale(ctx context.Context, sourceKey string) (string, error)
}

// BatchOutcome classifies the result of a register batch.
type BatchOutcome string

// Possible register outcomes.
const (
	OutcomeFull    BatchOutcome = "full"
	OutcomePartial BatchOutcome = "partial"
	OutcomeFailed  BatchOutcome = "failed"
)

// RegisterResult reports the per-ID outcome of a register batch.
type RegisterResult struct {
	// Succeeded lists the IDs now in registered status, in request order.
	Succeeded []string
	// Failed lists the IDs whose upscale or metadata step failed; their
	// records stay unprocessed.
	Failed []*ExternalServiceError
	// Outcome summarizes the batch: full, partial, or failed.
	Outcome BatchOutcome
}

// ExportBundle is a built submission package ready for download.
type ExportBundle struct {
	// Filename is the suggested download filename.
	Filename string
	// Data is the ZIP archive body.
	Data []byte
}

// FulfillmentService registers curated images and builds the
// submission package. Registration runs the external steps (upscale,
// metadata synthesis) on a bounded worker pool and persists the status
// document once per batch.
type FulfillmentService struct {
	manifests store.ManifestStore
	objects   store.ObjectStore
	upscaler  ImageUpscaler
	metadata  generation.MetadataGenerator
	locks     *RunLocks
	logger    *slog.Logger
	workers   int
}

// NewFulfillmentService creates a FulfillmentService. workers bounds
// concurrent external calls within one batch. The locks argument may be
// nil; pass the CurationService's set to serialize the two services
// against each other.
func NewFulfillmentService(
	manifests store.ManifestStore,
	objects store.ObjectStore,
	upscaler ImageUpscaler,
	metadata generation.MetadataGenerator,
	locks *RunLocks,
	workers int,
	logger *slog.Logger,
) (*FulfillmentService, error) {
	if manifests == nil {
		return nil, errors.New("manifest store cannot be nil")
	}
	if objects == nil {
		return nil, errors.New("object store cannot be nil")
	}
	if upscaler == nil {
		return nil, errors.New("upscaler cannot be nil")
	}
	if metadata == nil {
		return nil, errors.New("metadata generator cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if workers < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", workers)
	}
	if locks == nil {
		locks = NewRunLocks()
	}
	return &FulfillmentService{
		manifests: manifests,
		objects:   objects,
		upscaler:  upscaler,
		metadata:  metadata,
		locks:     locks,
		logger:    logger,
		workers:   workers,
	}, nil
}

// fulfillment is the artifact pair a record needs before it can flip
// to registered.
type fulfillment struct {
	id           string
	upscaledPath string
	metadata     *domain.Metadata
	err          *ExternalServiceError
}

// Register moves the listed images to registered status. Validation is
// all-or-nothing and happens before any side effect: an unknown ID or
// an excluded record rejects the whole batch with a
// *BatchValidationError. After validation each ID is processed
// independently:
//
//   - already registered: success, no external calls
//   - artifacts retained from an earlier registration: status flip only
//   - otherwise: upscale, then synthesize metadata; both must succeed
//
// A per-ID failure leaves that record unprocessed and is reported in
// the result without aborting its siblings. The status document is
// written once at the end.
func (s *FulfillmentService) Register(ctx context.Context, runID string, ids []string) (*RegisterResult, error) {
	if len(ids) == 0 {
		return &RegisterResult{Outcome: OutcomeFull}, nil
	}

	lock := s.locks.get(runID)
	lock.Lock()
	defer lock.Unlock()

	manifest, err := s.manifests.Load(ctx, runID)
	if err != nil {
		return nil, err
	}
	if verr := validateBatch(manifest, ids, domain.StatusRegistered); verr != nil {
		return nil, verr
	}

	// Partition after validation. Everything here is unprocessed or
	// already registered.
	var pending []*domain.ImageRecord
	for _, id := range ids {
		rec, _ := manifest.Record(id)
		if rec.Status == domain.StatusRegistered {
			continue
		}
		if !rec.Fulfilled() {
			pending = append(pending, rec)
		}
	}

	outcomes := s.fulfill(ctx, pending, manifest.Params.Tags)

	result := &RegisterResult{}
	now := time.Now().UTC()
	for _, id := range ids {
		rec, _ := manifest.Record(id)
		if rec.Status == domain.StatusRegistered {
			result.Succeeded = append(result.Succeeded, id)
			continue
		}
		if out, ok := outcomes[id]; ok {
			if out.err != nil {
				result.Failed = append(result.Failed, out.err)
				continue
			}
			rec.UpscaledPath = out.upscaledPath
			rec.Metadata = out.metadata
		}
		rec.Status = domain.StatusRegistered
		rec.StatusChangedAt = now
		result.Succeeded = append(result.Succeeded, id)
	}

	switch {
	case len(result.Failed) == 0:
		result.Outcome = OutcomeFull
	case len(result.Succeeded) == 0:
		result.Outcome = OutcomeFailed
	default:
		result.Outcome = OutcomePartial
	}

	if len(result.Succeeded) > 0 {
		if err := s.manifests.Save(ctx, manifest); err != nil {
			return nil, &ServiceError{
				Operation: "register",
				Message:   fmt.Sprintf("failed to save status document for run %q", runID),
				Err:       err,
			}
		}
	}

	s.logger.Info("register batch finished",
		"run_id", runID,
		"outcome", string(result.Outcome),
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failed))
	return result, nil
}

// fulfill runs the upscale and metadata steps for each pending record
// on a bounded worker pool and returns the per-ID outcomes.
func (s *FulfillmentService) fulfill(ctx context.Context, pending []*domain.ImageRecord, mandatoryTags []string) map[string]fulfillment {
	outcomes := make(map[string]fulfillment, len(pending))
	if len(pending) == 0 {
		return outcomes
	}

	jobs := make(chan *domain.ImageRecord)
	results := make(chan fulfillment, len(pending))

	workers := s.workers
	if workers > len(pending) {
		workers = len(pending)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				results <- s.fulfillOne(ctx, rec, mandatoryTags)
			}
		}()
	}

	for _, rec := range pending {
		jobs <- rec
	}
	close(jobs)
	wg.Wait()
	close(results)

	for out := range results {
		outcomes[out.id] = out
	}
	return outcomes
}

// fulfillOne produces the artifacts for a single record.
func (s *FulfillmentService) fulfillOne(ctx context.Context, rec *domain.ImageRecord, mandatoryTags []string) fulfillment {
	upscaledPath, err := s.upscaler.Upscale(ctx, rec.SourcePath)
	if err != nil {
		s.logger.Warn("upscale failed",
			"run_id", rec.RunID,
			"image_id", rec.ID,
			"error", err)
		return fulfillment{id: rec.ID, err: &ExternalServiceError{ID: rec.ID, Op: "upscale", Err: err}}
	}

	meta, err := s.metadata.GenerateMetadata(ctx, rec.Prompt, mandatoryTags)
	if err != nil {
		s.logger.Warn("metadata generation failed",
			"run_id", rec.RunID,
			"image_id", rec.ID,
			"error", err)
		return fulfillment{id: rec.ID, err: &ExternalServiceError{ID: rec.ID, Op: "metadata", Err: err}}
	}

	return fulfillment{id: rec.ID, upscaledPath: upscaledPath, metadata: meta}
}

// Export builds the submission package for the run: every registered
// image plus a submit.csv row per image, bundled into one flat ZIP.
// Rows and archive entries are ordered by image ID so repeated exports
// of the same document are byte-identical. On success the run is
// marked archived.
func (s *FulfillmentService) Export(ctx context.Context, runID string) (*ExportBundle, error) {
	lock := s.locks.get(runID)
	lock.Lock()
	defer lock.Unlock()

	manifest, err := s.manifests.Load(ctx, runID)
	if err != nil {
		return nil, err
	}

	registered := manifest.ListByStatus(domain.StatusRegistered)
	if len(registered) == 0 {
		return nil, fmt.Errorf("%w: run %q", ErrNothingRegistered, runID)
	}
	sort.Slice(registered, func(i, j int) bool { return registered[i].ID < registered[j].ID })

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	var csvBuf bytes.Buffer
	cw := csv.NewWriter(&csvBuf)
	if err := cw.Write([]string{"Filename", "Title", "Keywords", "Category"}); err != nil {
		return nil, fmt.Errorf("failed to write submission CSV header: %w", err)
	}

	for _, rec := range registered {
		if rec.UpscaledPath == "" || rec.Metadata == nil {
			return nil, &ServiceError{
				Operation: "export",
				Message:   fmt.Sprintf("registered image %q is missing its artifacts", rec.ID),
			}
		}

		data, err := s.objects.Get(ctx, rec.UpscaledPath)
		if err != nil {
			return nil, &ServiceError{
				Operation: "export",
				Message:   fmt.Sprintf("failed to download %q", rec.UpscaledPath),
				Err:       err,
			}
		}

		filename := path.Base(rec.UpscaledPath)
		entry, err := zw.Create(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to add %q to archive: %w", filename, err)
		}
		if _, err := entry.Write(data); err != nil {
			return nil, fmt.Errorf("failed to write %q to archive: %w", filename, err)
		}

		row := []string{
			filename,
			rec.Metadata.Title,
			strings.Join(rec.Metadata.Tags, ","),
			strconv.Itoa(rec.Metadata.Category),
		}
		if err := cw.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write submission CSV row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("failed to build submission CSV: %w", err)
	}

	entry, err := zw.Create("submit.csv")
	if err != nil {
		return nil, fmt.Errorf("failed to add submit.csv to archive: %w", err)
	}
	if _, err := entry.Write(csvBuf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to write submit.csv to archive: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	manifest.Archived = true
	if err := s.manifests.Save(ctx, manifest); err != nil {
		return nil, &ServiceError{
			Operation: "export",
			Message:   fmt.Sprintf("failed to mark run %q archived", runID),
			Err:       err,
		}
	}

	s.logger.Info("built submission package",
		"run_id", runID,
		"images", len(registered),
		"bytes", buf.Len())
	return &ExportBundle{
		Filename: fmt.Sprintf("submit_%s.zip", runID),
		Data:     buf.Bytes(),
	}, nil
}
