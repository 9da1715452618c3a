package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/stockpix/stockpix/internal/domain"
	"github.com/stockpix/stockpix/internal/generation"
	"github.com/stockpix/stockpix/internal/store"
)

// maxKeywordLen caps the sanitized keyword portion of a run ID.
const maxKeywordLen = 50

// runIDTimeFormat is the UTC timestamp prefix of every run ID. Run IDs
// sort newest-last lexicographically.
const runIDTimeFormat = "20060102_150405"

// RunService executes the generation stage: expand a keyword into
// ideas, each idea into a drawing prompt, each prompt into an image,
// and record the results in a fresh status document.
type RunService struct {
	ideas     generation.IdeaGenerator
	prompts   generation.PromptGenerator
	images    generation.ImageGenerator
	objects   store.ObjectStore
	manifests store.ManifestStore
	history   store.HistoryStore
	logger    *slog.Logger
	now       func() time.Time
}

// NewRunService creates a RunService.
func NewRunService(
	ideas generation.IdeaGenerator,
	prompts generation.PromptGenerator,
	images generation.ImageGenerator,
	objects store.ObjectStore,
	manifests store.ManifestStore,
	history store.HistoryStore,
	logger *slog.Logger,
) (*RunService, error) {
	if ideas == nil || prompts == nil || images == nil {
		return nil, errors.New("generators cannot be nil")
	}
	if objects == nil {
		return nil, errors.New("object store cannot be nil")
	}
	if manifests == nil {
		return nil, errors.New("manifest store cannot be nil")
	}
	if history == nil {
		return nil, errors.New("history store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &RunService{
		ideas:     ideas,
		prompts:   prompts,
		images:    images,
		objects:   objects,
		manifests: manifests,
		history:   history,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// SanitizeKeyword reduces a keyword to the characters allowed in run
// IDs and object keys: letters, digits, underscore, and hyphen, with
// spaces collapsed to underscores and the result capped at 50 runes.
func SanitizeKeyword(keyword string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(keyword) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	runes := []rune(b.String())
	if len(runes) > maxKeywordLen {
		runes = runes[:maxKeywordLen]
	}
	return string(runes)
}

// BuildRunID composes a run ID from a UTC timestamp and the sanitized
// keyword.
func BuildRunID(keyword string, now time.Time) string {
	return now.UTC().Format(runIDTimeFormat) + "_" + SanitizeKeyword(keyword)
}

// StartRun runs the full generation stage for the given parameters and
// returns the resulting status document. A per-image failure in prompt
// expansion or image rendering is logged and skipped; the run aborts
// only when idea generation fails or no image at all was produced.
func (s *RunService) StartRun(ctx context.Context, params domain.RunParams) (*domain.RunManifest, error) {
	if params.Keyword == "" {
		return nil, domain.ErrEmptyKeyword
	}
	if params.Count < 1 {
		return nil, &ServiceError{
			Operation: "start_run",
			Message:   fmt.Sprintf("image count must be at least 1, got %d", params.Count),
		}
	}

	startedAt := s.now().UTC()
	runID := BuildRunID(params.Keyword, startedAt)
	imagePrefix := fmt.Sprintf("output/%s/generated_images/", runID)

	s.logger.Info("starting generation run",
		"run_id", runID,
		"keyword", params.Keyword,
		"count", params.Count,
		"style", params.Style)

	ideas, err := s.ideas.GenerateIdeas(ctx, params.Keyword, params.Count, params.Style)
	if err != nil {
		return nil, &ServiceError{
			Operation: "start_run",
			Message:   fmt.Sprintf("failed to generate ideas for %q", params.Keyword),
			Err:       err,
		}
	}

	manifest, err := domain.NewRunManifest(runID, params, startedAt)
	if err != nil {
		return nil, err
	}

	for i, idea := range ideas {
		id := fmt.Sprintf("img_%03d", i)
		rec, err := s.generateOne(ctx, manifest, id, idea, imagePrefix)
		if err != nil {
			s.logger.Warn("skipping image",
				"run_id", runID,
				"image_id", id,
				"error", err)
			continue
		}
		if err := manifest.Add(rec); err != nil {
			return nil, err
		}
	}

	if len(manifest.Records) == 0 {
		return nil, fmt.Errorf("%w: run %q", ErrNoImagesGenerated, runID)
	}

	if err := s.writePromptCSV(ctx, runID, manifest); err != nil {
		return nil, err
	}
	if err := s.manifests.Save(ctx, manifest); err != nil {
		return nil, &ServiceError{
			Operation: "start_run",
			Message:   fmt.Sprintf("failed to save status document for run %q", runID),
			Err:       err,
		}
	}
	if err := s.history.Append(ctx, store.HistoryEntry{
		Timestamp:    startedAt,
		RunID:        runID,
		Params:       params,
		OutputPrefix: "output/" + runID + "/",
	}); err != nil {
		// The run itself succeeded; a history gap is not worth failing it.
		s.logger.Warn("failed to append run history", "run_id", runID, "error", err)
	}

	s.logger.Info("generation run finished",
		"run_id", runID,
		"requested", params.Count,
		"generated", len(manifest.Records))
	return manifest, nil
}

// generateOne expands one idea into a stored image and its record.
func (s *RunService) generateOne(ctx context.Context, manifest *domain.RunManifest, id, idea, imagePrefix string) (*domain.ImageRecord, error) {
	params := manifest.Params

	prompt, err := s.prompts.GenerateDrawingPrompt(ctx, idea, params.Style)
	if err != nil {
		return nil, fmt.Errorf("failed to generate drawing prompt: %w", err)
	}

	img, err := s.images.GenerateImage(ctx, generation.ImageRequest{
		Prompt:  prompt,
		Size:    params.Size,
		Quality: params.Quality,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}

	sourcePath := imagePrefix + id + ".png"
	if err := s.objects.Put(ctx, sourcePath, img, "image/png"); err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	return domain.NewImageRecord(manifest.RunID, id, prompt, sourcePath, s.now())
}

// writePromptCSV stores the per-image prompt log beside the generated
// images, matching the run's output layout.
func (s *RunService) writePromptCSV(ctx context.Context, runID string, manifest *domain.RunManifest) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"filename", "prompt", "keyword", "tags"}); err != nil {
		return fmt.Errorf("failed to write prompt CSV header: %w", err)
	}

	tags := strings.Join(manifest.Params.Tags, ",")
	for _, rec := range manifest.ListByStatus(domain.StatusUnprocessed) {
		row := []string{rec.ID + ".png", rec.Prompt, manifest.Params.Keyword, tags}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write prompt CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to build prompt CSV: %w", err)
	}

	key := fmt.Sprintf("output/%s/prompt.csv", runID)
	if err := s.objects.Put(ctx, key, buf.Bytes(), "text/csv"); err != nil {
		return fmt.Errorf("failed to upload prompt CSV: %w", err)
	}
	return nil
}
