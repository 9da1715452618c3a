package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/stockpix/stockpix/internal/domain"
)

const (
	manifestKeyPrefix = "data/image_status."
	manifestKeySuffix = ".json"
)

// ManifestKey returns the object key of a run's status document.
func ManifestKey(runID string) string {
	return manifestKeyPrefix + runID + manifestKeySuffix
}

// manifestStore persists each run's manifest as a single versioned
// JSON document on the object store.
type manifestStore struct {
	objects ObjectStore
	logger  *slog.Logger
}

// NewManifestStore creates a ManifestStore backed by the given object
// store.
func NewManifestStore(objects ObjectStore, logger *slog.Logger) ManifestStore {
	return &manifestStore{objects: objects, logger: logger}
}

// Load implements ManifestStore.Load.
func (s *manifestStore) Load(ctx context.Context, runID string) (*domain.RunManifest, error) {
	if runID == "" {
		return nil, domain.ErrEmptyRunID
	}

	data, err := s.objects.Get(ctx, ManifestKey(runID))
	if err != nil {
		if err == ErrObjectNotFound {
			return nil, ErrManifestNotFound
		}
		return nil, fmt.Errorf("failed to load manifest for run %q: %w", runID, err)
	}

	var manifest domain.RunManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to decode manifest for run %q: %w", runID, err)
	}
	if manifest.Records == nil {
		manifest.Records = make(map[string]*domain.ImageRecord)
	}
	return &manifest, nil
}

// Save implements ManifestStore.Save. The write is made atomic from
// the caller's perspective by uploading to a temp key and server-side
// copying it over the final key; the version check rejects writes that
// would discard a concurrent batch's transitions.
func (s *manifestStore) Save(ctx context.Context, manifest *domain.RunManifest) error {
	if manifest == nil || manifest.RunID == "" {
		return domain.ErrEmptyRunID
	}

	key := ManifestKey(manifest.RunID)

	// Compare-and-swap on the version field. The document is small
	// enough that re-reading it on every save is cheap.
	current, err := s.Load(ctx, manifest.RunID)
	switch err {
	case nil:
		if current.Version != manifest.Version {
			return fmt.Errorf("%w: run %q loaded v%d, stored v%d",
				ErrVersionConflict, manifest.RunID, manifest.Version, current.Version)
		}
	case ErrManifestNotFound:
		// First save for this run.
	default:
		return err
	}

	next := manifest.Clone()
	next.Version = manifest.Version + 1

	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest for run %q: %w", manifest.RunID, err)
	}

	tempKey := key + ".tmp." + uuid.NewString()
	if err := s.objects.Put(ctx, tempKey, data, "application/json"); err != nil {
		return fmt.Errorf("failed to write temp manifest for run %q: %w", manifest.RunID, err)
	}
	if err := s.objects.Copy(ctx, tempKey, key); err != nil {
		return fmt.Errorf("failed to replace manifest for run %q: %w", manifest.RunID, err)
	}
	if err := s.objects.Delete(ctx, tempKey); err != nil {
		// The document is already in place; a stale temp key is only
		// clutter.
		s.logger.Warn("failed to delete temp manifest key",
			"run_id", manifest.RunID,
			"key", tempKey,
			"error", err)
	}

	manifest.Version = next.Version
	return nil
}

// ListRuns implements ManifestStore.ListRuns.
func (s *manifestStore) ListRuns(ctx context.Context) ([]string, error) {
	infos, err := s.objects.List(ctx, manifestKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list manifests: %w", err)
	}

	var runs []string
	for _, info := range infos {
		name := strings.TrimPrefix(info.Key, manifestKeyPrefix)
		if !strings.HasSuffix(name, manifestKeySuffix) || strings.Contains(name, ".tmp.") {
			continue
		}
		runs = append(runs, strings.TrimSuffix(name, manifestKeySuffix))
	}

	// Run IDs start with a UTC timestamp, so reverse-lexicographic
	// order is newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(runs)))
	return runs, nil
}
