package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpix/stockpix/internal/domain"
	"github.com/stockpix/stockpix/internal/mocks"
	"github.com/stockpix/stockpix/internal/store"
)

// seedManifest persists a manifest with the given records and returns
// the backing stores.
func seedManifest(t *testing.T, runID string, statuses map[string]domain.ImageStatus) (*mocks.MemoryObjectStore, store.ManifestStore) {
	t.Helper()
	objects := mocks.NewMemoryObjectStore()
	manifests := store.NewManifestStore(objects, slog.Default())

	manifest, err := domain.NewRunManifest(runID, domain.RunParams{
		Keyword: "mountain lake",
		Tags:    []string{"nature"},
		Model:   "test-model",
		Count:   len(statuses),
	}, time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for id, status := range statuses {
		rec, err := domain.NewImageRecord(runID, id, "prompt "+id, sourceKey(runID, id), created)
		require.NoError(t, err)
		rec.Status = status
		require.NoError(t, manifest.Add(rec))
		created = created.Add(time.Second)
	}
	require.NoError(t, manifests.Save(context.Background(), manifest))
	return objects, manifests
}

func newCurationService(t *testing.T, manifests store.ManifestStore) *CurationService {
	t.Helper()
	svc, err := NewCurationService(manifests, nil, slog.Default())
	require.NoError(t, err)
	return svc
}

func TestSubmitBatchExclude(t *testing.T) {
	t.Parallel()
	runID := "20260801_100000_mountain_lake"
	_, manifests := seedManifest(t, runID, map[string]domain.ImageStatus{
		"img_000": domain.StatusUnprocessed,
		"img_001": domain.StatusUnprocessed,
	})
	svc := newCurationService(t, manifests)

	err := svc.SubmitBatch(context.Background(), runID, []string{"img_000"}, ActionExclude)
	require.NoError(t, err)

	manifest, err := manifests.Load(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExcluded, manifest.Records["img_000"].Status)
	assert.Equal(t, domain.StatusUnprocessed, manifest.Records["img_001"].Status)
}

func TestSubmitBatchUnknownIDRejectsWholeBatch(t *testing.T) {
	t.Parallel()
	runID := "20260801_100000_mountain_lake"
	_, manifests := seedManifest(t, runID, map[string]domain.ImageStatus{
		"img_000": domain.StatusUnprocessed,
	})
	svc := newCurationService(t, manifests)

	err := svc.SubmitBatch(context.Background(), runID, []string{"img_000", "img_999"}, ActionExclude)

	var verr *BatchValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, runID, verr.RunID)
	require.Len(t, verr.Problems, 1)
	assert.Equal(t, "img_999", verr.Problems[0].ID)

	// The valid sibling must be untouched.
	manifest, err := manifests.Load(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnprocessed, manifest.Records["img_000"].Status)
}

func TestSubmitBatchRejectsRegisteredToExcluded(t *testing.T) {
	t.Parallel()
	runID := "20260801_100000_mountain_lake"
	_, manifests := seedManifest(t, runID, map[string]domain.ImageStatus{
		"img_000": domain.StatusRegistered,
	})
	svc := newCurationService(t, manifests)

	err := svc.SubmitBatch(context.Background(), runID, []string{"img_000"}, ActionExclude)

	var verr *BatchValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Problems, 1)
	assert.Contains(t, verr.Problems[0].Reason, "registered")

	manifest, err := manifests.Load(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRegistered, manifest.Records["img_000"].Status)
}

func TestSubmitBatchRevertFromExcluded(t *testing.T) {
	t.Parallel()
	runID := "20260801_100000_mountain_lake"
	_, manifests := seedManifest(t, runID, map[string]domain.ImageStatus{
		"img_000": domain.StatusExcluded,
	})
	svc := newCurationService(t, manifests)

	require.NoError(t, svc.SubmitBatch(context.Background(), runID, []string{"img_000"}, ActionRevert))

	manifest, err := manifests.Load(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnprocessed, manifest.Records["img_000"].Status)
}

func TestSubmitBatchEmptySetIsNoOp(t *testing.T) {
	t.Parallel()
	runID := "20260801_100000_mountain_lake"
	_, manifests := seedManifest(t, runID, map[string]domain.ImageStatus{
		"img_000": domain.StatusUnprocessed,
	})
	svc := newCurationService(t, manifests)

	before, err := manifests.Load(context.Background(), runID)
	require.NoError(t, err)

	require.NoError(t, svc.SubmitBatch(context.Background(), runID, nil, ActionExclude))

	after, err := manifests.Load(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, before.Version, after.Version)
}

func TestSubmitBatchRejectsRegisterAction(t *testing.T) {
	t.Parallel()
	runID := "20260801_100000_mountain_lake"
	_, manifests := seedManifest(t, runID, map[string]domain.ImageStatus{
		"img_000": domain.StatusUnprocessed,
	})
	svc := newCurationService(t, manifests)

	err := svc.SubmitBatch(context.Background(), runID, []string{"img_000"}, ActionRegister)

	var serr *ServiceError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "submit_batch", serr.Operation)
}

func TestSubmitBatchUnknownRun(t *testing.T) {
	t.Parallel()
	objects := mocks.NewMemoryObjectStore()
	manifests := store.NewManifestStore(objects, slog.Default())
	svc := newCurationService(t, manifests)

	err := svc.SubmitBatch(context.Background(), "nope", []string{"img_000"}, ActionExclude)
	assert.ErrorIs(t, err, store.ErrManifestNotFound)
}

func TestListByStatusOrdering(t *testing.T) {
	t.Parallel()
	runID := "20260801_100000_mountain_lake"
	_, manifests := seedManifest(t, runID, map[string]domain.ImageStatus{
		"img_000": domain.StatusUnprocessed,
		"img_001": domain.StatusExcluded,
		"img_002": domain.StatusUnprocessed,
	})
	svc := newCurationService(t, manifests)

	recs, err := svc.ListByStatus(context.Background(), runID, domain.StatusUnprocessed)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.True(t, !recs[1].CreatedAt.Before(recs[0].CreatedAt))
}
