package service

import (
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpix/stockpix/internal/domain"
	"github.com/stockpix/stockpix/internal/mocks"
	"github.com/stockpix/stockpix/internal/store"
)

type runFixture struct {
	objects   *mocks.MemoryObjectStore
	manifests store.ManifestStore
	history   store.HistoryStore
	ideas     *mockIdeaGenerator
	prompts   *mockPromptGenerator
	images    *mockImageGenerator
	svc       *RunService
}

func newRunFixture(t *testing.T, ideas []string) *runFixture {
	t.Helper()
	objects := mocks.NewMemoryObjectStore()
	manifests := store.NewManifestStore(objects, slog.Default())
	history := store.NewHistoryStore(objects)

	f := &runFixture{
		objects:   objects,
		manifests: manifests,
		history:   history,
		ideas:     &mockIdeaGenerator{ideas: ideas},
		prompts:   &mockPromptGenerator{},
		images:    &mockImageGenerator{},
	}

	svc, err := NewRunService(f.ideas, f.prompts, f.images, objects, manifests, history, slog.Default())
	require.NoError(t, err)
	svc.now = func() time.Time {
		return time.Date(2026, 8, 15, 9, 30, 0, 0, time.UTC)
	}
	f.svc = svc
	return f
}

func TestStartRun(t *testing.T) {
	t.Parallel()
	f := newRunFixture(t, []string{"idea one", "idea two", "idea three"})

	manifest, err := f.svc.StartRun(context.Background(), domain.RunParams{
		Keyword: "mountain lake",
		Tags:    []string{"nature", "landscape"},
		Model:   "test-model",
		Count:   3,
	})
	require.NoError(t, err)

	assert.Equal(t, "20260815_093000_mountain_lake", manifest.RunID)
	assert.Len(t, manifest.Records, 3)
	for _, rec := range manifest.Records {
		assert.Equal(t, domain.StatusUnprocessed, rec.Status)
		assert.True(t, strings.HasPrefix(rec.SourcePath, "output/"+manifest.RunID+"/generated_images/"))
	}

	// Images and prompt.csv landed in the run's output prefix.
	exists, err := f.objects.Exists(context.Background(), "output/"+manifest.RunID+"/generated_images/img_000.png")
	require.NoError(t, err)
	assert.True(t, exists)

	csvData, err := f.objects.Get(context.Background(), "output/"+manifest.RunID+"/prompt.csv")
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(string(csvData))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"filename", "prompt", "keyword", "tags"}, rows[0])
	assert.Equal(t, "img_000.png", rows[1][0])
	assert.Equal(t, "mountain lake", rows[1][2])
	assert.Equal(t, "nature,landscape", rows[1][3])

	// The status document is persisted and the run is in history.
	stored, err := f.manifests.Load(context.Background(), manifest.RunID)
	require.NoError(t, err)
	assert.Len(t, stored.Records, 3)

	entries, err := f.history.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, manifest.RunID, entries[0].RunID)
	assert.Equal(t, "output/"+manifest.RunID+"/", entries[0].OutputPrefix)
}

func TestStartRunSkipsFailedImages(t *testing.T) {
	t.Parallel()
	f := newRunFixture(t, []string{"idea one", "idea two", "idea three"})
	f.images.errFor = map[string]error{"idea two": errors.New("blocked")}

	manifest, err := f.svc.StartRun(context.Background(), domain.RunParams{
		Keyword: "city skyline",
		Count:   3,
	})
	require.NoError(t, err)
	assert.Len(t, manifest.Records, 2)
	_, hasSkipped := manifest.Record("img_001")
	assert.False(t, hasSkipped)
}

func TestStartRunAbortsWhenIdeasFail(t *testing.T) {
	t.Parallel()
	f := newRunFixture(t, nil)
	f.ideas.err = errors.New("quota exceeded")

	_, err := f.svc.StartRun(context.Background(), domain.RunParams{Keyword: "cats", Count: 2})

	var serr *ServiceError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "start_run", serr.Operation)
	assert.Empty(t, f.objects.Keys())
}

func TestStartRunAllImagesFail(t *testing.T) {
	t.Parallel()
	f := newRunFixture(t, []string{"idea one"})
	f.prompts.errFor = map[string]error{"idea one": errors.New("blocked")}

	_, err := f.svc.StartRun(context.Background(), domain.RunParams{Keyword: "cats", Count: 1})
	assert.ErrorIs(t, err, ErrNoImagesGenerated)
}

func TestStartRunValidation(t *testing.T) {
	t.Parallel()
	f := newRunFixture(t, nil)

	_, err := f.svc.StartRun(context.Background(), domain.RunParams{Count: 1})
	assert.ErrorIs(t, err, domain.ErrEmptyKeyword)

	_, err = f.svc.StartRun(context.Background(), domain.RunParams{Keyword: "cats"})
	var serr *ServiceError
	assert.ErrorAs(t, err, &serr)
}

func TestSanitizeKeyword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		keyword string
		want    string
	}{
		{name: "spaces become underscores", keyword: "mountain lake", want: "mountain_lake"},
		{name: "punctuation dropped", keyword: "cats & dogs!", want: "cats__dogs"},
		{name: "hyphen and underscore kept", keyword: "black-cat_01", want: "black-cat_01"},
		{name: "surrounding whitespace trimmed", keyword: "  tea  ", want: "tea"},
		{name: "long keyword capped", keyword: strings.Repeat("a", 80), want: strings.Repeat("a", 50)},
		{name: "unicode letters kept", keyword: "富士山", want: "富士山"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, SanitizeKeyword(tc.keyword))
		})
	}
}

func TestBuildRunID(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 8, 15, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "20260815_093000_mountain_lake", BuildRunID("mountain lake", at))
}
