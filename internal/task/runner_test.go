package task

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpix/stockpix/internal/domain"
)

// fakeTask is a controllable Task for runner tests.
type fakeTask struct {
	id     uuid.UUID
	result string
	err    error
}

func newFakeTask(result string, err error) *fakeTask {
	return &fakeTask{
		id:     uuid.New(),
		result: result,
		err:    err,
	}
}

func (t *fakeTask) ID() uuid.UUID { return t.id }
func (t *fakeTask) Type() string  { return "fake" }

func (t *fakeTask) Execute(ctx context.Context) (string, error) {
	return t.result, t.err
}

// waitForStatus polls the registry until the task reaches a terminal
// status or the deadline passes.
func waitForStatus(t *testing.T, registry *Registry, id uuid.UUID, want TaskStatus) TaskInfo {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if info, ok := registry.Get(id); ok && info.Status == want {
			return info
		}
		time.Sleep(5 * time.Millisecond)
	}
	info, _ := registry.Get(id)
	t.Fatalf("task %s never reached status %s (last: %s)", id, want, info.Status)
	return TaskInfo{}
}

func TestRunnerExecutesSubmittedTask(t *testing.T) {
	t.Parallel()
	registry := NewRegistry()
	runner := NewTaskRunner(registry, TaskRunnerConfig{WorkerCount: 1, QueueSize: 4}, slog.Default())
	runner.Start()
	defer runner.Stop()

	ft := newFakeTask("run-123", nil)
	require.NoError(t, runner.Submit(ft))

	info := waitForStatus(t, registry, ft.ID(), TaskStatusCompleted)
	assert.Equal(t, "run-123", info.Result)
	assert.Empty(t, info.Error)
	require.NotNil(t, info.FinishedAt)
}

func TestRunnerRecordsFailure(t *testing.T) {
	t.Parallel()
	registry := NewRegistry()
	runner := NewTaskRunner(registry, TaskRunnerConfig{WorkerCount: 1, QueueSize: 4}, slog.Default())
	runner.Start()
	defer runner.Stop()

	ft := newFakeTask("", errors.New("generation exploded"))
	require.NoError(t, runner.Submit(ft))

	info := waitForStatus(t, registry, ft.ID(), TaskStatusFailed)
	assert.Equal(t, "generation exploded", info.Error)
	assert.Empty(t, info.Result)
}

func TestRunnerQueueFull(t *testing.T) {
	t.Parallel()
	registry := NewRegistry()
	// No workers started, so the queue never drains.
	runner := NewTaskRunner(registry, TaskRunnerConfig{WorkerCount: 1, QueueSize: 1}, slog.Default())

	first := newFakeTask("a", nil)
	require.NoError(t, runner.Submit(first))

	second := newFakeTask("b", nil)
	err := runner.Submit(second)
	require.Error(t, err)

	info, ok := registry.Get(second.ID())
	require.True(t, ok)
	assert.Equal(t, TaskStatusFailed, info.Status)
}

func TestRegistryUnknownTask(t *testing.T) {
	t.Parallel()
	registry := NewRegistry()
	_, ok := registry.Get(uuid.New())
	assert.False(t, ok)
}

// stubRunStarter returns a canned manifest.
type stubRunStarter struct {
	manifest *domain.RunManifest
	err      error
}

func (s *stubRunStarter) StartRun(ctx context.Context, params domain.RunParams) (*domain.RunManifest, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.manifest, nil
}

func TestGenerationTask(t *testing.T) {
	t.Parallel()
	manifest, err := domain.NewRunManifest("20260815_093000_cats", domain.RunParams{Keyword: "cats", Count: 1}, time.Now())
	require.NoError(t, err)

	gt, err := NewGenerationTask(&stubRunStarter{manifest: manifest}, domain.RunParams{Keyword: "cats", Count: 1})
	require.NoError(t, err)
	assert.Equal(t, TaskTypeGeneration, gt.Type())

	result, err := gt.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "20260815_093000_cats", result)
}

func TestGenerationTaskValidation(t *testing.T) {
	t.Parallel()
	_, err := NewGenerationTask(nil, domain.RunParams{Keyword: "cats"})
	assert.Error(t, err)

	_, err = NewGenerationTask(&stubRunStarter{}, domain.RunParams{})
	assert.ErrorIs(t, err, domain.ErrEmptyKeyword)
}
