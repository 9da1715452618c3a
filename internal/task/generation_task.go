package task

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/stockpix/stockpix/internal/domain"
)

// RunStarter is the slice of the run service the generation task
// needs.
type RunStarter interface {
	StartRun(ctx context.Context, params domain.RunParams) (*domain.RunManifest, error)
}

// GenerationTask executes one generation run in the background. Its
// result reference is the run ID.
type GenerationTask struct {
	id     uuid.UUID
	runs   RunStarter
	params domain.RunParams
}

// NewGenerationTask creates a GenerationTask for the given parameters.
func NewGenerationTask(runs RunStarter, params domain.RunParams) (*GenerationTask, error) {
	if runs == nil {
		return nil, errors.New("run starter cannot be nil")
	}
	if params.Keyword == "" {
		return nil, domain.ErrEmptyKeyword
	}
	return &GenerationTask{
		id:     uuid.New(),
		runs:   runs,
		params: params,
	}, nil
}

// ID implements Task.
func (t *GenerationTask) ID() uuid.UUID {
	return t.id
}

// Type implements Task.
func (t *GenerationTask) Type() string {
	return TaskTypeGeneration
}

// Execute implements Task by running the full generation stage.
func (t *GenerationTask) Execute(ctx context.Context) (string, error) {
	manifest, err := t.runs.StartRun(ctx, t.params)
	if err != nil {
		return "", err
	}
	return manifest.RunID, nil
}
