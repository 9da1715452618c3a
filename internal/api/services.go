package api

import (
	"context"

	"github.com/stockpix/stockpix/internal/domain"
	"github.com/stockpix/stockpix/internal/service"
)

// CurationReader is the read side of the curation service.
type CurationReader interface {
	Manifest(ctx context.Context, runID string) (*domain.RunManifest, error)
	ListByStatus(ctx context.Context, runID string, status domain.ImageStatus) ([]*domain.ImageRecord, error)
	ListRuns(ctx context.Context) ([]string, error)
}

// BatchApplier applies exclude and revert decisions.
type BatchApplier interface {
	SubmitBatch(ctx context.Context, runID string, ids []string, action service.BatchAction) error
}

// Registrar runs register batches and builds submission packages.
type Registrar interface {
	Register(ctx context.Context, runID string, ids []string) (*service.RegisterResult, error)
	Export(ctx context.Context, runID string) (*service.ExportBundle, error)
}
