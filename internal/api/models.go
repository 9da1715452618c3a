package api

import (
	"time"

	"github.com/stockpix/stockpix/internal/domain"
	"github.com/stockpix/stockpix/internal/redact"
	"github.com/stockpix/stockpix/internal/service"
)

// CreateRunRequest starts a generation run.
type CreateRunRequest struct {
	Keyword string   `json:"keyword" validate:"required,min=1,max=200"`
	Tags    []string `json:"tags" validate:"omitempty,max=20,dive,min=1,max=50"`
	Style   string   `json:"style" validate:"omitempty,max=50"`
	Count   int      `json:"count" validate:"required,gte=1,lte=50"`
}

// CreateRunResponse acknowledges an accepted generation run.
type CreateRunResponse struct {
	TaskID string `json:"task_id"`
}

// RunListResponse lists the known run IDs, newest first.
type RunListResponse struct {
	Runs []string `json:"runs"`
}

// RunSummaryResponse describes one run and its per-status counts.
type RunSummaryResponse struct {
	RunID     string           `json:"run_id"`
	Params    domain.RunParams `json:"params"`
	CreatedAt time.Time        `json:"created_at"`
	Archived  bool             `json:"archived"`
	Counts    map[string]int   `json:"counts"`
}

// ImageResponse is one gallery entry: the record plus presigned
// download URLs for rendering.
type ImageResponse struct {
	ID              string           `json:"id"`
	Status          string           `json:"status"`
	Prompt          string           `json:"prompt"`
	CreatedAt       time.Time        `json:"created_at"`
	StatusChangedAt time.Time        `json:"status_changed_at"`
	URL             string           `json:"url"`
	UpscaledURL     string           `json:"upscaled_url,omitempty"`
	Metadata        *domain.Metadata `json:"metadata,omitempty"`
}

// ImageListResponse is the gallery payload for one run and status.
type ImageListResponse struct {
	RunID  string          `json:"run_id"`
	Status string          `json:"status"`
	Images []ImageResponse `json:"images"`
}

// BatchRequest applies one reviewer action to a set of images.
type BatchRequest struct {
	Action string   `json:"action" validate:"required,oneof=register exclude revert"`
	IDs    []string `json:"ids" validate:"required,min=1,dive,min=1"`
}

// BatchFailure reports one image whose register step failed.
type BatchFailure struct {
	ID    string `json:"id"`
	Op    string `json:"op"`
	Error string `json:"error"`
}

// BatchResponse reports the outcome of a batch request.
type BatchResponse struct {
	Outcome   string         `json:"outcome"`
	Succeeded []string       `json:"succeeded,omitempty"`
	Failed    []BatchFailure `json:"failed,omitempty"`
}

// ValidationFailureResponse is the 422 payload of a rejected batch.
type ValidationFailureResponse struct {
	Error    string                 `json:"error"`
	TraceID  string                 `json:"trace_id,omitempty"`
	Problems []service.BatchProblem `json:"problems"`
}

// newBatchResponse converts a register result to its API shape.
func newBatchResponse(result *service.RegisterResult) BatchResponse {
	resp := BatchResponse{
		Outcome:   string(result.Outcome),
		Succeeded: result.Succeeded,
	}
	for _, f := range result.Failed {
		resp.Failed = append(resp.Failed, BatchFailure{
			ID:    f.ID,
			Op:    f.Op,
			Error: redact.Error(f.Err),
		})
	}
	return resp
}
