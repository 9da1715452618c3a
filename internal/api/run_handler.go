package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stockpix/stockpix/internal/api/shared"
	"github.com/stockpix/stockpix/internal/domain"
	"github.com/stockpix/stockpix/internal/task"
)

// RunDefaults are the generation parameters applied when a create-run
// request leaves them unset.
type RunDefaults struct {
	Model   string
	Size    string
	Quality string
}

// TaskSubmitter enqueues background tasks.
type TaskSubmitter interface {
	Submit(t task.Task) error
}

// TaskReader answers task status polls.
type TaskReader interface {
	Get(id uuid.UUID) (task.TaskInfo, bool)
}

// RunHandler serves run creation, listing, and task status polls.
type RunHandler struct {
	runs     task.RunStarter
	tasks    TaskSubmitter
	registry TaskReader
	curation CurationReader
	defaults RunDefaults
	logger   *slog.Logger
}

// NewRunHandler creates a RunHandler.
func NewRunHandler(
	runs task.RunStarter,
	tasks TaskSubmitter,
	registry TaskReader,
	curation CurationReader,
	defaults RunDefaults,
	logger *slog.Logger,
) *RunHandler {
	return &RunHandler{
		runs:     runs,
		tasks:    tasks,
		registry: registry,
		curation: curation,
		defaults: defaults,
		logger:   logger,
	}
}

// CreateRun handles POST /api/runs: it validates the request, submits
// a generation task, and answers 202 with the task ID to poll.
func (h *RunHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	params := domain.RunParams{
		Keyword: req.Keyword,
		Tags:    req.Tags,
		Style:   req.Style,
		Count:   req.Count,
		Model:   h.defaults.Model,
		Size:    h.defaults.Size,
		Quality: h.defaults.Quality,
	}

	genTask, err := task.NewGenerationTask(h.runs, params)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.tasks.Submit(genTask); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable,
			"generation queue is full, try again later", err)
		return
	}

	h.logger.Info("accepted generation run",
		"task_id", genTask.ID(),
		"keyword", req.Keyword,
		"count", req.Count)
	shared.RespondWithJSON(w, r, http.StatusAccepted, CreateRunResponse{
		TaskID: genTask.ID().String(),
	})
}

// GetTask handles GET /api/tasks/{id}.
func (h *RunHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid task ID")
		return
	}

	info, ok := h.registry.Get(id)
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "task not found")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, info)
}

// ListRuns handles GET /api/runs.
func (h *RunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.curation.ListRuns(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if runs == nil {
		runs = []string{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, RunListResponse{Runs: runs})
}

// GetRun handles GET /api/runs/{runID}: a summary of the run and its
// per-status counts.
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	manifest, err := h.curation.Manifest(r.Context(), runID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	counts := make(map[string]int)
	for status, n := range manifest.CountByStatus() {
		counts[string(status)] = n
	}
	shared.RespondWithJSON(w, r, http.StatusOK, RunSummaryResponse{
		RunID:     manifest.RunID,
		Params:    manifest.Params,
		CreatedAt: manifest.CreatedAt,
		Archived:  manifest.Archived,
		Counts:    counts,
	})
}
