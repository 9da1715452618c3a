package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockpix/stockpix/internal/api/shared"
	"github.com/stockpix/stockpix/internal/service"
)

// BatchHandler applies reviewer decisions: exclude and revert go
// through the curation service, register through fulfillment because
// it triggers upscaling and metadata synthesis.
type BatchHandler struct {
	curation    BatchApplier
	fulfillment Registrar
	logger      *slog.Logger
}

// NewBatchHandler creates a BatchHandler.
func NewBatchHandler(curation BatchApplier, fulfillment Registrar, logger *slog.Logger) *BatchHandler {
	return &BatchHandler{curation: curation, fulfillment: fulfillment, logger: logger}
}

// SubmitBatch handles POST /api/runs/{runID}/batch.
func (h *BatchHandler) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	var req BatchRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	action := service.BatchAction(req.Action)
	if action == service.ActionRegister {
		result, err := h.fulfillment.Register(r.Context(), runID, req.IDs)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, newBatchResponse(result))
		return
	}

	if err := h.curation.SubmitBatch(r.Context(), runID, req.IDs, action); err != nil {
		respondServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, BatchResponse{
		Outcome:   string(service.OutcomeFull),
		Succeeded: req.IDs,
	})
}
