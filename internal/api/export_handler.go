package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stockpix/stockpix/internal/api/shared"
)

// ExportHandler serves submission-package downloads.
type ExportHandler struct {
	fulfillment Registrar
	logger      *slog.Logger
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(fulfillment Registrar, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{fulfillment: fulfillment, logger: logger}
}

// Export handles GET /api/runs/{runID}/export: it builds the ZIP of
// upscaled images plus submit.csv and streams it as a download.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	bundle, err := h.fulfillment.Export(r.Context(), runID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", bundle.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(bundle.Data)))
	if _, err := w.Write(bundle.Data); err != nil {
		h.logger.Error("failed to write export archive",
			"run_id", runID,
			"trace_id", shared.GetTraceID(r.Context()),
			"error", err)
	}
}
