package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stockpix/stockpix/internal/api/shared"
	"github.com/stockpix/stockpix/internal/domain"
	"github.com/stockpix/stockpix/internal/store"
)

// GalleryHandler serves the image listings the review UI renders. Each
// entry carries short-lived presigned URLs so the browser can fetch
// image bytes straight from storage.
type GalleryHandler struct {
	curation CurationReader
	signer   store.URLSigner
	ttl      time.Duration
	logger   *slog.Logger
}

// NewGalleryHandler creates a GalleryHandler issuing URLs valid for
// ttl.
func NewGalleryHandler(curation CurationReader, signer store.URLSigner, ttl time.Duration, logger *slog.Logger) *GalleryHandler {
	return &GalleryHandler{curation: curation, signer: signer, ttl: ttl, logger: logger}
}

// ListImages handles GET /api/runs/{runID}/images?status=. The status
// defaults to unprocessed, the queue a reviewer works through.
func (h *GalleryHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	status := domain.ImageStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.StatusUnprocessed
	}
	if !status.Valid() {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"status must be unprocessed, registered, or excluded")
		return
	}

	records, err := h.curation.ListByStatus(r.Context(), runID, status)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	images := make([]ImageResponse, 0, len(records))
	for _, rec := range records {
		url, err := h.signer.PresignGet(r.Context(), rec.SourcePath, h.ttl)
		if err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
				"failed to sign image URL", err)
			return
		}

		img := ImageResponse{
			ID:              rec.ID,
			Status:          string(rec.Status),
			Prompt:          rec.Prompt,
			CreatedAt:       rec.CreatedAt,
			StatusChangedAt: rec.StatusChangedAt,
			URL:             url,
			Metadata:        rec.Metadata,
		}
		if rec.UpscaledPath != "" {
			upscaledURL, err := h.signer.PresignGet(r.Context(), rec.UpscaledPath, h.ttl)
			if err != nil {
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
					"failed to sign image URL", err)
				return
			}
			img.UpscaledURL = upscaledURL
		}
		images = append(images, img)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ImageListResponse{
		RunID:  runID,
		Status: string(status),
		Images: images,
	})
}
