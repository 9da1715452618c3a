package api

import (
	"errors"
	"net/http"

	"github.com/stockpix/stockpix/internal/api/shared"
	"github.com/stockpix/stockpix/internal/domain"
	"github.com/stockpix/stockpix/internal/service"
	"github.com/stockpix/stockpix/internal/store"
)

// respondServiceError maps service-layer errors to HTTP responses in
// one place so every handler reports the same shapes.
//
//	BatchValidationError            -> 422 with per-ID problems
//	InvalidTransitionError          -> 409
//	ErrVersionConflict              -> 409
//	ErrNothingRegistered            -> 409
//	ErrManifestNotFound / NotFound  -> 404
//	domain validation errors        -> 400
//	anything else                   -> 500
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.BatchValidationError
	if errors.As(err, &verr) {
		shared.RespondWithJSON(w, r, http.StatusUnprocessableEntity, ValidationFailureResponse{
			Error:    "batch validation failed",
			TraceID:  shared.GetTraceID(r.Context()),
			Problems: verr.Problems,
		})
		return
	}

	var terr *domain.InvalidTransitionError
	if errors.As(err, &terr) {
		shared.RespondWithError(w, r, http.StatusConflict, terr.Error())
		return
	}

	switch {
	case errors.Is(err, store.ErrVersionConflict):
		shared.RespondWithError(w, r, http.StatusConflict,
			"the run was modified concurrently, reload and retry")
	case errors.Is(err, service.ErrNothingRegistered):
		shared.RespondWithError(w, r, http.StatusConflict, "run has no registered images")
	case errors.Is(err, store.ErrManifestNotFound), errors.Is(err, store.ErrObjectNotFound):
		shared.RespondWithError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrEmptyRunID),
		errors.Is(err, domain.ErrEmptyKeyword):
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
	default:
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"internal server error", err)
	}
}
