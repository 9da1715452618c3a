package api

import (
	"net/http"

	"github.com/stockpix/stockpix/internal/api/shared"
)

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status string `json:"status"`
}

// HealthCheck handles GET /health.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
}
