package handlers

import (
	"net/http"

	"github.com/zatekoja/woundtrack/internal/application/services"
)

// HealthHandler reports the app API and classifier status
type HealthHandler struct {
	predictions *services.PredictionService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(predictions *services.PredictionService) *HealthHandler {
	return &HealthHandler{predictions: predictions}
}

// Health handles GET /health. A dead classifier degrades the status but the
// app API itself still answers 200.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok"}

	classifier, err := h.predictions.Health(r.Context())
	if err != nil {
		body["status"] = "degraded"
		body["classifier"] = "unreachable"
	} else {
		body["classifier"] = classifier
	}

	respondWithJSON(w, http.StatusOK, body)
}
