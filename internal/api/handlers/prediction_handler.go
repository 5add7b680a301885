package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/zatekoja/woundtrack/internal/application/services"
	"github.com/zatekoja/woundtrack/internal/domain/entities"
	apperrors "github.com/zatekoja/woundtrack/pkg/errors"
)

const imageField = "image"

// PredictionHandler handles wound capture and history requests
type PredictionHandler struct {
	predictions *services.PredictionService
	history     *services.HistoryService
	auth        *services.AuthService
}

// NewPredictionHandler creates a new prediction handler
func NewPredictionHandler(predictions *services.PredictionService, history *services.HistoryService, auth *services.AuthService) *PredictionHandler {
	return &PredictionHandler{predictions: predictions, history: history, auth: auth}
}

// Submit handles POST /api/predictions (multipart field "image")
func (h *PredictionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	s, err := h.auth.Current(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	image, err := readImage(w, r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	prediction, err := h.predictions.Submit(r.Context(), image, s.User.ID)
	if err != nil {
		if prediction != nil && apperrors.IsType(err, apperrors.ErrorTypePersistence) {
			respondWithAppErrorPayload(w, r, err, map[string]interface{}{"prediction": prediction})
			return
		}
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, prediction)
}

// List handles GET /api/predictions
//
// all=true lists every user's records and is meant for debugging.
func (h *PredictionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ""
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	if !all {
		s, err := h.auth.Current(r.Context())
		if err != nil {
			respondWithAppError(w, r, err)
			return
		}
		userID = s.User.ID
	}

	predictions, err := h.history.Refresh(r.Context(), userID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"predictions": predictions,
		"count":       len(predictions),
	})
}

// GetPrediction handles GET /api/predictions/{id}
func (h *PredictionHandler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	prediction, err := h.history.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, prediction)
}

func readImage(w http.ResponseWriter, r *http.Request) (*entities.ImageUpload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxImageBytes+(1<<20))
	if err := r.ParseMultipartForm(services.MaxImageBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.NewValidationError("image is too large")
		}
		return nil, apperrors.NewValidationError("expected a multipart form with an image field")
	}

	file, header, err := r.FormFile(imageField)
	if err != nil {
		return nil, apperrors.NewValidationError("image field is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperrors.NewValidationError("failed to read image")
	}

	return &entities.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
