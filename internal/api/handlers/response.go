package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/woundtrack/internal/application/services"
	"github.com/zatekoja/woundtrack/internal/domain/entities"
	"github.com/zatekoja/woundtrack/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/woundtrack/pkg/errors"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Int("status", statusCode).Msg("Failed to encode response")
	}
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// statusFor maps an error chain to an HTTP status
func statusFor(err error) int {
	if errors.Is(err, services.ErrSuperseded) {
		return http.StatusConflict
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}

	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	case apperrors.ErrorTypeExternal, apperrors.ErrorTypePersistence:
		return http.StatusBadGateway
	case apperrors.ErrorTypePermissionDenied:
		return http.StatusForbidden
	case apperrors.ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondWithAppError logs err once and writes the mapped response. Internal
// details stay in the log.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	respondWithAppErrorPayload(w, r, err, nil)
}

func respondWithAppErrorPayload(w http.ResponseWriter, r *http.Request, err error, extra map[string]interface{}) {
	status := statusFor(err)
	logger := observability.LoggerFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("Request failed")
	} else {
		logger.Warn().Err(err).Int("status", status).Msg("Request rejected")
	}

	message := "internal server error"
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, services.ErrSuperseded):
		message = services.ErrSuperseded.Error()
	case errors.As(err, &appErr) && status != http.StatusInternalServerError:
		message = appErr.Message
	}

	body := map[string]interface{}{"error": message}
	if t := apperrors.TypeOf(err); t != "" {
		body["type"] = t
	}
	for k, v := range extra {
		body[k] = v
	}
	respondWithJSON(w, status, body)
}

// parseCoordinates reads lat/lon query parameters. ok is false when both are
// absent.
func parseCoordinates(r *http.Request) (lat, lon float64, ok bool, err error) {
	latStr := strings.TrimSpace(r.URL.Query().Get("lat"))
	lonStr := strings.TrimSpace(r.URL.Query().Get("lon"))
	if latStr == "" && lonStr == "" {
		return 0, 0, false, nil
	}
	if latStr == "" || lonStr == "" {
		return 0, 0, false, apperrors.NewValidationError("lat and lon must be given together")
	}

	lat, err = strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, false, apperrors.NewValidationError("invalid lat parameter")
	}
	lon, err = strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, false, apperrors.NewValidationError("invalid lon parameter")
	}
	return lat, lon, true, nil
}

// requestLocation uses explicit coordinates when given, else the device position.
func requestLocation(r *http.Request, locations *services.LocationService) (*entities.Location, error) {
	lat, lon, ok, err := parseCoordinates(r)
	if err != nil {
		return nil, err
	}
	if ok {
		loc := &entities.Location{Latitude: lat, Longitude: lon}
		if !loc.Valid() {
			return nil, apperrors.NewValidationError("coordinates out of range")
		}
		return loc, nil
	}
	return locations.Resolve(r.Context())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.NewValidationError("invalid request body")
	}
	return nil
}
