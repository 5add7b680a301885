package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/zatekoja/woundtrack/internal/application/services"
	apperrors "github.com/zatekoja/woundtrack/pkg/errors"
	"github.com/zatekoja/woundtrack/pkg/geo"
)

// HospitalHandler handles hospital directory requests
type HospitalHandler struct {
	hospitals *services.HospitalService
	locations *services.LocationService
}

// NewHospitalHandler creates a new hospital handler
func NewHospitalHandler(hospitals *services.HospitalService, locations *services.LocationService) *HospitalHandler {
	return &HospitalHandler{hospitals: hospitals, locations: locations}
}

// Nearby handles GET /api/hospitals/nearby?lat=&lon=&radius=
//
// radius is in miles; absent means the default and "all" lifts the limit.
// Without lat/lon the device position is used.
func (h *HospitalHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	radius := h.hospitals.Options().DefaultRadiusMiles
	switch raw := r.URL.Query().Get("radius"); raw {
	case "":
	case "all":
		radius = geo.Unbounded
	default:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			respondWithAppError(w, r, apperrors.NewValidationError("invalid radius parameter"))
			return
		}
		radius = v
	}

	loc, err := requestLocation(r, h.locations)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	hospitals, err := h.hospitals.Nearby(r.Context(), *loc, radius)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	body := map[string]interface{}{
		"location":  loc,
		"hospitals": hospitals,
		"count":     len(hospitals),
	}
	if !geo.IsUnbounded(radius) {
		body["radius_miles"] = radius
	}
	respondWithJSON(w, http.StatusOK, body)
}

// Search handles GET /api/hospitals/search?lat=&lon=&query=
func (h *HospitalHandler) Search(w http.ResponseWriter, r *http.Request) {
	loc, err := requestLocation(r, h.locations)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	query := r.URL.Query().Get("query")
	hospitals, err := h.hospitals.Search(r.Context(), *loc, query)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"location":  loc,
		"query":     query,
		"hospitals": hospitals,
		"count":     len(hospitals),
	})
}

// GetHospital handles GET /api/hospitals/{id}
func (h *HospitalHandler) GetHospital(w http.ResponseWriter, r *http.Request) {
	hospital, err := h.hospitals.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, hospital)
}
