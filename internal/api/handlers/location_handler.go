package handlers

import (
	"net/http"
	"strings"

	"github.com/zatekoja/woundtrack/internal/application/services"
	"github.com/zatekoja/woundtrack/internal/domain/entities"
)

// LocationHandler resolves the user's location
type LocationHandler struct {
	locations *services.LocationService
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(locations *services.LocationService) *LocationHandler {
	return &LocationHandler{locations: locations}
}

// GetLocation handles GET /api/location
//
// ?address= geocodes a typed address, ?lat=&lon= labels explicit
// coordinates, and no parameters reads the device position.
func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	var (
		loc *entities.Location
		err error
	)

	if address := strings.TrimSpace(r.URL.Query().Get("address")); address != "" {
		loc, err = h.locations.Lookup(r.Context(), address)
	} else {
		var lat, lon float64
		var ok bool
		lat, lon, ok, err = parseCoordinates(r)
		switch {
		case err != nil:
		case ok:
			loc, err = h.locations.ResolveCoordinates(r.Context(), lat, lon)
		default:
			loc, err = h.locations.Resolve(r.Context())
		}
	}

	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, loc)
}
