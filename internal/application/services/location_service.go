package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zatekoja/woundtrack/internal/domain/entities"
	"github.com/zatekoja/woundtrack/internal/domain/providers"
	"github.com/zatekoja/woundtrack/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/woundtrack/pkg/errors"
)

// Location failures, matched with errors.Is.
var (
	ErrLocationPermissionDenied = errors.New("location permission denied")
	ErrLocationUnavailable      = errors.New("location unavailable")
)

// LocationService resolves where the user is
type LocationService struct {
	position providers.PositionProvider
	geocoder providers.GeolocationProvider
}

// NewLocationService creates a location service. geocoder may be nil, in
// which case resolved locations carry no address.
func NewLocationService(position providers.PositionProvider, geocoder providers.GeolocationProvider) *LocationService {
	return &LocationService{position: position, geocoder: geocoder}
}

// Resolve asks for permission, reads the device position and labels it with
// a street address when one can be found.
func (s *LocationService) Resolve(ctx context.Context) (*entities.Location, error) {
	granted, err := s.position.RequestPermission(ctx)
	if err != nil {
		return nil, apperrors.NewUnavailableError("location permission request failed",
			fmt.Errorf("%w: %v", ErrLocationUnavailable, err))
	}
	if !granted {
		return nil, apperrors.NewPermissionDeniedError("location permission was not granted", ErrLocationPermissionDenied)
	}

	coords, err := s.position.CurrentPosition(ctx)
	if err != nil {
		return nil, apperrors.NewUnavailableError("current position could not be read",
			fmt.Errorf("%w: %v", ErrLocationUnavailable, err))
	}
	if coords == nil {
		return nil, apperrors.NewUnavailableError("current position could not be read", ErrLocationUnavailable)
	}

	return s.ResolveCoordinates(ctx, coords.Latitude, coords.Longitude)
}

// ResolveCoordinates labels explicit coordinates. A failed reverse lookup
// still yields the coordinates, with an empty address.
func (s *LocationService) ResolveCoordinates(ctx context.Context, lat, lon float64) (*entities.Location, error) {
	loc := &entities.Location{Latitude: lat, Longitude: lon}
	if !loc.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid coordinates %.6f, %.6f", lat, lon))
	}
	if s.geocoder == nil {
		return loc, nil
	}

	addr, err := s.geocoder.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Float64("latitude", lat).
			Float64("longitude", lon).
			Msg("Reverse geocoding failed")
		return loc, nil
	}
	if addr != nil {
		loc.Address = addr.FormattedAddress
	}
	return loc, nil
}

// Lookup geocodes a typed address
func (s *LocationService) Lookup(ctx context.Context, address string) (*entities.Location, error) {
	if strings.TrimSpace(address) == "" {
		return nil, apperrors.NewValidationError("address is required")
	}
	if s.geocoder == nil {
		return nil, apperrors.NewUnavailableError("geocoding is not configured", ErrLocationUnavailable)
	}

	addr, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		if apperrors.TypeOf(err) != "" {
			return nil, err
		}
		return nil, apperrors.NewExternalError("failed to geocode address", err)
	}
	return &entities.Location{
		Latitude:  addr.Coordinates.Latitude,
		Longitude: addr.Coordinates.Longitude,
		Address:   addr.FormattedAddress,
	}, nil
}
