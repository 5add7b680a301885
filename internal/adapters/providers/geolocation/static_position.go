package geolocation

import (
	"context"

	"github.com/zatekoja/woundtrack/internal/domain/providers"
)

// StaticPositionProvider reports a configured device position. It stands in
// for the platform location service when the core runs headless.
type StaticPositionProvider struct {
	coords  providers.Coordinates
	granted bool
}

// NewStaticPositionProvider creates a position provider with a fixed answer
func NewStaticPositionProvider(lat, lon float64, granted bool) *StaticPositionProvider {
	return &StaticPositionProvider{
		coords:  providers.Coordinates{Latitude: lat, Longitude: lon},
		granted: granted,
	}
}

// RequestPermission reports the configured permission state
func (s *StaticPositionProvider) RequestPermission(ctx context.Context) (bool, error) {
	return s.granted, nil
}

// CurrentPosition returns the configured coordinates
func (s *StaticPositionProvider) CurrentPosition(ctx context.Context) (*providers.Coordinates, error) {
	c := s.coords
	return &c, nil
}
