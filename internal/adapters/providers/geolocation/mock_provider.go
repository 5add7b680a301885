package geolocation

import (
	"context"
	"fmt"
	"strings"

	"github.com/zatekoja/woundtrack/internal/domain/providers"
	apperrors "github.com/zatekoja/woundtrack/pkg/errors"
)

// MockGeolocationProvider resolves a fixed set of cities without network access
type MockGeolocationProvider struct{}

// NewMockGeolocationProvider creates a new mock geolocation provider
func NewMockGeolocationProvider() providers.GeolocationProvider {
	return &MockGeolocationProvider{}
}

var mockCities = []struct {
	name   string
	coords providers.Coordinates
}{
	{"San Francisco", providers.Coordinates{Latitude: 37.7749, Longitude: -122.4194}},
	{"Oakland", providers.Coordinates{Latitude: 37.8044, Longitude: -122.2712}},
	{"Palo Alto", providers.Coordinates{Latitude: 37.4419, Longitude: -122.1430}},
	{"Sacramento", providers.Coordinates{Latitude: 38.5816, Longitude: -121.4944}},
	{"Los Angeles", providers.Coordinates{Latitude: 34.0522, Longitude: -118.2437}},
	{"New York", providers.Coordinates{Latitude: 40.7128, Longitude: -74.0060}},
	{"Lagos", providers.Coordinates{Latitude: 6.5244, Longitude: 3.3792}},
}

// Geocode matches the address against known city names
func (m *MockGeolocationProvider) Geocode(ctx context.Context, address string) (*providers.GeocodedAddress, error) {
	lower := strings.ToLower(address)
	for _, city := range mockCities {
		if strings.Contains(lower, strings.ToLower(city.name)) {
			return &providers.GeocodedAddress{
				FormattedAddress: city.name,
				City:             city.name,
				Coordinates:      city.coords,
			}, nil
		}
	}
	return nil, apperrors.NewNotFoundError("no results for address")
}

// ReverseGeocode labels the coordinates with their own decimal form
func (m *MockGeolocationProvider) ReverseGeocode(ctx context.Context, lat, lon float64) (*providers.GeocodedAddress, error) {
	return &providers.GeocodedAddress{
		FormattedAddress: fmt.Sprintf("%.4f, %.4f", lat, lon),
		Coordinates: providers.Coordinates{
			Latitude:  lat,
			Longitude: lon,
		},
	}, nil
}
