package providers

import (
	"context"
)

// PositionProvider is the device location source. It owns the permission
// prompt; the directory only sees the resulting coordinates.
type PositionProvider interface {
	// RequestPermission asks for location access and reports whether it was granted
	RequestPermission(ctx context.Context) (bool, error)

	// CurrentPosition returns the current device coordinates
	CurrentPosition(ctx context.Context) (*Coordinates, error)
}

// GeolocationProvider defines the interface for geolocation services
type GeolocationProvider interface {
	// Geocode converts an address to a geocoded address with coordinates
	Geocode(ctx context.Context, address string) (*GeocodedAddress, error)

	// ReverseGeocode converts coordinates to an address
	ReverseGeocode(ctx context.Context, lat, lon float64) (*GeocodedAddress, error)
}

// Coordinates represents geographical coordinates
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// GeocodedAddress represents a geocoded address
type GeocodedAddress struct {
	FormattedAddress string
	Street           string
	City             string
	State            string
	ZipCode          string
	Country          string
	Coordinates      Coordinates
}
