package entities

import "github.com/zatekoja/woundtrack/pkg/geo"

// Hospital is a read-only directory record
type Hospital struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Phone       string   `json:"phone"`
	Hours       string   `json:"hours"`
	WaitTime    string   `json:"wait_time"`
	Specialties []string `json:"specialties"`
	Location    Location `json:"location"`
	// DistanceMiles is set on query results only.
	DistanceMiles *float64 `json:"distance_miles,omitempty"`
}

// WithDistance returns a copy of h carrying the given distance. The directory
// records themselves are never mutated.
func (h Hospital) WithDistance(miles float64) *Hospital {
	out := h
	out.Specialties = append([]string(nil), h.Specialties...)
	out.DistanceMiles = &miles
	return &out
}

// Location represents geographical coordinates with an optional address
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// Point converts the location for distance calculations.
func (l Location) Point() geo.Point {
	return geo.Point{Latitude: l.Latitude, Longitude: l.Longitude}
}

// Valid reports whether the coordinates are within WGS84 bounds.
func (l Location) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}
