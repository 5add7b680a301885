// Package geo holds great-circle distance helpers.
package geo

import "math"

const (
	// EarthRadiusMiles is the mean Earth radius used for hospital distances.
	EarthRadiusMiles = 3959.0
	// EarthRadiusKm is the mean Earth radius in kilometres.
	EarthRadiusKm = 6371.0

	// Unbounded is a radius that covers the whole globe.
	Unbounded = math.Pi * EarthRadiusMiles
)

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// DistanceMiles returns the haversine distance between a and b in miles.
func DistanceMiles(a, b Point) float64 {
	return haversine(a, b) * EarthRadiusMiles
}

// DistanceKm returns the haversine distance between a and b in kilometres.
func DistanceKm(a, b Point) float64 {
	return haversine(a, b) * EarthRadiusKm
}

// IsUnbounded reports whether a radius in miles reaches every point on Earth.
func IsUnbounded(radiusMiles float64) bool {
	return math.IsInf(radiusMiles, 1) || radiusMiles >= Unbounded
}

// haversine returns the central angle between a and b in radians.
func haversine(a, b Point) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := lat2 - lat1
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push h a hair past 1 for antipodal points.
	h = math.Min(1, math.Max(0, h))

	return 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// BoundingBox returns the lat/lon box that contains every point within
// radiusMiles of center. ok is false when the box would cross a pole or the
// antimeridian; callers should scan instead.
func BoundingBox(center Point, radiusMiles float64) (min, max Point, ok bool) {
	if radiusMiles < 0 || IsUnbounded(radiusMiles) {
		return Point{}, Point{}, false
	}
	// Slightly padded so points exactly on the radius stay inside the box.
	angular := radiusMiles * (1 + 1e-6) / EarthRadiusMiles
	latDelta := angular * 180 / math.Pi

	minLat := center.Latitude - latDelta
	maxLat := center.Latitude + latDelta
	if minLat <= -90 || maxLat >= 90 {
		return Point{}, Point{}, false
	}

	// Widest longitude span is at the latitude furthest from the equator.
	maxAbsLat := math.Max(math.Abs(minLat), math.Abs(maxLat))
	cosLat := math.Cos(toRadians(maxAbsLat))
	if cosLat <= 0 {
		return Point{}, Point{}, false
	}
	ratio := math.Sin(angular) / cosLat
	if ratio >= 1 {
		return Point{}, Point{}, false
	}
	lonDelta := math.Asin(ratio) * 180 / math.Pi

	minLon := center.Longitude - lonDelta
	maxLon := center.Longitude + lonDelta
	if minLon < -180 || maxLon > 180 {
		return Point{}, Point{}, false
	}

	return Point{Latitude: minLat, Longitude: minLon}, Point{Latitude: maxLat, Longitude: maxLon}, true
}
