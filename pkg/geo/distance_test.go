package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var sanFrancisco = Point{Latitude: 37.7749, Longitude: -122.4194}

func TestDistanceMiles_SamePointIsZero(t *testing.T) {
	assert.Equal(t, 0.0, DistanceMiles(sanFrancisco, sanFrancisco))
}

func TestDistanceMiles_Symmetric(t *testing.T) {
	points := []Point{
		sanFrancisco,
		{Latitude: 6.5244, Longitude: 3.3792},
		{Latitude: -33.8688, Longitude: 151.2093},
		{Latitude: 89.9, Longitude: 179.9},
		{Latitude: -89.9, Longitude: -179.9},
		{Latitude: 0, Longitude: 0},
	}

	for _, a := range points {
		for _, b := range points {
			assert.Equal(t, DistanceMiles(a, b), DistanceMiles(b, a), "%v <-> %v", a, b)
		}
	}
}

func TestDistanceMiles_KnownDistances(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
	}{
		{"SF to LA", sanFrancisco, Point{Latitude: 34.0522, Longitude: -118.2437}, 347.4},
		{"one degree of latitude", Point{0, 0}, Point{1, 0}, 69.1},
		{"antipodes", Point{0, 0}, Point{0, 180}, math.Pi * EarthRadiusMiles},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DistanceMiles(tt.a, tt.b), 1.0)
		})
	}
}

func TestDistanceKm_UsesKilometreRadius(t *testing.T) {
	a, b := Point{0, 0}, Point{1, 0}
	assert.InDelta(t, DistanceMiles(a, b)*EarthRadiusKm/EarthRadiusMiles, DistanceKm(a, b), 1e-9)
}

func TestIsUnbounded(t *testing.T) {
	assert.True(t, IsUnbounded(Unbounded))
	assert.True(t, IsUnbounded(math.Inf(1)))
	assert.True(t, IsUnbounded(20000))
	assert.False(t, IsUnbounded(50))
}

func TestBoundingBox_ContainsRadius(t *testing.T) {
	min, max, ok := BoundingBox(sanFrancisco, 50)
	assert.True(t, ok)

	north := Point{Latitude: max.Latitude, Longitude: sanFrancisco.Longitude}
	assert.GreaterOrEqual(t, DistanceMiles(sanFrancisco, north), 50.0)
	assert.Less(t, min.Longitude, sanFrancisco.Longitude)
	assert.Greater(t, max.Longitude, sanFrancisco.Longitude)
}

func TestBoundingBox_FallsBackNearPolesAndAntimeridian(t *testing.T) {
	_, _, ok := BoundingBox(Point{Latitude: 89.5, Longitude: 0}, 100)
	assert.False(t, ok)

	_, _, ok = BoundingBox(Point{Latitude: 0, Longitude: 179.9}, 100)
	assert.False(t, ok)

	_, _, ok = BoundingBox(sanFrancisco, Unbounded)
	assert.False(t, ok)
}
