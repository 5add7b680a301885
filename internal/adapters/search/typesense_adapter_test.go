package search

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/woundtrack/internal/domain/entities"
	"github.com/zatekoja/woundtrack/internal/domain/repositories"
	tsclient "github.com/zatekoja/woundtrack/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/woundtrack/pkg/geo"
)

func TestGeoFilter(t *testing.T) {
	center := geo.Point{Latitude: 37.7749, Longitude: -122.4194}

	assert.Equal(t, "location:(37.774900, -122.419400, 50.000 mi)", geoFilter(center, 50))
	assert.Empty(t, geoFilter(center, 0))
	assert.Empty(t, geoFilter(center, geo.Unbounded))
}

func TestHospitalDocument(t *testing.T) {
	doc := hospitalDocument(&entities.Hospital{
		ID:       "3",
		Name:     "California Pacific Medical Center",
		Address:  "1101 Van Ness Ave",
		Location: entities.Location{Latitude: 37.7857, Longitude: -122.4208},
	}, 2)

	assert.Equal(t, "3", doc["id"])
	assert.Equal(t, []string{}, doc["specialties"])
	assert.Equal(t, []float64{37.7857, -122.4208}, doc["location"])
	assert.Equal(t, 2, doc["position"])
}

func TestTypesenseAdapter_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/hospitals/documents/search", r.URL.Path)
		assert.Equal(t, "burn", r.URL.Query().Get("q"))
		assert.Equal(t, queryBy, r.URL.Query().Get("query_by"))
		assert.Contains(t, r.URL.Query().Get("filter_by"), "mi)")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"found": 2, "out_of": 8, "page": 1, "search_time_ms": 1,
			"hits": [
				{"document": {"id": "4", "name": "Saint Francis Memorial Hospital"}},
				{"document": {"id": "8", "name": "UC Davis Medical Center"}}
			]
		}`))
	}))
	defer server.Close()

	adapter := NewTypesenseAdapter(tsclient.NewUncheckedClient(server.URL, "key"))
	ids, err := adapter.Search(t.Context(), repositories.HospitalSearchParams{
		Query:       "burn",
		Center:      geo.Point{Latitude: 37.7749, Longitude: -122.4194},
		RadiusMiles: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "8"}, ids)
}
