package geolocation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/woundtrack/internal/adapters/cache"
	apperrors "github.com/zatekoja/woundtrack/pkg/errors"
)

const reverseResponse = `{
  "status": "OK",
  "results": [{
    "formatted_address": "1 Dr Carlton B Goodlett Pl, San Francisco, CA 94102, USA",
    "address_components": [
      {"long_name": "1", "types": ["street_number"]},
      {"long_name": "Dr Carlton B Goodlett Place", "types": ["route"]},
      {"long_name": "San Francisco", "types": ["locality", "political"]},
      {"long_name": "California", "types": ["administrative_area_level_1"]},
      {"long_name": "94102", "types": ["postal_code"]},
      {"long_name": "United States", "types": ["country"]}
    ],
    "geometry": {"location": {"lat": 37.7793, "lng": -122.4193}}
  }]
}`

func TestGoogleProvider_ReverseGeocode(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "37.774900,-122.419400", r.URL.Query().Get("latlng"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(reverseResponse))
	}))
	defer server.Close()

	provider := NewGoogleGeolocationProviderWithOptions("test-key", cache.NewMemoryAdapter(16), server.URL, server.Client())

	addr, err := provider.ReverseGeocode(context.Background(), 37.7749, -122.4194)
	require.NoError(t, err)
	assert.Equal(t, "1 Dr Carlton B Goodlett Pl, San Francisco, CA 94102, USA", addr.FormattedAddress)
	assert.Equal(t, "1 Dr Carlton B Goodlett Place", addr.Street)
	assert.Equal(t, "San Francisco", addr.City)
	assert.Equal(t, "94102", addr.ZipCode)

	// Second lookup is served from cache.
	_, err = provider.ReverseGeocode(context.Background(), 37.7749, -122.4194)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGoogleProvider_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType apperrors.ErrorType
	}{
		{"http error", http.StatusInternalServerError, `{}`, ""},
		{"denied", http.StatusOK, `{"status":"REQUEST_DENIED","error_message":"bad key"}`, ""},
		{"zero results", http.StatusOK, `{"status":"ZERO_RESULTS","results":[]}`, apperrors.ErrorTypeNotFound},
		{"malformed", http.StatusOK, `not json`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			provider := NewGoogleGeolocationProviderWithOptions("k", nil, server.URL, server.Client())
			_, err := provider.ReverseGeocode(context.Background(), 1, 2)
			require.Error(t, err)
			assert.Equal(t, tt.wantType, apperrors.TypeOf(err))

			_, err = provider.Geocode(context.Background(), "Atlantis")
			require.Error(t, err)
			assert.Equal(t, tt.wantType, apperrors.TypeOf(err))
		})
	}
}

func TestGoogleProvider_RequiresAPIKey(t *testing.T) {
	provider := NewGoogleGeolocationProviderWithOptions("", nil, "http://127.0.0.1:0", nil)
	_, err := provider.Geocode(context.Background(), "San Francisco")
	assert.Error(t, err)
}

func TestMockProvider_Geocode(t *testing.T) {
	provider := NewMockGeolocationProvider()

	addr, err := provider.Geocode(context.Background(), "near oakland, CA")
	require.NoError(t, err)
	assert.Equal(t, 37.8044, addr.Coordinates.Latitude)

	_, err = provider.Geocode(context.Background(), "Atlantis")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}
