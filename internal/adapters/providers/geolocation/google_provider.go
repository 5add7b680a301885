package geolocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zatekoja/woundtrack/internal/domain/providers"
	apperrors "github.com/zatekoja/woundtrack/pkg/errors"
)

const (
	googleGeocodeURL       = "https://maps.googleapis.com/maps/api/geocode/json"
	defaultGeocodeCacheTTL = 60 * 60 * 24 * 30
	defaultReverseCacheTTL = 60 * 60 * 24 * 7
	defaultHTTPTimeout     = 8 * time.Second
)

// GoogleGeolocationProvider implements the GeolocationProvider using the Google Geocoding API.
type GoogleGeolocationProvider struct {
	apiKey     string
	httpClient *http.Client
	cache      providers.CacheProvider
	baseURL    string
}

// NewGoogleGeolocationProvider creates a new Google geolocation provider.
func NewGoogleGeolocationProvider(apiKey string, cache providers.CacheProvider) providers.GeolocationProvider {
	return NewGoogleGeolocationProviderWithOptions(apiKey, cache, googleGeocodeURL, nil)
}

// NewGoogleGeolocationProviderWithOptions allows overriding base URL and HTTP client (used for tests).
func NewGoogleGeolocationProviderWithOptions(apiKey string, cache providers.CacheProvider, baseURL string, httpClient *http.Client) providers.GeolocationProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = googleGeocodeURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &GoogleGeolocationProvider{
		apiKey:     apiKey,
		httpClient: httpClient,
		cache:      cache,
		baseURL:    baseURL,
	}
}

// Geocode converts an address to a full geocoded address.
func (g *GoogleGeolocationProvider) Geocode(ctx context.Context, address string) (*providers.GeocodedAddress, error) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return nil, apperrors.NewValidationError("address is required")
	}

	cacheKey := "geo:v1:geocode:" + hashKey(strings.ToLower(trimmed))
	if addr := g.cached(ctx, cacheKey); addr != nil {
		return addr, nil
	}

	resp, err := g.doGeocodeRequest(ctx, url.Values{"address": []string{trimmed}})
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, apperrors.NewNotFoundError("no results for address")
	}

	addr := toGeocodedAddress(resp.Results[0])
	g.store(ctx, cacheKey, addr, defaultGeocodeCacheTTL)
	return addr, nil
}

// ReverseGeocode converts coordinates to an address.
func (g *GoogleGeolocationProvider) ReverseGeocode(ctx context.Context, lat, lon float64) (*providers.GeocodedAddress, error) {
	// ~1m precision keeps a stationary phone on one cache entry.
	cacheKey := "geo:v1:reverse:" + hashKey(fmt.Sprintf("%.5f,%.5f", lat, lon))
	if addr := g.cached(ctx, cacheKey); addr != nil {
		return addr, nil
	}

	resp, err := g.doGeocodeRequest(ctx, url.Values{"latlng": []string{fmt.Sprintf("%f,%f", lat, lon)}})
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, apperrors.NewNotFoundError("no results for coordinates")
	}

	addr := toGeocodedAddress(resp.Results[0])
	g.store(ctx, cacheKey, addr, defaultReverseCacheTTL)
	return addr, nil
}

func (g *GoogleGeolocationProvider) cached(ctx context.Context, key string) *providers.GeocodedAddress {
	if g.cache == nil {
		return nil
	}
	payload, err := g.cache.Get(ctx, key)
	if err != nil || len(payload) == 0 {
		return nil
	}
	var addr providers.GeocodedAddress
	if err := json.Unmarshal(payload, &addr); err != nil || addr.FormattedAddress == "" {
		return nil
	}
	return &addr
}

func (g *GoogleGeolocationProvider) store(ctx context.Context, key string, addr *providers.GeocodedAddress, ttl int) {
	if g.cache == nil {
		return
	}
	if payload, err := json.Marshal(addr); err == nil {
		_ = g.cache.Set(ctx, key, payload, ttl)
	}
}

func (g *GoogleGeolocationProvider) doGeocodeRequest(ctx context.Context, params url.Values) (*googleGeocodeResponse, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("google maps api key is required")
	}

	params.Set("key", g.apiKey)
	reqURL := fmt.Sprintf("%s?%s", g.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("geocode request returned status %d", resp.StatusCode)
	}

	var payload googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}

	switch payload.Status {
	case "OK":
		return &payload, nil
	case "ZERO_RESULTS":
		payload.Results = nil
		return &payload, nil
	}
	if payload.ErrorMessage != "" {
		return nil, fmt.Errorf("geocode request failed: %s - %s", payload.Status, payload.ErrorMessage)
	}
	return nil, fmt.Errorf("geocode request failed: %s", payload.Status)
}

func toGeocodedAddress(result googleGeocodeResult) *providers.GeocodedAddress {
	return &providers.GeocodedAddress{
		FormattedAddress: result.FormattedAddress,
		Street:           buildStreet(result.AddressComponents),
		City:             component(result.AddressComponents, "locality", "administrative_area_level_2"),
		State:            component(result.AddressComponents, "administrative_area_level_1"),
		ZipCode:          component(result.AddressComponents, "postal_code"),
		Country:          component(result.AddressComponents, "country"),
		Coordinates: providers.Coordinates{
			Latitude:  result.Geometry.Location.Lat,
			Longitude: result.Geometry.Location.Lng,
		},
	}
}

func hashKey(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

func component(components []googleAddressComponent, primary string, fallback ...string) string {
	for _, t := range append([]string{primary}, fallback...) {
		for _, comp := range components {
			if containsType(comp.Types, t) {
				return comp.LongName
			}
		}
	}
	return ""
}

func buildStreet(components []googleAddressComponent) string {
	streetNumber := component(components, "street_number")
	route := component(components, "route")
	if streetNumber != "" && route != "" {
		return streetNumber + " " + route
	}
	if route != "" {
		return route
	}
	return streetNumber
}

func containsType(types []string, target string) bool {
	for _, t := range types {
		if t == target {
			return true
		}
	}
	return false
}

type googleGeocodeResponse struct {
	Status       string                `json:"status"`
	ErrorMessage string                `json:"error_message,omitempty"`
	Results      []googleGeocodeResult `json:"results"`
}

type googleGeocodeResult struct {
	FormattedAddress  string                   `json:"formatted_address"`
	AddressComponents []googleAddressComponent `json:"address_components"`
	Geometry          googleGeometry           `json:"geometry"`
}

type googleAddressComponent struct {
	LongName string   `json:"long_name"`
	Types    []string `json:"types"`
}

type googleGeometry struct {
	Location googleLocation `json:"location"`
}

type googleLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
