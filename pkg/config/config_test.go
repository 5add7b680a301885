package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_PATH", "/tmp/woundtrack-session.json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:1337/api", cfg.ContentAPI.URL)
	assert.Equal(t, 10*time.Second, cfg.ContentAPI.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Classifier.Timeout)
	assert.Equal(t, "file", cfg.Session.Store)
	assert.Equal(t, 50.0, cfg.Directory.DefaultRadiusMiles)
	assert.Equal(t, 10, cfg.Directory.NearestLimit)
	assert.Equal(t, "127.0.0.1:8787", cfg.Server.ServerAddr())
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CONTENT_API_URL", "https://cms.example.com/api")
	t.Setenv("CONTENT_API_TIMEOUT", "3s")
	t.Setenv("CLASSIFIER_URL", "http://model:9000")
	t.Setenv("DEVICE_LATITUDE", "6.5244")
	t.Setenv("DEVICE_LOCATION_GRANTED", "false")
	t.Setenv("SESSION_STORE", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("DIRECTORY_NEAREST_LIMIT", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://cms.example.com/api", cfg.ContentAPI.URL)
	assert.Equal(t, 3*time.Second, cfg.ContentAPI.Timeout)
	assert.Equal(t, "http://model:9000", cfg.Classifier.URL)
	assert.Equal(t, 6.5244, cfg.Device.Latitude)
	assert.False(t, cfg.Device.LocationGranted)
	assert.Equal(t, "cache", cfg.Session.Store)
	assert.Equal(t, "localhost:6380", cfg.Redis.RedisAddr())
	assert.Equal(t, 25, cfg.Directory.NearestLimit)
}

func TestLoad_RejectsUnknownSessionStore(t *testing.T) {
	t.Setenv("SESSION_STORE", "keychain")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_BadNumbersFallBackToDefaults(t *testing.T) {
	t.Setenv("SESSION_PATH", "/tmp/s.json")
	t.Setenv("SERVER_PORT", "not-a-port")
	t.Setenv("CLASSIFIER_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8787, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Classifier.Timeout)
}

func TestLoad_EnvFileFillsUnsetVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "woundtrack.env")
	require.NoError(t, os.WriteFile(path, []byte("TYPESENSE_URL=http://search:8108\nCLASSIFIER_URL=http://ignored\n"), 0o600))

	t.Setenv("WOUNDTRACK_ENV_FILE", path)
	t.Setenv("SESSION_PATH", "/tmp/s.json")
	t.Setenv("CLASSIFIER_URL", "http://model:9000")
	require.NoError(t, os.Unsetenv("TYPESENSE_URL"))
	t.Cleanup(func() { _ = os.Unsetenv("TYPESENSE_URL") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://search:8108", cfg.Typesense.URL)
	assert.Equal(t, "http://model:9000", cfg.Classifier.URL)
}
