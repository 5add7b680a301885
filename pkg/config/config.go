package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Server      ServerConfig
	ContentAPI  ContentAPIConfig
	Classifier  ClassifierConfig
	Geolocation GeolocationConfig
	Device      DeviceConfig
	Session     SessionConfig
	Redis       RedisConfig
	Typesense   TypesenseConfig
	Directory   DirectoryConfig
	OTEL        OTELConfig
}

// AppConfig holds process-wide settings
type AppConfig struct {
	Name string
	Env  string
}

// ServerConfig holds the loopback app API configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// ContentAPIConfig holds the content backend configuration
type ContentAPIConfig struct {
	URL     string
	Timeout time.Duration
	// ExtendedFields persists urgency level, hospital flag and probabilities
	// alongside the base prediction schema.
	ExtendedFields bool
}

// ClassifierConfig holds the classification service configuration
type ClassifierConfig struct {
	URL     string
	Timeout time.Duration
}

// GeolocationConfig holds geolocation provider configuration
type GeolocationConfig struct {
	Provider string
	APIKey   string
}

// DeviceConfig describes the position source used when no device is attached
type DeviceConfig struct {
	Latitude        float64
	Longitude       float64
	LocationGranted bool
}

// SessionConfig holds local session storage configuration
type SessionConfig struct {
	Store string
	Path  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL    string
	APIKey string
}

// DirectoryConfig holds hospital directory configuration
type DirectoryConfig struct {
	HospitalsFile      string
	DefaultRadiusMiles float64
	NearestLimit       int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables. Variables in the
// env file (WOUNDTRACK_ENV_FILE, default .env) fill in whatever is unset.
func Load() (*Config, error) {
	if err := loadEnvFile(getEnv("WOUNDTRACK_ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "woundtrack"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "127.0.0.1"),
			Port:           getEnvAsInt("SERVER_PORT", 8787),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		ContentAPI: ContentAPIConfig{
			URL:            getEnv("CONTENT_API_URL", "http://localhost:1337/api"),
			Timeout:        getEnvAsDuration("CONTENT_API_TIMEOUT", 10*time.Second),
			ExtendedFields: getEnvAsBool("CONTENT_API_EXTENDED_FIELDS", false),
		},
		Classifier: ClassifierConfig{
			URL:     getEnv("CLASSIFIER_URL", "http://localhost:8000"),
			Timeout: getEnvAsDuration("CLASSIFIER_TIMEOUT", 30*time.Second),
		},
		Geolocation: GeolocationConfig{
			Provider: getEnv("GEOLOCATION_PROVIDER", "mock"),
			APIKey:   getEnv("GEOLOCATION_API_KEY", ""),
		},
		Device: DeviceConfig{
			Latitude:        getEnvAsFloat("DEVICE_LATITUDE", 37.7749),
			Longitude:       getEnvAsFloat("DEVICE_LONGITUDE", -122.4194),
			LocationGranted: getEnvAsBool("DEVICE_LOCATION_GRANTED", true),
		},
		Session: SessionConfig{
			Store: getEnv("SESSION_STORE", "file"),
			Path:  getEnv("SESSION_PATH", defaultSessionPath()),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:    getEnv("TYPESENSE_URL", ""),
			APIKey: getEnv("TYPESENSE_API_KEY", ""),
		},
		Directory: DirectoryConfig{
			HospitalsFile:      getEnv("HOSPITALS_FILE", ""),
			DefaultRadiusMiles: getEnvAsFloat("DIRECTORY_DEFAULT_RADIUS_MILES", 50),
			NearestLimit:       getEnvAsInt("DIRECTORY_NEAREST_LIMIT", 10),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "woundtrack"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Session.Store {
	case "file", "cache":
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q (want file or cache)", c.Session.Store)
	}
	if c.Session.Store == "file" && c.Session.Path == "" {
		return fmt.Errorf("SESSION_PATH is required for the file session store")
	}
	if c.Directory.DefaultRadiusMiles <= 0 {
		return fmt.Errorf("DIRECTORY_DEFAULT_RADIUS_MILES must be positive")
	}
	if c.Directory.NearestLimit <= 0 {
		return fmt.Errorf("DIRECTORY_NEAREST_LIMIT must be positive")
	}
	return nil
}

// ServerAddr returns the listen address of the app API
func (c *ServerConfig) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".woundtrack-session.json"
	}
	return dir + string(os.PathSeparator) + "woundtrack" + string(os.PathSeparator) + "session.json"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
