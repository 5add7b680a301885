// Package secrets loads credentials from a Vault KV store into the process
// environment before configuration is read.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/woundtrack/pkg/retry"
)

// VaultConfig describes where the secrets live
type VaultConfig struct {
	Enabled   bool
	Addr      string
	Token     string
	Namespace string
	Mount     string
	Path      string
	KVVersion int
	Timeout   time.Duration
	// Overwrite replaces variables that are already set.
	Overwrite bool
	Retry     retry.Config
}

// VaultResult reports what was applied
type VaultResult struct {
	Enabled bool
	Path    string
	Loaded  int
	Skipped int
}

// Env is the variable store secrets are written to.
type Env interface {
	Lookup(key string) (string, bool)
	Set(key, value string) error
}

type osEnv struct{}

func (osEnv) Lookup(key string) (string, bool) { return os.LookupEnv(key) }
func (osEnv) Set(key, value string) error      { return os.Setenv(key, value) }

// ProcessEnv writes to the real process environment.
var ProcessEnv Env = osEnv{}

// LoadVaultConfigFromEnv reads VAULT_* variables
func LoadVaultConfigFromEnv() VaultConfig {
	mount := os.Getenv("VAULT_MOUNT")
	if mount == "" {
		mount = "secret"
	}
	path := os.Getenv("VAULT_PATH")
	if path == "" {
		path = "woundtrack"
	}
	kvVersion := 2
	if val := os.Getenv("VAULT_KV_VERSION"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			kvVersion = parsed
		}
	}
	timeout := 5 * time.Second
	if val := os.Getenv("VAULT_TIMEOUT_MS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			timeout = time.Duration(parsed) * time.Millisecond
		}
	}

	return VaultConfig{
		Enabled:   strings.EqualFold(os.Getenv("VAULT_ENABLED"), "true"),
		Addr:      os.Getenv("VAULT_ADDR"),
		Token:     os.Getenv("VAULT_TOKEN"),
		Namespace: os.Getenv("VAULT_NAMESPACE"),
		Mount:     mount,
		Path:      path,
		KVVersion: kvVersion,
		Timeout:   timeout,
		Overwrite: strings.EqualFold(os.Getenv("VAULT_OVERWRITE"), "true"),
		Retry:     retry.ReadConfig(),
	}
}

// ApplyVaultSecrets copies every key at the configured path into env.
// A disabled config is a no-op.
func ApplyVaultSecrets(ctx context.Context, cfg VaultConfig, env Env) (VaultResult, error) {
	result := VaultResult{Enabled: cfg.Enabled, Path: cfg.Path}
	if !cfg.Enabled {
		return result, nil
	}
	if cfg.Addr == "" || cfg.Token == "" {
		return result, errors.New("vault configuration incomplete (VAULT_ADDR, VAULT_TOKEN)")
	}

	url, err := buildVaultURL(cfg.Addr, cfg.Mount, cfg.Path, cfg.KVVersion)
	if err != nil {
		return result, err
	}

	client := &http.Client{Timeout: cfg.Timeout}
	var data map[string]any
	err = retry.DoWithLog(ctx, cfg.Retry, "vault", func(ctx context.Context) error {
		var fetchErr error
		data, fetchErr = fetch(ctx, client, url, cfg)
		return fetchErr
	}, func(attempt int, err error, next time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", next).Msg("Vault fetch failed")
	})
	if err != nil {
		return result, err
	}

	for key, value := range data {
		if _, set := env.Lookup(key); set && !cfg.Overwrite {
			result.Skipped++
			continue
		}
		if err := env.Set(key, stringifyVaultValue(value)); err != nil {
			return result, fmt.Errorf("failed to set %s: %w", key, err)
		}
		result.Loaded++
	}

	log.Info().Str("path", cfg.Path).Int("loaded", result.Loaded).Int("skipped", result.Skipped).Msg("Vault secrets applied")
	return result, nil
}

func fetch(ctx context.Context, client *http.Client, url string, cfg VaultConfig) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Permanent(err)
	}
	req.Header.Set("X-Vault-Token", cfg.Token)
	if cfg.Namespace != "" {
		req.Header.Set("X-Vault-Namespace", cfg.Namespace)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("vault fetch failed: %s %s", resp.Status, strings.TrimSpace(string(body)))
		// Sealed or overloaded servers answer 5xx; anything else will not change.
		if resp.StatusCode < 500 {
			return nil, retry.Permanent(err)
		}
		return nil, err
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, retry.Permanent(fmt.Errorf("invalid vault response: %w", err))
	}
	data, err := extractVaultData(payload, cfg.KVVersion)
	if err != nil {
		return nil, retry.Permanent(err)
	}
	return data, nil
}

func buildVaultURL(addr, mount, path string, kvVersion int) (string, error) {
	addr = strings.TrimRight(addr, "/")
	mount = strings.Trim(mount, "/")
	path = strings.TrimLeft(path, "/")
	if addr == "" || mount == "" || path == "" {
		return "", errors.New("vault address, mount, and path must be set")
	}
	if kvVersion == 1 {
		return fmt.Sprintf("%s/v1/%s/%s", addr, mount, path), nil
	}
	return fmt.Sprintf("%s/v1/%s/data/%s", addr, mount, path), nil
}

func extractVaultData(payload map[string]any, kvVersion int) (map[string]any, error) {
	data, ok := payload["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("vault response missing data for KV v%d", kvVersion)
	}
	if kvVersion == 1 {
		return data, nil
	}
	inner, ok := data["data"].(map[string]any)
	if !ok {
		return nil, errors.New("vault response missing data for KV v2")
	}
	return inner, nil
}

func stringifyVaultValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}
