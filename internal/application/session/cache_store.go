package session

import (
	"context"
	"errors"

	"github.com/zatekoja/woundtrack/internal/domain/providers"
	"github.com/zatekoja/woundtrack/internal/domain/repositories"
)

const cacheNamespace = "session:"

// CacheStore keeps the session keys in a CacheProvider without expiry
type CacheStore struct {
	cache providers.CacheProvider
}

// NewCacheStore creates a session store over cache
func NewCacheStore(cache providers.CacheProvider) *CacheStore {
	return &CacheStore{cache: cache}
}

var _ repositories.SessionStore = (*CacheStore)(nil)

// Get returns the value for key
func (c *CacheStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.cache.Get(ctx, cacheNamespace+key)
	if errors.Is(err, providers.ErrCacheMiss) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(value), true, nil
}

// Set stores a value
func (c *CacheStore) Set(ctx context.Context, key, value string) error {
	return c.cache.Set(ctx, cacheNamespace+key, []byte(value), 0)
}

// Delete removes keys
func (c *CacheStore) Delete(ctx context.Context, keys ...string) error {
	var errs []error
	for _, k := range keys {
		if err := c.cache.Delete(ctx, cacheNamespace+k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
