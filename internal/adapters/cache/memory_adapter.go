package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/zatekoja/woundtrack/internal/domain/providers"
)

const (
	defaultMemoryEntries = 1024
	defaultMemoryTTL     = 24 * time.Hour
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryAdapter implements CacheProvider in process. It backs the geocoding
// cache and history snapshots when Redis is not configured.
type MemoryAdapter struct {
	mu    sync.Mutex
	lru   *expirable.LRU[string, memoryEntry]
	clock func() time.Time
}

// NewMemoryAdapter creates an in-memory cache holding at most size entries.
// Entries never outlive defaultMemoryTTL regardless of the requested expiry.
func NewMemoryAdapter(size int) *MemoryAdapter {
	if size <= 0 {
		size = defaultMemoryEntries
	}
	return &MemoryAdapter{
		lru:   expirable.NewLRU[string, memoryEntry](size, nil, defaultMemoryTTL),
		clock: time.Now,
	}
}

var _ providers.CacheProvider = (*MemoryAdapter)(nil)

// Get retrieves a value from cache
func (m *MemoryAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.lru.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", providers.ErrCacheMiss, key)
	}
	if !entry.expiresAt.IsZero() && !m.clock().Before(entry.expiresAt) {
		m.lru.Remove(key)
		return nil, fmt.Errorf("%w: %s", providers.ErrCacheMiss, key)
	}
	return append([]byte(nil), entry.value...), nil
}

// Set stores a value in cache with expiration
func (m *MemoryAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memoryEntry{value: append([]byte(nil), value...)}
	if expirationSeconds > 0 {
		entry.expiresAt = m.clock().Add(time.Duration(expirationSeconds) * time.Second)
	}
	m.lru.Add(key, entry)
	return nil
}

// Delete removes a value from cache
func (m *MemoryAdapter) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lru.Remove(key)
	return nil
}

// Exists checks if a key exists in cache
func (m *MemoryAdapter) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.Get(ctx, key)
	return err == nil, nil
}
