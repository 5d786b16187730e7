package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/smallnest/collabwalk/log"
)

// Cache stores encoded catalog responses.
type Cache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key. A zero ttl keeps it until evicted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// MemoryCache is an in-process Cache with per entry expiry.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements Cache.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set implements Cache.
func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// CachedClient memoizes successful catalog responses.
// Cache failures are logged and the request falls through to the wrapped client.
type CachedClient struct {
	client Client
	cache  Cache
	ttl    time.Duration
	logger log.Logger
}

var _ Client = (*CachedClient)(nil)

// NewCachedClient wraps client with cache.
func NewCachedClient(client Client, cache Cache, ttl time.Duration) *CachedClient {
	return &CachedClient{
		client: client,
		cache:  cache,
		ttl:    ttl,
		logger: log.GetDefaultLogger(),
	}
}

// SetLogger sets the logger used to report cache failures.
func (c *CachedClient) SetLogger(logger log.Logger) {
	c.logger = logger
}

// SearchArtist implements Client.
func (c *CachedClient) SearchArtist(ctx context.Context, name string) (Artist, error) {
	key := "search:" + strings.ToLower(strings.TrimSpace(name))
	return cached(ctx, c, key, func() (Artist, error) {
		return c.client.SearchArtist(ctx, name)
	})
}

// ListReleases implements Client.
func (c *CachedClient) ListReleases(ctx context.Context, artistID string, query ReleaseQuery) ([]Release, error) {
	key := fmt.Sprintf("releases:%s:%s:%d:%s", artistID, query.Type, query.Limit, query.Market)
	return cached(ctx, c, key, func() ([]Release, error) {
		return c.client.ListReleases(ctx, artistID, query)
	})
}

func cached[T any](ctx context.Context, c *CachedClient, key string, fetch func() (T, error)) (T, error) {
	var value T

	data, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn("catalog cache get %s: %v", key, err)
	case ok:
		if err := json.Unmarshal(data, &value); err == nil {
			return value, nil
		}
		c.logger.Warn("catalog cache entry %s is corrupt, refetching", key)
	}

	value, err = fetch()
	if err != nil {
		return value, err
	}

	data, err = json.Marshal(value)
	if err == nil {
		err = c.cache.Set(ctx, key, data, c.ttl)
	}
	if err != nil {
		c.logger.Warn("catalog cache set %s: %v", key, err)
	}
	return value, nil
}
