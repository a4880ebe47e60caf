package weathercache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/yanqian/weather-dashboard/internal/domain/weather"
)

const defaultMaxEntries = 1024

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryCache is a bounded in-process weather cache. Least recently used keys are
// evicted once maxEntries is reached and expired keys are swept in the background.
type MemoryCache struct {
	entries *expirable.LRU[string, entry]
	now     func() time.Time
}

// NewMemoryCache constructs a cache holding at most maxEntries payloads. ttl is the
// longest any entry may live; zero leaves lifetime to the per-call TTL.
func NewMemoryCache(maxEntries int, ttl time.Duration) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &MemoryCache{
		entries: expirable.NewLRU[string, entry](maxEntries, nil, ttl),
		now:     time.Now,
	}
}

// Get implements weather.Cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := c.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	if c.expired(e.expiresAt) {
		c.entries.Remove(key)
		return nil, false, nil
	}
	out := make([]byte, len(e.payload))
	copy(out, e.payload)
	return out, true, nil
}

// Set stores the payload with an optional TTL.
func (c *MemoryCache) Set(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	stored := make([]byte, len(payload))
	copy(stored, payload)
	exp := time.Time{}
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.entries.Add(key, entry{payload: stored, expiresAt: exp})
	return nil
}

// Len reports how many entries are held, including ones not yet swept.
func (c *MemoryCache) Len() int {
	return c.entries.Len()
}

func (c *MemoryCache) expired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(c.now())
}

var _ weather.Cache = (*MemoryCache)(nil)
