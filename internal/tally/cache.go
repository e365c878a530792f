package tally

import (
	"sync"
	"time"
)

// DefaultCacheTTL is how long fetched records are served from memory before
// Tally is asked again.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	records []Record
	expires time.Time
}

// ttlCache is a small in-memory cache for fetched records, keyed by entity
// and company. A TTL of zero disables caching.
type ttlCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

func newTTLCache(ttl time.Duration) *ttlCache {
	return &ttlCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *ttlCache) get(key string) ([]Record, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expires) {
		delete(c.entries, key)
		return nil, false
	}

	return entry.records, true
}

func (c *ttlCache) put(key string, records []Record) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		records: records,
		expires: time.Now().Add(c.ttl),
	}
}
