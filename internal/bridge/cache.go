package bridge

import (
	"sync"
	"time"
)

// statsCache is the process-wide bridge-stats TTL cache: a plain
// mutex-guarded map keyed by (source, localId) rather than sync.Map,
// since entries are read and written as whole structs, not via atomic
// CAS loops.
type statsCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	stats   Stats
	expires time.Time
}

func newStatsCache(ttl time.Duration) *statsCache {
	return &statsCache{entries: make(map[string]cacheEntry), ttl: ttl}
}

func (c *statsCache) get(key string) (Stats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expires) {
		return Stats{}, false
	}
	return e.stats, true
}

func (c *statsCache) set(key string, stats Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{stats: stats, expires: time.Now().Add(c.ttl)}
}

func (c *statsCache) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
