// Package cache provides a small thread-safe TTL cache. The bot uses it
// for category lists and per-letter ingredient lists, which change rarely
// but back every keyboard render.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	data      any
	expiresAt time.Time
}

// Cache is a thread-safe in-memory cache with per-cache TTL.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
}

// New creates a cache whose entries expire after ttl.
func New(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
	}
}

// Get returns the cached value for key, or false if missing or expired.
// Expired entries are removed on access; there is no background sweeper,
// the key space here is tiny (one entry per keyboard kind).
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		// Recheck under the write lock; a concurrent Set may have renewed it.
		if cur, ok := c.entries[key]; ok && time.Now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.data, true
}

// Set stores a value under key with the cache TTL.
func (c *Cache) Set(key string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{data: data, expiresAt: time.Now().Add(c.ttl)}
}

// Delete removes one key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the number of stored entries, including not-yet-evicted
// expired ones.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
