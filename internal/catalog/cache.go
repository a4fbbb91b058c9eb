package catalog

import (
	"context"
	"sync"
	"time"
)

// Cache stores decrypted catalog payloads by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

type memoryEntry struct {
	value      []byte
	cachedAt   time.Time
	lastAccess time.Time
	ttl        time.Duration
}

// MemoryCache is an in-process Cache with per-entry TTL and LRU eviction.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
	now        func() time.Time
}

// NewMemoryCache creates a MemoryCache holding at most maxEntries entries.
// maxEntries <= 0 means unbounded.
func NewMemoryCache(maxEntries int) *MemoryCache {
	return &MemoryCache{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the value for key if present and not expired.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	now := c.now()
	if e.expired(now) {
		delete(c.entries, key)
		return nil, false
	}
	e.lastAccess = now
	c.entries[key] = e
	return e.value, true
}

// Set stores value under key. ttl <= 0 means no expiry.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictExpiredLocked(now)
	c.entries[key] = memoryEntry{
		value:      append([]byte(nil), value...),
		cachedAt:   now,
		lastAccess: now,
		ttl:        ttl,
	}
	c.evictLRULocked()
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (e memoryEntry) expired(now time.Time) bool {
	return e.ttl > 0 && now.Sub(e.cachedAt) > e.ttl
}

func (c *MemoryCache) evictExpiredLocked(now time.Time) {
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
		}
	}
}

func (c *MemoryCache) evictLRULocked() {
	if c.maxEntries <= 0 {
		return
	}
	for len(c.entries) > c.maxEntries {
		var oldestKey string
		var oldest time.Time
		first := true
		for key, e := range c.entries {
			if first || e.lastAccess.Before(oldest) {
				first = false
				oldestKey = key
				oldest = e.lastAccess
			}
		}
		delete(c.entries, oldestKey)
	}
}
