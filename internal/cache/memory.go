package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/intellinews/newsrec/internal/models"
)

// MemoryCache is an in-process ResultCache with per-entry TTL. It is the
// default when Redis is disabled, and is used in tests.
type MemoryCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]memoryEntry
	// now is replaceable in tests.
	now func() time.Time
}

type memoryEntry struct {
	items     []models.RecommendedItem
	expiresAt time.Time
}

// NewMemoryCache creates an in-memory result cache with the given TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the cached ranking for key if present and not expired.
func (c *MemoryCache) Get(_ context.Context, key string) ([]models.RecommendedItem, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.items, true
}

// Set stores the ranking under key with the configured TTL.
func (c *MemoryCache) Set(_ context.Context, key string, items []models.RecommendedItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{items: items, expiresAt: c.now().Add(c.ttl)}
}

// InvalidateAll removes every cached ranking.
func (c *MemoryCache) InvalidateAll(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, keyPrefix) {
			delete(c.entries, key)
		}
	}
}

// Len returns the number of live entries (expired entries may be counted
// until their next Get).
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
