// Package resultcache keeps generated summaries so identical requests skip the model.
package resultcache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/textcraft/internal/domain/textcraft"
	"github.com/yanqian/textcraft/pkg/util"
)

const defaultMaxEntries = 1024

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is a bounded in-process cache. When full, expired entries are
// dropped first and then an arbitrary entry is evicted.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	ttl        time.Duration
	maxEntries int
}

// NewMemoryCache constructs the cache. ttl <= 0 keeps entries until evicted.
func NewMemoryCache(ttl time.Duration, maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &MemoryCache{
		entries:    make(map[string]memoryEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return "", false, nil
	}
	if c.expired(entry, util.NowUTC()) {
		delete(c.entries, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := util.NowUTC()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evict(now)
	}
	entry := memoryEntry{value: value}
	if c.ttl > 0 {
		entry.expiresAt = now.Add(c.ttl)
	}
	c.entries[key] = entry
	return nil
}

func (c *MemoryCache) evict(now time.Time) {
	for key, entry := range c.entries {
		if c.expired(entry, now) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) < c.maxEntries {
		return
	}
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func (c *MemoryCache) expired(entry memoryEntry, now time.Time) bool {
	return !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt)
}

var _ textcraft.ResultCache = (*MemoryCache)(nil)
