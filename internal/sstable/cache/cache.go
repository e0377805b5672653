// Package cache implements the block cache and linear prefetch buffer
// (spec.md §4.7): a byte-budgeted LRU keyed by block offset, plus a small
// best-effort read-ahead window for sequential scans.
package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultByteBudget is the default cache size (spec.md §4.7).
const DefaultByteBudget = 128 * 1024 * 1024

// Block is one decoded, decompressed data-file block held in the cache.
type Block struct {
	Offset int64
	Data   []byte
}

func (b *Block) size() int64 { return int64(len(b.Data)) + 16 }

// Stats tracks cache effectiveness.
type Stats struct {
	Hits   int64
	Misses int64
}

// HitRate returns Hits/(Hits+Misses), or 0 if nothing has been requested.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is a read-write-lock-guarded, byte-budgeted LRU over decoded
// blocks. Reads take the read lock; inserts and evictions take the write
// lock, matching the concurrency model in spec.md §5.
type Cache struct {
	mu     sync.RWMutex
	budget int64
	used   int64
	lru    *lru.Cache[int64, *Block]
	stats  Stats
}

// New builds a Cache with the given byte budget. A budget <= 0 uses
// DefaultByteBudget. The underlying entry-count LRU is sized generously
// (no practical blocks-per-cache limit); actual eviction is driven by the
// byte budget by the RemoveOldest loop in Put, not entry count.
func New(byteBudget int64) *Cache {
	if byteBudget <= 0 {
		byteBudget = DefaultByteBudget
	}
	c := &Cache{budget: byteBudget}
	inner, _ := lru.NewWithEvict[int64, *Block](1<<20, func(key int64, value *Block) {
		c.used -= value.size()
	})
	c.lru = inner
	return c
}

// Get returns the cached block for offset, if present.
func (c *Cache) Get(offset int64) (*Block, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.lru.Get(offset)
	if ok {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	return b, ok
}

// Put inserts a decoded block, evicting least-recently-used entries until
// the cache is back within its byte budget.
func (c *Cache) Put(b *Block) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.lru.Peek(b.Offset); ok {
		c.used -= existing.size()
	}
	c.lru.Add(b.Offset, b)
	c.used += b.size()
	for c.used > c.budget && c.lru.Len() > 1 {
		c.lru.RemoveOldest()
	}
}

// Stats returns a snapshot of hit/miss counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Len reports the number of blocks currently cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lru.Len()
}
