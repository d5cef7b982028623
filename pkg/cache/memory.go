package cache

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bastiangx/tripserve/pkg/model"
	"github.com/charmbracelet/log"
)

type memEntry struct {
	resp   model.Response
	stored time.Time
	seq    int64
}

// MemoryCache is an in-process TTL cache. Expired entries are dropped
// lazily on read, by Sweep, or to make room when maxEntries is reached.
type MemoryCache struct {
	entries    map[string]memEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	seq        int64
	hits       atomic.Int64
	misses     atomic.Int64
	mu         sync.RWMutex
}

var _ Cache = (*MemoryCache)(nil)

// Option configures a MemoryCache.
type Option func(*MemoryCache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *MemoryCache) { c.now = now }
}

// WithMaxEntries bounds the cache; 0 means unbounded.
func WithMaxEntries(n int) Option {
	return func(c *MemoryCache) { c.maxEntries = n }
}

// NewMemory returns an empty cache. A ttl <= 0 means DefaultTTL.
func NewMemory(ttl time.Duration, opts ...Option) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &MemoryCache{
		entries: make(map[string]memEntry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the entry for key if it is younger than the TTL.
func (c *MemoryCache) Get(_ context.Context, key string) (model.Response, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && c.now().Sub(e.stored) >= c.ttl {
		c.mu.Lock()
		// only drop it if nobody replaced it meanwhile
		if cur, still := c.entries[key]; still && cur.seq == e.seq {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		ok = false
	}
	if !ok {
		c.misses.Add(1)
		return model.Response{}, false
	}
	c.hits.Add(1)
	return clone(e.resp), true
}

// Put stores a copy of r, replacing any earlier entry for key.
func (c *MemoryCache) Put(_ context.Context, key string, r model.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	c.seq++
	c.entries[key] = memEntry{resp: clone(r), stored: c.now(), seq: c.seq}
}

// Clear drops every entry.
func (c *MemoryCache) Clear(_ context.Context) {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string]memEntry)
	c.mu.Unlock()
	log.Debugf("Cleared %d cached responses", n)
}

// Len counts stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats implements Cache.
func (c *MemoryCache) Stats() Stats {
	return Stats{
		Backend: "memory",
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.Len(),
	}
}

// Sweep removes expired entries and returns how many were removed.
func (c *MemoryCache) Sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if now.Sub(e.stored) >= c.ttl {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval until ctx is done.
func (c *MemoryCache) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = c.ttl
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := c.Sweep(); n > 0 {
					log.Debugf("Swept %d expired responses", n)
				}
			}
		}
	}()
}

// evictOldest drops the entry stored first. Caller holds mu.
func (c *MemoryCache) evictOldest() {
	var oldestKey string
	var oldestSeq int64 = math.MaxInt64

	for k, e := range c.entries {
		if e.seq < oldestSeq {
			oldestSeq = e.seq
			oldestKey = k
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		log.Debugf("Evicted '%s' from response cache", oldestKey)
	}
}
