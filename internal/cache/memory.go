package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/career-guidance/internal/metrics"
	"github.com/jonathan/career-guidance/internal/types"
)

const (
	BackendMemory = "memory"

	defaultCleanupInterval = 5 * time.Minute
)

type entry struct {
	rec       *types.Recommendation
	expiresAt time.Time
}

// Stats tracks cache performance
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// MemoryCache is a thread-safe TTL map. A background goroutine removes
// expired entries until Close is called.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]entry
	ttl     time.Duration
	now     func() time.Time

	statsMu sync.Mutex
	stats   Stats

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryCache creates a MemoryCache and starts its cleanup loop
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	c := newMemoryCache(ttl, time.Now)
	go c.cleanupLoop(defaultCleanupInterval)
	return c
}

func newMemoryCache(ttl time.Duration, now func() time.Time) *MemoryCache {
	return &MemoryCache{
		entries: make(map[uuid.UUID]entry),
		ttl:     ttl,
		now:     now,
		stats:   Stats{LastCleanup: now()},
		stop:    make(chan struct{}),
	}
}

func (c *MemoryCache) Backend() string { return BackendMemory }

// Get returns the cached recommendation, which callers must not modify.
// Expired entries are removed and reported as misses.
func (c *MemoryCache) Get(_ context.Context, userID uuid.UUID) (*types.Recommendation, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[userID]
	c.mu.RUnlock()

	if !ok {
		c.record(false, false)
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		// re-check: a concurrent Set may have refreshed it
		if cur, still := c.entries[userID]; still && !c.now().Before(cur.expiresAt) {
			delete(c.entries, userID)
		}
		c.mu.Unlock()
		c.record(false, true)
		return nil, false, nil
	}

	c.record(true, false)
	return e.rec, true, nil
}

func (c *MemoryCache) Set(_ context.Context, userID uuid.UUID, rec *types.Recommendation) error {
	c.mu.Lock()
	c.entries[userID] = entry{rec: rec, expiresAt: c.now().Add(c.ttl)}
	n := len(c.entries)
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.TotalKeys = int64(n)
	c.statsMu.Unlock()
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	delete(c.entries, userID)
	n := len(c.entries)
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.TotalKeys = int64(n)
	c.statsMu.Unlock()
	return nil
}

func (c *MemoryCache) record(hit, evicted bool) {
	c.statsMu.Lock()
	if hit {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	if evicted {
		c.stats.Evictions++
	}
	c.statsMu.Unlock()
	metrics.RecordCacheLookup(BackendMemory, hit)
}

// Stats returns a snapshot of the counters
func (c *MemoryCache) Stats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

// Cleanup removes every expired entry and returns how many it removed
func (c *MemoryCache) Cleanup() int {
	now := c.now()

	c.mu.Lock()
	removed := 0
	for id, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, id)
			removed++
		}
	}
	n := len(c.entries)
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.Evictions += int64(removed)
	c.stats.TotalKeys = int64(n)
	c.stats.LastCleanup = now
	c.statsMu.Unlock()
	return removed
}

func (c *MemoryCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.Cleanup()
		case <-c.stop:
			return
		}
	}
}

// Close stops the cleanup loop. Safe to call more than once.
func (c *MemoryCache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}
