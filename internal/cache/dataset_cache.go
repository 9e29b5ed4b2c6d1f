package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"bondscreen/pkg/contracts/domain"
)

// DefaultCleanupInterval is how often expired datasets are swept.
const DefaultCleanupInterval = 5 * time.Minute

// Loader builds a dataset on a cache miss.
type Loader func() (*domain.Dataset, error)

type entry struct {
	dataset   *domain.Dataset
	cachedAt  time.Time
	expiresAt time.Time
	hitCount  int
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries    int     `json:"entries"`
	MaxEntries int     `json:"max_entries"`
	HitCount   int64   `json:"hit_count"`
	MissCount  int64   `json:"miss_count"`
	HitRatio   float64 `json:"hit_ratio"`
	TTLSeconds float64 `json:"ttl_seconds"`
}

// DatasetCache memoizes prepared datasets by content fingerprint.
// Datasets are immutable, so cached pointers are shared between callers.
type DatasetCache struct {
	entries    map[string]entry
	mutex      sync.RWMutex
	ttl        time.Duration
	maxEntries int
	hitCount   int64
	missCount  int64
	group      singleflight.Group
	now        func() time.Time
	stopChan   chan struct{}
	stopOnce   sync.Once
}

// New creates a cache and starts its cleanup goroutine. A zero ttl keeps
// entries until they are evicted for space; maxEntries <= 0 disables storage.
func New(ttl time.Duration, maxEntries int) *DatasetCache {
	return newWithClock(ttl, maxEntries, DefaultCleanupInterval, time.Now)
}

func newWithClock(ttl time.Duration, maxEntries int, interval time.Duration, now func() time.Time) *DatasetCache {
	c := &DatasetCache{
		entries:    make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        now,
		stopChan:   make(chan struct{}),
	}

	go c.cleanup(interval)

	return c
}

// Get returns the dataset stored under key.
func (c *DatasetCache) Get(key string) (*domain.Dataset, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	e, exists := c.entries[key]
	if !exists || c.expired(e) {
		c.missCount++
		return nil, false
	}

	e.hitCount++
	c.entries[key] = e
	c.hitCount++

	return e.dataset, true
}

// Put stores ds under key, evicting the oldest entry when full.
func (c *DatasetCache) Put(key string, ds *domain.Dataset) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.maxEntries <= 0 || ds == nil {
		return
	}

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}

	now := c.now()
	e := entry{dataset: ds, cachedAt: now}
	if c.ttl > 0 {
		e.expiresAt = now.Add(c.ttl)
	}
	c.entries[key] = e
}

// GetOrLoad returns the cached dataset for key or runs load once, however
// many callers ask for the same key concurrently. Failed loads are not cached.
// hit reports whether the dataset came from the cache.
func (c *DatasetCache) GetOrLoad(key string, load Loader) (ds *domain.Dataset, hit bool, err error) {
	if ds, ok := c.Get(key); ok {
		return ds, true, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// a concurrent caller may have stored it while we waited
		c.mutex.RLock()
		e, exists := c.entries[key]
		c.mutex.RUnlock()
		if exists && !c.expired(e) {
			return e.dataset, nil
		}

		ds, err := load()
		if err != nil {
			return nil, err
		}
		c.Put(key, ds)
		return ds, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*domain.Dataset), false, nil
}

// Invalidate removes key from the cache.
func (c *DatasetCache) Invalidate(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.entries, key)
}

// Len returns the number of stored entries, expired ones included.
func (c *DatasetCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}

// GetStats returns cache statistics
func (c *DatasetCache) GetStats() Stats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	totalRequests := c.hitCount + c.missCount
	hitRatio := float64(0)
	if totalRequests > 0 {
		hitRatio = float64(c.hitCount) / float64(totalRequests)
	}

	return Stats{
		Entries:    len(c.entries),
		MaxEntries: c.maxEntries,
		HitCount:   c.hitCount,
		MissCount:  c.missCount,
		HitRatio:   hitRatio,
		TTLSeconds: c.ttl.Seconds(),
	}
}

// Stop gracefully stops the cache cleanup goroutine
func (c *DatasetCache) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

func (c *DatasetCache) expired(e entry) bool {
	return !e.expiresAt.IsZero() && c.now().After(e.expiresAt)
}

func (c *DatasetCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, e := range c.entries {
		if oldestKey == "" || e.cachedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = e.cachedAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// sweep drops expired entries.
func (c *DatasetCache) sweep() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for key, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, key)
		}
	}
}

func (c *DatasetCache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stopChan:
			return
		}
	}
}
