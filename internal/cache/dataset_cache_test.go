package cache

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondscreen/pkg/contracts/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(t *testing.T, ttl time.Duration, maxEntries int) (*DatasetCache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, time.April, 9, 0, 0, 0, 0, time.UTC)}
	c := newWithClock(ttl, maxEntries, time.Hour, clock.Now)
	t.Cleanup(c.Stop)
	return c, clock
}

func dataset(id string) *domain.Dataset {
	return &domain.Dataset{ID: id, Records: []domain.BondRecord{}}
}

func TestDatasetCache_Lifecycle(t *testing.T) {
	c, _ := newTestCache(t, time.Hour, 10)

	_, found := c.Get("a")
	assert.False(t, found)

	ds := dataset("a")
	c.Put("a", ds)

	got, found := c.Get("a")
	require.True(t, found)
	assert.Same(t, ds, got)

	stats := c.GetStats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(1), stats.HitCount)
	assert.Equal(t, int64(1), stats.MissCount)
	assert.Equal(t, 0.5, stats.HitRatio)
	assert.Equal(t, 3600.0, stats.TTLSeconds)

	c.Invalidate("a")
	_, found = c.Get("a")
	assert.False(t, found)
}

func TestDatasetCache_Expiry(t *testing.T) {
	c, clock := newTestCache(t, time.Minute, 10)
	c.Put("a", dataset("a"))

	clock.Advance(59 * time.Second)
	_, found := c.Get("a")
	assert.True(t, found)

	clock.Advance(2 * time.Second)
	_, found = c.Get("a")
	assert.False(t, found)

	assert.Equal(t, 1, c.Len())
	c.sweep()
	assert.Equal(t, 0, c.Len())
}

func TestDatasetCache_ZeroTTLNeverExpires(t *testing.T) {
	c, clock := newTestCache(t, 0, 10)
	c.Put("a", dataset("a"))

	clock.Advance(365 * 24 * time.Hour)
	_, found := c.Get("a")
	assert.True(t, found)
}

func TestDatasetCache_EvictsOldest(t *testing.T) {
	c, clock := newTestCache(t, time.Hour, 2)

	c.Put("a", dataset("a"))
	clock.Advance(time.Second)
	c.Put("b", dataset("b"))
	clock.Advance(time.Second)

	// replacing an existing key does not evict
	c.Put("b", dataset("b"))
	assert.Equal(t, 2, c.Len())

	c.Put("c", dataset("c"))
	assert.Equal(t, 2, c.Len())

	_, found := c.Get("a")
	assert.False(t, found)
	_, found = c.Get("c")
	assert.True(t, found)
}

func TestDatasetCache_ZeroSize(t *testing.T) {
	c, _ := newTestCache(t, time.Hour, 0)
	c.Put("a", dataset("a"))
	assert.Equal(t, 0, c.Len())

	calls := 0
	for i := 0; i < 2; i++ {
		_, hit, err := c.GetOrLoad("a", func() (*domain.Dataset, error) {
			calls++
			return dataset("a"), nil
		})
		require.NoError(t, err)
		assert.False(t, hit)
	}
	assert.Equal(t, 2, calls)
}

func TestDatasetCache_GetOrLoad(t *testing.T) {
	c, _ := newTestCache(t, time.Hour, 10)

	ds, hit, err := c.GetOrLoad("a", func() (*domain.Dataset, error) { return dataset("a"), nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "a", ds.ID)

	again, hit, err := c.GetOrLoad("a", func() (*domain.Dataset, error) {
		t.Fatal("loader must not run on a hit")
		return nil, nil
	})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Same(t, ds, again)
}

func TestDatasetCache_GetOrLoadError(t *testing.T) {
	c, _ := newTestCache(t, time.Hour, 10)
	boom := errors.New("boom")

	_, _, err := c.GetOrLoad("a", func() (*domain.Dataset, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestDatasetCache_GetOrLoadCollapsesConcurrentLoads(t *testing.T) {
	c, _ := newTestCache(t, time.Hour, 10)

	var loads int32
	release := make(chan struct{})
	loader := func() (*domain.Dataset, error) {
		atomic.AddInt32(&loads, 1)
		<-release
		return dataset("a"), nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*domain.Dataset, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ds, _, err := c.GetOrLoad("a", loader)
			assert.NoError(t, err)
			results[i] = ds
		}(i)
	}

	// give the callers time to queue behind the first load
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
	first := results[0]
	for _, ds := range results {
		require.NotNil(t, ds)
		assert.Equal(t, first.ID, ds.ID)
	}

	_, hit, err := c.GetOrLoad("a", loader)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestDatasetCache_ConcurrentAccess(t *testing.T) {
	c, _ := newTestCache(t, time.Hour, 16)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%20)
			c.Put(key, dataset(key))
			c.Get(key)
			c.GetStats()
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 16)
}

func TestDatasetCache_StopIsIdempotent(t *testing.T) {
	c := New(time.Minute, 1)
	c.Stop()
	c.Stop()
}
