package nominatim

import (
	"context"
	"sync"
	"testing"

	"github.com/couchcryptid/geocoding-service/internal/domain"
	"github.com/couchcryptid/geocoding-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingGeocoder struct {
	mu     sync.Mutex
	calls  int
	result domain.Geocode
	err    error
}

func (m *countingGeocoder) Resolve(_ context.Context, _ string) (domain.Geocode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.result, m.err
}

var berlin = domain.Geocode{Name: "Berlin", Latitude: 52.52, Longitude: 13.40}

// --- CachedGeocoder tests ---

func TestCachedGeocoder_CacheHit(t *testing.T) {
	inner := &countingGeocoder{result: berlin}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedGeocoder(inner, 10, metrics)

	r1, err := cached.Resolve(context.Background(), "Berlin")
	require.NoError(t, err)
	assert.Equal(t, berlin, r1)

	r2, err := cached.Resolve(context.Background(), "Berlin")
	require.NoError(t, err)
	assert.Equal(t, berlin, r2)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GeocodeCacheSize))
}

func TestCachedGeocoder_DifferentKeysMiss(t *testing.T) {
	inner := &countingGeocoder{result: berlin}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.Resolve(context.Background(), "Berlin")
	_, _ = cached.Resolve(context.Background(), "berlin")

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_ErrorsNotCached(t *testing.T) {
	inner := &countingGeocoder{err: &domain.NoResultError{Location: "Atlantis"}}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	for range 2 {
		_, err := cached.Resolve(context.Background(), "Atlantis")
		var noResult *domain.NoResultError
		require.ErrorAs(t, err, &noResult)
	}

	assert.Equal(t, 2, inner.calls, "errors must reach the inner geocoder every time")
}

func TestCachedGeocoder_ConcurrentAccess(t *testing.T) {
	inner := &countingGeocoder{result: berlin}
	cached := NewCachedGeocoder(inner, 4, observability.NewMetricsForTesting())

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			loc := []string{"Berlin", "Vienna", "Paris", "Rome", "Oslo"}[i%5]
			_, err := cached.Resolve(context.Background(), loc)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, cached.cache.order.Len(), 4)
	assert.Len(t, cached.cache.index, cached.cache.order.Len())
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	c.put("a", domain.Geocode{Name: "A"})
	c.put("b", domain.Geocode{Name: "B"})

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", result.Name)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.Geocode{Name: "A"})
	c.put("b", domain.Geocode{Name: "B"})
	n := c.put("c", domain.Geocode{Name: "C"}) // evicts "a"
	assert.Equal(t, 2, n)

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	result, ok := c.get("b")
	assert.True(t, ok)
	assert.Equal(t, "B", result.Name)

	result, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "C", result.Name)
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.Geocode{Name: "A"})
	c.put("b", domain.Geocode{Name: "B"})

	// Access "a" to promote it
	c.get("a")

	// Insert "c", which should evict "b" (LRU), not "a"
	c.put("c", domain.Geocode{Name: "C"})

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.Geocode{Name: "A1"})
	n := c.put("a", domain.Geocode{Name: "A2"})
	assert.Equal(t, 1, n)

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A2", result.Name)
}
