package nominatim

import (
	"container/list"
	"context"
	"sync"

	"github.com/couchcryptid/geocoding-service/internal/domain"
	"github.com/couchcryptid/geocoding-service/internal/observability"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache keyed by the
// exact location text. Only successful lookups are stored.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

// Resolve serves location from the cache or delegates to the wrapped geocoder.
func (c *CachedGeocoder) Resolve(ctx context.Context, location string) (domain.Geocode, error) {
	if result, ok := c.cache.get(location); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return result, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	result, err := c.inner.Resolve(ctx, location)
	if err != nil {
		// Errors, including "no result", are never cached so they can be retried.
		return result, err
	}
	c.metrics.GeocodeCacheSize.Set(float64(c.cache.put(location, result)))
	return result, nil
}

// lruCache is a mutex-guarded LRU of resolved locations. The front of order
// holds the most recently used entry.
type lruCache struct {
	mu         sync.Mutex
	maxEntries int
	order      *list.List
	index      map[string]*list.Element
}

type cacheEntry struct {
	location string
	geocode  domain.Geocode
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		order:      list.New(),
		index:      make(map[string]*list.Element),
	}
}

func (c *lruCache) get(location string) (domain.Geocode, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[location]
	if !ok {
		return domain.Geocode{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).geocode, true
}

// put stores geocode under location, evicting the least recently used entry
// when full, and returns the resulting entry count.
func (c *lruCache) put(location string, geocode domain.Geocode) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[location]; ok {
		el.Value.(*cacheEntry).geocode = geocode
		c.order.MoveToFront(el)
		return c.order.Len()
	}

	c.index[location] = c.order.PushFront(&cacheEntry{location: location, geocode: geocode})
	if c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.index, oldest.Value.(*cacheEntry).location)
	}
	return c.order.Len()
}
