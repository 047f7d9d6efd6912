package weather

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/couchcryptid/climbr-etl/internal/domain"
	"github.com/couchcryptid/climbr-etl/internal/observability"
)

// CachedProvider wraps a WeatherProvider with an in-memory LRU cache keyed by
// coordinates and date. Sessions at the same crag on the same day share one
// lookup.
type CachedProvider struct {
	inner   domain.WeatherProvider
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a provider.
func NewCachedProvider(inner domain.WeatherProvider, maxEntries int, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedProvider) DailyWeather(ctx context.Context, lat, lon float64, day time.Time) (domain.Weather, error) {
	key := fmt.Sprintf("%.4f,%.4f|%s", lat, lon, day.Format(domain.DateLayout))
	if w, ok := c.cache.get(key); ok {
		c.metrics.WeatherCache.WithLabelValues("hit").Inc()
		return w, nil
	}
	c.metrics.WeatherCache.WithLabelValues("miss").Inc()

	w, err := c.inner.DailyWeather(ctx, lat, lon, day)
	if err != nil {
		// Failures are not cached so the next session at the spot retries.
		return w, err
	}
	c.cache.put(key, w)
	return w, nil
}

// lruCache is a thread-safe LRU cache of daily weather.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	order      *list.List // front is most recently used
	entries    map[string]*list.Element
}

type entry struct {
	key   string
	value domain.Weather
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

func (c *lruCache) get(key string) (domain.Weather, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return domain.Weather{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).value, true
}

func (c *lruCache) put(key string, value domain.Weather) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*entry).value = value
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&entry{key: key, value: value})
	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
