// Package cache memoizes expensive loads (the parsed GDP table) for a bounded
// time. Concurrent misses for the same key share a single load.
package cache

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"
)

// ============================================================================
// METRICS
// ============================================================================

// Metrics counts cache outcomes. A nil *Metrics records nothing.
type Metrics struct {
	hits   prometheus.Counter
	misses prometheus.Counter
	loads  prometheus.Counter
	errors prometheus.Counter
}

// NewMetrics registers the cache counters with reg under the given subsystem.
func NewMetrics(reg prometheus.Registerer, subsystem string) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		hits: f.NewCounter(prometheus.CounterOpts{
			Namespace: "gdpboard",
			Subsystem: subsystem,
			Name:      "cache_hits_total",
			Help:      "Lookups served from a live cache entry.",
		}),
		misses: f.NewCounter(prometheus.CounterOpts{
			Namespace: "gdpboard",
			Subsystem: subsystem,
			Name:      "cache_misses_total",
			Help:      "Lookups that found no live entry.",
		}),
		loads: f.NewCounter(prometheus.CounterOpts{
			Namespace: "gdpboard",
			Subsystem: subsystem,
			Name:      "cache_loads_total",
			Help:      "Load functions executed.",
		}),
		errors: f.NewCounter(prometheus.CounterOpts{
			Namespace: "gdpboard",
			Subsystem: subsystem,
			Name:      "cache_load_errors_total",
			Help:      "Load functions that returned an error.",
		}),
	}
}

func (m *Metrics) inc(c func(*Metrics) prometheus.Counter) {
	if m != nil {
		c(m).Inc()
	}
}

// ============================================================================
// CACHE
// ============================================================================

type entry[V any] struct {
	value   V
	expires time.Time
}

// Cache is a keyed TTL cache safe for concurrent use.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	group   singleflight.Group
	now     func() time.Time
	metrics *Metrics
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	now     func() time.Time
	metrics *Metrics
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithMetrics records hits, misses and loads.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// New creates an empty cache.
func New[V any](opts ...Option) *Cache[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		now:     o.now,
		metrics: o.metrics,
	}
}

// Get returns the live value for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !c.now().Before(e.expires) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for ttl. A non-positive ttl stores nothing.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expires: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Invalidate drops key.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetOrLoad returns the live value for key, or runs load and caches its
// result for ttl. Concurrent callers missing the same key wait for one load.
// Errors are returned to every waiter and never cached.
func (c *Cache[V]) GetOrLoad(key string, ttl time.Duration, load func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		c.metrics.inc(func(m *Metrics) prometheus.Counter { return m.hits })
		return v, nil
	}
	c.metrics.inc(func(m *Metrics) prometheus.Counter { return m.misses })

	res, err, _ := c.group.Do(key, func() (interface{}, error) {
		// another caller may have filled the entry while we queued
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		c.metrics.inc(func(m *Metrics) prometheus.Counter { return m.loads })
		v, err := load()
		if err != nil {
			c.metrics.inc(func(m *Metrics) prometheus.Counter { return m.errors })
			return nil, err
		}
		c.Set(key, v, ttl)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	v, _ := res.(V)
	return v, nil
}
