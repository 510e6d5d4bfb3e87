package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles every counter/histogram the running store exposes. A
// single instance is constructed at process start and threaded into the
// repository, cache, and lock guard so instrumentation stays in one place
// rather than scattered promauto.New calls at each call site.
type Metrics struct {
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	CacheEvictions prometheus.Counter

	LockContention prometheus.Counter
	LockReclaims   prometheus.Counter

	OpLatency *prometheus.HistogramVec
}

// NewMetrics registers every ticketstore metric against reg. Pass
// prometheus.NewRegistry() in tests to avoid collisions with the global
// default registry across parallel test packages.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "ticketstore_cache_hits_total",
			Help: "Cache lookups served from the in-process TTL cache.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "ticketstore_cache_misses_total",
			Help: "Cache lookups that fell through to disk.",
		}),
		CacheEvictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "ticketstore_cache_evictions_total",
			Help: "Entries evicted to stay within the cache's max-entries bound.",
		}),
		LockContention: factory.NewCounter(prometheus.CounterOpts{
			Name: "ticketstore_lock_contention_total",
			Help: "Contended lock attempts, counted once per wait on an existing, non-stale holder.",
		}),
		LockReclaims: factory.NewCounter(prometheus.CounterOpts{
			Name: "ticketstore_lock_reclaims_total",
			Help: "Lock acquisitions that reclaimed a stale holder's lock file.",
		}),
		OpLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ticketstore_operation_duration_seconds",
			Help:    "Repository operation latency by operation name.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

// ObserveLatency records how long op took, for metrics.OpLatency.
func (m *Metrics) ObserveLatency(op string, since time.Time) {
	if m == nil {
		return
	}
	m.OpLatency.WithLabelValues(op).Observe(time.Since(since).Seconds())
}

// cacheMetricsAdapter satisfies internal/cache.Metrics without internal/cache
// importing prometheus directly.
type cacheMetricsAdapter struct{ m *Metrics }

func (a cacheMetricsAdapter) Hit()      { a.m.CacheHits.Inc() }
func (a cacheMetricsAdapter) Miss()     { a.m.CacheMisses.Inc() }
func (a cacheMetricsAdapter) Eviction() { a.m.CacheEvictions.Inc() }

// CacheMetrics adapts m to internal/cache.Metrics.
func (m *Metrics) CacheMetrics() cacheMetricsAdapter {
	return cacheMetricsAdapter{m: m}
}

// lockMetricsAdapter satisfies internal/lockguard.Metrics without
// internal/lockguard importing prometheus directly.
type lockMetricsAdapter struct{ m *Metrics }

func (a lockMetricsAdapter) Contention() { a.m.LockContention.Inc() }
func (a lockMetricsAdapter) Reclaim()    { a.m.LockReclaims.Inc() }

// LockMetrics adapts m to internal/lockguard.Metrics.
func (m *Metrics) LockMetrics() lockMetricsAdapter {
	return lockMetricsAdapter{m: m}
}
