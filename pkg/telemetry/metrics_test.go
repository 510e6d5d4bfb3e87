package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewMetricsRegistersEveryCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.CacheHits.Inc()
	m.CacheMisses.Inc()
	m.CacheEvictions.Inc()
	m.LockContention.Inc()
	m.LockReclaims.Inc()
	m.ObserveLatency("create_ticket", time.Now().Add(-5*time.Millisecond))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"ticketstore_cache_hits_total",
		"ticketstore_cache_misses_total",
		"ticketstore_cache_evictions_total",
		"ticketstore_lock_contention_total",
		"ticketstore_lock_reclaims_total",
		"ticketstore_operation_duration_seconds",
	} {
		if !names[want] {
			t.Errorf("expected metric %s to be registered", want)
		}
	}
}

func TestCacheMetricsAdapterDelegates(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	adapter := m.CacheMetrics()

	adapter.Hit()
	adapter.Miss()
	adapter.Eviction()

	if got := counterValue(t, m.CacheHits); got != 1 {
		t.Errorf("expected 1 cache hit, got %v", got)
	}
	if got := counterValue(t, m.CacheMisses); got != 1 {
		t.Errorf("expected 1 cache miss, got %v", got)
	}
	if got := counterValue(t, m.CacheEvictions); got != 1 {
		t.Errorf("expected 1 cache eviction, got %v", got)
	}
}

func TestLockMetricsAdapterDelegates(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	adapter := m.LockMetrics()

	adapter.Contention()
	adapter.Reclaim()

	if got := counterValue(t, m.LockContention); got != 1 {
		t.Errorf("expected 1 lock contention event, got %v", got)
	}
	if got := counterValue(t, m.LockReclaims); got != 1 {
		t.Errorf("expected 1 lock reclaim event, got %v", got)
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return metric.GetCounter().GetValue()
}
