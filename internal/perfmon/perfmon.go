// Package perfmon records per-provider operation timings. The rolling
// averages feed the "fastest" selection strategy; the same observations are
// exported as Prometheus metrics for operators.
package perfmon

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type opStats struct {
	count int64
	total time.Duration
}

// Monitor aggregates provider call durations. Safe for concurrent use.
type Monitor struct {
	mu    sync.Mutex
	stats map[string]map[string]*opStats

	latency  *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

// NewMonitor creates a monitor registered against reg. Pass nil to skip
// Prometheus registration (tests).
func NewMonitor(reg prometheus.Registerer) *Monitor {
	m := &Monitor{
		stats: make(map[string]map[string]*opStats),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "enricher",
			Name:      "provider_request_duration_seconds",
			Help:      "Duration of provider search requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "operation"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "enricher",
			Name:      "provider_requests_total",
			Help:      "Provider search requests by outcome.",
		}, []string{"provider", "operation", "outcome"}),
	}

	if reg != nil {
		reg.MustRegister(m.latency, m.requests)
	}
	return m
}

// Observe records one provider call.
func (m *Monitor) Observe(provider, operation string, d time.Duration, success bool) {
	m.mu.Lock()
	ops, ok := m.stats[provider]
	if !ok {
		ops = make(map[string]*opStats)
		m.stats[provider] = ops
	}
	stats, ok := ops[operation]
	if !ok {
		stats = &opStats{}
		ops[operation] = stats
	}
	stats.count++
	stats.total += d
	m.mu.Unlock()

	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.latency.WithLabelValues(provider, operation).Observe(d.Seconds())
	m.requests.WithLabelValues(provider, operation, outcome).Inc()
}

// AverageLatency returns the provider's mean call duration across all
// operations. ok is false when no calls have been observed.
func (m *Monitor) AverageLatency(provider string) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	var total time.Duration
	for _, stats := range m.stats[provider] {
		count += stats.count
		total += stats.total
	}
	if count == 0 {
		return 0, false
	}
	return total / time.Duration(count), true
}

// AverageDurationByOperation returns per-operation means for one provider.
func (m *Monitor) AverageDurationByOperation(provider string) map[string]time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]time.Duration, len(m.stats[provider]))
	for op, stats := range m.stats[provider] {
		if stats.count > 0 {
			out[op] = stats.total / time.Duration(stats.count)
		}
	}
	return out
}
