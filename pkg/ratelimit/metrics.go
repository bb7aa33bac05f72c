package ratelimit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics receives limiter observability events. Implementations must be
// safe for concurrent use.
type Metrics interface {
	// RecordAllowed counts an admitted operation.
	RecordAllowed()

	// RecordDenied counts a refused operation.
	RecordDenied()

	// RecordCheckDuration observes how long one admission decision took.
	RecordCheckDuration(d time.Duration)

	// SetActiveCallers reports the tracked-caller count after a sweep.
	SetActiveCallers(n int)
}

// NoopMetrics discards all events.
type NoopMetrics struct{}

func (NoopMetrics) RecordAllowed()                    {}
func (NoopMetrics) RecordDenied()                     {}
func (NoopMetrics) RecordCheckDuration(time.Duration) {}
func (NoopMetrics) SetActiveCallers(int)              {}

// PrometheusMetrics implements Metrics with prometheus collectors.
type PrometheusMetrics struct {
	decisionsTotal *prometheus.CounterVec
	checkDuration  prometheus.Histogram
	activeCallers  prometheus.Gauge
}

// NewPrometheusMetrics creates and registers the limiter collectors on reg.
// Passing prometheus.DefaultRegisterer wires them into the process registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ratelimit_decisions_total",
				Help: "Rate limit decisions by outcome.",
			},
			[]string{"outcome"},
		),
		checkDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name: "ratelimit_check_duration_seconds",
				Help: "Duration of rate limit admission checks.",
				// Checks are in-memory map operations; the upper buckets
				// exist to surface lock contention.
				Buckets: []float64{0.0005, 0.001, 0.002, 0.005, 0.01, 0.025, 0.05, 0.1},
			},
		),
		activeCallers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "ratelimit_active_callers",
				Help: "Callers tracked by the limiter after the last sweep.",
			},
		),
	}

	reg.MustRegister(m.decisionsTotal, m.checkDuration, m.activeCallers)
	return m
}

// RecordAllowed counts an admitted operation.
func (m *PrometheusMetrics) RecordAllowed() {
	m.decisionsTotal.WithLabelValues("allowed").Inc()
}

// RecordDenied counts a refused operation.
func (m *PrometheusMetrics) RecordDenied() {
	m.decisionsTotal.WithLabelValues("denied").Inc()
}

// RecordCheckDuration observes one admission decision's duration.
func (m *PrometheusMetrics) RecordCheckDuration(d time.Duration) {
	m.checkDuration.Observe(d.Seconds())
}

// SetActiveCallers reports the tracked-caller count.
func (m *PrometheusMetrics) SetActiveCallers(n int) {
	m.activeCallers.Set(float64(n))
}
