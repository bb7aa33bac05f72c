package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"recipebox/internal/pkg/config"
)

// WorkerMetrics tracks sweep execution alongside the worker's configuration
// health (the worker_config_* set from internal/pkg/config).
type WorkerMetrics struct {
	Config *config.Metrics

	// SweepRunsTotal counts runs by status ("success" or "failure").
	SweepRunsTotal *prometheus.CounterVec

	// SweepDurationSeconds measures run duration. Buckets reach 30m to
	// match the sweep timeout ceiling.
	SweepDurationSeconds prometheus.Histogram

	// SweepLinksCheckedTotal counts source links verified across runs.
	SweepLinksCheckedTotal prometheus.Counter

	// SweepLastSuccessTimestamp records the last completed run; staleness
	// here is the primary alerting signal for a wedged worker.
	SweepLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics registers the full worker metric set via promauto.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		Config: config.NewMetrics("worker"),

		SweepRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_sweep_runs_total",
			Help: "Total number of verification sweep runs by status (success/failure)",
		}, []string{"status"}),

		SweepDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_sweep_duration_seconds",
			Help:    "Duration of verification sweep execution in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		SweepLinksCheckedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_sweep_links_checked_total",
			Help: "Total number of links checked across all sweep runs",
		}),

		SweepLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_sweep_last_success_timestamp",
			Help: "Unix timestamp of the last successful verification sweep",
		}),
	}
}

// RecordSweepRun increments the run counter for the given status.
func (m *WorkerMetrics) RecordSweepRun(status string) {
	m.SweepRunsTotal.WithLabelValues(status).Inc()
}

// RecordSweepDuration observes one run's duration in seconds.
func (m *WorkerMetrics) RecordSweepDuration(seconds float64) {
	m.SweepDurationSeconds.Observe(seconds)
}

// RecordLinksChecked adds the links verified in one run to the total.
func (m *WorkerMetrics) RecordLinksChecked(count int) {
	m.SweepLinksCheckedTotal.Add(float64(count))
}

// RecordLastSuccess stamps the successful-run gauge with the current time.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.SweepLastSuccessTimestamp.SetToCurrentTime()
}
