package worker

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// testMetrics builds a WorkerMetrics backed by a private registry so tests
// stay isolated from the promauto-registered globals.
func testMetrics(t *testing.T, reg *prometheus.Registry) *WorkerMetrics {
	t.Helper()

	m := &WorkerMetrics{
		SweepRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_sweep_runs_total",
			Help: "test",
		}, []string{"status"}),
		SweepDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_sweep_duration_seconds",
			Help:    "test",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),
		SweepLinksCheckedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "worker_sweep_links_checked_total",
			Help: "test",
		}),
		SweepLastSuccessTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "worker_sweep_last_success_timestamp",
			Help: "test",
		}),
	}
	reg.MustRegister(m.SweepRunsTotal, m.SweepDurationSeconds,
		m.SweepLinksCheckedTotal, m.SweepLastSuccessTimestamp)
	return m
}

func TestNewWorkerMetrics(t *testing.T) {
	// The promauto-registered global from testmain; constructing a second
	// instance would panic on duplicate registration.
	m := globalTestMetrics

	if m == nil {
		t.Fatal("NewWorkerMetrics returned nil")
	}
	if m.Config == nil {
		t.Error("Config metrics are nil")
	}
	if m.SweepRunsTotal == nil || m.SweepDurationSeconds == nil ||
		m.SweepLinksCheckedTotal == nil || m.SweepLastSuccessTimestamp == nil {
		t.Error("sweep metrics incompletely initialized")
	}
}

func TestWorkerMetrics_SweepLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := testMetrics(t, reg)

	// Two good runs, one failed run.
	m.RecordSweepRun("success")
	m.RecordSweepDuration(45.5)
	m.RecordLinksChecked(10)
	m.RecordLastSuccess()

	m.RecordSweepRun("success")
	m.RecordSweepDuration(38.2)
	m.RecordLinksChecked(12)
	m.RecordLastSuccess()

	m.RecordSweepRun("failure")
	m.RecordSweepDuration(5.0)

	if got := testutil.ToFloat64(m.SweepRunsTotal.WithLabelValues("success")); got != 2 {
		t.Errorf("success runs = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.SweepRunsTotal.WithLabelValues("failure")); got != 1 {
		t.Errorf("failure runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SweepLinksCheckedTotal); got != 22 {
		t.Errorf("links checked = %v, want 22", got)
	}
	if got := testutil.ToFloat64(m.SweepLastSuccessTimestamp); got <= 0 {
		t.Errorf("last success timestamp = %v, want > 0", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == "worker_sweep_duration_seconds" {
			if n := mf.GetMetric()[0].GetHistogram().GetSampleCount(); n != 3 {
				t.Errorf("duration observations = %d, want 3", n)
			}
		}
	}
}

func TestWorkerMetrics_EmptySweep(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := testMetrics(t, reg)

	// A sweep with nothing due still counts as a run.
	m.RecordSweepRun("success")
	m.RecordLinksChecked(0)

	if got := testutil.ToFloat64(m.SweepLinksCheckedTotal); got != 0 {
		t.Errorf("links checked = %v, want 0", got)
	}
}

func TestWorkerMetrics_ConcurrentAccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := testMetrics(t, reg)

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			m.RecordSweepRun("success")
			m.RecordSweepDuration(10.0)
			m.RecordLinksChecked(1)
			m.RecordLastSuccess()
			done <- struct{}{}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	if got := testutil.ToFloat64(m.SweepRunsTotal.WithLabelValues("success")); got != 10 {
		t.Errorf("success runs = %v, want 10", got)
	}
	if got := testutil.ToFloat64(m.SweepLinksCheckedTotal); got != 10 {
		t.Errorf("links checked = %v, want 10", got)
	}
}
