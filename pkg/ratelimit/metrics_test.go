package ratelimit

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gatherFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func TestPrometheusMetrics_Decisions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)

	m.RecordAllowed()
	m.RecordAllowed()
	m.RecordDenied()

	mf := gatherFamily(t, reg, "ratelimit_decisions_total")
	if mf == nil {
		t.Fatal("ratelimit_decisions_total not registered")
	}

	counts := map[string]float64{}
	for _, metric := range mf.GetMetric() {
		for _, label := range metric.GetLabel() {
			if label.GetName() == "outcome" {
				counts[label.GetValue()] = metric.GetCounter().GetValue()
			}
		}
	}

	if counts["allowed"] != 2 {
		t.Errorf("allowed count = %v, want 2", counts["allowed"])
	}
	if counts["denied"] != 1 {
		t.Errorf("denied count = %v, want 1", counts["denied"])
	}
}

func TestPrometheusMetrics_CheckDurationAndGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)

	m.RecordCheckDuration(2 * time.Millisecond)
	m.SetActiveCallers(7)

	hist := gatherFamily(t, reg, "ratelimit_check_duration_seconds")
	if hist == nil {
		t.Fatal("ratelimit_check_duration_seconds not registered")
	}
	if hist.GetMetric()[0].GetHistogram().GetSampleCount() != 1 {
		t.Error("expected one histogram observation")
	}

	gauge := gatherFamily(t, reg, "ratelimit_active_callers")
	if gauge == nil {
		t.Fatal("ratelimit_active_callers not registered")
	}
	if got := gauge.GetMetric()[0].GetGauge().GetValue(); got != 7 {
		t.Errorf("active callers gauge = %v, want 7", got)
	}
}

func TestLimiter_MetricsWiring(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)
	l := New(Config{Limit: 1, Window: time.Minute, Metrics: m})

	l.Admit("caller")
	l.Admit("caller")

	mf := gatherFamily(t, reg, "ratelimit_decisions_total")
	if mf == nil {
		t.Fatal("decisions metric missing")
	}

	var total float64
	for _, metric := range mf.GetMetric() {
		total += metric.GetCounter().GetValue()
	}
	if total != 2 {
		t.Errorf("total decisions = %v, want 2", total)
	}
}
