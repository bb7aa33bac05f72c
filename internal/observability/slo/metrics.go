// Package slo exports the reliability gauges the in-process sampler
// refreshes from recent request outcomes. The alert rules compare these
// against the targets below, so target changes happen here and in the
// rules together.
package slo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Targets for the import API. Availability counts any non-5xx answer as
// served, including the deliberate 4xx rejections the safety pipeline
// produces. Latency targets cover reads and imports together, so the
// fetch deadline dominates the p99.
const (
	AvailabilitySLO = 99.9
	LatencyP95SLO   = 0.200
	LatencyP99SLO   = 0.500
	ErrorRateSLO    = 0.001
)

var (
	availability = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_availability_ratio",
		Help: "Ratio of requests answered without a 5xx (0-1), target 0.999.",
	})
	latencyP95 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_latency_p95_seconds",
		Help: "Observed p95 request latency in seconds, target 0.200.",
	})
	latencyP99 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_latency_p99_seconds",
		Help: "Observed p99 request latency in seconds, target 0.500.",
	})
	errorRate = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_error_rate_ratio",
		Help: "Ratio of requests answered with a 5xx (0-1), target 0.001.",
	})
)

// UpdateAvailability records (total - 5xx) / total for the last window.
func UpdateAvailability(ratio float64) {
	availability.Set(ratio)
}

func UpdateLatencyP95(seconds float64) {
	latencyP95.Set(seconds)
}

func UpdateLatencyP99(seconds float64) {
	latencyP99.Set(seconds)
}

// UpdateErrorRate records 5xx / total for the last window.
func UpdateErrorRate(ratio float64) {
	errorRate.Set(ratio)
}
