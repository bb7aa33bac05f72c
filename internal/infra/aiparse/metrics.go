package aiparse

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ParseMetricsRecorder defines the interface for recording AI-parse metrics.
// The abstraction keeps provider code testable without a live Prometheus
// registry and shared across providers.
type ParseMetricsRecorder interface {
	// RecordDuration records the time one model call took.
	RecordDuration(duration time.Duration)

	// RecordOutcome records the result of one parse attempt:
	// "found", "none", or "error".
	RecordOutcome(outcome string)

	// RecordInputLength records the length of the page text sent to the
	// model, in characters.
	RecordInputLength(length int)
}

// PrometheusParseMetrics implements ParseMetricsRecorder using Prometheus.
type PrometheusParseMetrics struct {
	durationHistogram prometheus.Histogram
	outcomeCounter    *prometheus.CounterVec
	inputHistogram    prometheus.Histogram
}

var (
	prometheusMetricsInstance *PrometheusParseMetrics
	prometheusMetricsOnce     sync.Once
)

// getOrCreateHistogram gets an existing histogram or creates a new one if it doesn't exist
func getOrCreateHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	h := prometheus.NewHistogram(opts)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Histogram)
		}
		return promauto.NewHistogram(opts)
	}
	return h
}

// getOrCreateCounterVec gets an existing counter vec or creates a new one if it doesn't exist
func getOrCreateCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
		return promauto.NewCounterVec(opts, labels)
	}
	return c
}

// NewPrometheusParseMetrics creates a new Prometheus-based metrics recorder.
// Uses singleton pattern to avoid duplicate metric registration in tests.
func NewPrometheusParseMetrics() *PrometheusParseMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusParseMetrics{
			durationHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "recipe_ai_parse_duration_seconds",
				Help:    "Time taken by an AI recipe extraction call",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			}),
			outcomeCounter: getOrCreateCounterVec(prometheus.CounterOpts{
				Name: "recipe_ai_parse_total",
				Help: "AI recipe extraction attempts by outcome (found, none, error)",
			}, []string{"outcome"}),
			inputHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "recipe_ai_parse_input_characters",
				Help:    "Distribution of page text lengths sent to AI providers",
				Buckets: []float64{500, 1000, 2500, 5000, 7500, 10000, 15000},
			}),
		}
	})
	return prometheusMetricsInstance
}

// RecordDuration implements ParseMetricsRecorder.RecordDuration
func (p *PrometheusParseMetrics) RecordDuration(duration time.Duration) {
	p.durationHistogram.Observe(duration.Seconds())
}

// RecordOutcome implements ParseMetricsRecorder.RecordOutcome
func (p *PrometheusParseMetrics) RecordOutcome(outcome string) {
	p.outcomeCounter.WithLabelValues(outcome).Inc()
}

// RecordInputLength implements ParseMetricsRecorder.RecordInputLength
func (p *PrometheusParseMetrics) RecordInputLength(length int) {
	p.inputHistogram.Observe(float64(length))
}
