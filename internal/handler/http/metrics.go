package http

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"recipebox/internal/handler/http/pathutil"
	"recipebox/internal/handler/http/responsewriter"
	"recipebox/internal/observability/slo"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// Buckets span 5ms to 10s so the p95/p99 targets fall inside the
	// resolution of the histogram rather than in a catch-all bucket.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	httpRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware records the request counter, latency histogram and
// size histograms for every request. Paths are normalized first so that
// /recipes/123 and /recipes/456 land on the same /recipes/:id series
// instead of one series per recipe ID.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		path := pathutil.NormalizePath(r.URL.Path)
		if r.ContentLength > 0 {
			httpRequestSize.WithLabelValues(r.Method, path).Observe(float64(r.ContentLength))
		}

		rw := responsewriter.Wrap(w)
		start := time.Now()
		next.ServeHTTP(rw, r)
		duration := time.Since(start).Seconds()

		status := strconv.Itoa(rw.StatusCode())
		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
		httpResponseSize.WithLabelValues(r.Method, path).Observe(float64(rw.BytesWritten()))

		sloTracker.record(rw.StatusCode(), duration)
	})
}

// maxSLOSamples caps the per-interval latency sample buffer so a traffic
// burst cannot grow it without bound between updater ticks.
const maxSLOSamples = 10000

// sloWindow accumulates request outcomes between SLO updater ticks.
type sloWindow struct {
	mu        sync.Mutex
	total     int64
	errors    int64
	durations []float64
}

var sloTracker = &sloWindow{}

func (w *sloWindow) record(statusCode int, duration float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.total++
	if statusCode >= 500 {
		w.errors++
	}
	if len(w.durations) < maxSLOSamples {
		w.durations = append(w.durations, duration)
	}
}

// snapshot returns the accumulated window and resets it.
func (w *sloWindow) snapshot() (total, errors int64, durations []float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	total, errors, durations = w.total, w.errors, w.durations
	w.total, w.errors, w.durations = 0, 0, nil
	return total, errors, durations
}

// StartSLOUpdater starts a goroutine that recomputes the SLO gauges from the
// requests observed since the previous tick. An interval with no traffic
// leaves the gauges at their last value rather than reporting a false 100%.
func StartSLOUpdater(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				total, errors, durations := sloTracker.snapshot()
				if total == 0 {
					continue
				}
				slo.UpdateAvailability(float64(total-errors) / float64(total))
				slo.UpdateErrorRate(float64(errors) / float64(total))
				if len(durations) > 0 {
					sort.Float64s(durations)
					slo.UpdateLatencyP95(percentile(durations, 0.95))
					slo.UpdateLatencyP99(percentile(durations, 0.99))
				}
			}
		}
	}()
}

// percentile returns the p-th percentile of sorted samples.
func percentile(sorted []float64, p float64) float64 {
	idx := int(p * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// MetricsHandler returns an HTTP handler for the Prometheus metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
