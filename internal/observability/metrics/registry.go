package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Import pipeline instruments. Per-request HTTP metrics live in the
// handler package; everything here is observed from the usecase and
// infra layers via the Record* helpers in business.go.
var (
	// ImportsTotal counts import attempts by terminal outcome.
	// Outcome labels: success, rate_limited, invalid_url, blocked, timeout,
	// too_large, not_html, upstream_error, no_recipe, duplicate,
	// storage_error, fetch_error.
	ImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_imports_total",
			Help: "Total number of recipe import attempts by outcome",
		},
		[]string{"outcome"},
	)

	// ImportFetchDuration measures the guarded outbound fetch, from the
	// first guard check through the capped body read.
	ImportFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipe_import_fetch_duration_seconds",
			Help:    "Time taken to fetch a recipe page, all redirect hops included",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15},
		},
	)

	// ImportExtractionStage counts which extraction stage produced the
	// result: static, rendered, ai, or none.
	ImportExtractionStage = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_import_extraction_stage_total",
			Help: "Which extraction stage produced the recipe",
		},
		[]string{"stage"},
	)

	// RedirectHops observes how many redirect hops each fetch followed.
	RedirectHops = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipe_import_redirect_hops",
			Help:    "Number of redirect hops followed per fetch",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		},
	)

	// SSRFBlockedTotal counts refused targets by where the refusal
	// happened: initial or redirect.
	SSRFBlockedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_import_ssrf_blocked_total",
			Help: "Total number of fetch targets refused by the address guard",
		},
		[]string{"hop"},
	)

	// RenderFallbackTotal counts render fallback invocations by result.
	RenderFallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_import_render_fallback_total",
			Help: "Total number of render fallback invocations",
		},
		[]string{"result"}, // result: rendered, empty, error
	)

	// RecipesTotal tracks the recipe count in the database. Updated by
	// the worker sweep rather than per request.
	RecipesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recipes_total",
			Help: "Total number of recipes in the database",
		},
	)

	// LinkChecksTotal counts link verification outcomes from the worker.
	LinkChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_link_checks_total",
			Help: "Total number of source link verification checks",
		},
		[]string{"result"}, // result: alive, dead, error
	)
)

// Database instruments.
var (
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)
