package pagination

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_pagination_requests_total",
			Help: "Total number of paginated list requests",
		},
		[]string{"status", "page_range"},
	)

	durationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_pagination_duration_seconds",
			Help:    "Paginated request duration by layer",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0},
		},
		[]string{"operation"}, // handler | service | repository
	)

	totalCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recipe_total_count",
			Help: "Current total number of recipes",
		},
	)

	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_pagination_errors_total",
			Help: "Pagination errors by type",
		},
		[]string{"type"}, // validation | database | timeout
	)
)

// RecordRequest counts one list request, bucketing the page number so
// deep-pagination abuse shows up as its own series.
func RecordRequest(statusCode int, page int) {
	requestsTotal.WithLabelValues(strconv.Itoa(statusCode), pageRange(page)).Inc()
}

func RecordDuration(operation string, duration float64) {
	durationSeconds.WithLabelValues(operation).Observe(duration)
}

// UpdateTotalCount refreshes the recipe count gauge after a COUNT query.
func UpdateTotalCount(count int64) {
	totalCount.Set(float64(count))
}

func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}

func pageRange(page int) string {
	switch {
	case page <= 10:
		return "1-10"
	case page <= 50:
		return "11-50"
	case page <= 100:
		return "51-100"
	default:
		return "100+"
	}
}
