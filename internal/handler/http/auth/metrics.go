package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// All auth metrics share the recipebox_auth_* prefix so dashboards can
// select them with a single matcher.
var (
	authRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recipebox",
			Subsystem: "auth",
			Name:      "requests_total",
			Help:      "Token endpoint attempts by role and result",
		},
		[]string{"role", "result"}, // result: success | failure
	)

	authDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "recipebox",
			Subsystem: "auth",
			Name:      "duration_seconds",
			Help:      "Token endpoint latency by role",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
		[]string{"role"},
	)

	// Authorization runs on every protected request, so its buckets sit
	// well below the auth ones.
	authzCheckDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "recipebox",
			Subsystem: "auth",
			Name:      "authz_check_duration_seconds",
			Help:      "Role permission check latency",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
	)

	forbiddenAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recipebox",
			Subsystem: "auth",
			Name:      "forbidden_attempts_total",
			Help:      "Requests denied by role policy, by role and method",
		},
		[]string{"role", "method"},
	)
)

// RecordAuthRequest counts one token-endpoint attempt.
func RecordAuthRequest(role, result string) {
	authRequestsTotal.WithLabelValues(role, result).Inc()
}

// RecordAuthDuration records how long a token-endpoint attempt took.
func RecordAuthDuration(role string, durationSeconds float64) {
	authDuration.WithLabelValues(role).Observe(durationSeconds)
}

func recordAuthzCheck(durationSeconds float64) {
	authzCheckDuration.Observe(durationSeconds)
}

func recordForbiddenAttempt(role, method string) {
	forbiddenAttempts.WithLabelValues(role, method).Inc()
}
