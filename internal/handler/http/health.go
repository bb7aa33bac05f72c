// Package http carries the HTTP surface of the API server: recipe and
// import handlers, auth, health probes, metrics and the middleware
// chain around them.
package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"recipebox/internal/handler/http/respond"
	"recipebox/internal/resilience/circuitbreaker"
	"recipebox/pkg/ratelimit"
)

// Check status values used throughout the health endpoints.
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// poolDegradedUtilization is the in-use fraction of the connection pool
// above which the database check reports degraded.
const poolDegradedUtilization = 80.0

// HealthResponse is the body of the /health endpoint.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus reports one health check item.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// RateLimiterHealthInfo reports the state of the import admission limiter.
type RateLimiterHealthInfo struct {
	ActiveCallers int `json:"active_callers"`
}

// CSPHealthInfo reports the CSP middleware configuration.
type CSPHealthInfo struct {
	Enabled    bool `json:"enabled"`
	ReportOnly bool `json:"report_only"`
}

// RenderPinger probes the headless render service for reachability.
// *renderer.Client satisfies this.
type RenderPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves /health. It pings the database, probes the render
// service used by the import pipeline, and reports admission limiter
// status.
//
// The render service and limiter are informational: the API keeps serving
// reads when rendering is down (imports fall back to static extraction),
// so those checks degrade the status rather than fail it. Only a database
// failure returns 503.
type HealthHandler struct {
	DB      *sql.DB
	Version string

	// DBBreaker, when set, short-circuits the database ping while the
	// breaker is open instead of stacking more load on a failing pool.
	DBBreaker *circuitbreaker.DBCircuitBreaker

	// Limiter is the import admission limiter (optional).
	Limiter *ratelimit.Limiter

	// Renderer is the headless render client (optional).
	Renderer RenderPinger

	CSPEnabled    bool
	CSPReportOnly bool
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]CheckStatus)

	if h.DB != nil {
		checks["database"] = h.checkDatabase(ctx)
	} else {
		checks["database"] = CheckStatus{Status: statusUnhealthy, Message: "not configured"}
	}

	if h.Renderer != nil {
		checks["render_service"] = h.checkRenderer(ctx)
	}

	if h.Limiter != nil {
		checks["rate_limiter"] = CheckStatus{
			Status: statusHealthy,
			Details: map[string]any{
				"import": RateLimiterHealthInfo{ActiveCallers: h.Limiter.CallerCount()},
			},
		}
	}

	if h.CSPEnabled {
		checks["csp"] = CheckStatus{
			Status: statusHealthy,
			Details: map[string]any{
				"config": CSPHealthInfo{Enabled: h.CSPEnabled, ReportOnly: h.CSPReportOnly},
			},
		}
	}

	// Degraded is a warning, not a failure; only unhealthy turns the
	// overall answer into a 503.
	status := statusHealthy
	code := http.StatusOK
	for _, check := range checks {
		switch check.Status {
		case statusUnhealthy:
			status = statusUnhealthy
			code = http.StatusServiceUnavailable
		case statusDegraded:
			if status == statusHealthy {
				status = statusDegraded
			}
		}
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

// checkDatabase pings the pool and reports its statistics. While the
// breaker is open it reports without pinging: the breaker already knows
// the database is failing and a ping would only add load.
func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if h.DBBreaker != nil && h.DBBreaker.IsOpen() {
		return CheckStatus{
			Status:  statusUnhealthy,
			Message: "database circuit breaker open",
			Details: map[string]any{"circuit_breaker": h.DBBreaker.State().String()},
		}
	}

	if err := h.DB.PingContext(ctx); err != nil {
		return CheckStatus{Status: statusUnhealthy, Message: err.Error()}
	}

	stats := h.DB.Stats()
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
		"max_idle_closed":      stats.MaxIdleClosed,
		"max_idle_time_closed": stats.MaxIdleTimeClosed,
		"max_lifetime_closed":  stats.MaxLifetimeClosed,
	}
	if h.DBBreaker != nil {
		details["circuit_breaker"] = h.DBBreaker.State().String()
	}

	// MaxOpenConnections of zero means an unbounded pool, which also
	// makes the utilization ratio meaningless.
	if stats.MaxOpenConnections == 0 {
		return CheckStatus{
			Status:  statusDegraded,
			Message: "connection pool max connections not configured",
			Details: details,
		}
	}

	utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
	details["utilization_percent"] = utilization
	if utilization >= poolDegradedUtilization {
		return CheckStatus{
			Status:  statusDegraded,
			Message: "connection pool utilization above 80%",
			Details: details,
		}
	}

	return CheckStatus{Status: statusHealthy, Details: details}
}

// checkRenderer probes the render service. An unreachable renderer
// degrades the import pipeline (static extraction still works) so it
// never fails the overall health check.
func (h *HealthHandler) checkRenderer(ctx context.Context) CheckStatus {
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := h.Renderer.Ping(probeCtx); err != nil {
		return CheckStatus{
			Status:  statusDegraded,
			Message: "render service unreachable: " + err.Error(),
		}
	}
	return CheckStatus{Status: statusHealthy}
}

// ReadyHandler serves the readiness probe: 200 once the database accepts
// a ping, 503 otherwise.
type ReadyHandler struct {
	DB *sql.DB
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.DB == nil {
		http.Error(w, "database not configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.DB.PingContext(ctx); err != nil {
		http.Error(w, "database not ready: "+err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeProbe(w, "ready")
}

// LiveHandler serves the liveness probe. Answering at all is the check.
type LiveHandler struct{}

func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeProbe(w, "alive")
}

func writeProbe(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		slog.Default().Error("failed to write probe response", slog.Any("error", err))
	}
}
