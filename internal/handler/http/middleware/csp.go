package middleware

import (
	"net/http"
	"strings"

	"recipebox/pkg/security/csp"
)

// CSPMiddlewareConfig selects which Content-Security-Policy applies where.
// The API surface runs the strict policy; path overrides exist for the few
// routes that actually serve documents (Swagger UI).
type CSPMiddlewareConfig struct {
	// Enabled gates the whole middleware, toggled via CSP_ENABLED.
	Enabled bool

	// DefaultPolicy applies when no path override matches. A zero policy
	// means no header is written.
	DefaultPolicy csp.Policy

	// PathPolicies overrides the default by path prefix; the longest
	// matching prefix wins.
	PathPolicies map[string]csp.Policy

	// ReportOnly switches the header to
	// Content-Security-Policy-Report-Only so a new policy can soak
	// before enforcement.
	ReportOnly bool
}

// CSPMiddleware writes the policy header chosen for each request path.
type CSPMiddleware struct {
	config CSPMiddlewareConfig
}

// NewCSPMiddleware creates the middleware from config.
func NewCSPMiddleware(config CSPMiddlewareConfig) *CSPMiddleware {
	return &CSPMiddleware{config: config}
}

// Middleware returns the wrapping handler.
func (m *CSPMiddleware) Middleware() func(http.Handler) http.Handler {
	header := csp.Header
	if m.config.ReportOnly {
		header = csp.HeaderReportOnly
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.config.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			policy := m.selectPolicy(r.URL.Path)
			if !policy.IsZero() {
				w.Header().Set(header, policy.String())
			}
			next.ServeHTTP(w, r)
		})
	}
}

// selectPolicy picks the longest matching path-prefix override, falling
// back to the default policy.
func (m *CSPMiddleware) selectPolicy(path string) csp.Policy {
	longest := ""
	matched := csp.Policy{}

	for prefix, policy := range m.config.PathPolicies {
		if strings.HasPrefix(path, prefix) && len(prefix) > len(longest) {
			longest = prefix
			matched = policy
		}
	}

	if longest != "" {
		return matched
	}
	return m.config.DefaultPolicy
}
