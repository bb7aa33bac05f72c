package auth

import "strings"

// PublicEndpoints are reachable without a token: health probes for the
// orchestrator, /metrics for the Prometheus scraper, the API docs, and
// the token endpoint itself.
var PublicEndpoints = []string{
	"/health",
	"/ready",
	"/live",
	"/metrics",
	"/swagger/",
	"/auth/token",
}

// IsPublicEndpoint reports whether path may be served unauthenticated.
// Entries with a trailing slash match by prefix; the rest match exactly,
// with an optional trailing slash or query string. /health must not admit
// /healthcheck or /health/detail.
func IsPublicEndpoint(path string) bool {
	for _, endpoint := range PublicEndpoints {
		if strings.HasSuffix(endpoint, "/") {
			if strings.HasPrefix(path, endpoint) {
				return true
			}
			continue
		}
		if path == endpoint || path == endpoint+"/" || strings.HasPrefix(path, endpoint+"?") {
			return true
		}
	}
	return false
}
