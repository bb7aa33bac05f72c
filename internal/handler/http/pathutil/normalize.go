// Package pathutil keeps the metric label space for request paths small.
// Numeric recipe IDs in a path collapse into a :id placeholder so that
// each recipe does not become its own Prometheus series.
package pathutil

import (
	"regexp"
	"strings"
)

// idRoutes lists the routes that carry a numeric ID segment. Anything
// not listed here passes through unchanged, which keeps static paths
// like /health and /recipes/search intact.
var idRoutes = []struct {
	pattern  *regexp.Regexp
	template string
}{
	{regexp.MustCompile(`^/recipes/\d+$`), "/recipes/:id"},
	{regexp.MustCompile(`^/recipes/\d+/similar$`), "/recipes/:id/similar"},
}

// NormalizePath strips the query string and any trailing slash, then
// replaces a numeric ID segment with its template form.
//
//	NormalizePath("/recipes/123")         // "/recipes/:id"
//	NormalizePath("/recipes/123/similar") // "/recipes/:id/similar"
//	NormalizePath("/recipes/search?q=x")  // "/recipes/search"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	for _, route := range idRoutes {
		if route.pattern.MatchString(path) {
			return route.template
		}
	}
	return path
}
