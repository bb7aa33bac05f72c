// Package observability groups the logging, metrics and tracing
// subpackages behind one import root.
//
// logging wraps slog with request-ID and context helpers, metrics holds
// the Prometheus instruments for the import pipeline and fetch guard,
// and tracing carries the OpenTelemetry setup plus the HTTP middleware
// that opens a span per request.
package observability
