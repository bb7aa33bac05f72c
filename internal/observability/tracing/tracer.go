// Package tracing carries OpenTelemetry spans through the HTTP layer and
// the import pipeline. Context propagation uses the W3C Trace Context
// headers, so a trace started by an upstream proxy continues here.
package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("recipebox")

// GetTracer returns the application tracer. Pipeline stages start their
// spans from this so they nest under the request span the middleware
// opened.
func GetTracer() trace.Tracer {
	return tracer
}
