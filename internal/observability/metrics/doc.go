// Package metrics defines the application-level Prometheus instruments:
// import pipeline outcomes and stage durations, fetch guard decisions
// (blocked targets, redirect hops, oversized bodies) and database query
// timings. Everything registers on the default registry and is served
// from the /metrics endpoint.
package metrics
