// Package resilience holds the fault tolerance building blocks used
// around external collaborators: circuit breakers for the render
// service, AI providers, the database and webhook delivery, and retry
// with exponential backoff and jitter for transient failures.
package resilience
