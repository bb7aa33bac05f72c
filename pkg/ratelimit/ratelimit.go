// Package ratelimit provides a per-caller sliding-window rate limiter.
//
// The limiter answers one question: may this caller perform one more
// operation right now? It counts admissions in the trailing window ending at
// "now", prunes expired entries lazily on every decision, and removes idle
// callers entirely through a periodic background sweep so memory is bounded
// by currently-active callers rather than historical ones.
//
// This is a best-effort, single-process limiter. State lives in memory, is
// not shared across processes, and resets on restart. That is an accepted
// tradeoff for its simplicity; do not rely on it for strict quota
// enforcement across replicas.
package ratelimit

import (
	"fmt"
	"time"
)

// Default limits. Ten admissions per trailing minute matches the cost profile
// of an outbound fetch: expensive enough to abuse, cheap enough that a human
// pasting URLs never notices the ceiling.
const (
	DefaultLimit      = 10
	DefaultWindow     = 60 * time.Second
	DefaultMaxCallers = 10000
)

// Clock provides time operations so tests can control the window.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time.
type SystemClock struct{}

// Now returns the current system time.
func (c *SystemClock) Now() time.Time {
	return time.Now()
}

// Config holds limiter configuration.
type Config struct {
	// Limit is the maximum number of admissions per caller per window.
	Limit int

	// Window is the trailing interval admissions are counted in.
	Window time.Duration

	// MaxCallers bounds the number of tracked callers. When reached, the
	// caller idle the longest is evicted to admit a new one.
	MaxCallers int

	// Clock defaults to SystemClock.
	Clock Clock

	// Metrics defaults to NoopMetrics.
	Metrics Metrics
}

// DefaultConfig returns the default limiter configuration.
func DefaultConfig() Config {
	return Config{
		Limit:      DefaultLimit,
		Window:     DefaultWindow,
		MaxCallers: DefaultMaxCallers,
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("ratelimit: limit must be positive, got %d", c.Limit)
	}
	if c.Window <= 0 {
		return fmt.Errorf("ratelimit: window must be positive, got %s", c.Window)
	}
	if c.MaxCallers <= 0 {
		return fmt.Errorf("ratelimit: max callers must be positive, got %d", c.MaxCallers)
	}
	return nil
}

// Decision is the outcome of one admission check.
type Decision struct {
	// CallerID is the identifier the decision was made for.
	CallerID string

	// Allowed reports whether the operation was admitted. An admitted
	// operation has already been counted toward the window; a refused one
	// has not.
	Allowed bool

	// Limit is the configured per-window maximum.
	Limit int

	// Remaining is the number of admissions left in the current window.
	Remaining int

	// RetryAfter is the wait the caller should observe before retrying.
	// On refusal it is fixed at the window size.
	RetryAfter time.Duration

	// ResetAt is when the oldest counted admission leaves the window.
	ResetAt time.Time
}

// String returns a compact representation for logs.
func (d Decision) String() string {
	if d.Allowed {
		return fmt.Sprintf("ratelimit: allowed caller=%s remaining=%d/%d", d.CallerID, d.Remaining, d.Limit)
	}
	return fmt.Sprintf("ratelimit: denied caller=%s limit=%d retry_after=%s", d.CallerID, d.Limit, d.RetryAfter)
}
