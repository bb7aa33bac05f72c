// Package importer implements the recipe import pipeline: admission control,
// input validation, the guarded outbound fetch, content checks, and the
// static-then-rendered extraction strategy. It is the only code path in the
// application that follows attacker-controlled URLs.
package importer

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for the import pipeline. These allow callers to map each
// failure mode to exactly one response class with errors.Is. Wrapped detail
// is for internal logs; the HTTP layer deliberately collapses all
// target-blocking failures into one opaque message so a probing caller cannot
// learn which rule fired.
var (
	// ErrUnauthenticated indicates the caller identity was missing.
	// No other work is performed when this is returned.
	ErrUnauthenticated = errors.New("caller identity missing")

	// ErrInvalidURL indicates the URL failed validation before any network
	// access: missing, malformed, non-http(s) scheme, or a non-standard
	// port.
	//
	// Example:
	//   - "not-a-url" → ErrInvalidURL
	//   - "ftp://example.com" → ErrInvalidURL
	//   - "https://example.com:8443/r" → ErrInvalidURL
	ErrInvalidURL = errors.New("invalid or unsupported URL")

	// ErrBlockedTarget indicates the fetch was refused to protect the host
	// network: the hostname did not resolve, an answer fell in a blocked
	// range, or a redirect hop failed re-validation (including disallowed
	// redirect schemes and ports).
	//
	// Example:
	//   - "http://169.254.169.254/" → ErrBlockedTarget
	//   - redirect to "http://10.0.0.5/" → ErrBlockedTarget
	ErrBlockedTarget = errors.New("target address access denied")

	// ErrTooManyRedirects indicates the redirect chain exceeded the
	// configured maximum hop count.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrTimeout indicates the overall fetch deadline expired. The
	// deadline spans DNS, connects, every redirect hop, and the body read
	// combined.
	ErrTimeout = errors.New("fetch deadline exceeded")

	// ErrUnreachable indicates a network-level failure talking to the
	// target (connection refused, reset, TLS failure) on an allowed host.
	ErrUnreachable = errors.New("could not reach target host")

	// ErrBodyTooLarge indicates the response body exceeded the byte cap,
	// either by declared Content-Length or during the capped read.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrNotHTML indicates the response Content-Type is not an HTML
	// family type. Distinct from "no recipe found".
	ErrNotHTML = errors.New("response is not an HTML page")

	// ErrNoRecipe indicates both static and rendered extraction yielded
	// nothing. This is an expected outcome for unsupported pages, not a
	// defect, and maps to "not found" rather than a server error.
	ErrNoRecipe = errors.New("no recipe found in page")
)

// RateLimitedError is returned when the caller's sliding window is full.
// RetryAfter carries the fixed hint surfaced to the caller.
type RateLimitedError struct {
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}

// UpstreamStatusError is returned when the target responded with a
// non-success status. The HTTP layer maps meaningful statuses (404, 403,
// 429) individually and the rest to a generic upstream failure.
type UpstreamStatusError struct {
	StatusCode int
}

// Error implements the error interface.
func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}
