package notifier

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimiter wraps a token-bucket limiter for outbound webhook requests.
// Slack-compatible webhooks allow roughly one request per second, so the
// default configuration matches that ceiling.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a rate limiter that allows requestsPerSecond
// sustained requests with the given burst size.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Allow blocks until a token is available or the context is cancelled.
func (r *RateLimiter) Allow(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait cancelled: %w", err)
	}
	return nil
}
