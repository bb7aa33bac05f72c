package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"recipebox/pkg/ratelimit"
)

// RateLimiter enforces a per-IP request ceiling on HTTP endpoints. It wraps
// the shared sliding-window limiter and uses the IPExtractor interface to
// identify callers, allowing flexible IP extraction strategies (RemoteAddr
// or trusted proxy headers).
//
// This limiter protects unauthenticated surfaces such as /auth/token. The
// import pipeline applies its own per-caller admission separately, keyed by
// the authenticated subject rather than the address.
type RateLimiter struct {
	limiter     *ratelimit.Limiter
	ipExtractor IPExtractor
}

// NewRateLimiter builds a limiter allowing limit requests per IP within
// window. The extractor decides what counts as the caller's IP.
func NewRateLimiter(limit int, window time.Duration, ipExtractor IPExtractor) *RateLimiter {
	cfg := ratelimit.DefaultConfig()
	cfg.Limit = limit
	cfg.Window = window

	return &RateLimiter{
		limiter:     ratelimit.New(cfg),
		ipExtractor: ipExtractor,
	}
}

// Middleware admits the request through the sliding-window limiter keyed
// by extracted client IP. Over-limit callers get 429 with Retry-After; a
// failed extraction falls back to RemoteAddr rather than letting the
// request through unkeyed.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, err := rl.ipExtractor.ExtractIP(r)
		if err != nil {
			slog.Warn("rate limiter: IP extraction failed, using RemoteAddr fallback",
				slog.String("error", err.Error()),
				slog.String("remote_addr", r.RemoteAddr),
			)
			ip, err = ipFromHostPort(r.RemoteAddr)
			if err != nil {
				slog.Error("rate limiter: RemoteAddr extraction failed",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
		}

		decision := rl.limiter.Admit(ip)
		setRateLimitHeaders(w, decision)

		if !decision.Allowed {
			slog.Warn("rate limit exceeded",
				slog.String("ip", ip),
				slog.String("path", r.URL.Path),
				slog.Int("limit", decision.Limit),
				slog.Duration("retry_after", decision.RetryAfter),
			)
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// StartSweeper starts the limiter's background cleanup of idle IPs. It
// returns immediately; the sweep stops when the context is cancelled.
func (rl *RateLimiter) StartSweeper(ctx context.Context, interval time.Duration) {
	rl.limiter.StartSweeper(ctx, interval)
}

// setRateLimitHeaders exposes the admission decision through the standard
// rate limit response headers.
func setRateLimitHeaders(w http.ResponseWriter, decision ratelimit.Decision) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	if !decision.Allowed {
		seconds := int(decision.RetryAfter.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}
}
