package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"recipebox/internal/handler/http/middleware"
	"recipebox/internal/handler/http/requestid"
	"recipebox/internal/handler/http/respond"
	"recipebox/internal/handler/http/responsewriter"
	"recipebox/pkg/ratelimit"

	"go.opentelemetry.io/otel/trace"
)

// Logging emits one structured line per completed request. The trace ID
// from the active span is included so a log line can be joined with its
// trace.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := responsewriter.Wrap(w)

			next.ServeHTTP(wrapped, r)

			span := trace.SpanFromContext(r.Context())
			logger.Info("request completed",
				slog.String("request_id", requestid.FromContext(r.Context())),
				slog.String("trace_id", span.SpanContext().TraceID().String()),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("query", r.URL.RawQuery),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.Header.Get("User-Agent")),
				slog.Int("status", wrapped.StatusCode()),
				slog.Int("bytes", wrapped.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// Recover turns a handler panic into a logged 500 instead of a dead
// connection.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				respond.SafeError(w, http.StatusInternalServerError,
					errors.New("internal error"))
				logger.Error("panic recovered",
					slog.String("request_id", requestid.FromContext(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// LimitRequestBody caps request bodies at maxBytes for every route behind
// it.
func LimitRequestBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimiter is the whole-surface per-IP limiter applied outside the
// route mux. Client identity comes from the same IPExtractor the
// endpoint limiters use, so proxy headers are only believed when the
// peer is a configured proxy.
type RateLimiter struct {
	limiter   *ratelimit.Limiter
	extractor middleware.IPExtractor
}

func NewRateLimiter(limit int, window time.Duration, extractor middleware.IPExtractor) *RateLimiter {
	cfg := ratelimit.DefaultConfig()
	cfg.Limit = limit
	cfg.Window = window
	return &RateLimiter{limiter: ratelimit.New(cfg), extractor: extractor}
}

// StartSweeper evicts idle caller windows until ctx is cancelled.
func (rl *RateLimiter) StartSweeper(ctx context.Context, interval time.Duration) {
	rl.limiter.StartSweeper(ctx, interval)
}

// Limit admits or rejects the request by client IP. Over-limit callers
// get 429 with Retry-After. If extraction fails the TCP peer address
// keys the bucket, never an unkeyed pass.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, err := rl.extractor.ExtractIP(r)
		if err != nil {
			if host, _, splitErr := net.SplitHostPort(r.RemoteAddr); splitErr == nil {
				ip = host
			} else {
				ip = r.RemoteAddr
			}
		}

		if d := rl.limiter.Admit(ip); !d.Allowed {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(d.RetryAfter.Seconds())))
			respond.SafeError(w, http.StatusTooManyRequests,
				errors.New("rate limit exceeded"))
			return
		}

		next.ServeHTTP(w, r)
	})
}
