package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"recipebox/internal/handler/http/middleware"
	"recipebox/internal/handler/http/requestid"
)

// peerExtractor keys callers by TCP peer, ignoring proxy headers, the
// way production runs without trusted proxies configured.
var peerExtractor = &middleware.RemoteAddrExtractor{}

// failingExtractor simulates an extractor that cannot identify the
// caller.
type failingExtractor struct{}

func (failingExtractor) ExtractIP(*http.Request) (string, error) {
	return "", errors.New("no identity")
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func limitedRequest(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/recipes", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_EnforcesLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute, peerExtractor)
	h := rl.Limit(okHandler())

	for i := 0; i < 3; i++ {
		if rec := limitedRequest(h, "10.0.0.1:1234"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := limitedRequest(h, "10.0.0.1:1234")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("over-limit status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 response missing Retry-After")
	}
}

func TestRateLimiter_BucketsPerPeer(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, peerExtractor)
	h := rl.Limit(okHandler())

	if rec := limitedRequest(h, "10.0.0.1:1234"); rec.Code != http.StatusOK {
		t.Fatalf("first peer: status = %d, want 200", rec.Code)
	}
	if rec := limitedRequest(h, "10.0.0.2:1234"); rec.Code != http.StatusOK {
		t.Fatalf("second peer should have its own bucket, got %d", rec.Code)
	}
	if rec := limitedRequest(h, "10.0.0.1:9999"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("same peer on a new port should share the bucket, got %d", rec.Code)
	}
}

func TestRateLimiter_ProxyHeadersCannotRotateBuckets(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute, peerExtractor)
	h := rl.Limit(okHandler())

	// Each request claims to be a different client, but all come from
	// the same peer and must share one bucket.
	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/recipes", nil)
		req.RemoteAddr = "203.0.113.7:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Fatalf("first two requests: %v, want 200s", statuses)
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Fatalf("third request with spoofed header = %d, want 429", statuses[2])
	}
}

func TestRateLimiter_ExtractorFailureKeysOnPeer(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, failingExtractor{})
	h := rl.Limit(okHandler())

	if rec := limitedRequest(h, "10.0.0.9:1111"); rec.Code != http.StatusOK {
		t.Fatalf("first request: status = %d, want 200", rec.Code)
	}
	// Fallback must still key the bucket on the peer, not admit freely.
	if rec := limitedRequest(h, "10.0.0.9:2222"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request from same peer = %d, want 429", rec.Code)
	}
}

func TestRateLimiter_ConcurrentAdmissionsExact(t *testing.T) {
	const limit = 40
	rl := NewRateLimiter(limit, time.Minute, peerExtractor)
	h := rl.Limit(okHandler())

	var allowed, denied atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < limit*2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := limitedRequest(h, "10.1.1.1:5000")
			switch rec.Code {
			case http.StatusOK:
				allowed.Add(1)
			case http.StatusTooManyRequests:
				denied.Add(1)
			}
		}()
	}
	wg.Wait()

	if allowed.Load() != limit || denied.Load() != limit {
		t.Errorf("allowed = %d, denied = %d, want %d each", allowed.Load(), denied.Load(), limit)
	}
}

func TestLogging_EmitsRequestLine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("stored"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/recipes/import?dry_run=1", nil)
	req = req.WithContext(requestid.WithRequestID(req.Context(), "req-log-1"))
	req.Header.Set("User-Agent", "recipebox-test")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	checks := map[string]any{
		"msg":        "request completed",
		"request_id": "req-log-1",
		"method":     "POST",
		"path":       "/recipes/import",
		"query":      "dry_run=1",
		"user_agent": "recipebox-test",
		"status":     float64(http.StatusCreated),
		"bytes":      float64(len("stored")),
	}
	for k, want := range checks {
		if entry[k] != want {
			t.Errorf("%s = %v, want %v", k, entry[k], want)
		}
	}
}

func TestRecover_TurnsPanicInto500(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := Recover(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("parser exploded")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recipes", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "parser exploded") {
		t.Error("panic detail leaked into the response body")
	}
	if !strings.Contains(buf.String(), "panic recovered") ||
		!strings.Contains(buf.String(), "parser exploded") {
		t.Error("panic should be logged with its value")
	}
}

func TestRecover_PassesThroughWithoutPanic(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	h := Recover(logger)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recipes", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestLimitRequestBody(t *testing.T) {
	const bodyCap = 64
	var readErr error
	h := LimitRequestBody(bodyCap)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	t.Run("under the cap", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/recipes/import",
			strings.NewReader(strings.Repeat("a", bodyCap)))
		h.ServeHTTP(httptest.NewRecorder(), req)
		if readErr != nil {
			t.Errorf("body at the cap should read cleanly: %v", readErr)
		}
	})

	t.Run("over the cap", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/recipes/import",
			strings.NewReader(strings.Repeat("a", bodyCap+1)))
		h.ServeHTTP(httptest.NewRecorder(), req)
		var maxErr *http.MaxBytesError
		if !errors.As(readErr, &maxErr) {
			t.Errorf("read past the cap should fail with MaxBytesError, got %v", readErr)
		}
	})
}
