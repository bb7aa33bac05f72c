package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func serveWithMiddleware(t *testing.T, r *http.Request) (*httptest.ResponseRecorder, string) {
	t.Helper()
	var seen string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec, seen
}

func TestMiddleware_GeneratesID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/recipes", nil)
	rec, seen := serveWithMiddleware(t, req)

	echoed := rec.Header().Get(RequestIDHeader)
	if echoed == "" {
		t.Fatal("response missing X-Request-ID")
	}
	if _, err := uuid.Parse(echoed); err != nil {
		t.Errorf("generated ID %q is not a UUID: %v", echoed, err)
	}
	if seen != echoed {
		t.Errorf("context ID %q != response header %q", seen, echoed)
	}
}

func TestMiddleware_PropagatesCallerID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/recipes", nil)
	req.Header.Set(RequestIDHeader, "import-trace-42")

	rec, seen := serveWithMiddleware(t, req)

	if got := rec.Header().Get(RequestIDHeader); got != "import-trace-42" {
		t.Errorf("echoed ID = %q, want caller's", got)
	}
	if seen != "import-trace-42" {
		t.Errorf("context ID = %q, want caller's", seen)
	}
}

func TestFromContext_EmptyWithoutID(t *testing.T) {
	if got := FromContext(context.Background()); got != "" {
		t.Errorf("FromContext on bare context = %q, want empty", got)
	}
}

func TestWithRequestID_RoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc-123")
	if got := FromContext(ctx); got != "abc-123" {
		t.Errorf("FromContext = %q, want abc-123", got)
	}
}
