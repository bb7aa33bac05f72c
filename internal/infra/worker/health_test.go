package worker

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recipebox/internal/handler/http/respond"
)

func testHealthServer(t *testing.T) (*HealthServer, *httptest.Server) {
	t.Helper()

	h := NewHealthServer(":0", slog.New(slog.NewTextHandler(io.Discard, nil)))

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if !h.ready.Load() {
			respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return h, srv
}

func getStatus(t *testing.T, url string) (int, string) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, body.Status
}

func TestHealthServer_Liveness(t *testing.T) {
	_, srv := testHealthServer(t)

	code, status := getStatus(t, srv.URL+"/health")
	if code != http.StatusOK || status != "ok" {
		t.Errorf("liveness = %d %q, want 200 ok", code, status)
	}
}

func TestHealthServer_ReadinessFollowsSetReady(t *testing.T) {
	h, srv := testHealthServer(t)

	// Fresh worker has not registered its schedule yet.
	code, status := getStatus(t, srv.URL+"/health/ready")
	if code != http.StatusServiceUnavailable || status != "not ready" {
		t.Errorf("initial readiness = %d %q, want 503 not ready", code, status)
	}

	h.SetReady(true)
	code, status = getStatus(t, srv.URL+"/health/ready")
	if code != http.StatusOK || status != "ok" {
		t.Errorf("readiness after SetReady(true) = %d %q, want 200 ok", code, status)
	}

	// Shutdown path flips it back.
	h.SetReady(false)
	code, _ = getStatus(t, srv.URL+"/health/ready")
	if code != http.StatusServiceUnavailable {
		t.Errorf("readiness after SetReady(false) = %d, want 503", code)
	}
}

func TestHealthServer_StartAndShutdown(t *testing.T) {
	h := NewHealthServer("127.0.0.1:0", slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- h.Start(ctx)
	}()

	// Give ListenAndServe a moment, then cancel for graceful shutdown.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errChan:
		if err != http.ErrServerClosed {
			t.Errorf("Start() = %v, want http.ErrServerClosed", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
