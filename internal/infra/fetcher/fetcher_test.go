package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"recipebox/internal/usecase/importer"
	"recipebox/pkg/security/addrguard"
)

// fakeGuard approves every hostname except the ones listed as blocked,
// without touching DNS.
type fakeGuard struct {
	blocked map[string]bool
	calls   []string
}

func (g *fakeGuard) ResolveAndCheck(_ context.Context, hostname string) ([]netip.Addr, error) {
	g.calls = append(g.calls, hostname)
	if g.blocked[hostname] {
		return nil, fmt.Errorf("%w: %s", addrguard.ErrAddrBlocked, hostname)
	}
	return []netip.Addr{netip.MustParseAddr("203.0.114.10")}, nil
}

// newTestFetcher returns a SafeFetcher whose transport dials the test server
// regardless of the requested host, so test URLs can use standard ports and
// arbitrary hostnames while the traffic lands on the httptest listener.
func newTestFetcher(t *testing.T, srv *httptest.Server, guard *fakeGuard, cfg Config) *SafeFetcher {
	t.Helper()

	f := New(nil, cfg)
	f.guard = guard
	f.client = &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, network, srv.Listener.Addr().String())
			},
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return f
}

func TestFetch_Terminal200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body>hello</body></html>")
	}))
	defer srv.Close()

	guard := &fakeGuard{}
	f := newTestFetcher(t, srv, guard, DefaultConfig())

	page, err := f.Fetch(context.Background(), "http://recipes.example/pasta")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	defer func() { _ = page.Close() }()

	if page.StatusCode() != http.StatusOK {
		t.Errorf("StatusCode() = %d, want 200", page.StatusCode())
	}
	if ct := page.ContentType(); !strings.Contains(ct, "text/html") {
		t.Errorf("ContentType() = %q, want text/html", ct)
	}

	body, err := page.ReadBody(1 << 20)
	if err != nil {
		t.Fatalf("ReadBody() error = %v", err)
	}
	if !strings.Contains(string(body), "hello") {
		t.Errorf("body = %q, want it to contain %q", body, "hello")
	}

	if len(guard.calls) != 1 || guard.calls[0] != "recipes.example" {
		t.Errorf("guard calls = %v, want exactly [recipes.example]", guard.calls)
	}
}

func TestFetch_InvalidInput(t *testing.T) {
	f := New(nil, DefaultConfig())
	f.guard = &fakeGuard{} // must never be reached

	tests := []struct {
		name string
		url  string
	}{
		{name: "unsupported scheme", url: "ftp://example.com/file"},
		{name: "no scheme", url: "example.com/recipe"},
		{name: "empty hostname", url: "http:///recipe"},
		{name: "non-standard port", url: "https://example.com:8443/recipe"},
		{name: "garbage", url: "http://exa mple.com/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Fetch(context.Background(), tt.url)
			if !errors.Is(err, importer.ErrInvalidURL) {
				t.Errorf("Fetch(%q) error = %v, want ErrInvalidURL", tt.url, err)
			}
		})
	}
}

func TestFetch_ExplicitStandardPortAllowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := newTestFetcher(t, srv, &fakeGuard{}, DefaultConfig())

	page, err := f.Fetch(context.Background(), "http://recipes.example:80/pasta")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	_ = page.Close()
}

func TestFetch_BlockedInitialHost(t *testing.T) {
	f := New(nil, DefaultConfig())
	f.guard = &fakeGuard{blocked: map[string]bool{"169.254.169.254": true}}

	_, err := f.Fetch(context.Background(), "http://169.254.169.254/latest/meta-data/")
	if !errors.Is(err, importer.ErrBlockedTarget) {
		t.Fatalf("Fetch() error = %v, want ErrBlockedTarget", err)
	}
}

func TestFetch_RedirectChainWithinLimit(t *testing.T) {
	// A chain of exactly MaxRedirects hops must be accepted.
	const maxRedirects = 5

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var hop int
		_, _ = fmt.Sscanf(r.URL.Path, "/hop/%d", &hop)
		if hop < maxRedirects {
			http.Redirect(w, r, fmt.Sprintf("http://recipes.example/hop/%d", hop+1), http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html>done</html>")
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.MaxRedirects = maxRedirects
	guard := &fakeGuard{}
	f := newTestFetcher(t, srv, guard, cfg)

	page, err := f.Fetch(context.Background(), "http://recipes.example/hop/0")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	defer func() { _ = page.Close() }()

	if page.StatusCode() != http.StatusOK {
		t.Errorf("StatusCode() = %d, want 200", page.StatusCode())
	}
	// Every hop, initial included, must have been guarded.
	if len(guard.calls) != maxRedirects+1 {
		t.Errorf("guard called %d times, want %d (one per hop)", len(guard.calls), maxRedirects+1)
	}
}

func TestFetch_RedirectChainOverLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Endless redirect loop.
		http.Redirect(w, r, "http://recipes.example/again", http.StatusFound)
	}))
	defer srv.Close()

	f := newTestFetcher(t, srv, &fakeGuard{}, DefaultConfig())

	_, err := f.Fetch(context.Background(), "http://recipes.example/start")
	if !errors.Is(err, importer.ErrTooManyRedirects) {
		t.Fatalf("Fetch() error = %v, want ErrTooManyRedirects", err)
	}
}

func TestFetch_RedirectToBlockedHost(t *testing.T) {
	// Hop 1 is public, hop 2 resolves to a blocked address. The chain must
	// be rejected at hop 2, not accepted because hop 1 passed.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "http://internal.example/admin", http.StatusMovedPermanently)
	}))
	defer srv.Close()

	guard := &fakeGuard{blocked: map[string]bool{"internal.example": true}}
	f := newTestFetcher(t, srv, guard, DefaultConfig())

	_, err := f.Fetch(context.Background(), "http://recipes.example/page")
	if !errors.Is(err, importer.ErrBlockedTarget) {
		t.Fatalf("Fetch() error = %v, want ErrBlockedTarget", err)
	}
	if len(guard.calls) != 2 {
		t.Errorf("guard called %d times, want 2 (initial + redirect target)", len(guard.calls))
	}
}

func TestFetch_RedirectPolicyViolations(t *testing.T) {
	tests := []struct {
		name     string
		location string
	}{
		{name: "disallowed scheme", location: "ftp://recipes.example/file"},
		{name: "non-standard port", location: "http://recipes.example:8080/page"},
		{name: "scheme-only garbage", location: "gopher://x/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Location", tt.location)
				w.WriteHeader(http.StatusFound)
			}))
			defer srv.Close()

			f := newTestFetcher(t, srv, &fakeGuard{}, DefaultConfig())

			_, err := f.Fetch(context.Background(), "http://recipes.example/page")
			if !errors.Is(err, importer.ErrBlockedTarget) {
				t.Errorf("Fetch() error = %v, want ErrBlockedTarget", err)
			}
		})
	}
}

func TestFetch_RelativeRedirectResolved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusFound)
			return
		}
		if r.URL.Path != "/new" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := newTestFetcher(t, srv, &fakeGuard{}, DefaultConfig())

	page, err := f.Fetch(context.Background(), "http://recipes.example/old")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	defer func() { _ = page.Close() }()

	if got := page.FinalURL(); !strings.HasSuffix(got, "/new") {
		t.Errorf("FinalURL() = %q, want it to end in /new", got)
	}
}

func TestFetch_RedirectWithoutLocationIsTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer srv.Close()

	f := newTestFetcher(t, srv, &fakeGuard{}, DefaultConfig())

	page, err := f.Fetch(context.Background(), "http://recipes.example/page")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	defer func() { _ = page.Close() }()

	if page.StatusCode() != http.StatusNotModified {
		t.Errorf("StatusCode() = %d, want 304", page.StatusCode())
	}
}

func TestFetch_DeadlineCoversWholeChain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(150 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.FetchTimeout = 50 * time.Millisecond
	f := newTestFetcher(t, srv, &fakeGuard{}, cfg)

	_, err := f.Fetch(context.Background(), "http://recipes.example/slow")
	if !errors.Is(err, importer.ErrTimeout) {
		t.Fatalf("Fetch() error = %v, want ErrTimeout", err)
	}
}

func TestFetch_CallerCancellationPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := newTestFetcher(t, srv, &fakeGuard{}, DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	_, err := f.Fetch(ctx, "http://recipes.example/slow")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Fetch() error = %v, want context.Canceled", err)
	}
	if errors.Is(err, importer.ErrTimeout) || errors.Is(err, importer.ErrUnreachable) {
		t.Errorf("cancellation must stay distinct from fetch failures, got %v", err)
	}
}

func TestReadBody_DeclaredLengthOverCap(t *testing.T) {
	bodyRead := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "2048")
		w.WriteHeader(http.StatusOK)
		bodyRead = true
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	f := newTestFetcher(t, srv, &fakeGuard{}, DefaultConfig())

	page, err := f.Fetch(context.Background(), "http://recipes.example/big")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	defer func() { _ = page.Close() }()

	_, err = page.ReadBody(1024)
	if !errors.Is(err, importer.ErrBodyTooLarge) {
		t.Fatalf("ReadBody() error = %v, want ErrBodyTooLarge", err)
	}
	_ = bodyRead // the declared length triggers the rejection, not the bytes
}

func TestReadBody_StreamedOverCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Chunked response without Content-Length, larger than the cap.
		f, _ := w.(http.Flusher)
		chunk := make([]byte, 512)
		for i := 0; i < 10; i++ {
			_, _ = w.Write(chunk)
			if f != nil {
				f.Flush()
			}
		}
	}))
	defer srv.Close()

	sf := newTestFetcher(t, srv, &fakeGuard{}, DefaultConfig())

	page, err := sf.Fetch(context.Background(), "http://recipes.example/stream")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	defer func() { _ = page.Close() }()

	_, err = page.ReadBody(1024)
	if !errors.Is(err, importer.ErrBodyTooLarge) {
		t.Fatalf("ReadBody() error = %v, want ErrBodyTooLarge", err)
	}
}

func TestReadBody_ExactCapAllowed(t *testing.T) {
	const size = 1024
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, size))
	}))
	defer srv.Close()

	f := newTestFetcher(t, srv, &fakeGuard{}, DefaultConfig())

	page, err := f.Fetch(context.Background(), "http://recipes.example/exact")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	defer func() { _ = page.Close() }()

	body, err := page.ReadBody(size)
	if err != nil {
		t.Fatalf("ReadBody() error = %v", err)
	}
	if len(body) != size {
		t.Errorf("len(body) = %d, want %d", len(body), size)
	}
}

func TestRefuseBlockedAddr(t *testing.T) {
	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{name: "loopback", address: "127.0.0.1:80", wantErr: true},
		{name: "metadata endpoint", address: "169.254.169.254:80", wantErr: true},
		{name: "private", address: "10.1.2.3:443", wantErr: true},
		{name: "ipv6 loopback", address: "[::1]:443", wantErr: true},
		{name: "public", address: "93.184.216.34:443", wantErr: false},
		{name: "unparseable", address: "not-an-address", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := refuseBlockedAddr("tcp", tt.address, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("refuseBlockedAddr(%q) error = %v, wantErr %v", tt.address, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errDialBlocked) {
				t.Errorf("refuseBlockedAddr(%q) error = %v, want errDialBlocked", tt.address, err)
			}
		})
	}
}

func TestFetch_NoCookiesOrCredentialsForwarded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c := r.Header.Get("Cookie"); c != "" {
			t.Errorf("Cookie header forwarded: %q", c)
		}
		if a := r.Header.Get("Authorization"); a != "" {
			t.Errorf("Authorization header forwarded: %q", a)
		}
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "RecipeBoxBot/") {
			t.Errorf("User-Agent = %q, want RecipeBoxBot prefix", ua)
		}
		w.Header().Set("Set-Cookie", "session=abc")
		http.Redirect(w, r, "http://recipes.example/second", http.StatusFound)
	}))
	defer srv.Close()

	f := newTestFetcher(t, srv, &fakeGuard{}, DefaultConfig())

	// The redirect loops forever, so this ends in ErrTooManyRedirects; the
	// handler assertions above are what the test is about.
	_, err := f.Fetch(context.Background(), "http://recipes.example/first")
	if !errors.Is(err, importer.ErrTooManyRedirects) {
		t.Fatalf("Fetch() error = %v, want ErrTooManyRedirects", err)
	}
}
