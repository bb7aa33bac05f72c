// Package fetcher retrieves user-supplied URLs safely. It is the only code in
// the application that opens connections to attacker-controlled targets, so
// everything here is written against an adversary: every hostname is resolved
// and classified before it is dialed, redirects are followed manually with
// re-validation per hop, response bodies are read through a hard byte cap,
// and one wall-clock deadline covers the whole chain.
package fetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"syscall"
	"time"

	"recipebox/internal/observability/metrics"
	"recipebox/internal/usecase/importer"
	"recipebox/pkg/security/addrguard"
)

// errDialBlocked is returned by the socket-level control hook when a
// connection is about to be opened to a blocked address. The guard should
// have refused such targets already; the hook closes the window between
// DNS validation and connect, where a short-TTL record could otherwise swap
// in a private address.
var errDialBlocked = errors.New("dial to blocked address refused")

// hostGuard validates a hostname's resolved addresses before it is dialed.
// *addrguard.Guard satisfies it.
type hostGuard interface {
	ResolveAndCheck(ctx context.Context, hostname string) ([]netip.Addr, error)
}

// SafeFetcher performs guarded HTTP retrieval of user-supplied URLs.
//
// Redirect handling is deliberately manual. The HTTP client's automatic
// following is disabled with ErrUseLastResponse because it offers no hook to
// re-validate an intermediate host before connecting to it: a permitted
// public host may redirect to a private address after the initial guard has
// passed. The loop here guards every hop, bounded by a hop counter and a
// single deadline shared across the chain.
//
// Thread safety: SafeFetcher is safe for concurrent use.
type SafeFetcher struct {
	client *http.Client
	guard  hostGuard
	cfg    Config
}

// New creates a SafeFetcher. A nil guard selects a default-resolver guard.
func New(guard *addrguard.Guard, cfg Config) *SafeFetcher {
	if guard == nil {
		guard = addrguard.NewGuard(nil)
	}

	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   refuseBlockedAddr,
	}

	client := &http.Client{
		Transport: &http.Transport{
			// No proxy: a proxy would dial on our behalf and bypass
			// the address checks entirely.
			Proxy:               nil,
			DialContext:         dialer.DialContext,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12, // Enforce TLS 1.2+
			},
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &SafeFetcher{
		client: client,
		guard:  guard,
		cfg:    cfg,
	}
}

// refuseBlockedAddr is the socket-level last line of defense: it classifies
// the literal address actually being connected to, after all name resolution
// has happened.
func refuseBlockedAddr(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: unparseable dial address %q", errDialBlocked, address)
	}
	if addrguard.IsBlockedAddrString(host) {
		return fmt.Errorf("%w: %s", errDialBlocked, host)
	}
	return nil
}

// Fetch retrieves rawURL, following up to MaxRedirects redirect hops, and
// returns the terminal response with its body unread. The caller inspects
// status and content type, then reads through ReadBody; Close must always
// be called.
//
// The whole operation, DNS and connects and all hops and the later body
// read, shares one deadline of cfg.FetchTimeout.
//
// Errors: importer.ErrInvalidURL, importer.ErrBlockedTarget,
// importer.ErrTooManyRedirects, importer.ErrTimeout, importer.ErrUnreachable.
func (f *SafeFetcher) Fetch(ctx context.Context, rawURL string) (importer.FetchedPage, error) {
	initial, err := parseTarget(rawURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.FetchTimeout)

	current := initial
	for hop := 0; hop <= f.cfg.MaxRedirects; hop++ {
		if _, err := f.guard.ResolveAndCheck(ctx, current.Hostname()); err != nil {
			cancel()
			return nil, guardFailure(err, hop)
		}

		resp, err := f.do(ctx, current)
		if err != nil {
			cancel()
			return nil, transportFailure(ctx, err)
		}

		location := resp.Header.Get("Location")
		if resp.StatusCode < 300 || resp.StatusCode > 399 || location == "" {
			// Terminal response. A 3xx without Location is terminal
			// too; there is nowhere to go.
			metrics.RecordRedirectHops(hop)
			return &fetchedPage{resp: resp, cancel: cancel}, nil
		}

		next, err := redirectTarget(current, location)
		drainAndClose(resp.Body)
		if err != nil {
			metrics.RecordSSRFBlocked("redirect")
			cancel()
			return nil, err
		}
		current = next
	}

	cancel()
	return nil, fmt.Errorf("%w: more than %d hops", importer.ErrTooManyRedirects, f.cfg.MaxRedirects)
}

// do issues one GET for one hop. No cookies, no credentials, no conditional
// headers: each hop gets a fresh anonymous request.
func (f *SafeFetcher) do(ctx context.Context, target *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", importer.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html, application/xhtml+xml")

	return f.client.Do(req)
}

// parseTarget validates the caller-supplied URL before any network access:
// parseable, http(s) scheme, a hostname, and no non-standard port.
func parseTarget(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", importer.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q not allowed", importer.ErrInvalidURL, u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: empty hostname", importer.ErrInvalidURL)
	}
	if !standardPort(u) {
		return nil, fmt.Errorf("%w: non-standard port %s", importer.ErrInvalidURL, u.Port())
	}
	return u, nil
}

// redirectTarget resolves a Location header against the current URL and
// applies the same scheme and port policy as the initial target. A violation
// here is a blocked target, not invalid input: the caller did not choose it,
// the upstream did, and the opaque SSRF response must not reveal which rule
// refused it.
func redirectTarget(current *url.URL, location string) (*url.URL, error) {
	next, err := current.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("%w: unparseable redirect location", importer.ErrBlockedTarget)
	}
	if next.Scheme != "http" && next.Scheme != "https" {
		return nil, fmt.Errorf("%w: redirect to scheme %q", importer.ErrBlockedTarget, next.Scheme)
	}
	if next.Hostname() == "" {
		return nil, fmt.Errorf("%w: redirect without hostname", importer.ErrBlockedTarget)
	}
	if !standardPort(next) {
		return nil, fmt.Errorf("%w: redirect to non-standard port", importer.ErrBlockedTarget)
	}
	return next, nil
}

// standardPort reports whether u carries no explicit port or one matching
// its scheme's default.
func standardPort(u *url.URL) bool {
	port := u.Port()
	return port == "" || port == "80" || port == "443"
}

// guardFailure maps a guard error onto the importer's taxonomy, recording
// where in the chain the refusal happened.
func guardFailure(err error, hop int) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", importer.ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	hopLabel := "initial"
	if hop > 0 {
		hopLabel = "redirect"
	}
	metrics.RecordSSRFBlocked(hopLabel)
	return fmt.Errorf("%w: %v", importer.ErrBlockedTarget, err)
}

// transportFailure maps a transport error onto the importer's taxonomy.
func transportFailure(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded:
		return fmt.Errorf("%w: %v", importer.ErrTimeout, err)
	case errors.Is(err, context.Canceled) || ctx.Err() == context.Canceled:
		// Caller abandonment, not an upstream failure. Propagated as-is
		// so the handler can tell the two apart.
		return err
	case errors.Is(err, errDialBlocked):
		metrics.RecordSSRFBlocked("dial")
		return fmt.Errorf("%w: connection refused by address policy", importer.ErrBlockedTarget)
	default:
		return fmt.Errorf("%w: %v", importer.ErrUnreachable, err)
	}
}

// drainAndClose reads a bounded amount of a redirect body before closing so
// the connection can be reused.
func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
	_ = body.Close()
}

// fetchedPage wraps a terminal response and the cancel func that releases
// the fetch deadline.
type fetchedPage struct {
	resp   *http.Response
	cancel context.CancelFunc
}

// StatusCode returns the HTTP status of the terminal response.
func (p *fetchedPage) StatusCode() int {
	return p.resp.StatusCode
}

// ContentType returns the Content-Type header value.
func (p *fetchedPage) ContentType() string {
	return p.resp.Header.Get("Content-Type")
}

// FinalURL returns the URL the terminal response was served from.
func (p *fetchedPage) FinalURL() string {
	if p.resp.Request != nil && p.resp.Request.URL != nil {
		return p.resp.Request.URL.String()
	}
	return ""
}

// ReadBody streams the body up to maxBytes.
//
// A declared Content-Length over the cap is rejected before a single body
// byte is read; that header is an optimization, not the enforcement. The
// enforcement is the capped read itself: at most maxBytes+1 bytes are ever
// consumed, and the moment the count exceeds the cap the body is closed,
// aborting the in-flight transfer.
func (p *fetchedPage) ReadBody(maxBytes int64) ([]byte, error) {
	if cl := p.resp.ContentLength; cl > maxBytes {
		return nil, fmt.Errorf("%w: declared %d bytes exceeds cap %d", importer.ErrBodyTooLarge, cl, maxBytes)
	}

	body, err := io.ReadAll(io.LimitReader(p.resp.Body, maxBytes+1))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: body read: %v", importer.ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: body read: %v", importer.ErrUnreachable, err)
	}

	if int64(len(body)) > maxBytes {
		_ = p.resp.Body.Close()
		return nil, fmt.Errorf("%w: body exceeds cap %d", importer.ErrBodyTooLarge, maxBytes)
	}

	return body, nil
}

// Close aborts any in-flight transfer and releases the fetch deadline.
func (p *fetchedPage) Close() error {
	p.cancel()
	return p.resp.Body.Close()
}
