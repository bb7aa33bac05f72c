// Package renderer is the HTTP client for the headless render service used
// as the extraction fallback for JavaScript-heavy pages. Rendering is the
// most expensive call in the import pipeline, so the client throttles itself
// with a token bucket and sits behind a circuit breaker; the pipeline treats
// every failure here as "no rendered HTML", never as a request error.
package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"recipebox/internal/observability/metrics"
	"recipebox/internal/resilience/circuitbreaker"
	"recipebox/internal/resilience/retry"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// maxRenderedBytes caps the rendered HTML read. Rendered pages grow past
// their static size, so this is generous.
const maxRenderedBytes = 20 * 1024 * 1024

// Client talks to the render service.
//
// Thread safety: Client is safe for concurrent use.
type Client struct {
	endpoint       string
	httpClient     *http.Client
	limiter        *rate.Limiter
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// renderRequest is the render service request body.
type renderRequest struct {
	URL string `json:"url"`
}

// renderResponse is the render service response body.
type renderResponse struct {
	HTML string `json:"html"`
}

// NewClient creates a render service client. Returns nil when cfg.Endpoint is
// empty: a nil *Client is not usable, so callers wire the import pipeline's
// Renderer to nil in that case and the fallback is skipped.
func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		return nil
	}

	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:        rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		circuitBreaker: circuitbreaker.New(circuitbreaker.RenderServiceConfig()),
		retryConfig:    retry.RenderServiceConfig(),
	}
}

// Render asks the service to load url in a browser environment and returns
// the rendered HTML. An empty string with a nil error means the service
// produced nothing usable.
func (c *Client) Render(ctx context.Context, url string) (string, error) {
	// Waiting for a token respects the request deadline; under pressure
	// the fallback degrades instead of queueing.
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.RecordRenderFallback("error")
		return "", fmt.Errorf("render throttle: %w", err)
	}

	var html string
	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doRender(ctx, url)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("render circuit breaker open, request rejected",
					slog.String("service", "render-service"),
					slog.String("url", url))
			}
			return err
		}
		html = result.(string)
		return nil
	})
	if retryErr != nil {
		metrics.RecordRenderFallback("error")
		return "", retryErr
	}

	if html == "" {
		metrics.RecordRenderFallback("empty")
		return "", nil
	}
	metrics.RecordRenderFallback("rendered")
	return html, nil
}

// doRender performs one render call without retry or circuit breaker.
func (c *Client) doRender(ctx context.Context, url string) (string, error) {
	payload, err := json.Marshal(renderRequest{URL: url})
	if err != nil {
		return "", fmt.Errorf("encode render request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/render", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("render request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("render service returned %s", resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRenderedBytes))
	if err != nil {
		return "", fmt.Errorf("read render response: %w", err)
	}

	var rr renderResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return "", fmt.Errorf("decode render response: %w", err)
	}
	return rr.HTML, nil
}

// Ping probes the render service health endpoint. Used by the readiness
// check; failures there mark the service degraded, they do not fail requests.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("render service unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("render service unhealthy: %s", resp.Status)
	}
	return nil
}
