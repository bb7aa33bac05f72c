package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"recipebox/internal/resilience/circuitbreaker"
	"recipebox/internal/resilience/retry"
)

// SlackConfig contains configuration for Slack-compatible webhook
// notifications.
type SlackConfig struct {
	// Enabled indicates whether webhook notifications are enabled
	Enabled bool

	// WebhookURL is the Incoming Webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout per webhook call
	Timeout time.Duration
}

// SlackNotifier sends link verification reports to a Slack-compatible
// Incoming Webhook.
type SlackNotifier struct {
	config         SlackConfig
	httpClient     *http.Client
	rateLimiter    *RateLimiter
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewSlackNotifier creates a new SlackNotifier with the specified
// configuration.
//
// The notifier is initialized with:
//   - HTTP client with configured timeout
//   - Rate limiter set to 1 request/second with burst of 1
//     (Slack Webhook limit: 1 message per second)
//   - Circuit breaker and retry policies for the notifier collaborator
func NewSlackNotifier(config SlackConfig) *SlackNotifier {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &SlackNotifier{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter:    NewRateLimiter(1.0, 1), // 1 req/s, burst of 1
		circuitBreaker: circuitbreaker.New(circuitbreaker.NotifierConfig()),
		retryConfig:    retry.NotifierConfig(),
	}
}

// SlackWebhookPayload represents the JSON payload sent to the webhook using
// Block Kit.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`   // Fallback text (required)
	Blocks []SlackBlock `json:"blocks"` // Rich formatting blocks
}

// SlackBlock represents a Slack Block Kit block.
type SlackBlock struct {
	Type     string            `json:"type"`               // "section", "context", "divider"
	Text     *SlackTextObject  `json:"text,omitempty"`     // Text content (for section)
	Elements []SlackTextObject `json:"elements,omitempty"` // Elements (for context)
}

// SlackTextObject represents a text object in Slack Block Kit.
type SlackTextObject struct {
	Type string `json:"type"` // "mrkdwn" or "plain_text"
	Text string `json:"text"` // Actual text content
}

const (
	// Slack Block Kit limits
	maxSectionTextLength = 3000
	maxFallbackLength    = 150

	// Truncation suffix
	slackTruncationSuffix = "..."

	// Cap the dead-link list in the message body
	maxListedDeadLinks = 10
)

// buildBlockKitPayload creates a webhook payload from a link report.
//
// The payload includes:
//   - Text: fallback summary line
//   - Section Block: sweep counts plus up to maxListedDeadLinks newly dead
//     links with titles
//   - Context Block: sweep duration
func (s *SlackNotifier) buildBlockKitPayload(report *LinkReport) SlackWebhookPayload {
	fallbackText := fmt.Sprintf("Link check: %d checked, %d dead", report.Checked, report.Dead)
	fallbackText = truncateText(fallbackText, maxFallbackLength, slackTruncationSuffix)

	sectionText := fmt.Sprintf("*Recipe link verification*\n%d checked ・ %d alive ・ %d dead",
		report.Checked, report.Alive, report.Dead)

	if len(report.NewlyDead) > 0 {
		sectionText += "\n\nNewly dead links:"
		listed := report.NewlyDead
		if len(listed) > maxListedDeadLinks {
			listed = listed[:maxListedDeadLinks]
		}
		for _, dl := range listed {
			sectionText += fmt.Sprintf("\n• <%s|%s> (recipe %d)", dl.URL, dl.Title, dl.RecipeID)
		}
		if remaining := len(report.NewlyDead) - len(listed); remaining > 0 {
			sectionText += fmt.Sprintf("\n… and %d more", remaining)
		}
	}
	sectionText = truncateText(sectionText, maxSectionTextLength, slackTruncationSuffix)

	sectionBlock := SlackBlock{
		Type: "section",
		Text: &SlackTextObject{
			Type: "mrkdwn",
			Text: sectionText,
		},
	}

	contextBlock := SlackBlock{
		Type: "context",
		Elements: []SlackTextObject{
			{
				Type: "mrkdwn",
				Text: fmt.Sprintf("sweep took %s", report.Duration.Round(time.Second)),
			},
		},
	}

	return SlackWebhookPayload{
		Text:   fallbackText,
		Blocks: []SlackBlock{sectionBlock, contextBlock},
	}
}

// sendWebhookRequest sends one webhook POST.
//
// Returns:
//   - nil: request succeeded (2xx)
//   - *retry.HTTPError: non-2xx status, classified for the retry layer
//     (429 carries the Retry-After hint in its message)
//   - other error: network failure
func (s *SlackNotifier) sendWebhookRequest(ctx context.Context, report *LinkReport) error {
	payload := s.buildBlockKitPayload(report)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("webhook rate limited, retry after %s", extractRetryAfter(resp)),
		}
	}

	return &retry.HTTPError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("webhook error: %s", string(body)),
	}
}

// NotifyLinkReport sends a webhook notification for a completed sweep.
// This method implements the Notifier interface.
//
// It performs the following steps:
//  1. Generate unique request_id for tracing
//  2. Apply rate limiting to prevent API abuse (1 req/s, burst of 1)
//  3. Send the webhook request through the circuit breaker with retry
func (s *SlackNotifier) NotifyLinkReport(ctx context.Context, report *LinkReport) error {
	if report == nil {
		return fmt.Errorf("link report is nil")
	}

	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	slog.Info("sending link report notification",
		slog.String("request_id", requestID),
		slog.Int("checked", report.Checked),
		slog.Int("dead", report.Dead))

	if err := s.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	err := retry.WithBackoff(ctx, s.retryConfig, func() error {
		_, execErr := s.circuitBreaker.Execute(func() (interface{}, error) {
			return nil, s.sendWebhookRequest(ctx, report)
		})
		return execErr
	})
	if err != nil {
		slog.Error("link report notification failed",
			slog.String("request_id", requestID),
			slog.Any("error", err))
		return fmt.Errorf("notify link report: %w", err)
	}

	slog.Info("link report notification sent",
		slog.String("request_id", requestID))
	return nil
}
