package aiparse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"recipebox/internal/domain/entity"
	"recipebox/internal/resilience/circuitbreaker"
	"recipebox/internal/resilience/retry"
	"recipebox/internal/utils/text"
)

// Claude extracts recipes using Anthropic's Claude API. It includes circuit
// breaker and retry logic for improved reliability.
type Claude struct {
	client          anthropic.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	model           string
	maxTokens       int
	timeout         time.Duration
	metricsRecorder ParseMetricsRecorder
}

// NewClaude creates a new Claude recipe parser with the given API key.
func NewClaude(apiKey string) *Claude {
	return &Claude{
		client:          anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryConfig:     retry.AIAPIConfig(),
		model:           string(anthropic.ModelClaudeSonnet4_5_20250929),
		maxTokens:       2048,
		timeout:         60 * time.Second,
		metricsRecorder: NewPrometheusParseMetrics(),
	}
}

// Parse asks Claude to extract a recipe from the page text. A nil recipe with
// a nil error means the model judged the page to carry no recipe.
func (c *Claude) Parse(ctx context.Context, pageText string, sourceURL string) (*entity.Recipe, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var answer string
	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doParse(ctx, pageText, sourceURL)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("claude api circuit breaker open, request rejected",
					slog.String("service", "claude-api"),
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("claude api unavailable: circuit breaker open")
			}
			return err
		}
		answer = cbResult.(string)
		return nil
	})
	if retryErr != nil {
		c.metricsRecorder.RecordOutcome("error")
		return nil, fmt.Errorf("claude parse failed after retries: %w", retryErr)
	}

	recipe, err := decodeRecipe(answer)
	if err != nil {
		c.metricsRecorder.RecordOutcome("error")
		return nil, err
	}
	if recipe == nil {
		c.metricsRecorder.RecordOutcome("none")
	} else {
		c.metricsRecorder.RecordOutcome("found")
	}
	return recipe, nil
}

// doParse performs the actual API call without retry or circuit breaker.
func (c *Claude) doParse(ctx context.Context, pageText string, sourceURL string) (string, error) {
	requestID := uuid.New().String()

	input := truncateInput(pageText)
	inputLength := text.CountRunes(input)
	c.metricsRecorder.RecordInputLength(inputLength)

	slog.InfoContext(ctx, "Starting AI recipe extraction",
		slog.String("request_id", requestID),
		slog.String("provider", "claude"),
		slog.String("url", sourceURL),
		slog.Int("input_length", inputLength))

	start := time.Now()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(buildPrompt(input)),
			),
		},
	})

	duration := time.Since(start)
	c.metricsRecorder.RecordDuration(duration)

	if err != nil {
		slog.ErrorContext(ctx, "AI recipe extraction failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		slog.ErrorContext(ctx, "Claude API returned empty response",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration))
		return "", fmt.Errorf("claude api returned empty response")
	}

	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		slog.ErrorContext(ctx, "Claude API returned unexpected response type",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration))
		return "", fmt.Errorf("claude api returned unexpected response type")
	}

	slog.InfoContext(ctx, "AI recipe extraction completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", duration))

	return textBlock.Text, nil
}
