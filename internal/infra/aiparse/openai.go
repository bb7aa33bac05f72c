package aiparse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"recipebox/internal/domain/entity"
	"recipebox/internal/resilience/circuitbreaker"
	"recipebox/internal/resilience/retry"
	"recipebox/internal/utils/text"
)

// OpenAI extracts recipes using OpenAI's chat completion API. It includes
// circuit breaker and retry logic for improved reliability.
type OpenAI struct {
	client          *openai.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	model           string
	timeout         time.Duration
	metricsRecorder ParseMetricsRecorder
}

// NewOpenAI creates a new OpenAI recipe parser with the given API key.
func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{
		client:          openai.NewClient(apiKey),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:     retry.AIAPIConfig(),
		model:           openai.GPT4oMini,
		timeout:         60 * time.Second,
		metricsRecorder: NewPrometheusParseMetrics(),
	}
}

// Parse asks the model to extract a recipe from the page text. A nil recipe
// with a nil error means the model judged the page to carry no recipe.
func (o *OpenAI) Parse(ctx context.Context, pageText string, sourceURL string) (*entity.Recipe, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	var answer string
	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doParse(ctx, pageText, sourceURL)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("openai api circuit breaker open, request rejected",
					slog.String("service", "openai-api"),
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("openai api unavailable: circuit breaker open")
			}
			return err
		}
		answer = cbResult.(string)
		return nil
	})
	if retryErr != nil {
		o.metricsRecorder.RecordOutcome("error")
		return nil, fmt.Errorf("openai parse failed after retries: %w", retryErr)
	}

	recipe, err := decodeRecipe(answer)
	if err != nil {
		o.metricsRecorder.RecordOutcome("error")
		return nil, err
	}
	if recipe == nil {
		o.metricsRecorder.RecordOutcome("none")
	} else {
		o.metricsRecorder.RecordOutcome("found")
	}
	return recipe, nil
}

// doParse performs the actual API call without retry or circuit breaker.
func (o *OpenAI) doParse(ctx context.Context, pageText string, sourceURL string) (string, error) {
	input := truncateInput(pageText)
	inputLength := text.CountRunes(input)
	o.metricsRecorder.RecordInputLength(inputLength)

	slog.InfoContext(ctx, "Starting AI recipe extraction",
		slog.String("provider", "openai"),
		slog.String("url", sourceURL),
		slog.Int("input_length", inputLength))

	start := time.Now()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: buildPrompt(input),
		}},
	})

	duration := time.Since(start)
	o.metricsRecorder.RecordDuration(duration)

	if err != nil {
		slog.ErrorContext(ctx, "AI recipe extraction failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		slog.ErrorContext(ctx, "OpenAI API returned empty response",
			slog.Duration("duration", duration))
		return "", fmt.Errorf("openai api returned empty response")
	}

	slog.InfoContext(ctx, "AI recipe extraction completed",
		slog.Duration("duration", duration))

	return resp.Choices[0].Message.Content, nil
}
