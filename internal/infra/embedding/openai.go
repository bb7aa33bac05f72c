// Package embedding provides embedding providers for recipe similarity
// search. The OpenAI provider is the production implementation; NoOp serves
// environments where the feature is disabled.
package embedding

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
	"recipebox/internal/usecase/ai"
)

// embedTimeout is the per-call ceiling for an embedding request.
const embedTimeout = 30 * time.Second

// OpenAI generates embeddings via OpenAI's embeddings API. It includes
// circuit breaker and retry logic for improved reliability.
type OpenAI struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	model          openai.EmbeddingModel
}

// NewOpenAI creates a new OpenAI embedding provider with the given API key.
func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{
		client:         openai.NewClient(apiKey),
		circuitBreaker: circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		model:          openai.SmallEmbedding3,
	}
}

// Embed generates an embedding vector for the given text.
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()

	var vector []float32
	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doEmbed(ctx, text)
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
		vector = cbResult.([]float32)
		return nil
	})
	if retryErr != nil {
		return nil, fmt.Errorf("openai embed failed after retries: %w", retryErr)
	}

	return vector, nil
}

// doEmbed performs the actual API call without retry or circuit breaker.
func (o *OpenAI) doEmbed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()

	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: o.model,
	})

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "Embedding generation failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("openai embeddings api error: %w", err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		slog.ErrorContext(ctx, "OpenAI embeddings API returned empty response",
			slog.Duration("duration", duration))
		return nil, fmt.Errorf("openai embeddings api returned empty response")
	}

	return resp.Data[0].Embedding, nil
}

// Model returns the model identifier embeddings are generated with.
func (o *OpenAI) Model() string {
	return string(o.model)
}

// Name identifies the provider for persistence and logs.
func (o *OpenAI) Name() entity.EmbeddingProvider {
	return entity.EmbeddingProviderOpenAI
}

// Health probes the OpenAI API with a model listing call. The probe is free
// of token cost and exercises the same auth and network path as embedding
// requests. Circuit breaker state is reported alongside so the readiness
// endpoint can distinguish a tripped breaker from a transient failure.
func (o *OpenAI) Health(ctx context.Context) (*ai.HealthStatus, error) {
	circuitOpen := o.circuitBreaker.IsOpen()

	start := time.Now()
	_, err := o.client.ListModels(ctx)
	latency := time.Since(start)

	if err != nil {
		return &ai.HealthStatus{
			Healthy:     false,
			Message:     err.Error(),
			Latency:     latency,
			CircuitOpen: circuitOpen,
		}, nil
	}

	return &ai.HealthStatus{
		Healthy:     true,
		Latency:     latency,
		CircuitOpen: circuitOpen,
	}, nil
}
