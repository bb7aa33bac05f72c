// Package ai provides the embedding side of the application: asynchronous
// embedding generation after recipe import and similarity search over the
// stored vectors.
package ai

import (
	"context"
	"time"

	"recipebox/internal/domain/entity"
)

// EmbeddingProvider defines the interface for embedding generation.
// This abstraction allows switching between embedding backends (OpenAI API,
// local models) without changing business logic.
type EmbeddingProvider interface {
	// Embed generates an embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Model returns the model identifier embeddings are generated with.
	Model() string

	// Name identifies the provider for persistence and logs.
	Name() entity.EmbeddingProvider
}

// HealthStatus reports embedding backend availability for the health
// endpoints.
type HealthStatus struct {
	Healthy     bool
	Message     string
	Latency     time.Duration
	CircuitOpen bool
}

// HealthChecker is implemented by providers that can report backend
// availability. Providers without a meaningful probe simply report healthy.
type HealthChecker interface {
	Health(ctx context.Context) (*HealthStatus, error)
}
