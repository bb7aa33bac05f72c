package embedding

import (
	"context"
	"errors"

	"recipebox/internal/domain/entity"
	"recipebox/internal/usecase/ai"
)

// ErrDisabled is returned by the NoOp provider for every embed request.
var ErrDisabled = errors.New("embedding generation is disabled")

// NoOp is an embedding provider for environments without embedding
// credentials. Every call fails with ErrDisabled, which the async hook
// degrades to a log line.
type NoOp struct{}

// NewNoOp creates a new NoOp provider.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Embed always fails with ErrDisabled.
func (n *NoOp) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, ErrDisabled
}

// Model returns the placeholder model name.
func (n *NoOp) Model() string {
	return "noop"
}

// Name identifies the provider.
func (n *NoOp) Name() entity.EmbeddingProvider {
	return entity.EmbeddingProviderNoop
}

// Health reports healthy with a note that embeddings are switched off.
func (n *NoOp) Health(_ context.Context) (*ai.HealthStatus, error) {
	return &ai.HealthStatus{
		Healthy: true,
		Message: "embedding generation is disabled",
	}, nil
}
