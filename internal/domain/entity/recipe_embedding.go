package entity

import (
	"fmt"
	"time"
)

// EmbeddingProvider identifies the service that produced an embedding.
type EmbeddingProvider string

const (
	// EmbeddingProviderOpenAI is the OpenAI embeddings API.
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"

	// EmbeddingProviderNoop produces no embeddings; used when the feature
	// is disabled.
	EmbeddingProviderNoop EmbeddingProvider = "noop"
)

// RecipeEmbedding is a vector representation of a recipe, derived from its
// title and ingredient lines, used for similarity search.
type RecipeEmbedding struct {
	ID        int64
	RecipeID  int64
	Provider  EmbeddingProvider
	Model     string
	Dimension int
	Embedding []float32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the embedding fields before persistence.
func (e *RecipeEmbedding) Validate() error {
	if e.RecipeID <= 0 {
		return &ValidationError{Field: "recipe_id", Message: "recipe ID must be positive"}
	}
	if e.Provider == "" {
		return &ValidationError{Field: "provider", Message: "provider is required"}
	}
	if e.Model == "" {
		return &ValidationError{Field: "model", Message: "model is required"}
	}
	if len(e.Embedding) == 0 {
		return &ValidationError{Field: "embedding", Message: "embedding vector is empty"}
	}
	if e.Dimension != len(e.Embedding) {
		return &ValidationError{
			Field:   "dimension",
			Message: fmt.Sprintf("dimension %d does not match vector length %d", e.Dimension, len(e.Embedding)),
		}
	}
	return nil
}
