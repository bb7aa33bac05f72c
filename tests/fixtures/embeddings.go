package fixtures

import (
	"time"

	"recipebox/internal/domain/entity"
)

// EmbeddingOption customizes a test embedding.
type EmbeddingOption func(*entity.RecipeEmbedding)

// NewTestEmbedding builds a valid RecipeEmbedding with a deterministic
// 1536-dimension vector. Options override individual fields:
//
//	fixtures.NewTestEmbedding(fixtures.WithEmbeddingRecipeID(100))
func NewTestEmbedding(opts ...EmbeddingOption) *entity.RecipeEmbedding {
	now := time.Now()
	e := &entity.RecipeEmbedding{
		ID:        1,
		RecipeID:  1,
		Provider:  entity.EmbeddingProviderOpenAI,
		Model:     "text-embedding-3-small",
		Dimension: 1536,
		Embedding: testVector(1536),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithEmbeddingRecipeID(id int64) EmbeddingOption {
	return func(e *entity.RecipeEmbedding) {
		e.RecipeID = id
	}
}

func WithProvider(p entity.EmbeddingProvider) EmbeddingOption {
	return func(e *entity.RecipeEmbedding) {
		e.Provider = p
	}
}

func WithModel(model string) EmbeddingOption {
	return func(e *entity.RecipeEmbedding) {
		e.Model = model
	}
}

// WithEmbedding sets the vector and keeps Dimension in sync with it.
func WithEmbedding(embedding []float32) EmbeddingOption {
	return func(e *entity.RecipeEmbedding) {
		e.Embedding = embedding
		e.Dimension = len(embedding)
	}
}

// testVector yields a predictable non-zero vector so similarity math in
// tests has stable inputs.
func testVector(dimension int) []float32 {
	vec := make([]float32, dimension)
	for i := range vec {
		vec[i] = 0.1 + float32(i)*0.001
	}
	return vec
}
