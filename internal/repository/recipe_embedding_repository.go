package repository

import (
	"context"

	"recipebox/internal/domain/entity"
)

// SimilarRecipe represents the result of a similarity search.
// Similarity is cosine similarity in [0.0, 1.0], higher is closer.
type SimilarRecipe struct {
	RecipeID   int64
	Similarity float64
}

// RecipeEmbeddingRepository defines persistence operations for recipe
// embedding vectors.
type RecipeEmbeddingRepository interface {
	// Upsert creates a new embedding or replaces an existing one.
	// The unique key is (recipe_id, provider, model); on conflict the
	// vector, dimension, and updated_at are replaced.
	Upsert(ctx context.Context, embedding *entity.RecipeEmbedding) error

	// FindByRecipeID retrieves all embeddings for a recipe, ordered by
	// provider then model. Returns an empty slice (not nil) when none
	// exist.
	FindByRecipeID(ctx context.Context, recipeID int64) ([]*entity.RecipeEmbedding, error)

	// SearchSimilar finds recipes whose embeddings are closest to the
	// given vector by cosine distance, best match first. The recipe
	// identified by excludeRecipeID is omitted so a recipe is never its
	// own neighbor.
	SearchSimilar(ctx context.Context, embedding []float32, excludeRecipeID int64, limit int) ([]SimilarRecipe, error)

	// DeleteByRecipeID removes all embeddings for a recipe and returns
	// the number of rows deleted. Zero rows is not an error.
	DeleteByRecipeID(ctx context.Context, recipeID int64) (int64, error)
}
