package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"recipebox/internal/domain/entity"
	"recipebox/internal/repository"
)

var (
	// ErrEmbeddingDisabled is returned when embedding features are disabled.
	ErrEmbeddingDisabled = errors.New("embedding features are disabled")

	// ErrNoEmbedding is returned when the recipe has no stored embedding
	// yet, e.g. right after import before the async hook has finished.
	ErrNoEmbedding = errors.New("recipe has no embedding yet")
)

// defaultSimilarLimit bounds similar-recipe results when the caller asks for
// zero or a negative count.
const defaultSimilarLimit = 5

// maxSimilarLimit is the hard ceiling on similar-recipe results.
const maxSimilarLimit = 20

// SimilarResult pairs a recipe with its similarity to the query recipe.
type SimilarResult struct {
	Recipe     *entity.Recipe
	Similarity float64
}

// Service provides similarity search over stored recipe embeddings.
type Service struct {
	recipes    repository.RecipeRepository
	embeddings repository.RecipeEmbeddingRepository
	enabled    bool
}

// NewService creates a new similarity service.
func NewService(recipes repository.RecipeRepository, embeddings repository.RecipeEmbeddingRepository, enabled bool) *Service {
	return &Service{
		recipes:    recipes,
		embeddings: embeddings,
		enabled:    enabled,
	}
}

// Enabled reports whether similarity search is available.
func (s *Service) Enabled() bool {
	return s.enabled
}

// Similar finds recipes closest to the given one by embedding distance.
//
// Returns:
//   - ErrEmbeddingDisabled when the feature is off
//   - entity.ErrNotFound when the recipe does not exist
//   - ErrNoEmbedding when the recipe has not been embedded yet
func (s *Service) Similar(ctx context.Context, recipeID int64, limit int) ([]SimilarResult, error) {
	if !s.enabled {
		return nil, ErrEmbeddingDisabled
	}

	if limit <= 0 {
		limit = defaultSimilarLimit
	}
	if limit > maxSimilarLimit {
		limit = maxSimilarLimit
	}

	// Confirms existence so a missing recipe maps to 404 rather than an
	// empty result.
	if _, err := s.recipes.Get(ctx, recipeID); err != nil {
		return nil, err
	}

	stored, err := s.embeddings.FindByRecipeID(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("load embedding: %w", err)
	}
	if len(stored) == 0 {
		return nil, ErrNoEmbedding
	}

	neighbors, err := s.embeddings.SearchSimilar(ctx, stored[0].Embedding, recipeID, limit)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	results := make([]SimilarResult, 0, len(neighbors))
	for _, n := range neighbors {
		recipe, err := s.recipes.Get(ctx, n.RecipeID)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				// The recipe was deleted between the vector search
				// and this load; skip it.
				slog.Warn("similar recipe vanished during search",
					slog.Int64("recipe_id", n.RecipeID))
				continue
			}
			return nil, fmt.Errorf("load similar recipe %d: %w", n.RecipeID, err)
		}
		results = append(results, SimilarResult{Recipe: recipe, Similarity: n.Similarity})
	}

	return results, nil
}
