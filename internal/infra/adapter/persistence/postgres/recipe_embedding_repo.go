package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"recipebox/internal/domain/entity"
	"recipebox/internal/repository"
)

// DefaultSearchTimeout is the default timeout for search queries.
const DefaultSearchTimeout = 5 * time.Second

// RecipeEmbeddingRepo implements the RecipeEmbeddingRepository interface for PostgreSQL.
type RecipeEmbeddingRepo struct {
	db *sql.DB
}

// NewRecipeEmbeddingRepo creates a new PostgreSQL-based RecipeEmbeddingRepository.
func NewRecipeEmbeddingRepo(db *sql.DB) repository.RecipeEmbeddingRepository {
	return &RecipeEmbeddingRepo{
		db: db,
	}
}

// Upsert creates a new embedding or updates an existing one.
// Uses INSERT ... ON CONFLICT DO UPDATE to handle unique constraint violations.
func (repo *RecipeEmbeddingRepo) Upsert(ctx context.Context, embedding *entity.RecipeEmbedding) error {
	if embedding == nil {
		return fmt.Errorf("Upsert: embedding is nil")
	}

	// Validate entity before database operation
	if err := embedding.Validate(); err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}

	vector := pgvector.NewVector(embedding.Embedding)

	const query = `
INSERT INTO recipe_embeddings (recipe_id, provider, model, dimension, embedding, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
ON CONFLICT (recipe_id, provider, model)
DO UPDATE SET
	dimension = EXCLUDED.dimension,
	embedding = EXCLUDED.embedding,
	updated_at = NOW()
RETURNING id, created_at, updated_at`

	err := repo.db.QueryRowContext(ctx, query,
		embedding.RecipeID,
		string(embedding.Provider),
		embedding.Model,
		embedding.Dimension,
		vector,
	).Scan(&embedding.ID, &embedding.CreatedAt, &embedding.UpdatedAt)

	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}

	return nil
}

// FindByRecipeID retrieves all embeddings for a given recipe ID.
// Returns an empty slice if no embeddings are found.
func (repo *RecipeEmbeddingRepo) FindByRecipeID(ctx context.Context, recipeID int64) ([]*entity.RecipeEmbedding, error) {
	const query = `
SELECT id, recipe_id, provider, model, dimension, embedding, created_at, updated_at
FROM recipe_embeddings
WHERE recipe_id = $1
ORDER BY provider, model`

	rows, err := repo.db.QueryContext(ctx, query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("FindByRecipeID: %w", err)
	}
	defer func() { _ = rows.Close() }()

	embeddings := make([]*entity.RecipeEmbedding, 0)
	for rows.Next() {
		emb := &entity.RecipeEmbedding{}
		var vector pgvector.Vector
		var provider string

		err := rows.Scan(
			&emb.ID,
			&emb.RecipeID,
			&provider,
			&emb.Model,
			&emb.Dimension,
			&vector,
			&emb.CreatedAt,
			&emb.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("FindByRecipeID: Scan: %w", err)
		}

		emb.Provider = entity.EmbeddingProvider(provider)
		emb.Embedding = vector.Slice()

		embeddings = append(embeddings, emb)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FindByRecipeID: %w", err)
	}

	return embeddings, nil
}

// DeleteByRecipeID removes all embeddings associated with a recipe.
// Returns the number of deleted rows.
func (repo *RecipeEmbeddingRepo) DeleteByRecipeID(ctx context.Context, recipeID int64) (int64, error) {
	const query = `DELETE FROM recipe_embeddings WHERE recipe_id = $1`

	result, err := repo.db.ExecContext(ctx, query, recipeID)
	if err != nil {
		return 0, fmt.Errorf("DeleteByRecipeID: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteByRecipeID: RowsAffected: %w", err)
	}

	return count, nil
}

// SearchSimilar finds recipes with embeddings similar to the provided vector.
// Uses cosine distance operator (<=>) for similarity comparison. The recipe
// identified by excludeRecipeID never appears in the results.
func (repo *RecipeEmbeddingRepo) SearchSimilar(ctx context.Context, embedding []float32, excludeRecipeID int64, limit int) ([]repository.SimilarRecipe, error) {
	// Apply timeout to search query
	searchCtx, cancel := context.WithTimeout(ctx, DefaultSearchTimeout)
	defer cancel()

	// Validate and apply limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	vector := pgvector.NewVector(embedding)

	const query = `
SELECT recipe_id, 1 - (embedding <=> $1) AS similarity
FROM recipe_embeddings
WHERE recipe_id <> $2
ORDER BY embedding <=> $1
LIMIT $3`

	rows, err := repo.db.QueryContext(searchCtx, query, vector, excludeRecipeID, limit)
	if err != nil {
		return nil, fmt.Errorf("SearchSimilar: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]repository.SimilarRecipe, 0, limit)
	for rows.Next() {
		var result repository.SimilarRecipe
		err := rows.Scan(&result.RecipeID, &result.Similarity)
		if err != nil {
			return nil, fmt.Errorf("SearchSimilar: Scan: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SearchSimilar: %w", err)
	}

	return results, nil
}
