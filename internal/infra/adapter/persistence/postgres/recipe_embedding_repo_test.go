package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebox/internal/domain/entity"
	pg "recipebox/internal/infra/adapter/persistence/postgres"
	"recipebox/tests/fixtures"
)

/* ─────────────────────────── Upsert Tests ─────────────────────────── */

func TestRecipeEmbeddingRepo_Upsert_ValidationError(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := pg.NewRecipeEmbeddingRepo(db)

	tests := []struct {
		name      string
		embedding *entity.RecipeEmbedding
	}{
		{
			name: "zero recipe_id",
			embedding: fixtures.NewTestEmbedding(
				fixtures.WithEmbeddingRecipeID(0),
			),
		},
		{
			name: "negative recipe_id",
			embedding: fixtures.NewTestEmbedding(
				fixtures.WithEmbeddingRecipeID(-1),
			),
		},
		{
			name: "empty provider",
			embedding: fixtures.NewTestEmbedding(
				fixtures.WithProvider(""),
			),
		},
		{
			name: "empty model",
			embedding: fixtures.NewTestEmbedding(
				fixtures.WithModel(""),
			),
		},
		{
			name: "empty embedding",
			embedding: func() *entity.RecipeEmbedding {
				e := fixtures.NewTestEmbedding()
				e.Embedding = []float32{}
				return e
			}(),
		},
		{
			name: "dimension mismatch",
			embedding: func() *entity.RecipeEmbedding {
				e := fixtures.NewTestEmbedding()
				e.Dimension = 100 // doesn't match len(Embedding)
				return e
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Upsert(context.Background(), tt.embedding)
			assert.Error(t, err)
			assert.ErrorIs(t, err, entity.ErrValidationFailed)
		})
	}
}

func TestRecipeEmbeddingRepo_Upsert_NilEmbedding(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := pg.NewRecipeEmbeddingRepo(db)
	assert.Error(t, repo.Upsert(context.Background(), nil))
}

func TestRecipeEmbeddingRepo_Upsert_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	embedding := fixtures.NewTestEmbedding(fixtures.WithEmbedding([]float32{0.1, 0.2, 0.3}))
	embedding.ID = 0
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO recipe_embeddings")).
		WithArgs(
			embedding.RecipeID,
			string(embedding.Provider),
			embedding.Model,
			embedding.Dimension,
			pgvector.NewVector(embedding.Embedding),
		).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(3), now, now))

	repo := pg.NewRecipeEmbeddingRepo(db)
	require.NoError(t, repo.Upsert(context.Background(), embedding))
	assert.Equal(t, int64(3), embedding.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

/* ─────────────────────────── FindByRecipeID Tests ─────────────────────────── */

func TestRecipeEmbeddingRepo_FindByRecipeID_EmptyResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, recipe_id")).
		WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "recipe_id", "provider", "model",
			"dimension", "embedding", "created_at", "updated_at",
		}))

	repo := pg.NewRecipeEmbeddingRepo(db)
	embeddings, err := repo.FindByRecipeID(context.Background(), 999)

	assert.NoError(t, err)
	assert.Empty(t, embeddings)
	assert.NotNil(t, embeddings) // Should return empty slice, not nil
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipeEmbeddingRepo_FindByRecipeID_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	vector := pgvector.NewVector([]float32{0.1, 0.2, 0.3})

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, recipe_id")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "recipe_id", "provider", "model",
			"dimension", "embedding", "created_at", "updated_at",
		}).AddRow(int64(1), int64(1), "openai", "text-embedding-3-small", 3, vector.String(), now, now))

	repo := pg.NewRecipeEmbeddingRepo(db)
	embeddings, err := repo.FindByRecipeID(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, embeddings, 1)
	assert.Equal(t, entity.EmbeddingProviderOpenAI, embeddings[0].Provider)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, embeddings[0].Embedding)
}

func TestRecipeEmbeddingRepo_FindByRecipeID_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, recipe_id")).
		WithArgs(int64(1)).
		WillReturnError(errors.New("connection refused"))

	repo := pg.NewRecipeEmbeddingRepo(db)
	_, err = repo.FindByRecipeID(context.Background(), 1)
	assert.Error(t, err)
}

/* ─────────────────────────── SearchSimilar Tests ─────────────────────────── */

func TestRecipeEmbeddingRepo_SearchSimilar(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	query := []float32{0.1, 0.2, 0.3}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT recipe_id, 1 - (embedding <=> $1)")).
		WithArgs(pgvector.NewVector(query), int64(1), 5).
		WillReturnRows(sqlmock.NewRows([]string{"recipe_id", "similarity"}).
			AddRow(int64(2), 0.97).
			AddRow(int64(3), 0.85))

	repo := pg.NewRecipeEmbeddingRepo(db)
	results, err := repo.SearchSimilar(context.Background(), query, 1, 5)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, int64(2), results[0].RecipeID)
	assert.InDelta(t, 0.97, results[0].Similarity, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipeEmbeddingRepo_SearchSimilar_ClampsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	query := []float32{0.1}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT recipe_id")).
		WithArgs(pgvector.NewVector(query), int64(1), 10).
		WillReturnRows(sqlmock.NewRows([]string{"recipe_id", "similarity"}))

	repo := pg.NewRecipeEmbeddingRepo(db)
	_, err = repo.SearchSimilar(context.Background(), query, 1, 0)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

/* ─────────────────────────── DeleteByRecipeID Tests ─────────────────────────── */

func TestRecipeEmbeddingRepo_DeleteByRecipeID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM recipe_embeddings")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	repo := pg.NewRecipeEmbeddingRepo(db)
	count, err := repo.DeleteByRecipeID(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
