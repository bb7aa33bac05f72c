package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"recipebox/internal/domain/entity"
	"recipebox/internal/repository"
)

const uniqueViolationCode = "23505"

const recipeColumns = `id, title, source_url, description, image_url, yield,
       prep_minutes, cook_minutes, total_minutes, ingredients, instructions,
       source_dead, last_verified_at, created_at, updated_at`

type RecipeRepo struct {
	db           *sql.DB
	queryBuilder *RecipeQueryBuilder
}

func NewRecipeRepo(db *sql.DB) repository.RecipeRepository {
	return &RecipeRepo{
		db:           db,
		queryBuilder: NewRecipeQueryBuilder(),
	}
}

func (repo *RecipeRepo) Create(ctx context.Context, recipe *entity.Recipe) error {
	ingredients, instructions, err := marshalLines(recipe)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}

	const query = `
INSERT INTO recipes
       (title, source_url, description, image_url, yield,
        prep_minutes, cook_minutes, total_minutes, ingredients, instructions)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, created_at, updated_at`

	err = repo.db.QueryRowContext(ctx, query,
		recipe.Title, recipe.SourceURL, recipe.Description, recipe.ImageURL,
		recipe.Yield, recipe.PrepMinutes, recipe.CookMinutes, recipe.TotalMinutes,
		ingredients, instructions,
	).Scan(&recipe.ID, &recipe.CreatedAt, &recipe.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return entity.ErrAlreadyExists
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *RecipeRepo) Get(ctx context.Context, id int64) (*entity.Recipe, error) {
	query := `
SELECT ` + recipeColumns + `
FROM recipes
WHERE id = $1
LIMIT 1`
	recipe, err := repo.queryRow(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return recipe, nil
}

func (repo *RecipeRepo) GetBySourceURL(ctx context.Context, sourceURL string) (*entity.Recipe, error) {
	query := `
SELECT ` + recipeColumns + `
FROM recipes
WHERE source_url = $1
LIMIT 1`
	recipe, err := repo.queryRow(ctx, query, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("GetBySourceURL: %w", err)
	}
	return recipe, nil
}

// ListPaginated retrieves recipes ordered by creation time, newest first.
// Uses LIMIT and OFFSET for efficient pagination.
func (repo *RecipeRepo) ListPaginated(ctx context.Context, offset, limit int) ([]*entity.Recipe, error) {
	query := `
SELECT ` + recipeColumns + `
FROM recipes
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`

	rows, err := repo.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ListPaginated: %w", err)
	}
	defer func() { _ = rows.Close() }()

	recipes := make([]*entity.Recipe, 0, limit)
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("ListPaginated: Scan: %w", err)
		}
		recipes = append(recipes, recipe)
	}
	return recipes, rows.Err()
}

// Count returns the total number of recipes in the database.
func (repo *RecipeRepo) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM recipes`
	var count int64
	err := repo.db.QueryRowContext(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}

// Search returns recipes whose title matches all keywords, newest first.
// Uses RecipeQueryBuilder to share WHERE-clause construction with callers
// that need matching counts.
func (repo *RecipeRepo) Search(ctx context.Context, keywords []string, filters repository.RecipeSearchFilters) ([]*entity.Recipe, error) {
	// No keywords and no date range -> return empty result
	if len(keywords) == 0 && filters.From == nil && filters.To == nil {
		return []*entity.Recipe{}, nil
	}

	// Apply search timeout to prevent long-running queries
	ctx, cancel := context.WithTimeout(ctx, DefaultSearchTimeout)
	defer cancel()

	whereClause, args := repo.queryBuilder.BuildWhereClause(keywords, filters)

	query := fmt.Sprintf(`
SELECT `+recipeColumns+`
FROM recipes
%s
ORDER BY created_at DESC`, whereClause)

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	recipes := make([]*entity.Recipe, 0, 100)
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("Search: Scan: %w", err)
		}
		recipes = append(recipes, recipe)
	}
	return recipes, rows.Err()
}

func (repo *RecipeRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM recipes WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

// ListUnverifiedSince returns recipes whose link health was last checked
// before the cutoff (or never), oldest check first, up to limit rows.
func (repo *RecipeRepo) ListUnverifiedSince(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Recipe, error) {
	query := `
SELECT ` + recipeColumns + `
FROM recipes
WHERE last_verified_at IS NULL OR last_verified_at < $1
ORDER BY last_verified_at ASC NULLS FIRST
LIMIT $2`

	rows, err := repo.db.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("ListUnverifiedSince: %w", err)
	}
	defer func() { _ = rows.Close() }()

	recipes := make([]*entity.Recipe, 0, limit)
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("ListUnverifiedSince: Scan: %w", err)
		}
		recipes = append(recipes, recipe)
	}
	return recipes, rows.Err()
}

// MarkLinkHealth records the outcome of one verification pass.
func (repo *RecipeRepo) MarkLinkHealth(ctx context.Context, id int64, dead bool, checkedAt time.Time) error {
	const query = `
UPDATE recipes SET
       source_dead      = $1,
       last_verified_at = $2,
       updated_at       = NOW()
WHERE id = $3`
	res, err := repo.db.ExecContext(ctx, query, dead, checkedAt, id)
	if err != nil {
		return fmt.Errorf("MarkLinkHealth: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (repo *RecipeRepo) queryRow(ctx context.Context, query string, arg interface{}) (*entity.Recipe, error) {
	row := repo.db.QueryRowContext(ctx, query, arg)
	recipe, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecipe(row rowScanner) (*entity.Recipe, error) {
	var recipe entity.Recipe
	var ingredients, instructions []byte
	var lastVerified sql.NullTime

	err := row.Scan(
		&recipe.ID, &recipe.Title, &recipe.SourceURL, &recipe.Description,
		&recipe.ImageURL, &recipe.Yield, &recipe.PrepMinutes, &recipe.CookMinutes,
		&recipe.TotalMinutes, &ingredients, &instructions,
		&recipe.SourceDead, &lastVerified, &recipe.CreatedAt, &recipe.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(ingredients) > 0 {
		if err := json.Unmarshal(ingredients, &recipe.Ingredients); err != nil {
			return nil, fmt.Errorf("ingredients: %w", err)
		}
	}
	if len(instructions) > 0 {
		if err := json.Unmarshal(instructions, &recipe.Instructions); err != nil {
			return nil, fmt.Errorf("instructions: %w", err)
		}
	}
	if lastVerified.Valid {
		t := lastVerified.Time
		recipe.LastVerifiedAt = &t
	}
	return &recipe, nil
}

// marshalLines encodes the ingredient and instruction lines as JSONB column
// values. Nil slices are stored as empty arrays so scans round-trip cleanly.
func marshalLines(recipe *entity.Recipe) ([]byte, []byte, error) {
	ingredients := recipe.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	instructions := recipe.Instructions
	if instructions == nil {
		instructions = []string{}
	}

	ingJSON, err := json.Marshal(ingredients)
	if err != nil {
		return nil, nil, fmt.Errorf("ingredients: %w", err)
	}
	insJSON, err := json.Marshal(instructions)
	if err != nil {
		return nil, nil, fmt.Errorf("instructions: %w", err)
	}
	return ingJSON, insJSON, nil
}
