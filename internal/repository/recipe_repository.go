package repository

import (
	"context"
	"time"

	"recipebox/internal/domain/entity"
)

// RecipeSearchFilters contains optional filters for recipe search.
type RecipeSearchFilters struct {
	IncludeDead bool       // Include recipes whose source link is dead
	From        *time.Time // Optional: recipes created >= this time
	To          *time.Time // Optional: recipes created <= this time
}

// RecipeRepository defines persistence operations for recipes.
type RecipeRepository interface {
	// Create persists a new recipe and fills in ID and timestamps.
	// Returns entity.ErrAlreadyExists when a recipe with the same source
	// URL is already stored.
	Create(ctx context.Context, recipe *entity.Recipe) error

	// Get retrieves a recipe by ID.
	// Returns entity.ErrNotFound when no row matches.
	Get(ctx context.Context, id int64) (*entity.Recipe, error)

	// GetBySourceURL retrieves a recipe by its source URL.
	// Returns entity.ErrNotFound when no row matches.
	GetBySourceURL(ctx context.Context, sourceURL string) (*entity.Recipe, error)

	// ListPaginated retrieves recipes ordered by created_at DESC using
	// LIMIT and OFFSET.
	ListPaginated(ctx context.Context, offset, limit int) ([]*entity.Recipe, error)

	// Count returns the total number of stored recipes, for pagination
	// metadata.
	Count(ctx context.Context) (int64, error)

	// Search returns recipes whose title matches all keywords (AND
	// semantics), with optional filters.
	Search(ctx context.Context, keywords []string, filters RecipeSearchFilters) ([]*entity.Recipe, error)

	// Delete removes a recipe. Returns entity.ErrNotFound when no row
	// matched.
	Delete(ctx context.Context, id int64) error

	// ListUnverifiedSince returns up to limit recipes whose link health
	// has not been checked since the cutoff, oldest check first. Used by
	// the verification worker.
	ListUnverifiedSince(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Recipe, error)

	// MarkLinkHealth records the outcome of a link verification pass.
	MarkLinkHealth(ctx context.Context, id int64, dead bool, checkedAt time.Time) error
}
