package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"recipebox/internal/common/pagination"
	"recipebox/internal/domain/entity"
	"recipebox/internal/repository"
)

// Service provides recipe management use cases.
// It handles business logic for recipe operations and delegates persistence to the repository.
type Service struct {
	Repo repository.RecipeRepository
}

// PaginatedResult represents the result of a paginated query.
// It contains both the data and pagination metadata.
type PaginatedResult struct {
	Data       []*entity.Recipe
	Pagination pagination.Metadata
}

// Get retrieves a single recipe by its ID.
// Returns ErrInvalidRecipeID if the ID is not positive.
// Returns ErrRecipeNotFound if the recipe does not exist.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Recipe, error) {
	if id <= 0 {
		return nil, ErrInvalidRecipeID
	}

	recipe, err := s.Repo.Get(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, ErrRecipeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return recipe, nil
}

// ListPaginated retrieves recipes with pagination support.
// It calculates the appropriate offset, retrieves the data and total count,
// and returns a PaginatedResult with both data and metadata.
func (s *Service) ListPaginated(ctx context.Context, params pagination.Params) (*PaginatedResult, error) {
	// Calculate offset using pagination utilities
	offset := pagination.CalculateOffset(params.Page, params.Limit)

	// Get total count for metadata
	total, err := s.Repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count recipes: %w", err)
	}

	// Get paginated data
	recipes, err := s.Repo.ListPaginated(ctx, offset, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("list recipes paginated: %w", err)
	}

	// Calculate total pages using pagination utilities
	totalPages := pagination.CalculateTotalPages(total, params.Limit)

	return &PaginatedResult{
		Data: recipes,
		Pagination: pagination.Metadata{
			Total:      total,
			Page:       params.Page,
			Limit:      params.Limit,
			TotalPages: totalPages,
		},
	}, nil
}

// Search finds recipes whose titles match all of the given keywords.
// The query string is split on whitespace into keywords with AND logic.
// Filters are optional and applied if provided.
func (s *Service) Search(ctx context.Context, query string, filters repository.RecipeSearchFilters) ([]*entity.Recipe, error) {
	keywords := SplitKeywords(query)

	recipes, err := s.Repo.Search(ctx, keywords, filters)
	if err != nil {
		return nil, fmt.Errorf("search recipes: %w", err)
	}
	return recipes, nil
}

// Delete removes a recipe by its ID. Stored embeddings are removed with it
// through the schema's cascade rule.
// Returns ErrInvalidRecipeID if the ID is not positive.
// Returns ErrRecipeNotFound if the recipe does not exist.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidRecipeID
	}

	err := s.Repo.Delete(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return ErrRecipeNotFound
	}
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}

// SplitKeywords splits a free-text query into search keywords on whitespace.
// Empty tokens are dropped.
func SplitKeywords(query string) []string {
	return strings.Fields(query)
}
