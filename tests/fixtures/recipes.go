// Package fixtures provides reusable test data generators for integration tests.
// This package eliminates test data duplication and ensures consistent test
// content across different test suites.
package fixtures

import (
	"time"

	"recipebox/internal/domain/entity"
)

// RecipeOption is a functional option for customizing test recipes.
type RecipeOption func(*entity.Recipe)

// NewTestRecipe creates a valid Recipe with sensible defaults.
// Use functional options to customize the recipe for specific test cases.
//
// Example:
//
//	recipe := NewTestRecipe()
//	recipe := NewTestRecipe(WithRecipeID(100), WithSourceURL("https://example.com/r/1"))
func NewTestRecipe(opts ...RecipeOption) *entity.Recipe {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := &entity.Recipe{
		ID:           1,
		Title:        "Weeknight Lentil Soup",
		SourceURL:    "https://example.com/recipes/lentil-soup",
		Description:  "A hearty lentil soup that comes together in one pot.",
		ImageURL:     "https://example.com/images/lentil-soup.jpg",
		Yield:        "4 servings",
		PrepMinutes:  10,
		CookMinutes:  35,
		TotalMinutes: 45,
		Ingredients: []string{
			"1 cup brown lentils",
			"1 onion, diced",
			"4 cups vegetable stock",
		},
		Instructions: []string{
			"Sweat the onion until translucent.",
			"Add lentils and stock, simmer 35 minutes.",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// WithRecipeID sets the ID of the recipe.
func WithRecipeID(id int64) RecipeOption {
	return func(r *entity.Recipe) {
		r.ID = id
	}
}

// WithTitle sets the title of the recipe.
func WithTitle(title string) RecipeOption {
	return func(r *entity.Recipe) {
		r.Title = title
	}
}

// WithSourceURL sets the source URL of the recipe.
func WithSourceURL(url string) RecipeOption {
	return func(r *entity.Recipe) {
		r.SourceURL = url
	}
}

// WithIngredients sets the ingredient lines.
func WithIngredients(lines ...string) RecipeOption {
	return func(r *entity.Recipe) {
		r.Ingredients = lines
	}
}

// WithInstructions sets the instruction steps.
func WithInstructions(steps ...string) RecipeOption {
	return func(r *entity.Recipe) {
		r.Instructions = steps
	}
}

// WithSourceDead marks the recipe's source link dead and records the check
// time.
func WithSourceDead(checkedAt time.Time) RecipeOption {
	return func(r *entity.Recipe) {
		r.SourceDead = true
		r.LastVerifiedAt = &checkedAt
	}
}

// WithRecipeTimestamps sets CreatedAt and UpdatedAt timestamps.
func WithRecipeTimestamps(createdAt, updatedAt time.Time) RecipeOption {
	return func(r *entity.Recipe) {
		r.CreatedAt = createdAt
		r.UpdatedAt = updatedAt
	}
}
