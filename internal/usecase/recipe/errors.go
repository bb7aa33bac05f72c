// Package recipe provides use cases for managing stored recipes.
// It implements business logic for retrieving, listing, searching, and
// deleting recipes, delegating persistence to the repository.
package recipe

import "errors"

// Sentinel errors for recipe use case operations.
var (
	// ErrRecipeNotFound indicates that the requested recipe was not found.
	// This error is typically returned when attempting to retrieve or delete
	// a recipe that does not exist in the repository.
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrInvalidRecipeID indicates that the provided recipe ID is invalid.
	// Recipe IDs must be positive integers.
	ErrInvalidRecipeID = errors.New("invalid recipe ID")
)
