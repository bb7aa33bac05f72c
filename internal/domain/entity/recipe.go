// Package entity defines the core domain entities and validation logic for the
// application. It contains the fundamental business objects such as Recipe and
// RecipeEmbedding, along with their validation rules and domain-specific errors.
package entity

import "time"

// Recipe represents a recipe imported from an external page.
// Ingredient and instruction lines are stored in document order.
type Recipe struct {
	ID           int64
	Title        string
	SourceURL    string
	Description  string
	ImageURL     string
	Yield        string
	PrepMinutes  int
	CookMinutes  int
	TotalMinutes int
	Ingredients  []string
	Instructions []string

	// Link health, maintained by the verification worker.
	SourceDead     bool
	LastVerifiedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the Recipe fields against domain rules.
func (r *Recipe) Validate() error {
	if err := ValidateTitle(r.Title); err != nil {
		return err
	}
	if err := ValidateURL(r.SourceURL); err != nil {
		return err
	}
	if r.ImageURL != "" {
		if err := ValidateURL(r.ImageURL); err != nil {
			return &ValidationError{Field: "image_url", Message: "image URL is invalid"}
		}
	}
	if r.PrepMinutes < 0 || r.CookMinutes < 0 || r.TotalMinutes < 0 {
		return &ValidationError{Field: "times", Message: "durations must not be negative"}
	}
	if len(r.Ingredients) > maxListItems {
		return &ValidationError{Field: "ingredients", Message: "too many ingredient lines"}
	}
	if len(r.Instructions) > maxListItems {
		return &ValidationError{Field: "instructions", Message: "too many instruction steps"}
	}
	return nil
}

// HasContent reports whether the recipe carries at least one ingredient or
// instruction line. An import that produced neither is treated as extraction
// failure upstream, never persisted.
func (r *Recipe) HasContent() bool {
	return len(r.Ingredients) > 0 || len(r.Instructions) > 0
}
