// Package recipe provides HTTP handlers for recipe-related endpoints.
// It includes handlers for listing, searching, retrieving, deleting, and
// importing recipes, plus similarity search over stored embeddings.
package recipe

import (
	"time"

	"recipebox/internal/domain/entity"
)

// DTO represents the JSON structure for recipe data transfer.
type DTO struct {
	ID           int64      `json:"id" example:"1"`
	Title        string     `json:"title" example:"基本のカルボナーラ"`
	SourceURL    string     `json:"source_url" example:"https://example.com/recipes/carbonara"`
	Description  string     `json:"description,omitempty" example:"シンプルな材料で作る定番パスタ"`
	ImageURL     string     `json:"image_url,omitempty" example:"https://example.com/images/carbonara.jpg"`
	Yield        string     `json:"yield,omitempty" example:"2人前"`
	PrepMinutes  int        `json:"prep_minutes,omitempty" example:"10"`
	CookMinutes  int        `json:"cook_minutes,omitempty" example:"15"`
	TotalMinutes int        `json:"total_minutes,omitempty" example:"25"`
	Ingredients  []string   `json:"ingredients"`
	Instructions []string   `json:"instructions"`
	SourceDead   bool       `json:"source_dead"`
	VerifiedAt   *time.Time `json:"last_verified_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at" example:"2026-08-30T12:00:00Z"`
	UpdatedAt    time.Time  `json:"updated_at" example:"2026-08-30T12:00:00Z"`
}

// FromEntity converts a domain recipe into its transfer representation.
func FromEntity(r *entity.Recipe) DTO {
	return DTO{
		ID:           r.ID,
		Title:        r.Title,
		SourceURL:    r.SourceURL,
		Description:  r.Description,
		ImageURL:     r.ImageURL,
		Yield:        r.Yield,
		PrepMinutes:  r.PrepMinutes,
		CookMinutes:  r.CookMinutes,
		TotalMinutes: r.TotalMinutes,
		Ingredients:  r.Ingredients,
		Instructions: r.Instructions,
		SourceDead:   r.SourceDead,
		VerifiedAt:   r.LastVerifiedAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
