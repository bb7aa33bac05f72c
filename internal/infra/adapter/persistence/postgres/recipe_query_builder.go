// Package postgres provides PostgreSQL implementations of repository interfaces.
package postgres

import (
	"fmt"
	"strings"

	"recipebox/internal/repository"
)

// RecipeQueryBuilder builds WHERE clauses for recipe search in PostgreSQL.
// This builder is shared between COUNT and SELECT queries to eliminate duplication.
// It uses PostgreSQL-specific features like ILIKE and numbered placeholders ($1, $2, etc.).
type RecipeQueryBuilder struct{}

// NewRecipeQueryBuilder creates a new query builder instance.
func NewRecipeQueryBuilder() *RecipeQueryBuilder {
	return &RecipeQueryBuilder{}
}

// BuildWhereClause builds WHERE clause and arguments for recipe search.
// It supports multi-keyword AND logic and optional filters (dead-link
// inclusion, date range). Returns empty string if no conditions apply.
// PostgreSQL-specific: Uses ILIKE for case-insensitive search and $N placeholders.
func (qb *RecipeQueryBuilder) BuildWhereClause(keywords []string, filters repository.RecipeSearchFilters) (clause string, args []interface{}) {
	var conditions []string
	paramIndex := 1

	// Add keyword conditions (multi-keyword AND logic)
	// Each keyword matches the title using ILIKE (case-insensitive)
	for _, keyword := range keywords {
		conditions = append(conditions, fmt.Sprintf("title ILIKE $%d", paramIndex))
		args = append(args, "%"+escapeILIKE(keyword)+"%")
		paramIndex++
	}

	// Exclude recipes whose source links were marked dead unless requested
	if !filters.IncludeDead {
		conditions = append(conditions, "source_dead = FALSE")
	}

	// Add date range filters on creation time
	if filters.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", paramIndex))
		args = append(args, *filters.From)
		paramIndex++
	}
	if filters.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", paramIndex))
		args = append(args, *filters.To)
	}

	// Return empty if no conditions
	if len(conditions) == 0 {
		return "", args
	}

	// Join all conditions with AND
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// escapeILIKE escapes LIKE metacharacters so user-supplied keywords match
// literally.
func escapeILIKE(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
