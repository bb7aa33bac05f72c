// Package pagination implements offset pagination for the recipe list and
// search endpoints.
package pagination

import (
	"fmt"
	"net/http"
	"strconv"

	"recipebox/pkg/config"
)

// Config bounds what a caller may request per page.
type Config struct {
	DefaultPage  int
	DefaultLimit int
	MaxLimit     int
}

func DefaultConfig() Config {
	return Config{DefaultPage: 1, DefaultLimit: 20, MaxLimit: 100}
}

// LoadFromEnv reads PAGINATION_DEFAULT_PAGE, PAGINATION_DEFAULT_LIMIT and
// PAGINATION_MAX_LIMIT, keeping the defaults for unset or unparseable
// values.
func LoadFromEnv() Config {
	cfg := DefaultConfig()
	cfg.DefaultPage = config.GetEnvInt("PAGINATION_DEFAULT_PAGE", cfg.DefaultPage)
	cfg.DefaultLimit = config.GetEnvInt("PAGINATION_DEFAULT_LIMIT", cfg.DefaultLimit)
	cfg.MaxLimit = config.GetEnvInt("PAGINATION_MAX_LIMIT", cfg.MaxLimit)
	return cfg
}

// Params are the validated pagination inputs of one request. Page is
// 1-based.
type Params struct {
	Page  int
	Limit int
}

// ParseQueryParams reads page and limit from the request query. Missing
// parameters take the configured defaults; present but invalid ones are
// an error so the handler can answer 400 rather than silently clamping.
func ParseQueryParams(r *http.Request, config Config) (Params, error) {
	params := Params{Page: config.DefaultPage, Limit: config.DefaultLimit}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return params, fmt.Errorf("invalid query parameter: page must be a positive integer")
		}
		params.Page = page
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > config.MaxLimit {
			return params, fmt.Errorf("invalid query parameter: limit must be between 1 and %d", config.MaxLimit)
		}
		params.Limit = limit
	}
	return params, nil
}

// CalculateOffset converts a 1-based page to the SQL OFFSET.
func CalculateOffset(page, limit int) int {
	return (page - 1) * limit
}

// CalculateTotalPages is a ceiling division; an empty result set still has
// one page so clients always get a valid page range.
func CalculateTotalPages(total int64, limit int) int {
	if total == 0 {
		return 1
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// Metadata is the pagination block of a list response.
type Metadata struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// Response wraps one page of items with its metadata.
type Response[T any] struct {
	Data       []T      `json:"data"`
	Pagination Metadata `json:"pagination"`
}

func NewResponse[T any](data []T, metadata Metadata) Response[T] {
	return Response[T]{Data: data, Pagination: metadata}
}
