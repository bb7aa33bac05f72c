// Package feedimport implements bulk recipe import from an RSS/Atom feed.
// The feed URL passes through the same guarded fetch as single imports, and
// each entry link is then imported through the normal pipeline so no entry
// bypasses admission control or target validation.
package feedimport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"recipebox/internal/domain/entity"
	"recipebox/internal/infra/feed"
	"recipebox/internal/observability/logging"
	"recipebox/internal/usecase/importer"
	"recipebox/pkg/config"
)

// ErrNotAFeed indicates the fetched document could not be parsed as an
// RSS/Atom feed.
var ErrNotAFeed = errors.New("document is not a recognizable feed")

// Feed bodies are far smaller than rendered pages; cap them well below the
// page fetch limit.
const maxFeedBytes = 5 * 1024 * 1024

// Config holds feed import behavior settings.
type Config struct {
	// MaxItems is the maximum number of entry links imported per feed.
	MaxItems int

	// Parallelism is the maximum number of concurrent entry imports.
	Parallelism int
}

// DefaultConfig returns the default feed import configuration.
func DefaultConfig() Config {
	return Config{
		MaxItems:    20,
		Parallelism: 4,
	}
}

// LoadConfigFromEnv reads feed import configuration from environment
// variables, falling back to defaults.
func LoadConfigFromEnv() Config {
	def := DefaultConfig()
	return Config{
		MaxItems:    config.GetEnvInt("FEED_IMPORT_MAX_ITEMS", def.MaxItems),
		Parallelism: config.GetEnvInt("FEED_IMPORT_PARALLELISM", def.Parallelism),
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.MaxItems <= 0 || c.MaxItems > 100 {
		return fmt.Errorf("max items must be between 1 and 100, got %d", c.MaxItems)
	}
	if c.Parallelism <= 0 || c.Parallelism > 16 {
		return fmt.Errorf("parallelism must be between 1 and 16, got %d", c.Parallelism)
	}
	return nil
}

// RecipeImporter runs one entry link through the import pipeline.
// *importer.Service satisfies it.
type RecipeImporter interface {
	Import(ctx context.Context, callerID, rawURL string) (*entity.Recipe, error)
}

// FeedParser turns fetched feed bytes into entries. *feed.Parser satisfies
// it.
type FeedParser interface {
	Parse(data []byte, feedURL string) ([]feed.Entry, error)
}

// Item outcome values reported per entry.
const (
	OutcomeImported    = "imported"
	OutcomeDuplicate   = "duplicate"
	OutcomeNoRecipe    = "no_recipe"
	OutcomeRateLimited = "rate_limited"
	OutcomeFailed      = "failed"
)

// ItemResult reports the outcome of one feed entry.
type ItemResult struct {
	URL      string
	Title    string
	Outcome  string
	RecipeID int64 // set when Outcome is "imported"
	Detail   string
}

// Result summarizes one feed import run.
type Result struct {
	ItemsFound int
	Attempted  int
	Imported   int
	Items      []ItemResult
	Duration   time.Duration
}

// Service orchestrates bulk feed imports.
type Service struct {
	Fetcher  importer.PageFetcher
	Parser   FeedParser
	Importer RecipeImporter
	cfg      Config
}

// NewService creates a feed import Service.
func NewService(fetcher importer.PageFetcher, parser FeedParser, recipeImporter RecipeImporter, cfg Config) *Service {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = DefaultConfig().MaxItems
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = DefaultConfig().Parallelism
	}
	return &Service{
		Fetcher:  fetcher,
		Parser:   parser,
		Importer: recipeImporter,
		cfg:      cfg,
	}
}

// ImportFeed fetches the feed through the guarded pipeline, parses it, and
// imports up to MaxItems entry links concurrently. Entry failures never abort
// the batch; each entry reports its own outcome. The whole run fails only
// when the feed itself cannot be fetched or parsed.
//
// Errors:
//   - importer.ErrUnauthenticated: missing caller identity
//   - importer.ErrInvalidURL, importer.ErrBlockedTarget and the other fetch
//     sentinels: the feed URL itself was refused
//   - *importer.UpstreamStatusError: the feed host answered non-2xx
//   - ErrNotAFeed: the body did not parse as RSS/Atom
func (s *Service) ImportFeed(ctx context.Context, callerID, feedURL string) (*Result, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	if callerID == "" {
		return nil, importer.ErrUnauthenticated
	}

	if err := importer.ValidateImportURL(feedURL); err != nil {
		return nil, err
	}

	page, err := s.Fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = page.Close() }()

	if page.StatusCode() < 200 || page.StatusCode() > 299 {
		return nil, &importer.UpstreamStatusError{StatusCode: page.StatusCode()}
	}

	body, err := page.ReadBody(maxFeedBytes)
	if err != nil {
		return nil, err
	}

	entries, err := s.Parser.Parse(body, feedURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAFeed, err)
	}

	result := &Result{ItemsFound: len(entries)}
	if len(entries) > s.cfg.MaxItems {
		entries = entries[:s.cfg.MaxItems]
	}
	result.Attempted = len(entries)
	result.Items = make([]ItemResult, len(entries))

	var imported int64
	sem := make(chan struct{}, s.cfg.Parallelism)
	eg, egCtx := errgroup.WithContext(ctx)

	for i, entry := range entries {
		i, entry := i, entry
		eg.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			item := s.importEntry(egCtx, callerID, entry)
			if item.Outcome == OutcomeImported {
				atomic.AddInt64(&imported, 1)
			}
			result.Items[i] = item

			// Context cancellation aborts the batch; everything else
			// is a per-entry outcome
			if egCtx.Err() != nil {
				return egCtx.Err()
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return result, err
	}

	result.Imported = int(imported)
	result.Duration = time.Since(start)

	logger.Info("feed import completed",
		slog.String("feed_url", feedURL),
		slog.Int("items_found", result.ItemsFound),
		slog.Int("attempted", result.Attempted),
		slog.Int("imported", result.Imported),
		slog.Duration("duration", result.Duration),
	)

	return result, nil
}

// importEntry runs one entry through the import pipeline and classifies the
// outcome.
func (s *Service) importEntry(ctx context.Context, callerID string, entry feed.Entry) ItemResult {
	item := ItemResult{URL: entry.Link, Title: entry.Title}

	recipe, err := s.Importer.Import(ctx, callerID, entry.Link)
	if err == nil {
		item.Outcome = OutcomeImported
		item.RecipeID = recipe.ID
		return item
	}

	var rateLimited *importer.RateLimitedError
	switch {
	case errors.Is(err, entity.ErrAlreadyExists):
		item.Outcome = OutcomeDuplicate
	case errors.Is(err, importer.ErrNoRecipe):
		item.Outcome = OutcomeNoRecipe
	case errors.As(err, &rateLimited):
		item.Outcome = OutcomeRateLimited
		item.Detail = rateLimited.Error()
	default:
		item.Outcome = OutcomeFailed
		item.Detail = err.Error()
	}
	return item
}
