// Package linkcheck implements the periodic link verification sweep run by
// the worker. Recipes whose source pages have not been checked recently are
// re-fetched through the same guarded pipeline that imports use, their link
// health is recorded, and a summary is delivered to the configured notifier.
package linkcheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"recipebox/internal/domain/entity"
	"recipebox/internal/infra/notifier"
	"recipebox/internal/observability/metrics"
	"recipebox/internal/repository"
	"recipebox/internal/usecase/importer"
	"recipebox/pkg/config"
)

// Config holds configuration for the verification sweep.
type Config struct {
	// RecheckInterval is how long a verification result stays fresh.
	// Recipes checked within this window are skipped.
	RecheckInterval time.Duration

	// BatchSize is the maximum number of recipes verified per sweep.
	BatchSize int

	// Parallelism is the maximum number of concurrent probes.
	Parallelism int

	// MaxBodyBytes caps how much of each probed page is read. Probes only
	// confirm the page answers; they never extract from it.
	MaxBodyBytes int64
}

// DefaultConfig returns the default sweep configuration.
func DefaultConfig() Config {
	return Config{
		RecheckInterval: 7 * 24 * time.Hour,
		BatchSize:       200,
		Parallelism:     4,
		MaxBodyBytes:    64 * 1024,
	}
}

// LoadConfigFromEnv loads sweep configuration from environment variables,
// falling back to defaults:
//
//	LINK_RECHECK_INTERVAL    - freshness window (default: 168h)
//	LINK_CHECK_BATCH_SIZE    - recipes per sweep (default: 200)
//	LINK_CHECK_PARALLELISM   - concurrent probes (default: 4)
//	LINK_CHECK_MAX_BODY_KB   - per-probe body cap in KiB (default: 64)
func LoadConfigFromEnv() Config {
	def := DefaultConfig()
	return Config{
		RecheckInterval: config.GetEnvDuration("LINK_RECHECK_INTERVAL", def.RecheckInterval),
		BatchSize:       config.GetEnvInt("LINK_CHECK_BATCH_SIZE", def.BatchSize),
		Parallelism:     config.GetEnvInt("LINK_CHECK_PARALLELISM", def.Parallelism),
		MaxBodyBytes:    int64(config.GetEnvInt("LINK_CHECK_MAX_BODY_KB", 64)) * 1024,
	}
}

// Validate checks the configuration for sane bounds.
func (c Config) Validate() error {
	if c.RecheckInterval < time.Hour {
		return fmt.Errorf("recheck interval must be at least 1h, got %s", c.RecheckInterval)
	}
	if c.BatchSize < 1 || c.BatchSize > 10000 {
		return fmt.Errorf("batch size must be between 1 and 10000, got %d", c.BatchSize)
	}
	if c.Parallelism < 1 || c.Parallelism > 16 {
		return fmt.Errorf("parallelism must be between 1 and 16, got %d", c.Parallelism)
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("max body bytes must be at least 1024, got %d", c.MaxBodyBytes)
	}
	return nil
}

// Service runs link verification sweeps.
type Service struct {
	recipes  repository.RecipeRepository
	fetcher  importer.PageFetcher
	notifier notifier.Notifier
	config   Config
}

// NewService creates a sweep service. The notifier may be a NoOpNotifier but
// must not be nil.
func NewService(recipes repository.RecipeRepository, fetcher importer.PageFetcher, n notifier.Notifier, cfg Config) *Service {
	return &Service{
		recipes:  recipes,
		fetcher:  fetcher,
		notifier: n,
		config:   cfg,
	}
}

// probeOutcome is the per-recipe result recorded by a sweep worker.
type probeOutcome struct {
	recipe *entity.Recipe
	alive  bool
}

// Run executes one verification sweep and returns its report.
//
// Each stale recipe is probed concurrently up to the configured parallelism.
// A probe failure marks the recipe dead but never aborts the sweep; only
// context cancellation stops it early. The report is delivered to the
// notifier when at least one recipe was checked; notification failures are
// logged and do not fail the sweep.
func (s *Service) Run(ctx context.Context) (*notifier.LinkReport, error) {
	start := time.Now()
	cutoff := start.Add(-s.config.RecheckInterval)

	stale, err := s.recipes.ListUnverifiedSince(ctx, cutoff, s.config.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("list stale recipes: %w", err)
	}

	slog.Info("link verification sweep started",
		slog.Int("candidates", len(stale)),
		slog.Time("cutoff", cutoff))

	outcomes := make([]probeOutcome, len(stale))
	var aliveCount atomic.Int64

	eg, egCtx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, s.config.Parallelism)

	for i, recipe := range stale {
		i, recipe := i, recipe
		eg.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-egCtx.Done():
				return egCtx.Err()
			}

			alive := s.probe(egCtx, recipe.SourceURL)
			outcomes[i] = probeOutcome{recipe: recipe, alive: alive}
			if alive {
				aliveCount.Add(1)
				metrics.RecordLinkCheck("alive")
			} else {
				metrics.RecordLinkCheck("dead")
			}

			if err := s.recipes.MarkLinkHealth(egCtx, recipe.ID, !alive, time.Now()); err != nil {
				// Recording failures are logged, not fatal: the recipe
				// stays stale and is retried next sweep.
				slog.Warn("failed to record link health",
					slog.Int64("recipe_id", recipe.ID),
					slog.Any("error", err))
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("verification sweep aborted: %w", err)
	}

	report := s.buildReport(outcomes, int(aliveCount.Load()), time.Since(start))

	slog.Info("link verification sweep finished",
		slog.Int("checked", report.Checked),
		slog.Int("alive", report.Alive),
		slog.Int("dead", report.Dead),
		slog.Int("newly_dead", len(report.NewlyDead)),
		slog.Duration("duration", report.Duration))

	if report.Checked > 0 {
		if err := s.notifier.NotifyLinkReport(ctx, report); err != nil {
			slog.Warn("link report notification failed", slog.Any("error", err))
		}
	}

	return report, nil
}

// probe re-fetches a source URL through the guarded pipeline and reports
// whether the page still answers. Any guard refusal, network failure, or
// error status counts as dead. A body over the probe cap still counts as
// alive: the page exists, the probe just declines to read it.
func (s *Service) probe(ctx context.Context, url string) bool {
	page, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return false
	}
	defer func() { _ = page.Close() }()

	if page.StatusCode() < 200 || page.StatusCode() >= 400 {
		return false
	}

	if _, err := page.ReadBody(s.config.MaxBodyBytes); err != nil {
		return errors.Is(err, importer.ErrBodyTooLarge)
	}
	return true
}

// buildReport assembles the sweep summary. A link is newly dead when the
// probe failed and the recipe was not already marked dead.
func (s *Service) buildReport(outcomes []probeOutcome, alive int, duration time.Duration) *notifier.LinkReport {
	report := &notifier.LinkReport{
		Checked:  len(outcomes),
		Alive:    alive,
		Dead:     len(outcomes) - alive,
		Duration: duration,
	}
	for _, o := range outcomes {
		if o.recipe == nil || o.alive || o.recipe.SourceDead {
			continue
		}
		report.NewlyDead = append(report.NewlyDead, notifier.DeadLink{
			RecipeID: o.recipe.ID,
			Title:    o.recipe.Title,
			URL:      o.recipe.SourceURL,
		})
	}
	return report
}
