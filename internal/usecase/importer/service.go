package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"recipebox/internal/domain/entity"
	"recipebox/internal/observability/logging"
	"recipebox/internal/observability/metrics"
	"recipebox/internal/observability/tracing"
	"recipebox/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// Config holds tunables for the import pipeline.
type Config struct {
	// MaxBodySize is the byte cap applied to the fetched page body.
	MaxBodySize int64

	// AIFallbackEnabled turns on the LLM extraction stage after both the
	// static and rendered extractions came up empty. Off by default; the
	// markup-based strategy behaves identically either way.
	AIFallbackEnabled bool
}

// Service orchestrates one recipe import: admission, validation, the guarded
// fetch, content checks, extraction, and persistence.
//
// Stage order is fixed and short-circuits on the first failure so that no
// network access happens for unauthenticated or throttled callers, and no
// body bytes are read for responses that already failed the status or
// content-type checks.
type Service struct {
	Limiter   AdmissionLimiter
	Fetcher   PageFetcher
	Extractor Extractor
	Renderer  Renderer
	AIParser  AIParser // optional, used only when cfg.AIFallbackEnabled
	Recipes   repository.RecipeRepository
	Hook      EmbeddingHook // optional
	cfg       Config
}

// NewService creates an import Service.
//
// Renderer, AIParser, and Hook may be nil: a nil Renderer skips the render
// fallback (extraction then degrades to the static result), a nil AIParser
// disables the LLM stage regardless of configuration, and a nil Hook skips
// embedding generation.
func NewService(
	limiter AdmissionLimiter,
	fetcher PageFetcher,
	extractor Extractor,
	renderer Renderer,
	aiParser AIParser,
	recipes repository.RecipeRepository,
	hook EmbeddingHook,
	cfg Config,
) *Service {
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = 10 * 1024 * 1024
	}
	return &Service{
		Limiter:   limiter,
		Fetcher:   fetcher,
		Extractor: extractor,
		Renderer:  renderer,
		AIParser:  aiParser,
		Recipes:   recipes,
		Hook:      hook,
		cfg:       cfg,
	}
}

// Import runs the full pipeline for one caller-supplied URL and persists the
// extracted recipe.
//
// Errors are the package sentinels plus RateLimitedError and
// UpstreamStatusError; nothing else escapes. A refused admission has no side
// effects and does not count toward the caller's window.
func (s *Service) Import(ctx context.Context, callerID, rawURL string) (*entity.Recipe, error) {
	if err := s.Admit(callerID); err != nil {
		return nil, err
	}
	return s.ImportAdmitted(ctx, rawURL)
}

// Admit runs the identity and rate-limit stages only. The HTTP handler calls
// it before the request body is even parsed, so a throttled caller sees 429
// regardless of what it sent. A refusal records nothing against the caller's
// window.
func (s *Service) Admit(callerID string) error {
	if callerID == "" {
		return ErrUnauthenticated
	}

	decision := s.Limiter.Admit(callerID)
	if !decision.Allowed {
		metrics.RecordImportOutcome("rate_limited")
		return &RateLimitedError{RetryAfter: decision.RetryAfter}
	}
	return nil
}

// ImportAdmitted runs the pipeline for a caller that already passed Admit.
func (s *Service) ImportAdmitted(ctx context.Context, rawURL string) (*entity.Recipe, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "import.pipeline")
	defer span.End()
	logger := logging.FromContext(ctx)

	if err := entity.ValidateURL(rawURL); err != nil {
		metrics.RecordImportOutcome("invalid_url")
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	start := time.Now()
	page, err := s.Fetcher.Fetch(ctx, rawURL)
	if err != nil {
		metrics.RecordImportOutcome(outcomeForFetchError(err))
		return nil, err
	}
	defer func() {
		_ = page.Close()
	}()

	if status := page.StatusCode(); status < 200 || status > 299 {
		metrics.RecordImportOutcome("upstream_error")
		return nil, &UpstreamStatusError{StatusCode: status}
	}

	if !isHTMLContentType(page.ContentType()) {
		metrics.RecordImportOutcome("not_html")
		return nil, fmt.Errorf("%w: got %q", ErrNotHTML, page.ContentType())
	}

	body, err := page.ReadBody(s.cfg.MaxBodySize)
	if err != nil {
		metrics.RecordImportOutcome(outcomeForFetchError(err))
		return nil, err
	}
	metrics.RecordFetchDuration(time.Since(start))

	recipe, stage := s.extractRecipe(ctx, body, rawURL)
	metrics.RecordExtractionStage(stage)
	span.SetAttributes(attribute.String("import.extraction_stage", stage))
	if recipe == nil {
		metrics.RecordImportOutcome("no_recipe")
		return nil, fmt.Errorf("%w: %s", ErrNoRecipe, rawURL)
	}

	recipe.SourceURL = rawURL
	if err := recipe.Validate(); err != nil {
		// Extraction produced something the domain refuses; treat the
		// page as unsupported rather than failing the request.
		logger.Warn("extracted recipe failed validation",
			slog.String("url", rawURL),
			slog.Any("error", err))
		metrics.RecordImportOutcome("no_recipe")
		return nil, fmt.Errorf("%w: %s", ErrNoRecipe, rawURL)
	}

	if err := s.Recipes.Create(ctx, recipe); err != nil {
		if errors.Is(err, entity.ErrAlreadyExists) {
			metrics.RecordImportOutcome("duplicate")
			return nil, err
		}
		metrics.RecordImportOutcome("storage_error")
		return nil, fmt.Errorf("store recipe: %w", err)
	}

	if s.Hook != nil {
		// Embedding generation must not extend the request lifetime.
		s.Hook.OnRecipeImported(context.WithoutCancel(ctx), recipe)
	}

	metrics.RecordImportOutcome("success")
	logger.Info("recipe imported",
		slog.Int64("recipe_id", recipe.ID),
		slog.String("url", rawURL),
		slog.String("extraction_stage", stage),
		slog.Duration("duration", time.Since(start)))

	return recipe, nil
}

// extractRecipe applies the extraction strategy and reports which stage
// produced the result: "static", "rendered", "ai", or "none".
//
// The render fallback is invoked only when static extraction found nothing,
// because rendering is expensive and externally rate limited. Renderer
// failures degrade to "no recipe"; they are never surfaced as request
// errors.
func (s *Service) extractRecipe(ctx context.Context, html []byte, sourceURL string) (*entity.Recipe, string) {
	logger := logging.FromContext(ctx)

	recipe, err := s.Extractor.Extract(html, sourceURL)
	if err != nil {
		logger.Warn("static extraction failed",
			slog.String("url", sourceURL),
			slog.Any("error", err))
	}
	if recipe != nil {
		return recipe, "static"
	}

	rendered := s.renderFallback(ctx, sourceURL)
	if rendered != "" {
		recipe, err = s.Extractor.Extract([]byte(rendered), sourceURL)
		if err != nil {
			logger.Warn("extraction on rendered HTML failed",
				slog.String("url", sourceURL),
				slog.Any("error", err))
		}
		if recipe != nil {
			return recipe, "rendered"
		}
	}

	if s.cfg.AIFallbackEnabled && s.AIParser != nil {
		text := string(html)
		if rendered != "" {
			text = rendered
		}
		recipe, err = s.AIParser.Parse(ctx, text, sourceURL)
		if err != nil {
			logger.Warn("ai extraction failed",
				slog.String("url", sourceURL),
				slog.Any("error", err))
		}
		if recipe != nil {
			return recipe, "ai"
		}
	}

	return nil, "none"
}

// renderFallback invokes the render collaborator, normalizing every failure
// to an empty string.
func (s *Service) renderFallback(ctx context.Context, sourceURL string) string {
	if s.Renderer == nil {
		return ""
	}

	rendered, err := s.Renderer.Render(ctx, sourceURL)
	if err != nil {
		logging.FromContext(ctx).Warn("render fallback failed",
			slog.String("url", sourceURL),
			slog.Any("error", err))
		return ""
	}
	return rendered
}

// isHTMLContentType reports whether ct names an HTML-family media type.
func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}

// outcomeForFetchError maps fetch-path errors onto metric outcome labels.
func outcomeForFetchError(err error) string {
	switch {
	case errors.Is(err, ErrBlockedTarget), errors.Is(err, ErrTooManyRedirects):
		return "blocked"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrBodyTooLarge):
		return "too_large"
	case errors.Is(err, ErrInvalidURL):
		return "invalid_url"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "fetch_error"
	}
}

// ValidateImportURL checks rawURL the way the pipeline will before any
// network access: parseable, http(s), and on a standard port. Handlers call
// it to fail fast with a field-level message.
func ValidateImportURL(rawURL string) error {
	if err := entity.ValidateURL(rawURL); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if port := u.Port(); port != "" && port != "80" && port != "443" {
		return fmt.Errorf("%w: non-standard port %s", ErrInvalidURL, port)
	}
	return nil
}
