package ai

import (
	"context"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"recipebox/internal/domain/entity"
	"recipebox/internal/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// embeddingTimeout is the maximum time to wait for embedding generation.
	// This prevents the embedding goroutine from running indefinitely.
	embeddingTimeout = 30 * time.Second
)

// Prometheus metrics for the embedding hook
var (
	embeddingPendingTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recipe_embedding_pending_total",
			Help: "Number of pending embedding operations",
		},
	)

	embeddingProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_embedding_processed_total",
			Help: "Total embeddings processed",
		},
		[]string{"status"},
	)
)

// EmbeddingHook generates recipe embeddings asynchronously after a
// successful import. It satisfies the import pipeline's hook contract: the
// call returns immediately and all failures degrade to log lines, never to
// request errors.
type EmbeddingHook struct {
	provider   EmbeddingProvider
	embeddings repository.RecipeEmbeddingRepository
	enabled    bool
}

// NewEmbeddingHook creates a new embedding hook.
//
// Parameters:
//   - provider: embedding provider implementation
//   - embeddings: embedding persistence
//   - enabled: feature flag; when false the hook is a no-op
func NewEmbeddingHook(provider EmbeddingProvider, embeddings repository.RecipeEmbeddingRepository, enabled bool) *EmbeddingHook {
	return &EmbeddingHook{
		provider:   provider,
		embeddings: embeddings,
		enabled:    enabled,
	}
}

// OnRecipeImported generates an embedding for the recipe asynchronously.
// This method is non-blocking and returns immediately.
//
// Behavior:
//   - Spawns a goroutine for embedding generation
//   - Uses a detached context with a 30s timeout
//   - Gracefully handles failures (logs warnings, no error propagation)
//   - Skips execution when EMBEDDING_ENABLED=false
func (h *EmbeddingHook) OnRecipeImported(ctx context.Context, recipe *entity.Recipe) {
	if !h.enabled || h.provider == nil {
		return
	}
	if recipe == nil {
		slog.Warn("Cannot embed nil recipe")
		return
	}

	go h.embedRecipe(recipe)
}

// embedRecipe performs the actual embedding generation in a goroutine.
func (h *EmbeddingHook) embedRecipe(recipe *entity.Recipe) {
	// The gauge must come back down on every exit path, including panic.
	embeddingPendingTotal.Inc()
	completed := false
	defer func() {
		if !completed {
			embeddingPendingTotal.Dec()
			embeddingProcessedTotal.WithLabelValues("panic").Inc()
		}
		if r := recover(); r != nil {
			slog.Error("Panic in embedding hook",
				slog.Int64("recipe_id", recipe.ID),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	// Detached context: the import request that triggered this has already
	// returned to its caller.
	ctx, cancel := context.WithTimeout(context.Background(), embeddingTimeout)
	defer cancel()

	slog.Info("Generating recipe embedding",
		slog.Int64("recipe_id", recipe.ID),
		slog.String("title", recipe.Title))

	start := time.Now()
	vector, err := h.provider.Embed(ctx, EmbeddingText(recipe))
	duration := time.Since(start)

	if err != nil {
		completed = true
		recordEmbeddingComplete(false)
		slog.Warn("Recipe embedding failed (non-blocking)",
			slog.Int64("recipe_id", recipe.ID),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return
	}

	emb := &entity.RecipeEmbedding{
		RecipeID:  recipe.ID,
		Provider:  h.provider.Name(),
		Model:     h.provider.Model(),
		Dimension: len(vector),
		Embedding: vector,
	}
	if err := h.embeddings.Upsert(ctx, emb); err != nil {
		completed = true
		recordEmbeddingComplete(false)
		slog.Warn("Recipe embedding store failed (non-blocking)",
			slog.Int64("recipe_id", recipe.ID),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return
	}

	completed = true
	recordEmbeddingComplete(true)

	slog.Info("Recipe embedding generated successfully",
		slog.Int64("recipe_id", recipe.ID),
		slog.Int("dimension", len(vector)),
		slog.Duration("duration", duration))
}

// EmbeddingText builds the text a recipe is embedded from: the title plus
// the ingredient lines. Instructions are deliberately excluded; two recipes
// are similar because of what goes in them, not how the steps are phrased.
func EmbeddingText(recipe *entity.Recipe) string {
	parts := make([]string, 0, len(recipe.Ingredients)+1)
	parts = append(parts, recipe.Title)
	parts = append(parts, recipe.Ingredients...)
	return strings.Join(parts, "\n")
}

// recordEmbeddingComplete decrements the pending count and records the result.
func recordEmbeddingComplete(success bool) {
	embeddingPendingTotal.Dec()
	status := "success"
	if !success {
		status = "failure"
	}
	embeddingProcessedTotal.WithLabelValues(status).Inc()
}
