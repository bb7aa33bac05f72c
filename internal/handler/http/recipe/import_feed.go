package recipe

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"recipebox/internal/handler/http/auth"
	"recipebox/internal/handler/http/respond"
	"recipebox/internal/observability/logging"
	"recipebox/internal/usecase/feedimport"
)

// feedImportRequest is the JSON body for POST /recipes/import/feed.
type feedImportRequest struct {
	FeedURL string `json:"feed_url"`
}

// feedItemDTO reports the outcome of one feed entry.
type feedItemDTO struct {
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	Outcome  string `json:"outcome"`
	RecipeID int64  `json:"recipe_id,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// feedImportResponse summarizes one feed import run.
type feedImportResponse struct {
	ItemsFound int           `json:"items_found"`
	Attempted  int           `json:"attempted"`
	Imported   int           `json:"imported"`
	Items      []feedItemDTO `json:"items"`
	DurationMS int64         `json:"duration_ms"`
}

type FeedImportHandler struct {
	Svc    *feedimport.Service
	Logger *slog.Logger
}

// ServeHTTP フィード一括インポート
// @Summary      フィード一括インポート
// @Description  RSS/Atomフィードのエントリーリンクをレシピとして一括インポートします
// @Tags         recipes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body feedImportRequest true "インポート対象フィードURL"
// @Success      200 {object} feedImportResponse "インポート結果"
// @Failure      400 {string} string "Bad request - invalid body, URL, or disallowed target"
// @Failure      401 {string} string "Authentication required"
// @Failure      422 {string} string "Body did not parse as RSS/Atom"
// @Failure      429 {string} string "Rate limit exceeded" headers(Retry-After=integer)
// @Failure      502 {string} string "Upstream fetch failed"
// @Failure      504 {string} string "Fetch deadline exceeded"
// @Router       /recipes/import/feed [post]
func (h FeedImportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithRequestID(ctx, h.Logger)
	ctx = logging.WithLogger(ctx, logger)

	var req feedImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("request body must be JSON with a feed_url field"))
		return
	}
	if req.FeedURL == "" {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("feed_url field required"))
		return
	}

	callerID := auth.UserFromContext(ctx)
	result, err := h.Svc.ImportFeed(ctx, callerID, req.FeedURL)
	if err != nil {
		if errors.Is(err, feedimport.ErrNotAFeed) {
			respond.SafeErrorV2(w, http.StatusUnprocessableEntity,
				respond.NewAppError(http.StatusUnprocessableEntity,
					"URL did not return an RSS/Atom feed", err))
			return
		}
		// The feed URL goes through the same guarded fetch as a single
		// import, so the same response mapping applies.
		writeImportError(w, logger, req.FeedURL, err)
		return
	}

	out := feedImportResponse{
		ItemsFound: result.ItemsFound,
		Attempted:  result.Attempted,
		Imported:   result.Imported,
		Items:      make([]feedItemDTO, 0, len(result.Items)),
		DurationMS: result.Duration.Milliseconds(),
	}
	for _, item := range result.Items {
		out.Items = append(out.Items, feedItemDTO{
			URL:      item.URL,
			Title:    item.Title,
			Outcome:  item.Outcome,
			RecipeID: item.RecipeID,
			Detail:   item.Detail,
		})
	}

	respond.JSON(w, http.StatusOK, out)
}
