package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"recipebox/internal/domain/entity"
	"recipebox/internal/handler/http/auth"
	"recipebox/internal/handler/http/respond"
	"recipebox/internal/observability/logging"
	"recipebox/internal/usecase/importer"
)

// statusClientClosedRequest is the nginx convention for a caller that went
// away before the response was written.
const statusClientClosedRequest = 499

// importRequest is the JSON body for POST /recipes/import.
type importRequest struct {
	URL string `json:"url"`
}

type ImportHandler struct {
	Svc    *importer.Service
	Logger *slog.Logger
}

// ServeHTTP レシピインポート
// @Summary      レシピインポート
// @Description  指定されたURLのページからレシピを抽出して保存します
// @Tags         recipes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body importRequest true "インポート対象URL"
// @Success      201 {object} DTO "保存されたレシピ"
// @Failure      400 {string} string "Bad request - invalid body, URL, or disallowed target"
// @Failure      401 {string} string "Authentication required"
// @Failure      404 {string} string "Recipe page not found, or no recipe in page"
// @Failure      409 {string} string "Recipe already imported from this URL"
// @Failure      413 {string} string "Page body too large"
// @Failure      415 {string} string "Page is not HTML"
// @Failure      429 {string} string "Rate limit exceeded" headers(Retry-After=integer)
// @Failure      502 {string} string "Upstream fetch failed"
// @Failure      504 {string} string "Fetch deadline exceeded"
// @Router       /recipes/import [post]
func (h ImportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithRequestID(ctx, h.Logger)
	ctx = logging.WithLogger(ctx, logger)

	// Admission runs before the body is parsed: a throttled caller gets
	// 429 no matter what it sent.
	callerID := auth.UserFromContext(ctx)
	if err := h.Svc.Admit(callerID); err != nil {
		writeImportError(w, logger, "", err)
		return
	}

	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("request body must be JSON with a url field"))
		return
	}
	if req.URL == "" {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("url field required"))
		return
	}

	recipe, err := h.Svc.ImportAdmitted(ctx, req.URL)
	if err != nil {
		writeImportError(w, logger, req.URL, err)
		return
	}

	respond.JSON(w, http.StatusCreated, FromEntity(recipe))
}

// writeImportError maps pipeline failures onto HTTP responses. Every
// target-blocking failure collapses into one opaque message so a probing
// caller cannot learn which rule fired.
func writeImportError(w http.ResponseWriter, logger *slog.Logger, url string, err error) {
	var rateErr *importer.RateLimitedError
	if errors.As(err, &rateErr) {
		w.Header().Set("Retry-After", strconv.Itoa(int(rateErr.RetryAfter.Seconds())))
		respond.SafeErrorV2(w, http.StatusTooManyRequests,
			respond.NewAppError(http.StatusTooManyRequests, "Rate limit exceeded", err))
		return
	}

	var upstreamErr *importer.UpstreamStatusError
	if errors.As(err, &upstreamErr) {
		switch upstreamErr.StatusCode {
		case http.StatusNotFound:
			respond.SafeErrorV2(w, http.StatusNotFound,
				respond.NewAppError(http.StatusNotFound, "Recipe page not found", err))
		case http.StatusTooManyRequests:
			respond.SafeErrorV2(w, http.StatusBadGateway,
				respond.NewAppError(http.StatusBadGateway, "Recipe site is rate limiting us", err))
		default:
			respond.SafeErrorV2(w, http.StatusBadGateway,
				respond.NewAppError(http.StatusBadGateway,
					fmt.Sprintf("Recipe site returned status %d", upstreamErr.StatusCode), err))
		}
		return
	}

	code := http.StatusInternalServerError
	userMsg := "internal server error"

	switch {
	case errors.Is(err, importer.ErrUnauthenticated):
		code, userMsg = http.StatusUnauthorized, "Authentication required"
	case errors.Is(err, importer.ErrInvalidURL):
		code, userMsg = http.StatusBadRequest, "Invalid or unsupported URL"
	case errors.Is(err, importer.ErrBlockedTarget),
		errors.Is(err, importer.ErrTooManyRedirects):
		code, userMsg = http.StatusBadRequest, "Requested URL is not allowed"
	case errors.Is(err, importer.ErrTimeout):
		code, userMsg = http.StatusGatewayTimeout, "Fetch deadline exceeded"
	case errors.Is(err, importer.ErrUnreachable):
		code, userMsg = http.StatusBadGateway, "Could not reach the recipe site"
	case errors.Is(err, importer.ErrBodyTooLarge):
		code, userMsg = http.StatusRequestEntityTooLarge, "Page body too large"
	case errors.Is(err, importer.ErrNotHTML):
		code, userMsg = http.StatusUnsupportedMediaType, "Page is not HTML"
	case errors.Is(err, importer.ErrNoRecipe):
		code, userMsg = http.StatusNotFound, "No recipe found at this URL"
	case errors.Is(err, entity.ErrAlreadyExists):
		code, userMsg = http.StatusConflict, "Recipe already imported from this URL"
	case errors.Is(err, context.Canceled):
		// The caller disconnected mid-import; nobody is reading the
		// response and there is nothing to alert on.
		code, userMsg = statusClientClosedRequest, "Request canceled"
		logger.Debug("import canceled by client", slog.String("url", url))
	default:
		logger.Error("import failed",
			slog.String("url", url),
			slog.Any("error", err))
	}

	respond.SafeErrorV2(w, code, respond.NewAppError(code, userMsg, err))
}
