package recipe

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"recipebox/internal/handler/http/respond"
	"recipebox/internal/repository"
	recUC "recipebox/internal/usecase/recipe"
)

type SearchHandler struct{ Svc *recUC.Service }

// ServeHTTP レシピ検索
// @Summary      レシピ検索
// @Description  マルチキーワードでレシピを検索します（AND論理）
// @Tags         recipes
// @Security     BearerAuth
// @Produce      json
// @Param        keyword query string true "検索キーワード（スペース区切り）"
// @Param        include_dead query bool false "リンク切れレシピを含める"
// @Param        from query string false "登録日時の開始（ISO 8601）"
// @Param        to query string false "登録日時の終了（ISO 8601）"
// @Success      200 {array} DTO "検索結果"
// @Failure      400 {string} string "Bad request"
// @Failure      401 {string} string "Authentication required"
// @Failure      500 {string} string "Server error"
// @Router       /recipes/search [get]
func (h SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	kw := r.URL.Query().Get("keyword")
	if kw == "" {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("keyword query param required"))
		return
	}
	if len(recUC.SplitKeywords(kw)) == 0 {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("keyword query param must contain at least one keyword"))
		return
	}

	var filters repository.RecipeSearchFilters

	if r.URL.Query().Get("include_dead") == "true" {
		filters.IncludeDead = true
	}

	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			respond.SafeError(w, http.StatusBadRequest,
				fmt.Errorf("invalid from date: %w", err))
			return
		}
		filters.From = &from
	}

	if toStr := r.URL.Query().Get("to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			respond.SafeError(w, http.StatusBadRequest,
				fmt.Errorf("invalid to date: %w", err))
			return
		}
		filters.To = &to
	}

	if filters.From != nil && filters.To != nil {
		if filters.From.After(*filters.To) {
			respond.SafeError(w, http.StatusBadRequest,
				errors.New("invalid date range: from date must be before or equal to to date"))
			return
		}
	}

	list, err := h.Svc.Search(r.Context(), kw, filters)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]DTO, 0, len(list))
	for _, e := range list {
		out = append(out, FromEntity(e))
	}
	respond.JSON(w, http.StatusOK, out)
}
