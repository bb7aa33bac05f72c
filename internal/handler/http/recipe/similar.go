package recipe

import (
	"errors"
	"net/http"
	"strconv"

	"recipebox/internal/domain/entity"
	"recipebox/internal/handler/http/respond"
	aiUC "recipebox/internal/usecase/ai"
)

// similarItemDTO pairs a recipe with its similarity score.
type similarItemDTO struct {
	Recipe     DTO     `json:"recipe"`
	Similarity float64 `json:"similarity" example:"0.87"`
}

type SimilarHandler struct{ Svc *aiUC.Service }

// ServeHTTP 類似レシピ取得
// @Summary      類似レシピ取得
// @Description  埋め込みベクトルのコサイン距離で類似レシピを検索します
// @Tags         recipes
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "レシピID"
// @Param        limit query int false "取得件数" default(5) maximum(20)
// @Success      200 {array} similarItemDTO "類似レシピ"
// @Failure      400 {string} string "Bad request - invalid recipe ID or limit"
// @Failure      401 {string} string "Authentication required"
// @Failure      404 {string} string "Recipe not found, or not embedded yet"
// @Failure      503 {string} string "Embedding features are disabled"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /recipes/{id}/similar [get]
func (h SimilarHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("invalid recipe ID"))
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			respond.SafeError(w, http.StatusBadRequest,
				errors.New("invalid limit: must be a positive integer"))
			return
		}
	}

	results, err := h.Svc.Similar(r.Context(), id, limit)
	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, aiUC.ErrEmbeddingDisabled):
			code = http.StatusServiceUnavailable
		case errors.Is(err, entity.ErrNotFound):
			code = http.StatusNotFound
		case errors.Is(err, aiUC.ErrNoEmbedding):
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}

	out := make([]similarItemDTO, 0, len(results))
	for _, res := range results {
		out = append(out, similarItemDTO{
			Recipe:     FromEntity(res.Recipe),
			Similarity: res.Similarity,
		})
	}
	respond.JSON(w, http.StatusOK, out)
}
