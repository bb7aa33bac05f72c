package recipe

import (
	"errors"
	"net/http"

	"recipebox/internal/handler/http/pathutil"
	"recipebox/internal/handler/http/respond"
	recUC "recipebox/internal/usecase/recipe"
)

type GetHandler struct{ Svc *recUC.Service }

// ServeHTTP レシピ詳細取得
// @Summary      レシピ詳細取得
// @Description  指定されたIDのレシピを取得します（材料と手順を含む）
// @Tags         recipes
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "レシピID"
// @Success      200 {object} DTO "レシピ詳細"
// @Failure      400 {string} string "Bad request - invalid recipe ID"
// @Failure      401 {string} string "Authentication required - missing or invalid JWT token"
// @Failure      403 {string} string "Forbidden - insufficient permissions"
// @Failure      404 {string} string "Not found - recipe not found"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /recipes/{id} [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/recipes/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	recipe, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, recUC.ErrInvalidRecipeID) {
			code = http.StatusBadRequest
		} else if errors.Is(err, recUC.ErrRecipeNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}

	respond.JSON(w, http.StatusOK, FromEntity(recipe))
}
