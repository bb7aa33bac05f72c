package recipe

import (
	"errors"
	"net/http"

	"recipebox/internal/handler/http/pathutil"
	"recipebox/internal/handler/http/respond"
	recUC "recipebox/internal/usecase/recipe"
)

type DeleteHandler struct{ Svc *recUC.Service }

// ServeHTTP レシピ削除
// @Summary      レシピ削除
// @Description  レシピを削除します（埋め込みもカスケード削除されます）
// @Tags         recipes
// @Security     BearerAuth
// @Param        id path int true "レシピID"
// @Success      204 "No Content"
// @Failure      400 {string} string "Bad request - invalid ID"
// @Failure      401 {string} string "Authentication required - missing or invalid JWT token"
// @Failure      403 {string} string "Forbidden - admin role required"
// @Failure      404 {string} string "Not found - recipe not found"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /recipes/{id} [delete]
func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/recipes/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, recUC.ErrInvalidRecipeID) {
			code = http.StatusBadRequest
		} else if errors.Is(err, recUC.ErrRecipeNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
