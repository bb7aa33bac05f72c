package recipe

import (
	"log/slog"
	"net/http"

	"recipebox/internal/common/pagination"
	"recipebox/internal/handler/http/auth"
	aiUC "recipebox/internal/usecase/ai"
	"recipebox/internal/usecase/feedimport"
	"recipebox/internal/usecase/importer"
	recUC "recipebox/internal/usecase/recipe"
)

// Register registers all recipe-related HTTP handlers with the given mux.
// It sets up routes for listing, searching, retrieving, deleting, and
// importing recipes. All routes require authentication via the auth
// middleware; write operations additionally require the admin role.
func Register(
	mux *http.ServeMux,
	svc *recUC.Service,
	imp *importer.Service,
	feedImp *feedimport.Service,
	similar *aiUC.Service,
	paginationCfg pagination.Config,
	logger *slog.Logger,
) {
	mux.Handle("GET    /recipes", auth.Authz(ListHandler{
		Svc:           svc,
		PaginationCfg: paginationCfg,
		Logger:        logger,
	}))
	mux.Handle("GET    /recipes/search", auth.Authz(SearchHandler{svc}))
	mux.Handle("GET    /recipes/{id}/similar", auth.Authz(SimilarHandler{similar}))
	mux.Handle("GET    /recipes/", auth.Authz(GetHandler{svc}))

	mux.Handle("POST   /recipes/import", auth.Authz(ImportHandler{Svc: imp, Logger: logger}))
	mux.Handle("POST   /recipes/import/feed", auth.Authz(FeedImportHandler{Svc: feedImp, Logger: logger}))
	mux.Handle("DELETE /recipes/", auth.Authz(DeleteHandler{svc}))
}
