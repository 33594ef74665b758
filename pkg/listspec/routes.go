package listspec

import (
	"net/http"

	"github.com/gorilla/mux"
)

// MiddlewareFunc wraps an http.Handler with additional behavior, such as
// authentication or rate limiting.
type MiddlewareFunc func(http.Handler) http.Handler

// SetupMuxRoutes registers the list and bulk-destroy routes on a mux
// router. authMiddleware is optional; when provided, both routes are
// wrapped with it.
//
//	router := mux.NewRouter()
//	listspec.SetupMuxRoutes(router.PathPrefix("/api").Subrouter(), handler, nil)
func SetupMuxRoutes(muxRouter *mux.Router, handler *Handler, authMiddleware MiddlewareFunc) {
	listHandler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.HandleList(w, r, mux.Vars(r))
	}))
	bulkDeleteHandler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.HandleBulkDelete(w, r, mux.Vars(r))
	}))

	if authMiddleware != nil {
		listHandler = authMiddleware(listHandler)
		bulkDeleteHandler = authMiddleware(bulkDeleteHandler)
	}

	muxRouter.Handle("/{entity}", listHandler).Methods("GET")
	muxRouter.Handle("/{entity}", bulkDeleteHandler).Methods("DELETE")
}
