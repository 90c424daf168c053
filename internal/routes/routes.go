package routes

import (
	"blogsync/internal/handlers"
	"blogsync/internal/middleware"

	"github.com/gorilla/mux"
)

func InitRoutes(
	router *mux.Router,
	contentH *handlers.ContentHandler,
	historyH *handlers.HistoryHandler,
	assetH *handlers.AssetHandler,
	searchH *handlers.SearchHandler,
	engagementH *handlers.EngagementHandler,
) {
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging)
	router.Use(middleware.Recoverer)

	api := router.PathPrefix("/api").Subrouter()

	// --- Публичные маршруты ---
	api.HandleFunc("/search", searchH.Search).Methods("GET")

	api.HandleFunc("/content/{kind}", contentH.List).Methods("GET")
	api.HandleFunc("/content/{kind}/{slug}", contentH.Get).Methods("GET")
	api.HandleFunc("/content/{kind}/{slug}/history", historyH.History).Methods("GET")
	api.HandleFunc("/content/{kind}/{slug}/revision/{hash}", historyH.ContentAt).Methods("GET")
	api.HandleFunc("/content/{kind}/{slug}/diff", historyH.Diff).Methods("GET")

	api.HandleFunc("/content/{kind}/{slug}/view", engagementH.View).Methods("POST")
	api.HandleFunc("/content/{kind}/{slug}/like", engagementH.Like).Methods("POST")

	// --- Админские --- (аутентификация — забота внешнего прокси)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/content/preview", contentH.Preview).Methods("POST")
	admin.HandleFunc("/content/sync", historyH.SyncAll).Methods("POST")
	admin.HandleFunc("/content/{kind}", contentH.Create).Methods("POST")
	admin.HandleFunc("/content/{kind}/{slug}", contentH.Update).Methods("PATCH")
	admin.HandleFunc("/content/{kind}/{slug}", contentH.Delete).Methods("DELETE")
	admin.HandleFunc("/content/{kind}/{slug}/revert", historyH.Revert).Methods("POST")
	admin.HandleFunc("/content/{kind}/{slug}/assets", assetH.Upload).Methods("POST")
	admin.HandleFunc("/search/rebuild", searchH.Rebuild).Methods("POST")
}
