package app

import (
	"context"

	"blogsync/internal/config"
	"blogsync/internal/db"
	"blogsync/internal/gitvcs"
	"blogsync/internal/handlers"
	"blogsync/internal/logger"
	"blogsync/internal/repository"
	"blogsync/internal/routes"
	"blogsync/internal/search"
	"blogsync/internal/services"
	"blogsync/internal/store"
	"blogsync/internal/watcher"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func InitApp(cfg *config.Config) (*mux.Router, error) {
	conn, err := db.NewPostgresConnection(cfg)
	if err != nil {
		return nil, err
	}

	// Репозитории
	contentRepo := repository.NewContentRepo(conn)

	// Адаптеры ядра синхронизации
	files := store.NewFileStore(cfg.ContentDir)
	vcs, err := gitvcs.NewAdapter(cfg.RepoDir, cfg.GitAuthorName, cfg.GitAuthorEmail, cfg.GitRemote, cfg.GitTimeout)
	if err != nil {
		return nil, err
	}

	// Подтянем удалённую историю до старта (best effort)
	if cfg.GitPush {
		if !vcs.Pull(context.Background()) {
			logger.Log.Warn("Стартовый git pull не удался, продолжаем с локальной историей")
		}
	}

	// Поисковый индекс — явная зависимость, не синглтон
	index := search.NewIndex(contentRepo)

	// Сервисы
	syncSvc := services.NewSyncService(files, vcs, contentRepo, index, cfg.AssetsDir, cfg.GitPush)
	previewSvc := services.NewPreviewService()

	// Хендлеры
	contentH := handlers.NewContentHandler(syncSvc, previewSvc)
	historyH := handlers.NewHistoryHandler(syncSvc)
	assetH := handlers.NewAssetHandler(syncSvc, cfg.AssetsDir)
	searchH := handlers.NewSearchHandler(index)
	engagementH := handlers.NewEngagementHandler(contentRepo)

	// Наблюдение за каталогом контента (правки извне -> ресинк)
	if cfg.Watch {
		w := watcher.New(cfg.ContentDir, syncSvc)
		go func() {
			if err := w.Run(context.Background()); err != nil && err != context.Canceled {
				logger.Log.Error("Наблюдатель завершился с ошибкой", zap.Error(err))
			}
		}()
	}

	// Маршруты
	router := mux.NewRouter()
	routes.InitRoutes(router, contentH, historyH, assetH, searchH, engagementH)

	return router, nil
}
