package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"blogsync/internal/logger"
	"blogsync/internal/models"
	"blogsync/internal/services"
	"blogsync/internal/store"
	"blogsync/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// AssetHandler — загрузка ресурсов записи (картинки и т.п.) в
// public/assets/{kind}/{slug}/ с коммитом вместе с самой записью.
type AssetHandler struct {
	svc       services.SyncService
	assetsDir string
}

func NewAssetHandler(svc services.SyncService, assetsDir string) *AssetHandler {
	return &AssetHandler{svc: svc, assetsDir: assetsDir}
}

// Upload godoc
// @Summary      Загрузка ресурса записи
// @Tags         admin
// @Accept       multipart/form-data
// @Produce      json
// @Param        kind path     string true "blog | note | project"
// @Param        slug path     string true "Slug записи"
// @Param        file formData file   true "Файл ресурса"
// @Success      201 {object} object{path=string,gitCommit=string}
// @Failure      400 {object} helpers.Response
// @Router       /api/admin/content/{kind}/{slug}/assets [post]
func (h *AssetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	kind, err := models.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	slug := mux.Vars(r)["slug"]
	if !store.ValidSlug(slug) {
		helpers.Error(w, http.StatusBadRequest, "некорректный slug")
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil { // 10MB
		logger.WithCtx(r.Context()).Warn("Ошибка разбора формы при загрузке ресурса", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "ошибка разбора формы")
		return
	}

	file, handler, err := r.FormFile("file")
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, "файл не найден")
		return
	}
	defer file.Close()

	name := filepath.Base(handler.Filename)
	if name == "." || name == ".." || name == "/" || strings.ContainsAny(name, "\\") {
		helpers.Error(w, http.StatusBadRequest, "некорректное имя файла")
		return
	}

	dir := filepath.Join(h.assetsDir, kind.Dir(), slug)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		logger.WithCtx(r.Context()).Error("Ошибка создания каталога ресурсов", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "ошибка сохранения файла")
		return
	}

	fullPath := filepath.ToSlash(filepath.Join(dir, name))
	dst, err := os.Create(fullPath)
	if err != nil {
		logger.WithCtx(r.Context()).Error("Ошибка при сохранении файла", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "ошибка сохранения файла")
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		logger.WithCtx(r.Context()).Error("Ошибка записи файла", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "ошибка сохранения файла")
		return
	}

	commit := h.svc.CommitAsset(r.Context(), kind, slug, fullPath)

	logger.WithCtx(r.Context()).Info("Ресурс загружен",
		zap.String("path", fullPath),
		zap.Any("git_commit", commit),
	)
	helpers.JSON(w, http.StatusCreated, map[string]interface{}{
		"path":      fmt.Sprintf("/%s", fullPath),
		"gitCommit": commit,
	})
}
