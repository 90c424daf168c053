package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"blogsync/internal/logger"
	"blogsync/internal/models"
	"blogsync/internal/services"
	"blogsync/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type ContentHandler struct {
	svc     services.SyncService
	preview services.PreviewService
}

func NewContentHandler(svc services.SyncService, preview services.PreviewService) *ContentHandler {
	return &ContentHandler{svc: svc, preview: preview}
}

func kindFromRequest(r *http.Request) (models.ContentKind, error) {
	return models.ParseKind(mux.Vars(r)["kind"])
}

// svcError переводит ошибки сервисного слоя в HTTP-статусы. Только
// этот слой порождает коды ответов.
func svcError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		helpers.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrSlugTaken), errors.Is(err, services.ErrBadInput):
		helpers.Error(w, http.StatusBadRequest, err.Error())
	default:
		helpers.Error(w, http.StatusInternalServerError, "внутренняя ошибка")
	}
}

// List godoc
// @Summary      Список контента
// @Tags         content
// @Produce      json
// @Param        kind       path   string true  "blog | note | project"
// @Param        published  query  bool   false "Только опубликованные"
// @Param        limit      query  int    false "Лимит (по умолчанию 20)"
// @Param        offset     query  int    false "Смещение"
// @Success      200 {array} models.Content
// @Router       /api/content/{kind} [get]
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFromRequest(r)
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	onlyPublished := r.URL.Query().Get("published") == "true"

	list, err := h.svc.List(r.Context(), kind, onlyPublished, limit, offset)
	if err != nil {
		logger.WithCtx(r.Context()).Error("Ошибка списка контента", zap.Error(err))
		svcError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, list)
}

// Get godoc
// @Summary      Получить запись (тело — с диска, файл источник истины)
// @Tags         content
// @Produce      json
// @Param        kind path string true "blog | note | project"
// @Param        slug path string true "Slug записи"
// @Success      200 {object} models.Content
// @Failure      404 {object} helpers.Response
// @Router       /api/content/{kind}/{slug} [get]
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFromRequest(r)
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	slug := mux.Vars(r)["slug"]

	c, err := h.svc.Get(r.Context(), kind, slug)
	if err != nil {
		svcError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, c)
}

// Create godoc
// @Summary      Создать запись (файл -> git -> БД)
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        kind path string true "blog | note | project"
// @Param        input body models.CreateContentRequest true "Поля записи"
// @Success      201 {object} models.Content
// @Failure      400 {object} helpers.Response
// @Router       /api/admin/content/{kind} [post]
func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFromRequest(r)
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.CreateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Error(w, http.StatusBadRequest, "некорректный JSON")
		return
	}

	created, err := h.svc.Create(r.Context(), kind, req)
	if err != nil {
		svcError(w, err)
		return
	}
	helpers.JSON(w, http.StatusCreated, created)
}

// Update godoc
// @Summary      Обновить запись (PATCH-слияние, смена slug удаляет старый файл)
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        kind  path string true "blog | note | project"
// @Param        slug  path string true "Slug записи"
// @Param        input body models.UpdateContentRequest true "Изменяемые поля"
// @Success      200 {object} models.Content
// @Failure      404 {object} helpers.Response
// @Router       /api/admin/content/{kind}/{slug} [patch]
func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFromRequest(r)
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	slug := mux.Vars(r)["slug"]

	var req models.UpdateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Error(w, http.StatusBadRequest, "некорректный JSON")
		return
	}

	updated, err := h.svc.Update(r.Context(), kind, slug, req)
	if err != nil {
		svcError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, updated)
}

// Delete godoc
// @Summary      Удалить запись (файл -> git -> БД, строка БД — последней)
// @Tags         admin
// @Produce      json
// @Param        kind path string true "blog | note | project"
// @Param        slug path string true "Slug записи"
// @Success      200 {string} string "Удалено"
// @Failure      404 {object} helpers.Response
// @Router       /api/admin/content/{kind}/{slug} [delete]
func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFromRequest(r)
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	slug := mux.Vars(r)["slug"]

	if err := h.svc.Delete(r.Context(), kind, slug); err != nil {
		svcError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, "Удалено")
}

// Preview godoc
// @Summary      Предпросмотр markdown (рендер + sanitize, без сохранения)
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        input body object{content=string} true "Markdown"
// @Success      200 {object} object{html=string}
// @Router       /api/admin/content/preview [post]
func (h *ContentHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Error(w, http.StatusBadRequest, "некорректный JSON")
		return
	}
	html := h.preview.RenderHTML(r.Context(), req.Content)
	helpers.JSON(w, http.StatusOK, map[string]string{"html": html})
}
