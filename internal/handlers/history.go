package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"blogsync/internal/models"
	"blogsync/internal/services"
	"blogsync/internal/utils/helpers"

	"github.com/gorilla/mux"
)

type HistoryHandler struct {
	svc services.SyncService
}

func NewHistoryHandler(svc services.SyncService) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

// History godoc
// @Summary      История коммитов записи
// @Tags         history
// @Produce      json
// @Param        kind  path  string true  "blog | note | project"
// @Param        slug  path  string true  "Slug записи"
// @Param        limit query int    false "Максимум коммитов (по умолчанию 20)"
// @Success      200 {array} models.Commit
// @Failure      404 {object} helpers.Response
// @Router       /api/content/{kind}/{slug}/history [get]
func (h *HistoryHandler) History(w http.ResponseWriter, r *http.Request) {
	kind, err := models.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	slug := mux.Vars(r)["slug"]
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	commits, err := h.svc.History(r.Context(), kind, slug, limit)
	if err != nil {
		svcError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, commits)
}

// ContentAt godoc
// @Summary      Содержимое записи на ревизии
// @Tags         history
// @Produce      json
// @Param        kind path string true "blog | note | project"
// @Param        slug path string true "Slug записи"
// @Param        hash path string true "Хэш коммита"
// @Success      200 {object} object{content=string}
// @Failure      404 {object} helpers.Response
// @Router       /api/content/{kind}/{slug}/revision/{hash} [get]
func (h *HistoryHandler) ContentAt(w http.ResponseWriter, r *http.Request) {
	kind, err := models.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	vars := mux.Vars(r)

	content, err := h.svc.ContentAt(r.Context(), kind, vars["slug"], vars["hash"])
	if err != nil {
		svcError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]string{"content": content})
}

// Diff godoc
// @Summary      Diff записи между двумя ревизиями
// @Tags         history
// @Produce      json
// @Param        kind path  string true "blog | note | project"
// @Param        slug path  string true "Slug записи"
// @Param        from query string true "Хэш «от»"
// @Param        to   query string true "Хэш «до»"
// @Success      200 {object} object{diff=string}
// @Failure      404 {object} helpers.Response
// @Router       /api/content/{kind}/{slug}/diff [get]
func (h *HistoryHandler) Diff(w http.ResponseWriter, r *http.Request) {
	kind, err := models.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	slug := mux.Vars(r)["slug"]
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		helpers.Error(w, http.StatusBadRequest, "нужны параметры from и to")
		return
	}

	diff, err := h.svc.DiffRevisions(r.Context(), kind, slug, from, to)
	if err != nil {
		svcError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]string{"diff": diff})
}

// Revert godoc
// @Summary      Откат записи к ревизии (файл + ресурсы одним коммитом)
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        kind  path string true "blog | note | project"
// @Param        slug  path string true "Slug записи"
// @Param        input body object{hash=string} true "Хэш целевой ревизии"
// @Success      200 {object} models.Content
// @Failure      404 {object} helpers.Response
// @Router       /api/admin/content/{kind}/{slug}/revert [post]
func (h *HistoryHandler) Revert(w http.ResponseWriter, r *http.Request) {
	kind, err := models.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	slug := mux.Vars(r)["slug"]

	var req struct {
		Hash string `json:"hash"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Hash == "" {
		helpers.Error(w, http.StatusBadRequest, "нужен хэш ревизии")
		return
	}

	c, err := h.svc.Revert(r.Context(), kind, slug, req.Hash)
	if err != nil {
		svcError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, c)
}

// SyncAll godoc
// @Summary      Пакетная синхронизация контента с диска
// @Tags         admin
// @Produce      json
// @Success      200 {object} models.SyncReport
// @Router       /api/admin/content/sync [post]
func (h *HistoryHandler) SyncAll(w http.ResponseWriter, r *http.Request) {
	report := h.svc.SyncAll(r.Context())
	helpers.JSON(w, http.StatusOK, report)
}
