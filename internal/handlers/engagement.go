package handlers

import (
	"net/http"

	"blogsync/internal/logger"
	"blogsync/internal/models"
	"blogsync/internal/repository"
	"blogsync/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// EngagementHandler — счётчики просмотров и лайков. Работает напрямую
// с репозиторием, минуя оркестратор синхронизации: счётчики живут
// только в БД и не трогают файл и git.
type EngagementHandler struct {
	repo repository.ContentRepo
}

func NewEngagementHandler(repo repository.ContentRepo) *EngagementHandler {
	return &EngagementHandler{repo: repo}
}

// View godoc
// @Summary      Засчитать просмотр
// @Tags         engagement
// @Produce      json
// @Param        kind path string true "blog | note | project"
// @Param        slug path string true "Slug записи"
// @Success      200 {string} string "OK"
// @Router       /api/content/{kind}/{slug}/view [post]
func (h *EngagementHandler) View(w http.ResponseWriter, r *http.Request) {
	kind, err := models.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	slug := mux.Vars(r)["slug"]

	if err := h.repo.IncrementViews(r.Context(), kind, slug); err != nil {
		logger.WithCtx(r.Context()).Warn("Просмотр не засчитан", zap.String("slug", slug), zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "внутренняя ошибка")
		return
	}
	helpers.JSON(w, http.StatusOK, "OK")
}

// Like godoc
// @Summary      Поставить лайк
// @Tags         engagement
// @Produce      json
// @Param        kind path string true "blog | note | project"
// @Param        slug path string true "Slug записи"
// @Success      200 {object} object{likes=int}
// @Failure      404 {object} helpers.Response
// @Router       /api/content/{kind}/{slug}/like [post]
func (h *EngagementHandler) Like(w http.ResponseWriter, r *http.Request) {
	kind, err := models.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	slug := mux.Vars(r)["slug"]

	likes, err := h.repo.AddLike(r.Context(), kind, slug)
	if err != nil {
		helpers.Error(w, http.StatusNotFound, "запись не найдена")
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]int64{"likes": likes})
}
