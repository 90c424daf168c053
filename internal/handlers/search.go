package handlers

import (
	"net/http"
	"strconv"

	"blogsync/internal/logger"
	"blogsync/internal/search"
	"blogsync/internal/utils/helpers"

	"go.uber.org/zap"
)

type SearchHandler struct {
	index *search.Index
}

func NewSearchHandler(index *search.Index) *SearchHandler {
	return &SearchHandler{index: index}
}

// Search godoc
// @Summary      Поиск по опубликованному контенту
// @Tags         search
// @Produce      json
// @Param        q     query string true  "Строка запроса"
// @Param        limit query int    false "Максимум результатов"
// @Success      200 {array} search.Hit
// @Router       /api/search [get]
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	hits, err := h.index.Search(r.Context(), q, limit)
	if err != nil {
		logger.WithCtx(r.Context()).Error("Ошибка поиска", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "внутренняя ошибка")
		return
	}
	helpers.JSON(w, http.StatusOK, hits)
}

// Rebuild godoc
// @Summary      Пересобрать поисковый индекс
// @Tags         admin
// @Produce      json
// @Success      200 {string} string "OK"
// @Router       /api/admin/search/rebuild [post]
func (h *SearchHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	if err := h.index.Rebuild(r.Context()); err != nil {
		logger.WithCtx(r.Context()).Error("Ошибка пересборки индекса", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "внутренняя ошибка")
		return
	}
	helpers.JSON(w, http.StatusOK, "OK")
}
