// Package search — пересобираемый по требованию поисковый индекс.
// Явно принадлежит приложению и передаётся через DI, а не живёт
// синглтоном уровня модуля; строится лениво при первом запросе.
package search

import (
	"context"
	"strings"
	"sync"

	"blogsync/internal/logger"
	"blogsync/internal/models"
	"blogsync/internal/repository"

	"go.uber.org/zap"
)

// Hit — результат поиска.
type Hit struct {
	Slug    string             `json:"slug"`
	Kind    models.ContentKind `json:"kind"`
	Title   string             `json:"title"`
	Excerpt string             `json:"excerpt,omitempty"`
}

type doc struct {
	hit  Hit
	text string // склеенный lowercase-текст для подстрочного поиска
}

type Index struct {
	repo repository.ContentRepo

	mu    sync.RWMutex
	docs  []doc
	ready bool
}

func NewIndex(repo repository.ContentRepo) *Index {
	return &Index{repo: repo}
}

// Invalidate сбрасывает индекс; следующий запрос пересоберёт его.
func (i *Index) Invalidate() {
	i.mu.Lock()
	i.ready = false
	i.docs = nil
	i.mu.Unlock()
}

// Rebuild — явная пересборка из БД.
func (i *Index) Rebuild(ctx context.Context) error {
	list, err := i.repo.All(ctx)
	if err != nil {
		return err
	}

	docs := make([]doc, 0, len(list))
	for _, c := range list {
		if !c.Published {
			continue
		}
		excerpt := ""
		if c.Excerpt != nil {
			excerpt = *c.Excerpt
		}
		text := strings.ToLower(strings.Join(append([]string{c.Title, excerpt, c.Content}, c.Tags...), " "))
		docs = append(docs, doc{
			hit:  Hit{Slug: c.Slug, Kind: c.Kind, Title: c.Title, Excerpt: excerpt},
			text: text,
		})
	}

	i.mu.Lock()
	i.docs = docs
	i.ready = true
	i.mu.Unlock()

	logger.WithCtx(ctx).Debug("Поисковый индекс пересобран", zap.Int("docs", len(docs)))
	return nil
}

// Search — поиск по подстроке; ранжирование вне рамок сервиса.
func (i *Index) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	i.mu.RLock()
	ready := i.ready
	i.mu.RUnlock()
	if !ready {
		if err := i.Rebuild(ctx); err != nil {
			return nil, err
		}
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []Hit{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	hits := []Hit{}
	for _, d := range i.docs {
		if strings.Contains(d.text, q) {
			hits = append(hits, d.hit)
			if len(hits) >= limit {
				break
			}
		}
	}
	return hits, nil
}
