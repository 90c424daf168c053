package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"blogsync/internal/frontmatter"
	"blogsync/internal/logger"
	"blogsync/internal/models"
	"blogsync/internal/repository"
	"blogsync/internal/store"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var (
	ErrNotFound  = errors.New("не найдено")
	ErrSlugTaken = errors.New("slug уже занят")
	ErrBadInput  = errors.New("некорректные данные")
)

// VCS — контракт адаптера системы контроля версий. Мутирующие методы
// не возвращают ошибок: ""/false трактуется здесь, в оркестраторе.
type VCS interface {
	Stage(ctx context.Context, path string) bool
	Commit(ctx context.Context, message string) string
	Push(ctx context.Context) bool
	CurrentCommit(ctx context.Context) string
	History(ctx context.Context, path string, limit int) []models.Commit
	ContentAtRevision(ctx context.Context, path, hash string) (string, bool)
	Diff(ctx context.Context, path, fromHash, toHash string) (string, bool)
	RevertToCommit(ctx context.Context, path, hash, assetDir string) (newCommit, content string, ok bool)
}

// ContentStore — контракт файлового хранилища контента.
type ContentStore interface {
	Path(kind models.ContentKind, slug string) string
	Exists(kind models.ContentKind, slug string) bool
	Read(kind models.ContentKind, slug string) (*store.File, error)
	Write(kind models.ContentKind, slug string, fm map[string]interface{}, content string) error
	Delete(kind models.ContentKind, slug string) bool
	List(kind models.ContentKind) ([]string, error)
}

// Invalidator — поисковый индекс (или иной кэш), сбрасываемый после
// каждой мутации контента.
type Invalidator interface {
	Invalidate()
}

type SyncService interface {
	Create(ctx context.Context, kind models.ContentKind, req models.CreateContentRequest) (*models.Content, error)
	Update(ctx context.Context, kind models.ContentKind, slug string, req models.UpdateContentRequest) (*models.Content, error)
	Delete(ctx context.Context, kind models.ContentKind, slug string) error
	Revert(ctx context.Context, kind models.ContentKind, slug, hash string) (*models.Content, error)
	SyncAll(ctx context.Context) *models.SyncReport
	Get(ctx context.Context, kind models.ContentKind, slug string) (*models.Content, error)
	List(ctx context.Context, kind models.ContentKind, onlyPublished bool, limit, offset int) ([]*models.Content, error)
	History(ctx context.Context, kind models.ContentKind, slug string, limit int) ([]models.Commit, error)
	ContentAt(ctx context.Context, kind models.ContentKind, slug, hash string) (string, error)
	DiffRevisions(ctx context.Context, kind models.ContentKind, slug, fromHash, toHash string) (string, error)
	CommitAsset(ctx context.Context, kind models.ContentKind, slug, assetPath string) *string
}

type syncService struct {
	files     ContentStore
	vcs       VCS
	repo      repository.ContentRepo
	search    Invalidator
	assetsDir string
	push      bool
}

func NewSyncService(files ContentStore, vcs VCS, repo repository.ContentRepo, search Invalidator, assetsDir string, push bool) SyncService {
	return &syncService{
		files:     files,
		vcs:       vcs,
		repo:      repo,
		search:    search,
		assetsDir: assetsDir,
		push:      push,
	}
}

// assetDir — каталог ресурсов записи (public/assets/{kind}/{slug}).
func (s *syncService) assetDir(kind models.ContentKind, slug string) string {
	return path.Join(s.assetsDir, kind.Dir(), slug)
}

func (s *syncService) invalidate() {
	if s.search != nil {
		s.search.Invalidate()
	}
}

// commitAndPush — stage+commit пути, затем best-effort push. Пустой
// хэш (неудачный коммит) не фатален: контент на диске авторитетен,
// git-трекинг — обогащение.
func (s *syncService) commitAndPush(ctx context.Context, filePath, message string) *string {
	log := logger.WithCtx(ctx)

	if !s.vcs.Stage(ctx, filePath) {
		log.Warn("stage не удался, запись продолжится без git-хэша", zap.String("path", filePath))
		return nil
	}
	hash := s.vcs.Commit(ctx, message)
	if hash == "" {
		log.Warn("commit не удался, запись продолжится без git-хэша", zap.String("path", filePath))
		return nil
	}
	if s.push {
		// Неудачный push не отменяет успешный коммит: локальная
		// история авторитетна, пуш догонит.
		if !s.vcs.Push(ctx) {
			log.Warn("push не удался после коммита", zap.String("commit", hash))
		}
	}
	return &hash
}

func validateCreate(req models.CreateContentRequest) error {
	if !store.ValidSlug(req.Slug) {
		return fmt.Errorf("%w: slug %q", ErrBadInput, req.Slug)
	}
	title := strings.TrimSpace(req.Title)
	if l := utf8.RuneCountInString(title); l < 1 || l > 255 {
		return fmt.Errorf("%w: длина заголовка должна быть от 1 до 255 символов", ErrBadInput)
	}
	if strings.TrimSpace(req.Content) == "" {
		return fmt.Errorf("%w: пустой контент", ErrBadInput)
	}
	return nil
}

// buildFrontMatter собирает метаданные файла из записи. Поля вторичного
// языка в файл не попадают: они живут только в БД.
func buildFrontMatter(c *models.Content) map[string]interface{} {
	fm := map[string]interface{}{
		"title":     c.Title,
		"published": c.Published,
	}
	if c.Excerpt != nil {
		fm["excerpt"] = *c.Excerpt
	}
	if c.Category != nil {
		fm["category"] = *c.Category
	}
	if len(c.Tags) > 0 {
		fm["tags"] = c.Tags
	}
	if len(c.TechStack) > 0 {
		fm["techStack"] = c.TechStack
	}
	if c.LinkType != nil {
		fm["linkType"] = *c.LinkType
	}
	if c.PublishedAt != nil {
		fm["publishedAt"] = c.PublishedAt.UTC().Format(time.RFC3339)
	}
	return fm
}

// recordFromFile — обратное преобразование: запись из front matter и тела.
func recordFromFile(kind models.ContentKind, slug, filePath string, fm map[string]interface{}, body string) *models.Content {
	c := &models.Content{
		Slug:        slug,
		Kind:        kind,
		Title:       frontmatter.Str(fm, "title"),
		Content:     body,
		Tags:        frontmatter.Strings(fm, "tags"),
		TechStack:   frontmatter.Strings(fm, "techStack"),
		Published:   frontmatter.Bool(fm, "published"),
		PublishedAt: store.DerivePublishedAt(fm),
		FilePath:    filePath,
	}
	if c.Title == "" {
		c.Title = slug
	}
	if v := frontmatter.Str(fm, "excerpt"); v != "" {
		c.Excerpt = &v
	}
	if v := frontmatter.Str(fm, "category"); v != "" {
		c.Category = &v
	}
	if v := frontmatter.Str(fm, "linkType"); v != "" {
		c.LinkType = &v
	}
	return c
}

// Create: файл -> git -> БД, в этом порядке. Откатов нет: неудача БД
// оставляет файл и коммит на месте, повторный запрос идемпотентен.
func (s *syncService) Create(ctx context.Context, kind models.ContentKind, req models.CreateContentRequest) (*models.Content, error) {
	log := logger.WithCtx(ctx)
	log.Info("Создание контента",
		zap.String("kind", string(kind)),
		zap.String("slug", req.Slug),
		zap.Bool("published", req.Published),
	)

	if err := validateCreate(req); err != nil {
		log.Warn("Валидация не пройдена", zap.Error(err))
		return nil, err
	}
	if s.files.Exists(kind, req.Slug) {
		return nil, fmt.Errorf("%w: %s", ErrSlugTaken, req.Slug)
	}
	if taken, err := s.repo.ExistsBySlug(ctx, kind, req.Slug); err != nil {
		log.Error("Ошибка проверки slug (repo)", zap.Error(err))
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("%w: %s", ErrSlugTaken, req.Slug)
	}

	c := &models.Content{
		Slug:      req.Slug,
		Kind:      kind,
		Title:     strings.TrimSpace(req.Title),
		TitleEn:   req.TitleEn,
		Content:   req.Content,
		ContentEn: req.ContentEn,
		Excerpt:   req.Excerpt,
		ExcerptEn: req.ExcerptEn,
		Category:  req.Category,
		Tags:      normalizeTags(req.Tags),
		TechStack: req.TechStack,
		LinkType:  req.LinkType,
		Published: req.Published,
		FilePath:  s.files.Path(kind, req.Slug),
	}
	fm := buildFrontMatter(c)
	c.PublishedAt = store.DerivePublishedAt(fm)
	if c.PublishedAt != nil {
		fm["publishedAt"] = c.PublishedAt.UTC().Format(time.RFC3339)
	}

	if err := s.files.Write(kind, req.Slug, fm, req.Content); err != nil {
		log.Error("Ошибка записи файла", zap.String("path", c.FilePath), zap.Error(err))
		return nil, err
	}

	c.GitCommit = s.commitAndPush(ctx, c.FilePath, fmt.Sprintf("content: add %s", c.FilePath))

	created, err := s.repo.UpsertBySlug(ctx, c)
	if err != nil {
		log.Error("Ошибка вставки в БД (repo)", zap.String("slug", c.Slug), zap.Error(err))
		return nil, err
	}

	s.invalidate()
	log.Info("Контент создан",
		zap.String("slug", created.Slug),
		zap.Any("git_commit", created.GitCommit),
	)
	return created, nil
}

// Update: PATCH-слияние поверх существующей записи. Смена slug сначала
// удаляет старый файл, новый путь проходит обычный stage+commit.
func (s *syncService) Update(ctx context.Context, kind models.ContentKind, slug string, req models.UpdateContentRequest) (*models.Content, error) {
	log := logger.WithCtx(ctx)
	log.Info("Обновление контента", zap.String("kind", string(kind)), zap.String("slug", slug))

	existing, err := s.repo.GetBySlug(ctx, kind, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, kind, slug)
		}
		log.Error("Ошибка чтения записи (repo)", zap.Error(err))
		return nil, err
	}

	oldSlug := existing.Slug
	renamed := false
	if req.Slug != nil && *req.Slug != oldSlug {
		if !store.ValidSlug(*req.Slug) {
			return nil, fmt.Errorf("%w: slug %q", ErrBadInput, *req.Slug)
		}
		if s.files.Exists(kind, *req.Slug) {
			return nil, fmt.Errorf("%w: %s", ErrSlugTaken, *req.Slug)
		}
		if taken, err := s.repo.ExistsBySlug(ctx, kind, *req.Slug); err != nil {
			return nil, err
		} else if taken {
			return nil, fmt.Errorf("%w: %s", ErrSlugTaken, *req.Slug)
		}
		// Старый файл убирается первым; его удаление попадёт в тот же
		// коммит вместе с новым путём.
		if !s.files.Delete(kind, oldSlug) {
			log.Warn("Старый файл при переименовании не найден", zap.String("slug", oldSlug))
		}
		s.vcs.Stage(ctx, s.files.Path(kind, oldSlug))
		existing.Slug = *req.Slug
		renamed = true
	}

	wasPublished := existing.Published
	mergeUpdate(existing, req)

	// publishedAt выставляется ровно один раз — при переходе
	// published false -> true; дальше не трогаем.
	if !wasPublished && existing.Published && existing.PublishedAt == nil {
		now := time.Now().UTC()
		existing.PublishedAt = &now
	}

	existing.FilePath = s.files.Path(kind, existing.Slug)
	fm := buildFrontMatter(existing)

	if err := s.files.Write(kind, existing.Slug, fm, existing.Content); err != nil {
		log.Error("Ошибка записи файла", zap.String("path", existing.FilePath), zap.Error(err))
		return nil, err
	}

	existing.GitCommit = s.commitAndPush(ctx, existing.FilePath, fmt.Sprintf("content: update %s", existing.FilePath))

	var updated *models.Content
	if renamed {
		updated, err = s.repo.Rename(ctx, kind, oldSlug, existing)
	} else {
		updated, err = s.repo.UpsertBySlug(ctx, existing)
	}
	if err != nil {
		log.Error("Ошибка обновления БД (repo)", zap.String("slug", existing.Slug), zap.Error(err))
		return nil, err
	}

	s.invalidate()
	log.Info("Контент обновлён",
		zap.String("slug", updated.Slug),
		zap.Any("git_commit", updated.GitCommit),
	)
	return updated, nil
}

func mergeUpdate(c *models.Content, req models.UpdateContentRequest) {
	if req.Title != nil {
		c.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		c.Content = *req.Content
	}
	if req.TitleEn != nil {
		c.TitleEn = req.TitleEn
	}
	if req.ContentEn != nil {
		c.ContentEn = req.ContentEn
	}
	if req.Excerpt != nil {
		c.Excerpt = req.Excerpt
	}
	if req.ExcerptEn != nil {
		c.ExcerptEn = req.ExcerptEn
	}
	if req.Category != nil {
		c.Category = req.Category
	}
	if req.Tags != nil {
		c.Tags = normalizeTags(*req.Tags)
	}
	if req.TechStack != nil {
		c.TechStack = *req.TechStack
	}
	if req.LinkType != nil {
		c.LinkType = req.LinkType
	}
	if req.Published != nil {
		c.Published = *req.Published
	}
}

// Delete: файл -> git -> БД. Строка БД удаляется последней: сбой в
// середине оставляет «висячую ссылку» на отсутствующий файл, а не
// файл-фантом без следа в БД.
func (s *syncService) Delete(ctx context.Context, kind models.ContentKind, slug string) error {
	log := logger.WithCtx(ctx)
	log.Info("Удаление контента", zap.String("kind", string(kind)), zap.String("slug", slug))

	if _, err := s.repo.GetBySlug(ctx, kind, slug); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, kind, slug)
		}
		return err
	}

	filePath := s.files.Path(kind, slug)
	if !s.files.Delete(kind, slug) {
		log.Warn("Файл для удаления не найден, продолжаем", zap.String("path", filePath))
	}

	// Коммит удаления — best effort: неудача логируется и не
	// останавливает удаление строки.
	if hash := s.commitAndPush(ctx, filePath, fmt.Sprintf("content: delete %s", filePath)); hash == nil {
		log.Warn("Удаление не закоммичено", zap.String("path", filePath))
	}

	if err := s.repo.Delete(ctx, kind, slug); err != nil {
		log.Error("Ошибка удаления строки БД (repo)", zap.String("slug", slug), zap.Error(err))
		return err
	}

	s.invalidate()
	log.Info("Контент удалён", zap.String("slug", slug))
	return nil
}

// Revert восстанавливает файл (и его ресурсы) к состоянию hash одним
// коммитом и пересобирает строку БД из восстановленного front matter.
// Первичный контракт — «восстановить файл»: отсутствие строки БД не
// отменяет успех, синхронизация БД на этом пути best effort.
func (s *syncService) Revert(ctx context.Context, kind models.ContentKind, slug, hash string) (*models.Content, error) {
	log := logger.WithCtx(ctx)
	log.Info("Откат контента",
		zap.String("kind", string(kind)),
		zap.String("slug", slug),
		zap.String("hash", hash),
	)

	filePath := s.files.Path(kind, slug)
	newCommit, restored, ok := s.vcs.RevertToCommit(ctx, filePath, hash, s.assetDir(kind, slug))
	if !ok {
		return nil, fmt.Errorf("%w: %s на ревизии %s", ErrNotFound, filePath, hash)
	}
	if s.push {
		s.vcs.Push(ctx)
	}

	fm, body, err := frontmatter.Parse(restored)
	if err != nil {
		log.Error("Восстановленный файл не разбирается", zap.String("path", filePath), zap.Error(err))
		return nil, err
	}

	c := recordFromFile(kind, slug, filePath, fm, body)
	if newCommit != "" {
		c.GitCommit = &newCommit
	}

	if _, err := s.repo.GetByFilePath(ctx, filePath); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Файл и git восстановлены — это и был контракт.
			log.Warn("Запись БД для восстановленного файла не найдена",
				zap.String("path", filePath))
			s.invalidate()
			return c, nil
		}
		log.Warn("Ошибка поиска записи при откате (repo)", zap.Error(err))
		return c, nil
	}

	if err := s.repo.UpdateFromRevert(ctx, c); err != nil {
		// Файл уже восстановлен; рассинхрон БД — предупреждение.
		log.Warn("БД не синхронизирована после отката", zap.String("path", filePath), zap.Error(err))
		s.invalidate()
		return c, nil
	}

	s.invalidate()
	updated, err := s.repo.GetBySlug(ctx, kind, slug)
	if err != nil {
		return c, nil
	}
	log.Info("Откат выполнен",
		zap.String("slug", slug),
		zap.Any("git_commit", updated.GitCommit),
	)
	return updated, nil
}

// SyncAll — пакетный апсерт всех файлов с диска. Коммиты подавлены
// (файлы считаются уже закоммиченными), в git_commit идёт HEAD.
// Ошибка одного slug не прерывает пакет.
func (s *syncService) SyncAll(ctx context.Context) *models.SyncReport {
	log := logger.WithCtx(ctx)
	log.Info("Пакетная синхронизация с диска")

	report := &models.SyncReport{Synced: map[models.ContentKind]int{}}

	head := s.vcs.CurrentCommit(ctx)
	var headShort *string
	if head != "" {
		short := head
		if len(short) > 7 {
			short = short[:7]
		}
		headShort = &short
	}

	for _, kind := range []models.ContentKind{models.KindBlog, models.KindNote, models.KindProject} {
		slugs, err := s.files.List(kind)
		if err != nil {
			report.Errors = append(report.Errors, models.SyncError{Kind: kind, Slug: "*", Err: err.Error()})
			continue
		}
		for _, slug := range slugs {
			if err := s.syncOne(ctx, kind, slug, headShort); err != nil {
				log.Warn("Ошибка синхронизации записи",
					zap.String("kind", string(kind)), zap.String("slug", slug), zap.Error(err))
				report.Errors = append(report.Errors, models.SyncError{Kind: kind, Slug: slug, Err: err.Error()})
				continue
			}
			report.Synced[kind]++
		}
	}

	s.invalidate()
	log.Info("Синхронизация завершена",
		zap.Any("synced", report.Synced),
		zap.Int("errors", len(report.Errors)),
	)
	return report
}

func (s *syncService) syncOne(ctx context.Context, kind models.ContentKind, slug string, head *string) error {
	f, err := s.files.Read(kind, slug)
	if err != nil {
		return err
	}
	c := recordFromFile(kind, slug, s.files.Path(kind, slug), f.FrontMatter, f.Content)
	c.GitCommit = head
	// Поля *_en здесь nil и апсерт их не затирает: вторичный язык
	// хранится только в БД и при ресинке с диска не теряется.
	_, err = s.repo.UpsertBySlug(ctx, c)
	return err
}

// Get — запись БД; при наличии файла тело берётся с диска: файл —
// источник истины, БД — производный кэш.
func (s *syncService) Get(ctx context.Context, kind models.ContentKind, slug string) (*models.Content, error) {
	c, err := s.repo.GetBySlug(ctx, kind, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, kind, slug)
		}
		return nil, err
	}
	if c.FilePath != "" {
		if f, err := s.files.Read(kind, slug); err == nil {
			c.Content = f.Content
		}
	}
	return c, nil
}

func (s *syncService) List(ctx context.Context, kind models.ContentKind, onlyPublished bool, limit, offset int) ([]*models.Content, error) {
	return s.repo.List(ctx, kind, onlyPublished, limit, offset)
}

func (s *syncService) History(ctx context.Context, kind models.ContentKind, slug string, limit int) ([]models.Commit, error) {
	commits := s.vcs.History(ctx, s.files.Path(kind, slug), limit)
	if len(commits) == 0 {
		return nil, fmt.Errorf("%w: история %s/%s", ErrNotFound, kind, slug)
	}
	return commits, nil
}

func (s *syncService) ContentAt(ctx context.Context, kind models.ContentKind, slug, hash string) (string, error) {
	content, ok := s.vcs.ContentAtRevision(ctx, s.files.Path(kind, slug), hash)
	if !ok {
		return "", fmt.Errorf("%w: %s/%s на ревизии %s", ErrNotFound, kind, slug, hash)
	}
	return content, nil
}

func (s *syncService) DiffRevisions(ctx context.Context, kind models.ContentKind, slug, fromHash, toHash string) (string, error) {
	diff, ok := s.vcs.Diff(ctx, s.files.Path(kind, slug), fromHash, toHash)
	if !ok {
		return "", fmt.Errorf("%w: diff %s/%s", ErrNotFound, kind, slug)
	}
	return diff, nil
}

// CommitAsset — коммит загруженного ресурса записи вместе с её файлом.
func (s *syncService) CommitAsset(ctx context.Context, kind models.ContentKind, slug, assetPath string) *string {
	s.vcs.Stage(ctx, s.files.Path(kind, slug))
	return s.commitAndPush(ctx, assetPath, fmt.Sprintf("assets: add %s", assetPath))
}

func normalizeTags(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
