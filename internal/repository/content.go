package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"blogsync/internal/models"
)

type ContentRepo interface {
	UpsertBySlug(ctx context.Context, c *models.Content) (*models.Content, error)
	GetBySlug(ctx context.Context, kind models.ContentKind, slug string) (*models.Content, error)
	GetByFilePath(ctx context.Context, path string) (*models.Content, error)
	ExistsBySlug(ctx context.Context, kind models.ContentKind, slug string) (bool, error)
	List(ctx context.Context, kind models.ContentKind, onlyPublished bool, limit, offset int) ([]*models.Content, error)
	Rename(ctx context.Context, kind models.ContentKind, oldSlug string, c *models.Content) (*models.Content, error)
	Delete(ctx context.Context, kind models.ContentKind, slug string) error
	UpdateFromRevert(ctx context.Context, c *models.Content) error
	IncrementViews(ctx context.Context, kind models.ContentKind, slug string) error
	AddLike(ctx context.Context, kind models.ContentKind, slug string) (int64, error)
	All(ctx context.Context) ([]*models.Content, error)
}

type contentRepo struct{ db *pgxpool.Pool }

func NewContentRepo(db *pgxpool.Pool) ContentRepo { return &contentRepo{db: db} }

const contentColumns = `
	id, slug, kind, title, title_en, content, content_en, excerpt, excerpt_en,
	category, tags, tech_stack, link_type, published, published_at,
	file_path, git_commit, views, likes, created_at, updated_at
`

func scanContent(row pgx.Row) (*models.Content, error) {
	var c models.Content
	var tagsRaw, stackRaw []byte
	if err := row.Scan(
		&c.ID, &c.Slug, &c.Kind, &c.Title, &c.TitleEn, &c.Content, &c.ContentEn,
		&c.Excerpt, &c.ExcerptEn, &c.Category, &tagsRaw, &stackRaw, &c.LinkType,
		&c.Published, &c.PublishedAt, &c.FilePath, &c.GitCommit,
		&c.Views, &c.Likes, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	_ = json.Unmarshal(tagsRaw, &c.Tags)
	_ = json.Unmarshal(stackRaw, &c.TechStack)
	return &c, nil
}

// UpsertBySlug — insert-or-update по ключу (kind, slug): slug уникален
// только внутри своего kind, blog/x и note/x — независимые записи.
// Инварианты в SQL:
//   - published_at выставляется один раз при первом published=true и
//     больше не перетирается;
//   - поля вторичного языка (*_en) не затираются NULL-ом: ресинк с
//     диска не знает о них и передаёт nil.
func (r *contentRepo) UpsertBySlug(ctx context.Context, c *models.Content) (*models.Content, error) {
	tagsJSON, _ := json.Marshal(c.Tags)
	stackJSON, _ := json.Marshal(c.TechStack)

	q := `
		INSERT INTO contents (slug, kind, title, title_en, content, content_en,
		                      excerpt, excerpt_en, category, tags, tech_stack, link_type,
		                      published, published_at, file_path, git_commit)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10::jsonb,$11::jsonb,$12,$13,
		        CASE WHEN $13 THEN COALESCE($14, NOW()) ELSE $14 END, $15, $16)
		ON CONFLICT (kind, slug) DO UPDATE SET
			title       = EXCLUDED.title,
			title_en    = COALESCE(EXCLUDED.title_en, contents.title_en),
			content     = EXCLUDED.content,
			content_en  = COALESCE(EXCLUDED.content_en, contents.content_en),
			excerpt     = EXCLUDED.excerpt,
			excerpt_en  = COALESCE(EXCLUDED.excerpt_en, contents.excerpt_en),
			category    = EXCLUDED.category,
			tags        = EXCLUDED.tags,
			tech_stack  = EXCLUDED.tech_stack,
			link_type   = EXCLUDED.link_type,
			published   = EXCLUDED.published,
			published_at = COALESCE(contents.published_at,
			                        CASE WHEN EXCLUDED.published THEN COALESCE(EXCLUDED.published_at, NOW()) END),
			file_path   = EXCLUDED.file_path,
			git_commit  = EXCLUDED.git_commit,
			updated_at  = NOW()
		RETURNING ` + contentColumns

	row := r.db.QueryRow(ctx, q,
		c.Slug, c.Kind, c.Title, c.TitleEn, c.Content, c.ContentEn,
		c.Excerpt, c.ExcerptEn, c.Category, tagsJSON, stackJSON, c.LinkType,
		c.Published, c.PublishedAt, c.FilePath, c.GitCommit,
	)
	return scanContent(row)
}

func (r *contentRepo) GetBySlug(ctx context.Context, kind models.ContentKind, slug string) (*models.Content, error) {
	q := `SELECT ` + contentColumns + ` FROM contents WHERE kind=$1 AND slug=$2`
	return scanContent(r.db.QueryRow(ctx, q, kind, slug))
}

func (r *contentRepo) GetByFilePath(ctx context.Context, path string) (*models.Content, error) {
	q := `SELECT ` + contentColumns + ` FROM contents WHERE file_path=$1`
	return scanContent(r.db.QueryRow(ctx, q, path))
}

func (r *contentRepo) ExistsBySlug(ctx context.Context, kind models.ContentKind, slug string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM contents WHERE kind=$1 AND slug=$2)`
	var ok bool
	if err := r.db.QueryRow(ctx, q, kind, slug).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *contentRepo) List(ctx context.Context, kind models.ContentKind, onlyPublished bool, limit, offset int) ([]*models.Content, error) {
	qBase := `SELECT ` + contentColumns + ` FROM contents`
	where := []string{"kind = $1"}
	args := []interface{}{kind}
	i := 2

	if onlyPublished {
		where = append(where, fmt.Sprintf("published = $%d", i))
		args = append(args, true)
		i++
	}

	sql := qBase + " WHERE " + strings.Join(where, " AND ")
	sql += fmt.Sprintf(" ORDER BY COALESCE(published_at, created_at) DESC LIMIT $%d OFFSET $%d", i, i+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Rename — обновление записи при смене slug (строка ищется по старому
// slug, счётчики и created_at сохраняются).
func (r *contentRepo) Rename(ctx context.Context, kind models.ContentKind, oldSlug string, c *models.Content) (*models.Content, error) {
	tagsJSON, _ := json.Marshal(c.Tags)
	stackJSON, _ := json.Marshal(c.TechStack)

	q := `
		UPDATE contents SET
			slug = $3, title = $4, title_en = COALESCE($5, title_en),
			content = $6, content_en = COALESCE($7, content_en),
			excerpt = $8, excerpt_en = COALESCE($9, excerpt_en),
			category = $10, tags = $11::jsonb, tech_stack = $12::jsonb, link_type = $13,
			published = $14,
			published_at = COALESCE(published_at, CASE WHEN $14 THEN NOW() END),
			file_path = $15, git_commit = $16, updated_at = NOW()
		WHERE kind = $1 AND slug = $2
		RETURNING ` + contentColumns

	row := r.db.QueryRow(ctx, q,
		kind, oldSlug, c.Slug, c.Title, c.TitleEn, c.Content, c.ContentEn,
		c.Excerpt, c.ExcerptEn, c.Category, tagsJSON, stackJSON, c.LinkType,
		c.Published, c.FilePath, c.GitCommit,
	)
	return scanContent(row)
}

func (r *contentRepo) Delete(ctx context.Context, kind models.ContentKind, slug string) error {
	_, err := r.db.Exec(ctx, "DELETE FROM contents WHERE kind=$1 AND slug=$2", kind, slug)
	return err
}

// UpdateFromRevert — перезапись полей записи из восстановленного файла
// (git_commit отдельно: содержимое и хэш меняются одной транзакцией).
func (r *contentRepo) UpdateFromRevert(ctx context.Context, c *models.Content) error {
	tagsJSON, _ := json.Marshal(c.Tags)
	stackJSON, _ := json.Marshal(c.TechStack)

	const q = `
		UPDATE contents SET
			title = $2, content = $3, excerpt = $4, category = $5,
			tags = $6::jsonb, tech_stack = $7::jsonb, link_type = $8,
			published = $9,
			published_at = COALESCE(published_at, CASE WHEN $9 THEN NOW() END),
			git_commit = $10, updated_at = NOW()
		WHERE file_path = $1
	`
	_, err := r.db.Exec(ctx, q,
		c.FilePath, c.Title, c.Content, c.Excerpt, c.Category,
		tagsJSON, stackJSON, c.LinkType, c.Published, c.GitCommit,
	)
	return err
}

func (r *contentRepo) IncrementViews(ctx context.Context, kind models.ContentKind, slug string) error {
	_, err := r.db.Exec(ctx,
		"UPDATE contents SET views = views + 1 WHERE kind=$1 AND slug=$2", kind, slug)
	return err
}

func (r *contentRepo) AddLike(ctx context.Context, kind models.ContentKind, slug string) (int64, error) {
	const q = `UPDATE contents SET likes = likes + 1 WHERE kind=$1 AND slug=$2 RETURNING likes`
	var likes int64
	if err := r.db.QueryRow(ctx, q, kind, slug).Scan(&likes); err != nil {
		return 0, err
	}
	return likes, nil
}

func (r *contentRepo) All(ctx context.Context) ([]*models.Content, error) {
	rows, err := r.db.Query(ctx, `SELECT `+contentColumns+` FROM contents ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
