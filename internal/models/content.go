package models

import (
	"fmt"
	"time"
)

// ContentKind — тип контента: blog | note | project.
type ContentKind string

const (
	KindBlog    ContentKind = "blog"
	KindNote    ContentKind = "note"
	KindProject ContentKind = "project"
)

// Dir — подкаталог файлового хранилища для данного типа.
func (k ContentKind) Dir() string {
	switch k {
	case KindBlog:
		return "posts"
	case KindNote:
		return "notes"
	case KindProject:
		return "projects"
	}
	return ""
}

func ParseKind(s string) (ContentKind, error) {
	switch ContentKind(s) {
	case KindBlog, KindNote, KindProject:
		return ContentKind(s), nil
	}
	return "", fmt.Errorf("неизвестный тип контента: %q", s)
}

// Content — запись контента в БД. Вторичный язык (поля *En) хранится
// только в БД, файл содержит только основной язык.
type Content struct {
	ID        int64       `db:"id"         json:"id"`
	Slug      string      `db:"slug"       json:"slug"`
	Kind      ContentKind `db:"kind"       json:"kind"`
	Title     string      `db:"title"      json:"title"`
	TitleEn   *string     `db:"title_en"   json:"titleEn,omitempty"`
	Content   string      `db:"content"    json:"content"`
	ContentEn *string     `db:"content_en" json:"contentEn,omitempty"`
	Excerpt   *string     `db:"excerpt"    json:"excerpt,omitempty"`
	ExcerptEn *string     `db:"excerpt_en" json:"excerptEn,omitempty"`

	Category  *string  `db:"category"   json:"category,omitempty"`
	Tags      []string `db:"-"          json:"tags"`
	TechStack []string `db:"-"          json:"techStack,omitempty"`
	LinkType  *string  `db:"link_type"  json:"linkType,omitempty"`

	Published   bool       `db:"published"    json:"published"`
	PublishedAt *time.Time `db:"published_at" json:"publishedAt,omitempty"`

	FilePath  string  `db:"file_path"  json:"filePath"`
	GitCommit *string `db:"git_commit" json:"gitCommit"`

	Views int64 `db:"views" json:"views"`
	Likes int64 `db:"likes" json:"likes"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// swagger:model CreateContentRequest
type CreateContentRequest struct {
	Slug    string `json:"slug"    example:"how-to-write-middleware"`
	Title   string `json:"title"   example:"Как писать middleware в Go"`
	Content string `json:"content" example:"# Заголовок\n\nТекст статьи"`

	TitleEn   *string `json:"titleEn,omitempty"`
	ContentEn *string `json:"contentEn,omitempty"`
	Excerpt   *string `json:"excerpt,omitempty"`
	ExcerptEn *string `json:"excerptEn,omitempty"`

	// blog | note
	Category *string  `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty" example:"go,backend"`

	// project
	TechStack []string `json:"techStack,omitempty"`
	LinkType  *string  `json:"linkType,omitempty" example:"github"`

	Published bool `json:"published"`
}

// UpdateContentRequest — PATCH-семантика: nil-поле означает «не менять».
// swagger:model UpdateContentRequest
type UpdateContentRequest struct {
	Slug      *string   `json:"slug,omitempty"`
	Title     *string   `json:"title,omitempty"`
	Content   *string   `json:"content,omitempty"`
	TitleEn   *string   `json:"titleEn,omitempty"`
	ContentEn *string   `json:"contentEn,omitempty"`
	Excerpt   *string   `json:"excerpt,omitempty"`
	ExcerptEn *string   `json:"excerptEn,omitempty"`
	Category  *string   `json:"category,omitempty"`
	Tags      *[]string `json:"tags,omitempty"`
	TechStack *[]string `json:"techStack,omitempty"`
	LinkType  *string   `json:"linkType,omitempty"`
	Published *bool     `json:"published,omitempty"`
}

// SyncReport — итог пакетной синхронизации с диска.
type SyncReport struct {
	Synced map[ContentKind]int `json:"synced"`
	Errors []SyncError         `json:"errors"`
}

type SyncError struct {
	Kind ContentKind `json:"kind"`
	Slug string      `json:"slug"`
	Err  string      `json:"error"`
}
