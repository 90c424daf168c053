// Package store — файловое хранилище контента: (kind, slug) -> markdown-файл
// с YAML front matter в каталоге content/{posts|notes|projects}.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"blogsync/internal/frontmatter"
	"blogsync/internal/models"
)

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug проверяет slug: латиница/цифры/дефисы, без обхода путей.
func ValidSlug(slug string) bool {
	return slugRe.MatchString(slug)
}

// File — результат чтения контент-файла.
type File struct {
	FrontMatter map[string]interface{}
	Content     string
	Raw         string
}

type FileStore struct {
	root string
}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// Path — путь файла относительно корня рабочего дерева.
func (s *FileStore) Path(kind models.ContentKind, slug string) string {
	return filepath.ToSlash(filepath.Join(s.root, kind.Dir(), slug+".md"))
}

func (s *FileStore) Exists(kind models.ContentKind, slug string) bool {
	if !ValidSlug(slug) {
		return false
	}
	_, err := os.Stat(s.Path(kind, slug))
	return err == nil
}

func (s *FileStore) Read(kind models.ContentKind, slug string) (*File, error) {
	if !ValidSlug(slug) {
		return nil, fmt.Errorf("некорректный slug: %q", slug)
	}
	raw, err := os.ReadFile(s.Path(kind, slug))
	if err != nil {
		return nil, err
	}
	fm, body, err := frontmatter.Parse(string(raw))
	if err != nil {
		return nil, err
	}
	return &File{FrontMatter: fm, Content: body, Raw: string(raw)}, nil
}

// Write создаёт каталоги при необходимости и перезаписывает файл целиком.
func (s *FileStore) Write(kind models.ContentKind, slug string, fm map[string]interface{}, content string) error {
	if !ValidSlug(slug) {
		return fmt.Errorf("некорректный slug: %q", slug)
	}
	raw, err := frontmatter.Serialize(fm, content)
	if err != nil {
		return err
	}
	path := s.Path(kind, slug)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("создание каталога: %w", err)
	}
	return os.WriteFile(path, []byte(raw), 0o644)
}

// Delete удаляет файл; false — если файла не было.
func (s *FileStore) Delete(kind models.ContentKind, slug string) bool {
	if !ValidSlug(slug) {
		return false
	}
	err := os.Remove(s.Path(kind, slug))
	return err == nil
}

// List — все slug'и данного типа (расширение отброшено);
// отсутствующий каталог — пустой список.
func (s *FileStore) List(kind models.ContentKind) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, kind.Dir()))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	slugs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(e.Name(), ".md"))
	}
	return slugs, nil
}

// DerivePublishedAt — дата публикации из front matter: явный
// publishedAt, иначе «сейчас» при published=true, иначе nil.
// Используется только при создании/синхронизации и никогда не
// перетирает уже установленное значение в БД.
func DerivePublishedAt(fm map[string]interface{}) *time.Time {
	if t := frontmatter.Time(fm, "publishedAt"); t != nil {
		return t
	}
	if frontmatter.Bool(fm, "published") {
		now := time.Now().UTC()
		return &now
	}
	return nil
}
