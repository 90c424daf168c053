package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"blogsync/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(t.TempDir())
}

func TestValidSlug(t *testing.T) {
	assert.True(t, ValidSlug("hello-world-42"))
	assert.True(t, ValidSlug("a"))
	assert.False(t, ValidSlug(""))
	assert.False(t, ValidSlug("-lead"))
	assert.False(t, ValidSlug("trail-"))
	assert.False(t, ValidSlug("UPPER"))
	assert.False(t, ValidSlug("../etc/passwd"))
	assert.False(t, ValidSlug("a b"))
}

func TestWriteReadDelete(t *testing.T) {
	s := newTestStore(t)
	fm := map[string]interface{}{"title": "Пост", "published": false}

	require.NoError(t, s.Write(models.KindBlog, "first", fm, "тело"))
	assert.True(t, s.Exists(models.KindBlog, "first"))

	f, err := s.Read(models.KindBlog, "first")
	require.NoError(t, err)
	assert.Equal(t, "тело", f.Content)
	assert.Equal(t, "Пост", f.FrontMatter["title"])

	assert.True(t, s.Delete(models.KindBlog, "first"))
	assert.False(t, s.Exists(models.KindBlog, "first"))
	assert.False(t, s.Delete(models.KindBlog, "first"))
}

func TestWriteIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	fm := map[string]interface{}{"title": "x", "tags": []string{"a", "b"}}

	require.NoError(t, s.Write(models.KindNote, "n", fm, "body"))
	first, err := os.ReadFile(s.Path(models.KindNote, "n"))
	require.NoError(t, err)

	require.NoError(t, s.Write(models.KindNote, "n", fm, "body"))
	second, err := os.ReadFile(s.Path(models.KindNote, "n"))
	require.NoError(t, err)

	assert.Equal(t, first, second, "повторная запись должна давать байт-в-байт тот же файл")
}

func TestKindDirectories(t *testing.T) {
	s := newTestStore(t)
	assert.Contains(t, s.Path(models.KindBlog, "x"), "posts/")
	assert.Contains(t, s.Path(models.KindNote, "x"), "notes/")
	assert.Contains(t, s.Path(models.KindProject, "x"), "projects/")
}

func TestListEmptyWhenDirMissing(t *testing.T) {
	s := newTestStore(t)
	slugs, err := s.List(models.KindProject)
	require.NoError(t, err)
	assert.Empty(t, slugs)
}

func TestListStripsExtension(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Write(models.KindBlog, "alpha", map[string]interface{}{}, "a"))
	require.NoError(t, s.Write(models.KindBlog, "beta", map[string]interface{}{}, "b"))

	// Посторонние файлы игнорируются
	require.NoError(t, os.WriteFile(filepath.Join(s.root, "posts", "junk.txt"), []byte("x"), 0o644))

	slugs, err := s.List(models.KindBlog)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, slugs)
}

func TestRejectsBadSlug(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.Write(models.KindBlog, "../evil", map[string]interface{}{}, "x"))
	_, err := s.Read(models.KindBlog, "../evil")
	assert.Error(t, err)
	assert.False(t, s.Exists(models.KindBlog, "../evil"))
}

func TestDerivePublishedAt(t *testing.T) {
	explicit := "2025-01-15T12:00:00Z"
	got := DerivePublishedAt(map[string]interface{}{"publishedAt": explicit, "published": true})
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC), got.UTC())

	got = DerivePublishedAt(map[string]interface{}{"published": true})
	require.NotNil(t, got)
	assert.WithinDuration(t, time.Now().UTC(), *got, 5*time.Second)

	assert.Nil(t, DerivePublishedAt(map[string]interface{}{"published": false}))
	assert.Nil(t, DerivePublishedAt(map[string]interface{}{}))
}
