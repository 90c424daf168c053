package gitvcs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLog(t *testing.T) {
	out := "abc123|Иван Петров|2025-06-01T10:00:00+03:00|content: update posts/x.md\n" +
		"def456|blogsync|2025-05-20T09:30:00Z|content: add posts/x.md\n"

	commits := ParseLog(out)
	require.Len(t, commits, 2)

	assert.Equal(t, "abc123", commits[0].Hash)
	assert.Equal(t, "Иван Петров", commits[0].Author)
	assert.Equal(t, "content: update posts/x.md", commits[0].Message)
	assert.Equal(t, 2025, commits[0].Date.Year())

	assert.Equal(t, "def456", commits[1].Hash)
	assert.True(t, commits[0].Date.After(commits[1].Date), "история идёт от новых к старым")
}

func TestParseLogMessageWithPipes(t *testing.T) {
	out := "aaa|author|2025-01-01T00:00:00Z|msg | with | pipes\n"
	commits := ParseLog(out)
	require.Len(t, commits, 1)
	assert.Equal(t, "msg | with | pipes", commits[0].Message)
}

func TestParseLogSkipsGarbage(t *testing.T) {
	out := "\nнекорректная строка\naaa|a|не-дата|msg\nbbb|b|2025-01-01T00:00:00Z|ok\n"
	commits := ParseLog(out)
	require.Len(t, commits, 1)
	assert.Equal(t, "bbb", commits[0].Hash)
}

func TestNewAdapter(t *testing.T) {
	a, err := NewAdapter(t.TempDir(), "tester", "tester@localhost", "", 5*time.Second)
	require.NoError(t, err)
	assert.NotNil(t, a.revCache)
}

// initRepo поднимает пустой git-репозиторий во временном каталоге.
func initRepo(t *testing.T) (*Adapter, string) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git недоступен в окружении")
	}
	dir := t.TempDir()
	out, err := exec.Command("git", "init", dir).CombinedOutput()
	require.NoError(t, err, string(out))

	a, err := NewAdapter(dir, "tester", "tester@localhost", "", 10*time.Second)
	require.NoError(t, err)
	return a, dir
}

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func gitStatus(t *testing.T, dir string) string {
	t.Helper()
	out, err := exec.Command("git", "-C", dir, "status", "--porcelain").CombinedOutput()
	require.NoError(t, err, string(out))
	return strings.TrimSpace(string(out))
}

func TestRevertRestoresFileExactly(t *testing.T) {
	a, dir := initRepo(t)
	ctx := context.Background()

	const path = "content/posts/x.md"
	const assetDir = "public/assets/posts/x"
	v1 := "---\ntitle: Первая версия\n---\n\nстарое тело\n"
	v2 := "---\ntitle: Вторая версия\n---\n\nновое тело\n"

	writeFile(t, dir, path, v1)
	writeFile(t, dir, assetDir+"/img.txt", "картинка v1")
	require.True(t, a.Stage(ctx, path))
	require.True(t, a.Stage(ctx, assetDir))
	h1 := a.Commit(ctx, "content: add "+path)
	require.NotEmpty(t, h1)

	writeFile(t, dir, path, v2)
	require.NoError(t, os.Remove(filepath.Join(dir, filepath.FromSlash(assetDir+"/img.txt"))))
	require.True(t, a.Stage(ctx, path))
	require.True(t, a.Stage(ctx, assetDir))
	h2 := a.Commit(ctx, "content: update "+path)
	require.NotEmpty(t, h2)
	require.NotEqual(t, h1, h2)

	newCommit, content, ok := a.RevertToCommit(ctx, path, h1, assetDir)
	require.True(t, ok, "откат к существующей ревизии должен удаться")
	assert.Equal(t, v1, content, "содержимое восстанавливается байт в байт")
	require.NotEmpty(t, newCommit)

	onDisk, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(path)))
	require.NoError(t, err)
	assert.Equal(t, v1, string(onDisk))

	asset, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(assetDir+"/img.txt")))
	require.NoError(t, err)
	assert.Equal(t, "картинка v1", string(asset), "каталог ресурсов восстанавливается тем же коммитом")

	// История append-only: откат добавляет ровно один коммит поверх двух
	commits := a.History(ctx, path, 10)
	require.Len(t, commits, 3)
	assert.True(t, strings.HasPrefix(commits[0].Hash, newCommit))
	assert.Empty(t, gitStatus(t, dir), "после отката рабочее дерево чистое")
}

func TestRevertUnknownPathLeavesTreeClean(t *testing.T) {
	a, dir := initRepo(t)
	ctx := context.Background()

	const path = "content/posts/x.md"
	writeFile(t, dir, path, "тело\n")
	require.True(t, a.Stage(ctx, path))
	h1 := a.Commit(ctx, "content: add "+path)
	require.NotEmpty(t, h1)

	_, _, ok := a.RevertToCommit(ctx, "content/posts/ghost.md", h1, "")
	assert.False(t, ok, "путь отсутствовал на ревизии — откат невозможен")
	assert.Empty(t, gitStatus(t, dir), "неудачный откат не должен трогать индекс и дерево")

	commits := a.History(ctx, path, 10)
	assert.Len(t, commits, 1, "неудачный откат не создаёт коммитов")
}

func TestCommitEmptyIndexReturnsEmptyHash(t *testing.T) {
	a, dir := initRepo(t)
	ctx := context.Background()

	writeFile(t, dir, "content/posts/x.md", "тело\n")
	require.True(t, a.Stage(ctx, "content/posts/x.md"))
	require.NotEmpty(t, a.Commit(ctx, "content: add"))

	assert.Empty(t, a.Commit(ctx, "пустой индекс"), "коммитить нечего — возвращается пустой хэш")
}

func TestContentAtRevision(t *testing.T) {
	a, dir := initRepo(t)
	ctx := context.Background()

	const path = "content/notes/n.md"
	writeFile(t, dir, path, "v1\n")
	require.True(t, a.Stage(ctx, path))
	h1 := a.Commit(ctx, "content: add "+path)

	writeFile(t, dir, path, "v2\n")
	require.True(t, a.Stage(ctx, path))
	require.NotEmpty(t, a.Commit(ctx, "content: update "+path))

	got, ok := a.ContentAtRevision(ctx, path, h1)
	require.True(t, ok)
	assert.Equal(t, "v1\n", got)

	_, ok = a.ContentAtRevision(ctx, "content/notes/ghost.md", h1)
	assert.False(t, ok)
}
