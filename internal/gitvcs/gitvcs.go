// Package gitvcs — адаптер локального git-репозитория (одно рабочее
// дерево). Мутации (stage/commit/push/pull/revert) сериализуются
// внутренним мьютексом, чтобы index.lock не ловил гонки между
// конкурентными запросами. Ошибки git не пробрасываются наружу:
// мутирующие методы возвращают ""/false, решение принимает вызывающий.
package gitvcs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"blogsync/internal/logger"
	"blogsync/internal/models"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const shortHashLen = 7

type Adapter struct {
	repoDir     string
	authorName  string
	authorEmail string
	remote      string
	timeout     time.Duration

	mu sync.Mutex

	// Содержимое файла на ревизии неизменяемо — кэшируем.
	revCache *lru.Cache[string, string]
}

func NewAdapter(repoDir, authorName, authorEmail, remote string, timeout time.Duration) (*Adapter, error) {
	cache, err := lru.New[string, string](256)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		repoDir:     repoDir,
		authorName:  authorName,
		authorEmail: authorEmail,
		remote:      remote,
		timeout:     timeout,
		revCache:    cache,
	}, nil
}

// run выполняет git с таймаутом; возвращает stdout и ошибку с stderr внутри.
func (a *Adapter) run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	full := append([]string{
		"-C", a.repoDir,
		"-c", "user.name=" + a.authorName,
		"-c", "user.email=" + a.authorEmail,
	}, args...)

	cmd := exec.CommandContext(ctx, "git", full...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.String(), fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// Stage добавляет путь в индекс (включая удаления). false при ошибке.
func (a *Adapter) Stage(ctx context.Context, path string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stageLocked(ctx, path)
}

func (a *Adapter) stageLocked(ctx context.Context, path string) bool {
	// Начатая пара stage+commit доводится до конца или до ошибки:
	// отмена запроса не должна оставить индекс наполовину собранным.
	ctx = context.WithoutCancel(ctx)
	if _, err := a.run(ctx, "add", "-A", "--", path); err != nil {
		logger.WithCtx(ctx).Warn("git add не удался", zap.String("path", path), zap.Error(err))
		return false
	}
	return true
}

// Commit коммитит индекс; возвращает короткий (7 символов) хэш нового
// коммита или "" — если коммитить нечего или git вернул ошибку.
func (a *Adapter) Commit(ctx context.Context, message string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.commitLocked(ctx, message)
}

func (a *Adapter) commitLocked(ctx context.Context, message string) string {
	ctx = context.WithoutCancel(ctx)
	if _, err := a.run(ctx, "commit", "-m", message); err != nil {
		logger.WithCtx(ctx).Warn("git commit не удался", zap.String("message", message), zap.Error(err))
		return ""
	}
	out, err := a.run(ctx, "rev-parse", "--short="+fmt.Sprint(shortHashLen), "HEAD")
	if err != nil {
		logger.WithCtx(ctx).Warn("git rev-parse после коммита не удался", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(out)
}

// Push — best effort: неудача логируется и не считается фатальной,
// локальная история авторитетна.
func (a *Adapter) Push(ctx context.Context) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	args := []string{"push"}
	if a.remote != "" {
		args = append(args, a.remote)
	}
	if _, err := a.run(ctx, args...); err != nil {
		logger.WithCtx(ctx).Warn("git push не удался", zap.Error(err))
		return false
	}
	return true
}

func (a *Adapter) Pull(ctx context.Context) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	args := []string{"pull"}
	if a.remote != "" {
		args = append(args, a.remote)
	}
	if _, err := a.run(ctx, args...); err != nil {
		logger.WithCtx(ctx).Warn("git pull не удался", zap.Error(err))
		return false
	}
	return true
}

// CurrentCommit — полный хэш HEAD, "" если репозиторий пуст.
func (a *Adapter) CurrentCommit(ctx context.Context) string {
	out, err := a.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// History — коммиты, затрагивающие путь, от новых к старым.
func (a *Adapter) History(ctx context.Context, path string, limit int) []models.Commit {
	if limit <= 0 {
		limit = 20
	}
	out, err := a.run(ctx, "log", "-n", fmt.Sprint(limit), "--format="+logFormat, "--", path)
	if err != nil {
		logger.WithCtx(ctx).Warn("git log не удался", zap.String("path", path), zap.Error(err))
		return nil
	}
	return ParseLog(out)
}

// ContentAtRevision — содержимое файла на ревизии; false, если путь не
// существовал в этом коммите.
func (a *Adapter) ContentAtRevision(ctx context.Context, path, hash string) (string, bool) {
	key := hash + ":" + path
	if v, ok := a.revCache.Get(key); ok {
		return v, true
	}
	out, err := a.run(ctx, "show", key)
	if err != nil {
		return "", false
	}
	a.revCache.Add(key, out)
	return out, true
}

// Diff — unified diff одного пути между двумя ревизиями.
func (a *Adapter) Diff(ctx context.Context, path, fromHash, toHash string) (string, bool) {
	out, err := a.run(ctx, "diff", fromHash, toHash, "--", path)
	if err != nil {
		logger.WithCtx(ctx).Warn("git diff не удался",
			zap.String("path", path), zap.String("from", fromHash), zap.String("to", toHash), zap.Error(err))
		return "", false
	}
	return out, true
}

// RevertToCommit восстанавливает путь (и каталог ресурсов, если он
// существовал на той ревизии) к состоянию hash одним коммитом, чтобы
// история показывала одно событие отката, а не N. Возвращает хэш
// нового коммита и восстановленное содержимое основного файла.
func (a *Adapter) RevertToCommit(ctx context.Context, path, hash, assetDir string) (string, string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	content, ok := a.ContentAtRevision(ctx, path, hash)
	if !ok {
		logger.WithCtx(ctx).Warn("путь не существовал на ревизии",
			zap.String("path", path), zap.String("hash", hash))
		return "", "", false
	}

	if _, err := a.run(ctx, "checkout", hash, "--", path); err != nil {
		logger.WithCtx(ctx).Warn("git checkout при откате не удался",
			zap.String("path", path), zap.String("hash", hash), zap.Error(err))
		return "", "", false
	}

	if assetDir != "" {
		if out, err := a.run(ctx, "ls-tree", "-d", hash, "--", assetDir); err == nil && strings.TrimSpace(out) != "" {
			if _, err := a.run(ctx, "checkout", hash, "--", assetDir); err != nil {
				logger.WithCtx(ctx).Warn("откат каталога ресурсов не удался",
					zap.String("dir", assetDir), zap.Error(err))
			}
		}
	}

	short := hash
	if len(short) > shortHashLen {
		short = short[:shortHashLen]
	}
	newCommit := a.commitLocked(ctx, fmt.Sprintf("revert: %s -> %s", path, short))
	if newCommit == "" {
		// Рабочее дерево уже было в нужном состоянии — коммита нет,
		// но содержимое восстановлено.
		logger.WithCtx(ctx).Info("откат без нового коммита (нет изменений)",
			zap.String("path", path), zap.String("hash", hash))
	}
	return newCommit, content, true
}

const logFormat = "%H|%an|%aI|%s"

// ParseLog разбирает вывод git log в формате logFormat.
func ParseLog(out string) []models.Commit {
	var commits []models.Commit
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 4)
		if len(parts) != 4 {
			continue
		}
		date, err := time.Parse(time.RFC3339, parts[2])
		if err != nil {
			continue
		}
		commits = append(commits, models.Commit{
			Hash:    parts[0],
			Author:  parts[1],
			Date:    date,
			Message: parts[3],
		})
	}
	return commits
}
