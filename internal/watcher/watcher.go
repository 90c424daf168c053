// Package watcher — наблюдение за каталогом контента: внешние правки
// файлов (редактор, git pull) подхватываются пакетной синхронизацией.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"blogsync/internal/logger"
	"blogsync/internal/models"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Resyncer — то, что умеет пересинхронизировать контент с диска.
type Resyncer interface {
	SyncAll(ctx context.Context) *models.SyncReport
}

type Watcher struct {
	root     string
	sync     Resyncer
	debounce time.Duration
}

func New(contentDir string, sync Resyncer) *Watcher {
	return &Watcher{root: contentDir, sync: sync, debounce: 2 * time.Second}
}

// Run блокируется до отмены контекста. События схлопываются с паузой
// debounce, чтобы серия сохранений не запускала десяток синхронизаций.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	for _, kind := range []models.ContentKind{models.KindBlog, models.KindNote, models.KindProject} {
		dir := filepath.Join(w.root, kind.Dir())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		if err := fw.Add(dir); err != nil {
			return err
		}
	}

	logger.Log.Info("Наблюдение за каталогом контента запущено", zap.String("dir", w.root))

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".md") {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Log.Debug("Изменение контент-файла", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Log.Warn("Ошибка наблюдателя", zap.Error(err))

		case <-timerC:
			timer = nil
			timerC = nil
			report := w.sync.SyncAll(ctx)
			logger.Log.Info("Автосинхронизация по изменению файлов",
				zap.Any("synced", report.Synced),
				zap.Int("errors", len(report.Errors)),
			)
		}
	}
}
