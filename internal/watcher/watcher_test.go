package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"blogsync/internal/logger"
	"blogsync/internal/models"

	"go.uber.org/zap"
)

type countingResyncer struct {
	calls atomic.Int32
}

func (c *countingResyncer) SyncAll(_ context.Context) *models.SyncReport {
	c.calls.Add(1)
	return &models.SyncReport{Synced: map[models.ContentKind]int{}}
}

func TestWatcherTriggersResync(t *testing.T) {
	logger.Log = zap.NewNop()

	dir := t.TempDir()
	rs := &countingResyncer{}
	w := New(dir, rs)
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()

	// Дадим наблюдателю подписаться на каталоги
	time.Sleep(200 * time.Millisecond)

	file := filepath.Join(dir, "posts", "new.md")
	if err := os.WriteFile(file, []byte("---\ntitle: x\n---\n\nтело"), 0o644); err != nil {
		t.Fatalf("ошибка записи файла: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for rs.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if rs.calls.Load() == 0 {
		t.Fatal("изменение файла должно запускать ресинк")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("наблюдатель не остановился по отмене контекста")
	}
}

func TestWatcherIgnoresNonMarkdown(t *testing.T) {
	logger.Log = zap.NewNop()

	dir := t.TempDir()
	rs := &countingResyncer{}
	w := New(dir, rs)
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	time.Sleep(200 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "posts", "image.png"), []byte("x"), 0o644); err != nil {
		t.Fatalf("ошибка записи файла: %v", err)
	}

	time.Sleep(300 * time.Millisecond)
	if rs.calls.Load() != 0 {
		t.Fatal("не-markdown файлы не должны запускать ресинк")
	}
}
