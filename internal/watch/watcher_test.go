package watch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func startWatch(t *testing.T, root string, rebuild RebuildFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, []string{root}, 50*time.Millisecond, testLogger(), rebuild)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	time.Sleep(100 * time.Millisecond)
}

func TestWatch_DebouncedRebuild(t *testing.T) {
	dir := t.TempDir()
	var rebuilds atomic.Int32
	startWatch(t, dir, func(context.Context) error {
		rebuilds.Add(1)
		return nil
	})

	for _, name := range []string{"a.md", "b.md", "c.md"} {
		_ = os.WriteFile(filepath.Join(dir, name), []byte("---\ntitle: x\n---\n"), 0o644)
	}

	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		return rebuilds.Load() >= 1
	}, "no rebuild after markdown change")

	time.Sleep(200 * time.Millisecond)
	if n := rebuilds.Load(); n != 1 {
		t.Errorf("rebuilds = %d, want 1 for a burst of writes", n)
	}
}

func TestWatch_IgnoresNonMarkdown(t *testing.T) {
	dir := t.TempDir()
	var rebuilds atomic.Int32
	startWatch(t, dir, func(context.Context) error {
		rebuilds.Add(1)
		return nil
	})

	_ = os.WriteFile(filepath.Join(dir, "feed.json"), []byte("{}"), 0o644)
	time.Sleep(300 * time.Millisecond)
	if rebuilds.Load() != 0 {
		t.Error("non-markdown change triggered a rebuild")
	}
}

func TestWatch_NewDirWatched(t *testing.T) {
	dir := t.TempDir()
	var rebuilds atomic.Int32
	startWatch(t, dir, func(context.Context) error {
		rebuilds.Add(1)
		return errors.New("rebuild errors are logged")
	})

	sub := filepath.Join(dir, "posts")
	_ = os.MkdirAll(sub, 0o755)
	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(sub, "deep.md"), []byte("# Deep"), 0o644)

	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		return rebuilds.Load() >= 1
	}, "file in new subdir did not trigger a rebuild")

	_ = os.Remove(filepath.Join(sub, "deep.md"))
	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		return rebuilds.Load() >= 2
	}, "removal did not trigger a rebuild after a failed one")
}

func TestWatch_RequiresRebuild(t *testing.T) {
	if err := Watch(context.Background(), []string{t.TempDir()}, 0, testLogger(), nil); err == nil {
		t.Error("expected error without rebuild callback")
	}
}
