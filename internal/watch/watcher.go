// Package watch rebuilds feeds when their Markdown sources change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last change before a rebuild.
const DefaultDebounce = 300 * time.Millisecond

const markdownExt = ".md"

// RebuildFunc runs a full rebuild. Errors are logged and watching continues.
type RebuildFunc func(ctx context.Context) error

// Watch starts an fsnotify watcher on every root and calls rebuild once
// changes to Markdown files have settled for debounce. It blocks until ctx is
// cancelled.
//
// New directories created at runtime are automatically added to the watch
// list; a new directory that already holds Markdown files triggers a rebuild.
func Watch(ctx context.Context, roots []string, debounce time.Duration, logger *slog.Logger, rebuild RebuildFunc) error {
	if rebuild == nil {
		return errors.New("watch: rebuild callback is required")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	for _, root := range roots {
		if err := addDirsRecursive(w, root); err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}
		logger.Info("watcher: started", slog.String("root", root))
	}

	// rebuildTimer debounces bursts of writes into a single rebuild.
	var rebuildTimer *time.Timer
	var rebuildCh <-chan time.Time

	scheduleRebuild := func() {
		if rebuildTimer == nil {
			rebuildTimer = time.NewTimer(debounce)
			rebuildCh = rebuildTimer.C
		} else {
			rebuildTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if rebuildTimer != nil {
				rebuildTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-rebuildCh:
			start := time.Now()
			if err := rebuild(ctx); err != nil {
				logger.Error("watcher: rebuild failed", slog.String("error", err.Error()))
				continue
			}
			logger.Info("watcher: rebuilt", slog.Duration("took", time.Since(start)))

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			// --- Handle new directories: add to watcher ---
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
					}
					if containsMarkdown(ev.Name) {
						scheduleRebuild()
					}
					continue
				}
			}

			// Only Markdown changes trigger a rebuild; generated pages and
			// temp files written into a nested target directory are ignored.
			if !strings.HasSuffix(ev.Name, markdownExt) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("watcher: change", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			scheduleRebuild()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// containsMarkdown reports whether dir holds a Markdown file at any depth.
func containsMarkdown(dir string) bool {
	found := false
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(path, markdownExt) {
			found = true
			return fs.SkipAll
		}
		return nil
	})
	return found
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
