// watch.go - Rebuild on source changes
package sitegen

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups bursts of file events into one rebuild.
const DefaultDebounce = 300 * time.Millisecond

// Watch rebuilds the site whenever a visible file under opts.Input changes,
// until ctx is cancelled. Build errors are reported to onBuild and do not stop
// the watcher.
func Watch(ctx context.Context, opts Options, debounce time.Duration, onBuild func(*Result, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, opts.Input); err != nil {
		return err
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevantEvent(ev) {
				continue
			}
			log.Debug("source changed", "path", ev.Name, "op", ev.Op.String())
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addWatchDirs(watcher, ev.Name); err != nil {
						log.Warn("cannot watch new directory", "path", ev.Name, "error", err)
					}
				}
			}
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "error", err)
		case <-timer.C:
			onBuild(BuildSite(ctx, opts))
		}
	}
}

// relevantEvent filters out attribute-only changes and hidden files.
func relevantEvent(ev fsnotify.Event) bool {
	if isHiddenFile(filepath.Base(ev.Name)) {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) ||
		ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

// addWatchDirs watches root and every visible directory below it.
func addWatchDirs(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && isHiddenFile(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.Add(p); err != nil {
			return fmt.Errorf("failed to watch '%s': %w", p, err)
		}
		return nil
	})
}
