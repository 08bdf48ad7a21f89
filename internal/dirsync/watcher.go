package dirsync

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/linkhub/internal/store"
)

// SyncCallback is called after a watcher-driven sync completes.
type SyncCallback func(departments int)

// Watch re-runs SyncFile whenever the export file changes, until ctx is
// cancelled. The watch is placed on the parent directory because HR tools
// typically replace the export atomically (write to temp, rename), which
// a watch on the file itself would lose.
//
// Rapid event bursts are debounced so one save triggers one sync.
func Watch(ctx context.Context, db store.Directory, path string, logger *slog.Logger, cb SyncCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("dirsync: watching export", slog.String("path", path))

	var syncTimer *time.Timer
	var syncCh <-chan time.Time

	scheduleSync := func() {
		if syncTimer == nil {
			syncTimer = time.NewTimer(500 * time.Millisecond)
			syncCh = syncTimer.C
		} else {
			syncTimer.Reset(500 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if syncTimer != nil {
				syncTimer.Stop()
			}
			logger.Info("dirsync: watcher stopped")
			return nil

		case <-syncCh:
			n, syncErr := SyncFile(db, path, logger)
			if syncErr != nil {
				logger.Warn("dirsync: resync failed", slog.String("error", syncErr.Error()))
				continue
			}
			if cb != nil {
				cb(n)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				scheduleSync()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("dirsync: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}
