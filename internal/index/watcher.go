package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/review"
	"github.com/starford/raido/internal/storage"
)

// EventCallback is called after a watcher-driven change.
// kind is one of "created", "updated", "deleted", "renamed".
type EventCallback func(kind string, path string)

// Watch starts an fsnotify watcher on the vault root and processes file
// change events until ctx is cancelled, keeping the index and the review
// snapshot consistent with the vault. It calls cb (if non-nil) after
// each successful mutation.
//
// New directories created at runtime are automatically added to the
// watch list. fsnotify reports a rename only as an event on the OLD
// path, so rename events merely schedule a debounced Sync pass, which
// matches vanished paths against appeared ones by checksum and turns
// them into review rename reconciliations rather than deletions.
func Watch(ctx context.Context, db *DB, store storage.Provider, reviews *review.Store, vaultRoot string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, vaultRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", vaultRoot))

	// syncTimer debounces the rename reconciliation pass.
	var syncTimer *time.Timer
	var syncCh <-chan time.Time

	scheduleSync := func() {
		if syncTimer == nil {
			syncTimer = time.NewTimer(200 * time.Millisecond)
			syncCh = syncTimer.C
		} else {
			syncTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if syncTimer != nil {
				syncTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-syncCh:
			if err := Sync(db, store, reviews, logger, cb); err != nil {
				logger.Warn("watcher: sync failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// New directories: watch them and pick up any .md files they
			// already contain via a sync pass.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					scheduleSync()
					continue
				}
			}

			// Only process .md files from here on.
			if !strings.HasSuffix(absPath, ".md") {
				continue
			}

			rel, relErr := filepath.Rel(vaultRoot, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&fsnotify.Create != 0:
				// A Create may be the second half of a rename. Indexing it
				// here would mask the checksum match the sync pass uses to
				// tell renames from deletions, so defer to it.
				logger.Debug("watcher: create pending", slog.String("path", rel))
				scheduleSync()

			case ev.Op&fsnotify.Write != 0:
				cs, csErr := checksum.File(absPath)
				if csErr != nil {
					logger.Warn("watcher: checksum failed", slog.String("path", rel), slog.String("error", csErr.Error()))
					continue
				}
				prev, _ := db.GetChecksum(rel)
				if prev == cs {
					continue
				}
				if prev == "" {
					// Not indexed yet: the sync pass decides whether this
					// is a new file or the landing side of a rename.
					scheduleSync()
					continue
				}
				if idxErr := db.Upsert(rel, cs); idxErr != nil {
					logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", idxErr.Error()))
					continue
				}
				logger.Debug("watcher: indexed", slog.String("path", rel))
				if cb != nil {
					cb("updated", rel)
				}

			case ev.Op&fsnotify.Remove != 0:
				if delErr := db.Delete(rel); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
					continue
				}
				if recErr := reviews.ReconcileDelete(rel); recErr != nil {
					logger.Warn("watcher: review delete failed", slog.String("path", rel), slog.String("error", recErr.Error()))
				}
				logger.Debug("watcher: deleted", slog.String("path", rel))
				if cb != nil {
					cb("deleted", rel)
				}

			case ev.Op&fsnotify.Rename != 0:
				// Do NOT touch the index yet: the sync pass needs the old
				// row's checksum to recognize the new path as a rename.
				logger.Debug("watcher: rename pending", slog.String("path", rel))
				scheduleSync()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
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
