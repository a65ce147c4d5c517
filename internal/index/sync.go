package index

import (
	"log/slog"

	"github.com/starford/raido/internal/review"
	"github.com/starford/raido/internal/storage"
)

// Sync walks the vault and brings the index and review snapshot up to
// date: new/changed files are upserted, vanished files are matched by
// checksum against newly appeared ones to detect renames, and the rest
// are treated as deletions. Run once at startup and again after rename
// bursts from the watcher.
func Sync(db *DB, store storage.Provider, reviews *review.Store, logger *slog.Logger, cb EventCallback) error {
	indexed, err := db.AllChecksums()
	if err != nil {
		return err
	}

	metas, err := store.List("")
	if err != nil {
		return err
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}

	// Appeared paths grouped by checksum, for rename matching. Only paths
	// the index has not seen qualify as rename targets.
	appeared := make(map[string][]string)
	for p, cs := range disk {
		if _, ok := indexed[p]; !ok {
			appeared[cs] = append(appeared[cs], p)
		}
	}

	// Vanished indexed paths: rename when an appeared path carries the
	// same checksum, deletion otherwise. Content-identical files make the
	// match ambiguous; first candidate wins.
	for p, cs := range indexed {
		if _, ok := disk[p]; ok {
			continue
		}
		if cands := appeared[cs]; len(cands) > 0 {
			np := cands[0]
			appeared[cs] = cands[1:]
			if err := db.Rename(p, np); err != nil {
				logger.Warn("sync: rename failed", slog.String("old", p), slog.String("new", np), slog.String("error", err.Error()))
				continue
			}
			if err := reviews.ReconcileRename(p, np); err != nil {
				logger.Warn("sync: review rename failed", slog.String("old", p), slog.String("error", err.Error()))
			}
			logger.Debug("sync: renamed", slog.String("old", p), slog.String("new", np))
			if cb != nil {
				cb("renamed", np)
			}
			continue
		}
		if err := db.Delete(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		if err := reviews.ReconcileDelete(p); err != nil {
			logger.Warn("sync: review delete failed", slog.String("path", p), slog.String("error", err.Error()))
		}
		logger.Debug("sync: removed stale", slog.String("path", p))
		if cb != nil {
			cb("deleted", p)
		}
	}

	// Index new and changed files. Rename targets were already moved
	// above and their checksum is current, so they are skipped here.
	current, err := db.AllChecksums()
	if err != nil {
		return err
	}
	for _, m := range metas {
		if current[m.Path] == m.Checksum {
			continue
		}
		kind := "updated"
		if _, ok := current[m.Path]; !ok {
			kind = "created"
		}
		if err := db.Upsert(m.Path, m.Checksum); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: indexed", slog.String("path", m.Path), slog.String("op", kind))
		if cb != nil {
			cb(kind, m.Path)
		}
	}

	return nil
}
