package archive

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/scaffold/internal/vault"
)

// Change kinds passed to EventCallback.
const (
	KindChanged = "changed"
	KindRemoved = "removed"
)

const debounceDelay = 150 * time.Millisecond

// EventCallback is called after a watcher-driven vault change has been
// processed. kind is KindChanged or KindRemoved.
type EventCallback func(kind string)

// Watch starts an fsnotify watcher on the directory holding the vault
// document and processes change events until ctx is cancelled. Bursts of
// events are debounced; each burst syncs the archive (when db is non-nil)
// and then calls cb (if non-nil).
//
// The directory is watched rather than the file because atomic writes
// replace the file, which drops a watch placed on the file itself.
func Watch(ctx context.Context, db *DB, store *vault.Vault, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	target, err := filepath.Abs(store.Path())
	if err != nil {
		return err
	}
	dir := filepath.Dir(target)
	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("path", target))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounceDelay)
			timerCh = timer.C
		} else {
			timer.Reset(debounceDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			flush(db, store, target, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			logger.Debug("watcher: event", slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// flush handles one debounced burst of events.
func flush(db *DB, store *vault.Vault, target string, logger *slog.Logger, cb EventCallback) {
	if _, err := os.Stat(target); errors.Is(err, os.ErrNotExist) {
		logger.Warn("watcher: vault document removed", slog.String("path", target))
		if cb != nil {
			cb(KindRemoved)
		}
		return
	}
	if db != nil {
		if err := Sync(db, store, logger); err != nil {
			logger.Warn("watcher: sync failed", slog.String("error", err.Error()))
		}
	}
	if cb != nil {
		cb(KindChanged)
	}
}
