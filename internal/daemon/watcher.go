package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// configSettle is how long the config file must stay quiet before a change
// is announced. Editors write through temp files and renames, producing a
// burst of events per save.
const configSettle = 500 * time.Millisecond

// Watcher announces settled changes to the config file on a reload channel.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	reload  chan<- struct{}
	settle  time.Duration
	logger  *slog.Logger
}

// NewWatcher creates a watcher for the config file at path. Announcements
// are non-blocking sends on reload.
func NewWatcher(path string, reload chan<- struct{}, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		path:    path,
		watcher: fw,
		reload:  reload,
		settle:  configSettle,
		logger:  logger,
	}, nil
}

// Run watches until the context is cancelled. The parent directory is
// watched rather than the file itself so saves through rename, and a config
// file created after startup, are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.logger.Info("config watcher started", "path", w.path)

	var (
		settleTimer *time.Timer
		settleC     <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if settleTimer == nil {
				settleTimer = time.NewTimer(w.settle)
				settleC = settleTimer.C
			} else {
				if !settleTimer.Stop() {
					select {
					case <-settleC:
					default:
					}
				}
				settleTimer.Reset(w.settle)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("config watcher error", "error", err)

		case <-settleC:
			settleTimer = nil
			settleC = nil
			w.logger.Info("config file changed", "path", w.path)
			select {
			case w.reload <- struct{}{}:
			default:
			}
		}
	}
}
