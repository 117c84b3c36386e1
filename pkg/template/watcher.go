package template

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reloads a registry when its configuration file changes on disk.
// The parent directory is watched so editors that replace the file via
// rename are still observed.
type Watcher struct {
	watcher  *fsnotify.Watcher
	registry *Registry
	logger   zerolog.Logger
	debounce time.Duration

	timerMu sync.Mutex
	timer   *time.Timer
	stopCh  chan struct{}
}

// NewWatcher creates a watcher bound to a registry and starts it
func NewWatcher(registry *Registry, logger zerolog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsWatcher,
		registry: registry,
		logger:   logger,
		debounce: 500 * time.Millisecond,
		stopCh:   make(chan struct{}),
	}

	if err := fsWatcher.Add(filepath.Dir(registry.Path())); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	go w.run()

	return w, nil
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	close(w.stopCh)
	return w.watcher.Close()
}

// run processes file system events
func (w *Watcher) run() {
	target := filepath.Base(w.registry.Path())

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != target {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.logger.Debug().
					Str("file", target).
					Str("op", event.Op.String()).
					Msg("Template file change detected")

				w.scheduleReload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("Template watcher error")

		case <-w.stopCh:
			return
		}
	}
}

// scheduleReload debounces bursts of write events into one reload
func (w *Watcher) scheduleReload() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.debounce, func() {
		if err := w.registry.Reload(); err != nil {
			w.logger.Warn().Err(err).Msg("Template reload degraded")
		}
	})
}
