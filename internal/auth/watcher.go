// Package auth provides HTTP Basic authentication for the metalmesh RPC channel.
package auth

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/yndnr/metalmesh/internal/telemetry/logger"
)

// Watcher invalidates a verify cache when the credential file changes.
// Without it, a rotated credential file could keep serving stale
// cached verdicts for previously seen (password, hash) pairs.
type Watcher struct {
	path    string
	cache   *VerifyCache
	watcher *fsnotify.Watcher
	done    chan struct{}
	log     logger.Logger
}

// NewWatcher creates a watcher for the given credential file.
func NewWatcher(path string, cache *VerifyCache, log logger.Logger) (*Watcher, error) {
	if log == nil {
		log = logger.Default()
	}
	return &Watcher{
		path:  path,
		cache: cache,
		done:  make(chan struct{}),
		log:   log,
	}, nil
}

// Start watches for credential file changes. Blocks until Stop.
func (w *Watcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("auth: create watcher: %w", err)
	}
	w.watcher = watcher

	// Watch the directory rather than the file: editors and atomic
	// writers replace the file, which drops a direct watch.
	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("auth: watch credential dir %s: %w", dir, err)
	}

	w.log.Info("credential watcher started", "file", w.path)

	base := filepath.Base(w.path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			w.cache.Clear()
			w.log.Info("credential file changed, verify cache cleared",
				"file", w.path,
				"op", event.Op.String(),
			)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("credential watcher error", "error", err, "file", w.path)

		case <-w.done:
			return watcher.Close()
		}
	}
}

// StartAsync starts watching in a goroutine.
func (w *Watcher) StartAsync() {
	go func() {
		if err := w.Start(); err != nil {
			w.log.Error("credential watcher stopped with error", "error", err)
		}
	}()
}

// Stop stops watching.
func (w *Watcher) Stop() {
	close(w.done)
}
