package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the config file whenever it changes on disk and hands the
// freshly validated Config to onReload. A reload that fails validation is
// recorded and reported by LastError; nothing logs it, and the previous
// in-memory Config is left untouched — Watcher never calls
// onReload with a config that failed Validate.
//
// Grounded on the teacher's use of fsnotify for hot-reloading on-disk state;
// generalized here from directory watching to a single config file.
type Watcher struct {
	fsw      *fsnotify.Watcher
	path     string
	onReload func(*Config)

	mu      sync.Mutex
	lastErr error

	done chan struct{}
}

// NewWatcher starts watching path's parent directory (required by fsnotify
// to observe editors that replace the file via rename-into-place) and
// begins delivering reloads to onReload on a background goroutine.
func NewWatcher(path string, onReload func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to start config watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	w := &Watcher{fsw: fsw, path: path, onReload: onReload, done: make(chan struct{})}
	go w.run()
	return w, nil
}

// LastError reports the most recent reload failure, if any.
func (w *Watcher) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Close stops the watcher goroutine.
func (w *Watcher) Close() {
	w.fsw.Close()
	<-w.done
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Name != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	w.mu.Lock()
	w.lastErr = err
	w.mu.Unlock()
	if err != nil {
		return
	}
	w.onReload(cfg)
}
