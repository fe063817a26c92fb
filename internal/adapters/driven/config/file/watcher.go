package file

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/quarrylabs/hearth/internal/logger"
)

// debounceDelay coalesces the burst of events an editor save produces.
const debounceDelay = 200 * time.Millisecond

// Watcher reloads the config file on change and hands the parsed
// result to a callback. Reload errors are logged and skipped; the
// previous configuration stays in effect.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	done    chan struct{}
}

// Watch starts watching the config file at path. onChange runs on the
// watcher goroutine after each successful reload.
func Watch(path string, onChange func(Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	// Watch the directory, not the file: editors typically replace the
	// file by rename, which drops a direct file watch.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching config directory: %w", err)
	}

	w := &Watcher{
		watcher: fsw,
		path:    path,
		done:    make(chan struct{}),
	}
	go w.run(onChange)
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) run(onChange func(Config)) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceDelay)
				timerC = timer.C
			} else {
				timer.Reset(debounceDelay)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			cfg, _, err := Load(filepath.Dir(w.path))
			if err != nil {
				logger.Warn("Config reload failed: %v", err)
				continue
			}
			logger.Info("Config reloaded from %s", w.path)
			onChange(cfg)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Config watcher error: %v", err)
		}
	}
}
