// Package watcher watches trusted exports scripts for changes with
// debouncing, so the watch command can re-validate the override set
// whenever an exports file is edited.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeEvent represents an exports file change
type ChangeEvent struct {
	Path string
	Op   string
	Time time.Time
}

// ChangeHandler handles debounced change events
type ChangeHandler func(events []ChangeEvent)

// ExportsWatcher watches exports files and delivers debounced change
// batches to its handler.
type ExportsWatcher struct {
	watcher  *fsnotify.Watcher
	delay    time.Duration
	handler  ChangeHandler
	watched  map[string]bool
	pending  []ChangeEvent
	timer    *time.Timer
	mutex    sync.Mutex
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a watcher delivering change batches after debounceDelay
// of quiet.
func New(debounceDelay time.Duration, handler ChangeHandler) (*ExportsWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &ExportsWatcher{
		watcher: fsw,
		delay:   debounceDelay,
		handler: handler,
		watched: make(map[string]bool),
		done:    make(chan struct{}),
	}, nil
}

// AddPath watches one exports file. The containing directory is
// registered with fsnotify so editors that replace the file (rename
// over it) are still observed.
func (w *ExportsWatcher) AddPath(path string) error {
	clean := filepath.Clean(path)
	if strings.Contains(clean, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	w.mutex.Lock()
	w.watched[clean] = true
	w.mutex.Unlock()

	return w.watcher.Add(filepath.Dir(clean))
}

// Start processes events until the context is cancelled or Stop is
// called.
func (w *ExportsWatcher) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *ExportsWatcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}

	clean := filepath.Clean(event.Name)

	w.mutex.Lock()
	defer w.mutex.Unlock()

	if !w.watched[clean] {
		return
	}

	w.pending = append(w.pending, ChangeEvent{
		Path: clean,
		Op:   event.Op.String(),
		Time: time.Now(),
	})

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.flush)
}

func (w *ExportsWatcher) flush() {
	w.mutex.Lock()
	events := w.pending
	w.pending = nil
	w.mutex.Unlock()

	if len(events) > 0 && w.handler != nil {
		w.handler(events)
	}
}

// Stop stops the watcher and releases its resources.
func (w *ExportsWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		w.mutex.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mutex.Unlock()
		err = w.watcher.Close()
	})
	return err
}
