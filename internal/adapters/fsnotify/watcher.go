// Package fsnotify implements the ports.Watcher interface using github.com/fsnotify/fsnotify.
// It watches a single file through its parent directory, so saves that replace the
// file by rename are seen, and debounces bursts (editors often write several times per save).
package fsnotify

import (
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must stay quiet before onChange fires.
const DefaultDebounce = 50 * time.Millisecond

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw       *fsnotify.Watcher
	done     chan struct{}
	debounce time.Duration
	log      *slog.Logger

	mu      sync.Mutex
	stopped bool
	watched bool
	timer   *time.Timer
}

// NewWatcher creates a new file watcher.
func NewWatcher(log *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		fw:       fw,
		done:     make(chan struct{}),
		debounce: DefaultDebounce,
		log:      log,
	}, nil
}

// Watch starts monitoring path. onChange fires once per burst of writes,
// creates or renames onto path, after the file has been quiet for the debounce window.
// Removing the file does not fire: there is nothing to reload.
func (w *Watcher) Watch(path string, onChange func(filePath string)) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return errors.New("fsnotify: watcher stopped")
	}
	if w.watched {
		w.mu.Unlock()
		return errors.New("fsnotify: already watching")
	}
	w.watched = true
	w.mu.Unlock()

	if err := w.fw.Add(filepath.Dir(absPath)); err != nil {
		return err
	}

	fire := func() {
		select {
		case <-w.done:
			return
		default:
		}
		onChange(absPath)
	}

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != absPath {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				w.mu.Lock()
				if w.timer == nil {
					w.timer = time.AfterFunc(w.debounce, fire)
				} else {
					w.timer.Reset(w.debounce)
				}
				w.mu.Unlock()

			case err, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				w.log.Warn("fsnotify: watch error", slog.String("path", absPath), slog.Any("error", err))

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// Stop ends monitoring and releases all resources.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.done)
	return w.fw.Close()
}
