package tui

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last write before
// reporting a change.
const DefaultDebounce = 150 * time.Millisecond

// Watcher reports changes to a single scene file.
//
// It watches the parent directory rather than the file, since editors
// commonly save by writing a temporary file and renaming it over the
// original, which drops a watch on the file itself.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	logger   *log.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher starts watching path. A debounce of zero uses DefaultDebounce.
func NewWatcher(path string, debounce time.Duration, logger *log.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{watcher: fw, path: abs, debounce: debounce, logger: logger}, nil
}

// Run delivers changes until ctx is done or the watcher is closed. onChange
// is called once per burst of writes, after the burst settles; onError is
// called for watcher errors. onChange runs on a timer goroutine, so callers
// hand the event to their own loop (tea.Program.Send for the panel).
func (w *Watcher) Run(ctx context.Context, onChange func(), onError func(error)) {
	defer w.stop()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			w.logger.Debug("fsnotify event", "file", event.Name, "op", event.Op)
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.schedule(onChange)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if onError != nil {
				onError(err)
			}
		case <-ctx.Done():
			w.watcher.Close()
			return
		}
	}
}

// schedule restarts the debounce timer, so only the last write of a burst
// fires.
func (w *Watcher) schedule(onChange func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, onChange)
}

func (w *Watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
