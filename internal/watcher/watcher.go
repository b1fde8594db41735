package watcher

import (
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Dicklesworthstone/swarmdash/internal/swarm"
)

// Watcher fires a callback when any watched swarm state file changes. It is
// a refresh hint, never a data source: the dashboard still re-reads
// everything on each collection pass.
type Watcher struct {
	fs        *fsnotify.Watcher
	debouncer *Debouncer
	onChange  func()

	mu     sync.Mutex
	closed bool
}

// New starts watching the state files that change when the swarm makes
// progress: state.json, the kanban board, and the inbox directory. Missing
// paths are skipped; the orchestrator may not have created them yet.
func New(p swarm.Paths, onChange func()) (*Watcher, error) {
	return newWith(p, onChange, DefaultDebounceDuration)
}

func newWith(p swarm.Paths, onChange func(), debounce time.Duration) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fs:        fs,
		debouncer: NewDebouncer(debounce),
		onChange:  onChange,
	}

	for _, path := range []string{
		p.State(),
		p.Board(),
		p.InboxDir(),
		p.Root,
	} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		// Best effort; a path that cannot be watched just won't hint.
		_ = fs.Add(path)
	}

	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case _, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.debouncer.Trigger(w.fire)
		case _, ok := <-w.fs.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) fire() {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if !closed && w.onChange != nil {
		w.onChange()
	}
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	w.debouncer.Cancel()
	return w.fs.Close()
}
