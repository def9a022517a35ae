// Package watcher reports changes to a fixed set of files.
//
// Files are watched through their parent directories, so editors that
// replace a file on save are still seen. Bursts of events are coalesced
// into one callback after the debounce delay.
package watcher

import (
	"errors"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is used when New is given a non-positive delay.
const DefaultDebounce = 100 * time.Millisecond

// ErrNoPaths is returned by New when there is nothing to watch.
var ErrNoPaths = errors.New("no paths to watch")

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger for watch errors.
func WithLogger(l zerolog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// Watcher calls onChange with the sorted paths that changed.
type Watcher struct {
	fsw      *fsnotify.Watcher
	files    map[string]struct{}
	delay    time.Duration
	onChange func([]string)
	logger   zerolog.Logger

	mu      sync.Mutex
	changed map[string]struct{}
	timer   *time.Timer
	closed  bool

	closeCh chan struct{}
	wg      sync.WaitGroup
}

// New starts watching paths.
func New(paths []string, debounce time.Duration, onChange func(changed []string), opts ...Option) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, ErrNoPaths
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		files:    make(map[string]struct{}, len(paths)),
		delay:    debounce,
		onChange: onChange,
		logger:   zerolog.Nop(),
		changed:  make(map[string]struct{}),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	w.wg.Add(1)
	go w.processLoop()
	return w, nil
}

// Files returns the watched files.
func (w *Watcher) Files() []string {
	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	slices.Sort(files)
	return files
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("file watch error")
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) &&
		!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return
	}
	path := filepath.Clean(ev.Name)
	if _, ok := w.files[path]; !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.changed[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.closed || len(w.changed) == 0 {
		w.mu.Unlock()
		return
	}
	changed := make([]string, 0, len(w.changed))
	for p := range w.changed {
		changed = append(changed, p)
	}
	clear(w.changed)
	w.timer = nil
	w.mu.Unlock()

	slices.Sort(changed)
	if w.onChange != nil {
		w.onChange(changed)
	}
}

// Close stops watching. Pending changes are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	close(w.closeCh)
	w.mu.Unlock()

	w.wg.Wait()
	return w.fsw.Close()
}
