// Package watch re-runs a build when source files in a directory change.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/projcpp/projcpp/internal/log"
)

var logger = log.Named("watch")

// Debounce is the quiet period after the last change before a rebuild.
const Debounce = 600 * time.Millisecond

// SourceExtensions are the file types that trigger a rebuild by default.
var SourceExtensions = []string{".c", ".cpp", ".cc", ".cxx", ".c++", ".h", ".hpp", ".hh", ".hxx"}

// Watcher watches one directory for source changes.
type Watcher struct {
	Dir        string
	Extensions []string
	Debounce   time.Duration

	mu      sync.Mutex
	started bool
	watcher *fsnotify.Watcher
	events  chan struct{}
	done    chan struct{}
}

// New returns a Watcher for dir using SourceExtensions and Debounce.
func New(dir string) *Watcher {
	return &Watcher{Dir: dir, Extensions: SourceExtensions, Debounce: Debounce}
}

// Start begins watching. Calling Start twice is a no-op.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}

	info, err := os.Stat(w.Dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New(w.Dir + " is not a directory")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(w.Dir); err != nil {
		_ = fw.Close()
		return err
	}

	w.watcher = fw
	w.events = make(chan struct{}, 1)
	w.done = make(chan struct{})
	w.started = true
	go w.run()
	logger.Printf("watching %s", w.Dir)
	return nil
}

// Stop stops watching.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	close(w.done)
	w.started = false
	_ = w.watcher.Close()
}

// Events delivers one coalesced signal per burst of relevant changes.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Relevant reports whether a change to path should trigger a rebuild.
func (w *Watcher) Relevant(path string) bool {
	rel, err := filepath.Rel(w.Dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	first := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
	if first == "bin" {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range w.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

func (w *Watcher) signal() {
	select {
	case <-w.done:
		return
	default:
	}
	select {
	case w.events <- struct{}{}:
	default:
	}
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !w.Relevant(event.Name) {
				continue
			}
			logger.Printf("change: %s %s", event.Op, event.Name)
			w.signal()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Printf("watcher error: %v", err)
		}
	}
}

// Loop calls fn after each debounced burst of changes until ctx is done.
// Calls never overlap; errors from fn are passed to onError and the loop
// continues.
func (w *Watcher) Loop(ctx context.Context, fn func(context.Context) error, onError func(error)) error {
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	delay := w.Debounce
	if delay <= 0 {
		delay = Debounce
	}
	timer := time.NewTimer(delay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.Events():
			timer.Reset(delay)
		case <-timer.C:
			if err := fn(ctx); err != nil && onError != nil {
				onError(err)
			}
		}
	}
}
