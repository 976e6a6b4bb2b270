// Package fsnotify implements ports.Watcher using github.com/fsnotify/fsnotify.
// It recursively watches a grammar source directory, reports only grammar
// source files (C sources, headers, node-types.json), and debounces rapid
// events: a path is reported once it has been quiet for debounceInterval.
package fsnotify

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/corey/grammarbind/internal/ports"
)

// Directories never descended into.
var ignoreDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"build":        true,
	"prebuilds":    true,
	"target":       true,
}

// Only these extensions are reported.
var sourceExts = map[string]bool{
	".c":    true,
	".cc":   true,
	".h":    true,
	".json": true,
}

const debounceInterval = 50 * time.Millisecond

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw   *fsnotify.Watcher
	done chan struct{}

	mu      sync.Mutex
	stopped bool
	pending map[string]*time.Timer
}

var _ ports.Watcher = (*Watcher)(nil)

// NewWatcher creates a new file system watcher.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:      fw,
		done:    make(chan struct{}),
		pending: make(map[string]*time.Timer),
	}, nil
}

// Watch starts monitoring dir recursively.
// onChange is called with the absolute path of each changed source file.
func (w *Watcher) Watch(dir string, onChange func(filePath string)) error {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if _, err := os.Stat(absPath); err != nil {
		return err
	}

	err = filepath.Walk(absPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if info.IsDir() {
			if ignoreDirs[info.Name()] && path != absPath {
				return filepath.SkipDir
			}
			return w.fw.Add(path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				path := event.Name

				// New subdirectories join the watch list.
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(path); err == nil && info.IsDir() {
						if !ignoreDirs[info.Name()] {
							w.fw.Add(path)
						}
						continue
					}
				}

				if !isSourcePath(absPath, path) {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					w.schedule(path, onChange)
				}

			case _, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				// fsnotify recovers on its own; nothing to do.

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
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	close(w.done)
	return w.fw.Close()
}

// schedule reports path after it has been quiet for debounceInterval. Each
// new event for the same path restarts the wait, so the last write wins.
func (w *Watcher) schedule(path string, onChange func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(debounceInterval, func() {
		w.mu.Lock()
		current := w.pending[path] == t
		if current {
			delete(w.pending, path)
		}
		fire := current && !w.stopped
		w.mu.Unlock()
		if fire {
			onChange(path)
		}
	})
	w.pending[path] = t
}

// isSourcePath reports whether path is a grammar source that is not inside an
// ignored directory below root. Directories above root are not checked.
func isSourcePath(root, path string) bool {
	if !sourceExts[strings.ToLower(filepath.Ext(path))] {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	for _, part := range strings.Split(filepath.Dir(rel), string(filepath.Separator)) {
		if ignoreDirs[part] {
			return false
		}
	}
	return true
}
