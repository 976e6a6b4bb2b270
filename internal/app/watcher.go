package app

import (
	"sync"

	"go.uber.org/zap"
)

// Reloader rebuilds and reloads a grammar package whenever its sources change.
// Each reload uses a fresh Cache, and the previous module is closed first:
// dlopen hands back the already-mapped image for a path that is still open.
type Reloader struct {
	root    string
	rebuild func(root string) (string, error)
	load    LoadFunc

	mu      sync.Mutex
	cache   *Cache
	current *Module
}

// NewReloader returns a Reloader for the package at root.
func NewReloader(b *Binding, root string) *Reloader {
	return &Reloader{root: root, rebuild: b.Rebuild, load: b.Load}
}

// Reload closes the current module, compiles the sources and loads the
// result. On failure Current is nil until the next successful reload.
func (r *Reloader) Reload() (*Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cache != nil {
		if err := r.cache.Close(); err != nil {
			Logger().Warn("close previous module", zap.Error(err))
		}
	}
	r.cache = NewCache()
	r.current = nil

	out, err := r.rebuild(r.root)
	if err != nil {
		return nil, err
	}
	Logger().Debug("rebuilt", zap.String("output", out))

	mod, err := r.cache.Get(r.root, r.load)
	if err != nil {
		return nil, err
	}
	r.current = mod
	return mod, nil
}

// Current returns the last successfully loaded module, or nil.
func (r *Reloader) Current() *Module {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Close releases the loaded module.
func (r *Reloader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = nil
	if r.cache == nil {
		return nil
	}
	return r.cache.Close()
}
