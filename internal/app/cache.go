package app

import (
	"errors"
	"sync"
)

// LoadFunc loads the module for a package root.
type LoadFunc func(root string) (*Module, error)

// Cache holds at most one Module per package root. The first Get for a root
// runs the load; later calls return the same *Module without loading again.
// Failed loads are not stored, so a later Get retries.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

// cacheEntry is one root's load. done is closed once mod and err are set.
type cacheEntry struct {
	done chan struct{}
	mod  *Module
	err  error
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*cacheEntry)}
}

// Get returns the cached module for root, loading it with load on first use.
// Concurrent first calls for the same root share one load and its result.
// Loads for different roots run independently.
func (c *Cache) Get(root string, load LoadFunc) (*Module, error) {
	key := rootPath(root)

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		<-e.done
		return e.mod, e.err
	}
	e := &cacheEntry{done: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()

	e.mod, e.err = load(root)
	if e.err != nil {
		c.mu.Lock()
		if c.entries[key] == e {
			delete(c.entries, key)
		}
		c.mu.Unlock()
	}
	close(e.done)
	return e.mod, e.err
}

// Len returns the number of loaded modules. Loads still in flight are not counted.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		select {
		case <-e.done:
			if e.err == nil {
				n++
			}
		default:
		}
	}
	return n
}

// Close releases every cached module and empties the cache, waiting for
// loads in flight. Modules handed out earlier must not be used afterwards.
func (c *Cache) Close() error {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()

	var errs []error
	for _, e := range entries {
		<-e.done
		if e.err != nil {
			continue
		}
		if err := e.mod.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
