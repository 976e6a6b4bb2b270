package gypbuild

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/corey/grammarbind/internal/ports"
)

type fakeLibrary struct{ path string }

func (f *fakeLibrary) Path() string                     { return f.path }
func (f *fakeLibrary) Language(string) (uintptr, error) { return 1, nil }
func (f *fakeLibrary) Close() error                     { return nil }

type fakeOpener struct{ opened []string }

func (o *fakeOpener) Open(path string) (ports.Library, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	o.opened = append(o.opened, path)
	return &fakeLibrary{path: path}, nil
}

// fakeCompiler writes a placeholder output instead of invoking cc.
type fakeCompiler struct {
	calls []string
	fail  error
}

func (c *fakeCompiler) Name() string { return "fakecc" }

func (c *fakeCompiler) Compile(out, includeDir string, sources []string) error {
	c.calls = append(c.calls, out)
	if c.fail != nil {
		return c.fail
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	return os.WriteFile(out, []byte("compiled"), 0o644)
}

type memCache struct {
	mu   sync.Mutex
	recs map[string]*ports.BuildRecord
}

func newMemCache() *memCache { return &memCache{recs: make(map[string]*ports.BuildRecord)} }

func (m *memCache) Record(rec *ports.BuildRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.recs[rec.Output] = &cp
	return nil
}

func (m *memCache) Lookup(output string) (*ports.BuildRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recs[output], nil
}

func (m *memCache) Forget(output string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.recs, output)
	return nil
}

func (m *memCache) Close() error { return nil }
