package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corey/grammarbind/internal/domain/binding"
	"github.com/corey/grammarbind/internal/ports"
)

// fakeLibrary stands in for a dlopen handle; exports maps symbols to the
// language pointers they return.
type fakeLibrary struct {
	path    string
	exports map[string]uintptr
	closed  bool
}

func (f *fakeLibrary) Path() string { return f.path }

func (f *fakeLibrary) Language(symbol string) (uintptr, error) {
	ptr, ok := f.exports[symbol]
	if !ok {
		return 0, fmt.Errorf("%s: symbol %s: undefined symbol", f.path, symbol)
	}
	if ptr == 0 {
		return 0, binding.ErrNullLanguage
	}
	return ptr, nil
}

func (f *fakeLibrary) Close() error {
	f.closed = true
	return nil
}

// fakeOpener opens any existing file as a library exporting exports.
type fakeOpener struct {
	exports map[string]uintptr
	opened  []*fakeLibrary
}

func (o *fakeOpener) Open(path string) (ports.Library, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	lib := &fakeLibrary{path: path, exports: o.exports}
	o.opened = append(o.opened, lib)
	return lib, nil
}

// fakeBuilds plays the build-aware loader.
type fakeBuilds struct {
	lib   *fakeLibrary
	err   error
	calls []string
}

func (b *fakeBuilds) Load(root string, env binding.Env) (ports.Library, error) {
	b.calls = append(b.calls, root)
	if b.err != nil {
		return nil, b.err
	}
	return b.lib, nil
}

var errBuildFailed = errors.New("no native build was found for platform=linux arch=x64")

var (
	bundledLinuxX64 = binding.Env{Platform: "linux", Arch: "x64",
		Versions: map[string]string{"go": "go1.25.6", binding.BundleVersionKey: "1.0.0"}}
	hostLinuxX64 = binding.Env{Platform: "linux", Arch: "x64",
		Versions: map[string]string{"go": "go1.25.6"}}
)

// fixtureExports are the entry points of the fixture library.
var fixtureExports = map[string]uintptr{"tree_sitter_yaml": 0xdead0}

func testConfig() Config {
	cfg := Config{PrebuiltTemplate: "prebuilds/{platform}-{arch}/pkg.node"}
	cfg.Defaults()
	return cfg
}

// writeFixture creates root/rel with content.
func writeFixture(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

const fixtureNodeTypes = `[
  {"type": "stream", "named": true, "root": true, "fields": {},
   "children": {"multiple": true, "required": false, "types": [{"type": "document", "named": true}]}},
  {"type": "document", "named": true, "fields": {}},
  {"type": "---", "named": false}
]`
