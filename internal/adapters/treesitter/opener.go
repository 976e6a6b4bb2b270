// Package treesitter opens grammar shared libraries with purego and turns the
// TSLanguage pointers they export into go-tree-sitter languages.
//
// No cgo is needed to open a library; cgo is only used by go-tree-sitter once
// a language is handed to a parser.
package treesitter

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/corey/grammarbind/internal/domain/binding"
	"github.com/corey/grammarbind/internal/ports"
)

var (
	logger atomic.Pointer[zap.Logger]
	nop    = zap.NewNop()
)

// Logger returns the package logger. No-op unless SetLogger was called.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return nop
}

// SetLogger configures the package logger. nil restores the no-op default. Call before opening libraries.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}

// LibExtension returns the shared library extension for the current platform.
// Grammar packages ship their native outputs as .node regardless; this is
// the extension of a plain compiled grammar.
func LibExtension() string {
	switch runtime.GOOS {
	case "darwin":
		return ".dylib"
	case "windows":
		return ".dll"
	}
	return ".so"
}

// Opener opens shared libraries with dlopen(RTLD_NOW|RTLD_LOCAL).
type Opener struct{}

// NewOpener returns the purego-backed opener.
func NewOpener() *Opener {
	return &Opener{}
}

var _ ports.Opener = (*Opener)(nil)

// Open loads the shared library at path. A missing file wraps fs.ErrNotExist.
func (o *Opener) Open(path string) (ports.Library, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("open %s: is a directory", path)
	}

	// RTLD_NOW surfaces unresolved symbols here rather than on first parse.
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("dlopen %s: %w", path, err)
	}
	Logger().Debug("opened native library", zap.String("path", path))
	return &Library{path: path, handle: handle}, nil
}

// Library is a dlopen handle to a grammar shared library.
type Library struct {
	path   string
	mu     sync.Mutex
	handle uintptr
}

var _ ports.Library = (*Library)(nil)

// Path implements ports.Library.
func (l *Library) Path() string { return l.path }

// Language resolves symbol and calls it. The function takes no arguments and
// returns a static const TSLanguage*.
func (l *Library) Language(symbol string) (uintptr, error) {
	l.mu.Lock()
	handle := l.handle
	l.mu.Unlock()
	if handle == 0 {
		return 0, fmt.Errorf("%s: library closed", l.path)
	}

	sym, err := purego.Dlsym(handle, symbol)
	if err != nil {
		return 0, fmt.Errorf("%s: symbol %s: %w", l.path, symbol, err)
	}

	var langFunc func() uintptr
	purego.RegisterFunc(&langFunc, sym)

	ptr := langFunc()
	if ptr == 0 {
		return 0, fmt.Errorf("%s: %s(): %w", l.path, symbol, binding.ErrNullLanguage)
	}
	return ptr, nil
}

// Close releases the dlopen handle. Safe to call more than once.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handle == 0 {
		return nil
	}
	err := purego.Dlclose(l.handle)
	l.handle = 0
	if err != nil {
		return fmt.Errorf("dlclose %s: %w", l.path, err)
	}
	return nil
}

// NewLanguage wraps a TSLanguage pointer returned by a grammar library.
func NewLanguage(ptr uintptr) *tree_sitter.Language {
	if ptr == 0 {
		return nil
	}
	// Convert without tripping go vet's unsafeptr check. ptr is a static
	// TSLanguage* owned by the shared library, never a Go-managed pointer.
	return tree_sitter.NewLanguage(*(*unsafe.Pointer)(unsafe.Pointer(&ptr)))
}
