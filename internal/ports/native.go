// Package ports defines the interfaces (contracts) that adapters must implement.
// The app package depends only on these interfaces; purego, bbolt and fsnotify
// stay behind them in internal/adapters.
package ports

import "github.com/corey/grammarbind/internal/domain/binding"

// Library is an opened grammar shared library.
type Library interface {
	// Path is the file the library was opened from.
	Path() string

	// Language calls the exported language function named symbol and returns
	// the TSLanguage pointer it yields. A missing symbol or a NULL result is
	// an error (binding.ErrNullLanguage for the latter).
	Language(symbol string) (uintptr, error)

	// Close releases the handle. Pointers obtained from Language are invalid
	// afterwards.
	Close() error
}

// Opener performs a direct load of one shared library file. No search, no
// fallback: a missing file is an error wrapping fs.ErrNotExist.
type Opener interface {
	Open(path string) (Library, error)
}

// BuildLoader is the build-aware loader used by the dynamic strategy. It owns
// its whole fallback chain (local build output, prebuilds, compile from
// source) and returns the first library it can open under root.
type BuildLoader interface {
	Load(root string, env binding.Env) (Library, error)
}
