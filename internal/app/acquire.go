package app

import (
	"fmt"
	"path/filepath"

	"github.com/corey/grammarbind/internal/domain/binding"
	"github.com/corey/grammarbind/internal/ports"
)

// Acquirer executes an acquisition strategy.
type Acquirer struct {
	opener ports.Opener
	builds ports.BuildLoader
	cfg    Config
}

// NewAcquirer creates an acquirer. opener serves the static strategy, builds
// the dynamic one.
func NewAcquirer(opener ports.Opener, builds ports.BuildLoader, cfg Config) *Acquirer {
	return &Acquirer{opener: opener, builds: builds, cfg: cfg}
}

// Acquire obtains the native library under root with strategy, resolves the
// grammar's language, then tries to attach node-type metadata. Any failure
// before the metadata step is a *binding.ModuleLoadError; metadata problems
// are never reported.
func (a *Acquirer) Acquire(strategy binding.Strategy, env binding.Env, root string) (*Module, error) {
	var (
		lib ports.Library
		err error
	)
	switch s := strategy.(type) {
	case binding.StaticPrebuiltLookup:
		path := under(root, s.Path(env))
		lib, err = a.opener.Open(path)
		if err != nil {
			return nil, &binding.ModuleLoadError{Strategy: s.Kind(), Path: path, Err: err}
		}
	case binding.DynamicNativeBuild:
		lib, err = a.builds.Load(root, env)
		if err != nil {
			return nil, &binding.ModuleLoadError{Strategy: s.Kind(), Err: err}
		}
	default:
		return nil, &binding.ModuleLoadError{Err: fmt.Errorf("unsupported strategy %T", strategy)}
	}

	symbol := a.cfg.SymbolName()
	ptr, err := lib.Language(symbol)
	if err != nil {
		lib.Close()
		return nil, &binding.ModuleLoadError{Strategy: strategy.Kind(), Path: lib.Path(), Err: err}
	}

	mod := &Module{
		Name:     a.cfg.Grammar,
		Path:     lib.Path(),
		Strategy: strategy.Kind(),
		Symbol:   symbol,
		lib:      lib,
		ptr:      ptr,
	}
	attachNodeTypes(mod, a.nodeTypesPath(root))
	return mod, nil
}

func (a *Acquirer) nodeTypesPath(root string) string {
	return under(root, a.cfg.NodeTypesPath)
}

// attachNodeTypes sets mod.NodeTypeInfo when path holds valid metadata and
// leaves mod untouched otherwise.
func attachNodeTypes(mod *Module, path string) {
	if nt, ok := binding.ReadNodeTypes(path); ok {
		mod.NodeTypeInfo = nt
	}
}

// rootPath is root made absolute when possible, for cache keys and logs.
func rootPath(root string) string {
	if abs, err := filepath.Abs(root); err == nil {
		return abs
	}
	return root
}
