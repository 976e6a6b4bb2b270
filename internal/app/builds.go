package app

import (
	"os"
	"path/filepath"

	"github.com/corey/grammarbind/internal/adapters/bbolt"
	"github.com/corey/grammarbind/internal/adapters/gypbuild"
	"github.com/corey/grammarbind/internal/domain/binding"
	"github.com/corey/grammarbind/internal/ports"
)

// nativeBuilds is the ports.BuildLoader used in production. The package's
// build cache is opened per use so the DB lock is not held for the life of
// the process.
type nativeBuilds struct {
	cfg    Config
	opener ports.Opener
}

var _ ports.BuildLoader = (*nativeBuilds)(nil)

func (n *nativeBuilds) Load(root string, env binding.Env) (ports.Library, error) {
	return n.loader(root).Load(root, env)
}

// Rebuild compiles the grammar sources under root, ignoring any existing output.
func (n *nativeBuilds) Rebuild(root string) (string, error) {
	return n.loader(root).Rebuild(root)
}

func (n *nativeBuilds) compiler() gypbuild.Compiler {
	if n.cfg.Build.Compiler != "" {
		return &gypbuild.CCompiler{Command: n.cfg.Build.Compiler}
	}
	return gypbuild.NewCCompiler()
}

// loader builds a gypbuild.Loader for root. The bbolt cache is opened only
// when the loader needs it, so loading a prebuild never writes to the package.
func (n *nativeBuilds) loader(root string) *gypbuild.Loader {
	cachePath := under(root, n.cfg.Build.Cache)
	openCache := func() (ports.BuildCache, error) {
		if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
			return nil, err
		}
		store, err := bbolt.NewStore(cachePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return gypbuild.NewLoader(n.opener, n.compiler(), openCache, n.cfg.Sources())
}
