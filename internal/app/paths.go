package app

import (
	"os"
	"path/filepath"

	"github.com/corey/grammarbind/internal/adapters/gypbuild"
	"github.com/corey/grammarbind/internal/domain/binding"
)

// RootEnv overrides the package root used by DefaultRoot.
const RootEnv = "GRAMMARBIND_ROOT"

// Paths holds the resolved filesystem layout of one grammar package.
// All fields are absolute once constructed.
type Paths struct {
	Root string

	Config    string // grammarbind.hcl
	NodeTypes string // src/node-types.json

	BuildRelease string // build/Release/
	BuildDebug   string // build/Debug/
	BuildOutput  string // build/Release/<output>.node
	BuildCache   string // build/buildcache.db
	Prebuilds    string // prebuilds/<platform>-<arch>/
	Prebuilt     string // the static strategy's single candidate

	Sources []string
	Include string // C include dir passed to the compiler
}

// NewPaths resolves every location for root under cfg and env.
func NewPaths(root string, cfg Config, env binding.Env) *Paths {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	srcs := make([]string, len(cfg.Build.Sources))
	for i, s := range cfg.Build.Sources {
		srcs[i] = under(root, s)
	}
	return &Paths{
		Root: root,

		Config:    filepath.Join(root, ConfigFile),
		NodeTypes: under(root, cfg.NodeTypesPath),

		BuildRelease: filepath.Join(root, "build", "Release"),
		BuildDebug:   filepath.Join(root, "build", "Debug"),
		BuildOutput:  under(root, cfg.Build.Output),
		BuildCache:   under(root, cfg.Build.Cache),
		Prebuilds:    filepath.Join(root, "prebuilds", env.PlatformArch()),
		Prebuilt:     under(root, cfg.Template().Expand(env)),

		Sources: srcs,
		Include: under(root, cfg.Build.Include),
	}
}

// under joins a slash-separated relative path onto root. Absolute paths are
// kept, the same rule the build loader applies.
func under(root, p string) string {
	return gypbuild.Under(root, p)
}

// DefaultRoot returns $GRAMMARBIND_ROOT, or the directory two levels above
// the running executable (<root>/bin/<platform>-<arch>/grammarbind).
func DefaultRoot() string {
	if r := os.Getenv(RootEnv); r != "" {
		return r
	}
	exe, err := os.Executable()
	if err != nil {
		dir, _ := os.Getwd()
		return dir
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(filepath.Dir(filepath.Dir(exe)))
}
