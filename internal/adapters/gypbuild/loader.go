// Package gypbuild is the build-aware loader behind the dynamic strategy.
//
// Given a package root it tries, in order: a local build output
// (build/Release, then build/Debug), a compatible file in
// prebuilds/<platform>-<arch>/, and finally compiling the grammar sources
// into build/Release. Outputs it compiled itself are tracked in a build cache
// so a stale build/Release file is rebuilt when the sources change.
package gypbuild

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/corey/grammarbind/internal/domain/binding"
	"github.com/corey/grammarbind/internal/ports"
)

// ErrNoNativeBuild means no step of the chain produced a library.
var ErrNoNativeBuild = errors.New("no native build was found")

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

// SetLogger configures the package logger. nil restores the no-op default.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}

// Sources describes how to compile the grammar when nothing prebuilt exists.
// Paths are relative to the package root.
type Sources struct {
	Files      []string // first file is required, the rest are used if present
	IncludeDir string
	Output     string
}

// DefaultSources matches the layout of a generated tree-sitter grammar.
var DefaultSources = Sources{
	Files:      []string{"src/parser.c", "src/scanner.c"},
	IncludeDir: "src",
	Output:     "build/Release/tree_sitter_yaml_binding.node",
}

// CacheOpener opens the build cache. The loader calls it only when a local
// build output exists or a compile runs, and closes the cache right after.
type CacheOpener func() (ports.BuildCache, error)

// Loader implements ports.BuildLoader.
type Loader struct {
	opener    ports.Opener
	compiler  Compiler
	openCache CacheOpener // optional
	sources   Sources

	// PrebuildsOnly skips build/Release and build/Debug (PREBUILDS_ONLY).
	PrebuildsOnly bool
	// Libc is matched against libc tags in prebuild names.
	Libc string
}

var _ ports.BuildLoader = (*Loader)(nil)

// NewLoader creates a build-aware loader. openCache may be nil, in which case
// local build outputs are never considered stale.
func NewLoader(opener ports.Opener, compiler Compiler, openCache CacheOpener, sources Sources) *Loader {
	if len(sources.Files) == 0 {
		sources = DefaultSources
	}
	return &Loader{
		opener:        opener,
		compiler:      compiler,
		openCache:     openCache,
		sources:       sources,
		PrebuildsOnly: os.Getenv("PREBUILDS_ONLY") != "",
		Libc:          DetectLibc(),
	}
}

// Load resolves the native library under root and opens it.
func (l *Loader) Load(root string, env binding.Env) (ports.Library, error) {
	path, err := l.Resolve(root, env)
	if err != nil {
		return nil, err
	}
	return l.opener.Open(path)
}

// Resolve runs the fallback chain and returns the path to open.
func (l *Loader) Resolve(root string, env binding.Env) (string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	log := Logger().With(zap.String("root", root))

	if !l.PrebuildsOnly {
		for _, dir := range []string{"Release", "Debug"} {
			path := firstNative(filepath.Join(root, "build", dir))
			if path == "" {
				continue
			}
			if l.stale(root, path) {
				log.Info("native build is stale, rebuilding", zap.String("path", path))
				return l.build(root, path)
			}
			log.Debug("using local build", zap.String("path", path))
			return path, nil
		}
	}

	target := Target{Runtime: string(binding.RuntimeHost), Arch: env.Arch, Libc: l.Libc}
	prebuildDir := filepath.Join(root, "prebuilds", env.PlatformArch())
	if names := listDir(prebuildDir); len(names) > 0 {
		if ranked := rankPrebuilds(names, target); len(ranked) > 0 {
			path := filepath.Join(prebuildDir, ranked[0].File)
			log.Debug("using prebuild", zap.String("path", path), zap.Int("candidates", len(ranked)))
			return path, nil
		}
	}

	if _, err := os.Stat(Under(root, l.sources.Files[0])); err == nil {
		log.Info("no prebuilt native library, compiling from source")
		return l.build(root, Under(root, l.sources.Output))
	}

	return "", fmt.Errorf("%w for platform=%s arch=%s runtime=%s libc=%s\n    loaded from: %s",
		ErrNoNativeBuild, env.Platform, env.Arch, target.Runtime, l.Libc, root)
}

// Rebuild compiles the sources under root unconditionally and returns the output path.
func (l *Loader) Rebuild(root string) (string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	return l.build(root, Under(root, l.sources.Output))
}

// build compiles into out and records the source digest.
func (l *Loader) build(root, out string) (string, error) {
	if l.compiler == nil {
		return "", fmt.Errorf("build %s: no compiler configured", out)
	}
	srcs := l.existingSources(root)
	if len(srcs) == 0 {
		return "", fmt.Errorf("build %s: %s not found", out, l.sources.Files[0])
	}

	start := time.Now()
	if err := l.compiler.Compile(out, Under(root, l.sources.IncludeDir), srcs); err != nil {
		return "", fmt.Errorf("build %s: %w", out, err)
	}
	Logger().Info("compiled native library",
		zap.String("output", out),
		zap.Strings("sources", srcs),
		zap.Duration("took", time.Since(start)))

	l.withCache(func(cache ports.BuildCache) {
		digest, err := SourceDigest(srcs)
		if err == nil {
			err = cache.Record(&ports.BuildRecord{
				Output:       out,
				SourceDigest: digest,
				Compiler:     l.compiler.Name(),
				BuiltAt:      time.Now().UTC(),
			})
		}
		if err != nil {
			Logger().Warn("build cache not updated", zap.String("output", out), zap.Error(err))
		}
	})
	return out, nil
}

// withCache runs fn with an open build cache. A cache that cannot be opened
// (read-only package, lock held elsewhere) is skipped with a warning.
func (l *Loader) withCache(fn func(ports.BuildCache)) {
	if l.openCache == nil {
		return
	}
	cache, err := l.openCache()
	if err != nil {
		Logger().Warn("build cache unavailable", zap.Error(err))
		return
	}
	defer cache.Close()
	fn(cache)
}

// stale reports whether path was compiled by us from sources that have
// since changed. Outputs we did not build are never stale.
func (l *Loader) stale(root, path string) bool {
	var rec *ports.BuildRecord
	l.withCache(func(cache ports.BuildCache) {
		rec, _ = cache.Lookup(path)
	})
	if rec == nil {
		return false
	}
	srcs := l.existingSources(root)
	if len(srcs) == 0 {
		return false
	}
	digest, err := SourceDigest(srcs)
	if err != nil {
		return false
	}
	return digest != rec.SourceDigest
}

// existingSources returns absolute source paths, or nil if the required first
// source is missing.
func (l *Loader) existingSources(root string) []string {
	var out []string
	for i, f := range l.sources.Files {
		p := Under(root, f)
		if _, err := os.Stat(p); err != nil {
			if i == 0 {
				return nil
			}
			continue
		}
		out = append(out, p)
	}
	return out
}

// Under joins a slash-separated path from a config file onto root.
// Absolute paths are returned unchanged.
func Under(root, p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// firstNative returns the first .node file in dir (sorted), or "".
func firstNative(dir string) string {
	for _, name := range listDir(dir) {
		if filepath.Ext(name) == NativeExt {
			return filepath.Join(dir, name)
		}
	}
	return ""
}

// listDir returns the sorted regular file names in dir. Missing dirs are empty.
func listDir(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}
