// Package app wires the domain logic to the adapters. It owns the load
// sequence (detect env, select strategy, acquire, attach metadata) and the
// process-wide module cache.
package app

import (
	"go.uber.org/zap"

	"github.com/corey/grammarbind/internal/adapters/treesitter"
	"github.com/corey/grammarbind/internal/domain/binding"
)

// Binding runs the load sequence for one grammar configuration.
type Binding struct {
	cfg      Config
	acquirer *Acquirer
	builds   *nativeBuilds

	detect         func() binding.Env
	selectStrategy func(binding.Env, binding.PathTemplate) binding.Strategy
}

// New creates a Binding backed by purego and the build-aware loader.
func New(cfg Config) *Binding {
	cfg.Defaults()
	opener := treesitter.NewOpener()
	builds := &nativeBuilds{cfg: cfg, opener: opener}
	return &Binding{
		cfg:            cfg,
		acquirer:       NewAcquirer(opener, builds, cfg),
		builds:         builds,
		detect:         binding.DetectEnv,
		selectStrategy: binding.SelectStrategy,
	}
}

// Config returns the configuration after defaults.
func (b *Binding) Config() Config { return b.cfg }

// Load runs Start → StrategySelected → Acquired → MetadataAttempted → Done.
// It is not cached; use a Cache for load-once semantics.
func (b *Binding) Load(root string) (*Module, error) {
	env := b.detect()
	strategy := b.selectStrategy(env, b.cfg.Template())

	log := Logger().With(zap.String("root", rootPath(root)), zap.String("strategy", string(strategy.Kind())))
	log.Debug("strategy selected",
		zap.String("runtime", string(env.Runtime())),
		zap.String("platform", env.PlatformArch()))

	mod, err := b.acquirer.Acquire(strategy, env, root)
	if err != nil {
		return nil, err
	}
	log.Debug("native module loaded",
		zap.String("path", mod.Path),
		zap.Bool("node_types", mod.HasNodeTypeInfo()))
	return mod, nil
}

// Resolution describes what a load would do, without loading anything.
type Resolution struct {
	Env      binding.Env
	Strategy binding.Strategy
	Paths    *Paths
}

// Resolve reports the env, strategy and relevant paths for root.
func (b *Binding) Resolve(root string) Resolution {
	env := b.detect()
	return Resolution{
		Env:      env,
		Strategy: b.selectStrategy(env, b.cfg.Template()),
		Paths:    NewPaths(root, b.cfg, env),
	}
}

// Rebuild compiles the grammar from source into the configured build output.
func (b *Binding) Rebuild(root string) (string, error) {
	return b.builds.Rebuild(root)
}
