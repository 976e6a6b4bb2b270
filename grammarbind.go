// Package grammarbind loads a tree-sitter grammar's native library for the
// running environment and attaches its node-type metadata when available.
//
// Bundled builds (stamped with -ldflags -X) load exactly one prebuilt file
// from prebuilds/<platform>-<arch>/. Everything else goes through the
// build-aware loader: build/Release, build/Debug, a compatible prebuild, and
// finally compiling src/parser.c with the system C compiler.
//
// Loads are cached per package root for the life of the process:
//
//	mod, err := grammarbind.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	parser, err := mod.NewParser()
package grammarbind

import (
	"path/filepath"

	"github.com/corey/grammarbind/internal/app"
	"github.com/corey/grammarbind/internal/domain/binding"
)

// Module is a loaded grammar. See NodeTypeInfo for the optional metadata.
type Module = app.Module

// ModuleLoadError is returned when the native library cannot be loaded.
type ModuleLoadError = binding.ModuleLoadError

// NodeTypes is the parsed node-types.json taxonomy.
type NodeTypes = binding.NodeTypes

var modules = app.NewCache()

// Load returns the module for the default package root ($GRAMMARBIND_ROOT,
// or two directories above the executable).
func Load() (*Module, error) {
	return LoadFrom(app.DefaultRoot())
}

// LoadFrom returns the module for the package at root. The first call for a
// root does the work; later calls return the same *Module.
func LoadFrom(root string) (*Module, error) {
	return modules.Get(root, load)
}

func load(root string) (*Module, error) {
	cfg, err := app.LoadConfig(filepath.Join(root, app.ConfigFile))
	if err != nil {
		return nil, err
	}
	return app.New(cfg).Load(root)
}
