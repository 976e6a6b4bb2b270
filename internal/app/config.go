package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/corey/grammarbind/internal/adapters/gypbuild"
	"github.com/corey/grammarbind/internal/domain/binding"
)

// ConfigFile is the optional per-package config, read from the package root.
const ConfigFile = "grammarbind.hcl"

// Config describes one grammar package. Every attribute is optional in the
// HCL file; Defaults fills in whatever is left empty.
//
//	grammar           = "yaml"
//	prebuilt_template = "prebuilds/{platform}-{arch}/@tree-sitter-grammars+tree-sitter-yaml.node"
//	node_types        = "src/node-types.json"
//
//	build {
//	  sources  = ["src/parser.c", "src/scanner.c"]
//	  output   = "build/Release/tree_sitter_yaml_binding.node"
//	  compiler = "cc"
//	  cache    = "build/buildcache.db"
//	}
type Config struct {
	Grammar          string       `hcl:"grammar,optional"`
	Symbol           string       `hcl:"symbol,optional"`
	PrebuiltTemplate string       `hcl:"prebuilt_template,optional"`
	NodeTypesPath    string       `hcl:"node_types,optional"`
	Build            *BuildConfig `hcl:"build,block"`
}

// BuildConfig controls the compile-from-source step of the build loader.
type BuildConfig struct {
	Sources  []string `hcl:"sources,optional"`
	Include  string   `hcl:"include,optional"`
	Output   string   `hcl:"output,optional"`
	Compiler string   `hcl:"compiler,optional"` // empty: $CC, then cc
	Cache    string   `hcl:"cache,optional"`
}

// DefaultConfig returns the configuration for tree-sitter-yaml.
func DefaultConfig() Config {
	var c Config
	c.Defaults()
	return c
}

// Defaults fills empty fields in place.
func (c *Config) Defaults() {
	if c.Grammar == "" {
		c.Grammar = "yaml"
	}
	if c.PrebuiltTemplate == "" {
		c.PrebuiltTemplate = string(binding.DefaultPrebuiltTemplate)
	}
	if c.NodeTypesPath == "" {
		c.NodeTypesPath = "src/node-types.json"
	}
	if c.Build == nil {
		c.Build = &BuildConfig{}
	}
	if len(c.Build.Sources) == 0 {
		c.Build.Sources = append([]string(nil), gypbuild.DefaultSources.Files...)
	}
	if c.Build.Include == "" {
		c.Build.Include = gypbuild.DefaultSources.IncludeDir
	}
	if c.Build.Output == "" {
		c.Build.Output = "build/Release/tree_sitter_" + c.Grammar + "_binding.node"
	}
	if c.Build.Cache == "" {
		c.Build.Cache = "build/buildcache.db"
	}
}

// SymbolName is the exported language function to call.
func (c Config) SymbolName() string {
	if c.Symbol != "" {
		return c.Symbol
	}
	return binding.CSymbolName(c.Grammar)
}

// Template returns the prebuilt path template used by the static strategy.
func (c Config) Template() binding.PathTemplate {
	return binding.PathTemplate(c.PrebuiltTemplate)
}

// Sources converts the build block for the build loader.
func (c Config) Sources() gypbuild.Sources {
	return gypbuild.Sources{
		Files:      c.Build.Sources,
		IncludeDir: c.Build.Include,
		Output:     c.Build.Output,
	}
}

// LoadConfig reads an HCL config file. A missing file is not an error: the
// defaults are returned.
func LoadConfig(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("parse config %s: %s", path, diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("decode config %s: %s", path, diags.Error())
	}
	cfg.Defaults()
	return cfg, nil
}
