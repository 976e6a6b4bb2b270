package app

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/corey/grammarbind/internal/adapters/treesitter"
	"github.com/corey/grammarbind/internal/domain/binding"
	"github.com/corey/grammarbind/internal/ports"
)

// Module is a loaded grammar library. Once cached it lives for the rest of
// the process; callers share it and must not Close it while others hold it.
type Module struct {
	Name     string       // grammar name, e.g. "yaml"
	Path     string       // library file that was opened
	Strategy binding.Kind // how it was acquired
	Symbol   string       // language function that was called

	// NodeTypeInfo is the grammar's node-types.json, or nil when it could not
	// be read. Its absence never affects the native entry points.
	NodeTypeInfo binding.NodeTypes

	lib ports.Library
	ptr uintptr

	langOnce sync.Once
	lang     *tree_sitter.Language
}

// LanguagePointer returns the raw TSLanguage pointer exported by the library.
func (m *Module) LanguagePointer() uintptr { return m.ptr }

// Language returns the go-tree-sitter handle for the grammar.
func (m *Module) Language() *tree_sitter.Language {
	m.langOnce.Do(func() {
		m.lang = treesitter.NewLanguage(m.ptr)
	})
	return m.lang
}

// NewParser returns a parser set to this grammar. The caller closes it.
func (m *Module) NewParser() (*tree_sitter.Parser, error) {
	p := tree_sitter.NewParser()
	if err := p.SetLanguage(m.Language()); err != nil {
		p.Close()
		return nil, fmt.Errorf("%s: set language: %w", m.Name, err)
	}
	return p, nil
}

// HasNodeTypeInfo reports whether metadata was attached.
func (m *Module) HasNodeTypeInfo() bool { return m.NodeTypeInfo != nil }

// Close releases the native library.
func (m *Module) Close() error {
	if m.lib == nil {
		return nil
	}
	return m.lib.Close()
}
