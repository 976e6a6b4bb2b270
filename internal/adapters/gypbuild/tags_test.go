package gypbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		file     string
		expected Tags
	}{
		{"pkg.node", Tags{File: "pkg.node"}},
		{"@tree-sitter-grammars+tree-sitter-yaml.node", Tags{File: "@tree-sitter-grammars+tree-sitter-yaml.node"}},
		{"pkg.napi.node", Tags{File: "pkg.napi.node", Napi: true, Specificity: 1}},
		{"pkg.napi.glibc.node", Tags{File: "pkg.napi.glibc.node", Napi: true, Libc: "glibc", Specificity: 2}},
		{"node.abi115.node", Tags{File: "node.abi115.node", Runtime: "node", ABI: "115", Specificity: 2}},
		{"pkg.armv7.napi.node", Tags{File: "pkg.armv7.napi.node", Armv: "7", Napi: true, Specificity: 2}},
		{"pkg.uv1.go.node", Tags{File: "pkg.uv1.go.node", UV: "1", Runtime: "go", Specificity: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseTags(tt.file))
		})
	}
}

func TestTags_Matches(t *testing.T) {
	x64 := Target{Runtime: "go", Arch: "x64", Libc: "glibc"}
	tests := []struct {
		file  string
		match bool
	}{
		{"pkg.node", true},
		{"pkg.napi.node", true},
		{"pkg.go.node", true},
		{"node.napi.node", true},
		{"pkg.electron.node", false},
		{"node.abi115.node", false},
		{"pkg.napi.musl.node", false},
		{"pkg.napi.glibc.node", true},
		{"pkg.armv7.node", false},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.Equal(t, tt.match, ParseTags(tt.file).Matches(x64))
		})
	}

	arm := Target{Runtime: "go", Arch: "arm"}
	assert.True(t, ParseTags("pkg.armv7.node").Matches(arm))
	assert.True(t, ParseTags("pkg.napi.musl.node").Matches(arm), "unknown libc accepts either")
}

func TestRankPrebuilds(t *testing.T) {
	target := Target{Runtime: "go", Arch: "x64", Libc: "glibc"}
	ranked := rankPrebuilds([]string{
		"README.md",
		"b.node",
		"a.node",
		"pkg.napi.node",
		"pkg.electron.node",
	}, target)

	var files []string
	for _, r := range ranked {
		files = append(files, r.File)
	}
	assert.Equal(t, []string{"pkg.napi.node", "a.node", "b.node"}, files)
}
