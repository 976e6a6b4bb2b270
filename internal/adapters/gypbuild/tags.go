package gypbuild

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// NativeExt is the extension every native output carries, whatever the OS.
const NativeExt = ".node"

// Tags are the dot-separated markers in a prebuilt file name, e.g.
// "tree-sitter-yaml.napi.glibc.node" carries napi and libc=glibc.
type Tags struct {
	File        string
	Runtime     string // "node", "electron", "go", ...
	Napi        bool
	ABI         string
	UV          string
	Armv        string
	Libc        string // "glibc" or "musl"
	Specificity int    // number of recognized tags
}

// ParseTags reads the tags out of a prebuilt file name.
func ParseTags(file string) Tags {
	t := Tags{File: file}
	parts := strings.Split(strings.TrimSuffix(file, NativeExt), ".")
	for _, tag := range parts {
		switch {
		case tag == "node" || tag == "electron" || tag == "node-webkit" || tag == "go":
			t.Runtime = tag
		case tag == "napi":
			t.Napi = true
		case strings.HasPrefix(tag, "abi"):
			t.ABI = strings.TrimPrefix(tag, "abi")
		case strings.HasPrefix(tag, "uv"):
			t.UV = strings.TrimPrefix(tag, "uv")
		case strings.HasPrefix(tag, "armv"):
			t.Armv = strings.TrimPrefix(tag, "armv")
		case tag == "glibc" || tag == "musl":
			t.Libc = tag
		default:
			continue
		}
		t.Specificity++
	}
	return t
}

// Target is what a prebuilt must be compatible with.
type Target struct {
	Runtime string // always "go" for us
	Arch    string
	Libc    string // "" off Linux
}

// Matches reports whether a prebuilt with these tags can be loaded by target.
// Node-ABI-specific builds are rejected; N-API builds only depend on the C ABI.
func (t Tags) Matches(target Target) bool {
	if t.Runtime != "" && t.Runtime != target.Runtime && !(t.Runtime == "node" && t.Napi) {
		return false
	}
	if t.ABI != "" && !t.Napi {
		return false
	}
	if t.Armv != "" && target.Arch != "arm" {
		return false
	}
	if t.Libc != "" && target.Libc != "" && t.Libc != target.Libc {
		return false
	}
	return true
}

// rankPrebuilds filters names to those compatible with target and orders them
// best first: an exact runtime tag, then more specific names, then by name.
func rankPrebuilds(names []string, target Target) []Tags {
	var out []Tags
	for _, name := range names {
		if filepath.Ext(name) != NativeExt {
			continue
		}
		t := ParseTags(name)
		if t.Matches(target) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.Runtime == target.Runtime) != (b.Runtime == target.Runtime) {
			return a.Runtime == target.Runtime
		}
		if a.Specificity != b.Specificity {
			return a.Specificity > b.Specificity
		}
		return a.File < b.File
	})
	return out
}

// DetectLibc reports "musl" or "glibc" on Linux and "" elsewhere.
func DetectLibc() string {
	if runtime.GOOS != "linux" {
		return ""
	}
	if matches, _ := filepath.Glob("/lib/ld-musl-*"); len(matches) > 0 {
		return "musl"
	}
	if _, err := os.Stat("/etc/alpine-release"); err == nil {
		return "musl"
	}
	return "glibc"
}
