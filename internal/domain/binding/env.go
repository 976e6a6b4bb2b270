// Package binding holds the pure decision logic for loading a grammar's native
// library: what environment we are in, which acquisition strategy applies, and
// the node-type metadata that may be attached to the loaded module.
//
// Nothing here touches a shared library. The app package executes strategies;
// this package only describes them.
package binding

import (
	"runtime"
)

// BundleVersionKey is the Versions entry that marks a bundled build.
const BundleVersionKey = "bundle"

// bundleVersion is stamped at link time for bundled distributions:
//
//	go build -ldflags "-X github.com/corey/grammarbind/internal/domain/binding.bundleVersion=1.0.0"
//
// A bundled binary ships a prebuilds/ tree next to it and must resolve its
// native library through a fixed template, never through the build loader.
var bundleVersion string

// Runtime identifies which host shape is executing the loader.
type Runtime string

const (
	RuntimeHost    Runtime = "go"      // regular go build/go run
	RuntimeBundled Runtime = "bundled" // stamped single-binary distribution
)

// Env is the execution context gathered once per load. Treat it as read-only.
type Env struct {
	Platform string            // package-ecosystem platform, e.g. "linux", "darwin", "win32"
	Arch     string            // package-ecosystem arch, e.g. "x64", "arm64", "ia32"
	Versions map[string]string // runtime version markers, "go" is always present
}

// DetectEnv gathers the execution context of the running process.
func DetectEnv() Env {
	versions := map[string]string{"go": runtime.Version()}
	if bundleVersion != "" {
		versions[BundleVersionKey] = bundleVersion
	}
	return Env{
		Platform: Platform(runtime.GOOS),
		Arch:     Arch(runtime.GOARCH),
		Versions: versions,
	}
}

// Runtime reports RuntimeBundled when the bundle signature is present.
func (e Env) Runtime() Runtime {
	if e.HasBundleSignature() {
		return RuntimeBundled
	}
	return RuntimeHost
}

// HasBundleSignature reports whether Versions carries a non-empty bundle marker.
func (e Env) HasBundleSignature() bool {
	v, ok := e.Versions[BundleVersionKey]
	return ok && v != ""
}

// PlatformArch returns "<platform>-<arch>", the prebuilds directory name.
func (e Env) PlatformArch() string {
	return e.Platform + "-" + e.Arch
}

// platformNames maps GOOS values whose prebuild directory name differs.
var platformNames = map[string]string{
	"windows": "win32",
}

// archNames maps GOARCH values whose prebuild directory name differs.
var archNames = map[string]string{
	"amd64":   "x64",
	"386":     "ia32",
	"ppc64le": "ppc64",
}

// Platform converts a GOOS value to the name used in prebuilds/ directories.
func Platform(goos string) string {
	if p, ok := platformNames[goos]; ok {
		return p
	}
	return goos
}

// Arch converts a GOARCH value to the name used in prebuilds/ directories.
func Arch(goarch string) string {
	if a, ok := archNames[goarch]; ok {
		return a
	}
	return goarch
}
