package binding

import (
	"strings"
)

// DefaultPrebuiltTemplate is where bundled distributions keep the grammar library.
const DefaultPrebuiltTemplate PathTemplate = "prebuilds/{platform}-{arch}/@tree-sitter-grammars+tree-sitter-yaml.node"

// PathTemplate is a slash-separated relative path. {platform} and {arch} are
// the only placeholders; everything else is literal.
type PathTemplate string

// Expand substitutes the env's platform and arch into the template.
func (t PathTemplate) Expand(env Env) string {
	r := strings.NewReplacer("{platform}", env.Platform, "{arch}", env.Arch)
	return r.Replace(string(t))
}

// Kind names a Strategy variant.
type Kind string

const (
	KindStaticPrebuilt Kind = "static-prebuilt"
	KindDynamicBuild   Kind = "dynamic-build"
)

// Strategy is how the native library is acquired. The variant set is closed:
// StaticPrebuiltLookup and DynamicNativeBuild. Consumers type-switch on it.
type Strategy interface {
	Kind() Kind
	isStrategy()
}

// StaticPrebuiltLookup loads exactly one prebuilt file from Template. No fallback.
type StaticPrebuiltLookup struct {
	Template PathTemplate
}

// Kind implements Strategy.
func (StaticPrebuiltLookup) Kind() Kind  { return KindStaticPrebuilt }
func (StaticPrebuiltLookup) isStrategy() {}

// Path returns the root-relative path for env.
func (s StaticPrebuiltLookup) Path(env Env) string {
	return s.Template.Expand(env)
}

// DynamicNativeBuild hands the package root to the build-aware loader, which
// owns its own fallback chain (local build, prebuilds, compile from source).
type DynamicNativeBuild struct{}

// Kind implements Strategy.
func (DynamicNativeBuild) Kind() Kind  { return KindDynamicBuild }
func (DynamicNativeBuild) isStrategy() {}

// SelectStrategy picks the acquisition strategy for env. It is a pure function:
// the bundle signature selects the static lookup, its absence the build loader.
func SelectStrategy(env Env, prebuilt PathTemplate) Strategy {
	if env.HasBundleSignature() {
		return StaticPrebuiltLookup{Template: prebuilt}
	}
	return DynamicNativeBuild{}
}

// CSymbolName returns the exported C function that yields a grammar's TSLanguage.
func CSymbolName(grammar string) string {
	return "tree_sitter_" + strings.ReplaceAll(grammar, "-", "_")
}
