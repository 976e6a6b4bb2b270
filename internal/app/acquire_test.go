package app

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/grammarbind/internal/domain/binding"
)

func TestAcquire_StaticPrebuilt(t *testing.T) {
	root := t.TempDir()
	path := writeFixture(t, root, "prebuilds/linux-x64/pkg.node", "fixture")

	opener := &fakeOpener{exports: fixtureExports}
	a := NewAcquirer(opener, &fakeBuilds{}, testConfig())
	strategy := binding.SelectStrategy(bundledLinuxX64, testConfig().Template())

	mod, err := a.Acquire(strategy, bundledLinuxX64, root)
	require.NoError(t, err)
	assert.Equal(t, path, mod.Path)
	assert.Equal(t, binding.KindStaticPrebuilt, mod.Strategy)
	assert.Equal(t, "tree_sitter_yaml", mod.Symbol)
	assert.Equal(t, "yaml", mod.Name)
	assert.Equal(t, fixtureExports["tree_sitter_yaml"], mod.LanguagePointer())
}

func TestAcquire_StaticPrebuiltMissing(t *testing.T) {
	root := t.TempDir()
	// A prebuild for another platform must not be picked up.
	writeFixture(t, root, "prebuilds/darwin-arm64/pkg.node", "fixture")

	builds := &fakeBuilds{lib: &fakeLibrary{path: "/should/not/be/used", exports: fixtureExports}}
	a := NewAcquirer(&fakeOpener{exports: fixtureExports}, builds, testConfig())

	_, err := a.Acquire(binding.StaticPrebuiltLookup{Template: testConfig().Template()}, bundledLinuxX64, root)
	require.Error(t, err)

	var mle *binding.ModuleLoadError
	require.True(t, errors.As(err, &mle))
	assert.Equal(t, binding.KindStaticPrebuilt, mle.Strategy)
	assert.Contains(t, mle.Path, "linux-x64")
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Empty(t, builds.calls, "static lookup has no fallback")
}

func TestAcquire_DynamicBuild(t *testing.T) {
	root := t.TempDir()
	lib := &fakeLibrary{path: "/pkg/build/Release/tree_sitter_yaml_binding.node", exports: fixtureExports}
	builds := &fakeBuilds{lib: lib}
	a := NewAcquirer(&fakeOpener{}, builds, testConfig())

	mod, err := a.Acquire(binding.DynamicNativeBuild{}, hostLinuxX64, root)
	require.NoError(t, err)
	assert.Equal(t, []string{root}, builds.calls, "root is passed to the build loader as the search base")
	assert.Equal(t, lib.path, mod.Path)
	assert.Equal(t, binding.KindDynamicBuild, mod.Strategy)
}

func TestAcquire_DynamicBuildFailurePropagates(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "src/node-types.json", fixtureNodeTypes)
	a := NewAcquirer(&fakeOpener{}, &fakeBuilds{err: errBuildFailed}, testConfig())

	mod, err := a.Acquire(binding.DynamicNativeBuild{}, hostLinuxX64, root)
	assert.Nil(t, mod, "metadata is never attempted when acquisition fails")
	require.Error(t, err)
	assert.True(t, binding.IsModuleLoadError(err))
	assert.ErrorIs(t, err, errBuildFailed)
}

func TestAcquire_MissingSymbolClosesLibrary(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "prebuilds/linux-x64/pkg.node", "fixture")

	opener := &fakeOpener{exports: map[string]uintptr{"tree_sitter_json": 1}}
	a := NewAcquirer(opener, &fakeBuilds{}, testConfig())

	_, err := a.Acquire(binding.StaticPrebuiltLookup{Template: testConfig().Template()}, bundledLinuxX64, root)
	require.Error(t, err)
	assert.True(t, binding.IsModuleLoadError(err))
	assert.Contains(t, err.Error(), "tree_sitter_yaml")
	require.Len(t, opener.opened, 1)
	assert.True(t, opener.opened[0].closed)
}

func TestAcquire_NullLanguage(t *testing.T) {
	lib := &fakeLibrary{path: "/pkg/x.node", exports: map[string]uintptr{"tree_sitter_yaml": 0}}
	a := NewAcquirer(&fakeOpener{}, &fakeBuilds{lib: lib}, testConfig())

	_, err := a.Acquire(binding.DynamicNativeBuild{}, hostLinuxX64, t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, binding.ErrNullLanguage)
	assert.True(t, lib.closed)
}

func TestAcquire_CustomSymbol(t *testing.T) {
	cfg := testConfig()
	cfg.Symbol = "tree_sitter_yaml_custom"
	lib := &fakeLibrary{path: "/pkg/x.node", exports: map[string]uintptr{"tree_sitter_yaml_custom": 7}}
	a := NewAcquirer(&fakeOpener{}, &fakeBuilds{lib: lib}, cfg)

	mod, err := a.Acquire(binding.DynamicNativeBuild{}, hostLinuxX64, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, uintptr(7), mod.LanguagePointer())
}

func TestAcquire_AttachesNodeTypes(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "prebuilds/linux-x64/pkg.node", "fixture")
	writeFixture(t, root, "src/node-types.json", fixtureNodeTypes)

	a := NewAcquirer(&fakeOpener{exports: fixtureExports}, &fakeBuilds{}, testConfig())
	mod, err := a.Acquire(binding.StaticPrebuiltLookup{Template: testConfig().Template()}, bundledLinuxX64, root)
	require.NoError(t, err)

	expected, err := binding.ParseNodeTypes([]byte(fixtureNodeTypes))
	require.NoError(t, err)
	assert.True(t, mod.HasNodeTypeInfo())
	assert.Equal(t, expected, mod.NodeTypeInfo)
	assert.Equal(t, fixtureExports["tree_sitter_yaml"], mod.LanguagePointer())
}

func TestAcquire_NodeTypesAbsentOrMalformed(t *testing.T) {
	tests := map[string]string{
		"absent":    "",
		"malformed": `[{"type": "stream", "named":`,
		"wrong":     `{"type": "stream"}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			writeFixture(t, root, "prebuilds/linux-x64/pkg.node", "fixture")
			if content != "" {
				writeFixture(t, root, "src/node-types.json", content)
			}

			a := NewAcquirer(&fakeOpener{exports: fixtureExports}, &fakeBuilds{}, testConfig())
			mod, err := a.Acquire(binding.StaticPrebuiltLookup{Template: testConfig().Template()}, bundledLinuxX64, root)
			require.NoError(t, err)
			assert.False(t, mod.HasNodeTypeInfo())
			assert.Nil(t, mod.NodeTypeInfo)
			assert.Equal(t, fixtureExports["tree_sitter_yaml"], mod.LanguagePointer())
		})
	}
}

func TestAcquire_NodeTypesPathOverride(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "prebuilds/linux-x64/pkg.node", "fixture")
	writeFixture(t, root, "metadata/types.json", fixtureNodeTypes)

	cfg := testConfig()
	cfg.NodeTypesPath = "metadata/types.json"
	a := NewAcquirer(&fakeOpener{exports: fixtureExports}, &fakeBuilds{}, cfg)

	mod, err := a.Acquire(binding.StaticPrebuiltLookup{Template: cfg.Template()}, bundledLinuxX64, root)
	require.NoError(t, err)
	require.True(t, mod.HasNodeTypeInfo())
	assert.Len(t, mod.NodeTypeInfo, 3)
}

func TestAttachNodeTypes_Overwrites(t *testing.T) {
	root := t.TempDir()
	path := writeFixture(t, root, "node-types.json", fixtureNodeTypes)

	mod := &Module{NodeTypeInfo: binding.NodeTypes{{Type: "stale", Named: true}}}
	attachNodeTypes(mod, path)
	require.Len(t, mod.NodeTypeInfo, 3)
	assert.Equal(t, "stream", mod.NodeTypeInfo[0].Type)

	// A failed attempt leaves the previous value alone.
	attachNodeTypes(mod, path+".missing")
	assert.Len(t, mod.NodeTypeInfo, 3)
}

func TestModule_Close(t *testing.T) {
	lib := &fakeLibrary{path: "/pkg/x.node"}
	mod := &Module{lib: lib}
	require.NoError(t, mod.Close())
	assert.True(t, lib.closed)

	assert.NoError(t, (&Module{}).Close())
}
