package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNativeBuilds_PrebuildLeavesPackageUntouched(t *testing.T) {
	t.Setenv("PREBUILDS_ONLY", "")
	root := t.TempDir()
	prebuilt := writeFixture(t, root, "prebuilds/linux-x64/pkg.node", "fixture")

	builds := &nativeBuilds{cfg: testConfig(), opener: &fakeOpener{exports: fixtureExports}}
	lib, err := builds.Load(root, hostLinuxX64)
	require.NoError(t, err)
	assert.Equal(t, prebuilt, lib.Path())

	assert.NoDirExists(t, filepath.Join(root, "build"))
	assert.NoFileExists(t, filepath.Join(root, "build", "buildcache.db"))
}
