// pkg/paths/paths_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Environment variables
// PURPOSE: Test XDG resolution and overrides

package paths_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/imgrename/pkg/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Overrides(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv(paths.EnvConfigDir, filepath.Join(tmp, "cfg"))
	t.Setenv(paths.EnvCacheDir, filepath.Join(tmp, "cache"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmp, "state"))

	p := paths.New()

	assert.Equal(t, filepath.Join(tmp, "cfg"), p.ConfigDir())
	assert.Equal(t, filepath.Join(tmp, "cfg", "config.toml"), p.ConfigFile())
	assert.Equal(t, filepath.Join(tmp, "cache"), p.CacheDir())
	assert.Equal(t, filepath.Join(tmp, "state", "imgrename"), p.StateDir())
	assert.Equal(t, filepath.Join(tmp, "state", "imgrename", "renames"), p.RenameLogDir())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, paths.ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, "images"), paths.ExpandHome("~/images"))
	assert.Equal(t, "/abs/path", paths.ExpandHome("/abs/path"))
	assert.Equal(t, "~user/x", paths.ExpandHome("~user/x"))
}
