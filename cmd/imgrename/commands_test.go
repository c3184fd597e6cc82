// cmd/imgrename/commands_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: real filesystem via t.TempDir, environment variables
// PURPOSE: Test the imgrename commands end to end

package imgrename

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	root string
	src  string
	out  string
	cfg  string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	root := t.TempDir()
	e := &env{
		root: root,
		src:  filepath.Join(root, "src"),
		out:  filepath.Join(root, "out"),
		cfg:  filepath.Join(root, "config"),
	}
	t.Setenv("IMGRENAME_CONFIG_DIR", e.cfg)
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	t.Setenv("USER", "tester")

	require.NoError(t, os.MkdirAll(e.src, 0755))
	e.write(t, "src/a.tif", "aaaa")
	e.write(t, "src/b.tif", "bbbbbb")
	e.write(t, "src/notes.txt", "not an image")
	return e
}

func (e *env) write(t *testing.T, rel, content string) string {
	t.Helper()
	p := filepath.Join(e.root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func (e *env) sheet(t *testing.T) string {
	return e.write(t, "values.csv", "file,Name\na.tif,alpha\nb.tif,beta\n")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func TestRename_WithSheet(t *testing.T) {
	e := newEnv(t)

	out, err := run(t, "rename", e.src, "--out", e.out, "--sheet", e.sheet(t))
	require.NoError(t, err, out)

	data, err := os.ReadFile(filepath.Join(e.out, "alpha.tif"))
	require.NoError(t, err)
	assert.Equal(t, "aaaa", string(data))
	assert.True(t, exists(filepath.Join(e.out, "beta.tif")))
	assert.False(t, exists(filepath.Join(e.src, "a.tif")))
	assert.True(t, exists(filepath.Join(e.src, "notes.txt")))
	assert.Contains(t, out, "2 renamed, 0 failed")
}

func TestRename_KeepSourceFlag(t *testing.T) {
	e := newEnv(t)

	_, err := run(t, "rename", e.src, "--out", e.out, "--sheet", e.sheet(t), "--keep-source")
	require.NoError(t, err)

	assert.True(t, exists(filepath.Join(e.src, "a.tif")))
	assert.True(t, exists(filepath.Join(e.out, "alpha.tif")))
}

func TestRename_InvalidRowIsSkipped(t *testing.T) {
	e := newEnv(t)
	sheet := e.write(t, "values.csv", "file,Name\na.tif,alpha\n")

	out, err := run(t, "rename", e.src, "--out", e.out, "--sheet", sheet)

	require.Error(t, err)
	assert.Equal(t, errors.ErrRowRejected, errors.GetErrorCode(err))
	assert.True(t, exists(filepath.Join(e.out, "alpha.tif")))
	assert.True(t, exists(filepath.Join(e.src, "b.tif")))
	assert.Contains(t, out, "1 renamed, 1 failed")
}

func TestRename_SetAppliesToAllRows(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.Remove(filepath.Join(e.src, "b.tif")))

	_, err := run(t, "rename", e.src, "--out", e.out, "--set", "Name=sample")
	require.NoError(t, err)
	assert.True(t, exists(filepath.Join(e.out, "sample.tif")))
}

func TestRename_BadSetFlag(t *testing.T) {
	e := newEnv(t)

	_, err := run(t, "rename", e.src, "--out", e.out, "--set", "no-equals")
	assert.Equal(t, errors.ErrInvalidInput, errors.GetErrorCode(err))
}

func TestRename_ManualModeNeedsOut(t *testing.T) {
	e := newEnv(t)

	_, err := run(t, "rename", e.src, "--sheet", e.sheet(t))
	assert.Equal(t, errors.ErrInvalidInput, errors.GetErrorCode(err))
}

func TestRename_DryRun(t *testing.T) {
	e := newEnv(t)

	out, err := run(t, "rename", e.src, "--out", e.out, "--sheet", e.sheet(t), "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, out, filepath.Join(e.out, "alpha.tif"))
	assert.False(t, exists(e.out))
	assert.True(t, exists(filepath.Join(e.src, "a.tif")))
}

func TestPreview(t *testing.T) {
	e := newEnv(t)
	sheet := e.write(t, "values.csv", "file,Name\na.tif,alpha\n")

	out, err := run(t, "preview", e.src, "--out", e.out, "--sheet", sheet)
	require.NoError(t, err)

	assert.Contains(t, out, "Output directory: "+e.out)
	assert.Contains(t, out, filepath.Join(e.out, "alpha.tif"))
	assert.Contains(t, out, "1 ready, 1 with errors")
	assert.False(t, exists(e.out))
}

func TestValidate(t *testing.T) {
	e := newEnv(t)

	out, err := run(t, "validate", e.src, "--out", e.out, "--sheet", e.sheet(t))
	require.NoError(t, err)
	assert.Contains(t, out, "2 files can be renamed")

	_, err = run(t, "validate", e.src, "--out", e.out)
	assert.Equal(t, errors.ErrRowRejected, errors.GetErrorCode(err))
}

func TestRenameAndUndo_WithRenameLog(t *testing.T) {
	e := newEnv(t)
	logs := filepath.Join(e.root, "logs")
	cfg := e.write(t, "lab.toml", `
[copy]
keep_source = false

[[listeners]]
type = "rename-log"
[listeners.options]
dir = "`+logs+`"
`)

	_, err := run(t, "rename", e.src, "--config", cfg, "--out", e.out, "--sheet", e.sheet(t))
	require.NoError(t, err)
	assert.False(t, exists(filepath.Join(e.src, "a.tif")))

	matches, err := filepath.Glob(filepath.Join(logs, "imgrename-*.csv"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	out, err := run(t, "undo", matches[0])
	require.NoError(t, err, out)
	assert.Contains(t, out, "2 files restored, 0 failed")

	data, err := os.ReadFile(filepath.Join(e.src, "a.tif"))
	require.NoError(t, err)
	assert.Equal(t, "aaaa", string(data))
	assert.False(t, exists(filepath.Join(e.out, "alpha.tif")))
}

func TestConfigFile_Missing(t *testing.T) {
	e := newEnv(t)

	_, err := run(t, "rename", e.src, "--config", filepath.Join(e.root, "nope.toml"), "--out", e.out)
	assert.Equal(t, errors.ErrConfigLoad, errors.GetErrorCode(err))
}

func TestFields(t *testing.T) {
	newEnv(t)

	out, err := run(t, "fields")
	require.NoError(t, err)
	assert.Contains(t, out, "Name\tverified-text")
	assert.Contains(t, out, "Extension\tfile-extension")
}

func TestGenConfig(t *testing.T) {
	e := newEnv(t)

	out, err := run(t, "genconfig")
	require.NoError(t, err)
	assert.Contains(t, out, "[output]")
	assert.Contains(t, out, "mode = 'manual'")

	out, err = run(t, "genconfig", "--write")
	require.NoError(t, err)
	written := filepath.Join(e.cfg, "config.toml")
	assert.Contains(t, out, written)
	data, err := os.ReadFile(written)
	require.NoError(t, err)
	assert.Regexp(t, `(?m)^#\s+mode = 'manual'`, string(data))

	_, err = run(t, "genconfig", "--write")
	assert.Equal(t, errors.ErrFileWrite, errors.GetErrorCode(err))

	// the commented file loads as the defaults
	_, err = run(t, "fields")
	assert.NoError(t, err)
}

func TestVersion(t *testing.T) {
	newEnv(t)

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "imgrename ")
	assert.Contains(t, out, "commit:")
}

func TestCompletion(t *testing.T) {
	newEnv(t)

	out, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "imgrename")

	_, err = run(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestHelpTopics(t *testing.T) {
	newEnv(t)

	out, err := run(t, "help", "topics")
	require.NoError(t, err)
	assert.Contains(t, out, "templates")
	assert.Contains(t, out, "--dry-run")

	out, err = run(t, "help", "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "Templates")

	out, err = run(t, "help", "--keep-source")
	require.NoError(t, err)
	assert.Contains(t, out, "keep-source")
}

func TestNoCommand(t *testing.T) {
	newEnv(t)

	_, err := run(t)
	assert.Error(t, err)
}
