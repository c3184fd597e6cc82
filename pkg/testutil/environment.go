// pkg/testutil/environment.go
// DEPENDENCIES: None (base test utilities)
// PURPOSE: Orchestrate test environments with a filesystem and image files

package testutil

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/imgrename/pkg/filesystem"
	"github.com/arthur-debert/imgrename/pkg/types"
)

// EnvType selects the filesystem behind a TestEnvironment
type EnvType int

const (
	EnvMemoryOnly EnvType = iota // afero in-memory filesystem
	EnvIsolated                  // real filesystem in a temp directory
)

// TestEnvironment is a filesystem with a root directory for test files
type TestEnvironment struct {
	Root string
	FS   types.FS
	Type EnvType

	t *testing.T
}

// NewTestEnvironment creates an environment of the given type
func NewTestEnvironment(t *testing.T, envType EnvType) *TestEnvironment {
	t.Helper()
	env := &TestEnvironment{t: t, Type: envType}
	switch envType {
	case EnvIsolated:
		env.Root = t.TempDir()
		env.FS = filesystem.NewOS()
	default:
		env.Root = "/test"
		env.FS = filesystem.NewMemFS()
		if err := env.FS.MkdirAll(env.Root, 0755); err != nil {
			t.Fatalf("Failed to create root %s: %v", env.Root, err)
		}
	}
	return env
}

// Path joins elem to the environment root
func (env *TestEnvironment) Path(elem ...string) string {
	return filepath.Join(append([]string{env.Root}, elem...)...)
}

// WithFileTree creates tree under the root
func (env *TestEnvironment) WithFileTree(tree FileTree) *TestEnvironment {
	env.t.Helper()
	createFileTree(env.t, env.FS, env.Root, tree)
	return env
}

// Exists reports whether path exists; relative paths are under the root
func (env *TestEnvironment) Exists(path string) bool {
	if !filepath.IsAbs(path) {
		path = env.Path(path)
	}
	_, err := env.FS.Stat(path)
	return err == nil
}

// Read returns the content of path; relative paths are under the root
func (env *TestEnvironment) Read(path string) string {
	env.t.Helper()
	if !filepath.IsAbs(path) {
		path = env.Path(path)
	}
	data, err := env.FS.ReadFile(path)
	if err != nil {
		env.t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

// FileTree is a directory structure: string values are file contents and
// FileTree values are subdirectories
type FileTree map[string]interface{}

func createFileTree(t *testing.T, fs types.FS, basePath string, tree FileTree) {
	t.Helper()

	for name, content := range tree {
		fullPath := filepath.Join(basePath, name)

		switch v := content.(type) {
		case string:
			if err := fs.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", filepath.Dir(fullPath), err)
			}
			if err := fs.WriteFile(fullPath, []byte(v), 0644); err != nil {
				t.Fatalf("Failed to write file %s: %v", fullPath, err)
			}
		case FileTree:
			if err := fs.MkdirAll(fullPath, 0755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", fullPath, err)
			}
			createFileTree(t, fs, fullPath, v)
		default:
			t.Fatalf("Invalid file tree content type for %s: %T", name, content)
		}
	}
}
