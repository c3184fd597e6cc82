package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/arthur-debert/imgrename/pkg/types"
)

// crossDeviceFS treats every top-level directory as its own device
type crossDeviceFS struct {
	types.FS
}

// NewCrossDeviceFS wraps fsys so renames between different top-level
// directories fail with EXDEV, as they do across mount points.
func NewCrossDeviceFS(fsys types.FS) types.FS {
	return crossDeviceFS{FS: fsys}
}

func (c crossDeviceFS) Rename(oldpath, newpath string) error {
	if device(oldpath) != device(newpath) {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
	}
	return c.FS.Rename(oldpath, newpath)
}

func device(path string) string {
	parts := strings.SplitN(strings.TrimPrefix(filepath.ToSlash(path), "/"), "/", 2)
	return parts[0]
}
