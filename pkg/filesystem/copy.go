package filesystem

import (
	stderrors "errors"
	"io"
	"path/filepath"
	"syscall"

	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/types"
	"github.com/google/uuid"
)

const copyBufferSize = 256 * 1024

// countingWriter reports every write to onWrite
type countingWriter struct {
	w       io.Writer
	n       int64
	onWrite func(int64)
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	if n > 0 && c.onWrite != nil {
		c.onWrite(int64(n))
	}
	return n, err
}

// CopyFile copies src to dst through a temporary file in dst's directory
// that is renamed into place once complete. onWrite, when set, receives the
// size of every write. On failure the temporary file is removed and dst is
// untouched. It returns the bytes written.
func CopyFile(fsys types.FS, src, dst string, onWrite func(int64)) (int64, error) {
	in, err := fsys.Open(src)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrFileNotFound, "cannot open %s", src).
			WithDetail("path", src)
	}
	defer func() { _ = in.Close() }()

	tmp := filepath.Join(filepath.Dir(dst), ".imgrename-"+uuid.NewString()+".tmp")
	out, err := fsys.Create(tmp)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrFileWrite, "cannot create %s", tmp).
			WithDetail("path", tmp).
			WithDetail("destination", dst)
	}

	cw := &countingWriter{w: out, onWrite: onWrite}
	_, copyErr := io.CopyBuffer(cw, in, make([]byte, copyBufferSize))
	closeErr := out.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = fsys.Remove(tmp)
		return cw.n, errors.Wrapf(copyErr, errors.ErrFileCopy, "failed to copy %s to %s", src, dst).
			WithDetail("source", src).
			WithDetail("destination", dst)
	}

	if err := fsys.Rename(tmp, dst); err != nil {
		_ = fsys.Remove(tmp)
		return cw.n, errors.Wrapf(err, errors.ErrFileCopy, "failed to move %s into place", dst).
			WithDetail("source", src).
			WithDetail("destination", dst)
	}
	return cw.n, nil
}

// Move renames src to dst. When the two are on different devices it copies
// src to dst, keeping the modification time, and then removes src.
func Move(fsys types.FS, src, dst string) error {
	err := fsys.Rename(src, dst)
	if err == nil || !stderrors.Is(err, syscall.EXDEV) {
		return err
	}

	info, statErr := fsys.Stat(src)
	if _, err := CopyFile(fsys, src, dst, nil); err != nil {
		return err
	}
	if statErr == nil {
		_ = fsys.Chtimes(dst, info.ModTime(), info.ModTime())
	}
	if err := fsys.Remove(src); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "copied %s to %s but cannot remove it", src, dst).
			WithDetail("path", src)
	}
	return nil
}
