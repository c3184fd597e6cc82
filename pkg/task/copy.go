package task

import (
	"github.com/arthur-debert/imgrename/pkg/filesystem"
	"github.com/arthur-debert/imgrename/pkg/types"
)

// copyAtomic copies the target to dst without leaving a partial file behind
// and applies the source modification time when configured.
func (e *Engine) copyAtomic(target types.Target, dst string, onWrite func(int64)) (int64, error) {
	n, err := filesystem.CopyFile(e.fs, target.Path(), dst, onWrite)
	if err != nil {
		return n, err
	}
	if e.opts.PreserveModTime && !target.ModTime().IsZero() {
		if err := e.fs.Chtimes(dst, target.ModTime(), target.ModTime()); err != nil {
			e.logger.Warn().Err(err).Str("path", dst).Msg("cannot preserve modification time")
		}
	}
	return n, nil
}
