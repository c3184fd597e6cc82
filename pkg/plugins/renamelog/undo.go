package renamelog

import (
	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/filesystem"
	"github.com/arthur-debert/imgrename/pkg/logging"
	"github.com/arthur-debert/imgrename/pkg/types"
)

// Reverted is the outcome of undoing one log entry
type Reverted struct {
	Entry
	// Removed is set when the source was still in place and only the copy was deleted
	Removed bool
	Err     error
}

// Undo moves the renamed files of a log back to their old paths. When the
// old path still holds a file of the same size, the batch kept its sources
// and the copy is deleted instead. Failed entries are skipped.
func Undo(fsys types.FS, entries []Entry, dryRun bool) []Reverted {
	log := logging.GetLogger("renamelog")
	var out []Reverted
	for _, e := range entries {
		if e.Status != StatusRenamed {
			continue
		}
		r := Reverted{Entry: e}
		r.Removed, r.Err = undoOne(fsys, e, dryRun)
		if r.Err != nil {
			log.Warn().Err(r.Err).Str("file", e.NewPath).Msg("undo failed")
		} else {
			log.Info().Str("from", e.NewPath).Str("to", e.OldPath).Bool("removed", r.Removed).Bool("dryRun", dryRun).Msg("undone")
		}
		out = append(out, r)
	}
	return out
}

func undoOne(fsys types.FS, e Entry, dryRun bool) (bool, error) {
	renamed, err := fsys.Stat(e.NewPath)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileNotFound, "renamed file %s is gone", e.NewPath).
			WithDetail("file", e.NewPath)
	}
	if old, err := fsys.Stat(e.OldPath); err == nil {
		if old.Size() != renamed.Size() {
			return false, errors.Newf(errors.ErrDestinationExists, "%s exists and differs from %s", e.OldPath, e.NewPath).
				WithDetail("file", e.OldPath)
		}
		if dryRun {
			return true, nil
		}
		if err := fsys.Remove(e.NewPath); err != nil {
			return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot remove %s", e.NewPath).
				WithDetail("file", e.NewPath)
		}
		return true, nil
	}
	if dryRun {
		return false, nil
	}
	if err := filesystem.Move(fsys, e.NewPath, e.OldPath); err != nil {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot move %s back to %s", e.NewPath, e.OldPath).
			WithDetail("file", e.NewPath)
	}
	return false, nil
}
