package output

import (
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/types"
	"github.com/google/uuid"
)

// Mode selects how the output directory is chosen
type Mode string

const (
	// ModeFixed uses the configured directory
	ModeFixed Mode = "fixed"
	// ModeManual uses a directory chosen by the caller for each batch
	ModeManual Mode = "manual"
	// ModeDerived appends the earliest modification date of the batch to the configured directory
	ModeDerived Mode = "derived"
)

// DefaultDerivedLayout formats derived directory names
const DefaultDerivedLayout = "20060102"

// Resolver chooses the output directory for a batch
type Resolver struct {
	mode   Mode
	base   string
	layout string
}

// NewResolver validates the output settings
func NewResolver(mode Mode, base, layout string) (*Resolver, error) {
	switch mode {
	case ModeFixed, ModeDerived:
		if base == "" {
			return nil, errors.Newf(errors.ErrConfigValid, "output mode %q requires 'output.dir'", mode).
				WithDetail("property", "output.dir")
		}
	case ModeManual:
	default:
		return nil, errors.Newf(errors.ErrConfigValid, "output mode must be one of fixed, manual, derived; got %q", mode).
			WithDetail("property", "output.mode")
	}
	if layout == "" {
		layout = DefaultDerivedLayout
	}
	return &Resolver{mode: mode, base: base, layout: layout}, nil
}

// Mode returns the configured mode
func (r *Resolver) Mode() Mode { return r.mode }

// Dir returns the output directory for a batch of targets. manual is the
// caller's choice; in fixed and derived modes a non-empty manual value
// overrides the configured base.
func (r *Resolver) Dir(manual string, targets []types.Target) (string, error) {
	base := r.base
	if manual != "" {
		base = manual
	}
	switch r.mode {
	case ModeManual:
		if manual == "" {
			return "", errors.New(errors.ErrInvalidInput, "no output directory chosen").
				WithDetail("property", "output.dir")
		}
		return filepath.Clean(manual), nil
	case ModeDerived:
		earliest, ok := EarliestModTime(targets)
		if !ok {
			return "", errors.New(errors.ErrInvalidInput, "cannot derive the output directory: no file in the batch has a modification time").
				WithDetail("property", "output.mode")
		}
		return filepath.Join(base, earliest.Format(r.layout)), nil
	}
	return filepath.Clean(base), nil
}

// EarliestModTime returns the oldest modification time among targets
func EarliestModTime(targets []types.Target) (time.Time, bool) {
	var earliest time.Time
	for _, t := range targets {
		mt := t.ModTime()
		if mt.IsZero() {
			continue
		}
		if earliest.IsZero() || mt.Before(earliest) {
			earliest = mt
		}
	}
	return earliest, !earliest.IsZero()
}

// Prepare creates dir when missing and verifies it accepts new files by
// creating and removing a probe file.
func Prepare(fsys types.FS, dir string, perm os.FileMode) error {
	if perm == 0 {
		perm = 0755
	}
	if fi, err := fsys.Stat(dir); err == nil && !fi.IsDir() {
		return errors.Newf(errors.ErrDirCreate, "output path %s exists and is not a directory", dir).
			WithDetail("path", dir)
	}
	if err := fsys.MkdirAll(dir, perm); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create output directory %s", dir).
			WithDetail("path", dir)
	}

	probe := filepath.Join(dir, ".imgrename-probe-"+uuid.NewString())
	w, err := fsys.Create(probe)
	if err != nil {
		return errors.Wrapf(err, errors.ErrDirNotWritable, "output directory %s is not writable", dir).
			WithDetail("path", dir)
	}
	closeErr := w.Close()
	if err := fsys.Remove(probe); err != nil {
		return errors.Wrapf(err, errors.ErrDirNotWritable, "cannot remove write probe in %s", dir).
			WithDetail("path", probe)
	}
	if closeErr != nil {
		return errors.Wrapf(closeErr, errors.ErrDirNotWritable, "output directory %s is not writable", dir).
			WithDetail("path", dir)
	}
	return nil
}
