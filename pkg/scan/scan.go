// Package scan discovers the files a batch will rename.
//
// Files are matched against doublestar include patterns and dropped by
// gitignore-style exclude patterns, read from configuration and from an
// optional .imgrenameignore file at the scan root.
package scan

import (
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/logging"
	"github.com/arthur-debert/imgrename/pkg/types"
	"github.com/bmatcuk/doublestar"
	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFile holds extra exclude patterns, one per line, at the scan root
const IgnoreFile = ".imgrenameignore"

// Internal files the tool itself may leave in a directory
var alwaysExcluded = []string{
	IgnoreFile,
	".imgrename-*",
}

// Config selects which files under a root become targets
type Config struct {
	Include   []string `koanf:"include" toml:"include"`
	Exclude   []string `koanf:"exclude" toml:"exclude"`
	Recursive bool     `koanf:"recursive" toml:"recursive"`
}

// Discover walks root and returns one Target per matching file, sorted by
// path. Each target carries its modification time and size, plus the
// properties "parent" (the containing directory's name) and "root".
func Discover(fsys types.FS, root string, cfg Config) ([]types.Target, error) {
	logger := logging.GetLogger("scan")
	root = filepath.Clean(root)

	fi, err := fsys.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileNotFound, "cannot scan %s", root).
			WithDetail("path", root)
	}
	if !fi.IsDir() {
		return nil, errors.Newf(errors.ErrInvalidInput, "%s is not a directory", root).
			WithDetail("path", root)
	}

	excludes := append(append([]string{}, alwaysExcluded...), cfg.Exclude...)
	if data, err := fsys.ReadFile(filepath.Join(root, IgnoreFile)); err == nil {
		excludes = append(excludes, strings.Split(string(data), "\n")...)
	}
	matcher := ignore.CompileIgnoreLines(excludes...)

	w := &walker{fsys: fsys, root: root, cfg: cfg, ignore: matcher}
	if err := w.walk(root); err != nil {
		return nil, err
	}

	sort.Slice(w.found, func(i, j int) bool { return w.found[i].Path() < w.found[j].Path() })
	logger.Debug().
		Str("root", root).
		Int("targets", len(w.found)).
		Msg("scan complete")
	return w.found, nil
}

type walker struct {
	fsys   types.FS
	root   string
	cfg    Config
	ignore *ignore.GitIgnore
	found  []types.Target
}

func (w *walker) walk(dir string) error {
	entries, err := w.fsys.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read directory %s", dir).
			WithDetail("path", dir)
	}
	for _, e := range entries {
		full := filepath.Join(dir, e.Name())
		rel, _ := filepath.Rel(w.root, full)
		rel = filepath.ToSlash(rel)

		if e.IsDir() {
			if !w.cfg.Recursive || w.ignore.MatchesPath(rel+"/") {
				continue
			}
			if err := w.walk(full); err != nil {
				return err
			}
			continue
		}
		if !e.Type().IsRegular() && e.Type()&fs.ModeSymlink == 0 {
			continue
		}
		if w.ignore.MatchesPath(rel) {
			continue
		}
		ok, err := w.included(rel)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		info, err := e.Info()
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", full).
				WithDetail("path", full)
		}
		props := map[string]string{
			"parent": filepath.Base(dir),
			"root":   filepath.Base(w.root),
		}
		w.found = append(w.found, types.NewTarget(full, w.root, props).WithFileInfo(info.ModTime(), info.Size()))
	}
	return nil
}

// included reports whether rel matches an include pattern. Patterns without
// a slash match the base name at any depth. No patterns includes everything.
func (w *walker) included(rel string) (bool, error) {
	if len(w.cfg.Include) == 0 {
		return true, nil
	}
	for _, p := range w.cfg.Include {
		subject := rel
		if !strings.Contains(p, "/") {
			subject = path.Base(rel)
		}
		ok, err := doublestar.Match(p, subject)
		if err != nil {
			return false, errors.Wrapf(err, errors.ErrConfigValid, "scan include pattern %q is invalid", p).
				WithDetail("property", "scan.include").
				WithDetail("value", p)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// TotalBytes sums the sizes of targets
func TotalBytes(targets []types.Target) int64 {
	var n int64
	for _, t := range targets {
		n += t.Size()
	}
	return n
}
