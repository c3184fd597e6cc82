// Package renamelog records every batch in a CSV file that lists the old and
// new path of each row, so a batch can be audited or undone by hand.
//
//	[[listeners]]
//	type = "rename-log"
//	[listeners.options]
//	dir = "~/imgrename-logs"   # defaults to $XDG_STATE_HOME/imgrename/renames
package renamelog

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"time"

	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/filesystem"
	"github.com/arthur-debert/imgrename/pkg/paths"
	"github.com/arthur-debert/imgrename/pkg/plugin"
	"github.com/arthur-debert/imgrename/pkg/row"
	"github.com/arthur-debert/imgrename/pkg/types"
)

// TypeName is the plug-in type used in configuration
const TypeName = "rename-log"

const (
	StatusRenamed = "renamed"
	StatusFailed  = "failed"
)

// Header is the first line of every log
var Header = []string{"old_path", "new_path", "old_name", "new_name", "status"}

// Options configures the listener
type Options struct {
	Dir string `mapstructure:"dir"`
}

// Entry is one row of the log
type Entry struct {
	OldPath string
	NewPath string
	Status  string
}

type batchLog struct {
	started time.Time
	entries []Entry
}

// Listener accumulates entries per session and writes the log at END
type Listener struct {
	name    string
	fs      types.FS
	dir     string
	now     func() time.Time
	batches *plugin.SessionState[batchLog]
}

// NewListener creates a rename log writing into dir
func NewListener(name string, fsys types.FS, dir string) *Listener {
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	l := &Listener{name: name, fs: fsys, dir: dir, now: time.Now}
	l.batches = plugin.NewSessionState(func() batchLog { return batchLog{started: l.now()} })
	return l
}

func (l *Listener) Name() string { return l.name }

// Path returns the log file of a session started at t
func (l *Listener) Path(session string, t time.Time) string {
	short := session
	if len(short) > 8 {
		short = short[:8]
	}
	return filepath.Join(l.dir, fmt.Sprintf("imgrename-%s-%s.csv", t.Format("20060102-150405"), short))
}

// ProcessEvent records row outcomes and writes the log on END
func (l *Listener) ProcessEvent(_ context.Context, s *plugin.Session, e plugin.Event, r *row.PluginDataRow) (*row.PluginDataRow, error) {
	switch e {
	case plugin.EventStart:
		l.batches.Reset(s.ID)
		l.batches.Do(s.ID, func(*batchLog) {})
	case plugin.EventEndRowSuccess:
		l.add(s.ID, Entry{OldPath: r.TargetFile(), NewPath: r.Destination(), Status: StatusRenamed})
	case plugin.EventEndRowFail:
		l.add(s.ID, Entry{OldPath: r.TargetFile(), NewPath: r.Destination(), Status: StatusFailed})
	case plugin.EventEnd:
		b, ok := l.batches.Take(s.ID)
		if !ok || len(b.entries) == 0 {
			return nil, nil
		}
		path := l.Path(s.ID, b.started)
		if err := l.write(path, b.entries); err != nil {
			return nil, err
		}
		s.Logger.Info().Str("plugin", l.name).Str("path", path).Int("entries", len(b.entries)).Msg("rename log written")
	}
	return nil, nil
}

func (l *Listener) add(session string, e Entry) {
	l.batches.Do(session, func(b *batchLog) { b.entries = append(b.entries, e) })
}

func (l *Listener) write(path string, entries []Entry) error {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	_ = cw.Write(Header)
	for _, e := range entries {
		newName := ""
		if e.NewPath != "" {
			newName = filepath.Base(e.NewPath)
		}
		_ = cw.Write([]string{e.OldPath, e.NewPath, filepath.Base(e.OldPath), newName, e.Status})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot encode rename log")
	}

	if err := l.fs.MkdirAll(l.dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create rename log directory %s", l.dir).
			WithDetail("plugin", l.name).
			WithDetail("property", "dir").
			WithDetail("value", l.dir)
	}
	if err := l.fs.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write rename log %s", path).
			WithDetail("plugin", l.name).
			WithDetail("file", path)
	}
	return nil
}

// Read parses a rename log
func Read(fsys types.FS, path string) ([]Entry, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileNotFound, "cannot read rename log %s", path).WithDetail("file", path)
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "cannot parse rename log %s", path).WithDetail("file", path)
	}
	if len(records) == 0 || records[0][0] != Header[0] {
		return nil, errors.Newf(errors.ErrInvalidInput, "%s is not a rename log", path).WithDetail("file", path)
	}
	out := make([]Entry, 0, len(records)-1)
	for _, rec := range records[1:] {
		out = append(out, Entry{OldPath: rec[0], NewPath: rec[1], Status: rec[4]})
	}
	return out, nil
}

func newListener(env plugin.Env, name string, options map[string]interface{}) (plugin.RowListener, error) {
	var opts Options
	if err := plugin.DecodeOptions(name, options, &opts); err != nil {
		return nil, err
	}
	dir := paths.ExpandHome(opts.Dir)
	if dir == "" {
		dir = paths.New().RenameLogDir()
	}
	return NewListener(name, env.FS, dir), nil
}

func init() {
	plugin.MustRegisterListener(TypeName, newListener)
}
