// Package companion carries companion files along with a renamed image.
// A companion shares the image's stem and has one of the configured
// extensions; it is copied next to the destination under the destination's
// stem.
//
//	[[listeners]]
//	type = "companion"
//	[listeners.options]
//	extensions = [".txt", ".json"]
//	move = true
package companion

import (
	"context"
	stderrors "errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/filesystem"
	"github.com/arthur-debert/imgrename/pkg/plugin"
	"github.com/arthur-debert/imgrename/pkg/row"
	"github.com/arthur-debert/imgrename/pkg/types"
)

// TypeName is the plug-in type used in configuration
const TypeName = "companion"

// Options configures the listener
type Options struct {
	Extensions []string `mapstructure:"extensions"`
	// Move removes the companion from the source directory after copying
	Move bool `mapstructure:"move"`
}

// Listener copies companions on END_ROW_SUCCESS
type Listener struct {
	name       string
	fs         types.FS
	extensions []string
	move       bool
}

// NewListener creates a companion listener. Extensions are normalised to
// start with a dot.
func NewListener(name string, fsys types.FS, opts Options) *Listener {
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	exts := make([]string, 0, len(opts.Extensions))
	for _, e := range opts.Extensions {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	return &Listener{name: name, fs: fsys, extensions: exts, move: opts.Move}
}

func (l *Listener) Name() string { return l.name }

func stem(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// ProcessEvent copies every existing companion of the renamed image
func (l *Listener) ProcessEvent(_ context.Context, s *plugin.Session, e plugin.Event, r *row.PluginDataRow) (*row.PluginDataRow, error) {
	if e != plugin.EventEndRowSuccess {
		return nil, nil
	}

	var errs []error
	for _, ext := range l.extensions {
		src := stem(r.TargetFile()) + ext
		dst := stem(r.Destination()) + ext
		if _, err := l.fs.Stat(src); err != nil {
			continue
		}
		if err := l.copy(src, dst); err != nil {
			errs = append(errs, err)
			continue
		}
		if l.move {
			if err := l.fs.Remove(src); err != nil {
				s.Logger.Warn().Err(err).Str("plugin", l.name).Str("path", src).Msg("cannot remove companion after copy")
			}
		}
		s.Logger.Debug().Str("plugin", l.name).Str("source", src).Str("destination", dst).Msg("companion copied")
	}
	if len(errs) > 0 {
		return nil, errors.Wrapf(stderrors.Join(errs...), errors.ErrFileCopy, "%d companion files of %s could not be copied", len(errs), r.TargetFile()).
			WithDetail("plugin", l.name).
			WithDetail("file", r.TargetFile())
	}
	return nil, nil
}

func (l *Listener) copy(src, dst string) error {
	in, err := l.fs.Open(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot open %s", src).WithDetail("file", src)
	}
	defer func() { _ = in.Close() }()

	out, err := l.fs.Create(dst)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot create %s", dst).WithDetail("file", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = l.fs.Remove(dst)
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot copy %s to %s", src, dst).WithDetail("file", src)
	}
	if err := out.Close(); err != nil {
		_ = l.fs.Remove(dst)
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot close %s", dst).WithDetail("file", dst)
	}
	return nil
}

func newListener(env plugin.Env, name string, options map[string]interface{}) (plugin.RowListener, error) {
	var opts Options
	if err := plugin.DecodeOptions(name, options, &opts); err != nil {
		return nil, err
	}
	if len(opts.Extensions) == 0 {
		return nil, plugin.ConfigError(name, "extensions", "must list at least one extension")
	}
	return NewListener(name, env.FS, opts), nil
}

func init() {
	plugin.MustRegisterListener(TypeName, newListener)
}
