// Package sidecar writes a metadata file next to every renamed image,
// recording the field values that produced its name.
//
//	[[listeners]]
//	type = "sidecar"
//	[listeners.options]
//	format = "xml"   # or "yaml"
package sidecar

import (
	"context"
	"sort"
	"time"

	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/filesystem"
	"github.com/arthur-debert/imgrename/pkg/plugin"
	"github.com/arthur-debert/imgrename/pkg/row"
	"github.com/arthur-debert/imgrename/pkg/types"
	"github.com/beevik/etree"
	"gopkg.in/yaml.v3"
)

// TypeName is the plug-in type used in configuration
const TypeName = "sidecar"

// Format is the sidecar file format
type Format string

const (
	FormatXML  Format = "xml"
	FormatYAML Format = "yaml"
)

// Options configures the listener
type Options struct {
	Format Format `mapstructure:"format"`
}

// Record is the content of one sidecar file
type Record struct {
	Source      string            `yaml:"source"`
	Destination string            `yaml:"destination"`
	User        string            `yaml:"user"`
	Session     string            `yaml:"session"`
	Renamed     time.Time         `yaml:"renamed"`
	Fields      map[string]string `yaml:"fields"`
}

// Listener writes sidecars on END_ROW_SUCCESS
type Listener struct {
	name   string
	fs     types.FS
	format Format
	now    func() time.Time
}

// NewListener creates a sidecar writer
func NewListener(name string, fsys types.FS, format Format) *Listener {
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	if format == "" {
		format = FormatXML
	}
	return &Listener{name: name, fs: fsys, format: format, now: time.Now}
}

func (l *Listener) Name() string { return l.name }

// Path returns the sidecar path for a destination file
func (l *Listener) Path(destination string) string {
	return destination + "." + string(l.format)
}

// ProcessEvent writes the sidecar once the image is in place
func (l *Listener) ProcessEvent(_ context.Context, s *plugin.Session, e plugin.Event, r *row.PluginDataRow) (*row.PluginDataRow, error) {
	if e != plugin.EventEndRowSuccess {
		return nil, nil
	}

	rec := Record{
		Source:      r.TargetFile(),
		Destination: r.Destination(),
		User:        s.User,
		Session:     s.ID,
		Renamed:     l.now().UTC().Truncate(time.Second),
		Fields:      r.Values(),
	}

	var data []byte
	var err error
	switch l.format {
	case FormatYAML:
		data, err = yaml.Marshal(rec)
	default:
		data, err = encodeXML(rec)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInternal, "cannot encode sidecar for %s", rec.Destination).
			WithDetail("file", rec.Destination)
	}

	path := l.Path(rec.Destination)
	if err := l.fs.WriteFile(path, data, 0644); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "cannot write sidecar %s", path).
			WithDetail("plugin", l.name).
			WithDetail("file", path)
	}
	s.Logger.Debug().Str("plugin", l.name).Str("path", path).Msg("sidecar written")
	return nil, nil
}

func encodeXML(rec Record) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	image := doc.CreateElement("image")
	image.CreateAttr("source", rec.Source)
	image.CreateAttr("destination", rec.Destination)
	image.CreateElement("user").SetText(rec.User)
	image.CreateElement("session").SetText(rec.Session)
	image.CreateElement("renamed").SetText(rec.Renamed.Format(time.RFC3339))

	fieldsEl := image.CreateElement("fields")
	names := make([]string, 0, len(rec.Fields))
	for n := range rec.Fields {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		f := fieldsEl.CreateElement("field")
		f.CreateAttr("name", n)
		f.SetText(rec.Fields[n])
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

// DecodeXML reads a sidecar written in the XML format
func DecodeXML(data []byte) (Record, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return Record{}, errors.Wrap(err, errors.ErrInvalidInput, "cannot parse sidecar")
	}
	image := doc.SelectElement("image")
	if image == nil {
		return Record{}, errors.New(errors.ErrInvalidInput, "sidecar has no image element")
	}
	rec := Record{
		Source:      image.SelectAttrValue("source", ""),
		Destination: image.SelectAttrValue("destination", ""),
		Fields:      make(map[string]string),
	}
	if el := image.SelectElement("user"); el != nil {
		rec.User = el.Text()
	}
	if el := image.SelectElement("session"); el != nil {
		rec.Session = el.Text()
	}
	if el := image.SelectElement("renamed"); el != nil {
		if t, err := time.Parse(time.RFC3339, el.Text()); err == nil {
			rec.Renamed = t
		}
	}
	for _, f := range image.FindElements("./fields/field") {
		rec.Fields[f.SelectAttrValue("name", "")] = f.Text()
	}
	return rec, nil
}

func newListener(env plugin.Env, name string, options map[string]interface{}) (plugin.RowListener, error) {
	var opts Options
	if err := plugin.DecodeOptions(name, options, &opts); err != nil {
		return nil, err
	}
	switch opts.Format {
	case "", FormatXML, FormatYAML:
	default:
		return nil, plugin.ConfigError(name, "format", "must be %q or %q, got %q", FormatXML, FormatYAML, opts.Format)
	}
	return NewListener(name, env.FS, opts.Format), nil
}

func init() {
	plugin.MustRegisterListener(TypeName, newListener)
}
