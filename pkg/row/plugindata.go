package row

import (
	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/fields"
	"github.com/arthur-debert/imgrename/pkg/types"
)

// PluginDataRow is the read/write view of a row handed to validators and
// listeners. Fields not marked for task are invisible through it.
type PluginDataRow struct {
	row         *Row
	index       int
	destination string
}

// NewPluginDataRow wraps r. index is the row's position in its batch.
func NewPluginDataRow(r *Row, index int) *PluginDataRow {
	return &PluginDataRow{row: r, index: index}
}

// Row returns the underlying row
func (p *PluginDataRow) Row() *Row { return p.row }

// Index returns the row's position in its batch
func (p *PluginDataRow) Index() int { return p.index }

// Target returns the row's source
func (p *PluginDataRow) Target() types.Target { return p.row.target }

// TargetFile returns the absolute source path
func (p *PluginDataRow) TargetFile() string { return p.row.target.Path() }

// RelativePath returns the source path relative to its scan root
func (p *PluginDataRow) RelativePath() string { return p.row.target.RelativePath() }

// Destination returns the destination path, "" before it has been derived
func (p *PluginDataRow) Destination() string { return p.destination }

// SetDestination records the destination path for later listeners
func (p *PluginDataRow) SetDestination(path string) { p.destination = path }

func (p *PluginDataRow) visible(name string) (fields.DataField, bool) {
	f, ok := p.row.FieldByName(name)
	if !ok || !f.IsMarkedForTask() {
		return nil, false
	}
	return f, true
}

// CoreValue returns a task-visible field's core value, "" otherwise
func (p *PluginDataRow) CoreValue(name string) string {
	if f, ok := p.visible(name); ok {
		return f.CoreValue()
	}
	return ""
}

// DataField returns a task-visible field
func (p *PluginDataRow) DataField(name string) (fields.DataField, error) {
	f, ok := p.visible(name)
	if !ok {
		return nil, errors.Newf(errors.ErrFieldNotFound, "field %q is not available to plug-ins", name).
			WithDetail("field", name).
			WithDetail("file", p.TargetFile())
	}
	return f, nil
}

func (p *PluginDataRow) pluginField(name string) (*fields.PluginData, error) {
	f, err := p.DataField(name)
	if err != nil {
		return nil, err
	}
	pd, ok := f.(*fields.PluginData)
	if !ok {
		return nil, errors.Newf(errors.ErrFieldType, "field %q is a %s field, not plug-in data", name, f.Kind()).
			WithDetail("field", name).
			WithDetail("kind", string(f.Kind()))
	}
	return pd, nil
}

// PluginDataValue returns the value of a plug-in data field
func (p *PluginDataRow) PluginDataValue(name string) (string, error) {
	pd, err := p.pluginField(name)
	if err != nil {
		return "", err
	}
	return pd.CoreValue(), nil
}

// SetPluginDataValue stores v in a plug-in data field. Any other field kind is an error.
func (p *PluginDataRow) SetPluginDataValue(name, v string) error {
	pd, err := p.pluginField(name)
	if err != nil {
		return err
	}
	pd.SetPluginValue(v)
	return nil
}

// TaskFields returns the top-level fields marked for task, in order
func (p *PluginDataRow) TaskFields() []fields.DataField {
	var out []fields.DataField
	for _, f := range p.row.fields {
		if f.IsMarkedForTask() {
			out = append(out, f)
		}
	}
	return out
}

// Values returns the core values of task-visible fields keyed by display name
func (p *PluginDataRow) Values() map[string]string {
	out := make(map[string]string)
	for name, f := range p.row.byName {
		if f.IsMarkedForTask() {
			out[name] = f.CoreValue()
		}
	}
	return out
}
