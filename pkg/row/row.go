package row

import (
	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/fields"
	"github.com/arthur-debert/imgrename/pkg/types"
)

// Row is a Target plus a fixed, ordered list of fields
type Row struct {
	target types.Target
	fields []fields.DataField
	byName map[string]fields.DataField
}

// New builds a row for target from a field template. The template fields are
// not modified.
func New(target types.Target, template []fields.DataField) *Row {
	fs := make([]fields.DataField, len(template))
	for i, f := range template {
		fs[i] = f.NewInstance()
		fs[i].Init(target)
	}
	return newRow(target, fs)
}

func newRow(target types.Target, fs []fields.DataField) *Row {
	r := &Row{target: target, fields: fs, byName: make(map[string]fields.DataField)}
	r.index(fs)
	return r
}

// index maps display names to fields, descending into groups. The first field
// with a given name wins.
func (r *Row) index(fs []fields.DataField) {
	for _, f := range fs {
		if _, ok := r.byName[f.DisplayName()]; !ok {
			r.byName[f.DisplayName()] = f
		}
		if g, ok := f.(*fields.Group); ok {
			r.index(g.Children())
		}
	}
}

// Target returns the row's source
func (r *Row) Target() types.Target { return r.target }

// Len returns the number of top-level fields
func (r *Row) Len() int { return len(r.fields) }

// Field returns the field at position i
func (r *Row) Field(i int) fields.DataField { return r.fields[i] }

// Fields returns the top-level fields in order
func (r *Row) Fields() []fields.DataField {
	out := make([]fields.DataField, len(r.fields))
	copy(out, r.fields)
	return out
}

// FieldByName looks a field up by display name, including group children
func (r *Row) FieldByName(name string) (fields.DataField, bool) {
	f, ok := r.byName[name]
	return f, ok
}

// CoreValue returns the named field's core value, "" for unknown names.
// It makes a Row usable as a tokens.Resolver.
func (r *Row) CoreValue(name string) string {
	if f, ok := r.byName[name]; ok {
		return f.CoreValue()
	}
	return ""
}

// Set assigns a user value to the named field
func (r *Row) Set(name, value string) error {
	f, ok := r.byName[name]
	if !ok {
		return errors.Newf(errors.ErrFieldNotFound, "row %s has no field %q", r.target.RelativePath(), name).
			WithDetail("field", name).
			WithDetail("file", r.target.Path())
	}
	return f.SetValue(value)
}

// Verify runs every field's verification and returns the failure messages
// in field order. An empty result means the row is valid.
func (r *Row) Verify() []string {
	var problems []string
	for _, f := range r.fields {
		if !f.Verify() {
			problems = append(problems, f.ErrorMessage())
		}
	}
	return problems
}

// Clone returns an independent copy of the row for the same target
func (r *Row) Clone() *Row {
	return r.CloneFor(r.target)
}

// CloneFor copies the row's configuration and entered values onto a new
// target. Derived values are recomputed from the new target.
func (r *Row) CloneFor(target types.Target) *Row {
	fs := make([]fields.DataField, len(r.fields))
	for i, f := range r.fields {
		fs[i] = f.NewInstance()
		fs[i].Init(target)
	}
	return newRow(target, fs)
}

// CopyValuesFrom copies the values of copyable fields from src. Fields are
// matched by display name; fields missing from src are left alone.
func (r *Row) CopyValuesFrom(src *Row) error {
	for _, f := range r.fields {
		s, ok := src.FieldByName(f.DisplayName())
		if !ok {
			continue
		}
		if err := copyField(f, s); err != nil {
			return err
		}
	}
	return nil
}

func copyField(dst, src fields.DataField) error {
	if dg, ok := dst.(*fields.Group); ok {
		sg, ok := src.(*fields.Group)
		if !ok {
			return nil
		}
		sc := sg.Children()
		for i, c := range dg.Children() {
			if i < len(sc) {
				if err := copyField(c, sc[i]); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if !dst.IsCopyable() || !dst.IsEditable() {
		return nil
	}
	return dst.SetValue(src.CoreValue())
}

// Values returns every field's core value keyed by display name
func (r *Row) Values() map[string]string {
	out := make(map[string]string, len(r.byName))
	for name, f := range r.byName {
		out[name] = f.CoreValue()
	}
	return out
}
