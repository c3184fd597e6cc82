package row

import "github.com/rs/zerolog"

// MarshalZerologObject logs the row's source and field values so system
// errors carry the row contents.
func (r *Row) MarshalZerologObject(e *zerolog.Event) {
	e.Str("source", r.target.Path())
	values := zerolog.Dict()
	for _, f := range r.fields {
		values.Str(f.DisplayName(), f.CoreValue())
	}
	e.Dict("fields", values)
}
