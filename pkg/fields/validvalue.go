package fields

import (
	"strings"

	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/types"
)

// NoneValue is the sentinel option that stands for "no selection"
var NoneValue = ValidValue{Value: "", Display: "none"}

// ValidValue is one selectable option
type ValidValue struct {
	Value   string
	Display string
}

// ParseValidValue accepts "value" or "value=Display"
func ParseValidValue(s string) ValidValue {
	if i := strings.Index(s, "="); i > 0 {
		return ValidValue{Value: s[:i], Display: s[i+1:]}
	}
	return ValidValue{Value: s, Display: s}
}

// Choice is a field restricted to a configured list of values
type Choice struct {
	base
	values   []ValidValue
	selected string
}

// NewChoice creates a valid-value field
func NewChoice(attrs Attributes, values []ValidValue) *Choice {
	f := &Choice{base: base{attrs: attrs}, values: append([]ValidValue(nil), values...)}
	if f.isValid(attrs.Default) {
		f.selected = attrs.Default
	}
	return f
}

func (f *Choice) Kind() Kind            { return KindValidValue }
func (f *Choice) CoreValue() string     { return f.selected }
func (f *Choice) FileNameValue() string { return f.attrs.Affix.Wrap(f.selected) }

// Options lists the selectable entries. The "none" sentinel is present exactly
// when the field is not required.
func (f *Choice) Options() []ValidValue {
	opts := make([]ValidValue, 0, len(f.values)+1)
	if !f.attrs.Required {
		opts = append(opts, NoneValue)
	}
	return append(opts, f.values...)
}

// SetRequired toggles the required flag; a required field loses the sentinel option
func (f *Choice) SetRequired(required bool) {
	f.attrs.Required = required
}

// SetValue selects v, which must be one of the configured values. "" clears
// the selection.
func (f *Choice) SetValue(v string) error {
	if err := f.checkEditable(); err != nil {
		return err
	}
	if v != "" && !f.isValid(v) {
		return errors.Newf(errors.ErrFieldInvalid, "%q is not a valid value for %s", v, f.attrs.Name).
			WithDetail("field", f.attrs.Name).
			WithDetail("value", v)
	}
	f.selected = v
	return nil
}

func (f *Choice) isValid(v string) bool {
	if v == "" {
		return false
	}
	for _, vv := range f.values {
		if vv.Value == v {
			return true
		}
	}
	return false
}

func (f *Choice) Verify() bool {
	if f.attrs.Required && f.selected == "" {
		return f.fail(f.requiredMessage())
	}
	return f.pass()
}

func (f *Choice) Init(target types.Target) {
	if f.selected == "" {
		if v := f.initialValue(target); f.isValid(v) {
			f.selected = v
		}
	}
}

func (f *Choice) NewInstance() DataField {
	clone := *f
	clone.values = append([]ValidValue(nil), f.values...)
	clone.errMsg = ""
	return &clone
}
