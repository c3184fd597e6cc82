package fields

import "github.com/arthur-debert/imgrename/pkg/types"

// Static is free text. A non-editable static field with a default acts as a
// fixed separator or label in the destination name.
type Static struct {
	base
	value string
}

// NewStatic creates a static text field
func NewStatic(attrs Attributes) *Static {
	return &Static{base: base{attrs: attrs}, value: attrs.Default}
}

func (f *Static) Kind() Kind            { return KindStatic }
func (f *Static) CoreValue() string     { return f.value }
func (f *Static) FileNameValue() string { return f.attrs.Affix.Wrap(f.value) }
func (f *Static) Verify() bool          { return f.pass() }

func (f *Static) SetValue(v string) error {
	if err := f.checkEditable(); err != nil {
		return err
	}
	f.value = v
	return nil
}

func (f *Static) Init(target types.Target) {
	if f.value == "" {
		f.value = f.initialValue(target)
	}
}

func (f *Static) NewInstance() DataField {
	clone := *f
	clone.errMsg = ""
	return &clone
}
