package fields

import (
	"strings"

	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/types"
)

// Group is an ordered set of child fields presented as one. Its core value is
// the concatenation of the children's file name values.
type Group struct {
	base
	children []DataField
}

// NewGroup creates a group over children
func NewGroup(attrs Attributes, children []DataField) *Group {
	return &Group{base: base{attrs: attrs}, children: children}
}

func (f *Group) Kind() Kind { return KindGroup }

// Children returns the child fields in order
func (f *Group) Children() []DataField { return f.children }

func (f *Group) CoreValue() string {
	var b strings.Builder
	for _, c := range f.children {
		b.WriteString(c.FileNameValue())
	}
	return b.String()
}

func (f *Group) FileNameValue() string { return f.attrs.Affix.Wrap(f.CoreValue()) }

func (f *Group) SetValue(string) error {
	return errors.Newf(errors.ErrFieldType, "group %q cannot be set directly; set its children", f.attrs.Name).
		WithDetail("field", f.attrs.Name)
}

func (f *Group) Verify() bool {
	for _, c := range f.children {
		if !c.Verify() {
			return f.fail(c.ErrorMessage())
		}
	}
	if f.attrs.Required && f.CoreValue() == "" {
		return f.fail(f.requiredMessage())
	}
	return f.pass()
}

func (f *Group) Init(target types.Target) {
	for _, c := range f.children {
		c.Init(target)
	}
}

func (f *Group) NewInstance() DataField {
	clone := *f
	clone.errMsg = ""
	clone.children = make([]DataField, len(f.children))
	for i, c := range f.children {
		clone.children[i] = c.NewInstance()
	}
	return &clone
}
