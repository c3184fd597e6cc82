package fields

import (
	"time"

	"github.com/arthur-debert/imgrename/pkg/types"
)

// DateSource selects the instant a DatePattern field formats
type DateSource string

const (
	// DateFromTarget formats the source file's modification time
	DateFromTarget DateSource = "target"
	// DateFromNow formats the time the field is initialised
	DateFromNow DateSource = "now"
)

// DatePattern formats a date with a Go time layout
type DatePattern struct {
	base
	layout string
	source DateSource
	now    func() time.Time
	value  string
}

// NewDatePattern creates a date field. An empty layout defaults to 20060102.
func NewDatePattern(attrs Attributes, layout string, source DateSource) *DatePattern {
	if layout == "" {
		layout = "20060102"
	}
	if source == "" {
		source = DateFromTarget
	}
	return &DatePattern{base: base{attrs: attrs}, layout: layout, source: source, now: time.Now}
}

func (f *DatePattern) Kind() Kind            { return KindDate }
func (f *DatePattern) CoreValue() string     { return f.value }
func (f *DatePattern) FileNameValue() string { return f.attrs.Affix.Wrap(f.value) }
func (f *DatePattern) Verify() bool          { return f.pass() }

// Layout returns the configured time layout
func (f *DatePattern) Layout() string { return f.layout }

// SetValue overrides the derived date when the field is editable
func (f *DatePattern) SetValue(v string) error {
	if err := f.checkEditable(); err != nil {
		return err
	}
	f.value = v
	return nil
}

func (f *DatePattern) Init(target types.Target) {
	var when time.Time
	switch f.source {
	case DateFromNow:
		when = f.now()
	default:
		when = target.ModTime()
	}
	if when.IsZero() {
		f.value = ""
		return
	}
	f.value = when.Format(f.layout)
}

func (f *DatePattern) NewInstance() DataField {
	clone := *f
	clone.value = ""
	clone.errMsg = ""
	return &clone
}
