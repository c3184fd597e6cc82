package fields

import (
	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/types"
)

// Kind names a DataField variant
type Kind string

const (
	KindStatic          Kind = "static"
	KindValidValue      Kind = "valid-value"
	KindVerifiedText    Kind = "verified-text"
	KindVerifiedInteger Kind = "verified-integer"
	KindVerifiedDecimal Kind = "verified-decimal"
	KindDate            Kind = "date"
	KindFileName        Kind = "file-name"
	KindFileExtension   Kind = "file-extension"
	KindRelativePath    Kind = "relative-path"
	KindTargetName      Kind = "target-name"
	KindPluginData      Kind = "plugin-data"
	KindGroup           Kind = "group"
)

// DataField is one attribute of a row
type DataField interface {
	DisplayName() string
	Kind() Kind

	// UI behaviour only
	IsEditable() bool
	IsCopyable() bool

	// IsMarkedForTask controls whether the field is visible to plug-ins
	IsMarkedForTask() bool
	IsRequired() bool

	// CoreValue is never nil; "" when unset
	CoreValue() string
	// FileNameValue is CoreValue wrapped in the configured prefix and suffix,
	// or "" when CoreValue is empty
	FileNameValue() string
	SetValue(v string) error

	// Verify is idempotent; it only records the message returned by ErrorMessage
	Verify() bool
	ErrorMessage() string

	// Init derives target-based values and applies defaults to blank fields
	Init(target types.Target)
	// NewInstance copies configuration and entered values; derived values are cleared
	NewInstance() DataField
}

// Affix wraps non-empty values in a prefix and suffix
type Affix struct {
	Prefix string
	Suffix string
}

// Wrap applies the affix to v, leaving empty values empty
func (a Affix) Wrap(v string) string {
	if v == "" {
		return ""
	}
	return a.Prefix + v + a.Suffix
}

// Attributes is the configuration shared by every variant
type Attributes struct {
	Name            string
	Affix           Affix
	Editable        bool
	Copyable        bool
	MarkedForTask   bool
	Required        bool
	Default         string
	DefaultProperty string
}

// base carries Attributes plus the last verification message
type base struct {
	attrs  Attributes
	errMsg string
}

func (b *base) DisplayName() string   { return b.attrs.Name }
func (b *base) IsEditable() bool      { return b.attrs.Editable }
func (b *base) IsCopyable() bool      { return b.attrs.Copyable }
func (b *base) IsMarkedForTask() bool { return b.attrs.MarkedForTask }
func (b *base) IsRequired() bool      { return b.attrs.Required }
func (b *base) ErrorMessage() string  { return b.errMsg }

// Attributes returns a copy of the field configuration
func (b *base) Attributes() Attributes { return b.attrs }

func (b *base) pass() bool {
	b.errMsg = ""
	return true
}

func (b *base) fail(msg string) bool {
	b.errMsg = msg
	return false
}

// initialValue picks the value a blank field starts with: the target property
// named by DefaultProperty, then the configured Default.
func (b *base) initialValue(target types.Target) string {
	if b.attrs.DefaultProperty != "" {
		if v, ok := target.Property(b.attrs.DefaultProperty); ok && v != "" {
			return v
		}
	}
	return b.attrs.Default
}

func (b *base) checkEditable() error {
	if !b.attrs.Editable {
		return errors.Newf(errors.ErrFieldType, "field %q is not editable", b.attrs.Name).
			WithDetail("field", b.attrs.Name)
	}
	return nil
}

func (b *base) requiredMessage() string {
	return b.attrs.Name + " is a required field"
}
