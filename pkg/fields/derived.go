package fields

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/types"
)

// derived holds a value computed from the target in Init. It cannot be set
// directly and always verifies.
type derived struct {
	base
	value string
}

func (f *derived) CoreValue() string     { return f.value }
func (f *derived) FileNameValue() string { return f.attrs.Affix.Wrap(f.value) }
func (f *derived) Verify() bool          { return f.pass() }

func (f *derived) SetValue(string) error {
	return errors.Newf(errors.ErrFieldType, "field %q is derived from the source file and cannot be set", f.attrs.Name).
		WithDetail("field", f.attrs.Name)
}

// FileName is the source file name without its extension. With a capture
// pattern only the first submatch (or the whole match) is kept.
type FileName struct {
	derived
	capture *regexp.Regexp
}

// NewFileName creates a file name field
func NewFileName(attrs Attributes, capture *regexp.Regexp) *FileName {
	return &FileName{derived: derived{base: base{attrs: attrs}}, capture: capture}
}

func (f *FileName) Kind() Kind { return KindFileName }

func (f *FileName) Init(target types.Target) {
	name := target.Name()
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if f.capture == nil {
		f.value = stem
		return
	}
	m := f.capture.FindStringSubmatch(stem)
	switch {
	case m == nil:
		f.value = ""
	case len(m) > 1:
		f.value = m[1]
	default:
		f.value = m[0]
	}
}

func (f *FileName) NewInstance() DataField {
	clone := *f
	clone.value = ""
	clone.errMsg = ""
	return &clone
}

// FileExtension is the source extension including the leading dot
type FileExtension struct {
	derived
	lower bool
}

// NewFileExtension creates an extension field; lower folds the extension to lower case
func NewFileExtension(attrs Attributes, lower bool) *FileExtension {
	return &FileExtension{derived: derived{base: base{attrs: attrs}}, lower: lower}
}

func (f *FileExtension) Kind() Kind { return KindFileExtension }

func (f *FileExtension) Init(target types.Target) {
	ext := filepath.Ext(target.Name())
	if f.lower {
		ext = strings.ToLower(ext)
	}
	f.value = ext
}

func (f *FileExtension) NewInstance() DataField {
	clone := *f
	clone.value = ""
	clone.errMsg = ""
	return &clone
}

// RelativePath is the source directory relative to the scan root
type RelativePath struct {
	derived
}

// NewRelativePath creates a relative path field
func NewRelativePath(attrs Attributes) *RelativePath {
	return &RelativePath{derived: derived{base: base{attrs: attrs}}}
}

func (f *RelativePath) Kind() Kind { return KindRelativePath }

func (f *RelativePath) Init(target types.Target) {
	f.value = target.RelativeDir()
}

func (f *RelativePath) NewInstance() DataField {
	clone := *f
	clone.value = ""
	clone.errMsg = ""
	return &clone
}

// TargetName is the full source file name
type TargetName struct {
	derived
}

// NewTargetName creates a target name field
func NewTargetName(attrs Attributes) *TargetName {
	return &TargetName{derived: derived{base: base{attrs: attrs}}}
}

func (f *TargetName) Kind() Kind { return KindTargetName }

func (f *TargetName) Init(target types.Target) {
	f.value = target.Name()
}

func (f *TargetName) NewInstance() DataField {
	clone := *f
	clone.value = ""
	clone.errMsg = ""
	return &clone
}
