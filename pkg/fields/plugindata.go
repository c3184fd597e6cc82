package fields

import "github.com/arthur-debert/imgrename/pkg/types"

// PluginData holds a value computed by a plug-in during the row pipeline,
// such as a rank or sequence number handed out by an external registry.
type PluginData struct {
	base
	value string
}

// NewPluginData creates a plug-in data field
func NewPluginData(attrs Attributes) *PluginData {
	return &PluginData{base: base{attrs: attrs}, value: attrs.Default}
}

func (f *PluginData) Kind() Kind            { return KindPluginData }
func (f *PluginData) CoreValue() string     { return f.value }
func (f *PluginData) FileNameValue() string { return f.attrs.Affix.Wrap(f.value) }
func (f *PluginData) Verify() bool          { return f.pass() }

// SetValue is the user-facing setter and honours the editable flag
func (f *PluginData) SetValue(v string) error {
	if err := f.checkEditable(); err != nil {
		return err
	}
	f.value = v
	return nil
}

// SetPluginValue is used by plug-ins and ignores the editable flag
func (f *PluginData) SetPluginValue(v string) {
	f.value = v
}

func (f *PluginData) Init(target types.Target) {
	if f.value == "" {
		f.value = f.initialValue(target)
	}
}

func (f *PluginData) NewInstance() DataField {
	clone := *f
	clone.errMsg = ""
	return &clone
}
