package plugin

import (
	"sort"

	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/fields"
	"github.com/arthur-debert/imgrename/pkg/registry"
	"github.com/arthur-debert/imgrename/pkg/tokens"
	"github.com/arthur-debert/imgrename/pkg/types"
	"github.com/go-viper/mapstructure/v2"
)

// Env carries what a factory may use while building a plug-in
type Env struct {
	FS     types.FS
	Fields []fields.DataField
}

// ValidatorFactory builds a validator from its configured options
type ValidatorFactory func(env Env, name string, options map[string]interface{}) (RowValidator, error)

// ListenerFactory builds a listener from its configured options
type ListenerFactory func(env Env, name string, options map[string]interface{}) (RowListener, error)

var (
	validatorFactories = registry.New[ValidatorFactory]("validator type")
	listenerFactories  = registry.New[ListenerFactory]("listener type")
)

// MustRegisterValidator registers a validator type; used from init()
func MustRegisterValidator(typeName string, f ValidatorFactory) {
	registry.MustRegister(validatorFactories, typeName, f)
}

// MustRegisterListener registers a listener type; used from init()
func MustRegisterListener(typeName string, f ListenerFactory) {
	registry.MustRegister(listenerFactories, typeName, f)
}

// ValidatorTypes lists the registered validator types
func ValidatorTypes() []string { return validatorFactories.List() }

// ListenerTypes lists the registered listener types
func ListenerTypes() []string { return listenerFactories.List() }

// DecodeOptions decodes a plug-in's option map into out. Unknown options and
// type mismatches are configuration errors naming the plug-in.
func DecodeOptions(name string, options map[string]interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "plug-in %s: cannot build option decoder", name)
	}
	if err := dec.Decode(options); err != nil {
		return errors.Wrapf(err, errors.ErrPluginConfig, "plug-in %s: invalid options", name).
			WithDetail("plugin", name)
	}
	return nil
}

// ConfigError reports a missing or invalid plug-in property
func ConfigError(plugin, property, format string, args ...interface{}) *errors.RenameError {
	return errors.Newf(errors.ErrPluginConfig, "plug-in %s: property '%s' "+format, append([]interface{}{plugin, property}, args...)...).
		WithDetail("plugin", plugin).
		WithDetail("property", property)
}

// FieldNames returns every configured field name, group children included
func (e Env) FieldNames() []string {
	var names []string
	var walk func([]fields.DataField)
	walk = func(fs []fields.DataField) {
		for _, f := range fs {
			names = append(names, f.DisplayName())
			if g, ok := f.(*fields.Group); ok {
				walk(g.Children())
			}
		}
	}
	walk(e.Fields)
	sort.Strings(names)
	return names
}

// Template compiles a template option and checks every referenced field is
// configured. An empty value is reported as a missing property.
func (e Env) Template(plugin, property, source string) (*tokens.Template, error) {
	if source == "" {
		return nil, ConfigError(plugin, property, "is required")
	}
	t, err := tokens.Compile(source)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrPluginConfig, "plug-in %s: property '%s' is not a valid template", plugin, property).
			WithDetail("plugin", plugin).
			WithDetail("property", property).
			WithDetail("value", source)
	}
	if e.Fields == nil {
		return t, nil
	}
	known := make(map[string]bool)
	for _, n := range e.FieldNames() {
		known[n] = true
	}
	for _, n := range t.Names() {
		if !known[n] {
			return nil, ConfigError(plugin, property, "references unknown field %q", n).
				WithDetail("value", source)
		}
	}
	return t, nil
}

// PluginDataField checks that name is a configured plug-in data field
func (e Env) PluginDataField(plugin, property, name string) error {
	if name == "" {
		return ConfigError(plugin, property, "is required")
	}
	if e.Fields == nil {
		return nil
	}
	var found fields.DataField
	var walk func([]fields.DataField)
	walk = func(fs []fields.DataField) {
		for _, f := range fs {
			if found == nil && f.DisplayName() == name {
				found = f
			}
			if g, ok := f.(*fields.Group); ok {
				walk(g.Children())
			}
		}
	}
	walk(e.Fields)
	if found == nil {
		return ConfigError(plugin, property, "names unknown field %q", name)
	}
	if found.Kind() != fields.KindPluginData {
		return ConfigError(plugin, property, "names %s field %q; a plugin-data field is required", found.Kind(), name)
	}
	if !found.IsMarkedForTask() {
		return ConfigError(plugin, property, "names field %q which is not marked for task", name)
	}
	return nil
}
