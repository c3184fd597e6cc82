package fields

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/arthur-debert/imgrename/pkg/errors"
)

// Spec is the configuration of one field as it appears in the config file
type Spec struct {
	Kind            string   `koanf:"kind" toml:"kind"`
	Name            string   `koanf:"name" toml:"name"`
	Prefix          string   `koanf:"prefix" toml:"prefix,omitempty"`
	Suffix          string   `koanf:"suffix" toml:"suffix,omitempty"`
	Required        bool     `koanf:"required" toml:"required,omitempty"`
	Editable        *bool    `koanf:"editable" toml:"editable,omitempty"`
	Copyable        *bool    `koanf:"copyable" toml:"copyable,omitempty"`
	MarkForTask     *bool    `koanf:"mark_for_task" toml:"mark_for_task,omitempty"`
	Values          []string `koanf:"values" toml:"values,omitempty"`
	Pattern         string   `koanf:"pattern" toml:"pattern,omitempty"`
	Min             string   `koanf:"min" toml:"min,omitempty"`
	Max             string   `koanf:"max" toml:"max,omitempty"`
	Layout          string   `koanf:"layout" toml:"layout,omitempty"`
	Source          string   `koanf:"source" toml:"source,omitempty"`
	Lowercase       bool     `koanf:"lowercase" toml:"lowercase,omitempty"`
	Default         string   `koanf:"default" toml:"default,omitempty"`
	DefaultProperty string   `koanf:"default_property" toml:"default_property,omitempty"`
	Children        []Spec   `koanf:"children" toml:"children,omitempty"`
}

// isDerived reports kinds whose value comes from the target rather than the user
func isDerived(k Kind) bool {
	switch k {
	case KindFileName, KindFileExtension, KindRelativePath, KindTargetName, KindDate, KindGroup:
		return true
	}
	return false
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func (s Spec) attributes() Attributes {
	kind := Kind(s.Kind)
	userValue := !isDerived(kind) && kind != KindPluginData
	return Attributes{
		Name:            s.Name,
		Affix:           Affix{Prefix: s.Prefix, Suffix: s.Suffix},
		Editable:        boolOr(s.Editable, userValue),
		Copyable:        boolOr(s.Copyable, userValue),
		MarkedForTask:   boolOr(s.MarkForTask, true),
		Required:        s.Required,
		Default:         s.Default,
		DefaultProperty: s.DefaultProperty,
	}
}

func specError(s Spec, format string, args ...interface{}) *errors.RenameError {
	return errors.Newf(errors.ErrConfigValid, format, args...).
		WithDetail("field", s.Name).
		WithDetail("kind", s.Kind)
}

// Build creates the DataField described by s
func Build(s Spec) (DataField, error) {
	if strings.TrimSpace(s.Name) == "" {
		return nil, specError(s, "field of kind %q has no name", s.Kind)
	}
	attrs := s.attributes()

	switch Kind(s.Kind) {
	case KindStatic, "":
		return NewStatic(attrs), nil

	case KindValidValue:
		if len(s.Values) == 0 {
			return nil, specError(s, "field %q: property 'values' must list at least one value", s.Name)
		}
		values := make([]ValidValue, len(s.Values))
		for i, v := range s.Values {
			values[i] = ParseValidValue(v)
		}
		return NewChoice(attrs, values), nil

	case KindVerifiedText:
		re, err := compilePattern(s)
		if err != nil {
			return nil, err
		}
		return NewVerifiedText(attrs, re), nil

	case KindVerifiedInteger:
		min, err := parseIntBound(s, "min", s.Min)
		if err != nil {
			return nil, err
		}
		max, err := parseIntBound(s, "max", s.Max)
		if err != nil {
			return nil, err
		}
		if min != nil && max != nil && *min > *max {
			return nil, specError(s, "field %q: min %d is greater than max %d", s.Name, *min, *max)
		}
		return NewVerifiedInteger(attrs, min, max), nil

	case KindVerifiedDecimal:
		min, err := parseFloatBound(s, "min", s.Min)
		if err != nil {
			return nil, err
		}
		max, err := parseFloatBound(s, "max", s.Max)
		if err != nil {
			return nil, err
		}
		if min != nil && max != nil && *min > *max {
			return nil, specError(s, "field %q: min %s is greater than max %s", s.Name, s.Min, s.Max)
		}
		return NewVerifiedDecimal(attrs, min, max), nil

	case KindDate:
		source := DateSource(s.Source)
		if source != "" && source != DateFromTarget && source != DateFromNow {
			return nil, specError(s, "field %q: property 'source' must be %q or %q, got %q", s.Name, DateFromTarget, DateFromNow, s.Source)
		}
		return NewDatePattern(attrs, s.Layout, source), nil

	case KindFileName:
		re, err := compilePattern(s)
		if err != nil {
			return nil, err
		}
		return NewFileName(attrs, re), nil

	case KindFileExtension:
		return NewFileExtension(attrs, s.Lowercase), nil

	case KindRelativePath:
		return NewRelativePath(attrs), nil

	case KindTargetName:
		return NewTargetName(attrs), nil

	case KindPluginData:
		return NewPluginData(attrs), nil

	case KindGroup:
		if len(s.Children) == 0 {
			return nil, specError(s, "group %q has no children", s.Name)
		}
		children, err := BuildAll(s.Children)
		if err != nil {
			return nil, err
		}
		return NewGroup(attrs, children), nil
	}

	return nil, specError(s, "field %q has unknown kind %q", s.Name, s.Kind)
}

// BuildAll builds every spec in order and rejects duplicate display names
// anywhere in the tree, group children included.
func BuildAll(specs []Spec) ([]DataField, error) {
	if err := checkNames(specs, make(map[string]bool, len(specs))); err != nil {
		return nil, err
	}
	out := make([]DataField, 0, len(specs))
	for _, s := range specs {
		f, err := Build(s)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func checkNames(specs []Spec, seen map[string]bool) error {
	for _, s := range specs {
		if seen[s.Name] {
			return specError(s, "duplicate field name %q", s.Name)
		}
		seen[s.Name] = true
		if err := checkNames(s.Children, seen); err != nil {
			return err
		}
	}
	return nil
}

func compilePattern(s Spec) (*regexp.Regexp, error) {
	if s.Pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(s.Pattern)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigValid, "field %q: property 'pattern' is not a valid regular expression", s.Name).
			WithDetail("field", s.Name).
			WithDetail("pattern", s.Pattern)
	}
	return re, nil
}

func parseIntBound(s Spec, prop, raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil, specError(s, "field %q: property '%s' must be an integer, got %q", s.Name, prop, raw)
	}
	return &n, nil
}

func parseFloatBound(s Spec, prop, raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, specError(s, "field %q: property '%s' must be a number, got %q", s.Name, prop, raw)
	}
	return &n, nil
}
