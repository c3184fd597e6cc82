package fields

import (
	"cmp"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/arthur-debert/imgrename/pkg/types"
)

// VerifiedText is free text constrained by a regular expression
type VerifiedText struct {
	base
	pattern *regexp.Regexp
	// whole is pattern anchored at both ends
	whole *regexp.Regexp
	value string
}

// NewVerifiedText creates a text field that must fully match pattern.
// A nil pattern accepts anything.
func NewVerifiedText(attrs Attributes, pattern *regexp.Regexp) *VerifiedText {
	f := &VerifiedText{base: base{attrs: attrs}, pattern: pattern, value: attrs.Default}
	if pattern != nil {
		f.whole = regexp.MustCompile(`^(?:` + pattern.String() + `)$`)
	}
	return f
}

func (f *VerifiedText) Kind() Kind            { return KindVerifiedText }
func (f *VerifiedText) CoreValue() string     { return f.value }
func (f *VerifiedText) FileNameValue() string { return f.attrs.Affix.Wrap(f.value) }

func (f *VerifiedText) SetValue(v string) error {
	if err := f.checkEditable(); err != nil {
		return err
	}
	f.value = v
	return nil
}

func (f *VerifiedText) Verify() bool {
	if f.value == "" {
		if f.attrs.Required {
			return f.fail(f.requiredMessage())
		}
		return f.pass()
	}
	if f.whole != nil && !f.whole.MatchString(f.value) {
		return f.fail(fmt.Sprintf("%s value %q does not match the pattern %s", f.attrs.Name, f.value, f.pattern))
	}
	return f.pass()
}

func (f *VerifiedText) Init(target types.Target) {
	if f.value == "" {
		f.value = f.initialValue(target)
	}
}

func (f *VerifiedText) NewInstance() DataField {
	clone := *f
	clone.errMsg = ""
	return &clone
}

// VerifiedRange is text that parses into an ordered value within optional
// inclusive bounds.
type VerifiedRange[T cmp.Ordered] struct {
	base
	text string
	min  *T
	max  *T
	kind Kind
	// valueName names the expected value type in error messages
	valueName string
	// valueOf parses text; nil with no error means "no value"
	valueOf func(string) (*T, error)
	format  func(T) string
}

func (f *VerifiedRange[T]) Kind() Kind            { return f.kind }
func (f *VerifiedRange[T]) CoreValue() string     { return f.text }
func (f *VerifiedRange[T]) FileNameValue() string { return f.attrs.Affix.Wrap(f.text) }

// Bounds returns the configured minimum and maximum, nil when unbounded
func (f *VerifiedRange[T]) Bounds() (min, max *T) { return f.min, f.max }

// Value parses the current text
func (f *VerifiedRange[T]) Value() (*T, error) { return f.valueOf(f.text) }

func (f *VerifiedRange[T]) SetValue(v string) error {
	if err := f.checkEditable(); err != nil {
		return err
	}
	f.text = strings.TrimSpace(v)
	return nil
}

func (f *VerifiedRange[T]) Verify() bool {
	v, err := f.valueOf(f.text)
	if err != nil {
		return f.fail(fmt.Sprintf("%s: expected %s but found %q", f.attrs.Name, f.valueName, f.text))
	}
	if v == nil {
		if f.attrs.Required {
			return f.fail(f.requiredMessage())
		}
		return f.pass()
	}

	var problems []string
	if f.min != nil && *v < *f.min {
		problems = append(problems, "less than the minimum "+f.format(*f.min))
	}
	if f.max != nil && *v > *f.max {
		problems = append(problems, "greater than the maximum "+f.format(*f.max))
	}
	if len(problems) > 0 {
		return f.fail(fmt.Sprintf("%s value %s is %s", f.attrs.Name, f.format(*v), strings.Join(problems, " and ")))
	}
	return f.pass()
}

func (f *VerifiedRange[T]) Init(target types.Target) {
	if f.text == "" {
		f.text = f.initialValue(target)
	}
}

func (f *VerifiedRange[T]) NewInstance() DataField {
	clone := *f
	clone.errMsg = ""
	return &clone
}

// NewVerifiedInteger creates a whole-number field bounded by min and max (either may be nil)
func NewVerifiedInteger(attrs Attributes, min, max *int64) *VerifiedRange[int64] {
	return &VerifiedRange[int64]{
		base:      base{attrs: attrs},
		text:      attrs.Default,
		min:       min,
		max:       max,
		kind:      KindVerifiedInteger,
		valueName: "an integer",
		valueOf: func(s string) (*int64, error) {
			if s == "" {
				return nil, nil
			}
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, err
			}
			return &n, nil
		},
		format: func(n int64) string { return strconv.FormatInt(n, 10) },
	}
}

// NewVerifiedDecimal creates a decimal field bounded by min and max (either may be nil)
func NewVerifiedDecimal(attrs Attributes, min, max *float64) *VerifiedRange[float64] {
	return &VerifiedRange[float64]{
		base:      base{attrs: attrs},
		text:      attrs.Default,
		min:       min,
		max:       max,
		kind:      KindVerifiedDecimal,
		valueName: "a decimal number",
		valueOf: func(s string) (*float64, error) {
			if s == "" {
				return nil, nil
			}
			n, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, err
			}
			if math.IsNaN(n) || math.IsInf(n, 0) {
				return nil, fmt.Errorf("%q is not a finite number", s)
			}
			return &n, nil
		},
		format: func(n float64) string { return strconv.FormatFloat(n, 'g', -1, 64) },
	}
}
