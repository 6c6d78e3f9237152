package descriptor

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var (
	// ErrInvalidRange reports malformed min/max cardinality bounds on a
	// multi-select descriptor.
	ErrInvalidRange = errors.New("descriptor: invalid min/max")
	// ErrInvalidPattern reports a text pattern that does not compile.
	ErrInvalidPattern = errors.New("descriptor: invalid pattern")
)

// Kind identifies one of the four descriptor variants.
type Kind uint8

const (
	kindUnset Kind = iota
	// KindBoolean accepts Go bool values.
	KindBoolean
	// KindText accepts strings, optionally constrained by a pattern.
	KindText
	// KindNumeric accepts finite numbers within optional inclusive bounds.
	KindNumeric
	// KindEnumerated accepts one (or, in multi mode, several) of a fixed set
	// of strings.
	KindEnumerated
)

// String returns the kind name used in manifests and error messages.
func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindText:
		return "text"
	case KindNumeric:
		return "number"
	case KindEnumerated:
		return "enum"
	default:
		return "unset"
	}
}

// Descriptor is an immutable validation and equality policy for a single
// settings entry. The zero value describes nothing and is rejected by the
// registry.
type Descriptor struct {
	kind Kind

	pattern *regexp.Regexp

	min  *float64
	max  *float64
	step *float64

	values   []string
	multiple bool
	minItems *int
	maxItems *int
}

// Boolean returns a descriptor accepting true/false.
func Boolean() Descriptor {
	return Descriptor{kind: KindBoolean}
}

// Text returns a descriptor accepting any string.
func Text() Descriptor {
	return Descriptor{kind: KindText}
}

// TextPattern returns a text descriptor whose values must match expr. An empty
// expression behaves like Text.
func TextPattern(expr string) (Descriptor, error) {
	if strings.TrimSpace(expr) == "" {
		return Text(), nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, expr, err)
	}
	return Descriptor{kind: KindText, pattern: re}, nil
}

// MustTextPattern is TextPattern for patterns known at compile time.
func MustTextPattern(expr string) Descriptor {
	d, err := TextPattern(expr)
	if err != nil {
		panic(err)
	}
	return d
}

// NumericOption configures a numeric descriptor.
type NumericOption func(*Descriptor)

// Min sets the inclusive lower bound.
func Min(v float64) NumericOption {
	return func(d *Descriptor) { d.min = &v }
}

// Max sets the inclusive upper bound.
func Max(v float64) NumericOption {
	return func(d *Descriptor) { d.max = &v }
}

// Step sets the input increment hint. It is never enforced.
func Step(v float64) NumericOption {
	return func(d *Descriptor) { d.step = &v }
}

// Numeric returns a descriptor accepting finite numbers.
func Numeric(opts ...NumericOption) Descriptor {
	d := Descriptor{kind: KindNumeric}
	for _, opt := range opts {
		if opt != nil {
			opt(&d)
		}
	}
	return d
}

// Enumerated returns a single-select descriptor; values must be one of the
// listed strings.
func Enumerated(values ...string) Descriptor {
	return Descriptor{kind: KindEnumerated, values: slices.Clone(values)}
}

// CardinalityOption configures the selection count of a multi-select
// descriptor.
type CardinalityOption func(*Descriptor)

// MinItems sets the minimum number of selected values.
func MinItems(n int) CardinalityOption {
	return func(d *Descriptor) { d.minItems = &n }
}

// MaxItems sets the maximum number of selected values.
func MaxItems(n int) CardinalityOption {
	return func(d *Descriptor) { d.maxItems = &n }
}

// EnumeratedMulti returns a multi-select descriptor. It fails with
// ErrInvalidRange when the minimum exceeds the number of allowed values, when
// the maximum is below the minimum, or when either bound is negative.
func EnumeratedMulti(values []string, opts ...CardinalityOption) (Descriptor, error) {
	d := Descriptor{kind: KindEnumerated, values: slices.Clone(values), multiple: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&d)
		}
	}
	if d.minItems != nil {
		if *d.minItems < 0 || *d.minItems > len(d.values) {
			return Descriptor{}, fmt.Errorf("%w: min %d with %d values", ErrInvalidRange, *d.minItems, len(d.values))
		}
	}
	if d.maxItems != nil {
		if *d.maxItems < 0 {
			return Descriptor{}, fmt.Errorf("%w: max %d", ErrInvalidRange, *d.maxItems)
		}
		if d.minItems != nil && *d.maxItems < *d.minItems {
			return Descriptor{}, fmt.Errorf("%w: max %d below min %d", ErrInvalidRange, *d.maxItems, *d.minItems)
		}
	}
	return d, nil
}

// MustEnumeratedMulti is EnumeratedMulti for literal declarations.
func MustEnumeratedMulti(values []string, opts ...CardinalityOption) Descriptor {
	d, err := EnumeratedMulti(values, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Kind reports the descriptor variant.
func (d Descriptor) Kind() Kind { return d.kind }

// IsZero reports whether d was never constructed.
func (d Descriptor) IsZero() bool { return d.kind == kindUnset }

// Pattern returns the text pattern source, or "" when unconstrained.
func (d Descriptor) Pattern() string {
	if d.pattern == nil {
		return ""
	}
	return d.pattern.String()
}

// Bounds returns the numeric bounds; nil means unbounded.
func (d Descriptor) Bounds() (min, max *float64) {
	return cloneFloat(d.min), cloneFloat(d.max)
}

// StepHint returns the numeric step hint, if any.
func (d Descriptor) StepHint() *float64 { return cloneFloat(d.step) }

// Values returns a copy of the allowed enumerated values.
func (d Descriptor) Values() []string { return slices.Clone(d.values) }

// Multiple reports whether the descriptor is a multi-select.
func (d Descriptor) Multiple() bool { return d.multiple }

// Cardinality returns the multi-select bounds; nil means unbounded.
func (d Descriptor) Cardinality() (min, max *int) {
	return cloneInt(d.minItems), cloneInt(d.maxItems)
}

// String renders a compact description, e.g. "number[0,10]".
func (d Descriptor) String() string {
	switch d.kind {
	case KindText:
		if d.pattern != nil {
			return fmt.Sprintf("text(%s)", d.pattern.String())
		}
		return "text"
	case KindNumeric:
		return fmt.Sprintf("number[%s,%s]", boundString(d.min), boundString(d.max))
	case KindEnumerated:
		if d.multiple {
			return fmt.Sprintf("enum*{%s}", strings.Join(d.values, ","))
		}
		return fmt.Sprintf("enum{%s}", strings.Join(d.values, ","))
	default:
		return d.kind.String()
	}
}

func boundString(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(*v)
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
