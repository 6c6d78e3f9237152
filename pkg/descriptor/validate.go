package descriptor

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
)

// IsValid reports whether value satisfies the descriptor. It never panics.
func (d Descriptor) IsValid(value any) bool {
	return d.Validate(value) == nil
}

// Validate returns nil when value satisfies the descriptor, otherwise an error
// describing the first violated rule.
func (d Descriptor) Validate(value any) error {
	_, err := d.Normalize(value)
	return err
}

// Normalize validates value and converts it to the canonical Go type for the
// descriptor: bool, string, float64 or []string. The returned slice never
// aliases the input.
func (d Descriptor) Normalize(value any) (any, error) {
	switch d.kind {
	case KindBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("expected boolean, got %T", value)
		}
		return b, nil

	case KindText:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", value)
		}
		if d.pattern != nil && !d.pattern.MatchString(s) {
			return nil, fmt.Errorf("does not match pattern %s", d.pattern.String())
		}
		return s, nil

	case KindNumeric:
		f, err := toFloat(value)
		if err != nil {
			return nil, err
		}
		if d.min != nil && f < *d.min {
			return nil, fmt.Errorf("%v is less than minimum %v", f, *d.min)
		}
		if d.max != nil && f > *d.max {
			return nil, fmt.Errorf("%v is greater than maximum %v", f, *d.max)
		}
		return f, nil

	case KindEnumerated:
		if d.multiple {
			return d.normalizeMulti(value)
		}
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", value)
		}
		if !slices.Contains(d.values, s) {
			return nil, fmt.Errorf("%q is not one of %v", s, d.values)
		}
		return s, nil

	default:
		return nil, errors.New("descriptor is not set")
	}
}

func (d Descriptor) normalizeMulti(value any) (any, error) {
	items, err := toStrings(value)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []string{}
	}
	if d.minItems != nil && len(items) < *d.minItems {
		return nil, fmt.Errorf("%d selected, minimum is %d", len(items), *d.minItems)
	}
	if d.maxItems != nil && len(items) > *d.maxItems {
		return nil, fmt.Errorf("%d selected, maximum is %d", len(items), *d.maxItems)
	}
	for _, item := range items {
		if !slices.Contains(d.values, item) {
			return nil, fmt.Errorf("%q is not one of %v", item, d.values)
		}
	}
	return items, nil
}

// Equal compares two values under the descriptor's equality policy. Multi
// selections compare as unordered multisets; everything else compares by
// canonical value. Values the descriptor cannot normalize fall back to deep
// equality.
func (d Descriptor) Equal(a, b any) bool {
	if d.kind == KindEnumerated && d.multiple {
		left, errA := toStrings(a)
		right, errB := toStrings(b)
		if errA != nil || errB != nil {
			return reflect.DeepEqual(a, b)
		}
		return sameMultiset(left, right)
	}
	if d.kind == KindNumeric {
		left, errA := toFloat(a)
		right, errB := toFloat(b)
		if errA == nil && errB == nil {
			return left == right
		}
	}
	return reflect.DeepEqual(a, b)
}

func sameMultiset(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	left := slices.Clone(a)
	right := slices.Clone(b)
	slices.Sort(left)
	slices.Sort(right)
	return slices.Equal(left, right)
}

func toFloat(value any) (float64, error) {
	var f float64
	switch n := value.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected number, got %q", n.String())
		}
		f = parsed
	default:
		return 0, fmt.Errorf("expected number, got %T", value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected finite number, got %v", f)
	}
	return f, nil
}

func toStrings(value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return slices.Clone(v), nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("element %d: expected string, got %T", i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected list of strings, got %T", value)
	}
}
