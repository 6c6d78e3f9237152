package descriptor_test

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-prefs/pkg/descriptor"
)

func TestNumeric_Bounds(t *testing.T) {
	d := descriptor.Numeric(descriptor.Min(0), descriptor.Max(10), descriptor.Step(0.5))

	cases := []struct {
		name  string
		value any
		valid bool
	}{
		{name: "below min", value: -1, valid: false},
		{name: "min inclusive", value: 0, valid: true},
		{name: "max inclusive", value: 10, valid: true},
		{name: "above max", value: 10.01, valid: false},
		{name: "string", value: "abc", valid: false},
		{name: "nan", value: math.NaN(), valid: false},
		{name: "inf", value: math.Inf(1), valid: false},
		{name: "int64", value: int64(3), valid: true},
		{name: "uint8", value: uint8(7), valid: true},
		{name: "nil", value: nil, valid: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := d.IsValid(tc.value); got != tc.valid {
				t.Fatalf("IsValid(%v) = %v, want %v", tc.value, got, tc.valid)
			}
		})
	}

	if step := d.StepHint(); step == nil || *step != 0.5 {
		t.Fatalf("expected step hint 0.5, got %v", step)
	}
}

func TestNumeric_NormalizeToFloat(t *testing.T) {
	got, err := descriptor.Numeric().Normalize(int32(4))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got != float64(4) {
		t.Fatalf("expected float64(4), got %#v", got)
	}
}

func TestText_Pattern(t *testing.T) {
	d := descriptor.MustTextPattern(`^[0-9]+$`)
	if !d.IsValid("123") {
		t.Fatalf("expected digits to match")
	}
	if d.IsValid("abc") {
		t.Fatalf("expected letters to be rejected")
	}
	if d.IsValid(12) {
		t.Fatalf("expected non-string to be rejected")
	}
	if d.Pattern() != `^[0-9]+$` {
		t.Fatalf("unexpected pattern %q", d.Pattern())
	}

	if _, err := descriptor.TextPattern("("); !errors.Is(err, descriptor.ErrInvalidPattern) {
		t.Fatalf("expected ErrInvalidPattern, got %v", err)
	}

	plain, err := descriptor.TextPattern("  ")
	if err != nil {
		t.Fatalf("blank pattern: %v", err)
	}
	if !plain.IsValid("anything") {
		t.Fatalf("blank pattern should accept any string")
	}
}

func TestBoolean(t *testing.T) {
	d := descriptor.Boolean()
	if !d.IsValid(true) || !d.IsValid(false) {
		t.Fatalf("booleans must be valid")
	}
	if d.IsValid("true") || d.IsValid(1) {
		t.Fatalf("non-booleans must be rejected")
	}
}

func TestEnumerated_Single(t *testing.T) {
	d := descriptor.Enumerated("light", "dark")
	if !d.IsValid("dark") {
		t.Fatalf("expected member to be valid")
	}
	if d.IsValid("blue") || d.IsValid([]string{"dark"}) {
		t.Fatalf("expected non-member to be rejected")
	}
	if d.Multiple() {
		t.Fatalf("single select reported as multiple")
	}
}

func TestEnumeratedMulti_Cardinality(t *testing.T) {
	d := descriptor.MustEnumeratedMulti([]string{"a", "b", "c"}, descriptor.MinItems(1), descriptor.MaxItems(2))

	cases := []struct {
		name  string
		value any
		valid bool
	}{
		{name: "empty below min", value: []string{}, valid: false},
		{name: "two allowed", value: []string{"a", "b"}, valid: true},
		{name: "three above max", value: []string{"a", "b", "c"}, valid: false},
		{name: "unknown element", value: []string{"x"}, valid: false},
		{name: "decoded json slice", value: []any{"c"}, valid: true},
		{name: "mixed json slice", value: []any{"a", 1}, valid: false},
		{name: "duplicates allowed", value: []string{"a", "a"}, valid: true},
		{name: "scalar", value: "a", valid: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := d.IsValid(tc.value); got != tc.valid {
				t.Fatalf("IsValid(%v) = %v, want %v", tc.value, got, tc.valid)
			}
		})
	}
}

func TestEnumeratedMulti_InvalidRange(t *testing.T) {
	cases := []struct {
		name string
		opts []descriptor.CardinalityOption
	}{
		{name: "min above length", opts: []descriptor.CardinalityOption{descriptor.MinItems(4)}},
		{name: "max below min", opts: []descriptor.CardinalityOption{descriptor.MinItems(2), descriptor.MaxItems(1)}},
		{name: "negative max", opts: []descriptor.CardinalityOption{descriptor.MaxItems(-1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := descriptor.EnumeratedMulti([]string{"a", "b", "c"}, tc.opts...)
			if !errors.Is(err, descriptor.ErrInvalidRange) {
				t.Fatalf("expected ErrInvalidRange, got %v", err)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	multi := descriptor.MustEnumeratedMulti([]string{"a", "b", "c"})
	if !multi.Equal([]string{"a", "b"}, []any{"b", "a"}) {
		t.Fatalf("multi selections should compare order-independently")
	}
	if multi.Equal([]string{"a", "a"}, []string{"a", "b"}) {
		t.Fatalf("multisets with different counts must differ")
	}

	num := descriptor.Numeric()
	if !num.Equal(5, 5.0) {
		t.Fatalf("numeric equality should ignore Go number types")
	}
	if !descriptor.Text().Equal("x", "x") || descriptor.Text().Equal("x", "y") {
		t.Fatalf("text equality mismatch")
	}
}

func TestNormalize_DoesNotAlias(t *testing.T) {
	d := descriptor.MustEnumeratedMulti([]string{"a", "b"})
	in := []string{"a"}
	out, err := d.Normalize(in)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	in[0] = "b"
	if diff := cmp.Diff([]string{"a"}, out); diff != "" {
		t.Fatalf("normalized value aliased input (-want +got):\n%s", diff)
	}
}

func TestZeroDescriptor(t *testing.T) {
	var d descriptor.Descriptor
	if !d.IsZero() {
		t.Fatalf("zero descriptor should report IsZero")
	}
	if d.IsValid(true) {
		t.Fatalf("zero descriptor must reject every value")
	}
}
