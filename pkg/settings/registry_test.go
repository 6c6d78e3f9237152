package settings_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-prefs/pkg/descriptor"
	"github.com/goliatone/go-prefs/pkg/settings"
	"github.com/goliatone/go-prefs/pkg/snapshot"
)

type recorder struct {
	changes []snapshot.Snapshot
	errs    []error
}

func (r *recorder) options() []settings.Option {
	return []settings.Option{
		settings.WithChangeListener(func(s snapshot.Snapshot) { r.changes = append(r.changes, s) }),
		settings.WithErrorListener(func(err error) { r.errs = append(r.errs, err) }),
	}
}

func (r *recorder) reset() {
	r.changes = nil
	r.errs = nil
}

func newFixture(t *testing.T, opts ...settings.Option) (*settings.Registry, *recorder) {
	t.Helper()
	rec := &recorder{}
	reg := settings.New(append(rec.options(), opts...)...)
	reg.MustAdd("dark", descriptor.Boolean(), false, settings.WithLabel("Dark mode"))
	reg.MustAdd("n", descriptor.Numeric(descriptor.Min(0), descriptor.Max(10)), 3)
	reg.MustAdd("tags", descriptor.MustEnumeratedMulti([]string{"a", "b", "c"}, descriptor.MinItems(1), descriptor.MaxItems(2)), []string{"a"})
	reg.MustAdd("theme", descriptor.Enumerated("light", "dark"), "light", settings.WithRowClass("appearance"))
	rec.reset()
	return reg, rec
}

func TestAdd_StoresDefaultAndNotifies(t *testing.T) {
	rec := &recorder{}
	reg := settings.New(rec.options()...)
	if err := reg.Add("name", descriptor.Text(), "ada", settings.WithLabel("Your name")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(rec.changes) != 1 {
		t.Fatalf("expected one notification, got %d", len(rec.changes))
	}
	entry, ok := reg.Entry("name")
	if !ok {
		t.Fatalf("entry not found")
	}
	if entry.Value != "ada" || entry.Default != "ada" || entry.Label != "Your name" {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestAdd_Errors(t *testing.T) {
	reg := settings.New()
	if err := reg.Add("x", descriptor.Descriptor{}, nil); !errors.Is(err, settings.ErrMissingDescriptor) {
		t.Fatalf("expected ErrMissingDescriptor, got %v", err)
	}
	if err := reg.Add(snapshot.VersionKey, descriptor.Text(), ""); !errors.Is(err, settings.ErrReservedName) {
		t.Fatalf("expected ErrReservedName, got %v", err)
	}
	if err := reg.Add("  ", descriptor.Text(), ""); !errors.Is(err, settings.ErrReservedName) {
		t.Fatalf("expected ErrReservedName for blank name, got %v", err)
	}
	reg.MustAdd("x", descriptor.Text(), "")
	if err := reg.Add("x", descriptor.Text(), ""); !errors.Is(err, settings.ErrDuplicateEntry) {
		t.Fatalf("expected ErrDuplicateEntry, got %v", err)
	}
}

func TestAdd_InvalidDefaultIsReportedButStored(t *testing.T) {
	rec := &recorder{}
	reg := settings.New(rec.options()...)
	if err := reg.Add("n", descriptor.Numeric(descriptor.Max(5)), 50); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(rec.errs) != 1 {
		t.Fatalf("expected one error report, got %d", len(rec.errs))
	}
	var invalid *settings.InvalidValueError
	if !errors.As(rec.errs[0], &invalid) || !invalid.Default {
		t.Fatalf("expected default InvalidValueError, got %v", rec.errs[0])
	}
	if got, _ := reg.Get("n"); got != 50 {
		t.Fatalf("expected trusted default 50, got %v", got)
	}
}

func TestSet_ValidValuesRoundTripThroughSnapshot(t *testing.T) {
	reg, rec := newFixture(t)
	cases := []struct {
		name  string
		value any
	}{
		{"dark", true},
		{"n", 10},
		{"n", 0.5},
		{"tags", []string{"b", "a"}},
		{"theme", "dark"},
	}
	for _, tc := range cases {
		rec.reset()
		if err := reg.Set(tc.name, tc.value); err != nil {
			t.Fatalf("set %s=%v: %v", tc.name, tc.value, err)
		}
		if len(rec.changes) != 1 || len(rec.errs) != 0 {
			t.Fatalf("set %s: expected one change and no errors, got %d/%d", tc.name, len(rec.changes), len(rec.errs))
		}
		entry, _ := reg.Entry(tc.name)
		if !entry.Descriptor.Equal(tc.value, reg.ToSnapshot()[tc.name]) {
			t.Fatalf("snapshot[%s] = %v, want %v", tc.name, reg.ToSnapshot()[tc.name], tc.value)
		}
	}
}

func TestSet_RejectedValuesLeaveStateUntouched(t *testing.T) {
	reg, rec := newFixture(t)
	before := reg.ToSnapshot()

	cases := []struct {
		name  string
		value any
	}{
		{"n", -1},
		{"n", "abc"},
		{"tags", []string{}},
		{"tags", []string{"a", "b", "c"}},
		{"tags", []string{"x"}},
		{"theme", "sepia"},
		{"dark", "yes"},
	}
	for _, tc := range cases {
		rec.reset()
		err := reg.Set(tc.name, tc.value)
		if !errors.Is(err, settings.ErrInvalidValue) {
			t.Fatalf("set %s=%v: expected ErrInvalidValue, got %v", tc.name, tc.value, err)
		}
		if len(rec.errs) != 1 {
			t.Fatalf("set %s=%v: expected exactly one error report, got %d", tc.name, tc.value, len(rec.errs))
		}
		if len(rec.changes) != 0 {
			t.Fatalf("set %s=%v: change hook must not fire", tc.name, tc.value)
		}
	}
	if diff := cmp.Diff(before, reg.ToSnapshot()); diff != "" {
		t.Fatalf("state changed after rejected sets (-want +got):\n%s", diff)
	}
}

func TestSet_UnknownEntry(t *testing.T) {
	reg, rec := newFixture(t)
	if err := reg.Set("missing", 1); !errors.Is(err, settings.ErrUnknownEntry) {
		t.Fatalf("expected ErrUnknownEntry, got %v", err)
	}
	if len(rec.errs) != 0 || len(rec.changes) != 0 {
		t.Fatalf("unknown entry must not fire hooks")
	}
}

func TestSetMany_AllOrNothing(t *testing.T) {
	reg, rec := newFixture(t)
	err := reg.SetMany(
		settings.Assignment{Name: "dark", Value: true},
		settings.Assignment{Name: "n", Value: 20},
		settings.Assignment{Name: "theme", Value: "dark"},
	)
	if !errors.Is(err, settings.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if got, _ := reg.Get("dark"); got != false {
		t.Fatalf("dark must not be committed, got %v", got)
	}
	if len(rec.errs) != 1 || len(rec.changes) != 0 {
		t.Fatalf("expected 1 error and 0 changes, got %d/%d", len(rec.errs), len(rec.changes))
	}

	rec.reset()
	if err := reg.SetMany(
		settings.Assignment{Name: "dark", Value: true},
		settings.Assignment{Name: "theme", Value: "dark"},
	); err != nil {
		t.Fatalf("set many: %v", err)
	}
	if len(rec.changes) != 1 {
		t.Fatalf("expected one aggregate notification, got %d", len(rec.changes))
	}
	want := snapshot.Snapshot{"dark": true, "n": float64(3), "tags": []string{"a"}, "theme": "dark"}
	if diff := cmp.Diff(want, rec.changes[0]); diff != "" {
		t.Fatalf("notified snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdate(t *testing.T) {
	reg, rec := newFixture(t)

	if err := reg.Update("missing"); !errors.Is(err, settings.ErrUnknownEntry) {
		t.Fatalf("expected ErrUnknownEntry, got %v", err)
	}

	if err := reg.Update("n", settings.WithLabel("Volume")); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(rec.changes) != 1 {
		t.Fatalf("update must notify once, got %d", len(rec.changes))
	}

	rec.reset()
	if err := reg.Update("n", settings.WithDescriptor(descriptor.Numeric(descriptor.Max(100))), settings.WithDefault(50)); err != nil {
		t.Fatalf("update: %v", err)
	}
	entry, _ := reg.Entry("n")
	if entry.Default != float64(50) || entry.Label != "Volume" {
		t.Fatalf("unexpected entry after update %+v", entry)
	}
	if len(rec.errs) != 0 {
		t.Fatalf("unexpected errors: %v", rec.errs)
	}

	rec.reset()
	if err := reg.Update("n", settings.WithDefault(500)); err != nil {
		t.Fatalf("update: %v", err)
	}
	entry, _ = reg.Entry("n")
	if entry.Default != float64(50) {
		t.Fatalf("invalid default must be rejected, got %v", entry.Default)
	}
	if len(rec.errs) != 1 || len(rec.changes) != 1 {
		t.Fatalf("expected 1 error and 1 change, got %d/%d", len(rec.errs), len(rec.changes))
	}
}

func TestResetToDefault(t *testing.T) {
	reg, rec := newFixture(t)
	_ = reg.Set("dark", true)
	_ = reg.Set("tags", []string{"b", "c"})
	rec.reset()

	reg.ResetToDefault()
	if len(rec.changes) != 1 {
		t.Fatalf("expected one notification, got %d", len(rec.changes))
	}
	want := snapshot.Snapshot{"dark": false, "n": float64(3), "tags": []string{"a"}, "theme": "light"}
	if diff := cmp.Diff(want, reg.ToSnapshot()); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestListenersAreReplaced(t *testing.T) {
	reg := settings.New()
	reg.MustAdd("dark", descriptor.Boolean(), false)

	var first, second int
	reg.OnChange(func(snapshot.Snapshot) { first++ })
	reg.OnChange(func(snapshot.Snapshot) { second++ })
	_ = reg.Set("dark", true)
	if first != 0 || second != 1 {
		t.Fatalf("expected only the latest listener to fire, got %d/%d", first, second)
	}
}

func TestViews(t *testing.T) {
	reg, _ := newFixture(t)
	if diff := cmp.Diff([]string{"dark", "n", "tags", "theme"}, reg.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if reg.Len() != 4 {
		t.Fatalf("expected 4 entries, got %d", reg.Len())
	}
	if _, ok := reg.Version(); ok {
		t.Fatalf("unexpected version")
	}

	tags, _ := reg.Get("tags")
	tags.([]string)[0] = "mutated"
	if got, _ := reg.Get("tags"); got.([]string)[0] != "a" {
		t.Fatalf("Get must return a copy")
	}

	if err := reg.Bind("dark", "handle"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if h, ok := reg.Binding("dark"); !ok || h != "handle" {
		t.Fatalf("unexpected binding %v", h)
	}
	_ = reg.Bind("dark", nil)
	if _, ok := reg.Binding("dark"); ok {
		t.Fatalf("binding should be cleared")
	}
	if err := reg.Bind("missing", "x"); !errors.Is(err, settings.ErrUnknownEntry) {
		t.Fatalf("expected ErrUnknownEntry, got %v", err)
	}
}

func TestAccessor(t *testing.T) {
	reg, _ := newFixture(t)
	acc := reg.Accessor()

	if b, err := acc.Bool("dark"); err != nil || b {
		t.Fatalf("Bool = %v, %v", b, err)
	}
	if n, err := acc.Int("n"); err != nil || n != 3 {
		t.Fatalf("Int = %v, %v", n, err)
	}
	if s, err := acc.String("theme"); err != nil || s != "light" {
		t.Fatalf("String = %v, %v", s, err)
	}
	if tags, err := acc.Strings("tags"); err != nil || len(tags) != 1 {
		t.Fatalf("Strings = %v, %v", tags, err)
	}
	if _, err := acc.String("dark"); !errors.Is(err, settings.ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
	if _, err := acc.Float("missing"); !errors.Is(err, settings.ErrUnknownEntry) {
		t.Fatalf("expected ErrUnknownEntry, got %v", err)
	}
	if err := acc.Set("n", 7.5); err != nil {
		t.Fatalf("set: %v", err)
	}
	if f, _ := acc.Float("n"); f != 7.5 {
		t.Fatalf("Float = %v", f)
	}
}
