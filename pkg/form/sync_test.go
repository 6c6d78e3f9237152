package form_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-prefs/pkg/descriptor"
	"github.com/goliatone/go-prefs/pkg/form"
	"github.com/goliatone/go-prefs/pkg/settings"
	"github.com/goliatone/go-prefs/pkg/snapshot"
	"github.com/goliatone/go-prefs/pkg/testsupport"
)

func newRegistry(t *testing.T, rec *testsupport.Recorder) *settings.Registry {
	t.Helper()
	reg := settings.New(
		settings.WithChangeListener(rec.OnChange),
		settings.WithErrorListener(rec.OnError),
	)
	reg.MustAdd("dark-mode", descriptor.Boolean(), true, settings.WithLabel("Use the dark palette"), settings.WithRowClass("appearance"))
	reg.MustAdd("code", descriptor.MustTextPattern("^[0-9]+$"), "42")
	reg.MustAdd("volume", descriptor.Numeric(descriptor.Min(0), descriptor.Max(10), descriptor.Step(0.5)), 5, settings.WithRowClass("audio"))
	reg.MustAdd("theme", descriptor.Enumerated("light", "dark"), "dark", settings.WithRowClass("appearance"))
	reg.MustAdd("tags", descriptor.MustEnumeratedMulti([]string{"a", "b", "c"}, descriptor.MinItems(1), descriptor.MaxItems(2)), []string{"a", "c"})
	rec.Reset()
	return reg
}

func TestRender_BuildsRowsPerKind(t *testing.T) {
	rec := &testsupport.Recorder{}
	reg := newRegistry(t, rec)
	surface := testsupport.NewSurface()

	if err := form.New(reg, form.WithCapitalize()).Render(surface, false); err != nil {
		t.Fatalf("render: %v", err)
	}

	min, max, step := 0.0, 10.0, 0.5
	minItems, maxItems := 1, 2
	want := []form.Row{
		{Name: "dark-mode", Label: "Dark mode", Tooltip: "Use the dark palette", Class: "appearance", Kind: form.ControlCheckbox, Checked: true},
		{Name: "code", Label: "Code", Kind: form.ControlText, Text: "42", Pattern: "^[0-9]+$"},
		{Name: "volume", Label: "Volume", Class: "audio", Kind: form.ControlNumber, Text: "5", Min: &min, Max: &max, Step: &step},
		{Name: "theme", Label: "Theme", Class: "appearance", Kind: form.ControlSelect, Choices: []form.Choice{
			{Value: "light"}, {Value: "dark", Selected: true},
		}},
		{Name: "tags", Label: "Tags", Kind: form.ControlMultiSelect, MinItems: &minItems, MaxItems: &maxItems, Choices: []form.Choice{
			{Value: "a", Selected: true}, {Value: "b"}, {Value: "c", Selected: true},
		}},
	}
	if diff := cmp.Diff(want, surface.Rows()); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	if surface.Clears() != 1 {
		t.Fatalf("expected surface to be cleared once, got %d", surface.Clears())
	}
	for _, name := range reg.Names() {
		if _, ok := reg.Binding(name); !ok {
			t.Fatalf("expected %s to be bound", name)
		}
	}
	if len(rec.Changes) != 0 {
		t.Fatalf("render must not notify")
	}
}

func TestRender_Readonly(t *testing.T) {
	rec := &testsupport.Recorder{}
	reg := newRegistry(t, rec)
	surface := testsupport.NewSurface()

	if err := form.New(reg).Render(surface, true); err != nil {
		t.Fatalf("render: %v", err)
	}
	got := make(map[string]string)
	for _, row := range surface.Rows() {
		if row.Kind != form.ControlReadonly {
			t.Fatalf("expected readonly row for %s, got %s", row.Name, row.Kind)
		}
		got[row.Name] = row.Text
	}
	want := map[string]string{"dark-mode": "TRUE", "code": "42", "volume": "5", "theme": "dark", "tags": "a, c"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("readonly text mismatch (-want +got):\n%s", diff)
	}
	if _, ok := reg.Binding("code"); ok {
		t.Fatalf("readonly rows must stay unbound")
	}

	// Nothing is bound, so a read-back is an empty commit.
	if err := form.New(reg).ReadAll(surface); err != nil {
		t.Fatalf("read all: %v", err)
	}
}

func TestRender_Groups(t *testing.T) {
	rec := &testsupport.Recorder{}
	reg := newRegistry(t, rec)
	surface := testsupport.NewSurface()
	sync := form.New(reg, form.WithGroups(" Appearance "))

	if err := sync.Render(surface, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	var names []string
	for _, row := range surface.Rows() {
		names = append(names, row.Name)
	}
	if diff := cmp.Diff([]string{"dark-mode", "theme"}, names); diff != "" {
		t.Fatalf("grouped rows mismatch (-want +got):\n%s", diff)
	}

	surface.Control("theme").Select("light")
	if err := sync.ReadAll(nil); err != nil {
		t.Fatalf("read all: %v", err)
	}
	if got, _ := reg.Get("theme"); got != "light" {
		t.Fatalf("expected theme light, got %v", got)
	}
	if got, _ := reg.Get("volume"); got != float64(5) {
		t.Fatalf("filtered entry must be untouched, got %v", got)
	}
}

func TestRender_AppendFailure(t *testing.T) {
	reg := newRegistry(t, &testsupport.Recorder{})
	surface := testsupport.NewSurface().FailAppend("volume")
	err := form.New(reg).Render(surface, false)
	if !errors.Is(err, testsupport.ErrAppendFailed) {
		t.Fatalf("expected append failure, got %v", err)
	}
}

func TestReadAll_CommitsAllWithOneNotification(t *testing.T) {
	rec := &testsupport.Recorder{}
	reg := newRegistry(t, rec)
	surface := testsupport.NewSurface()
	sync := form.New(reg)
	if err := sync.Render(surface, false); err != nil {
		t.Fatalf("render: %v", err)
	}

	surface.Control("dark-mode").SetChecked(false)
	surface.Control("code").SetText("  007 ")
	surface.Control("volume").SetText(" 7.5")
	surface.Control("theme").Select("light")
	surface.Control("tags").Select("b")

	if err := sync.ReadAll(surface); err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(rec.Changes) != 1 {
		t.Fatalf("expected one notification, got %d", len(rec.Changes))
	}
	want := snapshot.Snapshot{
		"dark-mode": false,
		"code":      "007",
		"volume":    7.5,
		"theme":     "light",
		"tags":      []string{"b"},
	}
	testsupport.AssertSnapshot(t, want, rec.Last())
}

func TestReadAll_StopsAtFirstInvalidField(t *testing.T) {
	rec := &testsupport.Recorder{}
	reg := settings.New(settings.WithChangeListener(rec.OnChange), settings.WithErrorListener(rec.OnError))
	reg.MustAdd("code", descriptor.MustTextPattern("^[0-9]+$"), "1")
	reg.MustAdd("n", descriptor.Numeric(descriptor.Min(0), descriptor.Max(10)), 1)
	rec.Reset()

	surface := testsupport.NewSurface()
	sync := form.New(reg)
	if err := sync.Render(surface, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	surface.Control("code").Edit("abc")
	surface.Control("n").Edit("20")

	err := sync.ReadAll(nil)
	var verr *form.ValidationError
	if !errors.As(err, &verr) || !errors.Is(err, form.ErrValidation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "code" {
		t.Fatalf("expected failure on code, got %s", verr.Field)
	}
	if diff := cmp.Diff([]string{"code"}, surface.Focused()); diff != "" {
		t.Fatalf("focus mismatch (-want +got):\n%s", diff)
	}
	if got, _ := reg.Get("n"); got != float64(1) {
		t.Fatalf("numeric field must not be committed, got %v", got)
	}
	if len(rec.Changes) != 0 || len(rec.Errors) != 1 {
		t.Fatalf("expected 0 changes and 1 error, got %d/%d", len(rec.Changes), len(rec.Errors))
	}
}

func TestReadAll_RejectsBadInput(t *testing.T) {
	cases := []struct {
		name  string
		field string
		edit  func(*testsupport.Surface)
	}{
		{"not a number", "volume", func(s *testsupport.Surface) { s.Control("volume").Edit("abc") }},
		{"empty number", "volume", func(s *testsupport.Surface) { s.Control("volume").Edit("  ") }},
		{"nan", "volume", func(s *testsupport.Surface) { s.Control("volume").Edit("NaN") }},
		{"above max", "volume", func(s *testsupport.Surface) { s.Control("volume").Edit("11") }},
		{"no selection", "theme", func(s *testsupport.Surface) { s.Control("theme").Select() }},
		{"too many tags", "tags", func(s *testsupport.Surface) { s.Control("tags").Select("a", "b", "c") }},
		{"no tags", "tags", func(s *testsupport.Surface) { s.Control("tags").Select() }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &testsupport.Recorder{}
			reg := newRegistry(t, rec)
			surface := testsupport.NewSurface()
			sync := form.New(reg)
			if err := sync.Render(surface, false); err != nil {
				t.Fatalf("render: %v", err)
			}
			before := reg.ToSnapshot()
			tc.edit(surface)

			err := sync.ReadAll(surface)
			var verr *form.ValidationError
			if !errors.As(err, &verr) || verr.Field != tc.field {
				t.Fatalf("expected ValidationError on %s, got %v", tc.field, err)
			}
			if surface.Control(tc.field).FocusCount() != 1 {
				t.Fatalf("expected %s to be focused once", tc.field)
			}
			testsupport.AssertSnapshot(t, before, reg.ToSnapshot())
		})
	}
}

func TestReadAll_WithoutSurface(t *testing.T) {
	reg := newRegistry(t, &testsupport.Recorder{})
	if err := form.New(reg).ReadAll(nil); !errors.Is(err, form.ErrNoSurface) {
		t.Fatalf("expected ErrNoSurface, got %v", err)
	}
}

func TestAutoSave_OneReadAllPerEdit(t *testing.T) {
	rec := &testsupport.Recorder{}
	reg := newRegistry(t, rec)
	surface := testsupport.NewSurface()
	if err := form.New(reg, form.WithAutoSave()).Render(surface, false); err != nil {
		t.Fatalf("render: %v", err)
	}

	surface.Control("volume").SetText("9")
	if len(rec.Changes) != 1 {
		t.Fatalf("expected exactly one read-back, got %d notifications", len(rec.Changes))
	}
	if got := rec.Last()["volume"]; got != float64(9) {
		t.Fatalf("expected volume 9, got %v", got)
	}
}

func TestAutoSave_ErrorHandler(t *testing.T) {
	rec := &testsupport.Recorder{}
	reg := newRegistry(t, rec)
	surface := testsupport.NewSurface()

	var failures []error
	sync := form.New(reg, form.WithAutoSave(), form.WithAutoSaveErrorHandler(func(err error) {
		failures = append(failures, err)
	}))
	if err := sync.Render(surface, false); err != nil {
		t.Fatalf("render: %v", err)
	}

	surface.Control("code").SetText("x1")
	if len(failures) != 1 || !errors.Is(failures[0], form.ErrValidation) {
		t.Fatalf("expected one validation failure, got %v", failures)
	}
	if len(rec.Changes) != 0 {
		t.Fatalf("invalid auto-save must not commit")
	}
}

func TestCapitalize(t *testing.T) {
	cases := map[string]string{
		"":            "",
		"volume":      "Volume",
		"dark-mode":   "Dark mode",
		"über-cool-x": "Über cool x",
		"already Up":  "Already Up",
	}
	for in, want := range cases {
		if got := form.Capitalize(in); got != want {
			t.Fatalf("Capitalize(%q) = %q, want %q", in, got, want)
		}
	}
}
