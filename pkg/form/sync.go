package form

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-prefs/pkg/descriptor"
	"github.com/goliatone/go-prefs/pkg/settings"
)

// Sync renders registry entries onto a Surface and reads edits back.
type Sync struct {
	registry *settings.Registry

	autoSave        bool
	capitalize      bool
	groups          map[string]struct{}
	onAutoSaveError func(error)
	logger          *slog.Logger

	surface Surface
}

// New returns a Sync bound to reg.
func New(reg *settings.Registry, opts ...Option) *Sync {
	s := &Sync{
		registry: reg,
		logger:   discardLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// AutoSave reports whether edits commit immediately.
func (s *Sync) AutoSave() bool {
	return s.autoSave
}

// Registry returns the registry the Sync writes to.
func (s *Sync) Registry() *settings.Registry {
	return s.registry
}

// Render clears surface and renders every entry in declaration order.
// Entries outside the configured groups are skipped and unbound. The surface
// is remembered for ReadAll(nil).
func (s *Sync) Render(surface Surface, readonly bool) error {
	if surface == nil {
		return ErrNoSurface
	}
	surface.Clear()
	s.surface = surface

	for _, entry := range s.registry.Entries() {
		if !matchesGroups(s.groups, entry.RowClass) {
			if err := s.registry.Bind(entry.Name, nil); err != nil {
				return err
			}
			continue
		}
		if _, err := s.RenderEntry(entry, surface, readonly); err != nil {
			return err
		}
	}
	return nil
}

// RenderEntry appends the row for entry and binds the returned control.
// Readonly rows are left unbound so ReadAll skips them.
func (s *Sync) RenderEntry(entry settings.Entry, surface Surface, readonly bool) (Control, error) {
	if surface == nil {
		return nil, ErrNoSurface
	}
	row := s.BuildRow(entry, readonly)
	control, err := surface.AppendRow(row)
	if err != nil {
		return nil, fmt.Errorf("form: render %s: %w", entry.Name, err)
	}

	if readonly || control == nil {
		return control, s.registry.Bind(entry.Name, nil)
	}
	if err := s.registry.Bind(entry.Name, control); err != nil {
		return nil, err
	}
	if s.autoSave {
		control.OnChange(func() {
			if err := s.ReadAll(surface); err != nil {
				s.autoSaveFailed(err)
			}
		})
	}
	return control, nil
}

// BuildRow describes entry for a surface without rendering it.
func (s *Sync) BuildRow(entry settings.Entry, readonly bool) Row {
	d := entry.Descriptor
	row := Row{
		Name:    entry.Name,
		Label:   entry.Name,
		Tooltip: entry.Label,
		Class:   entry.RowClass,
	}
	if s.capitalize {
		row.Label = Capitalize(entry.Name)
	}

	if readonly {
		row.Kind = ControlReadonly
		row.Text = displayText(d, entry.Value)
		return row
	}

	switch d.Kind() {
	case descriptor.KindBoolean:
		row.Kind = ControlCheckbox
		row.Checked, _ = entry.Value.(bool)
	case descriptor.KindText:
		row.Kind = ControlText
		row.Pattern = d.Pattern()
		row.Text = valueText(entry.Value)
	case descriptor.KindNumeric:
		row.Kind = ControlNumber
		row.Min, row.Max = d.Bounds()
		row.Step = d.StepHint()
		row.Text = valueText(entry.Value)
	case descriptor.KindEnumerated:
		row.Kind = ControlSelect
		selected := selectedSet(entry.Value)
		if d.Multiple() {
			row.Kind = ControlMultiSelect
			row.MinItems, row.MaxItems = d.Cardinality()
		}
		for _, value := range d.Values() {
			_, ok := selected[value]
			row.Choices = append(row.Choices, Choice{Value: value, Selected: ok})
		}
	}
	return row
}

// ReadAll reads every bound control in declaration order. The first invalid
// field stops the pass: its control is focused, the error is reported through
// the registry and returned as a *ValidationError, and nothing is committed.
// Otherwise all values are committed with one change notification.
//
// A nil surface falls back to the one last passed to Render.
func (s *Sync) ReadAll(surface Surface) error {
	if surface == nil {
		surface = s.surface
	}
	if surface == nil {
		return ErrNoSurface
	}

	var assignments []settings.Assignment
	for _, entry := range s.registry.Entries() {
		control, ok := s.control(entry.Name, surface)
		if !ok {
			continue
		}
		value, err := readControl(entry.Descriptor, control)
		if err == nil {
			err = entry.Descriptor.Validate(value)
		}
		if err != nil {
			verr := &ValidationError{Field: entry.Name, Value: value, Reason: err.Error()}
			control.Focus()
			s.registry.ReportError(verr)
			return verr
		}
		assignments = append(assignments, settings.Assignment{Name: entry.Name, Value: value})
	}
	return s.registry.SetMany(assignments...)
}

func (s *Sync) control(name string, surface Surface) (Control, bool) {
	bound, ok := s.registry.Binding(name)
	if !ok {
		return nil, false
	}
	control, ok := bound.(Control)
	if !ok {
		return nil, false
	}
	if current, ok := surface.Lookup(name); ok && current != nil {
		return current, true
	}
	return control, true
}

func (s *Sync) autoSaveFailed(err error) {
	if s.onAutoSaveError != nil {
		s.onAutoSaveError(err)
		return
	}
	s.logger.Warn("form auto-save rejected", "error", err)
}

func readControl(d descriptor.Descriptor, control Control) (any, error) {
	switch d.Kind() {
	case descriptor.KindBoolean:
		return control.Checked(), nil
	case descriptor.KindText:
		return strings.TrimSpace(control.Text()), nil
	case descriptor.KindNumeric:
		raw := strings.TrimSpace(control.Text())
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) {
			return raw, fmt.Errorf("%q is not a number", raw)
		}
		return f, nil
	case descriptor.KindEnumerated:
		selected := control.Selected()
		if d.Multiple() {
			if selected == nil {
				selected = []string{}
			}
			return selected, nil
		}
		if len(selected) == 0 {
			return "", nil
		}
		return selected[0], nil
	default:
		return nil, fmt.Errorf("unsupported descriptor %s", d)
	}
}

func displayText(d descriptor.Descriptor, value any) string {
	switch v := value.(type) {
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case []string:
		return strings.Join(v, ", ")
	}
	if d.Kind() == descriptor.KindEnumerated && d.Multiple() {
		return strings.Join(toStringList(value), ", ")
	}
	return valueText(value)
}

func valueText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func selectedSet(value any) map[string]struct{} {
	out := make(map[string]struct{})
	switch v := value.(type) {
	case string:
		out[v] = struct{}{}
	default:
		for _, item := range toStringList(value) {
			out[item] = struct{}{}
		}
	}
	return out
}

func toStringList(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return nil
	}
}
