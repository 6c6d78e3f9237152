package testsupport

import (
	"errors"
	"slices"

	"github.com/goliatone/go-prefs/pkg/form"
)

// ErrAppendFailed is returned by a Surface configured with FailAppend.
var ErrAppendFailed = errors.New("testsupport: append rejected")

// Surface is an in-memory form.Surface. Tests drive edits through the
// returned controls, which fire change listeners like a real UI would.
type Surface struct {
	rows     []form.Row
	controls map[string]*Control
	clears   int
	failOn   string
}

var _ form.Surface = (*Surface)(nil)

// NewSurface returns an empty surface.
func NewSurface() *Surface {
	return &Surface{controls: make(map[string]*Control)}
}

// FailAppend makes AppendRow fail for the named row.
func (s *Surface) FailAppend(name string) *Surface {
	s.failOn = name
	return s
}

// Clear implements form.Surface.
func (s *Surface) Clear() {
	s.rows = nil
	s.controls = make(map[string]*Control)
	s.clears++
}

// AppendRow implements form.Surface. Readonly rows produce no control.
func (s *Surface) AppendRow(row form.Row) (form.Control, error) {
	if s.failOn != "" && row.Name == s.failOn {
		return nil, ErrAppendFailed
	}
	s.rows = append(s.rows, row)
	if row.Kind == form.ControlReadonly {
		return nil, nil
	}
	control := newControl(row)
	s.controls[row.Name] = control
	return control, nil
}

// Lookup implements form.Surface.
func (s *Surface) Lookup(name string) (form.Control, bool) {
	control, ok := s.controls[name]
	if !ok {
		return nil, false
	}
	return control, true
}

// Rows returns the rows appended since the last Clear.
func (s *Surface) Rows() []form.Row {
	return slices.Clone(s.rows)
}

// Clears reports how many times Clear was called.
func (s *Surface) Clears() int {
	return s.clears
}

// Control returns the concrete control for name, or nil.
func (s *Surface) Control(name string) *Control {
	return s.controls[name]
}

// Focused returns the names of controls that received focus, oldest first.
func (s *Surface) Focused() []string {
	var out []string
	for _, row := range s.rows {
		if c := s.controls[row.Name]; c != nil && c.focused > 0 {
			out = append(out, row.Name)
		}
	}
	return out
}

// Control is the in-memory form.Control.
type Control struct {
	name     string
	checked  bool
	text     string
	selected []string
	listener func()
	focused  int
}

var _ form.Control = (*Control)(nil)

func newControl(row form.Row) *Control {
	c := &Control{name: row.Name, checked: row.Checked, text: row.Text}
	for _, choice := range row.Choices {
		if choice.Selected {
			c.selected = append(c.selected, choice.Value)
		}
	}
	return c
}

func (c *Control) Name() string       { return c.name }
func (c *Control) Checked() bool      { return c.checked }
func (c *Control) Text() string       { return c.text }
func (c *Control) Selected() []string { return slices.Clone(c.selected) }
func (c *Control) OnChange(fn func()) { c.listener = fn }
func (c *Control) Focus()             { c.focused++ }

// FocusCount reports how many times Focus was called.
func (c *Control) FocusCount() int { return c.focused }

// SetChecked simulates toggling a checkbox.
func (c *Control) SetChecked(v bool) {
	c.checked = v
	c.changed()
}

// SetText simulates typing into a text or number input.
func (c *Control) SetText(v string) {
	c.text = v
	c.changed()
}

// Select simulates choosing options; it replaces the current selection.
func (c *Control) Select(values ...string) {
	c.selected = slices.Clone(values)
	c.changed()
}

// Edit changes the text without firing the change listener, as a field
// that has been typed into but not yet committed.
func (c *Control) Edit(v string) {
	c.text = v
}

func (c *Control) changed() {
	if c.listener != nil {
		c.listener()
	}
}
