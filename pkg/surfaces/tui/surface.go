package tui

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-prefs/pkg/form"
)

// Surface prompts for settings in a terminal. Rows are collected by a
// form.Sync; Edit walks them with the prompt driver and Print lists them.
type Surface struct {
	driver PromptDriver
	theme  Theme
	logger *slog.Logger

	rows     []form.Row
	controls map[string]*Control
	focus    string
	pending  error
}

var _ form.Surface = (*Surface)(nil)

// New returns a Surface using the survey driver unless overridden.
func New(opts ...Option) *Surface {
	s := &Surface{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		controls: make(map[string]*Control),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(nil)
	}
	return s
}

// Clear implements form.Surface.
func (s *Surface) Clear() {
	s.rows = nil
	s.controls = make(map[string]*Control)
	s.focus = ""
}

// AppendRow implements form.Surface. Readonly rows have no control.
func (s *Surface) AppendRow(row form.Row) (form.Control, error) {
	if strings.TrimSpace(row.Name) == "" {
		return nil, errors.New("tui: row name is required")
	}
	if slices.ContainsFunc(s.rows, func(r form.Row) bool { return r.Name == row.Name }) {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateRow, row.Name)
	}
	s.rows = append(s.rows, row)
	if row.Kind == form.ControlReadonly {
		return nil, nil
	}
	control := newControl(s, row)
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

// Focused returns the name of the control that last requested focus.
func (s *Surface) Focused() string {
	return s.focus
}

// Edit prompts for every editable row in order, or only for names when given,
// then fires the change listener of the first changed control that has one.
// An aborted prompt returns ErrAborted before any listener runs.
func (s *Surface) Edit(ctx context.Context, names ...string) ([]string, error) {
	var changed []*Control
	for _, row := range s.rows {
		control, ok := s.controls[row.Name]
		if !ok {
			continue
		}
		if len(names) > 0 && !slices.Contains(names, row.Name) {
			continue
		}
		updated, err := s.prompt(ctx, control)
		if err != nil {
			return nil, fmt.Errorf("tui: edit %s: %w", row.Name, err)
		}
		if updated {
			changed = append(changed, control)
		}
	}

	out := make([]string, 0, len(changed))
	for _, control := range changed {
		out = append(out, control.row.Name)
		s.logger.Debug("tui field changed", "entry", control.row.Name)
	}
	s.focus = ""
	s.pending = nil
	for _, control := range changed {
		if control.fire() {
			break
		}
	}
	return out, nil
}

// AutoSaveError records a failed auto-save read-back so Run can show its
// reason. Pass it to form.WithAutoSaveErrorHandler.
func (s *Surface) AutoSaveError(err error) {
	if s.pending == nil {
		s.pending = err
	}
}

// Run renders fs onto the surface and edits until the values commit. After a
// rejected pass only the focused field is prompted again. Without auto-save
// each pass commits through fs.ReadAll.
func (s *Surface) Run(ctx context.Context, fs *form.Sync) error {
	if err := fs.Render(s, false); err != nil {
		return err
	}
	var names []string
	for {
		s.focus = ""
		changed, err := s.Edit(ctx, names...)
		if err != nil {
			return err
		}
		switch {
		case !fs.AutoSave() || (len(names) > 0 && len(changed) == 0):
			err = fs.ReadAll(s)
		case s.pending != nil:
			err = s.pending
		}

		var verr *form.ValidationError
		if err != nil && !errors.As(err, &verr) {
			return err
		}
		if s.focus == "" {
			return nil
		}
		if verr == nil {
			// No auto-save error handler is installed, so the reason is unknown.
			verr = &form.ValidationError{Field: s.focus, Reason: "rejected"}
		}
		if err := s.Error(ctx, verr); err != nil {
			return err
		}
		names = []string{s.focus}
	}
}

// Print writes one "label: value" line per row through the driver.
func (s *Surface) Print(ctx context.Context) error {
	for _, row := range s.rows {
		value := row.Text
		if control, ok := s.controls[row.Name]; ok {
			value = control.display()
		}
		line := fmt.Sprintf("%s%s: %s", s.theme.InfoPrefix, row.Label, value)
		if err := s.driver.Info(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

// Error prints err through the driver with the error prefix.
func (s *Surface) Error(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	return s.driver.Info(ctx, s.theme.ErrorPrefix+err.Error())
}

func (s *Surface) prompt(ctx context.Context, c *Control) (bool, error) {
	row := c.row
	message := s.theme.PromptPrefix + row.Label
	help := plainText(row.Tooltip)

	switch row.Kind {
	case form.ControlCheckbox:
		checked, err := s.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: c.checked, Help: help})
		if err != nil {
			return false, err
		}
		if checked == c.checked {
			return false, nil
		}
		c.checked = checked
		return true, nil
	case form.ControlText, form.ControlNumber:
		text, err := s.driver.Input(ctx, InputConfig{
			Message:   message,
			Default:   c.text,
			Help:      help,
			Validator: inputValidator(row),
		})
		if err != nil {
			return false, err
		}
		if text == c.text {
			return false, nil
		}
		c.text = text
		return true, nil
	case form.ControlSelect:
		options := choiceValues(row.Choices)
		defaultIndex := -1
		if len(c.selected) > 0 {
			defaultIndex = indexOf(options, c.selected[0])
		}
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      options,
			DefaultIndex: defaultIndex,
			Help:         help,
		})
		if err != nil {
			return false, err
		}
		next := valuesAt(options, []int{idx})
		if slices.Equal(next, c.selected) {
			return false, nil
		}
		c.selected = next
		return true, nil
	case form.ControlMultiSelect:
		options := choiceValues(row.Choices)
		indices, err := s.driver.MultiSelect(ctx, SelectConfig{
			Message:  message,
			Options:  options,
			Defaults: indicesOf(options, c.selected),
			Help:     help,
		})
		if err != nil {
			return false, err
		}
		next := valuesAt(options, indices)
		if slices.Equal(next, c.selected) {
			return false, nil
		}
		c.selected = next
		return true, nil
	default:
		return false, nil
	}
}

// inputValidator rejects text the registry would reject on syntax alone.
// Range checks are left to the registry so the failing field gets focus.
func inputValidator(row form.Row) func(string) error {
	switch row.Kind {
	case form.ControlNumber:
		return func(text string) error {
			if _, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err != nil {
				return fmt.Errorf("%q is not a number", text)
			}
			return nil
		}
	case form.ControlText:
		if row.Pattern == "" {
			return nil
		}
		re, err := regexp.Compile(row.Pattern)
		if err != nil {
			return nil
		}
		return func(text string) error {
			if !re.MatchString(strings.TrimSpace(text)) {
				return fmt.Errorf("%q does not match %s", text, row.Pattern)
			}
			return nil
		}
	default:
		return nil
	}
}

var (
	helpPolicyOnce sync.Once
	helpPolicy     *bluemonday.Policy
)

// plainText strips markup from a tooltip for terminal help text.
func plainText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	helpPolicyOnce.Do(func() {
		helpPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(helpPolicy.Sanitize(s)))
}

func choiceValues(choices []form.Choice) []string {
	out := make([]string, 0, len(choices))
	for _, choice := range choices {
		out = append(out, choice.Value)
	}
	return out
}

// Control is the TUI control for one editable row.
type Control struct {
	surface  *Surface
	row      form.Row
	checked  bool
	text     string
	selected []string
	listener func()
}

var _ form.Control = (*Control)(nil)

func newControl(s *Surface, row form.Row) *Control {
	c := &Control{surface: s, row: row, checked: row.Checked, text: row.Text}
	for _, choice := range row.Choices {
		if choice.Selected {
			c.selected = append(c.selected, choice.Value)
		}
	}
	return c
}

func (c *Control) Name() string       { return c.row.Name }
func (c *Control) Checked() bool      { return c.checked }
func (c *Control) Text() string       { return c.text }
func (c *Control) Selected() []string { return slices.Clone(c.selected) }
func (c *Control) OnChange(fn func()) { c.listener = fn }

// Focus marks the control as the one Edit should revisit.
func (c *Control) Focus() {
	c.surface.focus = c.row.Name
}

func (c *Control) fire() bool {
	if c.listener == nil {
		return false
	}
	c.listener()
	return true
}

func (c *Control) display() string {
	switch c.row.Kind {
	case form.ControlCheckbox:
		if c.checked {
			return "TRUE"
		}
		return "FALSE"
	case form.ControlSelect, form.ControlMultiSelect:
		return strings.Join(c.selected, ", ")
	default:
		return c.text
	}
}
