package html

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-prefs/pkg/form"
	rendertemplate "github.com/goliatone/go-prefs/pkg/render/template"
	gotemplate "github.com/goliatone/go-prefs/pkg/render/template/gotemplate"
)

// ErrDuplicateRow is returned when two rows share a name.
var ErrDuplicateRow = errors.New("html surface: duplicate row")

// Surface renders settings as an HTML table inside a form and reads
// submissions back into its controls.
type Surface struct {
	templates rendertemplate.TemplateRenderer
	theme     themeContext
	cfg       config
	logger    *slog.Logger

	rows     []form.Row
	controls map[string]*Control
	focus    string
	message  string
}

var _ form.Surface = (*Surface)(nil)

// New builds a Surface using the embedded templates unless overridden.
func New(options ...Option) (*Surface, error) {
	cfg := config{
		templateFS:  TemplatesFS(),
		submitLabel: "Save",
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("html surface: configure template renderer: %w", err)
		}
		renderer = engine
	}

	resolved, err := resolveTheme(cfg.selector, cfg.themeName, cfg.themeVariant)
	if err != nil {
		return nil, err
	}

	return &Surface{
		templates: renderer,
		theme:     resolved,
		cfg:       cfg,
		logger:    cfg.logger,
		controls:  make(map[string]*Control),
	}, nil
}

// Clear implements form.Surface. It also drops focus and any message.
func (s *Surface) Clear() {
	s.rows = nil
	s.controls = make(map[string]*Control)
	s.focus = ""
	s.message = ""
}

// AppendRow implements form.Surface. Readonly rows have no control.
func (s *Surface) AppendRow(row form.Row) (form.Control, error) {
	if strings.TrimSpace(row.Name) == "" {
		return nil, errors.New("html surface: row name is required")
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

// SetMessage shows msg in an alert above the table until the next Clear.
func (s *Surface) SetMessage(msg string) {
	s.message = msg
}

// Focused returns the name of the control that last requested focus.
func (s *Surface) Focused() string {
	return s.focus
}

// Submit copies form values into the matching controls and then fires the
// change listener of the first changed control that has one. A listener reads
// back the whole surface, so one submission notifies at most once. Checkboxes
// absent from values are unchecked; other absent fields keep their value,
// except multi-selects which browsers omit when nothing is selected.
func (s *Surface) Submit(values url.Values) []string {
	var changed []*Control
	for _, row := range s.rows {
		control, ok := s.controls[row.Name]
		if !ok {
			continue
		}
		if control.apply(values) {
			changed = append(changed, control)
		}
	}

	names := make([]string, 0, len(changed))
	for _, control := range changed {
		names = append(names, control.row.Name)
		s.logger.Debug("html surface field changed", "entry", control.row.Name)
	}
	for _, control := range changed {
		if control.fire() {
			break
		}
	}
	return names
}

// Render writes the current rows as HTML to every writer in out and returns
// the markup.
func (s *Surface) Render(out ...io.Writer) (string, error) {
	if s.templates == nil {
		return "", errors.New("html surface: template renderer is nil")
	}
	result, err := s.templates.RenderTemplate(tableTemplate, s.viewData(), out...)
	if err != nil {
		return "", fmt.Errorf("html surface: render template: %w", err)
	}
	return result, nil
}

func (s *Surface) viewData() map[string]any {
	editable := false
	rows := make([]any, 0, len(s.rows))
	for _, row := range s.rows {
		view := map[string]any{
			"name":    row.Name,
			"label":   row.Label,
			"tooltip": sanitizeTooltip(row.Tooltip),
			"help":    sanitizeDescription(row.Tooltip),
			"class":   row.Class,
			"kind":    string(row.Kind),
			"focus":   row.Name == s.focus,
		}
		if control, ok := s.controls[row.Name]; ok {
			editable = true
			view["checked"] = control.checked
			view["text"] = control.text
			view["choices"] = control.choiceViews()
		} else {
			view["text"] = row.Text
		}
		switch row.Kind {
		case form.ControlText:
			view["pattern"] = row.Pattern
		case form.ControlNumber:
			view["min"] = formatBound(row.Min)
			view["max"] = formatBound(row.Max)
			view["step"] = "any"
			if row.Step != nil {
				view["step"] = formatBound(row.Step)
			}
		}
		rows = append(rows, view)
	}

	classes := make(map[string]any, len(s.theme.classes))
	for key, value := range s.theme.classes {
		classes[key] = value
	}

	return map[string]any{
		"action":       s.cfg.action,
		"title":        s.cfg.title,
		"message":      s.message,
		"submit_label": s.cfg.submitLabel,
		"descriptions": s.cfg.descriptions,
		"editable":     editable,
		"classes":      classes,
		"style":        s.theme.style,
		"theme":        s.theme.name,
		"variant":      s.theme.variant,
		"rows":         rows,
	}
}

func formatBound(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Control is the HTML surface control for one editable row.
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

// Focus marks the control for autofocus on the next Render.
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

func (c *Control) apply(values url.Values) bool {
	submitted, present := values[c.row.Name]
	switch c.row.Kind {
	case form.ControlCheckbox:
		checked := present && len(submitted) > 0 && submitted[0] != ""
		if checked == c.checked {
			return false
		}
		c.checked = checked
		return true
	case form.ControlText, form.ControlNumber:
		if !present {
			return false
		}
		text := ""
		if len(submitted) > 0 {
			text = submitted[0]
		}
		if text == c.text {
			return false
		}
		c.text = text
		return true
	case form.ControlSelect:
		if !present {
			return false
		}
		next := nonEmpty(submitted)
		if len(next) > 1 {
			next = next[:1]
		}
		if slices.Equal(next, c.selected) {
			return false
		}
		c.selected = next
		return true
	case form.ControlMultiSelect:
		next := nonEmpty(submitted)
		if slices.Equal(next, c.selected) {
			return false
		}
		c.selected = next
		return true
	default:
		return false
	}
}

func (c *Control) choiceViews() []any {
	if len(c.row.Choices) == 0 {
		return nil
	}
	out := make([]any, 0, len(c.row.Choices))
	for _, choice := range c.row.Choices {
		out = append(out, map[string]any{
			"value":    choice.Value,
			"selected": slices.Contains(c.selected, choice.Value),
		})
	}
	return out
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
