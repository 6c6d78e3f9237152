package form

// ControlKind identifies the editor a Row asks the surface to build.
type ControlKind string

const (
	ControlCheckbox    ControlKind = "checkbox"
	ControlText        ControlKind = "text"
	ControlNumber      ControlKind = "number"
	ControlSelect      ControlKind = "select"
	ControlMultiSelect ControlKind = "multiselect"
	ControlReadonly    ControlKind = "readonly"
)

// Choice is one option of a select control.
type Choice struct {
	Value    string
	Selected bool
}

// Row describes one rendered entry. Text values are raw; surfaces are
// responsible for escaping them for their medium.
type Row struct {
	Name    string
	Label   string
	Tooltip string
	Class   string
	Kind    ControlKind

	// Checked is the initial state of a checkbox.
	Checked bool
	// Text is the initial value of text and number inputs, or the display
	// text of a readonly row.
	Text string

	Pattern  string
	Min      *float64
	Max      *float64
	Step     *float64
	MinItems *int
	MaxItems *int
	Choices  []Choice
}

// Control is the handle a surface returns for an editable row.
type Control interface {
	Name() string
	// Checked reports the state of a checkbox.
	Checked() bool
	// Text returns the raw text of a text or number input.
	Text() string
	// Selected returns the selected option values in display order.
	Selected() []string
	// OnChange registers fn to run after every user edit. Later calls
	// replace earlier listeners.
	OnChange(fn func())
	// Focus asks the surface to move input focus to the control.
	Focus()
}

// Surface is the rendering collaborator a Sync drives.
type Surface interface {
	// Clear removes every previously appended row.
	Clear()
	// AppendRow renders row and returns its control. Readonly rows may
	// return a nil control.
	AppendRow(row Row) (Control, error)
	// Lookup returns the control rendered for name.
	Lookup(name string) (Control, bool)
}
