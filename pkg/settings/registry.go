package settings

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/goliatone/go-prefs/pkg/descriptor"
	"github.com/goliatone/go-prefs/pkg/snapshot"
)

// Entry is a read-only view of one declared setting.
type Entry struct {
	Name       string
	Descriptor descriptor.Descriptor
	Default    any
	Value      any
	Label      string
	RowClass   string
}

type entry struct {
	name       string
	descriptor descriptor.Descriptor
	def        any
	value      any
	label      string
	rowClass   string
	binding    any
}

func (e *entry) view() Entry {
	return Entry{
		Name:       e.name,
		Descriptor: e.descriptor,
		Default:    snapshot.CloneValue(e.def),
		Value:      snapshot.CloneValue(e.value),
		Label:      e.label,
		RowClass:   e.rowClass,
	}
}

// Assignment pairs an entry name with a candidate value for SetMany.
type Assignment struct {
	Name  string
	Value any
}

// Registry holds the ordered set of declared entries. It is not safe for
// concurrent use; callers serialise access.
type Registry struct {
	version    any
	hasVersion bool

	order   []string
	entries map[string]*entry

	onChange ChangeFunc
	onError  ErrorFunc
	logger   *slog.Logger
}

// New constructs an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]*entry),
		logger:  discardLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Add declares an entry and sets its current value to defaultValue. Defaults
// are trusted: an invalid default is reported through the error listener but
// stored anyway. Add fires one change notification.
func (r *Registry) Add(name string, d descriptor.Descriptor, defaultValue any, opts ...EntryOption) error {
	if d.IsZero() {
		return fmt.Errorf("%w: %q", ErrMissingDescriptor, name)
	}
	if strings.TrimSpace(name) == "" || name == snapshot.VersionKey {
		return fmt.Errorf("%w: %q", ErrReservedName, name)
	}
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateEntry, name)
	}

	e := &entry{name: name, descriptor: d}
	patch := buildPatch(opts)
	if patch.label != nil {
		e.label = *patch.label
	}
	if patch.rowClass != nil {
		e.rowClass = *patch.rowClass
	}

	if normalized, err := d.Normalize(defaultValue); err == nil {
		e.def = normalized
	} else {
		e.def = snapshot.CloneValue(defaultValue)
		r.report(&InvalidValueError{Entry: name, Value: defaultValue, Reason: err.Error(), Default: true})
	}
	e.value = snapshot.CloneValue(e.def)

	r.entries[name] = e
	r.order = append(r.order, name)
	r.notify()
	return nil
}

// MustAdd is Add for static declarations; it panics on structural errors and
// returns the registry for chaining.
func (r *Registry) MustAdd(name string, d descriptor.Descriptor, defaultValue any, opts ...EntryOption) *Registry {
	if err := r.Add(name, d, defaultValue, opts...); err != nil {
		panic(err)
	}
	return r
}

// Update changes the supplied attributes of an existing entry. The descriptor
// is applied first; a new default that fails it is reported and ignored.
// Update fires one change notification even when nothing changed.
func (r *Registry) Update(name string, opts ...EntryOption) error {
	e, ok := r.entries[name]
	if !ok {
		return unknownEntry(name)
	}

	patch := buildPatch(opts)
	if patch.descriptor != nil {
		e.descriptor = *patch.descriptor
	}
	if patch.hasDefault {
		if normalized, err := e.descriptor.Normalize(patch.def); err == nil {
			e.def = normalized
		} else {
			r.report(&InvalidValueError{Entry: name, Value: patch.def, Reason: err.Error(), Default: true})
		}
	}
	if patch.label != nil {
		e.label = *patch.label
	}
	if patch.rowClass != nil {
		e.rowClass = *patch.rowClass
	}

	r.notify()
	return nil
}

// ResetToDefault restores every entry to its default and fires one change
// notification.
func (r *Registry) ResetToDefault() {
	for _, name := range r.order {
		e := r.entries[name]
		e.value = snapshot.CloneValue(e.def)
	}
	r.notify()
}

// Set validates value against the entry descriptor and commits it. A rejected
// value leaves the entry untouched, is reported through the error listener
// and returned as an *InvalidValueError.
func (r *Registry) Set(name string, value any) error {
	e, ok := r.entries[name]
	if !ok {
		return unknownEntry(name)
	}
	if _, err := r.assign(e, value); err != nil {
		r.report(err)
		return err
	}
	r.notify()
	return nil
}

// SetMany validates every assignment in order before committing any of them.
// The first invalid value is reported and returned and nothing is written.
// On success all values are committed and exactly one change notification
// fires.
func (r *Registry) SetMany(assignments ...Assignment) error {
	staged := make([]any, len(assignments))
	for i, a := range assignments {
		e, ok := r.entries[a.Name]
		if !ok {
			return unknownEntry(a.Name)
		}
		normalized, err := e.descriptor.Normalize(a.Value)
		if err != nil {
			invalid := &InvalidValueError{Entry: a.Name, Value: a.Value, Reason: err.Error()}
			r.report(invalid)
			return invalid
		}
		staged[i] = normalized
	}
	for i, a := range assignments {
		r.entries[a.Name].value = staged[i]
		r.logger.Debug("settings committed", "entry", a.Name)
	}
	r.notify()
	return nil
}

// assign commits value without notifying and reports whether the stored
// value changed under the descriptor's equality.
func (r *Registry) assign(e *entry, value any) (bool, error) {
	normalized, err := e.descriptor.Normalize(value)
	if err != nil {
		return false, &InvalidValueError{Entry: e.name, Value: value, Reason: err.Error()}
	}
	changed := !e.descriptor.Equal(e.value, normalized)
	e.value = normalized
	r.logger.Debug("settings committed", "entry", e.name, "changed", changed)
	return changed, nil
}

// OnChange replaces the change listener.
func (r *Registry) OnChange(fn ChangeFunc) *Registry {
	r.onChange = fn
	return r
}

// OnError replaces the error listener.
func (r *Registry) OnError(fn ErrorFunc) *Registry {
	r.onError = fn
	return r
}

// ReportError logs err and forwards it to the error listener. Collaborators
// such as form synchronisers use it so every report takes the same path.
func (r *Registry) ReportError(err error) {
	if err == nil {
		return
	}
	r.report(err)
}

func (r *Registry) report(err error) {
	r.logger.Warn("settings error", "error", err)
	if r.onError != nil {
		r.onError(err)
	}
}

func (r *Registry) notify() {
	if r.onChange != nil {
		r.onChange(r.ToSnapshot())
	}
}

// Get returns a copy of the current value of name.
func (r *Registry) Get(name string) (any, bool) {
	e, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return snapshot.CloneValue(e.value), true
}

// Entry returns a read-only view of name.
func (r *Registry) Entry(name string) (Entry, bool) {
	e, ok := r.entries[name]
	if !ok {
		return Entry{}, false
	}
	return e.view(), true
}

// Entries returns every entry in declaration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].view())
	}
	return out
}

// Names returns entry names in declaration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Len reports the number of declared entries.
func (r *Registry) Len() int {
	return len(r.order)
}

// Version returns the compatibility version, if configured.
func (r *Registry) Version() (any, bool) {
	return r.version, r.hasVersion
}

// Bind attaches an opaque rendering handle to name; nil clears it.
func (r *Registry) Bind(name string, handle any) error {
	e, ok := r.entries[name]
	if !ok {
		return unknownEntry(name)
	}
	e.binding = handle
	return nil
}

// Binding returns the handle previously attached with Bind.
func (r *Registry) Binding(name string) (any, bool) {
	e, ok := r.entries[name]
	if !ok || e.binding == nil {
		return nil, false
	}
	return e.binding, true
}
