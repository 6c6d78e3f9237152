package manifest

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-prefs/pkg/descriptor"
	"github.com/goliatone/go-prefs/pkg/settings"
)

// Manifest declares a registry: its version, entries in display order, and an
// optional theme for the HTML surface.
type Manifest struct {
	Version any     `yaml:"version,omitempty" json:"version,omitempty"`
	Entries []Entry `yaml:"entries" json:"entries"`
	Theme   *Theme  `yaml:"theme,omitempty" json:"theme,omitempty"`
}

// Entry declares one setting.
type Entry struct {
	Name    string `yaml:"name" json:"name"`
	Type    string `yaml:"type" json:"type"`
	Label   string `yaml:"label,omitempty" json:"label,omitempty"`
	Class   string `yaml:"class,omitempty" json:"class,omitempty"`
	Default any    `yaml:"default,omitempty" json:"default,omitempty"`

	Pattern string   `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Min     *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max     *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	Step    *float64 `yaml:"step,omitempty" json:"step,omitempty"`

	Values   []string `yaml:"values,omitempty" json:"values,omitempty"`
	Multiple bool     `yaml:"multiple,omitempty" json:"multiple,omitempty"`
	MinItems *int     `yaml:"minItems,omitempty" json:"minItems,omitempty"`
	MaxItems *int     `yaml:"maxItems,omitempty" json:"maxItems,omitempty"`
}

// Theme is the serialised form of a go-theme manifest.
type Theme struct {
	Name     string                       `yaml:"name" json:"name"`
	Version  string                       `yaml:"version,omitempty" json:"version,omitempty"`
	Tokens   map[string]string            `yaml:"tokens,omitempty" json:"tokens,omitempty"`
	Variants map[string]map[string]string `yaml:"variants,omitempty" json:"variants,omitempty"`
}

// Parse decodes a YAML or JSON manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: decode: %w", err)
	}
	return &m, nil
}

// Load reads and decodes the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	return Parse(data)
}

// Build declares every entry on a new registry. The manifest version is
// applied before opts, so an explicit settings.WithVersion wins. Defaults
// that fail validation are kept and reported through the registry's error
// listener, as settings.Registry.Add does. Entries without a default start
// from ZeroValue.
func (m *Manifest) Build(opts ...settings.Option) (*settings.Registry, error) {
	var all []settings.Option
	if m.Version != nil {
		all = append(all, settings.WithVersion(m.Version))
	}
	reg := settings.New(append(all, opts...)...)

	for i, e := range m.Entries {
		d, err := e.Descriptor()
		if err != nil {
			return nil, &EntryError{Index: i, Name: e.Name, Err: err}
		}
		var entryOpts []settings.EntryOption
		if e.Label != "" {
			entryOpts = append(entryOpts, settings.WithLabel(e.Label))
		}
		if e.Class != "" {
			entryOpts = append(entryOpts, settings.WithRowClass(e.Class))
		}
		def := e.Default
		if def == nil {
			def = ZeroValue(d)
		}
		if err := reg.Add(e.Name, d, def, entryOpts...); err != nil {
			return nil, &EntryError{Index: i, Name: e.Name, Err: err}
		}
	}
	return reg, nil
}

// Descriptor builds the validation descriptor the entry declares.
func (e Entry) Descriptor() (descriptor.Descriptor, error) {
	kind := strings.ToLower(strings.TrimSpace(e.Type))
	switch kind {
	case "boolean", "bool", "checkbox":
		return descriptor.Boolean(), nil
	case "text", "string":
		return descriptor.TextPattern(e.Pattern)
	case "number", "numeric", "integer":
		var opts []descriptor.NumericOption
		if e.Min != nil {
			opts = append(opts, descriptor.Min(*e.Min))
		}
		if e.Max != nil {
			opts = append(opts, descriptor.Max(*e.Max))
		}
		if e.Step != nil {
			opts = append(opts, descriptor.Step(*e.Step))
		}
		return descriptor.Numeric(opts...), nil
	case "enum", "select", "multiselect":
		if !e.Multiple && kind != "multiselect" {
			return descriptor.Enumerated(e.Values...), nil
		}
		var opts []descriptor.CardinalityOption
		if e.MinItems != nil {
			opts = append(opts, descriptor.MinItems(*e.MinItems))
		}
		if e.MaxItems != nil {
			opts = append(opts, descriptor.MaxItems(*e.MaxItems))
		}
		return descriptor.EnumeratedMulti(e.Values, opts...)
	default:
		return descriptor.Descriptor{}, fmt.Errorf("%w: %q", ErrUnsupportedType, e.Type)
	}
}

// ZeroValue returns the value an entry without a declared default starts
// from: false, the empty string, the lower bound (or 0, clamped to the upper
// bound), the first value, or the first MinItems values.
func ZeroValue(d descriptor.Descriptor) any {
	switch d.Kind() {
	case descriptor.KindBoolean:
		return false
	case descriptor.KindText:
		return ""
	case descriptor.KindNumeric:
		lo, hi := d.Bounds()
		switch {
		case lo != nil:
			return *lo
		case hi != nil && *hi < 0:
			return *hi
		default:
			return float64(0)
		}
	case descriptor.KindEnumerated:
		values := d.Values()
		if !d.Multiple() {
			if len(values) == 0 {
				return ""
			}
			return values[0]
		}
		n := 0
		if lo, _ := d.Cardinality(); lo != nil {
			n = min(*lo, len(values))
		}
		return slices.Clone(values[:n])
	default:
		return nil
	}
}

// ThemeManifest converts the declared theme, or returns nil when the manifest
// has none. A theme without a version is tagged "0.0.0".
func (m *Manifest) ThemeManifest() (*theme.Manifest, error) {
	if m.Theme == nil {
		return nil, nil
	}
	out := &theme.Manifest{
		Name:    m.Theme.Name,
		Version: m.Theme.Version,
		Tokens:  maps.Clone(m.Theme.Tokens),
	}
	if out.Version == "" {
		out.Version = "0.0.0"
	}
	if len(m.Theme.Variants) > 0 {
		out.Variants = make(map[string]theme.Variant, len(m.Theme.Variants))
		for name, tokens := range m.Theme.Variants {
			out.Variants[name] = theme.Variant{Tokens: maps.Clone(tokens)}
		}
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("manifest: theme %q: %w", m.Theme.Name, err)
	}
	return out, nil
}
