package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const (
	extensionNamespace = "x-prefs"
	orderExtension     = extensionNamespace + "-order"
	classExtension     = extensionNamespace + "-class"
)

// FromOpenAPI maps the properties of a component schema to a manifest.
// Properties are ordered by x-prefs-order, then by name; unordered properties
// follow ordered ones. An empty schema name selects the only component
// schema. info.version becomes the manifest version.
func FromOpenAPI(ctx context.Context, data []byte, schemaName string) (*Manifest, error) {
	doc, err := loadOpenAPI(ctx, data)
	if err != nil {
		return nil, err
	}
	return fromDocument(doc, schemaName)
}

func loadOpenAPI(ctx context.Context, data []byte) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("manifest: load openapi document: %w", err)
	}
	return doc, nil
}

func fromDocument(doc *openapi3.T, schemaName string) (*Manifest, error) {
	schema, err := componentSchema(doc, schemaName)
	if err != nil {
		return nil, err
	}

	m := &Manifest{}
	if doc.Info != nil && doc.Info.Version != "" {
		m.Version = doc.Info.Version
	}
	for _, name := range orderedProperties(schema.Properties) {
		prop := schema.Properties[name]
		if prop == nil || prop.Value == nil {
			continue
		}
		entry, err := entryFromSchema(name, prop.Value)
		if err != nil {
			return nil, &EntryError{Index: len(m.Entries), Name: name, Err: err}
		}
		m.Entries = append(m.Entries, entry)
	}
	return m, nil
}

func componentSchema(doc *openapi3.T, name string) (*openapi3.Schema, error) {
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return nil, fmt.Errorf("%w: document has no component schemas", ErrSchemaNotFound)
	}
	schemas := doc.Components.Schemas
	if name == "" {
		if len(schemas) != 1 {
			return nil, fmt.Errorf("%w: name required when the document has %d schemas", ErrSchemaNotFound, len(schemas))
		}
		for only := range schemas {
			name = only
		}
	}
	ref, ok := schemas[name]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("%w: %q", ErrSchemaNotFound, name)
	}
	return ref.Value, nil
}

func orderedProperties(props openapi3.Schemas) []string {
	type keyed struct {
		name  string
		order float64
		has   bool
	}
	keys := make([]keyed, 0, len(props))
	for name, ref := range props {
		k := keyed{name: name}
		if ref != nil && ref.Value != nil {
			k.order, k.has = extensionNumber(ref.Value.Extensions[orderExtension])
		}
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b keyed) int {
		switch {
		case a.has && !b.has:
			return -1
		case !a.has && b.has:
			return 1
		case a.has && a.order != b.order:
			if a.order < b.order {
				return -1
			}
			return 1
		}
		return strings.Compare(a.name, b.name)
	})
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.name)
	}
	return out
}

func entryFromSchema(name string, src *openapi3.Schema) (Entry, error) {
	entry := Entry{
		Name:    name,
		Label:   src.Title,
		Default: src.Default,
	}
	if entry.Label == "" {
		entry.Label = src.Description
	}
	if class, ok := src.Extensions[classExtension].(string); ok {
		entry.Class = class
	}

	switch typ := firstSchemaType(src.Type); typ {
	case "boolean":
		entry.Type = "boolean"
	case "string":
		if len(src.Enum) > 0 {
			entry.Type = "enum"
			entry.Values = enumValues(src.Enum)
			break
		}
		entry.Type = "text"
		entry.Pattern = src.Pattern
	case "number", "integer":
		entry.Type = "number"
		entry.Min = cloneFloat(src.Min)
		entry.Max = cloneFloat(src.Max)
		entry.Step = cloneFloat(src.MultipleOf)
	case "array":
		if src.Items == nil || src.Items.Value == nil || len(src.Items.Value.Enum) == 0 {
			return Entry{}, fmt.Errorf("%w: array items must be an enum", ErrUnsupportedType)
		}
		entry.Type = "enum"
		entry.Multiple = true
		entry.Values = enumValues(src.Items.Value.Enum)
		if src.MinItems > 0 {
			n := int(src.MinItems)
			entry.MinItems = &n
		}
		if src.MaxItems != nil {
			n := int(*src.MaxItems)
			entry.MaxItems = &n
		}
	default:
		return Entry{}, fmt.Errorf("%w: %q", ErrUnsupportedType, typ)
	}
	return entry, nil
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	for _, t := range types.Slice() {
		if t != "null" {
			return t
		}
	}
	return ""
}

func enumValues(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		out = append(out, fmt.Sprint(v))
	}
	return out
}

func extensionNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, !math.IsNaN(v)
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case json.RawMessage:
		var f float64
		return f, json.Unmarshal(v, &f) == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
