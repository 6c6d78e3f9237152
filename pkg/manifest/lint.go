package manifest

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-prefs/pkg/settings"
)

// Violation is one lint finding.
type Violation struct {
	Location string
	Message  string
}

func (v Violation) String() string {
	return v.Location + " -> " + v.Message
}

// LintOpenAPI checks every component schema of an OpenAPI document: x-prefs
// extensions must be known and well typed, properties must map to entries,
// and declared defaults must satisfy their entries. Violations are sorted by
// location. The error is reserved for documents that do not load.
func LintOpenAPI(ctx context.Context, data []byte) ([]Violation, error) {
	doc, err := loadOpenAPI(ctx, data)
	if err != nil {
		return nil, err
	}
	if doc.Components == nil {
		return nil, nil
	}

	var out []Violation
	for _, name := range sortedKeys(doc.Components.Schemas) {
		ref := doc.Components.Schemas[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		base := []string{"components", "schemas", name}
		out = append(out, lintExtensions(base, ref.Value.Extensions)...)
		for _, prop := range sortedKeys(ref.Value.Properties) {
			if p := ref.Value.Properties[prop]; p != nil && p.Value != nil {
				out = append(out, lintExtensions(appendPath(base, "properties", prop), p.Value.Extensions)...)
			}
		}
		out = append(out, lintBuild(doc, name, base)...)
	}

	slices.SortStableFunc(out, func(a, b Violation) int {
		return strings.Compare(a.Location, b.Location)
	})
	return out, nil
}

func lintExtensions(path []string, extensions map[string]any) []Violation {
	var out []Violation
	for _, key := range sortedKeys(extensions) {
		if !strings.HasPrefix(key, extensionNamespace) {
			continue
		}
		value := extensions[key]
		switch key {
		case orderExtension:
			if _, ok := extensionNumber(value); !ok {
				out = append(out, violation(path, "%s must be a number (got %T)", key, value))
			}
		case classExtension:
			if _, ok := value.(string); !ok {
				out = append(out, violation(path, "%s must be a string (got %T)", key, value))
			}
		default:
			out = append(out, violation(path, "unsupported extension %q (supported: %s, %s)", key, orderExtension, classExtension))
		}
	}
	return out
}

func lintBuild(doc *openapi3.T, name string, path []string) []Violation {
	m, err := fromDocument(doc, name)
	if err != nil {
		return []Violation{violation(path, "%v", err)}
	}
	var out []Violation
	_, err = m.Build(settings.WithErrorListener(func(err error) {
		out = append(out, violation(path, "%v", err))
	}))
	if err != nil {
		out = append(out, violation(path, "%v", err))
	}
	return out
}

func violation(path []string, format string, args ...any) Violation {
	return Violation{Location: strings.Join(path, " > "), Message: fmt.Sprintf(format, args...)}
}

func appendPath(path []string, segments ...string) []string {
	next := append([]string(nil), path...)
	return append(next, segments...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
