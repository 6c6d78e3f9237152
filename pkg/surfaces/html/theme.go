package html

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	theme "github.com/goliatone/go-theme"
)

var (
	// ErrThemeNotFound is returned when a selector yields no manifest.
	ErrThemeNotFound = errors.New("html surface: theme not found")
	// ErrUnknownVariant is returned when the selected variant is not declared.
	ErrUnknownVariant = errors.New("html surface: unknown theme variant")
)

// classTokenPrefix marks theme tokens that override a class name, e.g.
// "prefs.table". Every other token is emitted as a CSS custom property.
const classTokenPrefix = "prefs."

func defaultClasses() map[string]string {
	return map[string]string{
		"form":     "prefs-form",
		"title":    "prefs-title",
		"error":    "prefs-error",
		"table":    "prefs-table",
		"row":      "prefs-row",
		"label":    "prefs-label",
		"cell":     "prefs-cell",
		"help":     "prefs-help",
		"input":    "prefs-input",
		"checkbox": "prefs-checkbox",
		"select":   "prefs-select",
		"readonly": "prefs-readonly",
		"submit":   "prefs-submit",
	}
}

type themeContext struct {
	name    string
	variant string
	classes map[string]string
	style   string
}

func resolveTheme(selector theme.ThemeSelector, name, variant string) (themeContext, error) {
	ctx := themeContext{classes: defaultClasses()}
	if selector == nil {
		return ctx, nil
	}

	selection, err := selector.Select(name, variant)
	if err != nil {
		return ctx, fmt.Errorf("%w: %q: %w", ErrThemeNotFound, name, err)
	}
	if selection == nil || selection.Manifest == nil {
		return ctx, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}
	// TokensForVariant quietly falls back to the base tokens.
	if selection.Variant != "" {
		if _, ok := selection.Manifest.Variants[selection.Variant]; !ok {
			return ctx, fmt.Errorf("%w: %q", ErrUnknownVariant, selection.Variant)
		}
	}

	ctx.name = selection.Manifest.Name
	ctx.variant = selection.Variant

	tokens := selection.Tokens()
	var vars []string
	for _, key := range slices.Sorted(maps.Keys(tokens)) {
		value := strings.TrimSpace(tokens[key])
		if class, ok := strings.CutPrefix(key, classTokenPrefix); ok {
			if class != "" && value != "" {
				ctx.classes[class] = value
			}
			continue
		}
		if value == "" {
			continue
		}
		vars = append(vars, fmt.Sprintf("--%s: %s", cssIdent(key), value))
	}
	ctx.style = strings.Join(vars, "; ")
	return ctx, nil
}

func cssIdent(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, strings.TrimSpace(key))
}

// Themes registers the manifests in a go-theme registry and returns a
// selector over it. The first manifest is the default theme, so an empty or
// unregistered name falls back to it.
func Themes(manifests ...*theme.Manifest) (*theme.Selector, error) {
	reg := theme.NewRegistry()
	selector := &theme.Selector{Registry: reg}
	for _, m := range manifests {
		if m == nil {
			continue
		}
		if err := reg.Register(m); err != nil {
			return nil, fmt.Errorf("html surface: register theme %q: %w", m.Name, err)
		}
		if selector.DefaultTheme == "" {
			selector.DefaultTheme = m.Name
		}
	}
	return selector, nil
}
