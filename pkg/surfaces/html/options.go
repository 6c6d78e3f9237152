package html

import (
	"io/fs"
	"log/slog"
	"os"
	"strings"

	theme "github.com/goliatone/go-theme"

	rendertemplate "github.com/goliatone/go-prefs/pkg/render/template"
)

// Option configures a Surface.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer

	selector     theme.ThemeSelector
	themeName    string
	themeVariant string

	action       string
	title        string
	submitLabel  string
	descriptions bool
	logger       *slog.Logger
}

// WithTemplatesFS supplies an alternate template bundle. It must contain
// templates/table.tmpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads the template bundle from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithTheme resolves class names and CSS variables from a go-theme selection.
func WithTheme(selector theme.ThemeSelector, name, variant string) Option {
	return func(cfg *config) {
		cfg.selector = selector
		cfg.themeName = strings.TrimSpace(name)
		cfg.themeVariant = strings.TrimSpace(variant)
	}
}

// WithAction sets the form action URL.
func WithAction(action string) Option {
	return func(cfg *config) {
		cfg.action = action
	}
}

// WithTitle renders a heading above the table.
func WithTitle(title string) Option {
	return func(cfg *config) {
		cfg.title = title
	}
}

// WithSubmitLabel overrides the "Save" button caption.
func WithSubmitLabel(label string) Option {
	return func(cfg *config) {
		if strings.TrimSpace(label) != "" {
			cfg.submitLabel = label
		}
	}
}

// WithDescriptions adds a column showing each row tooltip as sanitised
// inline markup.
func WithDescriptions() Option {
	return func(cfg *config) {
		cfg.descriptions = true
	}
}

// WithLogger sets the logger used by the surface and its handler.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}
