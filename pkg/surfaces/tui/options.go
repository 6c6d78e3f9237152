package tui

import "log/slog"

// Theme holds optional prefixes applied to prompts and printed lines.
type Theme struct {
	PromptPrefix string
	InfoPrefix   string
	ErrorPrefix  string
}

// Option configures the TUI surface.
type Option func(*Surface)

// WithPromptDriver overrides the survey driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Surface) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(s *Surface) {
		s.theme = theme
	}
}

// WithLogger sets the logger used for edit tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Surface) {
		if logger != nil {
			s.logger = logger
		}
	}
}
