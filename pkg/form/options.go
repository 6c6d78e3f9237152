package form

import (
	"io"
	"log/slog"
)

// Option configures a Sync.
type Option func(*Sync)

// WithAutoSave makes every edit on a rendered control trigger a full
// ReadAll pass.
func WithAutoSave() Option {
	return func(s *Sync) {
		s.autoSave = true
	}
}

// WithCapitalize displays entry names through Capitalize.
func WithCapitalize() Option {
	return func(s *Sync) {
		s.capitalize = true
	}
}

// WithGroups restricts rendering to entries whose row class contains one of
// the given groups. Matching is case-insensitive.
func WithGroups(groups ...string) Option {
	return func(s *Sync) {
		s.groups = normaliseTokens(groups)
	}
}

// WithAutoSaveErrorHandler receives ReadAll failures triggered by auto-save.
// Without it they are logged.
func WithAutoSaveErrorHandler(fn func(error)) Option {
	return func(s *Sync) {
		s.onAutoSaveError = fn
	}
}

// WithLogger sets the logger used for auto-save diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sync) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
