package settings

import (
	"io"
	"log/slog"

	"github.com/goliatone/go-prefs/pkg/descriptor"
	"github.com/goliatone/go-prefs/pkg/snapshot"
)

// ChangeFunc receives a full snapshot after every committed mutation.
type ChangeFunc func(snapshot.Snapshot)

// ErrorFunc receives validation and compatibility reports.
type ErrorFunc func(error)

// Option configures a Registry at construction time.
type Option func(*Registry)

// WithVersion sets the compatibility version written to snapshots and
// required from imported ones.
func WithVersion(version any) Option {
	return func(r *Registry) {
		if version == nil {
			return
		}
		r.version = version
		r.hasVersion = true
	}
}

// WithLogger routes registry diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithChangeListener installs the change callback.
func WithChangeListener(fn ChangeFunc) Option {
	return func(r *Registry) {
		r.onChange = fn
	}
}

// WithErrorListener installs the error callback.
func WithErrorListener(fn ErrorFunc) Option {
	return func(r *Registry) {
		r.onError = fn
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// EntryOption supplies optional entry attributes to Add and Update.
type EntryOption func(*entryPatch)

type entryPatch struct {
	descriptor *descriptor.Descriptor
	def        any
	hasDefault bool
	label      *string
	rowClass   *string
}

// WithDescriptor replaces the entry descriptor. Only Update honours it; Add
// takes the descriptor positionally.
func WithDescriptor(d descriptor.Descriptor) EntryOption {
	return func(p *entryPatch) {
		if !d.IsZero() {
			p.descriptor = &d
		}
	}
}

// WithDefault replaces the default value. Only Update honours it; nil leaves
// the default unchanged.
func WithDefault(value any) EntryOption {
	return func(p *entryPatch) {
		if value != nil {
			p.def = value
			p.hasDefault = true
		}
	}
}

// WithLabel sets the human-readable description shown as a tooltip.
func WithLabel(label string) EntryOption {
	return func(p *entryPatch) {
		p.label = &label
	}
}

// WithRowClass sets the grouping tag used as the rendered row class.
func WithRowClass(class string) EntryOption {
	return func(p *entryPatch) {
		p.rowClass = &class
	}
}

func buildPatch(opts []EntryOption) entryPatch {
	var patch entryPatch
	for _, opt := range opts {
		if opt != nil {
			opt(&patch)
		}
	}
	return patch
}
