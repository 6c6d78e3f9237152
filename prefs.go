package prefs

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-prefs/pkg/descriptor"
	"github.com/goliatone/go-prefs/pkg/form"
	"github.com/goliatone/go-prefs/pkg/manifest"
	"github.com/goliatone/go-prefs/pkg/settings"
	"github.com/goliatone/go-prefs/pkg/snapshot"
	"github.com/goliatone/go-prefs/pkg/surfaces/html"
)

// Registry aliases settings.Registry for callers that only import the root
// package.
type Registry = settings.Registry

// Entry aliases settings.Entry.
type Entry = settings.Entry

// Descriptor aliases descriptor.Descriptor.
type Descriptor = descriptor.Descriptor

// Snapshot aliases snapshot.Snapshot.
type Snapshot = snapshot.Snapshot

// Manifest aliases manifest.Manifest.
type Manifest = manifest.Manifest

// New returns an empty registry.
func New(options ...settings.Option) *Registry {
	return settings.New(options...)
}

// FromManifestFile builds a registry from a YAML or JSON manifest on disk.
func FromManifestFile(path string, options ...settings.Option) (*Registry, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	return m.Build(options...)
}

// FromOpenAPIFile builds a registry from a component schema of the OpenAPI
// document at path. An empty schema name selects the only component schema.
func FromOpenAPIFile(ctx context.Context, path, schema string, options ...settings.Option) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prefs: read %s: %w", path, err)
	}
	m, err := manifest.FromOpenAPI(ctx, data, schema)
	if err != nil {
		return nil, err
	}
	return m.Build(options...)
}

// RenderHTML renders reg as an HTML settings table. It is the simplest entry
// point for callers that just want markup.
func RenderHTML(reg *Registry, readonly bool, options ...html.Option) ([]byte, error) {
	surface, err := html.New(options...)
	if err != nil {
		return nil, err
	}
	if err := form.New(reg).Render(surface, readonly); err != nil {
		return nil, err
	}
	out, err := surface.Render()
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// EmbeddedTemplates exposes the built-in HTML surface templates so callers
// can reuse or extend them with html.WithTemplatesFS.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}
