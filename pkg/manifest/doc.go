// Package manifest declares settings registries from data: YAML or JSON
// manifests, and object schemas in the components section of an OpenAPI
// document.
package manifest
