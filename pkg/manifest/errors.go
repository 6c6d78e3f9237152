package manifest

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedType is returned for entry types no descriptor covers.
	ErrUnsupportedType = errors.New("manifest: unsupported entry type")
	// ErrSchemaNotFound is returned when an OpenAPI document lacks the
	// requested component schema.
	ErrSchemaNotFound = errors.New("manifest: schema not found")
)

// EntryError reports the entry a manifest failed on.
type EntryError struct {
	Index int
	Name  string
	Err   error
}

func (e *EntryError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("manifest: entry %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("manifest: entry %q: %v", e.Name, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }
