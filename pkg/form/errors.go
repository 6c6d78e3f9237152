package form

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation classifies ValidationError.
	ErrValidation = errors.New("form: validation failed")
	// ErrNoSurface is returned by ReadAll when no surface was supplied and
	// none was remembered from Render.
	ErrNoSurface = errors.New("form: no surface to read from")
)

// ValidationError names the first field whose edited value was rejected.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("form: invalid value for %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
