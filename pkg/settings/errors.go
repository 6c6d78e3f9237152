package settings

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingDescriptor is returned by Add when no descriptor is supplied.
	ErrMissingDescriptor = errors.New("settings: missing entry descriptor")
	// ErrUnknownEntry is returned when an operation names an entry that was
	// never added.
	ErrUnknownEntry = errors.New("settings: unknown entry")
	// ErrDuplicateEntry is returned when Add is called twice for one name.
	ErrDuplicateEntry = errors.New("settings: entry already declared")
	// ErrReservedName is returned for empty names and the snapshot version key.
	ErrReservedName = errors.New("settings: reserved entry name")
	// ErrInvalidValue classifies InvalidValueError.
	ErrInvalidValue = errors.New("settings: invalid value")
	// ErrIncompatibleVersion classifies VersionError.
	ErrIncompatibleVersion = errors.New("settings: incompatible snapshot version")
	// ErrTypeMismatch is returned by Accessor getters when the stored value
	// has a different Go type than requested.
	ErrTypeMismatch = errors.New("settings: type mismatch")
)

// InvalidValueError reports a value rejected by an entry descriptor.
type InvalidValueError struct {
	Entry   string
	Value   any
	Reason  string
	Default bool
}

// Error implements error.
func (e *InvalidValueError) Error() string {
	if e.Default {
		return fmt.Sprintf("settings: default value for %s is invalid: %v (%s)", e.Entry, e.Value, e.Reason)
	}
	return fmt.Sprintf("settings: failed to set %s to invalid value %v: %s", e.Entry, e.Value, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidValue).
func (e *InvalidValueError) Unwrap() error { return ErrInvalidValue }

// VersionError reports a snapshot whose version does not match the registry.
type VersionError struct {
	Want any
	Got  any
}

// Error implements error.
func (e *VersionError) Error() string {
	if e.Got == nil {
		return fmt.Sprintf("settings: cannot load unversioned snapshot into v%v", e.Want)
	}
	return fmt.Sprintf("settings: cannot load snapshot v%v into v%v", e.Got, e.Want)
}

// Unwrap allows errors.Is(err, ErrIncompatibleVersion).
func (e *VersionError) Unwrap() error { return ErrIncompatibleVersion }

func unknownEntry(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownEntry, name)
}
