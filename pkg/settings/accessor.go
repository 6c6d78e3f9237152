package settings

import (
	"fmt"
	"math"
)

// Accessor is a typed view over a Registry. Getters return ErrTypeMismatch
// when the stored value is not of the requested shape, which only happens
// for defaults that were accepted despite failing validation.
type Accessor struct {
	registry *Registry
}

// Accessor returns a typed view over r.
func (r *Registry) Accessor() Accessor {
	return Accessor{registry: r}
}

// Get returns the raw current value.
func (a Accessor) Get(name string) (any, error) {
	value, ok := a.registry.Get(name)
	if !ok {
		return nil, unknownEntry(name)
	}
	return value, nil
}

// Bool returns a boolean entry.
func (a Accessor) Bool(name string) (bool, error) {
	value, err := a.Get(name)
	if err != nil {
		return false, err
	}
	b, ok := value.(bool)
	if !ok {
		return false, mismatch(name, value, "bool")
	}
	return b, nil
}

// String returns a text or single-choice entry.
func (a Accessor) String(name string) (string, error) {
	value, err := a.Get(name)
	if err != nil {
		return "", err
	}
	s, ok := value.(string)
	if !ok {
		return "", mismatch(name, value, "string")
	}
	return s, nil
}

// Float returns a numeric entry.
func (a Accessor) Float(name string) (float64, error) {
	value, err := a.Get(name)
	if err != nil {
		return 0, err
	}
	f, ok := value.(float64)
	if !ok {
		return 0, mismatch(name, value, "float64")
	}
	return f, nil
}

// Int returns a numeric entry truncated toward zero.
func (a Accessor) Int(name string) (int, error) {
	f, err := a.Float(name)
	if err != nil {
		return 0, err
	}
	return int(math.Trunc(f)), nil
}

// Strings returns a multi-choice entry.
func (a Accessor) Strings(name string) ([]string, error) {
	value, err := a.Get(name)
	if err != nil {
		return nil, err
	}
	items, ok := value.([]string)
	if !ok {
		return nil, mismatch(name, value, "[]string")
	}
	return items, nil
}

// Set forwards to Registry.Set.
func (a Accessor) Set(name string, value any) error {
	return a.registry.Set(name, value)
}

func mismatch(name string, value any, want string) error {
	return fmt.Errorf("%w: %s holds %T, not %s", ErrTypeMismatch, name, value, want)
}
