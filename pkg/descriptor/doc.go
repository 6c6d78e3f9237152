// Package descriptor defines the type descriptors attached to settings
// entries. A Descriptor is an immutable tagged union over four kinds (boolean,
// text, numeric, enumerated) carrying the validation predicate, the
// normalization into canonical Go values (bool, string, float64, []string) and
// the equality policy used to detect changes. Multi-select descriptors compare
// selections as unordered multisets.
package descriptor
