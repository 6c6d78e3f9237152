// Package settings implements the ordered settings registry.
//
// A Registry holds named entries, each with a descriptor, a default and a
// current value. Every successful mutation triggers the change listener with
// a full snapshot; rejected values are reported to the error listener and
// leave the registry untouched. Snapshots can be exported with ToSnapshot and
// re-applied with LoadSnapshot, which gates on the configured version.
package settings
