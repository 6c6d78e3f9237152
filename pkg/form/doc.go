// Package form synchronises a settings registry with an editable surface.
//
// Render turns each entry into a Row and hands it to a Surface, binding the
// returned Control to the entry. ReadAll reads the controls back in order and
// commits them atomically: the first invalid field is focused and returned as
// a *ValidationError and nothing is written.
package form
