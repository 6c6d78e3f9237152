package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrDuplicateRow is returned when two rows share a name.
	ErrDuplicateRow = errors.New("tui: duplicate row")
)
