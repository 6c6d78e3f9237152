package testsupport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-prefs/pkg/snapshot"
)

// Recorder captures change and error notifications from a registry.
type Recorder struct {
	Changes []snapshot.Snapshot
	Errors  []error
}

// OnChange is a settings.ChangeFunc.
func (r *Recorder) OnChange(s snapshot.Snapshot) {
	r.Changes = append(r.Changes, s)
}

// OnError is a settings.ErrorFunc.
func (r *Recorder) OnError(err error) {
	r.Errors = append(r.Errors, err)
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.Changes = nil
	r.Errors = nil
}

// Last returns the most recent change snapshot, or nil.
func (r *Recorder) Last() snapshot.Snapshot {
	if len(r.Changes) == 0 {
		return nil
	}
	return r.Changes[len(r.Changes)-1]
}

// MustLoadSnapshot reads a JSON or YAML snapshot fixture, choosing the format
// from the file extension.
func MustLoadSnapshot(t *testing.T, path string) snapshot.Snapshot {
	t.Helper()

	snap, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	return snap
}

// LoadSnapshot is MustLoadSnapshot for callers without a *testing.T.
func LoadSnapshot(path string) (snapshot.Snapshot, error) {
	if path == "" {
		return nil, errors.New("testsupport: snapshot path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read snapshot: %w", err)
	}
	snap, err := snapshot.Decode(data, snapshot.FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("testsupport: decode snapshot: %w", err)
	}
	return snap, nil
}

// AssertSnapshot fails the test when got differs from want.
func AssertSnapshot(t *testing.T, want, got snapshot.Snapshot) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out, buf.String()
}
