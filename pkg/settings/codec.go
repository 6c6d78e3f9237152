package settings

import (
	"fmt"

	"github.com/goliatone/go-prefs/pkg/snapshot"
)

// ToSnapshot returns a deep-independent copy of every current value plus the
// version tag when one is configured.
func (r *Registry) ToSnapshot() snapshot.Snapshot {
	out := make(snapshot.Snapshot, len(r.order)+1)
	if r.hasVersion {
		out[snapshot.VersionKey] = r.version
	}
	for _, name := range r.order {
		out[name] = snapshot.CloneValue(r.entries[name].value)
	}
	return out
}

// LoadSnapshot applies stored values over the current ones. input may be a
// snapshot.Snapshot, a map[string]any, or a JSON document as string or
// []byte.
//
// Unparsable and empty input is a logged no-op. A version mismatch aborts the
// whole import with a *VersionError. Unknown keys are ignored and invalid
// values are reported and skipped. One change notification fires when at least
// one value changed.
func (r *Registry) LoadSnapshot(input any) error {
	snap, err := coerceSnapshot(input)
	if err != nil {
		r.logger.Warn("cannot load configuration with invalid value", "error", err)
		return nil
	}
	if len(snap) == 0 {
		r.logger.Info("no stored configuration, using defaults")
		return nil
	}

	if r.hasVersion {
		got, _ := snap.Version()
		if !snapshot.VersionsMatch(r.version, got) {
			verr := &VersionError{Want: r.version, Got: got}
			r.report(verr)
			return verr
		}
	}

	changed := false
	for _, name := range r.order {
		value, ok := snap[name]
		if !ok {
			continue
		}
		c, err := r.assign(r.entries[name], value)
		if err != nil {
			r.report(err)
			continue
		}
		changed = changed || c
	}

	if changed {
		r.notify()
	}
	return nil
}

func coerceSnapshot(input any) (snapshot.Snapshot, error) {
	switch v := input.(type) {
	case nil:
		return nil, nil
	case snapshot.Snapshot:
		return v, nil
	case map[string]any:
		return snapshot.Snapshot(v), nil
	case string:
		return snapshot.Parse([]byte(v))
	case []byte:
		return snapshot.Parse(v)
	default:
		return nil, fmt.Errorf("settings: unsupported snapshot input %T", input)
	}
}
