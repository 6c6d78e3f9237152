// Package snapshot defines the plain, serializable copy of a settings
// registry and its wire codecs. A Snapshot is a flat object mapping entry
// names to values (boolean, string, number, or list of strings) plus the
// reserved VersionKey used for compatibility gating.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// VersionKey is the reserved snapshot key carrying the compatibility version.
const VersionKey = "_version"

// Format selects a wire encoding.
type Format string

const (
	// FormatJSON is the canonical wire format.
	FormatJSON Format = "json"
	// FormatYAML encodes the same flat object as YAML.
	FormatYAML Format = "yaml"
)

// ErrUnsupportedFormat is returned for unknown Format values.
var ErrUnsupportedFormat = errors.New("snapshot: unsupported format")

// Snapshot is a caller-owned copy of registry values.
type Snapshot map[string]any

// Version returns the VersionKey value when present.
func (s Snapshot) Version() (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s[VersionKey]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Clone returns a deep-independent copy of s.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	for key, value := range s {
		out[key] = CloneValue(value)
	}
	return out
}

// Keys returns the snapshot keys in sorted order.
func (s Snapshot) Keys() []string {
	return slices.Sorted(maps.Keys(s))
}

// Encode serializes s in the requested format.
func (s Snapshot) Encode(format Format) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return json.Marshal(map[string]any(s))
	case FormatYAML:
		return yaml.Marshal(map[string]any(s))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Parse decodes a JSON snapshot. The payload must be a JSON object.
func Parse(data []byte) (Snapshot, error) {
	return Decode(data, FormatJSON)
}

// ParseYAML decodes a YAML snapshot.
func ParseYAML(data []byte) (Snapshot, error) {
	return Decode(data, FormatYAML)
}

// Decode parses data in the given format. Blank payloads decode to a nil
// snapshot without error.
func Decode(data []byte, format Format) (Snapshot, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var raw map[string]any
	switch format {
	case FormatJSON, "":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("snapshot: decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("snapshot: decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return Snapshot(raw), nil
}

// FormatFromPath infers the wire format from a file name.
func FormatFromPath(path string) Format {
	lower := strings.ToLower(strings.TrimSpace(path))
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return FormatYAML
	}
	return FormatJSON
}

// CloneValue copies list values so the result shares no backing array with
// value. Scalars are returned unchanged.
func CloneValue(value any) any {
	switch v := value.(type) {
	case []string:
		if v == nil {
			return []string{}
		}
		return slices.Clone(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = CloneValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = CloneValue(item)
		}
		return out
	default:
		return value
	}
}

// VersionsMatch reports whether two version tags are equal. Numbers and
// numeric strings compare by value, so 2, float64(2), "2" and "2.0" all match.
// Other strings compare exactly ("1.0.0" only matches "1.0.0"). Any other
// pair, such as true and "true", matches only when deeply equal. nil only
// matches nil.
func VersionsMatch(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	x, xok := versionNumber(a)
	y, yok := versionNumber(b)
	if xok && yok {
		return x == y
	}
	if xs, ok := a.(string); ok {
		ys, ok := b.(string)
		return ok && xs == ys
	}
	return reflect.DeepEqual(a, b)
}

func versionNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
