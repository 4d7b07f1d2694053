package budget

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Fields is a string-keyed mapping that remembers insertion order. The
// allocator relies on that order for deterministic tie-breaking, so raw
// context must flow through Fields rather than a plain map.
type Fields struct {
	keys   []string
	values map[string]any
}

// NewFields returns an empty ordered mapping.
func NewFields() *Fields {
	return &Fields{values: make(map[string]any)}
}

// Set stores value under key, appending the key on first use. Setting an
// existing key overwrites the value but keeps the original position.
func (f *Fields) Set(key string, value any) {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Get returns the value stored under key.
func (f *Fields) Get(key string) (any, bool) {
	value, ok := f.values[key]
	return value, ok
}

// Keys returns the keys in insertion order. The slice is a copy.
func (f *Fields) Keys() []string {
	keys := make([]string, len(f.keys))
	copy(keys, f.keys)
	return keys
}

// Len reports the number of stored keys.
func (f *Fields) Len() int {
	return len(f.keys)
}

// MarshalJSON emits the mapping as a JSON object with keys in insertion
// order. Nested plain maps are serialized with sorted keys by encoding/json,
// which keeps the overall form canonical.
func (f *Fields) MarshalJSON() ([]byte, error) {
	if f == nil || len(f.keys) == 0 {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range f.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, fmt.Errorf("budget: marshal key %q: %w", key, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(f.values[key])
		if err != nil {
			return nil, fmt.Errorf("budget: marshal value for %q: %w", key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParseFields decodes a JSON object into Fields, preserving the document's
// key order. It is the intended way to build raw context from caller
// supplied JSON.
func ParseFields(data []byte) (*Fields, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("budget: context payload is not valid JSON")
	}
	parsed := gjson.ParseBytes(data)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("budget: context payload must be a JSON object, got %s", parsed.Type)
	}
	fields := NewFields()
	parsed.ForEach(func(key, value gjson.Result) bool {
		fields.Set(key.String(), value.Value())
		return true
	})
	return fields, nil
}
