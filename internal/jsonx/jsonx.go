// Package jsonx holds the JSON value model shared by the tool engines:
// order-preserving decoding, canonical serialization, and structural helpers.
//
// Decoded values use a closed set of Go types: nil, bool, string,
// json.Number, []any, and *Object. Object preserves the declared key order of
// the input document, which the schema engine relies on for reporting the
// first offending keyword.
package jsonx

import (
	"errors"

	json "github.com/goccy/go-json"
)

// MaxDepth caps nesting for decoding and recursive walks. Attacker-supplied
// nesting beyond this is rejected instead of risking stack exhaustion.
const MaxDepth = 64

// ErrTooDeep reports a document nested beyond MaxDepth.
var ErrTooDeep = errors.New("jsonx: document nesting exceeds maximum depth")

// Object is an insertion-ordered string-keyed JSON object. Setting an
// existing key overwrites the value but keeps the original position, the
// same way dict assignment behaves in dynamic runtimes.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return &Object{values: map[string]any{}}
}

// Len returns the number of keys.
func (o *Object) Len() int { return len(o.keys) }

// Keys returns the keys in insertion order. The slice is shared; callers
// must not mutate it.
func (o *Object) Keys() []string { return o.keys }

// Get returns the value for key and whether it is present.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Set stores the value for key, appending the key when new.
func (o *Object) Set(key string, value any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	if _, ok := o.values[key]; !ok {
		return false
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// MarshalJSON emits members in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, k := range o.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, vb...)
	}
	return append(buf, '}'), nil
}

// TypeName names the JSON type of a decoded value: object, array, string,
// number, boolean, null, or unknown. Booleans are never numbers.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case *Object, map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number, float64, int, int64:
		return "number"
	}
	return "unknown"
}

// DeepCopy clones maps, ordered objects, and slices; scalars are shared
// because every decoded scalar type is immutable.
func DeepCopy(v any) any {
	switch x := v.(type) {
	case *Object:
		out := NewObject()
		for _, k := range x.keys {
			out.Set(k, DeepCopy(x.values[k]))
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = DeepCopy(item)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = DeepCopy(item)
		}
		return out
	}
	return v
}
