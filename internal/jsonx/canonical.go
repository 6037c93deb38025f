package jsonx

import (
	"sort"
	"strings"
	"unicode/utf8"

	json "github.com/goccy/go-json"
)

// Canonical serializes a value as compact JSON with object keys sorted
// lexicographically. Two structurally equal documents always canonicalize to
// the same bytes regardless of their input key order. Numbers decoded as
// json.Number are emitted verbatim.
func Canonical(v any) (string, error) {
	var b strings.Builder
	if err := writeCanonical(&b, v, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Size returns the canonical JSON length of a value in Unicode code points.
func Size(v any) int {
	s, err := Canonical(v)
	if err != nil {
		return 0
	}
	return utf8.RuneCountInString(s)
}

func writeCanonical(b *strings.Builder, v any, depth int) error {
	if depth > MaxDepth {
		return ErrTooDeep
	}
	switch x := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		if x {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case string:
		enc, err := json.Marshal(x)
		if err != nil {
			return err
		}
		b.Write(enc)
	case json.Number:
		b.WriteString(x.String())
	case []any:
		b.WriteByte('[')
		for i, item := range x {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeCanonical(b, item, depth+1); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case *Object:
		keys := append([]string(nil), x.keys...)
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeCanonicalMember(b, k, x.values[k], depth); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeCanonicalMember(b, k, x[k], depth); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	default:
		enc, err := json.Marshal(x)
		if err != nil {
			return err
		}
		b.Write(enc)
	}
	return nil
}

func writeCanonicalMember(b *strings.Builder, key string, value any, depth int) error {
	enc, err := json.Marshal(key)
	if err != nil {
		return err
	}
	b.Write(enc)
	b.WriteByte(':')
	return writeCanonical(b, value, depth+1)
}

// Equal reports structural equality of two decoded values. Numbers compare
// numerically ("1" equals "1.0"); booleans never equal numbers; objects
// compare by key set, ignoring order.
func Equal(a, b any) bool {
	ta, tb := TypeName(a), TypeName(b)
	if ta != tb {
		return false
	}
	switch ta {
	case "null":
		return true
	case "boolean":
		return a.(bool) == b.(bool)
	case "string":
		return a.(string) == b.(string)
	case "number":
		fa, oka := toFloat(a)
		fb, okb := toFloat(b)
		return oka && okb && fa == fb
	case "array":
		xa, xb := a.([]any), b.([]any)
		if len(xa) != len(xb) {
			return false
		}
		for i := range xa {
			if !Equal(xa[i], xb[i]) {
				return false
			}
		}
		return true
	case "object":
		oa, ob := asMap(a), asMap(b)
		if len(oa) != len(ob) {
			return false
		}
		for k, va := range oa {
			vb, ok := ob[k]
			if !ok || !Equal(va, vb) {
				return false
			}
		}
		return true
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

func asMap(v any) map[string]any {
	switch x := v.(type) {
	case map[string]any:
		return x
	case *Object:
		return x.values
	}
	return nil
}
