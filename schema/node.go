// Package schema implements the restricted JSON Schema grammar shared by the
// validator and the differ: a closed tagged node model, per-component
// keyword grammars, unsupported-construct detection, and the path-keyed
// summary walker.
package schema

import (
	json "github.com/goccy/go-json"

	"github.com/YanKe1816/multi-tools-server/internal/jsonx"
)

// Type enumerates the supported schema node types. Unknown covers a missing
// or unrecognized "type" keyword.
type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeNull    Type = "null"
	TypeUnknown Type = "unknown"
)

var supportedTypes = map[string]struct{}{
	"object": {}, "array": {}, "string": {}, "number": {},
	"integer": {}, "boolean": {}, "null": {},
}

// Node is one level of the restricted grammar. The type determines which of
// the other fields are meaningful; construction is lenient the way the
// validator grammar is (ill-shaped keyword values simply leave the field
// unset), so callers must run CheckSupported first to reject what their
// grammar forbids.
type Node struct {
	Type Type

	// Object. PropNames lists every declared property in schema order;
	// Props holds the subset whose schemas are objects themselves.
	// PropsInvalid marks a properties keyword whose value is not an object;
	// property and additional-property checks are skipped in that case.
	PropNames    []string
	Props        map[string]*Node
	Required     []string
	PropsInvalid bool

	// Array.
	Items *Node

	// Leaf constraints. Enum preserves declared order.
	Enum      []any
	MinLength *int
	MaxLength *int
}

// Parse builds the node tree from a decoded schema document without any
// grammar checking.
func Parse(doc *jsonx.Object) *Node {
	n := &Node{Type: TypeUnknown}
	if tv, ok := doc.Get("type"); ok {
		if s, ok := tv.(string); ok {
			if _, ok := supportedTypes[s]; ok {
				n.Type = Type(s)
			}
		}
	}
	if pv, ok := doc.Get("properties"); ok {
		po, isObject := pv.(*jsonx.Object)
		n.PropsInvalid = !isObject
		if isObject {
			n.Props = map[string]*Node{}
			for _, key := range po.Keys() {
				n.PropNames = append(n.PropNames, key)
				if child, _ := po.Get(key); child != nil {
					if co, ok := child.(*jsonx.Object); ok {
						n.Props[key] = Parse(co)
					}
				}
			}
		}
	}
	if rv, ok := doc.Get("required"); ok {
		if list, ok := rv.([]any); ok {
			for _, item := range list {
				if s, ok := item.(string); ok {
					n.Required = append(n.Required, s)
				}
			}
		}
	}
	if iv, ok := doc.Get("items"); ok {
		if io, ok := iv.(*jsonx.Object); ok {
			n.Items = Parse(io)
		}
	}
	if ev, ok := doc.Get("enum"); ok {
		if list, ok := ev.([]any); ok {
			n.Enum = append([]any{}, list...)
		}
	}
	n.MinLength = intKeyword(doc, "minLength")
	n.MaxLength = intKeyword(doc, "maxLength")
	return n
}

func intKeyword(doc *jsonx.Object, key string) *int {
	v, ok := doc.Get(key)
	if !ok {
		return nil
	}
	num, ok := v.(json.Number)
	if !ok {
		return nil
	}
	i64, err := num.Int64()
	if err != nil {
		return nil
	}
	i := int(i64)
	return &i
}

// Compile rejects unsupported keywords under the given grammar, then builds
// the node tree. Rejection happens at construction time, not mid-traversal.
func Compile(doc *jsonx.Object, g Grammar) (*Node, *UnsupportedError) {
	if key, found := CheckSupported(doc, g); found {
		return nil, &UnsupportedError{Key: key}
	}
	return Parse(doc), nil
}

// UnsupportedError names the first schema keyword outside the grammar.
type UnsupportedError struct{ Key string }

func (e *UnsupportedError) Error() string {
	return "schema: unsupported keyword " + e.Key
}
