package schema

import (
	"sort"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/YanKe1816/multi-tools-server/internal/jsonx"
)

// Grammar is the set of schema keywords a component accepts. The strict
// variant additionally checks keyword value shapes; the lenient variant only
// walks key names.
type Grammar struct {
	allowed      map[string]struct{}
	strictValues bool
}

// GrammarValidate is the validator's keyword set. Value shapes are not
// checked here; ill-shaped values surface as validation issues instead.
var GrammarValidate = Grammar{
	allowed: keySet("type", "properties", "required", "minLength", "maxLength", "enum", "items"),
}

// GrammarDiff is the differ's keyword set. Length bounds are out of scope
// for structural comparison, and keyword values must have their declared
// shapes.
var GrammarDiff = Grammar{
	allowed:      keySet("type", "properties", "required", "items", "enum"),
	strictValues: true,
}

// forbiddenKeys are composition and reference keywords rejected by every
// grammar. "$ref" gets its own message at the tool layer.
var forbiddenKeys = keySet("$ref", "anyOf", "oneOf", "allOf", "not", "if", "then", "else")

func keySet(keys ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Forbidden reports whether key is a composition/reference keyword.
func Forbidden(key string) bool {
	_, ok := forbiddenKeys[key]
	return ok
}

// CheckSupported walks the document in declared key order and returns the
// first keyword outside the grammar. found is false when the whole document
// is supported. Objects nested in lists are walked elementwise.
func CheckSupported(v any, g Grammar) (key string, found bool) {
	return checkSupported(v, g, 0)
}

func checkSupported(v any, g Grammar, depth int) (string, bool) {
	if depth > jsonx.MaxDepth {
		return "", false
	}
	switch node := v.(type) {
	case *jsonx.Object:
		for _, key := range node.Keys() {
			if _, ok := forbiddenKeys[key]; ok {
				return key, true
			}
			if _, ok := g.allowed[key]; !ok {
				return key, true
			}
			value, _ := node.Get(key)
			if g.strictValues {
				if bad, found := checkStrictValue(key, value, g, depth); found {
					return bad, true
				}
				continue
			}
			switch key {
			case "properties":
				if po, ok := value.(*jsonx.Object); ok {
					for _, prop := range po.Keys() {
						child, _ := po.Get(prop)
						if bad, found := checkSupported(child, g, depth+1); found {
							return bad, true
						}
					}
				}
			case "items":
				if bad, found := checkSupported(value, g, depth+1); found {
					return bad, true
				}
			}
		}
	case []any:
		for _, item := range node {
			if bad, found := checkSupported(item, g, depth+1); found {
				return bad, true
			}
		}
	}
	return "", false
}

func checkStrictValue(key string, value any, g Grammar, depth int) (string, bool) {
	switch key {
	case "type":
		s, ok := value.(string)
		if !ok {
			return key, true
		}
		if _, ok := supportedTypes[s]; !ok {
			return key, true
		}
	case "properties":
		po, ok := value.(*jsonx.Object)
		if !ok {
			return key, true
		}
		for _, prop := range po.Keys() {
			child, _ := po.Get(prop)
			if bad, found := checkSupported(child, g, depth+1); found {
				return bad, true
			}
		}
	case "required":
		list, ok := value.([]any)
		if !ok {
			return key, true
		}
		for _, item := range list {
			if _, ok := item.(string); !ok {
				return key, true
			}
		}
	case "items":
		io, ok := value.(*jsonx.Object)
		if !ok {
			return key, true
		}
		if bad, found := checkSupported(io, g, depth+1); found {
			return bad, true
		}
	case "enum":
		if _, ok := value.([]any); !ok {
			return key, true
		}
	}
	return "", false
}

// Summary describes one schema path for structural comparison. Required is
// nil for paths that have no object parent (array items).
type Summary struct {
	Type     string `json:"type"`
	Required *bool  `json:"required"`
	Enum     []any  `json:"enum"`
}

// Summarize flattens the node tree into one Summary per path below the
// root. Object children get "parent.key" paths, array items "parent[]"; the
// root itself is not summarized.
func Summarize(n *Node, ignoreOrder bool) map[string]Summary {
	out := map[string]Summary{}
	summarize(n, "", nil, ignoreOrder, out, 0)
	return out
}

func summarize(n *Node, path string, required *bool, ignoreOrder bool, out map[string]Summary, depth int) {
	if n == nil || depth > jsonx.MaxDepth {
		return
	}
	if path != "" {
		out[path] = Summary{
			Type:     string(n.Type),
			Required: required,
			Enum:     NormalizeEnum(n.Enum, ignoreOrder),
		}
	}
	switch n.Type {
	case TypeObject:
		reqSet := make(map[string]bool, len(n.Required))
		for _, name := range n.Required {
			reqSet[name] = true
		}
		for _, name := range n.PropNames {
			child, ok := n.Props[name]
			if !ok {
				continue
			}
			r := reqSet[name]
			summarize(child, joinPath(path, name), &r, ignoreOrder, out, depth+1)
		}
	case TypeArray:
		if n.Items != nil {
			summarize(n.Items, path+"[]", nil, ignoreOrder, out, depth+1)
		}
	}
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// NormalizeEnum returns the enum values ready for comparison. With
// ignoreOrder the values are deduplicated (numeric equality, 1 and 1.0
// collapse) and sorted: numerically when all values are numbers, lexically
// when all are strings, otherwise by canonical JSON rendering. Without
// ignoreOrder the declared order is kept verbatim. Returns nil for a nil
// enum so absent and present-but-empty stay distinguishable.
func NormalizeEnum(enum []any, ignoreOrder bool) []any {
	if enum == nil {
		return nil
	}
	if !ignoreOrder {
		return append([]any{}, enum...)
	}
	uniq := make([]any, 0, len(enum))
	for _, v := range enum {
		dup := false
		for _, u := range uniq {
			if jsonx.Equal(u, v) {
				dup = true
				break
			}
		}
		if !dup {
			uniq = append(uniq, v)
		}
	}
	allNumbers, allStrings := len(uniq) > 0, len(uniq) > 0
	for _, v := range uniq {
		if _, ok := numeric(v); !ok {
			allNumbers = false
		}
		if _, ok := v.(string); !ok {
			allStrings = false
		}
	}
	switch {
	case allNumbers:
		sort.SliceStable(uniq, func(i, j int) bool {
			a, _ := numeric(uniq[i])
			b, _ := numeric(uniq[j])
			return a < b
		})
	case allStrings:
		sort.SliceStable(uniq, func(i, j int) bool {
			return uniq[i].(string) < uniq[j].(string)
		})
	default:
		sort.SliceStable(uniq, func(i, j int) bool {
			return canonicalKey(uniq[i]) < canonicalKey(uniq[j])
		})
	}
	return uniq
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case bool:
		return 0, false
	}
	return 0, false
}

func canonicalKey(v any) string {
	s, err := jsonx.Canonical(v)
	if err != nil {
		return ""
	}
	return s
}
