// Package gate runs pre-flight checks on an arbitrary JSON value: allowed
// type, serialized size, string/array length, object depth and key count.
package gate

import (
	"sort"
	"unicode/utf8"

	json "github.com/goccy/go-json"

	multitools "github.com/YanKe1816/multi-tools-server"
	"github.com/YanKe1816/multi-tools-server/i18n"
	"github.com/YanKe1816/multi-tools-server/internal/jsonx"
)

// Tool is the registered tool name.
const Tool = "input_gate"

// Modes. Strict stops at the first failing check; permissive collects every
// reason.
const (
	ModeStrict     = "strict"
	ModePermissive = "permissive"
)

// DefaultRules returns the built-in rule set. Overrides replace top-level
// scalars and merge into the per-type sections.
func DefaultRules() map[string]any {
	return map[string]any{
		"max_size":    json.Number("10000"),
		"allow_types": []any{"object", "array", "string", "number", "boolean", "null"},
		"string":      map[string]any{"min_length": json.Number("0"), "max_length": json.Number("2000")},
		"object":      map[string]any{"max_depth": json.Number("8"), "max_keys": json.Number("100")},
		"array":       map[string]any{"max_length": json.Number("200")},
	}
}

// Reason is one failed check.
type Reason struct {
	Code    string `json:"code"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Result is the input_gate operation result. Reasons are sorted by code,
// path, message.
type Result struct {
	Pass    bool     `json:"pass"`
	Reasons []Reason `json:"reasons"`
}

// Check gates value against the merged rule set. Checks run in a fixed
// order: type, size, string bounds, array length, object depth, object key
// count.
func Check(value any, overrides map[string]any, mode string) (*Result, *multitools.StructuredError) {
	if mode != ModeStrict && mode != ModePermissive {
		return nil, multitools.NewError(Tool, "validate", multitools.CodeModeInvalid, i18n.T("MODE_INVALID", nil))
	}
	rules := MergeRules(overrides)
	if !rulesValid(rules) {
		return nil, multitools.NewError(Tool, "validate", multitools.CodeRulesInvalid, i18n.T("RULES_INVALID", nil))
	}

	strict := mode == ModeStrict
	var reasons []Reason
	add := func(code string) bool {
		reasons = append(reasons, Reason{Code: code, Path: "$", Message: i18n.T(code, nil)})
		return strict
	}
	finish := func() (*Result, *multitools.StructuredError) {
		sort.Slice(reasons, func(i, j int) bool {
			a, b := reasons[i], reasons[j]
			if a.Code != b.Code {
				return a.Code < b.Code
			}
			if a.Path != b.Path {
				return a.Path < b.Path
			}
			return a.Message < b.Message
		})
		if reasons == nil {
			reasons = []Reason{}
		}
		return &Result{Pass: len(reasons) == 0, Reasons: reasons}, nil
	}

	valueType := jsonx.TypeName(value)
	if valueType == "unknown" || !typeAllowed(rules, valueType) {
		if add("TYPE_NOT_ALLOWED") {
			return finish()
		}
	}
	if float64(jsonx.Size(value)) > ruleNumber(rules, "max_size") {
		if add("JSON_TOO_LARGE") {
			return finish()
		}
	}
	switch valueType {
	case "string":
		length := float64(utf8.RuneCountInString(value.(string)))
		if length < sectionNumber(rules, "string", "min_length") {
			if add("STRING_TOO_SHORT") {
				return finish()
			}
		}
		if length > sectionNumber(rules, "string", "max_length") {
			if add("STRING_TOO_LONG") {
				return finish()
			}
		}
	case "array":
		if list, ok := value.([]any); ok {
			if float64(len(list)) > sectionNumber(rules, "array", "max_length") {
				if add("ARRAY_TOO_LONG") {
					return finish()
				}
			}
		}
	case "object":
		if float64(objectDepth(value, 0)) > sectionNumber(rules, "object", "max_depth") {
			if add("OBJECT_TOO_DEEP") {
				return finish()
			}
		}
		if float64(maxObjectKeys(value)) > sectionNumber(rules, "object", "max_keys") {
			if add("OBJECT_TOO_MANY_KEYS") {
				return finish()
			}
		}
	}
	return finish()
}

// MergeRules overlays caller overrides onto the defaults. max_size and
// allow_types replace wholesale; string/object/array sections merge per
// key when the override is an object.
func MergeRules(overrides map[string]any) map[string]any {
	merged := DefaultRules()
	if overrides == nil {
		return merged
	}
	for _, key := range []string{"max_size", "allow_types"} {
		if v, ok := overrides[key]; ok {
			merged[key] = v
		}
	}
	for _, key := range []string{"string", "object", "array"} {
		section, ok := overrides[key].(map[string]any)
		if !ok {
			continue
		}
		base := merged[key].(map[string]any)
		for k, v := range section {
			base[k] = v
		}
	}
	return merged
}

var knownTypes = map[string]struct{}{
	"object": {}, "array": {}, "string": {}, "number": {}, "boolean": {}, "null": {},
}

func rulesValid(rules map[string]any) bool {
	maxSize, ok := number(rules["max_size"])
	if !ok || maxSize <= 0 {
		return false
	}
	allowTypes, ok := rules["allow_types"].([]any)
	if !ok || len(allowTypes) == 0 {
		return false
	}
	for _, item := range allowTypes {
		name, ok := item.(string)
		if !ok {
			return false
		}
		if _, ok := knownTypes[name]; !ok {
			return false
		}
	}
	for _, check := range []struct{ section, field string }{
		{"string", "min_length"},
		{"string", "max_length"},
		{"object", "max_depth"},
		{"object", "max_keys"},
		{"array", "max_length"},
	} {
		section, ok := rules[check.section].(map[string]any)
		if !ok {
			return false
		}
		if _, ok := number(section[check.field]); !ok {
			return false
		}
	}
	return true
}

func typeAllowed(rules map[string]any, name string) bool {
	list, _ := rules["allow_types"].([]any)
	for _, item := range list {
		if item == name {
			return true
		}
	}
	return false
}

func ruleNumber(rules map[string]any, key string) float64 {
	n, _ := number(rules[key])
	return n
}

func sectionNumber(rules map[string]any, section, key string) float64 {
	m, _ := rules[section].(map[string]any)
	n, _ := number(m[key])
	return n
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// objectDepth counts nesting of objects only; arrays pass depth through.
func objectDepth(value any, current int) int {
	switch x := value.(type) {
	case map[string]any:
		depth := current + 1
		deepest := depth
		for _, child := range x {
			if d := objectDepth(child, depth); d > deepest {
				deepest = d
			}
		}
		return deepest
	case *jsonx.Object:
		depth := current + 1
		deepest := depth
		for _, key := range x.Keys() {
			child, _ := x.Get(key)
			if d := objectDepth(child, depth); d > deepest {
				deepest = d
			}
		}
		return deepest
	case []any:
		deepest := current
		for _, item := range x {
			if d := objectDepth(item, current); d > deepest {
				deepest = d
			}
		}
		return deepest
	}
	return current
}

func maxObjectKeys(value any) int {
	switch x := value.(type) {
	case map[string]any:
		most := len(x)
		for _, child := range x {
			if n := maxObjectKeys(child); n > most {
				most = n
			}
		}
		return most
	case *jsonx.Object:
		most := x.Len()
		for _, key := range x.Keys() {
			child, _ := x.Get(key)
			if n := maxObjectKeys(child); n > most {
				most = n
			}
		}
		return most
	case []any:
		most := 0
		for _, item := range x {
			if n := maxObjectKeys(item); n > most {
				most = n
			}
		}
		return most
	}
	return 0
}
