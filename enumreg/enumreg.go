// Package enumreg matches query values against a named enum set, with
// alias resolution and configurable normalization.
package enumreg

import (
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	multitools "github.com/YanKe1816/multi-tools-server"
)

// Tool is the registered tool name.
const Tool = "enum_registry"

// Set is a caller-supplied enum set. Field shapes are checked at match
// time, not decode time, so shape problems map to stable error codes
// instead of generic decode failures.
type Set struct {
	Name    any `json:"name"`
	Version any `json:"version"`
	Items   any `json:"items"`
}

// Query carries the values to resolve. Mode defaults to strict, which
// additionally rejects an empty value list.
type Query struct {
	Values any `json:"values"`
	Mode   any `json:"mode"`
}

// Policy tunes normalization. Nil fields take the defaults: case_fold
// true, trim true, max_values 100.
type Policy struct {
	CaseFold  any `json:"case_fold"`
	Trim      any `json:"trim"`
	MaxValues any `json:"max_values"`
}

// Match is one resolved value.
type Match struct {
	Input string `json:"input"`
	Key   string `json:"key"`
}

// Miss is one unresolved or ambiguous value.
type Miss struct {
	Input string `json:"input"`
	Code  string `json:"code"`
}

// Result is the enum_registry operation result. All three lists are sorted
// by input value.
type Result struct {
	Name       string  `json:"name"`
	Version    string  `json:"version"`
	Matched    []Match `json:"matched"`
	Missing    []Miss  `json:"missing"`
	Duplicates []Miss  `json:"duplicates"`
}

// Resolve matches every query value against the enum set. Key matches win
// over alias matches; a normalized value hitting more than one key is
// ambiguous, not matched.
func Resolve(set Set, query Query, policy Policy) (*Result, *multitools.StructuredError) {
	caseFold, ok := boolOrDefault(policy.CaseFold, true)
	if !ok {
		return nil, fail(multitools.CodePolicyInvalid, "policy.case_fold and policy.trim must be boolean.")
	}
	trim, ok := boolOrDefault(policy.Trim, true)
	if !ok {
		return nil, fail(multitools.CodePolicyInvalid, "policy.case_fold and policy.trim must be boolean.")
	}
	maxValues, ok := intOrDefault(policy.MaxValues, 100)
	if !ok || maxValues <= 0 {
		return nil, fail(multitools.CodePolicyInvalid, "policy.max_values must be a positive integer.")
	}

	name, nameOK := set.Name.(string)
	version, versionOK := set.Version.(string)
	if !nameOK || !versionOK {
		return nil, fail(multitools.CodeEnumInvalid, "enum_set.name and enum_set.version must be strings.")
	}
	items, ok := set.Items.([]any)
	if !ok {
		return nil, fail(multitools.CodeEnumInvalid, "enum_set.items must be a list.")
	}
	if len(items) == 0 {
		return nil, fail(multitools.CodeEnumEmpty, "enum_set.items is empty.")
	}

	rawValues, ok := query.Values.([]any)
	if !ok {
		return nil, fail(multitools.CodeEnumInvalid, "query.values must be a list of strings.")
	}
	mode, ok := stringOrDefault(query.Mode, "strict")
	if !ok || (mode != "strict" && mode != "permissive") {
		return nil, fail(multitools.CodeEnumInvalid, "query.mode must be strict or permissive.")
	}
	if mode == "strict" && len(rawValues) == 0 {
		return nil, fail(multitools.CodeEnumInvalid, "query.values empty")
	}
	if len(rawValues) > maxValues {
		return nil, fail(multitools.CodeTooManyValues, "query.values exceeds policy.max_values.")
	}
	values := make([]string, len(rawValues))
	for i, raw := range rawValues {
		s, ok := raw.(string)
		if !ok {
			return nil, fail(multitools.CodeEnumInvalid, "query.values must be a list of strings.")
		}
		values[i] = s
	}

	keyMap := map[string]map[string]struct{}{}
	aliasMap := map[string]map[string]struct{}{}
	record := func(index map[string]map[string]struct{}, normalized, key string) {
		if index[normalized] == nil {
			index[normalized] = map[string]struct{}{}
		}
		index[normalized][key] = struct{}{}
	}
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			return nil, fail(multitools.CodeEnumInvalid, "enum_set.items entries must be objects.")
		}
		key, ok := item["key"].(string)
		if !ok {
			return nil, fail(multitools.CodeEnumInvalid, "enum_set.items.key must be a string.")
		}
		aliases, ok := stringList(item["aliases"])
		if !ok {
			return nil, fail(multitools.CodeEnumInvalid, "enum_set.items.aliases must be a list of strings.")
		}
		if meta, present := item["meta"]; present && meta != nil {
			if _, ok := meta.(map[string]any); !ok {
				return nil, fail(multitools.CodeEnumInvalid, "enum_set.items.meta must be an object.")
			}
		}
		record(keyMap, normalize(key, trim, caseFold), key)
		for _, alias := range aliases {
			record(aliasMap, normalize(alias, trim, caseFold), key)
		}
	}

	matched := []Match{}
	missing := []Miss{}
	duplicates := []Miss{}
	for _, value := range values {
		normalized := normalize(value, trim, caseFold)
		if hits := keyMap[normalized]; len(hits) > 0 {
			if len(hits) > 1 {
				duplicates = append(duplicates, Miss{Input: value, Code: "AMBIGUOUS_ALIAS"})
			} else {
				matched = append(matched, Match{Input: value, Key: firstKey(hits)})
			}
			continue
		}
		if hits := aliasMap[normalized]; len(hits) > 0 {
			if len(hits) > 1 {
				duplicates = append(duplicates, Miss{Input: value, Code: "AMBIGUOUS_ALIAS"})
			} else {
				matched = append(matched, Match{Input: value, Key: firstKey(hits)})
			}
			continue
		}
		missing = append(missing, Miss{Input: value, Code: "NOT_IN_ENUM"})
	}

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Input < matched[j].Input })
	sort.SliceStable(missing, func(i, j int) bool { return missing[i].Input < missing[j].Input })
	sort.SliceStable(duplicates, func(i, j int) bool { return duplicates[i].Input < duplicates[j].Input })

	return &Result{
		Name:       name,
		Version:    version,
		Matched:    matched,
		Missing:    missing,
		Duplicates: duplicates,
	}, nil
}

func fail(code, message string) *multitools.StructuredError {
	return multitools.NewError(Tool, "validate", code, message)
}

func normalize(value string, trim, caseFold bool) string {
	if trim {
		value = strings.TrimSpace(value)
	}
	if caseFold {
		value = strings.ToLower(value)
	}
	return value
}

func boolOrDefault(v any, def bool) (bool, bool) {
	if v == nil {
		return def, true
	}
	b, ok := v.(bool)
	return b, ok
}

func intOrDefault(v any, def int) (int, bool) {
	if v == nil {
		return def, true
	}
	num, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := num.Int64()
	if err != nil {
		return 0, false
	}
	return int(i), true
}

func stringOrDefault(v any, def string) (string, bool) {
	if v == nil {
		return def, true
	}
	s, ok := v.(string)
	return s, ok
}

func stringList(v any) ([]string, bool) {
	if v == nil {
		return nil, true
	}
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}

func firstKey(hits map[string]struct{}) string {
	keys := make([]string, 0, len(hits))
	for k := range hits {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0]
}
