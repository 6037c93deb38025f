package enumreg_test

import (
	"testing"

	json "github.com/goccy/go-json"

	"github.com/YanKe1816/multi-tools-server/enumreg"
)

func statusSet(items ...map[string]any) enumreg.Set {
	list := make([]any, len(items))
	for i, item := range items {
		list[i] = item
	}
	return enumreg.Set{Name: "status", Version: "1", Items: list}
}

func values(vs ...string) any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

func TestResolveKeyAndAlias(t *testing.T) {
	set := statusSet(
		map[string]any{"key": "OPEN", "aliases": []any{"open", "o"}, "meta": map[string]any{}},
		map[string]any{"key": "CLOSED", "aliases": []any{"closed"}},
	)
	res, serr := enumreg.Resolve(set, enumreg.Query{Values: values("OPEN", "o", "gone")}, enumreg.Policy{})
	if serr != nil {
		t.Fatalf("error: %v", serr)
	}
	if res.Name != "status" || res.Version != "1" {
		t.Fatalf("res = %+v", res)
	}
	if len(res.Matched) != 2 || res.Matched[0].Input != "OPEN" || res.Matched[0].Key != "OPEN" {
		t.Fatalf("matched = %v", res.Matched)
	}
	if res.Matched[1].Input != "o" || res.Matched[1].Key != "OPEN" {
		t.Fatalf("matched = %v", res.Matched)
	}
	if len(res.Missing) != 1 || res.Missing[0].Input != "gone" || res.Missing[0].Code != "NOT_IN_ENUM" {
		t.Fatalf("missing = %v", res.Missing)
	}
}

func TestNormalizationTrimAndCaseFold(t *testing.T) {
	set := statusSet(map[string]any{"key": "OPEN", "aliases": []any{}})
	res, serr := enumreg.Resolve(set, enumreg.Query{Values: values("  open  ")}, enumreg.Policy{})
	if serr != nil {
		t.Fatalf("error: %v", serr)
	}
	if len(res.Matched) != 1 || res.Matched[0].Key != "OPEN" {
		t.Fatalf("matched = %v", res.Matched)
	}

	res, serr = enumreg.Resolve(set, enumreg.Query{Values: values("open")}, enumreg.Policy{CaseFold: false})
	if serr != nil {
		t.Fatalf("error: %v", serr)
	}
	if len(res.Missing) != 1 {
		t.Fatalf("case folding disabled must miss, res = %+v", res)
	}
}

func TestAmbiguousAlias(t *testing.T) {
	set := statusSet(
		map[string]any{"key": "OPEN", "aliases": []any{"o"}},
		map[string]any{"key": "OPEN2", "aliases": []any{"o"}},
	)
	res, serr := enumreg.Resolve(set, enumreg.Query{Values: values("o")}, enumreg.Policy{})
	if serr != nil {
		t.Fatalf("error: %v", serr)
	}
	if len(res.Duplicates) != 1 || res.Duplicates[0].Code != "AMBIGUOUS_ALIAS" {
		t.Fatalf("duplicates = %v", res.Duplicates)
	}
	if len(res.Matched) != 0 {
		t.Fatalf("matched = %v", res.Matched)
	}
}

func TestKeyMatchWinsOverAlias(t *testing.T) {
	set := statusSet(
		map[string]any{"key": "open", "aliases": []any{}},
		map[string]any{"key": "OTHER", "aliases": []any{"open"}},
	)
	res, serr := enumreg.Resolve(set, enumreg.Query{Values: values("open")}, enumreg.Policy{})
	if serr != nil {
		t.Fatalf("error: %v", serr)
	}
	if len(res.Matched) != 1 || res.Matched[0].Key != "open" {
		t.Fatalf("matched = %v", res.Matched)
	}
}

func TestValidationErrors(t *testing.T) {
	goodSet := statusSet(map[string]any{"key": "OPEN"})
	cases := []struct {
		name    string
		set     enumreg.Set
		query   enumreg.Query
		policy  enumreg.Policy
		code    string
		message string
	}{
		{"bad case_fold", goodSet, enumreg.Query{Values: values("x")}, enumreg.Policy{CaseFold: "yes"},
			"POLICY_INVALID", "policy.case_fold and policy.trim must be boolean."},
		{"bad max_values", goodSet, enumreg.Query{Values: values("x")}, enumreg.Policy{MaxValues: json.Number("0")},
			"POLICY_INVALID", "policy.max_values must be a positive integer."},
		{"non-string name", enumreg.Set{Name: 1, Version: "1", Items: []any{map[string]any{"key": "K"}}},
			enumreg.Query{Values: values("x")}, enumreg.Policy{},
			"ENUM_INVALID", "enum_set.name and enum_set.version must be strings."},
		{"items not a list", enumreg.Set{Name: "s", Version: "1", Items: "nope"},
			enumreg.Query{Values: values("x")}, enumreg.Policy{},
			"ENUM_INVALID", "enum_set.items must be a list."},
		{"empty items", enumreg.Set{Name: "s", Version: "1", Items: []any{}},
			enumreg.Query{Values: values("x")}, enumreg.Policy{},
			"ENUM_EMPTY", "enum_set.items is empty."},
		{"values not a list", goodSet, enumreg.Query{Values: "x"}, enumreg.Policy{},
			"ENUM_INVALID", "query.values must be a list of strings."},
		{"bad mode", goodSet, enumreg.Query{Values: values("x"), Mode: "lenient"}, enumreg.Policy{},
			"ENUM_INVALID", "query.mode must be strict or permissive."},
		{"strict empty values", goodSet, enumreg.Query{Values: values()}, enumreg.Policy{},
			"ENUM_INVALID", "query.values empty"},
		{"too many values", goodSet, enumreg.Query{Values: values("a", "b", "c")}, enumreg.Policy{MaxValues: json.Number("2")},
			"TOO_MANY_VALUES", "query.values exceeds policy.max_values."},
		{"non-string value", goodSet, enumreg.Query{Values: []any{1}}, enumreg.Policy{},
			"ENUM_INVALID", "query.values must be a list of strings."},
		{"item not object", enumreg.Set{Name: "s", Version: "1", Items: []any{"x"}},
			enumreg.Query{Values: values("x")}, enumreg.Policy{},
			"ENUM_INVALID", "enum_set.items entries must be objects."},
		{"item key missing", enumreg.Set{Name: "s", Version: "1", Items: []any{map[string]any{"aliases": []any{}}}},
			enumreg.Query{Values: values("x")}, enumreg.Policy{},
			"ENUM_INVALID", "enum_set.items.key must be a string."},
		{"bad aliases", enumreg.Set{Name: "s", Version: "1", Items: []any{map[string]any{"key": "K", "aliases": "x"}}},
			enumreg.Query{Values: values("x")}, enumreg.Policy{},
			"ENUM_INVALID", "enum_set.items.aliases must be a list of strings."},
		{"bad meta", enumreg.Set{Name: "s", Version: "1", Items: []any{map[string]any{"key": "K", "meta": "x"}}},
			enumreg.Query{Values: values("x")}, enumreg.Policy{},
			"ENUM_INVALID", "enum_set.items.meta must be an object."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, serr := enumreg.Resolve(tc.set, tc.query, tc.policy)
			if serr == nil || serr.Code != tc.code || serr.Message != tc.message {
				t.Fatalf("err = %+v, want %s %q", serr, tc.code, tc.message)
			}
		})
	}
}

func TestPermissiveAllowsEmptyValues(t *testing.T) {
	set := statusSet(map[string]any{"key": "OPEN"})
	res, serr := enumreg.Resolve(set, enumreg.Query{Values: values(), Mode: "permissive"}, enumreg.Policy{})
	if serr != nil {
		t.Fatalf("error: %v", serr)
	}
	if len(res.Matched) != 0 || len(res.Missing) != 0 || len(res.Duplicates) != 0 {
		t.Fatalf("res = %+v", res)
	}
}

func TestResultsSortByInput(t *testing.T) {
	set := statusSet(
		map[string]any{"key": "A"},
		map[string]any{"key": "B"},
	)
	res, serr := enumreg.Resolve(set, enumreg.Query{Values: values("b", "a", "z", "y")}, enumreg.Policy{})
	if serr != nil {
		t.Fatalf("error: %v", serr)
	}
	if res.Matched[0].Input != "a" || res.Matched[1].Input != "b" {
		t.Fatalf("matched = %v", res.Matched)
	}
	if res.Missing[0].Input != "y" || res.Missing[1].Input != "z" {
		t.Fatalf("missing = %v", res.Missing)
	}
}
