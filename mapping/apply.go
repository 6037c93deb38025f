package mapping

import (
	"sort"

	multitools "github.com/YanKe1816/multi-tools-server"
	"github.com/YanKe1816/multi-tools-server/i18n"
	"github.com/YanKe1816/multi-tools-server/internal/jsonx"
)

// Tool is the registered tool name.
const Tool = "schema_map"

// Modes. Strict voids the whole transformation on any rule failure;
// permissive reports failures alongside the partial result.
const (
	ModeStrict     = "strict"
	ModePermissive = "permissive"
)

// Rules is one transformation rule set, constructed fresh per request.
type Rules struct {
	Rename   map[string]string `json:"rename"`
	Drop     []string          `json:"drop"`
	Defaults map[string]any    `json:"defaults"`
	Require  []string          `json:"require"`
}

// Error is one per-record rule failure. Rule failures are results, not
// request failures.
type Error struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the schema_map operation result. Data and Applied are null in
// strict mode when any rule failed.
type Result struct {
	OK      bool           `json:"ok"`
	Data    map[string]any `json:"data"`
	Applied []string       `json:"applied"`
	Errors  []Error        `json:"errors"`
}

// Apply runs the rule set against a deep copy of data. The caller's tree is
// never modified. Every path in every category is validated before any
// mutation; processing inside each stage is sorted, so rule entry order
// never affects the outcome.
func Apply(data map[string]any, rules Rules, mode string) (*Result, *multitools.StructuredError) {
	if mode != ModeStrict && mode != ModePermissive {
		return nil, multitools.NewError(Tool, "validate", multitools.CodeModeInvalid, i18n.T("MODE_INVALID", nil))
	}
	if bad, found := firstInvalidPath(rules); found {
		return nil, multitools.NewErrorAt(Tool, "validate", bad, multitools.ClassInputInvalid,
			multitools.CodeMappingInvalid, i18n.T("MAPPING_INVALID", map[string]string{"path": bad}), 400)
	}

	tree, _ := jsonx.DeepCopy(data).(map[string]any)
	if tree == nil {
		tree = map[string]any{}
	}
	applied := []string{}
	var errors []Error

	for _, pair := range sortedRenames(rules.Rename) {
		value, found := Get(tree, pair.source)
		if !found {
			errors = append(errors, Error{Path: pair.source, Code: "SOURCE_PATH_MISSING", Message: i18n.T("SOURCE_PATH_MISSING", nil)})
			continue
		}
		Set(tree, pair.target, value)
		Delete(tree, pair.source)
		applied = append(applied, "rename:"+pair.source+"->"+pair.target)
	}

	for _, target := range sortedKeys(rules.Defaults) {
		if _, found := Get(tree, target); !found {
			Set(tree, target, rules.Defaults[target])
			applied = append(applied, "defaults:"+target)
		}
	}

	for _, path := range sortedPaths(rules.Drop) {
		if Delete(tree, path) {
			applied = append(applied, "drop:"+path)
		}
	}

	for _, path := range sortedPaths(rules.Require) {
		if _, found := Get(tree, path); !found {
			errors = append(errors, Error{Path: path, Code: "REQUIRED_MISSING", Message: i18n.T("REQUIRED_PATH_MISSING", nil)})
		}
	}

	sort.Slice(errors, func(i, j int) bool {
		a, b := errors[i], errors[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Message < b.Message
	})
	if errors == nil {
		errors = []Error{}
	}

	if mode == ModeStrict && len(errors) > 0 {
		return &Result{OK: false, Data: nil, Applied: nil, Errors: errors}, nil
	}
	return &Result{OK: true, Data: tree, Applied: applied, Errors: errors}, nil
}

type renamePair struct{ source, target string }

func sortedRenames(rename map[string]string) []renamePair {
	pairs := make([]renamePair, 0, len(rename))
	for source, target := range rename {
		pairs = append(pairs, renamePair{source: source, target: target})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].source != pairs[j].source {
			return pairs[i].source < pairs[j].source
		}
		return pairs[i].target < pairs[j].target
	})
	return pairs
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedPaths(paths []string) []string {
	out := append([]string{}, paths...)
	sort.Strings(out)
	return out
}

// firstInvalidPath checks categories in a fixed order: rename sources,
// rename targets, drop, defaults keys, require. Paths inside a category are
// checked sorted.
func firstInvalidPath(rules Rules) (string, bool) {
	sources := make([]string, 0, len(rules.Rename))
	targets := make([]string, 0, len(rules.Rename))
	for source, target := range rules.Rename {
		sources = append(sources, source)
		targets = append(targets, target)
	}
	sort.Strings(sources)
	sort.Strings(targets)
	for _, group := range [][]string{sources, targets, sortedPaths(rules.Drop), sortedKeys(rules.Defaults), sortedPaths(rules.Require)} {
		for _, path := range group {
			if !ValidPath(path) {
				return path, true
			}
		}
	}
	return "", false
}
