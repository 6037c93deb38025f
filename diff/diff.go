// Package diff compares two schema documents structurally and reports
// added, removed and changed paths.
package diff

import (
	"sort"

	multitools "github.com/YanKe1816/multi-tools-server"
	"github.com/YanKe1816/multi-tools-server/i18n"
	"github.com/YanKe1816/multi-tools-server/internal/jsonx"
	"github.com/YanKe1816/multi-tools-server/schema"
)

// Tool is the registered tool name.
const Tool = "schema_diff"

// Options selects which summary fields participate in change detection.
// All comparisons default to on.
type Options struct {
	CompareRequired bool `json:"compare_required"`
	CompareType     bool `json:"compare_type"`
	CompareEnum     bool `json:"compare_enum"`
	IgnoreOrder     bool `json:"ignore_order"`
}

// DefaultOptions returns the default comparison options.
func DefaultOptions() Options {
	return Options{CompareRequired: true, CompareType: true, CompareEnum: true, IgnoreOrder: true}
}

// Field is a path that exists on only one side of the comparison.
type Field struct {
	Path   string         `json:"path"`
	Schema schema.Summary `json:"schema"`
}

// ChangedSide is one side of a changed path: its summary plus a detail
// string describing every differing field. The detail is identical on both
// sides.
type ChangedSide struct {
	Type     string `json:"type"`
	Required *bool  `json:"required"`
	Enum     []any  `json:"enum"`
	Detail   string `json:"detail"`
}

// ChangedField is a path present on both sides with differing summaries.
type ChangedField struct {
	Path   string      `json:"path"`
	Before ChangedSide `json:"before"`
	After  ChangedSide `json:"after"`
}

// Diff groups the comparison outcome. The field slices are always non-nil
// so empty groups serialize as [].
type Diff struct {
	AddedFields   []Field        `json:"added_fields"`
	RemovedFields []Field        `json:"removed_fields"`
	ChangedFields []ChangedField `json:"changed_fields"`
}

// Result is the schema_diff operation result.
type Result struct {
	Diff Diff `json:"diff"`
}

// Run diffs newDoc against oldDoc. Both documents must stay inside the
// differ grammar; the old document is checked first, and the offending key
// is reported as the error path. Each field group is sorted by path.
func Run(oldDoc, newDoc *jsonx.Object, opt Options) (*Result, *multitools.StructuredError) {
	for _, doc := range []*jsonx.Object{oldDoc, newDoc} {
		if key, found := schema.CheckSupported(doc, schema.GrammarDiff); found {
			msgKey := "SCHEMA_KEYWORD"
			if key == "$ref" {
				msgKey = "SCHEMA_REF"
			}
			return nil, multitools.NewErrorAt(Tool, "validate", key, multitools.ClassSchemaUnsupported,
				multitools.CodeSchemaUnsupported, i18n.T(msgKey, nil), 400)
		}
	}

	oldMap := schema.Summarize(schema.Parse(oldDoc), opt.IgnoreOrder)
	newMap := schema.Summarize(schema.Parse(newDoc), opt.IgnoreOrder)

	out := Diff{
		AddedFields:   []Field{},
		RemovedFields: []Field{},
		ChangedFields: []ChangedField{},
	}

	for _, path := range sortedKeys(newMap) {
		if _, ok := oldMap[path]; !ok {
			out.AddedFields = append(out.AddedFields, Field{Path: path, Schema: newMap[path]})
		}
	}
	for _, path := range sortedKeys(oldMap) {
		if _, ok := newMap[path]; !ok {
			out.RemovedFields = append(out.RemovedFields, Field{Path: path, Schema: oldMap[path]})
		}
	}
	for _, path := range sortedKeys(oldMap) {
		after, ok := newMap[path]
		if !ok {
			continue
		}
		before := oldMap[path]
		detail := describeChanges(before, after, opt)
		if detail == "" {
			continue
		}
		out.ChangedFields = append(out.ChangedFields, ChangedField{
			Path:   path,
			Before: side(before, detail),
			After:  side(after, detail),
		})
	}

	return &Result{Diff: out}, nil
}

func sortedKeys(m map[string]schema.Summary) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func describeChanges(before, after schema.Summary, opt Options) string {
	var parts []string
	if opt.CompareType && before.Type != after.Type {
		parts = append(parts, "type:"+before.Type+" -> "+after.Type)
	}
	if opt.CompareRequired && !boolPtrEqual(before.Required, after.Required) {
		parts = append(parts, "required:"+renderBoolPtr(before.Required)+" -> "+renderBoolPtr(after.Required))
	}
	if opt.CompareEnum && !enumEqual(before.Enum, after.Enum) {
		parts = append(parts, "enum:"+renderEnum(before.Enum)+" -> "+renderEnum(after.Enum))
	}
	if len(parts) == 0 {
		return ""
	}
	detail := parts[0]
	for _, part := range parts[1:] {
		detail += "; " + part
	}
	return detail
}

func side(s schema.Summary, detail string) ChangedSide {
	return ChangedSide{Type: s.Type, Required: s.Required, Enum: s.Enum, Detail: detail}
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func enumEqual(a, b []any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !jsonx.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// renderBoolPtr and renderEnum print detail values in canonical JSON, so a
// missing required flag reads "null" and enums render as compact arrays.
func renderBoolPtr(v *bool) string {
	if v == nil {
		return "null"
	}
	if *v {
		return "true"
	}
	return "false"
}

func renderEnum(values []any) string {
	if values == nil {
		return "null"
	}
	s, err := jsonx.Canonical(values)
	if err != nil {
		return "null"
	}
	return s
}
