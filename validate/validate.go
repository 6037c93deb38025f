// Package validate checks a data document against the restricted schema
// grammar and reports deterministic, sorted issues.
package validate

import (
	"math/big"
	"sort"
	"strconv"
	"unicode/utf8"

	json "github.com/goccy/go-json"

	multitools "github.com/YanKe1816/multi-tools-server"
	"github.com/YanKe1816/multi-tools-server/i18n"
	"github.com/YanKe1816/multi-tools-server/internal/jsonx"
	"github.com/YanKe1816/multi-tools-server/schema"
)

// Tool is the registered tool name.
const Tool = "schema_validate"

// MaxDataLength bounds the canonical JSON length of the data document,
// measured in characters.
const MaxDataLength = 20000

// Issue is one validation finding, addressed by a "$"-rooted path.
type Issue struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Summary aggregates the validation outcome.
type Summary struct {
	IssueCount int `json:"issue_count"`
}

// Result is the schema_validate operation result.
type Result struct {
	OK      bool    `json:"ok"`
	Issues  []Issue `json:"issues"`
	Summary Summary `json:"summary"`
}

// Run validates data against the schema document. The returned error is
// request-fatal (oversized data, unsupported schema keyword); findings about
// the data itself come back as issues inside the result. Issues are sorted
// by path, then code, then message.
func Run(doc *jsonx.Object, data any) (*Result, *multitools.StructuredError) {
	if jsonx.Size(data) > MaxDataLength {
		return nil, multitools.NewError(Tool, "validate", multitools.CodeDataTooLarge, i18n.T("DATA_TOO_LARGE", nil))
	}
	if key, found := schema.CheckSupported(doc, schema.GrammarValidate); found {
		return nil, multitools.NewErrorAt(Tool, "validate", "", multitools.ClassSchemaUnsupported,
			multitools.CodeSchemaUnsupported, i18n.T("SCHEMA_UNSUPPORTED", map[string]string{"key": key}), 400)
	}

	var issues []Issue
	walk(schema.Parse(doc), data, "$", &issues, 0)
	sort.Slice(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Message < b.Message
	})
	if issues == nil {
		issues = []Issue{}
	}
	return &Result{
		OK:      len(issues) == 0,
		Issues:  issues,
		Summary: Summary{IssueCount: len(issues)},
	}, nil
}

func walk(n *schema.Node, data any, path string, issues *[]Issue, depth int) {
	if depth > jsonx.MaxDepth {
		add(issues, path, "SCHEMA_INVALID", i18n.T("SCHEMA_INVALID", nil))
		return
	}
	switch n.Type {
	case schema.TypeObject:
		obj, ok := data.(*jsonx.Object)
		if !ok {
			mismatch(issues, path, "object")
			return
		}
		required := append([]string{}, n.Required...)
		sort.Strings(required)
		for _, key := range required {
			if _, present := obj.Get(key); !present {
				add(issues, path+"."+key, "REQUIRED_MISSING", i18n.T("REQUIRED_MISSING", nil))
			}
		}
		if !n.PropsInvalid {
			declared := make(map[string]struct{}, len(n.PropNames))
			for _, name := range n.PropNames {
				declared[name] = struct{}{}
			}
			dataKeys := append([]string{}, obj.Keys()...)
			sort.Strings(dataKeys)
			for _, key := range dataKeys {
				if _, ok := declared[key]; !ok {
					add(issues, path+"."+key, "ADDITIONAL_PROPERTY", i18n.T("ADDITIONAL_PROPERTY", nil))
				}
			}
			propNames := append([]string{}, n.PropNames...)
			sort.Strings(propNames)
			for _, key := range propNames {
				child, ok := n.Props[key]
				if !ok {
					continue
				}
				if value, present := obj.Get(key); present {
					walk(child, value, path+"."+key, issues, depth+1)
				}
			}
		}
	case schema.TypeString:
		s, ok := data.(string)
		if !ok {
			mismatch(issues, path, "string")
			return
		}
		length := utf8.RuneCountInString(s)
		if n.MinLength != nil && length < *n.MinLength {
			add(issues, path, "MIN_LENGTH", i18n.T("MIN_LENGTH", map[string]string{"min": strconv.Itoa(*n.MinLength)}))
		}
		if n.MaxLength != nil && length > *n.MaxLength {
			add(issues, path, "MAX_LENGTH", i18n.T("MAX_LENGTH", map[string]string{"max": strconv.Itoa(*n.MaxLength)}))
		}
		if n.Enum != nil && !enumContains(n.Enum, s) {
			add(issues, path, "ENUM_MISMATCH", i18n.T("ENUM_MISMATCH", nil))
		}
	case schema.TypeNumber:
		if _, ok := data.(json.Number); !ok {
			mismatch(issues, path, "number")
		}
	case schema.TypeInteger:
		if !isIntegral(data) {
			mismatch(issues, path, "integer")
		}
	case schema.TypeBoolean:
		if _, ok := data.(bool); !ok {
			mismatch(issues, path, "boolean")
		}
	case schema.TypeNull:
		if data != nil {
			mismatch(issues, path, "null")
		}
	case schema.TypeArray:
		list, ok := data.([]any)
		if !ok {
			mismatch(issues, path, "array")
			return
		}
		if n.Items != nil {
			for index, item := range list {
				walk(n.Items, item, path+"["+strconv.Itoa(index)+"]", issues, depth+1)
			}
		}
	default:
		add(issues, path, "SCHEMA_INVALID", i18n.T("SCHEMA_INVALID", nil))
	}
}

func add(issues *[]Issue, path, code, message string) {
	*issues = append(*issues, Issue{Path: path, Code: code, Message: message})
}

func mismatch(issues *[]Issue, path, expected string) {
	add(issues, path, "TYPE_MISMATCH", i18n.T("TYPE_MISMATCH", map[string]string{"expected": expected}))
}

func enumContains(enum []any, value string) bool {
	for _, candidate := range enum {
		if jsonx.Equal(candidate, value) {
			return true
		}
	}
	return false
}

// isIntegral accepts only numbers written as integer literals. 3.0 and 1e2
// are numbers, not integers; booleans are neither.
func isIntegral(data any) bool {
	num, ok := data.(json.Number)
	if !ok {
		return false
	}
	_, ok = new(big.Int).SetString(num.String(), 10)
	return ok
}
