package validate_test

import (
	"strings"
	"testing"

	"github.com/YanKe1816/multi-tools-server/internal/jsonx"
	"github.com/YanKe1816/multi-tools-server/validate"
)

func run(t *testing.T, schemaSrc, dataSrc string) *validate.Result {
	t.Helper()
	doc, err := jsonx.DecodeObject([]byte(schemaSrc))
	if err != nil {
		t.Fatalf("schema decode: %v", err)
	}
	data, err := jsonx.Decode([]byte(dataSrc))
	if err != nil {
		t.Fatalf("data decode: %v", err)
	}
	res, serr := validate.Run(doc, data)
	if serr != nil {
		t.Fatalf("unexpected error: %v", serr)
	}
	return res
}

func TestStringTypeMismatch(t *testing.T) {
	res := run(t, `{"type":"string"}`, `3`)
	if res.OK || len(res.Issues) != 1 {
		t.Fatalf("issues = %v", res.Issues)
	}
	issue := res.Issues[0]
	if issue.Path != "$" || issue.Code != "TYPE_MISMATCH" || issue.Message != "Expected string." {
		t.Fatalf("issue = %+v", issue)
	}
	if res.Summary.IssueCount != 1 {
		t.Fatalf("summary = %+v", res.Summary)
	}
}

func TestValidDocumentHasEmptyIssueSlice(t *testing.T) {
	res := run(t, `{"type":"object","properties":{"a":{"type":"string"}},"required":["a"]}`, `{"a":"x"}`)
	if !res.OK || res.Issues == nil || len(res.Issues) != 0 {
		t.Fatalf("res = %+v", res)
	}
}

func TestObjectChecksAreSortedAndPathed(t *testing.T) {
	res := run(t,
		`{"type":"object","properties":{"name":{"type":"string"},"meta":{"type":"object","properties":{"kind":{"type":"string"}},"required":["kind"]}},"required":["name","meta"]}`,
		`{"meta":{},"zz":1,"aa":2}`)
	want := []struct{ path, code string }{
		{"$.aa", "ADDITIONAL_PROPERTY"},
		{"$.meta.kind", "REQUIRED_MISSING"},
		{"$.name", "REQUIRED_MISSING"},
		{"$.zz", "ADDITIONAL_PROPERTY"},
	}
	if len(res.Issues) != len(want) {
		t.Fatalf("issues = %v", res.Issues)
	}
	for i, w := range want {
		if res.Issues[i].Path != w.path || res.Issues[i].Code != w.code {
			t.Fatalf("issue[%d] = %+v, want %v", i, res.Issues[i], w)
		}
	}
}

func TestMissingPropertiesMakesEveryKeyAdditional(t *testing.T) {
	res := run(t, `{"type":"object"}`, `{"a":1,"b":2}`)
	if len(res.Issues) != 2 {
		t.Fatalf("issues = %v", res.Issues)
	}
	for _, issue := range res.Issues {
		if issue.Code != "ADDITIONAL_PROPERTY" {
			t.Fatalf("issue = %+v", issue)
		}
	}
}

func TestStringLengthCountsCodePoints(t *testing.T) {
	res := run(t, `{"type":"string","minLength":3,"maxLength":3}`, `"日本語"`)
	if !res.OK {
		t.Fatalf("issues = %v", res.Issues)
	}
	res = run(t, `{"type":"string","minLength":4}`, `"日本語"`)
	if len(res.Issues) != 1 || res.Issues[0].Code != "MIN_LENGTH" || res.Issues[0].Message != "Minimum length 4." {
		t.Fatalf("issues = %v", res.Issues)
	}
	res = run(t, `{"type":"string","maxLength":2}`, `"日本語"`)
	if len(res.Issues) != 1 || res.Issues[0].Message != "Maximum length 2." {
		t.Fatalf("issues = %v", res.Issues)
	}
}

func TestStringEnum(t *testing.T) {
	res := run(t, `{"type":"string","enum":["a","b"]}`, `"c"`)
	if len(res.Issues) != 1 || res.Issues[0].Code != "ENUM_MISMATCH" || res.Issues[0].Message != "Value not in enum." {
		t.Fatalf("issues = %v", res.Issues)
	}
	res = run(t, `{"type":"string","enum":[]}`, `"c"`)
	if len(res.Issues) != 1 || res.Issues[0].Code != "ENUM_MISMATCH" {
		t.Fatalf("empty enum must reject every value, got %v", res.Issues)
	}
}

func TestNumericKinds(t *testing.T) {
	cases := []struct {
		name, schema, data string
		ok                 bool
	}{
		{"number accepts float", `{"type":"number"}`, `1.5`, true},
		{"number accepts int", `{"type":"number"}`, `2`, true},
		{"number rejects bool", `{"type":"number"}`, `true`, false},
		{"integer accepts int", `{"type":"integer"}`, `7`, true},
		{"integer rejects fraction", `{"type":"integer"}`, `3.0`, false},
		{"integer rejects exponent", `{"type":"integer"}`, `1e2`, false},
		{"integer rejects bool", `{"type":"integer"}`, `true`, false},
		{"boolean rejects int", `{"type":"boolean"}`, `1`, false},
		{"null accepts null", `{"type":"null"}`, `null`, true},
		{"null rejects false", `{"type":"null"}`, `false`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := run(t, tc.schema, tc.data)
			if res.OK != tc.ok {
				t.Fatalf("ok = %v, issues = %v", res.OK, res.Issues)
			}
		})
	}
}

func TestArrayItemPathsCarryIndex(t *testing.T) {
	res := run(t, `{"type":"array","items":{"type":"integer"}}`, `[1,"x",3,"y"]`)
	if len(res.Issues) != 2 {
		t.Fatalf("issues = %v", res.Issues)
	}
	if res.Issues[0].Path != "$[1]" || res.Issues[1].Path != "$[3]" {
		t.Fatalf("issues = %v", res.Issues)
	}
}

func TestUnknownSchemaTypeIsAnIssue(t *testing.T) {
	res := run(t, `{"type":"object","properties":{"a":{}}}`, `{"a":1}`)
	if len(res.Issues) != 1 {
		t.Fatalf("issues = %v", res.Issues)
	}
	issue := res.Issues[0]
	if issue.Path != "$.a" || issue.Code != "SCHEMA_INVALID" || issue.Message != "Invalid schema type." {
		t.Fatalf("issue = %+v", issue)
	}
}

func TestUnsupportedKeywordIsFatal(t *testing.T) {
	doc, err := jsonx.DecodeObject([]byte(`{"type":"string","pattern":"^a"}`))
	if err != nil {
		t.Fatal(err)
	}
	_, serr := validate.Run(doc, "x")
	if serr == nil {
		t.Fatal("want error")
	}
	if serr.Code != "SCHEMA_UNSUPPORTED" || serr.Message != "Unsupported schema keyword: pattern." {
		t.Fatalf("err = %+v", serr)
	}
	if serr.Class != "SCHEMA_UNSUPPORTED" || serr.HTTPStatus != 400 || serr.Severity != "low" {
		t.Fatalf("err = %+v", serr)
	}
}

func TestOversizedDataIsFatal(t *testing.T) {
	doc, err := jsonx.DecodeObject([]byte(`{"type":"string"}`))
	if err != nil {
		t.Fatal(err)
	}
	big := strings.Repeat("a", validate.MaxDataLength+10)
	_, serr := validate.Run(doc, big)
	if serr == nil || serr.Code != "DATA_TOO_LARGE" {
		t.Fatalf("err = %+v", serr)
	}
	if serr.Message != "Input data is too large." || serr.Class != "INPUT_INVALID" {
		t.Fatalf("err = %+v", serr)
	}
}

func TestSizeCheckRunsBeforeGrammarCheck(t *testing.T) {
	doc, err := jsonx.DecodeObject([]byte(`{"$ref":"#"}`))
	if err != nil {
		t.Fatal(err)
	}
	big := strings.Repeat("a", validate.MaxDataLength+10)
	_, serr := validate.Run(doc, big)
	if serr == nil || serr.Code != "DATA_TOO_LARGE" {
		t.Fatalf("err = %+v", serr)
	}
}
