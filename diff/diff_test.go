package diff_test

import (
	"testing"

	json "github.com/goccy/go-json"

	"github.com/YanKe1816/multi-tools-server/diff"
	"github.com/YanKe1816/multi-tools-server/internal/jsonx"
)

func run(t *testing.T, oldSrc, newSrc string, opt diff.Options) *diff.Result {
	t.Helper()
	oldDoc, err := jsonx.DecodeObject([]byte(oldSrc))
	if err != nil {
		t.Fatalf("old decode: %v", err)
	}
	newDoc, err := jsonx.DecodeObject([]byte(newSrc))
	if err != nil {
		t.Fatalf("new decode: %v", err)
	}
	res, serr := diff.Run(oldDoc, newDoc, opt)
	if serr != nil {
		t.Fatalf("unexpected error: %v", serr)
	}
	return res
}

func TestAddedField(t *testing.T) {
	res := run(t,
		`{"type":"object","properties":{"name":{"type":"string"}}}`,
		`{"type":"object","properties":{"name":{"type":"string"},"age":{"type":"integer"}}}`,
		diff.DefaultOptions())
	if len(res.Diff.AddedFields) != 1 || len(res.Diff.RemovedFields) != 0 || len(res.Diff.ChangedFields) != 0 {
		t.Fatalf("diff = %+v", res.Diff)
	}
	added := res.Diff.AddedFields[0]
	if added.Path != "age" || added.Schema.Type != "integer" {
		t.Fatalf("added = %+v", added)
	}
	if added.Schema.Required == nil || *added.Schema.Required {
		t.Fatalf("added.required = %v", added.Schema.Required)
	}
	if added.Schema.Enum != nil {
		t.Fatalf("added.enum = %v", added.Schema.Enum)
	}
}

func TestRemovedField(t *testing.T) {
	res := run(t,
		`{"type":"object","properties":{"a":{"type":"string"},"b":{"type":"string"}}}`,
		`{"type":"object","properties":{"a":{"type":"string"}}}`,
		diff.DefaultOptions())
	if len(res.Diff.RemovedFields) != 1 || res.Diff.RemovedFields[0].Path != "b" {
		t.Fatalf("diff = %+v", res.Diff)
	}
}

func TestRefIsRejectedWithOffendingKeyAsPath(t *testing.T) {
	oldDoc, _ := jsonx.DecodeObject([]byte(`{"$ref":"#/defs/x"}`))
	newDoc, _ := jsonx.DecodeObject([]byte(`{"type":"object"}`))
	_, serr := diff.Run(oldDoc, newDoc, diff.DefaultOptions())
	if serr == nil {
		t.Fatal("want error")
	}
	if serr.Code != "SCHEMA_UNSUPPORTED" || serr.Message != "ref is not supported" {
		t.Fatalf("err = %+v", serr)
	}
	if serr.Where.Path != "$ref" || serr.Where.Stage != "validate" {
		t.Fatalf("where = %+v", serr.Where)
	}
}

func TestOtherKeywordsGetGenericMessage(t *testing.T) {
	oldDoc, _ := jsonx.DecodeObject([]byte(`{"type":"object"}`))
	newDoc, _ := jsonx.DecodeObject([]byte(`{"type":"string","minLength":1}`))
	_, serr := diff.Run(oldDoc, newDoc, diff.DefaultOptions())
	if serr == nil || serr.Message != "unsupported schema keyword" || serr.Where.Path != "minLength" {
		t.Fatalf("err = %+v", serr)
	}
}

func TestChangedTypeInArrayItems(t *testing.T) {
	res := run(t,
		`{"type":"object","properties":{"tags":{"type":"array","items":{"type":"string"}}}}`,
		`{"type":"object","properties":{"tags":{"type":"array","items":{"type":"integer"}}}}`,
		diff.DefaultOptions())
	if len(res.Diff.ChangedFields) != 1 {
		t.Fatalf("diff = %+v", res.Diff)
	}
	changed := res.Diff.ChangedFields[0]
	if changed.Path != "tags[]" {
		t.Fatalf("path = %q", changed.Path)
	}
	if changed.Before.Detail != "type:string -> integer" || changed.After.Detail != changed.Before.Detail {
		t.Fatalf("detail = %q / %q", changed.Before.Detail, changed.After.Detail)
	}
}

func TestChangedRequiredAndEnumJoinDetails(t *testing.T) {
	res := run(t,
		`{"type":"object","properties":{"kind":{"type":"string"}}}`,
		`{"type":"object","properties":{"kind":{"type":"string","enum":["b","a"]}},"required":["kind"]}`,
		diff.DefaultOptions())
	if len(res.Diff.ChangedFields) != 1 {
		t.Fatalf("diff = %+v", res.Diff)
	}
	detail := res.Diff.ChangedFields[0].Before.Detail
	if detail != `required:false -> true; enum:null -> ["a","b"]` {
		t.Fatalf("detail = %q", detail)
	}
}

func TestEnumOrderIgnoredByDefault(t *testing.T) {
	res := run(t,
		`{"type":"object","properties":{"kind":{"type":"string","enum":["a","b"]}}}`,
		`{"type":"object","properties":{"kind":{"type":"string","enum":["b","a","a"]}}}`,
		diff.DefaultOptions())
	if len(res.Diff.ChangedFields) != 0 {
		t.Fatalf("diff = %+v", res.Diff)
	}

	opt := diff.DefaultOptions()
	opt.IgnoreOrder = false
	res = run(t,
		`{"type":"object","properties":{"kind":{"type":"string","enum":["a","b"]}}}`,
		`{"type":"object","properties":{"kind":{"type":"string","enum":["b","a"]}}}`,
		opt)
	if len(res.Diff.ChangedFields) != 1 {
		t.Fatalf("diff = %+v", res.Diff)
	}
}

func TestCompareFlagsSuppressGroups(t *testing.T) {
	opt := diff.DefaultOptions()
	opt.CompareType = false
	res := run(t,
		`{"type":"object","properties":{"a":{"type":"string"}}}`,
		`{"type":"object","properties":{"a":{"type":"integer"}}}`,
		opt)
	if len(res.Diff.ChangedFields) != 0 {
		t.Fatalf("diff = %+v", res.Diff)
	}
}

func TestIdenticalSchemasSerializeEmptyGroups(t *testing.T) {
	res := run(t,
		`{"type":"object","properties":{"a":{"type":"string"}}}`,
		`{"type":"object","properties":{"a":{"type":"string"}}}`,
		diff.DefaultOptions())
	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"diff":{"added_fields":[],"removed_fields":[],"changed_fields":[]}}`
	if string(raw) != want {
		t.Fatalf("marshal = %s", raw)
	}
}

func TestDiffIsSymmetric(t *testing.T) {
	oldSrc := `{"type":"object","properties":{"a":{"type":"string"},"b":{"type":"integer"}}}`
	newSrc := `{"type":"object","properties":{"a":{"type":"string"},"c":{"type":"boolean"}}}`
	forward := run(t, oldSrc, newSrc, diff.DefaultOptions())
	backward := run(t, newSrc, oldSrc, diff.DefaultOptions())
	if len(forward.Diff.AddedFields) != len(backward.Diff.RemovedFields) {
		t.Fatalf("forward added %d, backward removed %d", len(forward.Diff.AddedFields), len(backward.Diff.RemovedFields))
	}
	if forward.Diff.AddedFields[0].Path != backward.Diff.RemovedFields[0].Path {
		t.Fatal("added/removed paths should mirror")
	}
}
