package server

import (
	"bytes"
	"unicode/utf8"

	json "github.com/goccy/go-json"

	multitools "github.com/YanKe1816/multi-tools-server"
	"github.com/YanKe1816/multi-tools-server/contract"
	"github.com/YanKe1816/multi-tools-server/diff"
	"github.com/YanKe1816/multi-tools-server/enumreg"
	"github.com/YanKe1816/multi-tools-server/gate"
	"github.com/YanKe1816/multi-tools-server/i18n"
	"github.com/YanKe1816/multi-tools-server/internal/jsonx"
	"github.com/YanKe1816/multi-tools-server/mapping"
	"github.com/YanKe1816/multi-tools-server/textnorm"
	"github.com/YanKe1816/multi-tools-server/trace"
	"github.com/YanKe1816/multi-tools-server/validate"
)

// ToolVerify is the stability-check tool; it lives in the transport layer
// because echoing input is all it does.
const ToolVerify = "verify_test"

type invoker func(body []byte) (multitools.Envelope, int)

// invokers dispatches a tool name to its request handler. Names match the
// contract registry.
var invokers = map[string]invoker{
	ToolVerify:                     invokeVerify,
	textnorm.Tool:                  invokeTextNormalize,
	gate.Tool:                      invokeInputGate,
	validate.Tool:                  invokeSchemaValidate,
	mapping.Tool:                   invokeSchemaMap,
	diff.Tool:                      invokeSchemaDiff,
	enumreg.Tool:                   invokeEnumRegistry,
	trace.Tool:                     invokeRuleTrace,
	contract.Tool:                  invokeCapabilityContract,
	multitools.ToolStructuredError: invokeStructuredError,
}

// Invoke runs one tool against a raw request body and returns the response
// envelope with its http status. ok reports whether the tool exists.
func Invoke(tool string, body []byte) (env multitools.Envelope, status int, ok bool) {
	fn, ok := invokers[tool]
	if !ok {
		return multitools.Envelope{}, 0, false
	}
	env, status = fn(body)
	return env, status, true
}

// inputError is the uniform request-shape failure for a tool.
func inputError(tool string) *multitools.StructuredError {
	return multitools.NewError(tool, "validate", multitools.CodeInputInvalid,
		i18n.T("INPUT_INVALID", map[string]string{"tool": tool}))
}

func failInput(tool string) (multitools.Envelope, int) {
	serr := inputError(tool)
	return multitools.Fail(tool, serr), serr.HTTPStatus
}

// decodeInput parses the body as a JSON object and enforces its declared
// key set: required keys must be present, keys outside required+optional
// reject the request.
func decodeInput(tool string, body []byte, required, optional []string) (*jsonx.Object, *multitools.StructuredError) {
	obj, err := jsonx.DecodeObject(body)
	if err != nil {
		return nil, inputError(tool)
	}
	allowed := make(map[string]struct{}, len(required)+len(optional))
	for _, k := range required {
		allowed[k] = struct{}{}
	}
	for _, k := range optional {
		allowed[k] = struct{}{}
	}
	for _, k := range obj.Keys() {
		if _, ok := allowed[k]; !ok {
			return nil, inputError(tool)
		}
	}
	for _, k := range required {
		if _, ok := obj.Get(k); !ok {
			return nil, inputError(tool)
		}
	}
	return obj, nil
}

// plain converts jsonx values into plain maps and slices for the engines
// that operate on map trees. Scalars pass through.
func plain(v any) any {
	switch x := v.(type) {
	case *jsonx.Object:
		m := make(map[string]any, x.Len())
		for _, k := range x.Keys() {
			val, _ := x.Get(k)
			m[k] = plain(val)
		}
		return m
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = plain(item)
		}
		return out
	}
	return v
}

// decodeField re-serializes one input field and decodes it into target,
// which lets the engines keep plain struct parameter types. Unknown struct
// fields reject the request.
func decodeField(v any, target any) bool {
	raw, err := json.Marshal(plain(v))
	if err != nil {
		return false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	return dec.Decode(target) == nil
}

type verifyResult struct {
	Echo   string `json:"echo"`
	Length int    `json:"length"`
}

func invokeVerify(body []byte) (multitools.Envelope, int) {
	in, serr := decodeInput(ToolVerify, body, []string{"text"}, nil)
	if serr != nil {
		return multitools.Fail(ToolVerify, serr), serr.HTTPStatus
	}
	tv, _ := in.Get("text")
	text, ok := tv.(string)
	if !ok {
		return failInput(ToolVerify)
	}
	result := verifyResult{Echo: text, Length: utf8.RuneCountInString(text)}
	return multitools.OK(ToolVerify, result), 200
}

func invokeTextNormalize(body []byte) (multitools.Envelope, int) {
	in, serr := decodeInput(textnorm.Tool, body, []string{"text"}, []string{"ops", "options"})
	if serr != nil {
		return multitools.Fail(textnorm.Tool, serr), serr.HTTPStatus
	}
	tv, _ := in.Get("text")
	text, ok := tv.(string)
	if !ok {
		return failInput(textnorm.Tool)
	}
	var ops textnorm.Ops
	if v, present := in.Get("ops"); present {
		if !decodeField(v, &ops) {
			return failInput(textnorm.Tool)
		}
	}
	options := textnorm.DefaultOptions()
	if v, present := in.Get("options"); present {
		if !decodeField(v, &options) {
			return failInput(textnorm.Tool)
		}
	}
	return multitools.OK(textnorm.Tool, textnorm.Normalize(text, ops, options)), 200
}

func invokeInputGate(body []byte) (multitools.Envelope, int) {
	in, serr := decodeInput(gate.Tool, body, []string{"input"}, []string{"rules", "mode"})
	if serr != nil {
		return multitools.Fail(gate.Tool, serr), serr.HTTPStatus
	}
	value, _ := in.Get("input")
	var overrides map[string]any
	if v, present := in.Get("rules"); present {
		m, ok := plain(v).(map[string]any)
		if !ok {
			return failInput(gate.Tool)
		}
		overrides = m
	}
	mode, serr := modeField(gate.Tool, in)
	if serr != nil {
		return multitools.Fail(gate.Tool, serr), serr.HTTPStatus
	}
	result, serr := gate.Check(plain(value), overrides, mode)
	if serr != nil {
		return multitools.Fail(gate.Tool, serr), serr.HTTPStatus
	}
	return multitools.OK(gate.Tool, result), 200
}

func invokeSchemaValidate(body []byte) (multitools.Envelope, int) {
	in, serr := decodeInput(validate.Tool, body, []string{"schema", "data"}, nil)
	if serr != nil {
		return multitools.Fail(validate.Tool, serr), serr.HTTPStatus
	}
	sv, _ := in.Get("schema")
	doc, ok := sv.(*jsonx.Object)
	if !ok {
		return failInput(validate.Tool)
	}
	data, _ := in.Get("data")
	result, serr := validate.Run(doc, data)
	if serr != nil {
		return multitools.Fail(validate.Tool, serr), serr.HTTPStatus
	}
	return multitools.OK(validate.Tool, result), 200
}

func invokeSchemaMap(body []byte) (multitools.Envelope, int) {
	in, serr := decodeInput(mapping.Tool, body, []string{"data", "mapping"}, []string{"mode"})
	if serr != nil {
		return multitools.Fail(mapping.Tool, serr), serr.HTTPStatus
	}
	dv, _ := in.Get("data")
	data, ok := plain(dv).(map[string]any)
	if !ok {
		return failInput(mapping.Tool)
	}
	mv, _ := in.Get("mapping")
	rules, ok := decodeMappingRules(mv)
	if !ok {
		return failInput(mapping.Tool)
	}
	mode, serr := modeField(mapping.Tool, in)
	if serr != nil {
		return multitools.Fail(mapping.Tool, serr), serr.HTTPStatus
	}
	result, serr := mapping.Apply(data, rules, mode)
	if serr != nil {
		return multitools.Fail(mapping.Tool, serr), serr.HTTPStatus
	}
	return multitools.OK(mapping.Tool, result), 200
}

func decodeMappingRules(v any) (mapping.Rules, bool) {
	var rules mapping.Rules
	obj, ok := v.(*jsonx.Object)
	if !ok {
		return rules, false
	}
	for _, key := range obj.Keys() {
		value, _ := obj.Get(key)
		switch key {
		case "rename":
			ro, ok := value.(*jsonx.Object)
			if !ok {
				return rules, false
			}
			rules.Rename = map[string]string{}
			for _, source := range ro.Keys() {
				tv, _ := ro.Get(source)
				target, ok := tv.(string)
				if !ok {
					return rules, false
				}
				rules.Rename[source] = target
			}
		case "drop":
			paths, ok := stringListField(value)
			if !ok {
				return rules, false
			}
			rules.Drop = paths
		case "defaults":
			do, ok := value.(*jsonx.Object)
			if !ok {
				return rules, false
			}
			rules.Defaults, _ = plain(do).(map[string]any)
		case "require":
			paths, ok := stringListField(value)
			if !ok {
				return rules, false
			}
			rules.Require = paths
		default:
			return rules, false
		}
	}
	return rules, true
}

func stringListField(v any) ([]string, bool) {
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// modeField reads the optional "mode" key, defaulting to strict. A
// non-string value is a request-shape failure; unknown mode strings reach
// the engine so they surface as MODE_INVALID.
func modeField(tool string, in *jsonx.Object) (string, *multitools.StructuredError) {
	v, present := in.Get("mode")
	if !present {
		return "strict", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", inputError(tool)
	}
	return s, nil
}

func invokeSchemaDiff(body []byte) (multitools.Envelope, int) {
	in, serr := decodeInput(diff.Tool, body, []string{"old_schema", "new_schema"}, []string{"options"})
	if serr != nil {
		return multitools.Fail(diff.Tool, serr), serr.HTTPStatus
	}
	ov, _ := in.Get("old_schema")
	oldDoc, ok := ov.(*jsonx.Object)
	if !ok {
		return failInput(diff.Tool)
	}
	nv, _ := in.Get("new_schema")
	newDoc, ok := nv.(*jsonx.Object)
	if !ok {
		return failInput(diff.Tool)
	}
	options := diff.DefaultOptions()
	if v, present := in.Get("options"); present {
		if !decodeField(v, &options) {
			return failInput(diff.Tool)
		}
	}
	result, serr := diff.Run(oldDoc, newDoc, options)
	if serr != nil {
		return multitools.Fail(diff.Tool, serr), serr.HTTPStatus
	}
	return multitools.OK(diff.Tool, result), 200
}

func invokeEnumRegistry(body []byte) (multitools.Envelope, int) {
	in, serr := decodeInput(enumreg.Tool, body, []string{"enum_set", "query"}, []string{"policy"})
	if serr != nil {
		return multitools.Fail(enumreg.Tool, serr), serr.HTTPStatus
	}
	var set enumreg.Set
	sv, _ := in.Get("enum_set")
	if !decodeField(sv, &set) {
		return failInput(enumreg.Tool)
	}
	var query enumreg.Query
	qv, _ := in.Get("query")
	if !decodeField(qv, &query) {
		return failInput(enumreg.Tool)
	}
	var policy enumreg.Policy
	if v, present := in.Get("policy"); present {
		if !decodeField(v, &policy) {
			return failInput(enumreg.Tool)
		}
	}
	result, serr := enumreg.Resolve(set, query, policy)
	if serr != nil {
		return multitools.Fail(enumreg.Tool, serr), serr.HTTPStatus
	}
	return multitools.OK(enumreg.Tool, result), 200
}

func invokeRuleTrace(body []byte) (multitools.Envelope, int) {
	in, serr := decodeInput(trace.Tool, body, []string{"run", "input", "result", "policy"}, nil)
	if serr != nil {
		return multitools.Fail(trace.Tool, serr), serr.HTTPStatus
	}
	var run trace.Run
	rv, _ := in.Get("run")
	if !decodeField(rv, &run) {
		return failInput(trace.Tool)
	}
	// The input section wraps its summary one level deep.
	var input struct {
		Summary trace.Summary `json:"summary"`
	}
	iv, _ := in.Get("input")
	if !decodeField(iv, &input) {
		return failInput(trace.Tool)
	}
	var outcome trace.Outcome
	ov, _ := in.Get("result")
	if !decodeField(ov, &outcome) {
		return failInput(trace.Tool)
	}
	policy := trace.DefaultPolicy()
	pv, _ := in.Get("policy")
	if !decodeField(pv, &policy) {
		return failInput(trace.Tool)
	}
	result, serr := trace.Build(run, input.Summary, outcome, policy)
	if serr != nil {
		return multitools.Fail(trace.Tool, serr), serr.HTTPStatus
	}
	return multitools.OK(trace.Tool, result), 200
}

func invokeCapabilityContract(body []byte) (multitools.Envelope, int) {
	in, serr := decodeInput(contract.Tool, body, []string{"name"}, nil)
	if serr != nil {
		return multitools.Fail(contract.Tool, serr), serr.HTTPStatus
	}
	nv, _ := in.Get("name")
	name, ok := nv.(string)
	if !ok {
		return failInput(contract.Tool)
	}
	result, serr := contract.Fetch(name)
	if serr != nil {
		return multitools.Fail(contract.Tool, serr), serr.HTTPStatus
	}
	return multitools.OK(contract.Tool, result), 200
}

func invokeStructuredError(body []byte) (multitools.Envelope, int) {
	tool := multitools.ToolStructuredError
	in, serr := decodeInput(tool, body, []string{"source", "error", "policy"}, nil)
	if serr != nil {
		return multitools.Fail(tool, serr), serr.HTTPStatus
	}
	var source multitools.Source
	sv, _ := in.Get("source")
	if !decodeField(sv, &source) {
		return failInput(tool)
	}
	var errorInput multitools.ErrorInput
	ev, _ := in.Get("error")
	if !decodeField(ev, &errorInput) {
		return failInput(tool)
	}
	policy := multitools.DefaultErrorPolicy()
	pv, _ := in.Get("policy")
	if !decodeField(pv, &policy) {
		return failInput(tool)
	}
	report, serr := multitools.NormalizeError(source, errorInput, policy)
	if serr != nil {
		return multitools.Fail(tool, serr), serr.HTTPStatus
	}
	return multitools.OK(tool, report), 200
}
