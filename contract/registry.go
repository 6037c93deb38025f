package contract

import multitools "github.com/YanKe1816/multi-tools-server"

// Schema-building helpers. Contracts use plain maps so they serialize
// exactly as declared, with keys sorted by the canonical encoder.

func object(props map[string]any, required ...string) map[string]any {
	req := make([]any, len(required))
	for i, r := range required {
		req[i] = r
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             req,
		"additionalProperties": false,
	}
}

func typed(name string) map[string]any { return map[string]any{"type": name} }

func anyValue() map[string]any { return map[string]any{} }

func arrayOf(items map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": items}
}

func structuredErrorSchema() map[string]any {
	return map[string]any{
		"type": []any{"object", "null"},
		"properties": map[string]any{
			"class":     typed("string"),
			"code":      typed("string"),
			"message":   typed("string"),
			"retryable": typed("boolean"),
			"severity":  typed("string"),
			"where": object(map[string]any{
				"tool":  typed("string"),
				"stage": typed("string"),
				"path":  typed("string"),
			}, "tool", "stage", "path"),
			"http_status": typed("integer"),
			"fingerprint": typed("string"),
		},
		"required": []any{"class", "code", "message", "retryable", "severity", "where", "http_status", "fingerprint"},
		"additionalProperties": false,
	}
}

func envelope(result map[string]any) map[string]any {
	return object(map[string]any{
		"ok":      typed("boolean"),
		"tool":    typed("string"),
		"version": typed("string"),
		"result":  result,
		"error":   structuredErrorSchema(),
	}, "ok", "tool", "version", "result", "error")
}

func nullableResult(props map[string]any, required ...string) map[string]any {
	req := make([]any, len(required))
	for i, r := range required {
		req[i] = r
	}
	return map[string]any{
		"type":                 []any{"object", "null"},
		"properties":           props,
		"required":             req,
		"additionalProperties": false,
	}
}

func code(c, when string) map[string]any { return map[string]any{"code": c, "when": when} }

// example pairs a sample input with the exact envelope the tool returns
// for it.
func example(name string, input, result map[string]any) map[string]any {
	return map[string]any{
		"input": input,
		"output": map[string]any{
			"ok":      true,
			"tool":    name,
			"version": "1.0",
			"result":  result,
			"error":   nil,
		},
	}
}

func entry(name, description string, inputs map[string]any, result map[string]any, ex map[string]any, codes ...map[string]any) map[string]any {
	codeList := make([]any, len(codes))
	for i, c := range codes {
		codeList[i] = c
	}
	return map[string]any{
		"examples": []any{ex},
		"name":        name,
		"version":     "1.0.0",
		"path":        "/tools/" + name,
		"description": description,
		"determinism": map[string]any{
			"same_input_same_output": true,
			"side_effects":           false,
			"network":                false,
			"storage":                false,
		},
		"inputs": map[string]any{
			"content_type": "application/json",
			"json_schema":  inputs,
		},
		"outputs": map[string]any{
			"content_type": "application/json",
			"json_schema":  envelope(result),
		},
		"errors": map[string]any{
			"envelope": map[string]any{
				"error": map[string]any{
					"code":      "string",
					"message":   "string",
					"retryable": "boolean",
					"details":   "object",
				},
			},
			"codes": codeList,
		},
		"non_goals": []any{"no advice", "no decisions", "no inference", "no external calls"},
	}
}

var registry = map[string]map[string]any{
	"verify_test": entry(
		"verify_test",
		"Echo input text and return its length for stability verification.",
		object(map[string]any{"text": typed("string")}, "text"),
		nullableResult(map[string]any{
			"echo":   typed("string"),
			"length": typed("integer"),
		}, "echo", "length"),
		example("verify_test",
			map[string]any{"text": "hello"},
			map[string]any{"echo": "hello", "length": 5}),
		code("INPUT_INVALID", "request body invalid"),
	),
	"text_normalize": entry(
		"text_normalize",
		"Deterministically normalize text using explicit ops and options.",
		object(map[string]any{
			"text": typed("string"),
			"ops": object(map[string]any{
				"normalize_newlines":   typed("boolean"),
				"collapse_whitespace":  typed("boolean"),
				"trim":                 typed("boolean"),
				"to_lower":             typed("boolean"),
				"to_upper":             typed("boolean"),
				"remove_control_chars": typed("boolean"),
			}),
			"options": object(map[string]any{
				"preserve_tabs":     typed("boolean"),
				"preserve_newlines": typed("boolean"),
			}),
		}, "text"),
		nullableResult(map[string]any{
			"text": typed("string"),
			"meta": object(map[string]any{
				"original_length":   typed("integer"),
				"normalized_length": typed("integer"),
				"applied":           arrayOf(typed("string")),
			}, "original_length", "normalized_length", "applied"),
		}, "text", "meta"),
		example("text_normalize",
			map[string]any{"text": "a  b", "ops": map[string]any{"collapse_whitespace": true}},
			map[string]any{"text": "a b", "meta": map[string]any{
				"original_length": 4, "normalized_length": 3,
				"applied": []any{"collapse_whitespace"},
			}}),
		code("INPUT_INVALID", "input does not match schema"),
	),
	"input_gate": entry(
		"input_gate",
		"Pre-flight input checks for type, size, and structural limits.",
		object(map[string]any{
			"input": anyValue(),
			"rules": typed("object"),
			"mode":  map[string]any{"type": "string", "enum": []any{"strict", "permissive"}},
		}, "input"),
		nullableResult(map[string]any{
			"pass":    typed("boolean"),
			"reasons": arrayOf(typed("object")),
		}, "pass", "reasons"),
		example("input_gate",
			map[string]any{"input": map[string]any{"a": 1}},
			map[string]any{"pass": true, "reasons": []any{}}),
		code("TYPE_NOT_ALLOWED", "input type is not allowed"),
		code("JSON_TOO_LARGE", "json exceeds max_size"),
		code("STRING_TOO_SHORT", "string below min_length"),
		code("STRING_TOO_LONG", "string exceeds max_length"),
		code("ARRAY_TOO_LONG", "array exceeds max_length"),
		code("OBJECT_TOO_DEEP", "object exceeds max_depth"),
		code("OBJECT_TOO_MANY_KEYS", "object exceeds max_keys"),
		code("RULES_INVALID", "rules are invalid"),
		code("MODE_INVALID", "mode is invalid"),
		code("INPUT_INVALID", "request body invalid"),
	),
	"schema_validate": entry(
		"schema_validate",
		"Validate data against a limited JSON Schema subset.",
		object(map[string]any{
			"schema": typed("object"),
			"data":   anyValue(),
		}, "schema", "data"),
		nullableResult(map[string]any{
			"ok":      typed("boolean"),
			"issues":  arrayOf(typed("object")),
			"summary": typed("object"),
		}, "ok", "issues", "summary"),
		example("schema_validate",
			map[string]any{
				"schema": map[string]any{"type": "string"},
				"data":   "hello",
			},
			map[string]any{"ok": true, "issues": []any{}, "summary": map[string]any{"issue_count": 0}}),
		code("INPUT_INVALID", "request body invalid"),
		code("DATA_TOO_LARGE", "input data exceeds max length"),
		code("SCHEMA_UNSUPPORTED", "schema keyword is unsupported"),
		code("SCHEMA_INVALID", "schema type invalid"),
	),
	"schema_map": entry(
		"schema_map",
		"Apply rename/default/drop/require mapping rules to a data object.",
		object(map[string]any{
			"data": typed("object"),
			"mapping": object(map[string]any{
				"rename":   typed("object"),
				"drop":     arrayOf(typed("string")),
				"defaults": typed("object"),
				"require":  arrayOf(typed("string")),
			}),
			"mode": map[string]any{"type": "string", "enum": []any{"strict", "permissive"}},
		}, "data", "mapping"),
		nullableResult(map[string]any{
			"ok":      typed("boolean"),
			"data":    map[string]any{"type": []any{"object", "null"}},
			"applied": map[string]any{"type": []any{"array", "null"}, "items": typed("string")},
			"errors":  arrayOf(typed("object")),
		}, "ok", "data", "applied", "errors"),
		example("schema_map",
			map[string]any{
				"data":    map[string]any{"old": 1},
				"mapping": map[string]any{"rename": map[string]any{"old": "new"}},
				"mode":    "strict",
			},
			map[string]any{
				"ok":      true,
				"data":    map[string]any{"new": 1},
				"applied": []any{"rename:old->new"},
				"errors":  []any{},
			}),
		code("INPUT_INVALID", "request body invalid"),
		code("MODE_INVALID", "mode is not strict or permissive"),
		code("MAPPING_INVALID", "a mapping path is invalid"),
	),
	"structured_error": entry(
		"structured_error",
		"Normalize error inputs into a structured error envelope.",
		object(map[string]any{
			"source": typed("object"),
			"error":  typed("object"),
			"policy": typed("object"),
		}, "source", "error", "policy"),
		nullableResult(map[string]any{
			"error": typed("object"),
		}, "error"),
		example("structured_error",
			map[string]any{
				"source": map[string]any{"tool": "input_gate", "stage": "gate", "version": "1.0"},
				"error":  map[string]any{"code": "RULES_INVALID", "message": "rules invalid", "http_status": 400},
				"policy": map[string]any{"max_message_length": 300, "include_raw_message": true},
			},
			map[string]any{"error": map[string]any{
				"class": "RULES_INVALID", "code": "RULES_INVALID", "message": "rules invalid",
				"retryable": false, "severity": "low",
				"where":       map[string]any{"tool": "input_gate", "stage": "gate", "path": ""},
				"http_status": 400,
				"fingerprint": multitools.Fingerprint("input_gate", "gate", "RULES_INVALID", "RULES_INVALID", 400),
			}}),
		code("POLICY_INVALID", "policy fields invalid"),
		code("SOURCE_INVALID", "source fields invalid"),
		code("ERROR_INVALID", "error.code missing"),
	),
	"capability_contract": entry(
		"capability_contract",
		"Return the declared contract metadata for a named capability.",
		object(map[string]any{"name": typed("string")}, "name"),
		nullableResult(map[string]any{
			"contract": typed("object"),
		}, "contract"),
		example("capability_contract",
			map[string]any{"name": "verify_test"},
			map[string]any{"contract": map[string]any{"name": "verify_test"}}),
		code("CAPABILITY_UNKNOWN", "capability not found"),
		code("CAPABILITY_INVALID", "capability name empty"),
		code("INPUT_INVALID", "request body invalid"),
	),
	"rule_trace": entry(
		"rule_trace",
		"Normalize execution traces with input/output summaries and rule hits.",
		object(map[string]any{
			"run":    typed("object"),
			"input":  typed("object"),
			"result": typed("object"),
			"policy": typed("object"),
		}, "run", "input", "result", "policy"),
		nullableResult(map[string]any{
			"trace": typed("object"),
		}, "trace"),
		example("rule_trace",
			map[string]any{
				"run":    map[string]any{"run_id": "r1", "ts": "2024-01-01T00:00:00Z", "actor": "ci", "tool": "input_gate", "tool_version": "1.0", "stage": "gate"},
				"input":  map[string]any{"summary": map[string]any{"type": "object", "size": 12, "hash": "a1"}},
				"result": map[string]any{"ok": true, "output_summary": map[string]any{"type": "object", "size": 12, "hash": "a1"}, "rules_hit": []any{}},
				"policy": map[string]any{"max_message_length": 200, "hash_alg": "sha256"},
			},
			map[string]any{"trace": map[string]any{
				"run_id": "r1", "ts": "2024-01-01T00:00:00Z", "actor": "ci",
				"tool": "input_gate", "tool_version": "1.0", "stage": "gate",
				"input":     map[string]any{"type": "object", "size": 12, "hash": "a1"},
				"output":    map[string]any{"type": "object", "size": 12, "hash": "a1"},
				"rules_hit": []any{}, "status": "success",
			}}),
		code("POLICY_INVALID", "hash_alg is not sha256"),
	),
	"schema_diff": entry(
		"schema_diff",
		"Diff two JSON Schemas and return added/removed/changed paths.",
		object(map[string]any{
			"old_schema": typed("object"),
			"new_schema": typed("object"),
			"options":    typed("object"),
		}, "old_schema", "new_schema"),
		nullableResult(map[string]any{
			"diff": object(map[string]any{
				"added_fields":   arrayOf(typed("object")),
				"removed_fields": arrayOf(typed("object")),
				"changed_fields": arrayOf(typed("object")),
			}, "added_fields", "removed_fields", "changed_fields"),
		}, "diff"),
		example("schema_diff",
			map[string]any{
				"old_schema": map[string]any{"type": "object", "properties": map[string]any{}},
				"new_schema": map[string]any{"type": "object", "properties": map[string]any{}},
			},
			map[string]any{"diff": map[string]any{
				"added_fields": []any{}, "removed_fields": []any{}, "changed_fields": []any{},
			}}),
		code("SCHEMA_UNSUPPORTED", "schema uses unsupported keywords"),
		code("INPUT_INVALID", "request body invalid"),
	),
	"enum_registry": entry(
		"enum_registry",
		"Normalize and validate enum sets for matching query values.",
		object(map[string]any{
			"enum_set": typed("object"),
			"query":    typed("object"),
			"policy":   typed("object"),
		}, "enum_set", "query", "policy"),
		nullableResult(map[string]any{
			"name":       typed("string"),
			"version":    typed("string"),
			"matched":    arrayOf(typed("object")),
			"missing":    arrayOf(typed("object")),
			"duplicates": arrayOf(typed("object")),
		}, "name", "version", "matched", "missing", "duplicates"),
		example("enum_registry",
			map[string]any{
				"enum_set": map[string]any{"name": "colors", "version": "1", "items": []any{map[string]any{"key": "red", "aliases": []any{"crimson"}}}},
				"query":    map[string]any{"values": []any{"crimson"}, "mode": "strict"},
			},
			map[string]any{
				"name": "colors", "version": "1",
				"matched":    []any{map[string]any{"input": "crimson", "key": "red"}},
				"missing":    []any{}, "duplicates": []any{},
			}),
		code("ENUM_EMPTY", "enum_set.items is empty"),
		code("ENUM_INVALID", "enum_set/query structure invalid"),
		code("TOO_MANY_VALUES", "query.values exceeds max_values"),
		code("POLICY_INVALID", "policy invalid"),
	),
}
