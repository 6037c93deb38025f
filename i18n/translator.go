// Package i18n renders the human-readable messages attached to issue codes
// and gate reasons. The server always runs with the "en" catalog so output
// stays byte-stable; the language switch exists for embedders.
package i18n

import "strings"

// Translator retrieves localized messages for message keys. data provides
// optional parameters to substitute into the message (for example, "min" or
// "expected").
type Translator interface {
	Message(key string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var enMessages = map[string]string{
	"TYPE_MISMATCH":         "Expected {expected}.",
	"REQUIRED_MISSING":      "Required field missing.",
	"REQUIRED_PATH_MISSING": "Required path is missing.",
	"ADDITIONAL_PROPERTY":   "Additional property not allowed.",
	"MIN_LENGTH":            "Minimum length {min}.",
	"MAX_LENGTH":            "Maximum length {max}.",
	"ENUM_MISMATCH":         "Value not in enum.",
	"SCHEMA_INVALID":        "Invalid schema type.",
	"SCHEMA_UNSUPPORTED":    "Unsupported schema keyword: {key}.",
	"SCHEMA_KEYWORD":        "unsupported schema keyword",
	"SCHEMA_REF":            "ref is not supported",
	"SOURCE_PATH_MISSING":   "Rename source path is missing.",
	"MAPPING_INVALID":       "Invalid path: {path}.",
	"MODE_INVALID":          "Mode must be strict or permissive.",
	"RULES_INVALID":         "Rules are invalid.",
	"DATA_TOO_LARGE":        "Input data is too large.",
	"INPUT_INVALID":         "Input must match the {tool} schema.",
	"TYPE_NOT_ALLOWED":      "Input type is not allowed.",
	"JSON_TOO_LARGE":        "JSON size exceeds max_size.",
	"STRING_TOO_SHORT":      "String length is below min_length.",
	"STRING_TOO_LONG":       "String length exceeds max_length.",
	"ARRAY_TOO_LONG":        "Array length exceeds max_length.",
	"OBJECT_TOO_DEEP":       "Object depth exceeds max_depth.",
	"OBJECT_TOO_MANY_KEYS":  "Object key count exceeds max_keys.",
}

var jaMessages = map[string]string{
	"TYPE_MISMATCH":         "{expected}型が必要です",
	"REQUIRED_MISSING":      "必須フィールドが不足しています",
	"REQUIRED_PATH_MISSING": "必須パスが不足しています",
	"ADDITIONAL_PROPERTY":   "許可されていないプロパティです",
	"MIN_LENGTH":            "最小長は{min}です",
	"MAX_LENGTH":            "最大長は{max}です",
	"ENUM_MISMATCH":         "列挙値に含まれていません",
	"SCHEMA_INVALID":        "スキーマの型が不正です",
	"SCHEMA_UNSUPPORTED":    "未対応のスキーマキーワードです: {key}",
	"SCHEMA_KEYWORD":        "未対応のスキーマキーワードです",
	"SCHEMA_REF":            "refは未対応です",
	"SOURCE_PATH_MISSING":   "リネーム元のパスが存在しません",
	"MAPPING_INVALID":       "パスが不正です: {path}",
	"MODE_INVALID":          "モードはstrictまたはpermissiveです",
	"RULES_INVALID":         "ルールが不正です",
	"DATA_TOO_LARGE":        "入力データが大きすぎます",
	"INPUT_INVALID":         "入力が{tool}のスキーマに一致しません",
}

func (t dictTranslator) Message(key string, data map[string]string) string {
	var msg string
	var ok bool
	switch t.lang {
	case "ja":
		msg, ok = jaMessages[key]
		if !ok {
			msg, ok = enMessages[key]
		}
	default:
		msg, ok = enMessages[key]
	}
	if !ok {
		return key
	}
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	return msg
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given key using the current Translator.
func T(key string, data map[string]string) string { return currentTranslator.Message(key, data) }
