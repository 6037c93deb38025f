package multitools

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Error classes. A class groups codes by recovery semantics; codes identify
// the precise failure.
const (
	ClassInputInvalid      = "INPUT_INVALID"
	ClassRulesInvalid      = "RULES_INVALID"
	ClassSchemaUnsupported = "SCHEMA_UNSUPPORTED"
	ClassNotFound          = "NOT_FOUND"
	ClassRateLimit         = "RATE_LIMIT"
	ClassTimeout           = "TIMEOUT"
	ClassUpstream          = "UPSTREAM"
	ClassInternal          = "INTERNAL"
	ClassUnknown           = "UNKNOWN"
)

// Request-fatal error codes shared across tools.
const (
	CodeInputInvalid      = "INPUT_INVALID"
	CodeSchemaUnsupported = "SCHEMA_UNSUPPORTED"
	CodeSchemaInvalid     = "SCHEMA_INVALID"
	CodeDataTooLarge      = "DATA_TOO_LARGE"
	CodeMappingInvalid    = "MAPPING_INVALID"
	CodeModeInvalid       = "MODE_INVALID"
	CodeRulesInvalid      = "RULES_INVALID"
	CodePolicyInvalid     = "POLICY_INVALID"
	CodeSourceInvalid     = "SOURCE_INVALID"
	CodeErrorInvalid      = "ERROR_INVALID"
	CodeEnumInvalid       = "ENUM_INVALID"
	CodeEnumEmpty         = "ENUM_EMPTY"
	CodeTooManyValues     = "TOO_MANY_VALUES"
	CodeCapabilityInvalid = "CAPABILITY_INVALID"
	CodeCapabilityUnknown = "CAPABILITY_UNKNOWN"
)

// Where locates an error inside the system for log correlation.
type Where struct {
	Tool  string `json:"tool"`
	Stage string `json:"stage"`
	Path  string `json:"path"`
}

// StructuredError is the uniform error payload carried by failure envelopes.
// Retryable is always false for the built-in tools: inputs are deterministic,
// so a retry can never change the outcome.
type StructuredError struct {
	Class       string `json:"class"`
	Code        string `json:"code"`
	Message     string `json:"message"`
	Retryable   bool   `json:"retryable"`
	Severity    string `json:"severity"`
	Where       Where  `json:"where"`
	HTTPStatus  int    `json:"http_status"`
	Fingerprint string `json:"fingerprint"`
}

// Error renders a short summary, e.g. "INPUT_INVALID at schema_validate/validate".
func (e *StructuredError) Error() string {
	return fmt.Sprintf("%s at %s/%s: %s", e.Code, e.Where.Tool, e.Where.Stage, e.Message)
}

// NewError builds a StructuredError with class INPUT_INVALID and http status
// 400, the common case for request-shape failures.
func NewError(tool, stage, code, message string) *StructuredError {
	return NewErrorAt(tool, stage, "", ClassInputInvalid, code, message, 400)
}

// NewErrorAt builds a StructuredError with every field explicit. Severity and
// retryability derive from the class; the fingerprint is computed from the
// identifying fields.
func NewErrorAt(tool, stage, path, class, code, message string, httpStatus int) *StructuredError {
	return &StructuredError{
		Class:       class,
		Code:        code,
		Message:     message,
		Retryable:   Retryable(class),
		Severity:    SeverityFor(class),
		Where:       Where{Tool: tool, Stage: stage, Path: path},
		HTTPStatus:  httpStatus,
		Fingerprint: Fingerprint(tool, stage, class, code, httpStatus),
	}
}

// Classify maps an arbitrary error code plus http status onto an error class.
// Code prefixes win over status hints; unrecognized inputs land in UNKNOWN.
func Classify(code string, httpStatus int) string {
	switch {
	case strings.HasPrefix(code, "INPUT_"):
		return ClassInputInvalid
	case strings.Contains(code, "RULES_"):
		return ClassRulesInvalid
	case strings.Contains(code, "SCHEMA_"):
		return ClassSchemaUnsupported
	case httpStatus == 404 || strings.Contains(code, "NOT_FOUND"):
		return ClassNotFound
	case httpStatus == 429 || strings.Contains(code, "RATE_LIMIT"):
		return ClassRateLimit
	case strings.Contains(code, "TIMEOUT"):
		return ClassTimeout
	case strings.Contains(code, "UPSTREAM"), httpStatus == 502, httpStatus == 503, httpStatus == 504:
		return ClassUpstream
	case strings.Contains(code, "INTERNAL") || httpStatus == 500:
		return ClassInternal
	}
	return ClassUnknown
}

// Retryable reports whether errors of the given class may succeed on retry.
func Retryable(class string) bool {
	switch class {
	case ClassRateLimit, ClassTimeout, ClassUpstream:
		return true
	}
	return false
}

// SeverityFor maps a class to its log severity.
func SeverityFor(class string) string {
	switch class {
	case ClassInputInvalid, ClassRulesInvalid, ClassSchemaUnsupported:
		return "low"
	case ClassInternal:
		return "high"
	}
	return "medium"
}

// Fingerprint returns a short stable hash of the identifying error fields:
// the first 16 hex characters of sha256("tool|stage|class|code|http_status").
// It is a correlation key, not a secret.
func Fingerprint(tool, stage, class, code string, httpStatus int) string {
	raw := fmt.Sprintf("%s|%s|%s|%s|%d", tool, stage, class, code, httpStatus)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:16]
}
