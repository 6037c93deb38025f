package multitools

import "strings"

// ToolStructuredError is the registered name of the error normalization
// tool.
const ToolStructuredError = "structured_error"

// Source identifies the component that produced an error being normalized.
type Source struct {
	Tool    string `json:"tool"`
	Stage   string `json:"stage"`
	Version string `json:"version"`
}

// ErrorInput is a raw error report to normalize.
type ErrorInput struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Type       string         `json:"type"`
	HTTPStatus int            `json:"http_status"`
	Path       string         `json:"path"`
	Details    map[string]any `json:"details"`
}

// ErrorPolicy tunes normalization. MaxMessageLength must stay within
// 1..5000; IncludeRawMessage false blanks the message entirely.
type ErrorPolicy struct {
	MaxMessageLength  int  `json:"max_message_length"`
	IncludeRawMessage bool `json:"include_raw_message"`
}

// DefaultErrorPolicy returns the default normalization policy.
func DefaultErrorPolicy() ErrorPolicy {
	return ErrorPolicy{MaxMessageLength: 300, IncludeRawMessage: true}
}

// ErrorReport is the structured_error operation result: the normalized
// error as data. A normalized error is a result, not a request failure.
type ErrorReport struct {
	Error *StructuredError `json:"error"`
}

// NormalizeError classifies a raw error report into the structured error
// shape: class from code and status, derived severity and retryability,
// and a correlation fingerprint.
func NormalizeError(source Source, input ErrorInput, policy ErrorPolicy) (*ErrorReport, *StructuredError) {
	if policy.MaxMessageLength < 1 || policy.MaxMessageLength > 5000 {
		return nil, NewError(ToolStructuredError, "validate", CodePolicyInvalid,
			"policy.max_message_length must be an integer between 1 and 5000.")
	}
	if strings.TrimSpace(source.Tool) == "" {
		return nil, NewError(ToolStructuredError, "validate", CodeSourceInvalid,
			"source.tool must be a non-empty string.")
	}
	if strings.TrimSpace(source.Stage) == "" {
		return nil, NewError(ToolStructuredError, "validate", CodeSourceInvalid,
			"source.stage must be a non-empty string.")
	}
	if strings.TrimSpace(input.Code) == "" {
		return nil, NewError(ToolStructuredError, "validate", CodeErrorInvalid,
			"error.code must be a non-empty string.")
	}

	class := Classify(input.Code, input.HTTPStatus)
	message := ""
	if policy.IncludeRawMessage {
		message = truncateMessage(input.Message, policy.MaxMessageLength)
	}

	return &ErrorReport{Error: &StructuredError{
		Class:       class,
		Code:        input.Code,
		Message:     message,
		Retryable:   Retryable(class),
		Severity:    SeverityFor(class),
		Where:       Where{Tool: source.Tool, Stage: source.Stage, Path: input.Path},
		HTTPStatus:  input.HTTPStatus,
		Fingerprint: Fingerprint(source.Tool, source.Stage, class, input.Code, input.HTTPStatus),
	}}, nil
}

// truncateMessage limits length in code points, marking cuts with "...".
func truncateMessage(message string, limit int) string {
	runes := []rune(message)
	if len(runes) <= limit {
		return message
	}
	return string(runes[:limit]) + "..."
}
