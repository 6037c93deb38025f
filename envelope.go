package multitools

// Version is the wire version stamped on every envelope.
const Version = "1.0"

// Envelope is the uniform response wrapper shared by all tools. Per-record
// problems (validation issues, mapper errors, gate reasons) ride inside
// Result with OK true; only request-fatal failures populate Error.
type Envelope struct {
	OK      bool             `json:"ok"`
	Tool    string           `json:"tool"`
	Version string           `json:"version"`
	Result  any              `json:"result"`
	Error   *StructuredError `json:"error"`
}

// OK wraps an operation result in a success envelope.
func OK(tool string, result any) Envelope {
	return Envelope{OK: true, Tool: tool, Version: Version, Result: result}
}

// Fail wraps a structured error in a failure envelope; Result is null.
func Fail(tool string, err *StructuredError) Envelope {
	return Envelope{OK: false, Tool: tool, Version: Version, Error: err}
}
