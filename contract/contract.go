// Package contract declares the capability contract of every tool: path,
// determinism guarantees, input/output schemas, and error codes. Contracts
// are data, served verbatim to clients.
package contract

import (
	"sort"
	"strings"

	multitools "github.com/YanKe1816/multi-tools-server"
	"github.com/YanKe1816/multi-tools-server/internal/jsonx"
)

// Tool is the registered name of the contract lookup tool.
const Tool = "capability_contract"

// Result is the capability_contract operation result.
type Result struct {
	Contract map[string]any `json:"contract"`
}

// Summary is the short contract form used by the server manifest.
type Summary struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

// Fetch returns the contract for a named capability. The name is trimmed
// before lookup. The returned contract is a private copy.
func Fetch(name string) (*Result, *multitools.StructuredError) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, multitools.NewErrorAt(Tool, "validate", "name", multitools.ClassInputInvalid,
			multitools.CodeCapabilityInvalid, "Capability name must be a non-empty string.", 400)
	}
	c, ok := registry[trimmed]
	if !ok {
		return nil, multitools.NewErrorAt(Tool, "lookup", "name", multitools.ClassNotFound,
			multitools.CodeCapabilityUnknown, "Capability not found.", 404)
	}
	copied, _ := jsonx.DeepCopy(c).(map[string]any)
	return &Result{Contract: copied}, nil
}

// Lookup returns the raw registry entry. Callers must not mutate it.
func Lookup(name string) (map[string]any, bool) {
	c, ok := registry[name]
	return c, ok
}

// Names returns every registered capability name, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summaries returns the short form of every contract, sorted by name.
func Summaries() []Summary {
	out := make([]Summary, 0, len(registry))
	for _, name := range Names() {
		c := registry[name]
		out = append(out, Summary{
			Name:        name,
			Version:     c["version"].(string),
			Path:        c["path"].(string),
			Description: c["description"].(string),
		})
	}
	return out
}

// InputSchema returns the declared input schema for a tool, or nil.
func InputSchema(name string) map[string]any {
	c, ok := registry[name]
	if !ok {
		return nil
	}
	inputs, _ := c["inputs"].(map[string]any)
	s, _ := inputs["json_schema"].(map[string]any)
	return s
}

// Description returns the one-line tool description, or "".
func Description(name string) string {
	c, ok := registry[name]
	if !ok {
		return ""
	}
	d, _ := c["description"].(string)
	return d
}
