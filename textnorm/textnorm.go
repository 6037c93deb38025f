// Package textnorm applies explicit, deterministic text normalization
// operations. Every op is opt-in and the applied log records only ops that
// actually changed the text.
package textnorm

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Tool is the registered tool name.
const Tool = "text_normalize"

// Ops selects which normalization steps run. Steps always execute in the
// fixed order newlines, control chars, whitespace, trim, lower, upper.
type Ops struct {
	NormalizeNewlines  bool `json:"normalize_newlines"`
	CollapseWhitespace bool `json:"collapse_whitespace"`
	Trim               bool `json:"trim"`
	ToLower            bool `json:"to_lower"`
	ToUpper            bool `json:"to_upper"`
	RemoveControlChars bool `json:"remove_control_chars"`
}

// Options tune the whitespace-sensitive ops. Both preserve flags default
// to true.
type Options struct {
	PreserveTabs     bool `json:"preserve_tabs"`
	PreserveNewlines bool `json:"preserve_newlines"`
}

// DefaultOptions returns the default op options.
func DefaultOptions() Options {
	return Options{PreserveTabs: true, PreserveNewlines: true}
}

// Meta reports what normalization did. Lengths count code points.
type Meta struct {
	OriginalLength   int      `json:"original_length"`
	NormalizedLength int      `json:"normalized_length"`
	Applied          []string `json:"applied"`
}

// Result is the text_normalize operation result.
type Result struct {
	Text string `json:"text"`
	Meta Meta   `json:"meta"`
}

var (
	spaceRuns    = regexp.MustCompile(` +`)
	tabSpaceRuns = regexp.MustCompile(`[\t ]+`)
)

// Normalize runs the selected ops over text in their fixed order.
func Normalize(text string, ops Ops, opt Options) *Result {
	original := text
	applied := []string{}

	step := func(name, normalized string) {
		if normalized != text {
			applied = append(applied, name)
		}
		text = normalized
	}

	if ops.NormalizeNewlines {
		step("normalize_newlines", strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\r", "\n"))
	}
	if ops.RemoveControlChars {
		step("remove_control_chars", removeControlChars(text, opt))
	}
	if ops.CollapseWhitespace {
		step("collapse_whitespace", collapseWhitespace(text, opt))
	}
	if ops.Trim {
		step("trim", strings.TrimSpace(text))
	}
	if ops.ToLower {
		step("to_lower", strings.ToLower(text))
	}
	if ops.ToUpper {
		step("to_upper", strings.ToUpper(text))
	}

	return &Result{
		Text: text,
		Meta: Meta{
			OriginalLength:   utf8.RuneCountInString(original),
			NormalizedLength: utf8.RuneCountInString(text),
			Applied:          applied,
		},
	}
}

func collapseWhitespace(text string, opt Options) string {
	pattern := tabSpaceRuns
	if opt.PreserveTabs {
		pattern = spaceRuns
	}
	if !opt.PreserveNewlines {
		return pattern.ReplaceAllString(text, " ")
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = pattern.ReplaceAllString(line, " ")
	}
	return strings.Join(lines, "\n")
}

// removeControlChars drops runes below 0x20 except the allowed tab/newline
// set. DEL and above stay, matching the original behavior.
func removeControlChars(text string, opt Options) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r >= 32 || (r == '\t' && opt.PreserveTabs) || (r == '\n' && opt.PreserveNewlines) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
