// Package trace normalizes execution trace records: run metadata, input and
// output summaries, rule hits with truncated messages, and a derived status.
package trace

import (
	multitools "github.com/YanKe1816/multi-tools-server"
)

// Tool is the registered tool name.
const Tool = "rule_trace"

// Run identifies one tool execution.
type Run struct {
	RunID       string `json:"run_id"`
	TS          string `json:"ts"`
	Actor       string `json:"actor"`
	Tool        string `json:"tool"`
	ToolVersion string `json:"tool_version"`
	Stage       string `json:"stage"`
}

// Summary describes a value without carrying it: JSON type, size, hash.
type Summary struct {
	Type string `json:"type"`
	Size int    `json:"size"`
	Hash string `json:"hash"`
}

// RuleHit is one rule that fired during the execution.
type RuleHit struct {
	RuleID  string `json:"rule_id"`
	Kind    string `json:"kind"`
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OutcomeError is the error carried by a failed execution.
type OutcomeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Class   string `json:"class,omitempty"`
}

// Outcome is the reported execution result.
type Outcome struct {
	OK            bool          `json:"ok"`
	OutputSummary *Summary      `json:"output_summary"`
	RulesHit      []RuleHit     `json:"rules_hit"`
	Error         *OutcomeError `json:"error"`
}

// Policy tunes trace normalization. Only sha256 hashes are accepted.
type Policy struct {
	MaxMessageLength int    `json:"max_message_length"`
	HashAlg          string `json:"hash_alg"`
}

// DefaultPolicy returns the default trace policy.
func DefaultPolicy() Policy {
	return Policy{MaxMessageLength: 200, HashAlg: "sha256"}
}

// Trace is the normalized record.
type Trace struct {
	RunID       string    `json:"run_id"`
	TS          string    `json:"ts"`
	Actor       string    `json:"actor"`
	Tool        string    `json:"tool"`
	ToolVersion string    `json:"tool_version"`
	Stage       string    `json:"stage"`
	Input       Summary   `json:"input"`
	Output      Summary   `json:"output"`
	RulesHit    []RuleHit `json:"rules_hit"`
	Status      string    `json:"status"`
}

// Result is the rule_trace operation result.
type Result struct {
	Trace Trace `json:"trace"`
}

// Build normalizes one execution record. Status is "error" when the outcome
// carries an error, "rejected" when a failed outcome hit a reject rule, and
// "success" otherwise.
func Build(run Run, input Summary, outcome Outcome, policy Policy) (*Result, *multitools.StructuredError) {
	if policy.HashAlg != "sha256" {
		return nil, multitools.NewError(Tool, "validate", multitools.CodePolicyInvalid, "policy.hash_alg must be sha256.")
	}

	hits := make([]RuleHit, 0, len(outcome.RulesHit))
	rejected := false
	for _, hit := range outcome.RulesHit {
		hit.Message = truncate(hit.Message, policy.MaxMessageLength)
		if hit.Kind == "reject" {
			rejected = true
		}
		hits = append(hits, hit)
	}

	status := "success"
	switch {
	case outcome.Error != nil:
		status = "error"
	case !outcome.OK && rejected:
		status = "rejected"
	}

	output := Summary{}
	if outcome.OutputSummary != nil {
		output = *outcome.OutputSummary
	}

	return &Result{Trace: Trace{
		RunID:       run.RunID,
		TS:          run.TS,
		Actor:       run.Actor,
		Tool:        run.Tool,
		ToolVersion: run.ToolVersion,
		Stage:       run.Stage,
		Input:       input,
		Output:      output,
		RulesHit:    hits,
		Status:      status,
	}}, nil
}

// truncate limits message length in code points, marking cuts with "...".
func truncate(message string, limit int) string {
	runes := []rune(message)
	if len(runes) <= limit {
		return message
	}
	return string(runes[:limit]) + "..."
}
