package trace_test

import (
	"strings"
	"testing"

	"github.com/YanKe1816/multi-tools-server/trace"
)

func baseRun() trace.Run {
	return trace.Run{RunID: "r1", TS: "2024-01-01T00:00:00Z", Actor: "system", Tool: "x", ToolVersion: "1", Stage: "s"}
}

func TestSuccessStatus(t *testing.T) {
	in := trace.Summary{Type: "string", Size: 1, Hash: "h"}
	out := trace.Summary{Type: "string", Size: 2, Hash: "h2"}
	res, serr := trace.Build(baseRun(), in, trace.Outcome{OK: true, OutputSummary: &out}, trace.DefaultPolicy())
	if serr != nil {
		t.Fatalf("error: %v", serr)
	}
	tr := res.Trace
	if tr.Status != "success" || tr.RunID != "r1" || tr.Input != in || tr.Output != out {
		t.Fatalf("trace = %+v", tr)
	}
	if len(tr.RulesHit) != 0 {
		t.Fatalf("rules_hit = %v", tr.RulesHit)
	}
}

func TestErrorStatusWinsOverRejected(t *testing.T) {
	outcome := trace.Outcome{
		OK:       false,
		RulesHit: []trace.RuleHit{{RuleID: "r", Kind: "reject", Path: "$", Code: "C", Message: "m"}},
		Error:    &trace.OutcomeError{Code: "BOOM", Message: "failed"},
	}
	res, serr := trace.Build(baseRun(), trace.Summary{}, outcome, trace.DefaultPolicy())
	if serr != nil {
		t.Fatalf("error: %v", serr)
	}
	if res.Trace.Status != "error" {
		t.Fatalf("status = %q", res.Trace.Status)
	}
}

func TestRejectedStatus(t *testing.T) {
	outcome := trace.Outcome{
		OK:       false,
		RulesHit: []trace.RuleHit{{RuleID: "r", Kind: "reject", Path: "$", Code: "C", Message: "m"}},
	}
	res, _ := trace.Build(baseRun(), trace.Summary{}, outcome, trace.DefaultPolicy())
	if res.Trace.Status != "rejected" {
		t.Fatalf("status = %q", res.Trace.Status)
	}

	outcome.RulesHit[0].Kind = "warn"
	res, _ = trace.Build(baseRun(), trace.Summary{}, outcome, trace.DefaultPolicy())
	if res.Trace.Status != "success" {
		t.Fatalf("a failed outcome without reject hits is not rejected, status = %q", res.Trace.Status)
	}
}

func TestMessageTruncation(t *testing.T) {
	policy := trace.Policy{MaxMessageLength: 5, HashAlg: "sha256"}
	outcome := trace.Outcome{
		OK: true,
		RulesHit: []trace.RuleHit{
			{RuleID: "r1", Message: "short"},
			{RuleID: "r2", Message: strings.Repeat("x", 10)},
			{RuleID: "r3", Message: "日本語は五文字超"},
		},
	}
	res, _ := trace.Build(baseRun(), trace.Summary{}, outcome, policy)
	if res.Trace.RulesHit[0].Message != "short" {
		t.Fatalf("message = %q", res.Trace.RulesHit[0].Message)
	}
	if res.Trace.RulesHit[1].Message != "xxxxx..." {
		t.Fatalf("message = %q", res.Trace.RulesHit[1].Message)
	}
	if res.Trace.RulesHit[2].Message != "日本語は五..." {
		t.Fatalf("truncation must count code points, message = %q", res.Trace.RulesHit[2].Message)
	}
}

func TestMissingOutputSummaryZeroes(t *testing.T) {
	res, _ := trace.Build(baseRun(), trace.Summary{Type: "string", Size: 1, Hash: "h"}, trace.Outcome{OK: true}, trace.DefaultPolicy())
	if res.Trace.Output != (trace.Summary{}) {
		t.Fatalf("output = %+v", res.Trace.Output)
	}
}

func TestHashAlgMustBeSha256(t *testing.T) {
	_, serr := trace.Build(baseRun(), trace.Summary{}, trace.Outcome{OK: true}, trace.Policy{MaxMessageLength: 200, HashAlg: "md5"})
	if serr == nil || serr.Code != "POLICY_INVALID" || serr.Message != "policy.hash_alg must be sha256." {
		t.Fatalf("err = %+v", serr)
	}
}
