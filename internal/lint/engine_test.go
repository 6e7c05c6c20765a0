package lint

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hyperengineering/shortlens/internal/oracle"
	"github.com/hyperengineering/shortlens/internal/rules"
	"github.com/hyperengineering/shortlens/internal/types"
)

// mockOracle implements oracle.Oracle for testing
type mockOracle struct {
	response string
	err      error

	lastSource string
	lastPrompt string
	lastOpts   oracle.Options
	calls      int
}

func (m *mockOracle) AnalyzeVideo(ctx context.Context, source, prompt string, opts oracle.Options) (string, error) {
	m.calls++
	m.lastSource = source
	m.lastPrompt = prompt
	m.lastOpts = opts
	return m.response, m.err
}

var _ oracle.Oracle = (*mockOracle)(nil)

func TestRunCleanVideo(t *testing.T) {
	mock := &mockOracle{response: `{"violations": [], "summary": "Strong retention throughout."}`}
	engine := NewEngine(mock)

	result, err := engine.Run(context.Background(), "https://youtube.com/shorts/abc12345678", types.FormatTalkingHead)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	rs := rules.GetRuleSet(types.FormatTalkingHead)
	if result.Score != 100 {
		t.Errorf("Score = %d, want 100", result.Score)
	}
	if result.Passed != len(rs.Rules) {
		t.Errorf("Passed = %d, want %d", result.Passed, len(rs.Rules))
	}
	if result.TotalRules != len(rs.Rules) {
		t.Errorf("TotalRules = %d, want %d", result.TotalRules, len(rs.Rules))
	}
	if result.Summary != "Strong retention throughout." {
		t.Errorf("Summary = %q", result.Summary)
	}

	// Lint runs near-deterministic.
	if mock.lastOpts.Temperature != 0.1 {
		t.Errorf("Temperature = %g, want 0.1", mock.lastOpts.Temperature)
	}
	if !strings.Contains(mock.lastPrompt, "th-hook-claim") {
		t.Error("prompt does not contain the format's rules")
	}
}

func TestRunOracleError(t *testing.T) {
	wantErr := errors.New("upstream timeout")
	engine := NewEngine(&mockOracle{err: wantErr})

	_, err := engine.Run(context.Background(), "https://youtu.be/abc12345678", types.FormatGameplay)
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want wrapped oracle error", err)
	}
}

func TestParseResponseScoreFormula(t *testing.T) {
	rs := rules.GetRuleSet(types.FormatTalkingHead)
	content := `{
		"violations": [
			{"ruleId": "th-hook-claim", "severity": "critical", "message": "Claim lands at 5s", "confidence": 0.9},
			{"ruleId": "th-dead-air", "severity": "moderate", "message": "Silent stretch at 0:12", "confidence": 0.8},
			{"ruleId": "th-caption-sync", "severity": "moderate", "message": "Captions lag by a second", "confidence": 0.7},
			{"ruleId": "th-cta-early", "severity": "minor", "message": "Subscribe ask at 0:08", "confidence": 0.6}
		],
		"summary": "Hook and pacing problems."
	}`

	result, err := ParseResponse(content, rs)
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}

	if result.Critical != 1 || result.Moderate != 2 || result.Minor != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/2/1", result.Critical, result.Moderate, result.Minor)
	}
	// 100 - 10*1 - 5*2 - 2*1 = 78
	if result.Score != 78 {
		t.Errorf("Score = %d, want 78", result.Score)
	}
	// 8 rules, 4 distinct violated.
	if result.Passed != 4 {
		t.Errorf("Passed = %d, want 4", result.Passed)
	}
}

// A rule flagged at several timestamps counts once for passed/violated
// accounting, though every violation still appears in the list.
func TestParseResponseRepeatedRuleCountsOnce(t *testing.T) {
	rs := rules.GetRuleSet(types.FormatOther)
	content := `{
		"violations": [
			{"ruleId": "ot-pacing", "severity": "moderate", "message": "Sag at 0:10", "confidence": 0.8},
			{"ruleId": "ot-pacing", "severity": "moderate", "message": "Sag at 0:20", "confidence": 0.8}
		],
		"summary": "Pacing sags twice."
	}`

	result, err := ParseResponse(content, rs)
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if result.Passed != len(rs.Rules)-1 {
		t.Errorf("Passed = %d, want %d", result.Passed, len(rs.Rules)-1)
	}
	if len(result.Violations) != 2 {
		t.Errorf("len(Violations) = %d, want 2", len(result.Violations))
	}
	// Both instances still penalize: 100 - 5*2 = 90.
	if result.Score != 90 {
		t.Errorf("Score = %d, want 90", result.Score)
	}
}

func TestParseResponseScoreClampedAtZero(t *testing.T) {
	rs := rules.GetRuleSet(types.FormatTalkingHead)
	var sb strings.Builder
	sb.WriteString(`{"violations": [`)
	for i := 0; i < 15; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(`{"ruleId": "th-hook-claim", "severity": "critical", "message": "issue `)
		sb.WriteString(strings.Repeat("x", i+1))
		sb.WriteString(`", "confidence": 1}`)
	}
	sb.WriteString(`], "summary": "Everything is wrong."}`)

	result, err := ParseResponse(sb.String(), rs)
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if result.Score != 0 {
		t.Errorf("Score = %d, want clamped to 0", result.Score)
	}
	if result.Passed < 0 {
		t.Errorf("Passed = %d, must never go negative", result.Passed)
	}
}

func TestParseResponseInvalidSeverityRejected(t *testing.T) {
	rs := rules.GetRuleSet(types.FormatDemo)
	content := `{"violations": [{"ruleId": "dm-jargon", "severity": "catastrophic", "message": "bad"}], "summary": "..."}`

	_, err := ParseResponse(content, rs)
	if err == nil {
		t.Fatal("expected error for invalid severity")
	}
	var parseErr *oracle.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error type = %T, want *oracle.ParseError", err)
	}
	if !strings.Contains(parseErr.Err.Error(), "catastrophic") {
		t.Errorf("error should name the invalid severity: %v", parseErr.Err)
	}
}

func TestParseResponseMalformedContent(t *testing.T) {
	rs := rules.GetRuleSet(types.FormatTalkingHead)
	raw := "I watched the video and it looks fine to me."

	_, err := ParseResponse(raw, rs)
	if err == nil {
		t.Fatal("expected error for non-JSON content")
	}
	var parseErr *oracle.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error type = %T, want *oracle.ParseError", err)
	}
	if parseErr.RawContent != raw {
		t.Error("ParseError must carry the raw oracle content")
	}
}

func TestParseResponseConfidenceClamped(t *testing.T) {
	rs := rules.GetRuleSet(types.FormatTalkingHead)
	content := `{"violations": [
		{"ruleId": "th-payoff", "severity": "critical", "message": "a", "confidence": 1.7},
		{"ruleId": "th-dead-air", "severity": "moderate", "message": "b", "confidence": -0.2}
	], "summary": "..."}`

	result, err := ParseResponse(content, rs)
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if result.Violations[0].Confidence != 1 {
		t.Errorf("Confidence = %g, want clamped to 1", result.Violations[0].Confidence)
	}
	if result.Violations[1].Confidence != 0 {
		t.Errorf("Confidence = %g, want clamped to 0", result.Violations[1].Confidence)
	}
}

func TestParseResponseSynthesizesSummary(t *testing.T) {
	rs := rules.GetRuleSet(types.FormatGameplay)
	result, err := ParseResponse(`{"violations": [{"ruleId": "gp-loop", "severity": "minor", "message": "no loop", "confidence": 0.5}]}`, rs)
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if result.Summary == "" {
		t.Error("empty summary should be synthesized from counts")
	}
}
