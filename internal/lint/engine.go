// Package lint runs a video through the per-format rule catalog via the
// oracle and computes a 0-100 lint score from severity counts.
package lint

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hyperengineering/shortlens/internal/oracle"
	"github.com/hyperengineering/shortlens/internal/rules"
	"github.com/hyperengineering/shortlens/internal/types"
)

// Severity penalties for the lint score formula
// clamp(100 - 10*critical - 5*moderate - 2*minor, 0, 100).
const (
	criticalPenalty = 10
	moderatePenalty = 5
	minorPenalty    = 2
)

// Engine lints videos against the rule catalog.
type Engine struct {
	oracle oracle.Oracle
}

// NewEngine creates a lint engine backed by the given oracle.
func NewEngine(o oracle.Oracle) *Engine {
	return &Engine{oracle: o}
}

// Run lints the video source against the rule set for the format.
// The oracle is invoked at near-zero temperature for consistency;
// an unparseable response is a hard failure carrying the raw content,
// never an empty violation list.
func (e *Engine) Run(ctx context.Context, source string, format types.VideoFormat) (*types.LintResult, error) {
	rs := rules.GetRuleSet(format)
	prompt := rules.BuildPrompt(rs)

	content, err := e.oracle.AnalyzeVideo(ctx, source, prompt, oracle.Options{
		Temperature: 0.1,
		MaxTokens:   4096,
	})
	if err != nil {
		return nil, fmt.Errorf("lint oracle call: %w", err)
	}

	return ParseResponse(content, rs)
}

// rawLint mirrors the lint oracle's response shape.
type rawLint struct {
	Violations []types.RuleViolation `json:"violations"`
	Summary    string                `json:"summary"`
}

// ParseResponse parses and validates the lint oracle output against the
// rule set's severity taxonomy. A violation with an unrecognized
// severity rejects the whole response: severities drive score
// arithmetic and must not be coerced.
func ParseResponse(content string, rs types.RuleSet) (*types.LintResult, error) {
	var raw rawLint
	if err := json.Unmarshal([]byte(oracle.ExtractJSON(content)), &raw); err != nil {
		return nil, &oracle.ParseError{Stage: "lint", RawContent: content, Err: err}
	}

	var critical, moderate, minor int
	violatedRules := make(map[string]struct{})
	for i := range raw.Violations {
		v := &raw.Violations[i]
		if !v.Severity.Valid() {
			return nil, &oracle.ParseError{
				Stage:      "lint",
				RawContent: content,
				Err:        fmt.Errorf("violation %d has invalid severity %q", i, v.Severity),
			}
		}
		// Confidence drives no arithmetic, so out-of-range values are
		// clamped rather than rejected.
		if v.Confidence < 0 {
			v.Confidence = 0
		} else if v.Confidence > 1 {
			v.Confidence = 1
		}
		switch v.Severity {
		case types.SeverityCritical:
			critical++
		case types.SeverityModerate:
			moderate++
		case types.SeverityMinor:
			minor++
		}
		if v.RuleID != "" {
			violatedRules[v.RuleID] = struct{}{}
		}
	}

	// Passed counts each rule once even when the oracle reports it
	// violated at multiple timestamps, and never goes negative.
	passed := len(rs.Rules) - len(violatedRules)
	if passed < 0 {
		passed = 0
	}

	score := 100 - criticalPenalty*critical - moderatePenalty*moderate - minorPenalty*minor
	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}

	summary := raw.Summary
	if summary == "" {
		summary = fmt.Sprintf("%d of %d rules violated.", len(violatedRules), len(rs.Rules))
	}

	return &types.LintResult{
		Format:     rs.Format,
		TotalRules: len(rs.Rules),
		Violations: raw.Violations,
		Passed:     passed,
		Critical:   critical,
		Moderate:   moderate,
		Minor:      minor,
		Score:      score,
		Summary:    summary,
	}, nil
}
