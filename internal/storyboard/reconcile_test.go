package storyboard

import (
	"strings"
	"testing"

	"github.com/hyperengineering/shortlens/internal/types"
)

func scoreWith(total, hook int) types.ScoreResult {
	return types.ScoreResult{
		SubScores:  types.SubScores{Hook: hook, Structure: 80, Clarity: 80, Delivery: 80},
		TotalScore: total,
	}
}

func beat(n int, start, end float64, issues ...types.Issue) types.Beat {
	return types.Beat{
		BeatNumber: n,
		StartTime:  start,
		EndTime:    end,
		Retention:  types.BeatRetention{Issues: issues},
	}
}

func TestReconcileBonusArithmetic(t *testing.T) {
	// Three beats, two clean, strong hook: +2*2 clean beats, +5 hook.
	sb := &types.Storyboard{Beats: []types.Beat{
		beat(1, 0, 5),
		beat(2, 5, 12, types.Issue{Severity: types.SeverityModerate, Message: "Pacing sags"}),
		beat(3, 12, 20),
	}}

	summary := Reconcile(sb, scoreWith(78, 85))

	if summary.BaseScore != 78 {
		t.Errorf("BaseScore = %d, want 78", summary.BaseScore)
	}
	if summary.BonusPoints != 9 {
		t.Errorf("BonusPoints = %d, want 9", summary.BonusPoints)
	}
	if summary.FinalScore != 87 {
		t.Errorf("FinalScore = %d, want 87", summary.FinalScore)
	}
	if len(summary.BonusDetails) != 2 {
		t.Errorf("BonusDetails = %v, want two entries", summary.BonusDetails)
	}
}

func TestReconcileFinalScoreUncapped(t *testing.T) {
	sb := &types.Storyboard{Beats: []types.Beat{
		beat(1, 0, 5),
		beat(2, 5, 12),
		beat(3, 12, 20),
	}}

	summary := Reconcile(sb, scoreWith(97, 96))

	// 97 + 3*2 + 5 = 108; scores above 100 are the S-grade range.
	if summary.FinalScore != 108 {
		t.Errorf("FinalScore = %d, want 108", summary.FinalScore)
	}
}

func TestReconcileNoBonuses(t *testing.T) {
	sb := &types.Storyboard{Beats: []types.Beat{
		beat(1, 0, 10, types.Issue{Severity: types.SeverityCritical, Message: "No hook"}),
	}}

	summary := Reconcile(sb, scoreWith(40, 30))

	if summary.BonusPoints != 0 {
		t.Errorf("BonusPoints = %d, want 0", summary.BonusPoints)
	}
	if summary.FinalScore != 40 {
		t.Errorf("FinalScore = %d, want BaseScore unchanged", summary.FinalScore)
	}
	if len(summary.BonusDetails) != 0 {
		t.Errorf("BonusDetails = %v, want empty", summary.BonusDetails)
	}
}

func TestReconcileDeduplicatesByMessage(t *testing.T) {
	sb := &types.Storyboard{Beats: []types.Beat{
		beat(1, 0, 5, types.Issue{Severity: types.SeverityModerate, Message: "Captions lag the audio"}),
		beat(2, 5, 10, types.Issue{Severity: types.SeverityModerate, Message: "  captions lag the audio "}),
		beat(3, 10, 15, types.Issue{Severity: types.SeverityMinor, Message: "Music too loud"}),
	}}

	summary := Reconcile(sb, scoreWith(70, 50))

	if len(summary.UniqueIssues) != 2 {
		t.Fatalf("UniqueIssues = %d, want 2", len(summary.UniqueIssues))
	}
	// Severity counts run over the deduplicated set.
	if summary.Moderate != 1 || summary.Minor != 1 || summary.Critical != 0 {
		t.Errorf("counts = %d/%d/%d, want 0/1/1", summary.Critical, summary.Moderate, summary.Minor)
	}
	// First occurrence wins: the kept copy points at beat 1.
	if summary.UniqueIssues[0].BeatNumber != 1 {
		t.Errorf("BeatNumber = %d, want 1", summary.UniqueIssues[0].BeatNumber)
	}
	// Every beat keeps its own tagged copy even when deduplicated.
	if sb.Beats[1].Retention.Issues[0].BeatNumber != 2 {
		t.Error("beat 2 lost its issue copy")
	}
}

func TestReconcileTagsIssuesWithBeatAndTimeRange(t *testing.T) {
	sb := &types.Storyboard{Beats: []types.Beat{
		beat(1, 0, 5.5, types.Issue{Severity: types.SeverityMinor, Message: "Static shot"}),
	}}

	summary := Reconcile(sb, scoreWith(60, 50))

	issue := summary.UniqueIssues[0]
	if issue.BeatNumber != 1 {
		t.Errorf("BeatNumber = %d", issue.BeatNumber)
	}
	if issue.Timestamp != "0s-5.5s" {
		t.Errorf("Timestamp = %q, want 0s-5.5s", issue.Timestamp)
	}
}

func TestReconcileHookThresholdBoundary(t *testing.T) {
	sb := &types.Storyboard{Beats: []types.Beat{
		beat(1, 0, 10, types.Issue{Severity: types.SeverityMinor, Message: "x"}),
	}}

	at := Reconcile(sb, scoreWith(70, 80))
	if at.BonusPoints != 5 {
		t.Errorf("hook=80: BonusPoints = %d, want 5", at.BonusPoints)
	}

	sb2 := &types.Storyboard{Beats: []types.Beat{
		beat(1, 0, 10, types.Issue{Severity: types.SeverityMinor, Message: "x"}),
	}}
	below := Reconcile(sb2, scoreWith(70, 79))
	if below.BonusPoints != 0 {
		t.Errorf("hook=79: BonusPoints = %d, want 0", below.BonusPoints)
	}
}

func TestApplyDeterministicScores(t *testing.T) {
	sb := &types.Storyboard{
		Performance: types.Performance{
			HookScore:  1,
			TotalScore: 1,
			Analysis:   "The oracle's prose survives.",
		},
	}
	score := types.ScoreResult{
		SubScores:  types.SubScores{Hook: 90, Structure: 85, Clarity: 80, Delivery: 75},
		TotalScore: 84,
	}

	applyDeterministicScores(sb, score)

	if sb.Performance.HookScore != 90 || sb.Performance.TotalScore != 84 {
		t.Errorf("numeric fields not overwritten: %+v", sb.Performance)
	}
	if sb.Performance.Analysis != "The oracle's prose survives." {
		t.Error("prose must not be touched")
	}
}

func TestBonusDetailsAreHumanReadable(t *testing.T) {
	sb := &types.Storyboard{Beats: []types.Beat{beat(1, 0, 5)}}
	summary := Reconcile(sb, scoreWith(90, 95))

	for _, d := range summary.BonusDetails {
		if !strings.HasPrefix(d, "+") {
			t.Errorf("bonus detail %q should start with the point delta", d)
		}
	}
}
