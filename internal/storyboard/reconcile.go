package storyboard

import (
	"fmt"
	"strings"

	"github.com/hyperengineering/shortlens/internal/types"
)

// Bonus mechanics layered on top of the deterministic base score.
// FinalScore is deliberately uncapped above 100: the dashboard renders
// an S grade at >= 100.
const (
	cleanBeatBonus      = 2
	strongHookBonus     = 5
	strongHookThreshold = 80
)

// Reconcile merges the storyboard's beat issues with the deterministic
// score. It tags every issue with its beat number and time range,
// deduplicates by lower-cased trimmed message (first occurrence wins;
// each beat keeps its own copy), counts severities over the
// deduplicated set, and applies bonus points. The deterministic total
// is the single source of truth for the base score; no severity-penalty
// recomputation happens here.
func Reconcile(sb *types.Storyboard, score types.ScoreResult) types.LintSummary {
	summary := types.LintSummary{
		UniqueIssues: []types.Issue{},
		BonusDetails: []string{},
		BaseScore:    score.TotalScore,
	}

	seen := make(map[string]struct{})
	cleanBeats := 0
	for i := range sb.Beats {
		beat := &sb.Beats[i]
		if len(beat.Retention.Issues) == 0 {
			cleanBeats++
			continue
		}
		for j := range beat.Retention.Issues {
			issue := &beat.Retention.Issues[j]
			issue.BeatNumber = beat.BeatNumber
			issue.Timestamp = fmt.Sprintf("%gs-%gs", beat.StartTime, beat.EndTime)

			key := strings.ToLower(strings.TrimSpace(issue.Message))
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			summary.UniqueIssues = append(summary.UniqueIssues, *issue)

			switch issue.Severity {
			case types.SeverityCritical:
				summary.Critical++
			case types.SeverityModerate:
				summary.Moderate++
			case types.SeverityMinor:
				summary.Minor++
			}
		}
	}

	if cleanBeats > 0 {
		bonus := cleanBeatBonus * cleanBeats
		summary.BonusPoints += bonus
		summary.BonusDetails = append(summary.BonusDetails,
			fmt.Sprintf("+%d: %d beats with no retention issues", bonus, cleanBeats))
	}
	if score.SubScores.Hook >= strongHookThreshold {
		summary.BonusPoints += strongHookBonus
		summary.BonusDetails = append(summary.BonusDetails,
			fmt.Sprintf("+%d: hook score %d", strongHookBonus, score.SubScores.Hook))
	}

	summary.FinalScore = summary.BaseScore + summary.BonusPoints
	return summary
}

// applyDeterministicScores overwrites the storyboard's numeric
// performance fields with the deterministic engine's values. The
// narrative oracle is trusted for prose and beat segmentation only.
func applyDeterministicScores(sb *types.Storyboard, score types.ScoreResult) {
	sb.Performance.HookScore = score.SubScores.Hook
	sb.Performance.StructureScore = score.SubScores.Structure
	sb.Performance.ClarityScore = score.SubScores.Clarity
	sb.Performance.DeliveryScore = score.SubScores.Delivery
	sb.Performance.TotalScore = score.TotalScore
}
