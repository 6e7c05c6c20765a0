package storyboard

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hyperengineering/shortlens/internal/types"
)

const narrativeTemplate = `You are a short-form video retention analyst. Produce a beat-by-beat storyboard of this video.

You are given the linter's findings and the computed dimension scores. Use them: map each lint violation onto the beat whose time range contains its timestamp, carrying over its ruleId and ruleName. You may add retention issues of your own where the linter found none. Do not re-derive scores; your numeric opinions will be discarded.

VIDEO FORMAT: {{FORMAT}}

COMPUTED SCORES (authoritative):
{{SCORES}}

LINT VIOLATIONS:
{{VIOLATIONS}}

BEAT TIMESTAMPS (seconds): {{BEAT_TIMESTAMPS}}

TRANSCRIPT:
{{TRANSCRIPT}}

Respond with ONLY a JSON object:
{
  "overview": {
    "title": "<short working title for the video>",
    "format": "{{FORMAT}}",
    "duration": <seconds>,
    "summary": "<two sentences>",
    "hookType": "<question|claim|result|action|other>"
  },
  "beats": [
    {
      "beatNumber": <1-based, increasing>,
      "startTime": <seconds>,
      "endTime": <seconds>,
      "type": "<hook|context|buildup|payoff|cta|other>",
      "title": "<short beat title>",
      "transcript": "<what is said in this beat>",
      "visual": "<what is on screen>",
      "audio": "<music, sfx, vocal delivery>",
      "retention": {
        "level": "<strong|steady|risky|bleeding>",
        "analysis": "<one or two sentences>",
        "issues": [
          {
            "severity": "<critical|moderate|minor>",
            "message": "<what hurts retention here>",
            "suggestion": "<concrete fix>",
            "ruleId": "<only when carried over from a lint violation>",
            "ruleName": "<only when carried over from a lint violation>"
          }
        ]
      }
    }
  ],
  "performance": {
    "analysis": "<a paragraph explaining the computed scores in plain language>",
    "topFix": "<the single highest-leverage change>"
  },
  "replicationBlueprint": "<a numbered recipe for replicating what works in this video>",
  "rehookVariants": ["<three alternative opening lines for the same video>"]
}`

// buildNarrativePrompt renders the storyboard prompt. Lint violations
// and scores are embedded as JSON so the oracle sees exactly what the
// deterministic side computed.
func buildNarrativePrompt(ext extractionInput, lintResult *types.LintResult, score types.ScoreResult) string {
	scores, _ := json.MarshalIndent(score.SubScores, "", "  ")
	violations, _ := json.MarshalIndent(lintResult.Violations, "", "  ")

	beats := make([]string, len(ext.BeatTimestamps))
	for i, t := range ext.BeatTimestamps {
		beats[i] = fmt.Sprintf("%g", t)
	}

	r := strings.NewReplacer(
		"{{FORMAT}}", string(ext.Format),
		"{{SCORES}}", string(scores),
		"{{VIOLATIONS}}", string(violations),
		"{{BEAT_TIMESTAMPS}}", strings.Join(beats, ", "),
		"{{TRANSCRIPT}}", ext.Transcript,
	)
	return r.Replace(narrativeTemplate)
}
