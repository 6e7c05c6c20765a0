// Package rules holds the static per-format lint rule catalog and the
// prompt rendering that presents it to the oracle. Rule data and prompt
// scaffolding are kept separate so rules can evolve without touching
// the template.
package rules

import (
	"fmt"
	"strings"

	"github.com/hyperengineering/shortlens/internal/types"
)

const lintPromptTemplate = `You are a short-form video retention linter. Watch the video and evaluate it against every rule below. Report only rules that the video actually violates.

RULES:
{{RULES_LIST}}

Respond with ONLY a JSON object, no prose before or after:
{
  "violations": [
    {
      "ruleId": "<id of the violated rule>",
      "ruleName": "<name of the violated rule>",
      "severity": "<critical|moderate|minor, exactly as listed>",
      "category": "<category of the violated rule>",
      "message": "<one sentence describing what the video does wrong>",
      "timestamp": "<mm:ss where the problem occurs, if localizable>",
      "suggestion": "<one concrete fix>",
      "confidence": <0.0-1.0>
    }
  ],
  "summary": "<two sentences on the video's overall retention health>"
}

If no rules are violated, return {"violations": [], "summary": "..."}.`

var ruleSets = map[types.VideoFormat]types.RuleSet{
	types.FormatTalkingHead: {
		Format:         types.FormatTalkingHead,
		PromptTemplate: lintPromptTemplate,
		Rules: []types.Rule{
			{
				ID:          "th-hook-claim",
				Name:        "Late hook claim",
				Description: "The central claim must land inside the first two seconds.",
				Severity:    types.SeverityCritical,
				Category:    types.CategoryHook,
				Check:       "Does the speaker state the video's core claim or promise within the first 2 seconds?",
				GoodExample: "\"This one setting doubles your watch time\" at 0:00",
				BadExample:  "\"Hey guys, welcome back to the channel\" for the first 4 seconds",
			},
			{
				ID:          "th-hook-face",
				Name:        "No face on open",
				Description: "Talking-head shorts retain better when the speaker is on screen immediately.",
				Severity:    types.SeverityModerate,
				Category:    types.CategoryVisual,
				Check:       "Is the speaker's face visible and framed within the first second?",
			},
			{
				ID:          "th-filler-open",
				Name:        "Filler opening",
				Description: "Greetings, throat-clearing, or channel plugs before the content starts.",
				Severity:    types.SeverityCritical,
				Category:    types.CategoryHook,
				Check:       "Does the video open with greetings, self-introduction, or any content-free filler?",
			},
			{
				ID:          "th-dead-air",
				Name:        "Dead air",
				Description: "Silent or static stretches longer than two seconds kill swipe-through retention.",
				Severity:    types.SeverityModerate,
				Category:    types.CategoryPacing,
				Check:       "Are there any silent or visually static stretches longer than 2 seconds?",
			},
			{
				ID:          "th-caption-sync",
				Name:        "Missing or unsynced captions",
				Description: "Most shorts are watched muted at least once; captions must track speech.",
				Severity:    types.SeverityModerate,
				Category:    types.CategoryVisual,
				Check:       "Are word-level captions present and synchronized with the audio?",
			},
			{
				ID:          "th-audio-level",
				Name:        "Inconsistent audio level",
				Description: "Voice level that jumps between cuts forces viewers to adjust and swipe.",
				Severity:    types.SeverityMinor,
				Category:    types.CategoryAudio,
				Check:       "Is the voice level consistent across cuts, without clipping or sudden drops?",
			},
			{
				ID:          "th-payoff",
				Name:        "Unfulfilled promise",
				Description: "The hook's promise must be paid off before the video ends.",
				Severity:    types.SeverityCritical,
				Category:    types.CategoryStructure,
				Check:       "Does the video deliver the specific payoff promised in the hook?",
			},
			{
				ID:          "th-cta-early",
				Name:        "Premature call to action",
				Description: "Subscribe/follow asks before the payoff interrupt the narrative.",
				Severity:    types.SeverityMinor,
				Category:    types.CategoryCTA,
				Check:       "Does any call to action appear before the payoff is delivered?",
			},
		},
	},
	types.FormatGameplay: {
		Format:         types.FormatGameplay,
		PromptTemplate: lintPromptTemplate,
		Rules: []types.Rule{
			{
				ID:          "gp-action-open",
				Name:        "Slow action open",
				Description: "Gameplay shorts must open mid-action, not in menus or loading screens.",
				Severity:    types.SeverityCritical,
				Category:    types.CategoryHook,
				Check:       "Does the video open on in-game action rather than menus, lobbies, or loading?",
			},
			{
				ID:          "gp-stakes",
				Name:        "No stated stakes",
				Description: "Viewers need to know what outcome they are waiting for.",
				Severity:    types.SeverityModerate,
				Category:    types.CategoryHook,
				Check:       "Are the stakes of the clip (what could be won or lost) made clear in the first 3 seconds?",
			},
			{
				ID:          "gp-downtime",
				Name:        "Gameplay downtime",
				Description: "Inventory management, walking, or waiting segments not cut out.",
				Severity:    types.SeverityModerate,
				Category:    types.CategoryPacing,
				Check:       "Are there uncut stretches of low-action gameplay longer than 3 seconds?",
			},
			{
				ID:          "gp-hud-clutter",
				Name:        "Illegible framing",
				Description: "Critical action hidden behind HUD or cropped out by the vertical frame.",
				Severity:    types.SeverityModerate,
				Category:    types.CategoryVisual,
				Check:       "Is the key action clearly visible within the vertical crop, unobstructed by HUD?",
			},
			{
				ID:          "gp-commentary",
				Name:        "Flat commentary",
				Description: "Commentary that narrates the obvious instead of adding tension or context.",
				Severity:    types.SeverityMinor,
				Category:    types.CategoryAudio,
				Check:       "Does the commentary add stakes, context, or humor beyond describing what is on screen?",
			},
			{
				ID:          "gp-climax-cut",
				Name:        "Climax buried late",
				Description: "The clip's best moment should arrive by the midpoint, with a second peak near the end.",
				Severity:    types.SeverityModerate,
				Category:    types.CategoryStructure,
				Check:       "Does a high point land by the midpoint of the clip?",
			},
			{
				ID:          "gp-loop",
				Name:        "No loop close",
				Description: "Ending frames that match the opening invite a seamless rewatch.",
				Severity:    types.SeverityMinor,
				Category:    types.CategoryRetention,
				Check:       "Does the final second connect back to the opening moment?",
			},
		},
	},
	types.FormatDemo: {
		Format:         types.FormatDemo,
		PromptTemplate: lintPromptTemplate,
		Rules: []types.Rule{
			{
				ID:          "dm-result-first",
				Name:        "Result not shown first",
				Description: "Demos retain when the finished result appears before the process.",
				Severity:    types.SeverityCritical,
				Category:    types.CategoryHook,
				Check:       "Is the end result shown or clearly promised in the first 2 seconds?",
			},
			{
				ID:          "dm-step-skip",
				Name:        "Unskipped setup steps",
				Description: "Installation, signup, or boilerplate steps must be compressed or cut.",
				Severity:    types.SeverityModerate,
				Category:    types.CategoryPacing,
				Check:       "Are setup or boilerplate steps compressed to under 2 seconds each?",
			},
			{
				ID:          "dm-screen-legible",
				Name:        "Illegible screen text",
				Description: "UI text must be readable at phone size; zoom or highlight the active area.",
				Severity:    types.SeverityModerate,
				Category:    types.CategoryVisual,
				Check:       "Is all on-screen text the viewer must read legible at phone scale?",
			},
			{
				ID:          "dm-narration-sync",
				Name:        "Narration lags the screen",
				Description: "Voice describing one step while the screen shows another loses viewers.",
				Severity:    types.SeverityModerate,
				Category:    types.CategoryAudio,
				Check:       "Does the narration describe what is currently on screen?",
			},
			{
				ID:          "dm-value-recap",
				Name:        "Missing value recap",
				Description: "A one-line recap of what was achieved cements the payoff.",
				Severity:    types.SeverityMinor,
				Category:    types.CategoryStructure,
				Check:       "Does the ending restate what the viewer can now do or has seen achieved?",
			},
			{
				ID:          "dm-jargon",
				Name:        "Unexplained jargon",
				Description: "Niche terms used without a 3-word gloss shrink the audience.",
				Severity:    types.SeverityMinor,
				Category:    types.CategoryRetention,
				Check:       "Is every niche term either avoided or glossed in a few words?",
			},
			{
				ID:          "dm-cta-action",
				Name:        "Vague call to action",
				Description: "Demo CTAs should name the exact next step, not ask for generic engagement.",
				Severity:    types.SeverityMinor,
				Category:    types.CategoryCTA,
				Check:       "If a CTA exists, does it name a specific next action (link, command, search term)?",
			},
		},
	},
	types.FormatOther: {
		Format:         types.FormatOther,
		PromptTemplate: lintPromptTemplate,
		Rules: []types.Rule{
			{
				ID:          "ot-hook",
				Name:        "Weak opening hook",
				Description: "Something must earn the next three seconds within the first two.",
				Severity:    types.SeverityCritical,
				Category:    types.CategoryHook,
				Check:       "Does the first 2 seconds present a claim, question, or visual that demands resolution?",
			},
			{
				ID:          "ot-pacing",
				Name:        "Sagging midsection",
				Description: "Momentum must not dip between the hook and the payoff.",
				Severity:    types.SeverityModerate,
				Category:    types.CategoryPacing,
				Check:       "Does every 3-second window advance the idea or change what is on screen?",
			},
			{
				ID:          "ot-payoff",
				Name:        "Missing payoff",
				Description: "The video must resolve whatever tension the hook created.",
				Severity:    types.SeverityCritical,
				Category:    types.CategoryStructure,
				Check:       "Is the hook's tension resolved before the video ends?",
			},
			{
				ID:          "ot-audio",
				Name:        "Poor audio quality",
				Description: "Harsh noise, clipping, or inaudible speech.",
				Severity:    types.SeverityModerate,
				Category:    types.CategoryAudio,
				Check:       "Is the audio clean, audible, and free of clipping?",
			},
			{
				ID:          "ot-visual",
				Name:        "Static visuals",
				Description: "A single unchanging shot for the whole runtime.",
				Severity:    types.SeverityMinor,
				Category:    types.CategoryVisual,
				Check:       "Does the framing, shot, or on-screen content change at least every few seconds?",
			},
			{
				ID:          "ot-length",
				Name:        "Overstayed runtime",
				Description: "Content that ends before the video does trains viewers to swipe early.",
				Severity:    types.SeverityMinor,
				Category:    types.CategoryRetention,
				Check:       "Does the video end within a second of its content ending?",
			},
		},
	},
}

// GetRuleSet returns the rule set for the given format, falling back to
// the generic "other" catalog for anything unrecognized. It never fails
// on an unknown format string.
func GetRuleSet(format types.VideoFormat) types.RuleSet {
	if rs, ok := ruleSets[format]; ok {
		return rs
	}
	return ruleSets[types.FormatOther]
}

// BuildPrompt renders the rule set into its prompt template, replacing
// the {{RULES_LIST}} placeholder with one numbered block per rule.
func BuildPrompt(rs types.RuleSet) string {
	blocks := make([]string, len(rs.Rules))
	for i, r := range rs.Rules {
		blocks[i] = fmt.Sprintf("%d. [%s] %s (%s)\n   Category: %s\n   Check: %s",
			i+1, strings.ToUpper(string(r.Severity)), r.Name, r.ID, r.Category, r.Check)
	}
	return strings.Replace(rs.PromptTemplate, "{{RULES_LIST}}", strings.Join(blocks, "\n\n"), 1)
}
