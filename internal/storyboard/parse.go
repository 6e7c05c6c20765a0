package storyboard

import (
	"encoding/json"
	"errors"

	"github.com/hyperengineering/shortlens/internal/oracle"
	"github.com/hyperengineering/shortlens/internal/types"
)

// ParseResponse parses the narrative oracle output into a Storyboard.
// Malformed JSON and an empty beat list are hard failures carrying the
// raw content. Beats are renumbered sequentially so beat numbers are
// unique and monotonically increasing regardless of what the oracle
// emitted; gaps or overlaps in beat timing are tolerated.
func ParseResponse(content string) (*types.Storyboard, error) {
	var sb types.Storyboard
	if err := json.Unmarshal([]byte(oracle.ExtractJSON(content)), &sb); err != nil {
		return nil, &oracle.ParseError{Stage: "storyboard", RawContent: content, Err: err}
	}
	if len(sb.Beats) == 0 {
		return nil, &oracle.ParseError{
			Stage:      "storyboard",
			RawContent: content,
			Err:        errors.New("storyboard has no beats"),
		}
	}

	for i := range sb.Beats {
		sb.Beats[i].BeatNumber = i + 1
		if sb.Beats[i].Retention.Issues == nil {
			sb.Beats[i].Retention.Issues = []types.Issue{}
		}
	}
	return &sb, nil
}
