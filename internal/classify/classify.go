// Package classify implements the format classification stage: a short
// oracle call that places a video into one of the catalog formats.
package classify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hyperengineering/shortlens/internal/oracle"
	"github.com/hyperengineering/shortlens/internal/types"
)

const prompt = `Watch this short-form video and classify its production format.

Formats:
- talking_head: a person speaking to camera carries the video
- gameplay: captured game footage carries the video
- demo: a screen recording or product demonstration carries the video
- other: anything else (montage, skit, vlog, animation, ...)

Respond with ONLY a JSON object:
{
  "format": "<talking_head|gameplay|demo|other>",
  "confidence": <0.0-1.0>,
  "reasoning": "<one sentence>"
}`

// Classify determines the video's format. An unrecognized format string
// in the response folds to "other"; malformed JSON is a hard failure.
func Classify(ctx context.Context, o oracle.Oracle, source string) (*types.ClassificationResult, error) {
	content, err := o.AnalyzeVideo(ctx, source, prompt, oracle.Options{
		Temperature: 0.1,
		MaxTokens:   512,
	})
	if err != nil {
		return nil, fmt.Errorf("classification oracle call: %w", err)
	}
	return ParseResponse(content)
}

// ParseResponse parses the classification oracle output.
func ParseResponse(content string) (*types.ClassificationResult, error) {
	var raw struct {
		Format     string  `json:"format"`
		Confidence float64 `json:"confidence"`
		Reasoning  string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(oracle.ExtractJSON(content)), &raw); err != nil {
		return nil, &oracle.ParseError{Stage: "classification", RawContent: content, Err: err}
	}

	format := types.VideoFormat(raw.Format)
	switch format {
	case types.FormatTalkingHead, types.FormatGameplay, types.FormatDemo, types.FormatOther:
	default:
		format = types.FormatOther
	}

	confidence := raw.Confidence
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	return &types.ClassificationResult{
		Format:     format,
		Confidence: confidence,
		Reasoning:  raw.Reasoning,
	}, nil
}
