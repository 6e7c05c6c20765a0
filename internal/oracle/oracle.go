// Package oracle defines the boundary to the LLM video-analysis client.
// Everything behind this boundary is non-deterministic; callers must
// treat returned content as untrusted text and parse it defensively.
package oracle

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnsupported is returned before any call is attempted when the
// configured client cannot analyze video sources.
var ErrUnsupported = errors.New("oracle client does not support video analysis")

// Options tune a single oracle call.
type Options struct {
	// Temperature near zero is used for lint and signal extraction so
	// repeated calls stay as consistent as the provider allows.
	Temperature float64

	// MaxTokens bounds the response size.
	MaxTokens int

	// CachedContent names provider-side cached video content, avoiding
	// a re-upload on repeat calls against the same source.
	CachedContent string
}

// Oracle is the narrow contract the pipeline requires from the LLM
// client. The returned content may or may not be valid JSON, may be
// wrapped in Markdown fences, and may omit fields.
type Oracle interface {
	AnalyzeVideo(ctx context.Context, source, prompt string, opts Options) (string, error)
}

// ParseError reports oracle output that could not be parsed. RawContent
// carries the original text for diagnostics; a parse failure must never
// be silently represented as a clean result.
type ParseError struct {
	Stage      string
	RawContent string
	Err        error
}

func (e *ParseError) Error() string {
	raw := e.RawContent
	if len(raw) > 500 {
		raw = raw[:500] + "..."
	}
	return fmt.Sprintf("unparseable %s result: %v (content: %q)", e.Stage, e.Err, raw)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
