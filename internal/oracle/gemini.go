package oracle

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Compile-time interface check
var _ Oracle = (*Gemini)(nil)

// generateService defines the minimal genai surface used by Gemini.
// This abstraction enables testing without calling the real API.
type generateService interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// modelsWrapper adapts *genai.Models to the generateService interface.
type modelsWrapper struct {
	models *genai.Models
}

func (w *modelsWrapper) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return w.models.GenerateContent(ctx, model, contents, config)
}

// Gemini implements the Oracle interface over the Gemini API, which
// accepts video sources (YouTube URLs and uploaded-file URIs) directly
// as content parts.
type Gemini struct {
	service generateService
	model   string
}

// NewGemini creates a Gemini-backed oracle client.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &Gemini{
		service: &modelsWrapper{models: client.Models},
		model:   model,
	}, nil
}

// AnalyzeVideo sends the prompt together with the video source and
// returns the raw response text. The text is returned unparsed; callers
// own validation.
func (g *Gemini) AnalyzeVideo(ctx context.Context, source, prompt string, opts Options) (string, error) {
	if source == "" {
		return "", fmt.Errorf("video source is required")
	}

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromURI(source, "video/mp4"),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(opts.Temperature)),
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if opts.CachedContent != "" {
		cfg.CachedContent = opts.CachedContent
	}

	result, err := g.service.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("analyze video %s: %w", source, err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("empty response for video %s", source)
	}
	return text, nil
}

// ModelName returns the configured model identifier.
func (g *Gemini) ModelName() string {
	return g.model
}
