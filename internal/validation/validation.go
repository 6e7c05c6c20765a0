// Package validation validates job submissions and resolves video
// source identity. A video is referenced by either a YouTube URL or an
// opaque uploaded-file URI; the two are mutually exclusive alternatives
// of one logical source field, and a YouTube ID is never assumed to
// exist.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Collector accumulates validation errors without failing on first.
type Collector struct {
	errors []ValidationError
}

// Add appends a validation error to the collector if non-nil.
func (c *Collector) Add(err *ValidationError) {
	if err != nil {
		c.errors = append(c.errors, *err)
	}
}

// HasErrors returns true if the collector has accumulated any errors.
func (c *Collector) HasErrors() bool {
	return len(c.errors) > 0
}

// Errors returns all accumulated validation errors.
func (c *Collector) Errors() []ValidationError {
	return c.errors
}

// The three accepted YouTube URL shapes. Order matters only for ID
// extraction; any match qualifies the URL.
var youtubePatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/shorts/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/watch\?v=([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`),
}

// ExtractYouTubeID returns the 11-character video ID from a YouTube
// URL, or "" when the URL matches none of the accepted shapes.
func ExtractYouTubeID(url string) string {
	for _, p := range youtubePatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}

// IsYouTubeURL reports whether the URL matches an accepted shape.
func IsYouTubeURL(url string) bool {
	return ExtractYouTubeID(url) != ""
}

// ValidateSource checks a job submission's video source fields.
// Exactly one of videoURL or fileURI must be set.
func ValidateSource(videoURL, fileURI string) []ValidationError {
	var c Collector

	videoURL = strings.TrimSpace(videoURL)
	fileURI = strings.TrimSpace(fileURI)

	switch {
	case videoURL == "" && fileURI == "":
		c.Add(&ValidationError{
			Field:   "video_url",
			Message: "either video_url or file_uri is required",
		})
	case videoURL != "" && fileURI != "":
		c.Add(&ValidationError{
			Field:   "video_url",
			Message: "video_url and file_uri are mutually exclusive",
		})
	case videoURL != "":
		if !IsYouTubeURL(videoURL) {
			c.Add(&ValidationError{
				Field:   "video_url",
				Message: "must be a YouTube /shorts/, watch?v= or youtu.be URL",
			})
		}
	case fileURI != "":
		c.Add(validateOpaqueURI("file_uri", fileURI))
	}

	return c.Errors()
}

// validateOpaqueURI applies minimal hygiene checks to an uploaded-file
// URI without constraining its scheme.
func validateOpaqueURI(field, value string) *ValidationError {
	if !utf8.ValidString(value) {
		return &ValidationError{Field: field, Message: "must be valid UTF-8"}
	}
	if strings.ContainsAny(value, " \x00") {
		return &ValidationError{Field: field, Message: "must not contain spaces or null bytes"}
	}
	if utf8.RuneCountInString(value) > 2048 {
		return &ValidationError{Field: field, Message: fmt.Sprintf("exceeds maximum length of %d characters", 2048)}
	}
	return nil
}
