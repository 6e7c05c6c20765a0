package oracle

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "bare object",
			content: `{"a":1}`,
			want:    `{"a":1}`,
		},
		{
			name:    "fenced with language tag",
			content: "```json\n{\"a\":1}\n```",
			want:    `{"a":1}`,
		},
		{
			name:    "fenced without language tag",
			content: "```\n{\"a\":1}\n```",
			want:    `{"a":1}`,
		},
		{
			name:    "surrounding whitespace",
			content: "  \n {\"a\":1} \n ",
			want:    `{"a":1}`,
		},
		{
			name:    "prose before object",
			content: "Here is the analysis:\n{\"a\":1}",
			want:    `{"a":1}`,
		},
		{
			name:    "prose inside fences",
			content: "```json\nSure, here you go: {\"a\":1}\n```",
			want:    `{"a":1}`,
		},
		{
			name:    "no object at all",
			content: "I cannot analyze this video.",
			want:    "I cannot analyze this video.",
		},
		{
			name:    "nested braces untouched",
			content: "```json\n{\"a\":{\"b\":2}}\n```",
			want:    `{"a":{"b":2}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.content); got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

// Fenced and unfenced renditions of the same object must extract
// identically, so downstream parsers see one canonical form.
func TestExtractJSONFenceIdempotent(t *testing.T) {
	bare := `{"format":"demo","confidence":0.9}`
	fenced := "```json\n" + bare + "\n```"

	if got := ExtractJSON(fenced); got != ExtractJSON(bare) {
		t.Errorf("fenced extraction %q differs from bare %q", got, ExtractJSON(bare))
	}
	if got := ExtractJSON(ExtractJSON(fenced)); got != bare {
		t.Errorf("double extraction = %q, want %q", got, bare)
	}
}

func TestParseErrorTruncatesRawContent(t *testing.T) {
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'x'
	}
	err := &ParseError{Stage: "lint", RawContent: string(long), Err: ErrUnsupported}

	msg := err.Error()
	if len(msg) > 700 {
		t.Errorf("error message length = %d, expected truncation", len(msg))
	}
	if err.Unwrap() != ErrUnsupported {
		t.Error("Unwrap did not return wrapped error")
	}
}
