package validation

import (
	"strings"
	"testing"
)

func TestExtractYouTubeID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"shorts URL", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"no scheme", "youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"extra query params", "https://youtube.com/watch?v=dQw4w9WgXcQ&t=10", "dQw4w9WgXcQ"},
		{"ID with dash and underscore", "https://youtu.be/a-b_c1234Xy", "a-b_c1234Xy"},
		{"non-youtube host", "https://vimeo.com/123456789", ""},
		{"channel URL", "https://youtube.com/@somechannel", ""},
		{"short ID", "https://youtu.be/abc", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractYouTubeID(tt.url); got != tt.want {
				t.Errorf("ExtractYouTubeID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestValidateSource(t *testing.T) {
	tests := []struct {
		name     string
		videoURL string
		fileURI  string
		wantErrs int
	}{
		{"valid shorts URL", "https://youtube.com/shorts/dQw4w9WgXcQ", "", 0},
		{"valid file URI", "", "files/upload-abc123", 0},
		{"both empty", "", "", 1},
		{"both set", "https://youtube.com/shorts/dQw4w9WgXcQ", "files/upload-abc123", 1},
		{"non-youtube URL", "https://example.com/video.mp4", "", 1},
		{"whitespace-only URL treated as empty", "   ", "files/upload-abc123", 0},
		{"file URI with space", "", "files/my upload", 1},
		{"file URI with null byte", "", "files/a\x00b", 1},
		{"oversized file URI", "", "files/" + strings.Repeat("a", 2050), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateSource(tt.videoURL, tt.fileURI)
			if len(errs) != tt.wantErrs {
				t.Errorf("ValidateSource() = %d errors (%v), want %d", len(errs), errs, tt.wantErrs)
			}
		})
	}
}

func TestValidateSourceErrorFields(t *testing.T) {
	errs := ValidateSource("", "")
	if len(errs) != 1 || errs[0].Field != "video_url" {
		t.Fatalf("missing-source error = %+v", errs)
	}

	errs = ValidateSource("", "bad uri with spaces")
	if len(errs) != 1 || errs[0].Field != "file_uri" {
		t.Fatalf("file URI error = %+v", errs)
	}
}

func TestCollector(t *testing.T) {
	var c Collector
	if c.HasErrors() {
		t.Error("empty collector reports errors")
	}

	c.Add(nil)
	if c.HasErrors() {
		t.Error("nil add must be a no-op")
	}

	c.Add(&ValidationError{Field: "x", Message: "bad"})
	if !c.HasErrors() || len(c.Errors()) != 1 {
		t.Errorf("Errors() = %v", c.Errors())
	}
}
