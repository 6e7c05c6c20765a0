package signal

import (
	"errors"
	"testing"

	"github.com/hyperengineering/shortlens/internal/oracle"
	"github.com/hyperengineering/shortlens/internal/types"
)

func TestParseResponseFullPayload(t *testing.T) {
	content := `{
		"format": "gameplay",
		"signals": {
			"hook": {"TTClaim": 0.5, "PB": 5, "Spec": 2, "QC": 1},
			"structure": {"BC": 4, "PM": 3, "PP": true, "LC": true},
			"clarity": {"wordCount": 120, "duration": 45, "SC": 1.5, "TJ": 0, "RD": 0.5},
			"delivery": {"LS": 4.5, "NS": 4, "pauseCount": 1, "fillerCount": 0, "EC": true}
		},
		"transcript": "full run here",
		"beatTimestamps": [0, 12.5, 30]
	}`

	ext, err := ParseResponse(content)
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if ext.Format != types.FormatGameplay {
		t.Errorf("Format = %q", ext.Format)
	}
	if ext.Signals.Hook.TTClaim != 0.5 || ext.Signals.Hook.QC != 1 {
		t.Errorf("hook signals not parsed: %+v", ext.Signals.Hook)
	}
	if ext.Signals.Clarity.Duration != 45 {
		t.Errorf("Duration = %g, want 45", ext.Signals.Clarity.Duration)
	}
	if ext.Transcript != "full run here" {
		t.Errorf("Transcript = %q", ext.Transcript)
	}
	if len(ext.BeatTimestamps) != 3 {
		t.Errorf("BeatTimestamps = %v", ext.BeatTimestamps)
	}
}

// An empty signals object must still yield a complete, scoreable vector.
func TestParseResponseFillsAllDefaults(t *testing.T) {
	ext, err := ParseResponse(`{"signals": {}}`)
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}

	s := ext.Signals
	if s.Hook.TTClaim != DefaultTTClaim || s.Hook.PB != DefaultPB || s.Hook.Spec != DefaultSpec || s.Hook.QC != DefaultQC {
		t.Errorf("hook defaults not applied: %+v", s.Hook)
	}
	if s.Structure.BC != DefaultBC || s.Structure.PM != DefaultPM || s.Structure.PP != DefaultPP || s.Structure.LC != DefaultLC {
		t.Errorf("structure defaults not applied: %+v", s.Structure)
	}
	if s.Clarity.WordCount != DefaultWordCount || s.Clarity.Duration != DefaultDuration || s.Clarity.SC != DefaultSC {
		t.Errorf("clarity defaults not applied: %+v", s.Clarity)
	}
	if s.Delivery.LS != DefaultLS || s.Delivery.PauseCount != DefaultPauseCount || s.Delivery.EC != DefaultEC {
		t.Errorf("delivery defaults not applied: %+v", s.Delivery)
	}
	if ext.Format != types.FormatTalkingHead {
		t.Errorf("missing format should default to talking_head, got %q", ext.Format)
	}
}

// Explicit zero and false values are honored, not replaced by defaults.
func TestParseResponseKeepsExplicitZeroes(t *testing.T) {
	content := `{"signals": {
		"hook": {"TTClaim": 0, "Spec": 0, "QC": 0},
		"structure": {"PM": 0, "PP": false},
		"delivery": {"pauseCount": 0, "fillerCount": 0, "EC": false}
	}}`

	ext, err := ParseResponse(content)
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if ext.Signals.Hook.TTClaim != 0 {
		t.Errorf("explicit TTClaim=0 replaced with %g", ext.Signals.Hook.TTClaim)
	}
	if ext.Signals.Structure.PM != 0 {
		t.Errorf("explicit PM=0 replaced with %d", ext.Signals.Structure.PM)
	}
	if ext.Signals.Delivery.EC {
		t.Error("explicit EC=false replaced with default true")
	}
}

func TestParseResponseGuardsDivisors(t *testing.T) {
	ext, err := ParseResponse(`{"signals": {"clarity": {"duration": 0}, "structure": {"BC": 0}}}`)
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if ext.Signals.Clarity.Duration != DefaultDuration {
		t.Errorf("zero duration not replaced, got %g", ext.Signals.Clarity.Duration)
	}
	if ext.Signals.Structure.BC != 1 {
		t.Errorf("BC = %d, want clamped to 1", ext.Signals.Structure.BC)
	}

	ext, err = ParseResponse(`{"signals": {"clarity": {"duration": -5}}}`)
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if ext.Signals.Clarity.Duration != DefaultDuration {
		t.Errorf("negative duration not replaced, got %g", ext.Signals.Clarity.Duration)
	}
}

func TestParseResponseMissingSignals(t *testing.T) {
	_, err := ParseResponse(`{"format": "demo", "transcript": "..."}`)
	if err == nil {
		t.Fatal("expected error for missing signals object")
	}

	var parseErr *oracle.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error type = %T, want *oracle.ParseError", err)
	}
	if parseErr.Stage != "signal extraction" {
		t.Errorf("Stage = %q", parseErr.Stage)
	}
}

func TestParseResponseMalformedJSON(t *testing.T) {
	raw := "The video shows a person talking about cooking."
	_, err := ParseResponse(raw)
	if err == nil {
		t.Fatal("expected error for non-JSON content")
	}

	var parseErr *oracle.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error type = %T, want *oracle.ParseError", err)
	}
	if parseErr.RawContent != raw {
		t.Error("ParseError must carry the original content")
	}
}

func TestParseResponseFencedContent(t *testing.T) {
	ext, err := ParseResponse("```json\n{\"format\":\"demo\",\"signals\":{}}\n```")
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if ext.Format != types.FormatDemo {
		t.Errorf("Format = %q, want demo", ext.Format)
	}
}

func TestNormalizeFormat(t *testing.T) {
	tests := []struct {
		in   string
		want types.VideoFormat
	}{
		{"talking_head", types.FormatTalkingHead},
		{"gameplay", types.FormatGameplay},
		{"demo", types.FormatDemo},
		{"other", types.FormatOther},
		{"", types.FormatTalkingHead},
		{"vlog", types.FormatTalkingHead},
		{"TALKING_HEAD", types.FormatTalkingHead},
	}
	for _, tt := range tests {
		if got := NormalizeFormat(tt.in); got != tt.want {
			t.Errorf("NormalizeFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
