package signal

import (
	"encoding/json"
	"errors"

	"github.com/hyperengineering/shortlens/internal/oracle"
	"github.com/hyperengineering/shortlens/internal/types"
)

// Neutral defaults substituted for any leaf the oracle omits. These
// guarantee the scoring engine never divides by zero or reads a missing
// value; each sits near the middle of its metric's range.
const (
	DefaultTTClaim     = 3.0
	DefaultPB          = 3.0
	DefaultSpec        = 1
	DefaultQC          = 0
	DefaultBC          = 3
	DefaultPM          = 1
	DefaultPP          = false
	DefaultLC          = false
	DefaultWordCount   = 100
	DefaultDuration    = 30.0
	DefaultSC          = 3.0
	DefaultTJ          = 1
	DefaultRD          = 2.0
	DefaultLS          = 3.0
	DefaultNS          = 3.0
	DefaultPauseCount  = 2
	DefaultFillerCount = 3
	DefaultEC          = true
)

// Extraction is the parsed output of the signal extraction call.
type Extraction struct {
	Format         types.VideoFormat  `json:"format"`
	Signals        types.VideoSignals `json:"signals"`
	Transcript     string             `json:"transcript"`
	BeatTimestamps []float64          `json:"beatTimestamps"`
}

// rawExtraction mirrors the oracle's response with pointer leaves so
// absent fields are distinguishable from zero values.
type rawExtraction struct {
	Format     string      `json:"format"`
	Signals    *rawSignals `json:"signals"`
	Transcript string      `json:"transcript"`
	Beats      []float64   `json:"beatTimestamps"`
}

type rawSignals struct {
	Hook struct {
		TTClaim *float64 `json:"TTClaim"`
		PB      *float64 `json:"PB"`
		Spec    *int     `json:"Spec"`
		QC      *int     `json:"QC"`
	} `json:"hook"`
	Structure struct {
		BC *int  `json:"BC"`
		PM *int  `json:"PM"`
		PP *bool `json:"PP"`
		LC *bool `json:"LC"`
	} `json:"structure"`
	Clarity struct {
		WordCount *int     `json:"wordCount"`
		Duration  *float64 `json:"duration"`
		SC        *float64 `json:"SC"`
		TJ        *int     `json:"TJ"`
		RD        *float64 `json:"RD"`
	} `json:"clarity"`
	Delivery struct {
		LS          *float64 `json:"LS"`
		NS          *float64 `json:"NS"`
		PauseCount  *int     `json:"pauseCount"`
		FillerCount *int     `json:"fillerCount"`
		EC          *bool    `json:"EC"`
	} `json:"delivery"`
}

// ParseResponse parses the oracle's signal extraction output. Malformed
// JSON and a missing top-level "signals" object are hard failures
// surfaced as a ParseError; every other absent field is filled with its
// neutral default.
func ParseResponse(content string) (*Extraction, error) {
	var raw rawExtraction
	if err := json.Unmarshal([]byte(oracle.ExtractJSON(content)), &raw); err != nil {
		return nil, &oracle.ParseError{Stage: "signal extraction", RawContent: content, Err: err}
	}
	if raw.Signals == nil {
		return nil, &oracle.ParseError{
			Stage:      "signal extraction",
			RawContent: content,
			Err:        errors.New("missing signals object"),
		}
	}

	ext := &Extraction{
		Format:         NormalizeFormat(raw.Format),
		Signals:        fillDefaults(raw.Signals),
		Transcript:     raw.Transcript,
		BeatTimestamps: raw.Beats,
	}
	return ext, nil
}

// NormalizeFormat maps the oracle's format string onto the format enum,
// defaulting to talking_head for anything unrecognized.
func NormalizeFormat(format string) types.VideoFormat {
	switch types.VideoFormat(format) {
	case types.FormatTalkingHead, types.FormatGameplay, types.FormatDemo, types.FormatOther:
		return types.VideoFormat(format)
	}
	return types.FormatTalkingHead
}

func fillDefaults(raw *rawSignals) types.VideoSignals {
	s := types.VideoSignals{
		Hook: types.HookSignals{
			TTClaim: floatOr(raw.Hook.TTClaim, DefaultTTClaim),
			PB:      floatOr(raw.Hook.PB, DefaultPB),
			Spec:    intOr(raw.Hook.Spec, DefaultSpec),
			QC:      intOr(raw.Hook.QC, DefaultQC),
		},
		Structure: types.StructureSignals{
			BC: intOr(raw.Structure.BC, DefaultBC),
			PM: intOr(raw.Structure.PM, DefaultPM),
			PP: boolOr(raw.Structure.PP, DefaultPP),
			LC: boolOr(raw.Structure.LC, DefaultLC),
		},
		Clarity: types.ClaritySignals{
			WordCount: intOr(raw.Clarity.WordCount, DefaultWordCount),
			Duration:  floatOr(raw.Clarity.Duration, DefaultDuration),
			SC:        floatOr(raw.Clarity.SC, DefaultSC),
			TJ:        intOr(raw.Clarity.TJ, DefaultTJ),
			RD:        floatOr(raw.Clarity.RD, DefaultRD),
		},
		Delivery: types.DeliverySignals{
			LS:          floatOr(raw.Delivery.LS, DefaultLS),
			NS:          floatOr(raw.Delivery.NS, DefaultNS),
			PauseCount:  intOr(raw.Delivery.PauseCount, DefaultPauseCount),
			FillerCount: intOr(raw.Delivery.FillerCount, DefaultFillerCount),
			EC:          boolOr(raw.Delivery.EC, DefaultEC),
		},
	}

	// Duration is a divisor downstream; a zero or negative value from
	// the oracle is treated the same as an absent one.
	if s.Clarity.Duration <= 0 {
		s.Clarity.Duration = DefaultDuration
	}
	// Beat count invariant: always >= 1.
	if s.Structure.BC < 1 {
		s.Structure.BC = 1
	}
	return s
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
