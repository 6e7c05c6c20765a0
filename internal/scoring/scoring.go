// Package scoring implements the deterministic scoring engine: a pure
// function from (VideoSignals, VideoFormat) to sub-scores, a weighted
// total, and a per-metric breakdown. It performs no I/O, holds no
// state, and never fails; out-of-range inputs are clamped, not
// rejected. Two calls with the same inputs return identical results.
package scoring

import (
	"math"

	"github.com/hyperengineering/shortlens/internal/types"
)

// Weights assigns the relative importance of the four sub-scores when
// combining them into a total. Rows always sum to 1.
type Weights struct {
	Hook      float64
	Structure float64
	Clarity   float64
	Delivery  float64
}

// nicheWeights is the per-format weight table. Unrecognized formats
// fall back to the talking_head row.
var nicheWeights = map[types.VideoFormat]Weights{
	types.FormatTalkingHead: {Hook: 0.35, Structure: 0.25, Clarity: 0.20, Delivery: 0.20},
	types.FormatGameplay:    {Hook: 0.30, Structure: 0.30, Clarity: 0.15, Delivery: 0.25},
	types.FormatDemo:        {Hook: 0.30, Structure: 0.25, Clarity: 0.30, Delivery: 0.15},
	types.FormatOther:       {Hook: 0.30, Structure: 0.25, Clarity: 0.25, Delivery: 0.20},
}

// WeightsFor returns the weight row for the format, falling back to
// talking_head for anything unrecognized.
func WeightsFor(format types.VideoFormat) Weights {
	if w, ok := nicheWeights[format]; ok {
		return w
	}
	return nicheWeights[types.FormatTalkingHead]
}

// Calculate computes the deterministic score for the given signals and
// format. Each sub-score is clamped to [0,100] before weighting. The
// total is the rounded weighted sum and is not hard-capped at 100;
// downstream bonus mechanics may push reported scores above it.
func Calculate(signals types.VideoSignals, format types.VideoFormat) types.ScoreResult {
	hookPts := hookBreakdown(signals.Hook)
	structPts := structureBreakdown(signals.Structure)
	clarityPts := clarityBreakdown(signals.Clarity)
	deliveryPts := deliveryBreakdown(signals.Delivery)

	sub := types.SubScores{
		Hook:      subScore(hookPts),
		Structure: subScore(structPts),
		Clarity:   subScore(clarityPts),
		Delivery:  subScore(deliveryPts),
	}

	w := WeightsFor(format)
	total := int(math.Round(
		w.Hook*float64(sub.Hook) +
			w.Structure*float64(sub.Structure) +
			w.Clarity*float64(sub.Clarity) +
			w.Delivery*float64(sub.Delivery)))

	return types.ScoreResult{
		SubScores:  sub,
		TotalScore: total,
		Breakdown: types.ScoreBreakdown{
			Hook:      hookPts,
			Structure: structPts,
			Clarity:   clarityPts,
			Delivery:  deliveryPts,
			Weights: map[string]float64{
				"hook":      w.Hook,
				"structure": w.Structure,
				"clarity":   w.Clarity,
				"delivery":  w.Delivery,
			},
		},
	}
}

// hookBreakdown rewards an early claim, a strong payoff promise, hook
// specifics, and a curiosity cue. Maximum 100 points.
func hookBreakdown(h types.HookSignals) map[string]float64 {
	pts := map[string]float64{
		// Full 40 points up to one second, minus 8 per second late.
		"ttClaim":       clamp(40-8*math.Max(0, h.TTClaim-1), 0, 40),
		"payoffPromise": clamp(8*h.PB, 0, 40),
		"specificity":   math.Min(math.Max(float64(h.Spec), 0), 2) * 5,
		"questionCue":   0,
	}
	if h.QC != 0 {
		pts["questionCue"] = 10
	}
	return pts
}

// structureBreakdown rewards an ideal beat count, momentum shifts, a
// delivered payoff, and a loop close. Maximum 100 points.
func structureBreakdown(s types.StructureSignals) map[string]float64 {
	var bc float64
	switch {
	case s.BC >= 3 && s.BC <= 5:
		bc = 40
	case s.BC == 2 || s.BC == 6:
		bc = 28
	default:
		bc = 15
	}
	pts := map[string]float64{
		"beatCount":         bc,
		"patternInterrupts": math.Min(math.Max(float64(s.PM), 0), 3) * 10,
		"payoffPresent":     0,
		"loopClose":         0,
	}
	if s.PP {
		pts["payoffPresent"] = 15
	}
	if s.LC {
		pts["loopClose"] = 15
	}
	return pts
}

// clarityBreakdown penalizes speaking pace outside the 2.0-3.3 words
// per second band, complexity, topic jumps, and redundancy. Maximum
// 100 points.
func clarityBreakdown(c types.ClaritySignals) map[string]float64 {
	duration := c.Duration
	if duration <= 0 {
		// The parser guarantees a positive duration; guard anyway so
		// the engine can never divide by zero.
		duration = 30
	}
	wps := float64(c.WordCount) / duration
	dist := math.Max(0, math.Max(2.0-wps, wps-3.3))
	return map[string]float64{
		"pace":       clamp(40-12*dist, 0, 40),
		"complexity": clamp(25-5*c.SC, 0, 25),
		"topicJumps": clamp(20-8*float64(c.TJ), 0, 20),
		"redundancy": clamp(15-4*c.RD, 0, 15),
	}
}

// deliveryBreakdown rewards liveliness, naturalness, few long pauses,
// few fillers, and consistent energy. Maximum 100 points.
func deliveryBreakdown(d types.DeliverySignals) map[string]float64 {
	pts := map[string]float64{
		"liveliness":  clamp(6*d.LS, 0, 30),
		"naturalness": clamp(5*d.NS, 0, 25),
		"pauses":      clamp(15-3*math.Max(0, float64(d.PauseCount)-2), 0, 15),
		"fillers":     clamp(20-2*float64(d.FillerCount), 0, 20),
		"energy":      0,
	}
	if d.EC {
		pts["energy"] = 10
	}
	return pts
}

// subScore sums a breakdown, clamps to [0,100], and rounds.
func subScore(pts map[string]float64) int {
	var sum float64
	for _, v := range pts {
		sum += v
	}
	return int(math.Round(clamp(sum, 0, 100)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
