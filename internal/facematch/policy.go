package facematch

import (
	"errors"
	"math"
	"sort"
)

// GapStep is one row of the adaptive separation table: candidates whose best
// distance is at most MaxDistance need at least Gap of separation from the
// runner-up.
type GapStep struct {
	MaxDistance float64 `yaml:"max_distance" json:"max_distance"`
	Gap         float64 `yaml:"gap" json:"gap"`
}

// Calibration holds the acceptance-policy constants. The values are
// empirically tuned for a specific embedding model and distance metric and
// must be recalibrated whenever the embedder changes; they are configuration,
// not logic.
type Calibration struct {
	// Threshold is the absolute closeness bound: a candidate farther than
	// this is rejected outright, regardless of separation.
	Threshold float64 `yaml:"threshold" json:"threshold"`
	// BaseGap is the separation required above the last step, up to Threshold.
	BaseGap float64 `yaml:"base_gap" json:"base_gap"`
	// GapSteps must be sorted ascending by MaxDistance.
	GapSteps []GapStep `yaml:"gap_steps" json:"gap_steps"`
}

// DefaultCalibration returns the reference constants for ArcFace 512-dim
// embeddings under cosine distance.
func DefaultCalibration() Calibration {
	return Calibration{
		Threshold: 0.60,
		BaseGap:   0.05,
		GapSteps: []GapStep{
			{MaxDistance: 0.35, Gap: 0.01},
			{MaxDistance: 0.45, Gap: 0.02},
			{MaxDistance: 0.55, Gap: 0.03},
		},
	}
}

// Validate checks that the calibration is usable: positive threshold and
// gaps, steps sorted ascending.
func (c Calibration) Validate() error {
	if c.Threshold <= 0 {
		return errors.New("calibration: threshold must be positive")
	}
	if c.BaseGap <= 0 {
		return errors.New("calibration: base gap must be positive")
	}
	if !sort.SliceIsSorted(c.GapSteps, func(i, j int) bool {
		return c.GapSteps[i].MaxDistance < c.GapSteps[j].MaxDistance
	}) {
		return errors.New("calibration: gap steps must be sorted by max_distance")
	}
	for _, s := range c.GapSteps {
		if s.Gap <= 0 {
			return errors.New("calibration: step gap must be positive")
		}
	}
	return nil
}

// RequiredGap returns the separation a best candidate at the given distance
// must have over the runner-up. Tighter matches need less separation; a
// borderline match is exactly where a false positive is most likely, so it
// needs the most.
func (c Calibration) RequiredGap(bestDistance float64) float64 {
	for _, step := range c.GapSteps {
		if bestDistance <= step.MaxDistance {
			return step.Gap
		}
	}
	return c.BaseGap
}

// Decide applies the adaptive acceptance policy to a ranked candidate list.
// The top candidate is accepted only when its distance is within the
// threshold AND its separation from the second-best meets the
// confidence-dependent required gap. The returned Decision always carries
// the best distance, gap and required gap so the diagnostic path can report
// them without recomputing anything.
func (c Calibration) Decide(candidates []Candidate) Decision {
	if len(candidates) == 0 {
		return Decision{
			Distance: math.Inf(1),
			Gap:      math.Inf(1),
			Reason:   ReasonNoCandidates,
		}
	}

	best := candidates[0]
	gap := Gap(candidates)
	requiredGap := c.RequiredGap(best.Distance)

	d := Decision{
		Distance:    best.Distance,
		Gap:         gap,
		RequiredGap: requiredGap,
	}

	switch {
	case best.Distance > c.Threshold:
		d.Reason = ReasonOverThreshold
	case gap < requiredGap:
		d.Reason = ReasonInsufficientGap
	default:
		d.Matched = true
		d.Key = best.Key
		d.Name = best.Name
	}
	return d
}
