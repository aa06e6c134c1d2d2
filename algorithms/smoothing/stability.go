package smoothing

import (
	"math"

	"github.com/RyanBlaney/sonido-swara/algorithms/swara"
)

// DefaultAlpha trades responsiveness against jitter suppression. At 0.25 a
// steady reading reaches ~90% of its final value in eight frames, while a
// one-frame outlier is damped to a quarter of its size.
const DefaultAlpha = 0.25

// StabilityFilter smooths the cents deviation of successive notes with an
// exponential moving average so the feedback a singer watches does not
// flicker on every frame. Only the numeric deviation is smoothed; the
// detected swara and octave pass through untouched.
//
// The filter is the single stateful piece of the pipeline. It is not
// locked: keep one instance per recording session and serialize calls.
type StabilityFilter struct {
	alpha         float64
	smoothedCents float64
}

// NewStabilityFilter creates a filter with the default coefficient.
func NewStabilityFilter() *StabilityFilter {
	return NewStabilityFilterWithAlpha(DefaultAlpha)
}

// NewStabilityFilterWithAlpha creates a filter with a custom coefficient.
// Values outside (0, 1] fall back to the default.
func NewStabilityFilterWithAlpha(alpha float64) *StabilityFilter {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultAlpha
	}
	return &StabilityFilter{alpha: alpha}
}

// Smooth folds the note's deviation into the running average and returns a
// copy of the note carrying the smoothed deviation, re-classified against
// toleranceCents with the same boundary-inclusive rule the mapper uses.
func (f *StabilityFilter) Smooth(n swara.Note, toleranceCents float64) swara.Note {
	f.smoothedCents = f.alpha*n.CentsDeviation + (1-f.alpha)*f.smoothedCents

	n.CentsDeviation = f.smoothedCents
	n.IsPerfect = math.Abs(f.smoothedCents) <= toleranceCents
	n.IsFlat = f.smoothedCents < -toleranceCents
	n.IsSharp = f.smoothedCents > toleranceCents
	return n
}

// Reset zeroes the running average. Call it whenever a new session starts
// so stale history cannot bias the first reading.
func (f *StabilityFilter) Reset() {
	f.smoothedCents = 0
}

// Alpha returns the effective smoothing coefficient.
func (f *StabilityFilter) Alpha() float64 {
	return f.alpha
}

// SmoothedCents returns the current running average.
func (f *StabilityFilter) SmoothedCents() float64 {
	return f.smoothedCents
}
