package filters

import (
	"math"
)

// DCRemoval implements a DC blocking filter (first-order high-pass) used to
// strip the near-0 Hz bias that cheap microphone paths add. A constant
// offset cancels inside the detector's difference function, but it inflates
// frame RMS and slow drift smears the lag dips, so the practice pipeline
// runs every frame through this first.
//
// Reference: Julius O. Smith III, "Introduction to Digital Filters with
// Audio Applications", DC Blocker section.
type DCRemoval struct {
	poleLocation float64 // R parameter (0 < R < 1)

	// State variables
	x1 float64 // Previous input sample x[n-1]
	y1 float64 // Previous output sample y[n-1]
}

// NewDCRemoval creates a DC removal filter with the standard audio pole of
// 0.995 (cutoff ≈ 8 Hz at 44.1 kHz).
func NewDCRemoval() *DCRemoval {
	return &DCRemoval{poleLocation: 0.995}
}

// NewDCRemovalWithCutoff creates a DC removal filter for a desired -3dB
// cutoff frequency, using the small-angle design R ≈ 1 - 2*pi*fc/fs.
func NewDCRemovalWithCutoff(sampleRate int, cutoffFreq float64) *DCRemoval {
	dc := NewDCRemoval()
	if sampleRate > 0 && cutoffFreq > 0 {
		r := 1.0 - (2.0 * math.Pi * cutoffFreq / float64(sampleRate))
		if r >= 1.0 {
			r = 0.999
		} else if r <= 0.0 {
			r = 0.001
		}
		dc.poleLocation = r
	}
	return dc
}

// Process applies DC removal to a single sample.
// Implements the difference equation:
// y[n] = x[n] - x[n-1] + R * y[n-1]
func (dc *DCRemoval) Process(input float64) float64 {
	output := input - dc.x1 + dc.poleLocation*dc.y1

	dc.x1 = input
	dc.y1 = output

	return output
}

// ProcessBuffer applies DC removal to a buffer, returning a new slice.
func (dc *DCRemoval) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = dc.Process(sample)
	}
	return output
}

// ProcessInto applies DC removal writing into dst, which must be at least
// as long as input. dst may alias input.
func (dc *DCRemoval) ProcessInto(dst, input []float64) {
	for i, sample := range input {
		dst[i] = dc.Process(sample)
	}
}

// Reset clears the filter's internal state.
// Call this when processing discontinuous audio segments.
func (dc *DCRemoval) Reset() {
	dc.x1 = 0.0
	dc.y1 = 0.0
}

// PoleLocation returns the R parameter in use.
func (dc *DCRemoval) PoleLocation() float64 {
	return dc.poleLocation
}
