package filters

import (
	"fmt"
	"math"
)

// BandpassFilter implements a digital bandpass filter using biquad topology,
// built from the cookbook formulas in Robert Bristow-Johnson's
// "Cookbook formulae for audio EQ biquad filter coefficients".
//
// The practice pipeline offers it as an opt-in vocal-band pre-filter: with a
// tanpura drone bleeding into the microphone, confining energy to the sung
// range keeps the detector's lag search on the voice.
type BandpassFilter struct {
	sampleRate int
	centerFreq float64 // Center frequency in Hz
	bandwidth  float64 // Bandwidth in Hz
	qFactor    float64 // Quality factor (centerFreq/bandwidth)

	// Biquad coefficients, normalized so a0 == 1
	b0, b1, b2 float64
	a1, a2     float64

	// Direct form II delay line
	w1, w2 float64
}

// NewBandpassFilter creates a bandpass filter from center frequency and
// bandwidth. Q is centerFreq/bandwidth.
func NewBandpassFilter(sampleRate int, centerFreq, bandwidth float64) *BandpassFilter {
	bf := &BandpassFilter{
		sampleRate: sampleRate,
		centerFreq: centerFreq,
		bandwidth:  bandwidth,
		qFactor:    centerFreq / bandwidth,
	}

	bf.computeCoefficients()
	return bf
}

// NewVocalBandFilter creates a bandpass covering [lowHz, highHz], the usual
// way to wrap a detector's frequency range. Center is the geometric mean.
func NewVocalBandFilter(sampleRate int, lowHz, highHz float64) (*BandpassFilter, error) {
	if lowHz <= 0 || highHz <= lowHz {
		return nil, fmt.Errorf("invalid band [%v, %v]", lowHz, highHz)
	}
	if highHz >= float64(sampleRate)/2 {
		return nil, fmt.Errorf("band edge %v Hz at or above Nyquist (%d Hz)", highHz, sampleRate/2)
	}

	center := math.Sqrt(lowHz * highHz)
	return NewBandpassFilter(sampleRate, center, highHz-lowHz), nil
}

// computeCoefficients calculates the biquad coefficients using the cookbook formula.
func (bf *BandpassFilter) computeCoefficients() {
	// Normalize frequency: w0 = 2*pi*f0/Fs
	w0 := 2.0 * math.Pi * bf.centerFreq / float64(bf.sampleRate)

	// Prevent numerical issues at Nyquist
	if w0 >= math.Pi {
		w0 = math.Pi * 0.99
	}

	cosW0 := math.Cos(w0)
	sinW0 := math.Sin(w0)

	// Alpha parameter: alpha = sin(w0)/(2*Q)
	alpha := sinW0 / (2.0 * bf.qFactor)

	a0 := 1.0 + alpha
	bf.b0 = alpha / a0
	bf.b1 = 0.0
	bf.b2 = -alpha / a0
	bf.a1 = -2.0 * cosW0 / a0
	bf.a2 = (1.0 - alpha) / a0
}

// Process applies the bandpass filter to a single sample.
// Direct Form II:
// w[n] = x[n] - a1*w[n-1] - a2*w[n-2]
// y[n] = b0*w[n] + b1*w[n-1] + b2*w[n-2]
func (bf *BandpassFilter) Process(input float64) float64 {
	w := input - bf.a1*bf.w1 - bf.a2*bf.w2
	output := bf.b0*w + bf.b1*bf.w1 + bf.b2*bf.w2

	bf.w2 = bf.w1
	bf.w1 = w

	return output
}

// ProcessBuffer applies the filter to a buffer, returning a new slice.
func (bf *BandpassFilter) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = bf.Process(sample)
	}
	return output
}

// ProcessInto applies the filter writing into dst, which must be at least
// as long as input. dst may alias input.
func (bf *BandpassFilter) ProcessInto(dst, input []float64) {
	for i, sample := range input {
		dst[i] = bf.Process(sample)
	}
}

// Reset clears the filter's delay line.
// Call this when processing discontinuous audio segments.
func (bf *BandpassFilter) Reset() {
	bf.w1, bf.w2 = 0.0, 0.0
}

// Parameters returns the current filter parameters.
func (bf *BandpassFilter) Parameters() (centerFreq, bandwidth, qFactor float64) {
	return bf.centerFreq, bf.bandwidth, bf.qFactor
}

// FrequencyResponse computes the magnitude response at a given frequency.
//
// H(e^jw) = (b0 + b1*e^-jw + b2*e^-j2w) / (1 + a1*e^-jw + a2*e^-j2w)
func (bf *BandpassFilter) FrequencyResponse(frequency float64) float64 {
	w := 2.0 * math.Pi * frequency / float64(bf.sampleRate)

	cosW := math.Cos(w)
	sinW := math.Sin(w)
	cos2W := math.Cos(2 * w)
	sin2W := math.Sin(2 * w)

	numReal := bf.b0 + bf.b1*cosW + bf.b2*cos2W
	numImag := -bf.b1*sinW - bf.b2*sin2W

	denReal := 1.0 + bf.a1*cosW + bf.a2*cos2W
	denImag := -bf.a1*sinW - bf.a2*sin2W

	denMagSq := denReal*denReal + denImag*denImag
	if denMagSq == 0 {
		return 0
	}

	hReal := (numReal*denReal + numImag*denImag) / denMagSq
	hImag := (numImag*denReal - numReal*denImag) / denMagSq

	return math.Sqrt(hReal*hReal + hImag*hImag)
}
