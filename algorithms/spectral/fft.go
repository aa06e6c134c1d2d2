package spectral

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT provides Fast Fourier Transform functionality over real signals
type FFT struct {
	// No state needed for now
}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes Fast Fourier Transform using mjibson/go-dsp
// Takes []float64 input and returns []complex128 output
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	// mjibson/go-dsp handles all sizes efficiently, including non-power-of-2
	return fft.FFTReal(x)
}

// ComputeInverse computes inverse FFT (includes the 1/N scaling)
func (f *FFT) ComputeInverse(x []complex128) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	return fft.IFFT(x)
}

// ComputeInverseReal computes inverse FFT and returns real part only
func (f *FFT) ComputeInverseReal(x []complex128) []float64 {
	if len(x) == 0 {
		return []float64{}
	}

	result := fft.IFFT(x)
	realResult := make([]float64, len(result))

	for i, val := range result {
		realResult[i] = real(val)
	}

	return realResult
}

// Magnitude converts a complex spectrum to per-bin magnitudes
func Magnitude(spectrum []complex128) []float64 {
	mags := make([]float64, len(spectrum))
	for i, c := range spectrum {
		mags[i] = cmplx.Abs(c)
	}
	return mags
}

// BinForFrequency returns the spectrum bin closest to freqHz for an
// n-point transform at the given sample rate
func BinForFrequency(freqHz float64, sampleRate, n int) int {
	if sampleRate <= 0 || n <= 0 || freqHz < 0 {
		return 0
	}
	bin := int(freqHz*float64(n)/float64(sampleRate) + 0.5)
	if bin > n/2 {
		bin = n / 2
	}
	return bin
}

// FrequencyForBin returns the center frequency of a spectrum bin
func FrequencyForBin(bin, sampleRate, n int) float64 {
	if sampleRate <= 0 || n <= 0 || bin < 0 {
		return 0
	}
	return float64(bin) * float64(sampleRate) / float64(n)
}
