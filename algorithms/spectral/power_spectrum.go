package spectral

import (
	"math"
)

// PowerSpectrum provides power spectral density computation
type PowerSpectrum struct {
	fft *FFT
}

// NewPowerSpectrum creates a new power spectrum calculator
func NewPowerSpectrum() *PowerSpectrum {
	return &PowerSpectrum{fft: NewFFT()}
}

// Compute computes power spectral density from a magnitude spectrum
func (ps *PowerSpectrum) Compute(magnitudeSpectrum []float64) []float64 {
	if len(magnitudeSpectrum) == 0 {
		return []float64{}
	}

	power := make([]float64, len(magnitudeSpectrum))
	for i, mag := range magnitudeSpectrum {
		power[i] = mag * mag
	}

	return power
}

// ComputeFromSignal transforms a time-domain signal and returns the power
// of the non-redundant bins (0..n/2)
func (ps *PowerSpectrum) ComputeFromSignal(signal []float64) []float64 {
	if len(signal) == 0 {
		return []float64{}
	}

	spectrum := ps.fft.Compute(signal)
	half := len(spectrum)/2 + 1

	power := make([]float64, half)
	for i := 0; i < half; i++ {
		re := real(spectrum[i])
		im := imag(spectrum[i])
		power[i] = re*re + im*im
	}

	return power
}

// ComputeLog computes log power spectrum in dB with floor
func (ps *PowerSpectrum) ComputeLog(magnitudeSpectrum []float64, floorDB float64) []float64 {
	if len(magnitudeSpectrum) == 0 {
		return []float64{}
	}

	floor := math.Pow(10, floorDB/10.0)
	logPower := make([]float64, len(magnitudeSpectrum))

	for i, mag := range magnitudeSpectrum {
		power := mag * mag
		if power < floor {
			power = floor
		}
		logPower[i] = 10 * math.Log10(power)
	}

	return logPower
}
