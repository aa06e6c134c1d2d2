package common

import (
	"gonum.org/v1/gonum/floats"
)

// Frames splits a signal into fixed-size frames advancing by hopSize.
// Returned frames are views into the input slice; callers that mutate a
// frame must copy it first. Trailing samples that do not fill a whole
// frame are dropped.
func Frames(signal []float64, frameSize, hopSize int) [][]float64 {
	if frameSize <= 0 || hopSize <= 0 || len(signal) < frameSize {
		return nil
	}

	n := 1 + (len(signal)-frameSize)/hopSize
	frames := make([][]float64, 0, n)
	for start := 0; start+frameSize <= len(signal); start += hopSize {
		frames = append(frames, signal[start:start+frameSize])
	}
	return frames
}

// FrameCount returns the number of frames Frames would produce
func FrameCount(signalLen, frameSize, hopSize int) int {
	if frameSize <= 0 || hopSize <= 0 || signalLen < frameSize {
		return 0
	}
	return 1 + (signalLen-frameSize)/hopSize
}

// PeakNormalize scales signal in place so its absolute peak equals target.
// A silent signal is left unchanged.
func PeakNormalize(signal []float64, target float64) {
	if len(signal) == 0 || target <= 0 {
		return
	}

	peak := 0.0
	if m := floats.Max(signal); m > peak {
		peak = m
	}
	if m := -floats.Min(signal); m > peak {
		peak = m
	}
	if peak < 1e-12 {
		return
	}

	floats.Scale(target/peak, signal)
}
