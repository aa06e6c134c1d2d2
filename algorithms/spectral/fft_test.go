package spectral

import (
	"math"
	"testing"
)

func sine(freq float64, sampleRate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return out
}

func TestFFTRoundTrip(t *testing.T) {
	f := NewFFT()
	signal := sine(440, 44100, 1024)

	spectrum := f.Compute(signal)
	if len(spectrum) != len(signal) {
		t.Fatalf("spectrum length = %d, want %d", len(spectrum), len(signal))
	}

	back := f.ComputeInverseReal(spectrum)
	for i := range signal {
		if math.Abs(back[i]-signal[i]) > 1e-9 {
			t.Fatalf("round trip diverged at %d: got %v, want %v", i, back[i], signal[i])
		}
	}
}

func TestBinMapping(t *testing.T) {
	const (
		sampleRate = 44100
		n          = 4096
	)

	tests := []struct {
		freq    float64
		wantBin int
	}{
		{0, 0},
		{440, int(math.Round(440.0 * n / sampleRate))},
		{22050, n / 2},
		{30000, n / 2}, // beyond Nyquist clamps
	}

	for _, tt := range tests {
		if got := BinForFrequency(tt.freq, sampleRate, n); got != tt.wantBin {
			t.Fatalf("BinForFrequency(%v) = %d, want %d", tt.freq, got, tt.wantBin)
		}
	}

	bin := BinForFrequency(440, sampleRate, n)
	freq := FrequencyForBin(bin, sampleRate, n)
	if math.Abs(freq-440) > float64(sampleRate)/float64(n) {
		t.Fatalf("FrequencyForBin(%d) = %v, want within one bin of 440", bin, freq)
	}
}

func TestPowerSpectrumPeakAtTone(t *testing.T) {
	const (
		sampleRate = 44100
		n          = 4096
		freq       = 440.0
	)

	ps := NewPowerSpectrum()
	power := ps.ComputeFromSignal(sine(freq, sampleRate, n))
	if len(power) != n/2+1 {
		t.Fatalf("power bins = %d, want %d", len(power), n/2+1)
	}

	peakBin := 0
	for i, p := range power {
		if p > power[peakBin] {
			peakBin = i
		}
	}

	wantBin := BinForFrequency(freq, sampleRate, n)
	if peakBin < wantBin-1 || peakBin > wantBin+1 {
		t.Fatalf("peak bin = %d, want near %d", peakBin, wantBin)
	}
}

func TestComputeInverse(t *testing.T) {
	f := NewFFT()
	signal := sine(300, 44100, 256)

	back := f.ComputeInverse(f.Compute(signal))
	for i := range signal {
		if math.Abs(real(back[i])-signal[i]) > 1e-9 || math.Abs(imag(back[i])) > 1e-9 {
			t.Fatalf("inverse diverged at %d: got %v, want %v", i, back[i], signal[i])
		}
	}
}

func TestComputeLogFloor(t *testing.T) {
	ps := NewPowerSpectrum()

	logPower := ps.ComputeLog([]float64{1, 0.1, 0}, -60)
	if math.Abs(logPower[0]-0) > 1e-9 {
		t.Fatalf("unit magnitude = %v dB, want 0", logPower[0])
	}
	if math.Abs(logPower[1]-(-20)) > 1e-9 {
		t.Fatalf("0.1 magnitude = %v dB, want -20", logPower[1])
	}
	if logPower[2] != -60 {
		t.Fatalf("zero magnitude = %v dB, want the -60 floor", logPower[2])
	}
}

func TestMagnitudeMatchesPower(t *testing.T) {
	f := NewFFT()
	ps := NewPowerSpectrum()

	signal := sine(220, 44100, 512)
	mags := Magnitude(f.Compute(signal))
	power := ps.Compute(mags)

	for i := range mags {
		if math.Abs(power[i]-mags[i]*mags[i]) > 1e-9 {
			t.Fatalf("power[%d] = %v, want mag²=%v", i, power[i], mags[i]*mags[i])
		}
	}
}
