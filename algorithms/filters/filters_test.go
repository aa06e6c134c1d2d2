package filters

import (
	"math"
	"testing"
)

func TestDCRemovalStripsOffset(t *testing.T) {
	const (
		sampleRate = 44100
		n          = 8192
		offset     = 0.3
	)

	dc := NewDCRemoval()
	input := make([]float64, n)
	for i := range input {
		input[i] = offset + 0.5*math.Sin(2*math.Pi*220*float64(i)/sampleRate)
	}

	output := dc.ProcessBuffer(input)

	// Mean of the tail (after the filter settles) should be near zero.
	tail := output[n/2:]
	sum := 0.0
	for _, s := range tail {
		sum += s
	}
	mean := sum / float64(len(tail))
	if math.Abs(mean) > 0.01 {
		t.Fatalf("residual DC = %v, want |mean| <= 0.01", mean)
	}

	// The tone itself survives: tail RMS stays close to a 0.5-amplitude sine.
	rms := 0.0
	for _, s := range tail {
		rms += s * s
	}
	rms = math.Sqrt(rms / float64(len(tail)))
	want := 0.5 / math.Sqrt2
	if math.Abs(rms-want) > 0.05 {
		t.Fatalf("tone RMS after DC removal = %v, want ≈ %v", rms, want)
	}
}

func TestDCRemovalReset(t *testing.T) {
	dc := NewDCRemoval()

	first := dc.Process(1.0)
	dc.Process(1.0)
	dc.Reset()

	if got := dc.Process(1.0); got != first {
		t.Fatalf("after Reset first output = %v, want %v", got, first)
	}
}

func TestDCRemovalCutoffDesign(t *testing.T) {
	dc := NewDCRemovalWithCutoff(44100, 8.0)
	r := dc.PoleLocation()

	want := 1.0 - 2.0*math.Pi*8.0/44100.0
	if math.Abs(r-want) > 1e-9 {
		t.Fatalf("pole = %v, want %v", r, want)
	}
	if r <= 0 || r >= 1 {
		t.Fatalf("pole %v outside (0, 1)", r)
	}
}

func TestVocalBandFilterSelectivity(t *testing.T) {
	const sampleRate = 44100

	bf, err := NewVocalBandFilter(sampleRate, 80, 1000)
	if err != nil {
		t.Fatalf("NewVocalBandFilter: %v", err)
	}

	inBand := bf.FrequencyResponse(300)
	wayBelow := bf.FrequencyResponse(5)
	wayAbove := bf.FrequencyResponse(12000)

	if inBand < wayBelow*2 || inBand < wayAbove*2 {
		t.Fatalf("band response %v not dominant over stopbands (%v, %v)", inBand, wayBelow, wayAbove)
	}
}

func TestVocalBandFilterRejectsBadBand(t *testing.T) {
	if _, err := NewVocalBandFilter(44100, 0, 1000); err == nil {
		t.Fatal("expected error for zero low edge")
	}
	if _, err := NewVocalBandFilter(44100, 500, 300); err == nil {
		t.Fatal("expected error for inverted band")
	}
	if _, err := NewVocalBandFilter(44100, 80, 30000); err == nil {
		t.Fatal("expected error for band above Nyquist")
	}
}

func TestBandpassPassesCenterTone(t *testing.T) {
	const (
		sampleRate = 44100
		n          = 16384
	)

	bf := NewBandpassFilter(sampleRate, 283.0, 920.0) // geometric center of 80..1000

	tone := make([]float64, n)
	for i := range tone {
		tone[i] = math.Sin(2 * math.Pi * 283.0 * float64(i) / sampleRate)
	}

	out := bf.ProcessBuffer(tone)

	// Steady-state amplitude at center frequency should be near unity.
	peak := 0.0
	for _, s := range out[n/2:] {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if peak < 0.9 || peak > 1.1 {
		t.Fatalf("center-tone peak = %v, want ≈ 1", peak)
	}
}
