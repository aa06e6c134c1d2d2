package pitch

import (
	"math"
	"math/rand"
	"testing"
)

const testSampleRate = 44100

func sineFrame(freq, amplitude float64, n int) []float64 {
	frame := make([]float64, n)
	for i := range frame {
		frame[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/testSampleRate)
	}
	return frame
}

func TestDetectSineAccuracy(t *testing.T) {
	d := NewDetector(testSampleRate)

	for _, freq := range []float64{110, 220, 440} {
		est := d.Detect(sineFrame(freq, 0.8, 2048))

		if !est.Voiced {
			t.Fatalf("%v Hz: expected voiced", freq)
		}
		if math.Abs(est.FrequencyHz-freq) > 1.0 {
			t.Fatalf("%v Hz: detected %v, want within ±1 Hz", freq, est.FrequencyHz)
		}
		if est.Confidence <= 0.6 {
			t.Fatalf("%v Hz: confidence = %v, want > 0.6", freq, est.Confidence)
		}
	}
}

func TestDetectHarmonicTonePicksFundamental(t *testing.T) {
	d := NewDetector(testSampleRate)

	frame := make([]float64, 2048)
	for i := range frame {
		ph := 2 * math.Pi * 220 * float64(i) / testSampleRate
		frame[i] = 0.6*math.Sin(ph) + 0.3*math.Sin(2*ph) + 0.2*math.Sin(3*ph)
	}

	est := d.Detect(frame)
	if !est.Voiced {
		t.Fatal("expected voiced")
	}
	if math.Abs(est.FrequencyHz-220) > 1.0 {
		t.Fatalf("detected %v, want 220 ±1 (no octave error)", est.FrequencyHz)
	}
}

func TestDetectSilence(t *testing.T) {
	d := NewDetector(testSampleRate)

	est := d.Detect(make([]float64, 2048))
	if est.Voiced {
		t.Fatal("silence must be unvoiced")
	}
	if est.FrequencyHz != 0 {
		t.Fatalf("silence frequency = %v, want 0", est.FrequencyHz)
	}
	if est.Confidence >= 0.5 {
		t.Fatalf("silence confidence = %v, want < 0.5", est.Confidence)
	}
}

func TestDetectConstantOffsetIsUnvoiced(t *testing.T) {
	d := NewDetector(testSampleRate)

	frame := make([]float64, 2048)
	for i := range frame {
		frame[i] = 0.5
	}

	est := d.Detect(frame)
	if est.Voiced {
		t.Fatalf("DC frame must be unvoiced, got %v Hz", est.FrequencyHz)
	}
}

func TestDetectNoiseLowConfidence(t *testing.T) {
	d := NewDetector(testSampleRate)
	rng := rand.New(rand.NewSource(1))

	frame := make([]float64, 2048)
	for i := range frame {
		frame[i] = 2*rng.Float64() - 1
	}

	est := d.Detect(frame)
	if est.Confidence >= 0.5 {
		t.Fatalf("noise confidence = %v, want < 0.5", est.Confidence)
	}
}

func TestDetectShortFrame(t *testing.T) {
	d := NewDetector(testSampleRate)

	for _, n := range []int{0, 1, 512, d.MinFrameSize() - 1} {
		est := d.Detect(sineFrame(220, 0.8, n))
		if est.Voiced {
			t.Fatalf("frame of %d samples must be unvoiced", n)
		}
		if est.FrequencyHz != 0 || est.Confidence != 0 {
			t.Fatalf("frame of %d samples: got %+v, want zero estimate", n, est)
		}
	}
}

func TestDetectDeterministic(t *testing.T) {
	d := NewDetector(testSampleRate)
	frame := sineFrame(261.63, 0.7, 2048)

	first := d.Detect(frame)
	second := d.Detect(frame)

	if first != second {
		t.Fatalf("same frame produced %+v then %+v", first, second)
	}
}

func TestConfidenceNonDecreasingWithAmplitude(t *testing.T) {
	d := NewDetector(testSampleRate)

	prev := -1.0
	for _, amp := range []float64{0.05, 0.1, 0.3, 0.6, 0.9} {
		est := d.Detect(sineFrame(220, amp, 2048))
		if !est.Voiced {
			t.Fatalf("amplitude %v: expected voiced", amp)
		}
		if est.Confidence < prev-1e-9 {
			t.Fatalf("confidence dropped from %v to %v at amplitude %v", prev, est.Confidence, amp)
		}
		prev = est.Confidence
	}
}

func TestDetectNeverPanicsOnHostileInput(t *testing.T) {
	d := NewDetector(testSampleRate)

	frames := [][]float64{
		nil,
		{},
		make([]float64, 3),
		sineFrame(220, 0.8, 2047), // odd length
	}

	nan := sineFrame(220, 0.8, 2048)
	nan[1500] = math.NaN()
	frames = append(frames, nan)

	inf := sineFrame(220, 0.8, 2048)
	inf[10] = math.Inf(1)
	frames = append(frames, inf)

	allNaN := make([]float64, 2048)
	for i := range allNaN {
		allNaN[i] = math.NaN()
	}
	frames = append(frames, allNaN)

	for i, frame := range frames {
		est := d.Detect(frame) // must not panic
		if est.Confidence < 0 || est.Confidence > 1 || math.IsNaN(est.Confidence) {
			t.Fatalf("frame %d: confidence %v outside [0, 1]", i, est.Confidence)
		}
		if !est.Voiced && est.FrequencyHz != 0 {
			t.Fatalf("frame %d: unvoiced but frequency %v", i, est.FrequencyHz)
		}
	}
}

func TestDifferenceFunctionMatchesDirect(t *testing.T) {
	d := NewDetector(testSampleRate)
	rng := rand.New(rand.NewSource(7))

	for _, n := range []int{1200, 2048} {
		frame := make([]float64, n)
		for i := range frame {
			frame[i] = 2*rng.Float64() - 1
		}

		half := n / 2
		maxLag := int(math.Ceil(float64(testSampleRate) / d.params.MinFrequency))
		if maxLag > half-1 {
			maxLag = half - 1
		}

		got, power := d.differenceFunction(frame, maxLag)
		if power <= 0 {
			t.Fatal("expected nonzero power")
		}

		for tau := 0; tau <= maxLag; tau++ {
			want := 0.0
			for i := 0; i < half; i++ {
				delta := frame[i] - frame[i+tau]
				want += delta * delta
			}

			tol := 1e-6 * math.Max(1, want)
			if math.Abs(got[tau]-want) > tol {
				t.Fatalf("n=%d tau=%d: fft difference = %v, direct = %v", n, tau, got[tau], want)
			}
		}
	}
}

func TestParamsWithDefaults(t *testing.T) {
	tests := []struct {
		name  string
		in    Params
		check func(Params) bool
	}{
		{"zero value", Params{}, func(p Params) bool { return p == DefaultParams() }},
		{"negative min", Params{MinFrequency: -5}, func(p Params) bool { return p.MinFrequency == 80 }},
		{"inverted band", Params{MinFrequency: 500, MaxFrequency: 100}, func(p Params) bool { return p.MaxFrequency > p.MinFrequency }},
		{"threshold too big", Params{Threshold: 2}, func(p Params) bool { return p.Threshold == 0.15 }},
		{"kept when valid", Params{MinFrequency: 60, MaxFrequency: 800, Threshold: 0.2, ValueWeight: 0.5, SeparationWeight: 0.5}, func(p Params) bool {
			return p.MinFrequency == 60 && p.MaxFrequency == 800 && p.Threshold == 0.2
		}},
	}

	for _, tt := range tests {
		if got := tt.in.withDefaults(); !tt.check(got) {
			t.Fatalf("%s: sanitized to %+v", tt.name, got)
		}
	}
}

func TestMinFrameSize(t *testing.T) {
	d := NewDetector(testSampleRate)

	// Two periods of 80 Hz at 44.1 kHz.
	want := 2 * int(math.Ceil(44100.0/80.0))
	if got := d.MinFrameSize(); got != want {
		t.Fatalf("MinFrameSize = %d, want %d", got, want)
	}
}

func BenchmarkDetect(b *testing.B) {
	d := NewDetector(testSampleRate)
	frame := sineFrame(220, 0.8, 2048)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Detect(frame)
	}
}
