package synth

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-swara/algorithms/common"
	"github.com/RyanBlaney/sonido-swara/logging"
	"github.com/RyanBlaney/sonido-swara/transcode"
)

const (
	beatInterval = 0.6 // seconds per beat, 100 BPM
	cycleBeats   = 6
	// Each string rings ten seconds and wraps around the cycle buffer, so
	// every cycle position carries the sum of fresh attack and older tails.
	stringSustain = 10.0
	stringVolume  = 0.5

	inharmonicityCoeff = 0.0002
	normalizeCeiling   = 0.85

	haasDelaySeconds = 0.020
	haasPan          = 0.75
)

// harmonic is one partial of the tanpura timbre.
type harmonic struct {
	number    float64
	amplitude float64
}

// Amplitudes measured by spectral analysis of a Calcutta-standard male
// tanpura recording (stable segment of the mid-Sa string). H7 dominates,
// which is the jawari buzz; H4/H11/H17 form the surrounding cluster.
var tanpuraHarmonics = []harmonic{
	{1, 0.26}, // fundamental
	{2, 0.26}, // octave
	{3, 0.04},
	{4, 0.81}, // jawari cluster
	{5, 0.49},
	{6, 0.49},
	{7, 1.00}, // dominant jawari peak
	{8, 0.24},
	{9, 0.54}, // secondary peak
	{10, 0.34},
	{11, 0.45},
	{12, 0.08},
	{13, 0.07},
	{14, 0.04},
	{15, 0.03},
	{16, 0.05},
	{17, 0.33}, // tertiary peak
	{18, 0.05},
	{19, 0.28},
	{20, 0.09},
}

// tanpuraString is the tuning and articulation of one of the four strings.
type tanpuraString struct {
	ratio        float64 // relative to Sa
	pluckBeat    int
	attack       float64
	amplitudeVar float64
}

// TanpuraParams configures GenerateTanpura.
type TanpuraParams struct {
	SaHz        float64 `json:"sa_hz"`
	FirstString string  `json:"first_string"` // "P", "m" or "N"
	Cycles      int     `json:"cycles"`
	Stereo      bool    `json:"stereo"`
	SampleRate  int     `json:"sample_rate"`
}

// DefaultTanpuraParams returns a mono single cycle at a common male Sa.
func DefaultTanpuraParams() TanpuraParams {
	return TanpuraParams{
		SaHz:        130.81, // C3
		FirstString: "P",
		Cycles:      1,
		Stereo:      false,
		SampleRate:  44100,
	}
}

// firstStringRatios are the traditional tunings of the first (lowest
// sounding) string relative to Sa, before the octave drop.
var firstStringRatios = map[string]float64{
	"P": 3.0 / 2.0,
	"m": 4.0 / 3.0,
	"N": 15.0 / 8.0,
}

// GenerateTanpura renders a looping tanpura drone: four strings plucked on
// beats 1, 3, 4 and 5 of a six-beat cycle. The output is deterministic for
// identical parameters and peaks at most at 0.85.
func GenerateTanpura(params TanpuraParams) (*transcode.AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "synth",
		"function":  "GenerateTanpura",
	})

	if params.SaHz <= 0 {
		return nil, fmt.Errorf("sa frequency must be positive, got %v", params.SaHz)
	}
	ratio, ok := firstStringRatios[params.FirstString]
	if !ok {
		return nil, fmt.Errorf("first string must be P, m or N, got %q", params.FirstString)
	}
	if params.Cycles <= 0 {
		params.Cycles = 1
	}
	if params.SampleRate <= 0 {
		params.SampleRate = 44100
	}
	sr := params.SampleRate

	// String 1 sounds an octave below its interval; 2 and 3 are the tonic,
	// 4 the tonic an octave down.
	strings := []tanpuraString{
		{ratio: ratio / 2.0, pluckBeat: 0, attack: 0.4, amplitudeVar: 0.98},
		{ratio: 1.0, pluckBeat: 2, attack: 0.8, amplitudeVar: 1.0},
		{ratio: 1.0, pluckBeat: 3, attack: 0.8, amplitudeVar: 1.0},
		{ratio: 0.5, pluckBeat: 4, attack: 0.6, amplitudeVar: 0.96},
	}

	beatSamples := int(float64(sr) * beatInterval)
	cycleSize := int(float64(sr) * beatInterval * cycleBeats)
	cycle := make([]float64, cycleSize)

	for _, s := range strings {
		pluck := synthesizeString(params.SaHz*s.ratio, stringSustain, s.amplitudeVar, s.attack, sr)
		offset := s.pluckBeat * beatSamples
		for i, v := range pluck {
			cycle[(offset+i)%cycleSize] += v
		}
	}

	// Leave headroom; never boost a quiet mix.
	if peak := floats.Norm(cycle, math.Inf(1)); peak > normalizeCeiling {
		floats.Scale(normalizeCeiling/peak, cycle)
	}

	channels := 1
	if params.Stereo {
		channels = 2
		cycle = stereoHaas(cycle, sr)
	}

	pcm := make([]float64, 0, len(cycle)*params.Cycles)
	for c := 0; c < params.Cycles; c++ {
		pcm = append(pcm, cycle...)
	}

	frames := len(pcm) / channels
	data := &transcode.AudioData{
		PCM:        pcm,
		SampleRate: sr,
		Channels:   channels,
		Duration:   time.Duration(frames) * time.Second / time.Duration(sr),
		Metadata: map[string]string{
			"generator":    "tanpura",
			"sa_hz":        strconv.FormatFloat(params.SaHz, 'f', -1, 64),
			"first_string": params.FirstString,
			"cycles":       strconv.Itoa(params.Cycles),
		},
	}

	logger.Debug("Generated tanpura drone", logging.Fields{
		"sa_hz":        params.SaHz,
		"first_string": params.FirstString,
		"cycles":       params.Cycles,
		"stereo":       params.Stereo,
		"duration":     data.Duration.Seconds(),
	})

	return data, nil
}

// synthesizeString renders one plucked string by additive synthesis over
// the measured harmonic table.
func synthesizeString(freq, duration, amplitudeVar, attack float64, sampleRate int) []float64 {
	n := int(float64(sampleRate) * duration)
	samples := make([]float64, n)

	ampSum := 0.0
	for _, h := range tanpuraHarmonics {
		ampSum += h.amplitude
	}

	for _, h := range tanpuraHarmonics {
		// Real strings are stiff: partials run slightly sharp, more so as
		// the harmonic number grows.
		inharmonic := math.Sqrt(1.0 + inharmonicityCoeff*h.number*h.number)
		harmonicFreq := freq * h.number * inharmonic

		modFreq := 1.5 + h.number*0.15
		modPhase := h.number * 0.4
		phaseShift := math.Sin(h.number*0.7) * 0.05
		decayRate := 0.15 + h.number*h.number*0.004

		for i := range samples {
			t := float64(i) / float64(sampleRate)
			decay := math.Exp(-t * decayRate)
			// Jawari shimmer: each partial waxes and wanes at its own rate,
			// strongest right after the pluck.
			depth := 0.32 * math.Exp(-t*0.8)
			modulation := 1.0 + depth*math.Sin(2.0*math.Pi*modFreq*t+modPhase)

			samples[i] += h.amplitude * decay * modulation *
				math.Sin(2.0*math.Pi*harmonicFreq*t+phaseShift)
		}
	}

	scale := amplitudeVar * stringVolume / ampSum
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		v := samples[i] * envelopeAt(t, attack) * scale
		samples[i] = common.Clamp(v, -1.0, 1.0) * 0.8
	}

	return samples
}

// envelopeAt is a sigmoid attack followed by a slow exponential release.
func envelopeAt(t, attack float64) float64 {
	if t < attack {
		return 1.0 / (1.0 + math.Exp(-12.0*(t/attack-0.5)))
	}
	return math.Exp(-t * 0.15)
}

// stereoHaas widens a mono cycle into interleaved stereo by delaying the
// right channel 20 ms, wrapping inside the cycle so loops stay seamless.
func stereoHaas(mono []float64, sampleRate int) []float64 {
	delay := int(float64(sampleRate) * haasDelaySeconds)
	out := make([]float64, len(mono)*2)
	for i, v := range mono {
		out[i*2] = v * haasPan
		out[i*2+1] = mono[(i+delay)%len(mono)] * haasPan
	}
	return out
}
