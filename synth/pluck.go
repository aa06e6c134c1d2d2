package synth

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-swara/algorithms/common"
	"github.com/RyanBlaney/sonido-swara/algorithms/swara"
	"github.com/RyanBlaney/sonido-swara/logging"
	"github.com/RyanBlaney/sonido-swara/transcode"
)

const pluckCeiling = 0.8

// PluckParams configures GeneratePluck.
type PluckParams struct {
	FrequencyHz float64       `json:"frequency_hz"`
	Duration    time.Duration `json:"duration"`
	Decay       float64       `json:"decay"`      // Feedback damping, (0, 1]
	Brightness  float64       `json:"brightness"` // 0 = mellow, 1 = harsh
	Seed        int64         `json:"seed"`
	SampleRate  int           `json:"sample_rate"`
}

// DefaultPluckParams returns a one-second mellow pluck at A3.
func DefaultPluckParams() PluckParams {
	return PluckParams{
		FrequencyHz: 220,
		Duration:    time.Second,
		Decay:       0.996,
		Brightness:  0.4,
		Seed:        1,
		SampleRate:  44100,
	}
}

func (p PluckParams) withDefaults() PluckParams {
	def := DefaultPluckParams()
	if p.FrequencyHz <= 0 {
		p.FrequencyHz = def.FrequencyHz
	}
	if p.Duration <= 0 {
		p.Duration = def.Duration
	}
	if p.Decay <= 0 || p.Decay > 1 {
		p.Decay = def.Decay
	}
	if p.Brightness < 0 || p.Brightness > 1 {
		p.Brightness = def.Brightness
	}
	if p.SampleRate <= 0 {
		p.SampleRate = def.SampleRate
	}
	return p
}

// EffectiveFrequency returns the pitch the string loop actually produces.
// The delay line is an integer number of samples and the averaging filter
// adds (1-brightness)/2 samples of group delay, so the sounding pitch sits
// slightly below the requested one.
func (p PluckParams) EffectiveFrequency() float64 {
	p = p.withDefaults()
	delayLength := int(float64(p.SampleRate) / p.FrequencyHz)
	if delayLength < 2 {
		return 0
	}
	return float64(p.SampleRate) / (float64(delayLength) + (1.0-p.Brightness)/2.0)
}

// GeneratePluck renders a guitar-like reference pluck with the
// Karplus-Strong algorithm: a noise burst circulating through a damped
// averaging filter. The noise is seeded, so output is deterministic.
func GeneratePluck(params PluckParams) (*transcode.AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "synth",
		"function":  "GeneratePluck",
	})

	p := params.withDefaults()
	sr := p.SampleRate

	delayLength := int(float64(sr) / p.FrequencyHz)
	if delayLength < 2 {
		return nil, fmt.Errorf("frequency %v Hz too high for sample rate %d", p.FrequencyHz, sr)
	}

	n := int(p.Duration.Seconds() * float64(sr))
	if n <= 0 {
		return nil, fmt.Errorf("duration %v too short", p.Duration)
	}

	rng := rand.New(rand.NewSource(p.Seed))
	delayLine := make([]float64, delayLength)
	for i := range delayLine {
		delayLine[i] = 2.0*rng.Float64() - 1.0
	}

	out := make([]float64, n)
	pos := 0
	for i := range out {
		cur := delayLine[pos]
		next := delayLine[(pos+1)%delayLength]
		out[i] = cur

		filtered := (cur + next) / 2.0
		sample := (p.Brightness*cur + (1.0-p.Brightness)*filtered) * p.Decay

		delayLine[pos] = sample
		pos++
		if pos == delayLength {
			pos = 0
		}
	}

	applyFades(out, sr)
	common.PeakNormalize(out, pluckCeiling)

	data := &transcode.AudioData{
		PCM:        out,
		SampleRate: sr,
		Channels:   1,
		Duration:   time.Duration(n) * time.Second / time.Duration(sr),
		Metadata: map[string]string{
			"generator":    "pluck",
			"frequency_hz": strconv.FormatFloat(p.FrequencyHz, 'f', -1, 64),
			"seed":         strconv.FormatInt(p.Seed, 10),
		},
	}

	logger.Debug("Generated reference pluck", logging.Fields{
		"frequency_hz": p.FrequencyHz,
		"effective_hz": p.EffectiveFrequency(),
		"duration":     data.Duration.Seconds(),
	})

	return data, nil
}

// RenderScale renders one pluck per distinct swara of the tuning system,
// ascending from Sa, concatenated into a single buffer. Enharmonic
// duplicates are rendered once.
func RenderScale(tonicHz float64, system swara.System, params PluckParams) (*transcode.AudioData, error) {
	if tonicHz <= 0 {
		return nil, fmt.Errorf("tonic frequency must be positive, got %v", tonicHz)
	}

	p := params.withDefaults()
	baseSeed := p.Seed
	seen := make(map[float64]bool)
	var pcm []float64
	var labels []string

	for i, entry := range swara.TableFor(system) {
		if seen[entry.Ratio] {
			continue
		}
		seen[entry.Ratio] = true

		p.FrequencyHz = tonicHz * entry.Ratio
		p.Seed = baseSeed + int64(i)
		pluck, err := GeneratePluck(p)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", entry.Label, err)
		}
		pcm = append(pcm, pluck.PCM...)
		labels = append(labels, entry.Label)
	}

	sr := p.SampleRate
	return &transcode.AudioData{
		PCM:        pcm,
		SampleRate: sr,
		Channels:   1,
		Duration:   time.Duration(len(pcm)) * time.Second / time.Duration(sr),
		Metadata: map[string]string{
			"generator": "pluck_scale",
			"tonic_hz":  strconv.FormatFloat(tonicHz, 'f', -1, 64),
			"swaras":    strings.Join(labels, ","),
		},
	}, nil
}

// applyFades tapers the buffer edges: 10 ms in, 100 ms out.
func applyFades(samples []float64, sampleRate int) {
	fadeIn := int(0.01 * float64(sampleRate))
	if fadeIn > len(samples) {
		fadeIn = len(samples)
	}
	if fadeIn > 1 {
		for i := 0; i < fadeIn; i++ {
			samples[i] *= float64(i) / float64(fadeIn-1)
		}
	}

	fadeOut := int(0.1 * float64(sampleRate))
	if fadeOut > len(samples) {
		fadeOut = len(samples)
	}
	if fadeOut > 1 {
		start := len(samples) - fadeOut
		for i := 0; i < fadeOut; i++ {
			samples[start+i] *= 1.0 - float64(i)/float64(fadeOut-1)
		}
	}
}
