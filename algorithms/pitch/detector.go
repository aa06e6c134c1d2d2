package pitch

import (
	"math"

	"github.com/RyanBlaney/sonido-swara/algorithms/common"
	"github.com/RyanBlaney/sonido-swara/algorithms/spectral"
)

// Params contains the tunable knobs of the YIN detector.
//
// The defaults cover the Hindustani vocal range: MinFrequency at a low male
// mandra saptak, MaxFrequency above a high female taar saptak. Threshold is
// the absolute dip depth of the normalized difference function below which
// a lag is accepted as periodic; ValueWeight and SeparationWeight blend the
// two confidence cues and normally sum to 1.
type Params struct {
	MinFrequency     float64 `json:"min_frequency"`     // Minimum detectable frequency (Hz)
	MaxFrequency     float64 `json:"max_frequency"`     // Maximum detectable frequency (Hz)
	Threshold        float64 `json:"threshold"`         // CMNDF absolute threshold (0.1-0.5)
	ValueWeight      float64 `json:"value_weight"`      // Weight of the dip-depth confidence cue
	SeparationWeight float64 `json:"separation_weight"` // Weight of the competitor-separation cue
}

// DefaultParams returns the reference detector configuration.
func DefaultParams() Params {
	return Params{
		MinFrequency:     80.0,   // Low male voice
		MaxFrequency:     1000.0, // High female voice
		Threshold:        0.15,
		ValueWeight:      0.7,
		SeparationWeight: 0.3,
	}
}

// withDefaults replaces out-of-contract values with the reference defaults
// so a zero or partial Params never produces a detector that can fail.
func (p Params) withDefaults() Params {
	def := DefaultParams()
	if p.MinFrequency <= 0 {
		p.MinFrequency = def.MinFrequency
	}
	if p.MaxFrequency <= p.MinFrequency {
		p.MaxFrequency = def.MaxFrequency
	}
	if p.MaxFrequency <= p.MinFrequency {
		// MinFrequency was set above the default ceiling; keep an octave of room.
		p.MaxFrequency = p.MinFrequency * 2
	}
	if p.Threshold <= 0 || p.Threshold >= 1 {
		p.Threshold = def.Threshold
	}
	if p.ValueWeight < 0 {
		p.ValueWeight = def.ValueWeight
	}
	if p.SeparationWeight < 0 {
		p.SeparationWeight = def.SeparationWeight
	}
	if p.ValueWeight == 0 && p.SeparationWeight == 0 {
		p.ValueWeight = def.ValueWeight
		p.SeparationWeight = def.SeparationWeight
	}
	return p
}

// Estimate is the outcome of one detection call. Voiced reports whether a
// periodic signal was found; when it is false FrequencyHz is zero and
// Confidence is whatever little support the frame offered.
type Estimate struct {
	FrequencyHz float64 `json:"frequency_hz"`
	Confidence  float64 `json:"confidence"` // Always in [0, 1]
	Voiced      bool    `json:"voiced"`
}

// Detector implements the YIN fundamental-frequency estimator with a
// weighted two-cue confidence score.
//
// References:
//   - de Cheveigné, A., Kawahara, H. (2002). "YIN, a fundamental frequency
//     estimator for speech and music"
//   - Mauch, M., Dixon, S. (2014). "pYIN: A fundamental frequency estimator
//     using probabilistic threshold distributions"
//
// Detect is a pure function of the frame and the fixed configuration: all
// working storage is allocated per call, so one Detector may be shared by
// concurrent callers on independent frames.
type Detector struct {
	sampleRate int
	params     Params

	fft *spectral.FFT
}

// NewDetector creates a detector with default parameters.
func NewDetector(sampleRate int) *Detector {
	return NewDetectorWithParams(sampleRate, DefaultParams())
}

// NewDetectorWithParams creates a detector with custom parameters.
// Invalid parameter values fall back to the defaults rather than erroring.
func NewDetectorWithParams(sampleRate int, params Params) *Detector {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	return &Detector{
		sampleRate: sampleRate,
		params:     params.withDefaults(),
		fft:        spectral.NewFFT(),
	}
}

// SampleRate returns the sample rate the detector was built for.
func (d *Detector) SampleRate() int {
	return d.sampleRate
}

// GetParameters returns the effective parameters.
func (d *Detector) GetParameters() Params {
	return d.params
}

// MinFrameSize returns the smallest frame Detect will attempt: two periods
// of the lowest detectable frequency.
func (d *Detector) MinFrameSize() int {
	period := int(math.Ceil(float64(d.sampleRate) / d.params.MinFrequency))
	return 2 * period
}

// Detect estimates the fundamental frequency of one mono frame.
//
// Frames shorter than MinFrameSize, silence, and aperiodic input all come
// back unvoiced; Detect never fails and never panics.
func (d *Detector) Detect(frame []float64) Estimate {
	if len(frame) < d.MinFrameSize() {
		return Estimate{}
	}

	half := len(frame) / 2
	maxLag := int(math.Ceil(float64(d.sampleRate) / d.params.MinFrequency))
	if maxLag > half-1 {
		maxLag = half - 1
	}
	minLag := int(math.Floor(float64(d.sampleRate) / d.params.MaxFrequency))
	if minLag < 2 {
		minLag = 2
	}
	if minLag >= maxLag {
		return Estimate{}
	}

	diff, totalPower := d.differenceFunction(frame, maxLag)
	if totalPower == 0 {
		// Digital silence.
		return Estimate{}
	}

	// Cumulative mean normalized difference function.
	// d'(0) = 1, d'(tau) = d(tau) / ((1/tau) * sum_{j=1..tau} d(j))
	cmndf := make([]float64, maxLag+1)
	cmndf[0] = 1.0
	runningSum := 0.0
	for tau := 1; tau <= maxLag; tau++ {
		runningSum += diff[tau]
		if runningSum == 0 {
			cmndf[tau] = 1.0
			continue
		}
		cmndf[tau] = diff[tau] / (runningSum / float64(tau))
	}

	// First dip below threshold, walked down to its local minimum. When
	// nothing dips that far, fall back to the global minimum of the window.
	minTau := -1
	for tau := minLag; tau <= maxLag; tau++ {
		if cmndf[tau] < d.params.Threshold {
			for tau+1 <= maxLag && cmndf[tau+1] < cmndf[tau] {
				tau++
			}
			minTau = tau
			break
		}
	}
	if minTau < 0 {
		best := math.Inf(1)
		for tau := minLag; tau <= maxLag; tau++ {
			if cmndf[tau] < best {
				best = cmndf[tau]
				minTau = tau
			}
		}
		if minTau < 0 || best >= 1.0 {
			// No lag beats the trivial normalization: nothing periodic here.
			return Estimate{}
		}
	}

	confidence := d.confidence(cmndf, minLag, maxLag, minTau)

	refinedTau := parabolicRefine(cmndf, minTau)
	frequency := float64(d.sampleRate) / refinedTau

	// Refinement may nudge the frequency just past a band edge; anything
	// further out is an artifact of the clamped lag window.
	if frequency < d.params.MinFrequency*0.98 || frequency > d.params.MaxFrequency*1.02 {
		return Estimate{}
	}

	return Estimate{
		FrequencyHz: frequency,
		Confidence:  confidence,
		Voiced:      true,
	}
}

// confidence blends the dip-depth cue with a competitor-separation cue.
//
// Dip depth: 1 - d'(tau), deeper dips mean stronger periodicity. The CMNDF
// is amplitude-invariant, so this cue cannot decrease as a clean tone gets
// louder. Separation: how far the chosen dip sits below the best competing
// local minimum elsewhere in the window; clustered near-equal dips signal
// octave ambiguity, an isolated dip signals none.
func (d *Detector) confidence(cmndf []float64, minLag, maxLag, chosenTau int) float64 {
	value := common.Clamp(1.0-cmndf[chosenTau], 0.0, 1.0)

	next := math.Inf(1)
	for tau := minLag; tau <= maxLag; tau++ {
		if tau-chosenTau >= -2 && tau-chosenTau <= 2 {
			continue
		}
		if tau+1 > maxLag {
			continue
		}
		if cmndf[tau] < cmndf[tau-1] && cmndf[tau] < cmndf[tau+1] && cmndf[tau] < next {
			next = cmndf[tau]
		}
	}

	separation := 1.0
	if !math.IsInf(next, 1) {
		chosen := cmndf[chosenTau]
		separation = common.Clamp((next-chosen)/math.Max(next, 1e-9), 0.0, 1.0)
	}

	score := d.params.ValueWeight*value + d.params.SeparationWeight*separation
	return common.Clamp(score, 0.0, 1.0)
}

// parabolicRefine fits a parabola through the three samples around tau and
// returns the sub-sample vertex position. Edge and degenerate cases keep
// the integer lag.
func parabolicRefine(data []float64, tau int) float64 {
	if tau <= 0 || tau >= len(data)-1 {
		return float64(tau)
	}

	y1 := data[tau-1]
	y2 := data[tau]
	y3 := data[tau+1]

	a := (y1 - 2*y2 + y3) / 2
	b := (y3 - y1) / 2

	if a == 0 {
		return float64(tau)
	}

	offset := -b / (2 * a)
	if offset > 1 {
		offset = 1
	} else if offset < -1 {
		offset = -1
	}

	return float64(tau) + offset
}
