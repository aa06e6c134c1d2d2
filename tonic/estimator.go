// Package tonic estimates a singer's Sa (tonic) from recorded audio.
//
// Hindustani pitch labels are relative: every swara is an interval above
// the performer's chosen tonic, so nothing downstream works until Sa is
// known. The estimator runs the pitch detector over the recording and
// votes each confident frame against a fixed table of plausible tonics,
// folding octaves so sargam sung anywhere in range still points back at
// the same Sa pitch class.
package tonic

import (
	"errors"
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-swara/algorithms/common"
	"github.com/RyanBlaney/sonido-swara/algorithms/pitch"
	"github.com/RyanBlaney/sonido-swara/logging"
	"github.com/RyanBlaney/sonido-swara/transcode"
)

// ErrNotEnoughVoiced is returned when too few frames pass the confidence
// gate to support an estimate.
var ErrNotEnoughVoiced = errors.New("tonic: not enough voiced frames")

// Candidate is one Sa hypothesis.
type Candidate struct {
	Name string  `json:"name"`
	Hz   float64 `json:"hz"`
}

// The singer tonic range, G#2 through A#3 in semitone steps. Male tonics
// cluster around C3-E3, female around G3-A3; together the fifteen
// candidates cover every pitch class, so octave folding can always find
// a near match.
var candidates = []Candidate{
	{"gs2", 103.83},
	{"a2", 110.00},
	{"as2", 116.54},
	{"b2", 123.47},
	{"c3", 130.81},
	{"cs3", 138.59},
	{"d3", 146.83},
	{"ds3", 155.56},
	{"e3", 164.81},
	{"f3", 174.61},
	{"fs3", 185.00},
	{"g3", 196.00},
	{"gs3", 207.65},
	{"a3", 220.00},
	{"as3", 233.08},
}

// Candidates returns a copy of the Sa hypothesis table.
func Candidates() []Candidate {
	out := make([]Candidate, len(candidates))
	copy(out, candidates)
	return out
}

// Params configures the estimator.
type Params struct {
	FrameSize       int     `json:"frame_size"`
	HopSize         int     `json:"hop_size"`
	MinConfidence   float64 `json:"min_confidence"`
	MinVoicedFrames int     `json:"min_voiced_frames"`
}

// DefaultParams returns the standard analysis configuration.
func DefaultParams() Params {
	return Params{
		FrameSize:       2048,
		HopSize:         1024,
		MinConfidence:   0.6,
		MinVoicedFrames: 10,
	}
}

func (p Params) withDefaults() Params {
	def := DefaultParams()
	if p.FrameSize <= 0 {
		p.FrameSize = def.FrameSize
	}
	if p.HopSize <= 0 || p.HopSize > p.FrameSize {
		p.HopSize = p.FrameSize / 2
	}
	if p.MinConfidence <= 0 || p.MinConfidence >= 1 {
		p.MinConfidence = def.MinConfidence
	}
	if p.MinVoicedFrames <= 0 {
		p.MinVoicedFrames = def.MinVoicedFrames
	}
	return p
}

// Result is the winning Sa hypothesis. Score is the aggregate
// confidence-weighted vote mass; it grows with recording length, so it
// only ranks candidates within one run. CandidateScores carries the full
// ranking for diagnostics, ordered as Candidates().
type Result struct {
	SaHz            float64   `json:"sa_hz"`
	Name            string    `json:"name"`
	Score           float64   `json:"score"`
	VoicedFrames    int       `json:"voiced_frames"`
	TotalFrames     int       `json:"total_frames"`
	CandidateScores []float64 `json:"candidate_scores,omitempty"`
}

// Estimator scores the fixed Sa candidate table against detector output.
// It is stateless between calls; one Estimator may be reused across
// recordings and goroutines.
type Estimator struct {
	params Params
}

// NewEstimator creates an estimator with default parameters.
func NewEstimator() *Estimator {
	return NewEstimatorWithParams(DefaultParams())
}

// NewEstimatorWithParams creates an estimator with custom parameters.
// Invalid values fall back to the defaults rather than erroring.
func NewEstimatorWithParams(params Params) *Estimator {
	return &Estimator{params: params.withDefaults()}
}

// EstimateFromAudio runs the estimator over decoded audio, downmixing to
// mono first.
func (e *Estimator) EstimateFromAudio(data *transcode.AudioData) (Result, error) {
	if data == nil || len(data.PCM) == 0 {
		return Result{}, fmt.Errorf("no audio to analyze")
	}
	mono := data.Mono()
	return e.EstimateFromSamples(mono.PCM, mono.SampleRate)
}

// EstimateFromSamples estimates Sa from a mono sample stream.
//
// Each analysis frame that the detector calls voiced with confidence at or
// above MinConfidence casts one vote. A vote's weight against a candidate
// is conf * max(0, 1 - |cents|/50) where cents is the octave-folded
// distance, so a frame supports a candidate fully when it lands on it and
// not at all beyond a quartertone. Returns ErrNotEnoughVoiced when fewer
// than MinVoicedFrames frames qualify.
func (e *Estimator) EstimateFromSamples(samples []float64, sampleRate int) (Result, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "tonic",
		"function":  "EstimateFromSamples",
	})

	if sampleRate <= 0 {
		sampleRate = 44100
	}
	p := e.params
	detector := pitch.NewDetector(sampleRate)

	type vote struct {
		freq float64
		conf float64
	}
	frames := common.Frames(samples, p.FrameSize, p.HopSize)
	votes := make([]vote, 0, len(frames))
	for _, frame := range frames {
		est := detector.Detect(frame)
		if est.Voiced && est.Confidence >= p.MinConfidence {
			votes = append(votes, vote{freq: est.FrequencyHz, conf: est.Confidence})
		}
	}

	if len(votes) < p.MinVoicedFrames {
		return Result{}, fmt.Errorf("%w: %d of %d required",
			ErrNotEnoughVoiced, len(votes), p.MinVoicedFrames)
	}

	result := Result{
		VoicedFrames:    len(votes),
		TotalFrames:     len(frames),
		CandidateScores: make([]float64, len(candidates)),
	}

	bestScore := 0.0
	centerLog := 0.0
	confSum := 0.0
	for _, v := range votes {
		centerLog += v.conf * math.Log2(v.freq)
		confSum += v.conf
	}
	centerLog /= confSum

	for i, cand := range candidates {
		score := 0.0
		for _, v := range votes {
			cents := foldedCents(v.freq, cand.Hz)
			if w := 1.0 - math.Abs(cents)/50.0; w > 0 {
				score += v.conf * w
			}
		}
		result.CandidateScores[i] = score
		if score > bestScore {
			bestScore = score
		}
	}
	if bestScore == 0 {
		return Result{}, fmt.Errorf("voiced frames matched no tonic candidate")
	}

	// The table repeats three pitch classes an octave apart (gs2/gs3,
	// a2/a3, as2/as3) and folded scoring cannot tell twins apart, so the
	// register decides: among effectively tied scores, the candidate
	// nearest the confidence-weighted center of the sung range wins.
	bestFit := math.Inf(1)
	for i, score := range result.CandidateScores {
		if score < bestScore*(1.0-1e-6) {
			continue
		}
		if fit := math.Abs(centerLog - math.Log2(candidates[i].Hz)); fit < bestFit {
			bestFit = fit
			result.SaHz = candidates[i].Hz
			result.Name = candidates[i].Name
			result.Score = score
		}
	}

	logger.Debug("Estimated tonic", logging.Fields{
		"sa_hz":         result.SaHz,
		"name":          result.Name,
		"score":         result.Score,
		"voiced_frames": result.VoicedFrames,
		"total_frames":  result.TotalFrames,
	})

	return result, nil
}

// foldedCents is the signed cents distance from freqHz to the nearest
// octave transposition of saHz, in (-600, 600].
func foldedCents(freqHz, saHz float64) float64 {
	cents := 1200.0 * math.Log2(freqHz/saHz)
	cents = math.Mod(cents, 1200.0)
	if cents > 600.0 {
		cents -= 1200.0
	} else if cents <= -600.0 {
		cents += 1200.0
	}
	return cents
}
