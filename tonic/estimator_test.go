package tonic

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-swara/transcode"
)

const testSampleRate = 44100

func appendTone(samples []float64, freq, seconds float64) []float64 {
	n := int(seconds * testSampleRate)
	for i := 0; i < n; i++ {
		samples = append(samples, 0.5*math.Sin(2.0*math.Pi*freq*float64(i)/testSampleRate))
	}
	return samples
}

// sargam builds a practice phrase around the given Sa, returning to the
// tonic between degrees the way alankar exercises do.
func sargam(saHz float64) []float64 {
	var samples []float64
	for _, ratio := range []float64{1, 9.0 / 8.0, 1, 5.0 / 4.0, 1, 3.0 / 2.0, 1, 5.0 / 3.0, 1} {
		samples = appendTone(samples, saHz*ratio, 0.5)
	}
	return samples
}

func TestEstimateFindsSa(t *testing.T) {
	result, err := NewEstimator().EstimateFromSamples(sargam(220), testSampleRate)
	require.NoError(t, err)

	assert.Equal(t, "a3", result.Name)
	assert.InDelta(t, 220.0, result.SaHz, 1e-9)
	assert.Greater(t, result.VoicedFrames, 10)
	assert.Greater(t, result.Score, 0.0)
	assert.Len(t, result.CandidateScores, len(candidates))
}

func TestEstimatePicksSingerRegister(t *testing.T) {
	// Same pitch class, low register: the a2/a3 octave twins score the
	// same folded mass, so the sung range must decide.
	result, err := NewEstimator().EstimateFromSamples(sargam(110), testSampleRate)
	require.NoError(t, err)

	assert.Equal(t, "a2", result.Name)
	assert.InDelta(t, 110.0, result.SaHz, 1e-9)
}

func TestEstimateFoldsOctaves(t *testing.T) {
	var samples []float64
	for _, freq := range []float64{110, 220, 440} {
		samples = appendTone(samples, freq, 0.7)
	}

	result, err := NewEstimator().EstimateFromSamples(samples, testSampleRate)
	require.NoError(t, err)

	// All three octaves vote for the A pitch class; the center of the
	// sung range puts Sa at 220.
	assert.Equal(t, "a3", result.Name)
}

func TestEstimateNotEnoughVoiced(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	noise := make([]float64, testSampleRate)
	for i := range noise {
		noise[i] = 2.0*rng.Float64() - 1.0
	}

	_, err := NewEstimator().EstimateFromSamples(noise, testSampleRate)
	assert.ErrorIs(t, err, ErrNotEnoughVoiced)

	// Too short to frame at all.
	_, err = NewEstimator().EstimateFromSamples(make([]float64, 1000), testSampleRate)
	assert.ErrorIs(t, err, ErrNotEnoughVoiced)
}

func TestEstimateFromAudio(t *testing.T) {
	data := &transcode.AudioData{
		PCM:        sargam(220),
		SampleRate: testSampleRate,
		Channels:   1,
	}

	result, err := NewEstimator().EstimateFromAudio(data)
	require.NoError(t, err)
	assert.Equal(t, "a3", result.Name)

	_, err = NewEstimator().EstimateFromAudio(nil)
	assert.Error(t, err)
}

func TestCandidatesTable(t *testing.T) {
	c := Candidates()
	require.Len(t, c, 15)
	assert.Equal(t, "gs2", c[0].Name)
	assert.Equal(t, "as3", c[14].Name)

	c[0].Hz = 0 // callers get a copy
	assert.Equal(t, 103.83, Candidates()[0].Hz)
}

func TestParamsWithDefaults(t *testing.T) {
	var zero Params
	assert.Equal(t, DefaultParams(), zero.withDefaults())

	halved := Params{FrameSize: 4096}.withDefaults()
	assert.Equal(t, 2048, halved.HopSize)

	inverted := Params{FrameSize: 1024, HopSize: 4096}.withDefaults()
	assert.Equal(t, 512, inverted.HopSize)
}
