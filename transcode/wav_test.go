package transcode

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sineAudio(freq float64, sampleRate, n int) *AudioData {
	pcm := make([]float64, n)
	for i := range pcm {
		pcm[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return &AudioData{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   1,
		Duration:   time.Duration(n) * time.Second / time.Duration(sampleRate),
	}
}

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	original := sineAudio(220, 44100, 4410)

	require.NoError(t, EncodeWAVFile(path, original, 16))

	decoded, err := DecodeWAVFile(path)
	require.NoError(t, err)

	assert.Equal(t, 44100, decoded.SampleRate)
	assert.Equal(t, 1, decoded.Channels)
	assert.Equal(t, 100*time.Millisecond, decoded.Duration)
	require.Len(t, decoded.PCM, len(original.PCM))

	// 16-bit quantization: half a step plus rounding slack.
	const tol = 1.0 / 32768
	for i := range decoded.PCM {
		if math.Abs(decoded.PCM[i]-original.PCM[i]) > tol {
			t.Fatalf("sample %d: decoded %v, original %v", i, decoded.PCM[i], original.PCM[i])
		}
	}

	assert.Equal(t, "wav", decoded.Metadata["format"])
	assert.Equal(t, "16", decoded.Metadata["bit_depth"])
}

func TestDecodeDownmixesStereo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")

	frames := 1000
	pcm := make([]float64, frames*2)
	for i := 0; i < frames; i++ {
		pcm[i*2] = 0.5     // left
		pcm[i*2+1] = -0.25 // right
	}
	stereo := &AudioData{PCM: pcm, SampleRate: 44100, Channels: 2}

	require.NoError(t, EncodeWAVFile(path, stereo, 16))

	decoded, err := DecodeWAVFile(path)
	require.NoError(t, err)

	assert.Equal(t, 1, decoded.Channels)
	require.Len(t, decoded.PCM, frames)
	for i, s := range decoded.PCM {
		assert.InDelta(t, 0.125, s, 1.0/32768, "frame %d", i)
	}
	assert.Equal(t, "2", decoded.Metadata["source_channels"])
}

func TestEncodeClampsOutOfRangeSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hot.wav")

	hot := &AudioData{
		PCM:        []float64{1.5, -1.5, 0},
		SampleRate: 44100,
		Channels:   1,
	}
	require.NoError(t, EncodeWAVFile(path, hot, 16))

	decoded, err := DecodeWAVFile(path)
	require.NoError(t, err)
	require.Len(t, decoded.PCM, 3)

	assert.InDelta(t, 1.0, decoded.PCM[0], 1.0/16384)
	assert.InDelta(t, -1.0, decoded.PCM[1], 1.0/16384)
	assert.Equal(t, 0.0, decoded.PCM[2])
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := DecodeWAV(bytes.NewReader([]byte("this is not a wav file at all")))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecodeMissingFile(t *testing.T) {
	_, err := DecodeWAVFile(filepath.Join(t.TempDir(), "absent.wav"))
	assert.Error(t, err)
}

func TestEncodeValidation(t *testing.T) {
	dir := t.TempDir()

	err := EncodeWAVFile(filepath.Join(dir, "a.wav"), &AudioData{SampleRate: 44100, Channels: 1}, 16)
	assert.ErrorIs(t, err, ErrNoData)

	err = EncodeWAVFile(filepath.Join(dir, "b.wav"), nil, 16)
	assert.ErrorIs(t, err, ErrNoData)

	err = EncodeWAVFile(filepath.Join(dir, "c.wav"), sineAudio(220, 44100, 100), 12)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	bad := sineAudio(220, 44100, 100)
	bad.SampleRate = 0
	err = EncodeWAVFile(filepath.Join(dir, "d.wav"), bad, 16)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFramesAndMono(t *testing.T) {
	stereo := &AudioData{
		PCM:        []float64{0.2, 0.4, -0.2, -0.4},
		SampleRate: 44100,
		Channels:   2,
	}
	assert.Equal(t, 2, stereo.Frames())

	mono := stereo.Mono()
	assert.Equal(t, 1, mono.Channels)
	require.Len(t, mono.PCM, 2)
	assert.InDelta(t, 0.3, mono.PCM[0], 1e-12)
	assert.InDelta(t, -0.3, mono.PCM[1], 1e-12)

	// Already-mono audio comes back untouched.
	same := mono.Mono()
	assert.Equal(t, mono, same)

	var nilAudio *AudioData
	assert.Nil(t, nilAudio.Mono())
	assert.Equal(t, 0, nilAudio.Frames())
}
