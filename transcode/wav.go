package transcode

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/RyanBlaney/sonido-swara/logging"
)

var (
	// ErrUnsupportedFormat reports input that is not linear PCM WAV at a
	// bit depth the codec handles.
	ErrUnsupportedFormat = errors.New("transcode: unsupported audio format")
	// ErrNoData reports a structurally valid file carrying no samples.
	ErrNoData = errors.New("transcode: no audio data")
)

// DecodeWAVFile reads a PCM WAV file into mono AudioData.
func DecodeWAVFile(path string) (*AudioData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	data, err := DecodeWAV(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return data, nil
}

// DecodeWAV decodes linear PCM WAV from r, normalizes samples to [-1, 1)
// by bit depth, and averages multichannel content down to mono. The
// detection pipeline is mono; stereo recordings lose nothing a pitch
// estimate cares about.
func DecodeWAV(r io.ReadSeeker) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "wav_codec",
		"function":  "DecodeWAV",
	})

	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, ErrUnsupportedFormat
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading wav samples: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, ErrNoData
	}

	bitDepth := int(decoder.BitDepth)
	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d-bit samples", ErrUnsupportedFormat, bitDepth)
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		return nil, fmt.Errorf("%w: channel count %d", ErrUnsupportedFormat, channels)
	}
	sampleRate := buf.Format.SampleRate

	scale := float64(int64(1) << (bitDepth - 1))
	frames := len(buf.Data) / channels
	pcm := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			sum += float64(buf.Data[i*channels+ch])
		}
		pcm[i] = sum / float64(channels) / scale
	}

	data := &AudioData{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   1,
		Duration:   time.Duration(frames) * time.Second / time.Duration(sampleRate),
		Metadata: map[string]string{
			"format":          "wav",
			"codec":           "pcm",
			"bit_depth":       strconv.Itoa(bitDepth),
			"source_channels": strconv.Itoa(channels),
		},
	}

	logger.Debug("Decoded WAV", logging.Fields{
		"sample_rate":     sampleRate,
		"source_channels": channels,
		"bit_depth":       bitDepth,
		"frames":          frames,
		"duration":        data.Duration.Seconds(),
	})

	return data, nil
}

// EncodeWAVFile writes data as linear PCM WAV. bitDepth may be 16 or 24;
// zero selects 16. Samples are clamped to [-1, 1] and rounded half away
// from zero.
func EncodeWAVFile(path string, data *AudioData, bitDepth int) error {
	logger := logging.WithFields(logging.Fields{
		"component": "wav_codec",
		"function":  "EncodeWAVFile",
		"path":      path,
	})

	if data == nil || len(data.PCM) == 0 {
		return ErrNoData
	}
	if bitDepth == 0 {
		bitDepth = 16
	}
	switch bitDepth {
	case 16, 24:
	default:
		return fmt.Errorf("%w: %d-bit encode", ErrUnsupportedFormat, bitDepth)
	}
	if data.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrUnsupportedFormat, data.SampleRate)
	}
	channels := data.Channels
	if channels <= 0 {
		channels = 1
	}

	scale := float64(int64(1) << (bitDepth - 1))
	maxVal := scale - 1
	ints := make([]int, len(data.PCM))
	for i, s := range data.PCM {
		v := math.Round(s * scale)
		if v > maxVal {
			v = maxVal
		} else if v < -scale {
			v = -scale
		}
		ints[i] = int(v)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	enc := wav.NewEncoder(f, data.SampleRate, bitDepth, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: data.SampleRate},
		Data:           ints,
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("finalizing wav: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}

	logger.Debug("Encoded WAV", logging.Fields{
		"sample_rate": data.SampleRate,
		"channels":    channels,
		"bit_depth":   bitDepth,
		"frames":      len(ints) / channels,
	})

	return nil
}
