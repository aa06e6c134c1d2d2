package transcode

import "time"

// AudioData represents decoded or synthesized audio: normalized float64
// samples in [-1, 1], interleaved when Channels > 1.
type AudioData struct {
	PCM        []float64         `json:"-"` // Raw PCM data
	SampleRate int               `json:"sample_rate"`
	Channels   int               `json:"channels"`
	Duration   time.Duration     `json:"duration"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Frames returns the number of sample frames (samples per channel).
func (a *AudioData) Frames() int {
	if a == nil || a.Channels <= 0 {
		return 0
	}
	return len(a.PCM) / a.Channels
}

// Mono returns a single-channel version of the audio: the receiver itself
// when already mono, otherwise a copy with the channels averaged.
func (a *AudioData) Mono() *AudioData {
	if a == nil || a.Channels <= 1 {
		return a
	}

	frames := a.Frames()
	pcm := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for ch := 0; ch < a.Channels; ch++ {
			sum += a.PCM[i*a.Channels+ch]
		}
		pcm[i] = sum / float64(a.Channels)
	}

	mono := *a
	mono.PCM = pcm
	mono.Channels = 1
	return &mono
}
