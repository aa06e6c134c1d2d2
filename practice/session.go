// Package practice wires the detection chain into a per-frame feedback
// session: preprocess, detect, map to a swara, smooth. This is the layer a
// recording loop or a CLI talks to.
package practice

import (
	"fmt"

	"github.com/RyanBlaney/sonido-swara/algorithms/common"
	"github.com/RyanBlaney/sonido-swara/algorithms/filters"
	"github.com/RyanBlaney/sonido-swara/algorithms/pitch"
	"github.com/RyanBlaney/sonido-swara/algorithms/smoothing"
	"github.com/RyanBlaney/sonido-swara/algorithms/swara"
	"github.com/RyanBlaney/sonido-swara/logging"
)

// Result is the feedback for one frame. Estimate and RMS are always
// populated; Note is present only when the frame was voiced with
// confidence at or above Settings.MinConfidence. RMS is measured after
// preprocessing, so it reflects what the detector actually saw.
type Result struct {
	Estimate pitch.Estimate `json:"estimate"`
	Note     *swara.Note    `json:"note,omitempty"`
	RMS      float64        `json:"rms"`
}

// Session runs the frame pipeline for one practice take. It is
// single-writer: one goroutine calls Process. Settings are re-read from
// the provider on every frame, so a UI can retune the session live.
type Session struct {
	sampleRate int
	provider   SettingsProvider

	detector  *pitch.Detector
	stability *smoothing.StabilityFilter
	dc        *filters.DCRemoval
	band      *filters.BandpassFilter

	mapper  *swara.Mapper
	current Settings

	scratch []float64
	logger  logging.Logger
}

// NewSession validates the provider's initial settings and builds the
// pipeline. sampleRate defaults to 44100 when non-positive.
func NewSession(sampleRate int, provider SettingsProvider) (*Session, error) {
	if provider == nil {
		return nil, fmt.Errorf("settings provider is required")
	}
	if sampleRate <= 0 {
		sampleRate = 44100
	}

	settings := provider()
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	mapper, err := swara.NewMapper(settings.TonicHz, settings.ToleranceCents, settings.System)
	if err != nil {
		return nil, err
	}

	s := &Session{
		sampleRate: sampleRate,
		provider:   provider,
		detector:   pitch.NewDetector(sampleRate),
		stability:  smoothing.NewStabilityFilter(),
		dc:         filters.NewDCRemoval(),
		mapper:     mapper,
		current:    settings,
		logger: logging.WithFields(logging.Fields{
			"component": "practice_session",
		}),
	}

	s.logger.Info("Session started", logging.Fields{
		"sample_rate":     sampleRate,
		"tonic_hz":        settings.TonicHz,
		"tolerance_cents": settings.ToleranceCents,
		"system":          settings.System.String(),
	})
	return s, nil
}

// SampleRate returns the rate the session was built for.
func (s *Session) SampleRate() int {
	return s.sampleRate
}

// Tonic returns the Sa frequency currently in use.
func (s *Session) Tonic() float64 {
	return s.mapper.TonicHz()
}

// Process analyzes one frame and returns the feedback for it. The frame
// is copied before filtering; the caller's buffer is never written.
//
// Frames shorter than the detector minimum come back as unvoiced with
// zero confidence, not as an error.
func (s *Session) Process(frame []float64) (Result, error) {
	settings := s.provider()
	if err := settings.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid settings: %w", err)
	}
	if err := s.refresh(settings); err != nil {
		return Result{}, err
	}

	if cap(s.scratch) < len(frame) {
		s.scratch = make([]float64, len(frame))
	}
	scratch := s.scratch[:len(frame)]
	s.dc.ProcessInto(scratch, frame)
	if settings.VocalBandPass {
		s.band.ProcessInto(scratch, scratch)
	}

	est := s.detector.Detect(scratch)
	result := Result{
		Estimate: est,
		RMS:      common.RMS(scratch),
	}

	if est.Voiced && est.Confidence >= settings.MinConfidence {
		note, err := s.mapper.Map(est.FrequencyHz)
		if err != nil {
			return Result{}, fmt.Errorf("mapping %v Hz: %w", est.FrequencyHz, err)
		}
		smoothed := s.stability.Smooth(note, settings.ToleranceCents)
		result.Note = &smoothed
	}

	s.logger.Debug("Processed frame", logging.Fields{
		"voiced":     est.Voiced,
		"freq_hz":    est.FrequencyHz,
		"confidence": est.Confidence,
		"rms":        result.RMS,
	})
	return result, nil
}

// refresh applies a settings change. Retuning the tonic or switching the
// ratio table makes the smoothed deviation meaningless, so those changes
// also reset the stability filter; a tolerance change does not.
func (s *Session) refresh(settings Settings) error {
	if settings.VocalBandPass && s.band == nil {
		params := pitch.DefaultParams()
		band, err := filters.NewVocalBandFilter(s.sampleRate, params.MinFrequency, params.MaxFrequency)
		if err != nil {
			return fmt.Errorf("building vocal band filter: %w", err)
		}
		s.band = band
	}
	if settings == s.current {
		return nil
	}

	if settings.TonicHz != s.current.TonicHz ||
		settings.ToleranceCents != s.current.ToleranceCents ||
		settings.System != s.current.System {
		mapper, err := swara.NewMapper(settings.TonicHz, settings.ToleranceCents, settings.System)
		if err != nil {
			return err
		}
		s.mapper = mapper
	}
	if settings.TonicHz != s.current.TonicHz || settings.System != s.current.System {
		s.stability.Reset()
	}

	s.logger.Info("Settings changed", logging.Fields{
		"tonic_hz":        settings.TonicHz,
		"tolerance_cents": settings.ToleranceCents,
		"system":          settings.System.String(),
		"vocal_band_pass": settings.VocalBandPass,
	})
	s.current = settings
	return nil
}

// Reset clears all per-take state: the stability filter and the
// preprocessing delay lines. Call it between takes.
func (s *Session) Reset() {
	s.stability.Reset()
	s.dc.Reset()
	if s.band != nil {
		s.band.Reset()
	}
	s.logger.Debug("Session reset")
}

// AnalyzeAll resets the session and processes a whole recording in
// frameSize windows advancing by hopSize (2048/1024 when non-positive).
// Trailing samples that do not fill a frame are dropped.
func (s *Session) AnalyzeAll(samples []float64, frameSize, hopSize int) ([]Result, error) {
	if frameSize <= 0 {
		frameSize = 2048
	}
	if hopSize <= 0 {
		hopSize = frameSize / 2
	}

	s.Reset()
	frames := common.Frames(samples, frameSize, hopSize)
	results := make([]Result, 0, len(frames))
	for _, frame := range frames {
		result, err := s.Process(frame)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}
