package practice

import (
	"fmt"

	"github.com/RyanBlaney/sonido-swara/algorithms/swara"
)

// Settings is everything a session re-reads on each frame. The UI layer
// may hand the session a provider backed by live controls; tonic,
// tolerance and tuning system take effect on the next Process call.
type Settings struct {
	TonicHz        float64      `json:"tonic_hz"`
	ToleranceCents float64      `json:"tolerance_cents"`
	System         swara.System `json:"system"`

	// MinConfidence gates note feedback: frames the detector is less sure
	// about still report an Estimate but no Note.
	MinConfidence float64 `json:"min_confidence"`

	// VocalBandPass additionally confines input to the detector's
	// frequency band before detection. Useful when a tanpura drone bleeds
	// into the microphone. DC removal is always on regardless.
	VocalBandPass bool `json:"vocal_band_pass"`
}

// DefaultSettings returns a session setup for a C4 tonic.
func DefaultSettings() Settings {
	return Settings{
		TonicHz:        261.63,
		ToleranceCents: 15,
		System:         swara.JustIntonation,
		MinConfidence:  0.5,
		VocalBandPass:  false,
	}
}

// Validate reports the first invalid field.
func (s Settings) Validate() error {
	if s.TonicHz <= 0 {
		return fmt.Errorf("tonic frequency must be positive, got %v", s.TonicHz)
	}
	if s.ToleranceCents <= 0 {
		return fmt.Errorf("tolerance must be positive, got %v cents", s.ToleranceCents)
	}
	switch s.System {
	case swara.JustIntonation, swara.TwentyTwoShruti:
	default:
		return fmt.Errorf("unknown tuning system: %d", s.System)
	}
	if s.MinConfidence < 0 || s.MinConfidence >= 1 {
		return fmt.Errorf("min confidence must be in [0, 1), got %v", s.MinConfidence)
	}
	return nil
}

// SettingsProvider supplies the current settings, called once per frame.
// Fixed(settings) is enough for batch use.
type SettingsProvider func() Settings

// Fixed wraps constant settings in a provider.
func Fixed(settings Settings) SettingsProvider {
	return func() Settings { return settings }
}
