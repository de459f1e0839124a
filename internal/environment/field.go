// Package environment provides the ambient scarcity field: layered simplex
// noise sampled per generation, so environmental pressure drifts smoothly
// instead of stepping only when a stressor fires.
// See design doc Section 6.2.
package environment

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// FieldConfig holds scarcity field parameters.
type FieldConfig struct {
	Enabled   bool    `json:"enabled"`
	Frequency float64 `json:"frequency"` // Noise-space step per generation
	Amplitude float64 `json:"amplitude"` // Peak scarcity contribution
}

// DefaultFieldConfig returns the calibrated field, disabled. Scheduled
// scarcity stressors work without it; enabling adds drift on top.
func DefaultFieldConfig() FieldConfig {
	return FieldConfig{
		Enabled:   false,
		Frequency: 0.05,
		Amplitude: 0.2,
	}
}

// Field samples the scarcity contribution for each generation. A nil field
// contributes nothing.
type Field struct {
	noise opensimplex.Noise
	cfg   FieldConfig
}

// New creates a field from a seed. Equal seeds sample equal curves.
func New(seed int64, cfg FieldConfig) *Field {
	return &Field{
		noise: opensimplex.NewNormalized(seed),
		cfg:   cfg,
	}
}

// Sample returns the field's scarcity contribution for a generation,
// in [0, amplitude].
func (f *Field) Sample(generation int) float64 {
	if f == nil || !f.cfg.Enabled {
		return 0
	}
	x := float64(generation) * f.cfg.Frequency

	// Two octaves: the second runs at double frequency on a shifted track
	// to break up single-frequency banding.
	v := f.noise.Eval2(x, 0)*0.7 + f.noise.Eval2(x*2, 17)*0.3

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v * f.cfg.Amplitude
}
