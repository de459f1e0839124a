// Package coherence provides the calibration constants and score functions
// of the coherence model. No arbitrary magic numbers; everything traces
// back to the two calibration constants σ and T*.
// See design doc Section 7.
package coherence

// Coupling constants of the model.
const (
	// Sigma (σ) is the coupling ceiling: the coherence a perfectly
	// aligned population can sustain. Kept just below 1 so no population
	// is ever scored as frictionless.
	Sigma = 0.991

	// TStar (T*) is the published stability threshold. Populations whose
	// signal holds below the configured threshold for a full grace window
	// collapse; presets that model the narrative calibration set their
	// threshold to TStar.
	TStar = 0.714
)

// Score floors.
const (
	// MinScore is the lowest score a live agent can carry. Even a fully
	// broken agent is not scored at zero.
	MinScore = 0.01

	// ViabilityFloor marks agents as non-viable when lifecycle turnover
	// is enabled: score below it and the agent does not survive the
	// generation.
	ViabilityFloor = 0.1

	// ParentFloor is the minimum score required to parent a child.
	ParentFloor = 0.5
)
