// Per-encounter decision ladder: how an agent picks its move against an
// opponent. Rules are checked top-down; the first that applies wins.
// See design doc Section 3.1.
package agents

import "math/rand"

// DecisionParams tunes the decision ladder. Zero values disable the
// corresponding rung, so DefaultDecisionParams is the usual start.
type DecisionParams struct {
	// Noise is the chance of a uniformly random move, applied before any
	// memory is consulted.
	Noise float64 `json:"noise"`

	// EchoWindow is how many recent scars are scanned for an echo.
	EchoWindow int `json:"echo_window"`

	// EchoFloor is the minimum effective weight for a scar to echo.
	EchoFloor float64 `json:"echo_floor"`

	// TitForTatWindow and TitForTatLimit define what teachers treat as a
	// serial defector: more than the limit of own-defections among the
	// opponent's last window entries.
	TitForTatWindow int `json:"tit_for_tat_window"`
	TitForTatLimit  int `json:"tit_for_tat_limit"`

	// DecayRate is the per-generation memory fade, shared by everything
	// that reads the ledger.
	DecayRate float64 `json:"decay_rate"`
}

// DefaultDecisionParams returns the calibrated ladder.
func DefaultDecisionParams() DecisionParams {
	return DecisionParams{
		Noise:           0.02,
		EchoWindow:      20,
		EchoFloor:       0.3,
		TitForTatWindow: 5,
		TitForTatLimit:  3,
		DecayRate:       DecayRate,
	}
}

// Decide picks the agent's move against opponent for the given generation.
// The ladder, top-down: corruption always defects; the awakened always
// cooperate; teachers play tit-for-tat; everyone else rolls noise, then
// listens for a scar echo, then draws against their tendency.
func Decide(a, opponent *Agent, gen int, p DecisionParams, rng *rand.Rand) Move {
	if a.Corrupted {
		return Defect
	}
	if a.Awakened {
		return Cooperate
	}
	if a.Role.Teacher() {
		if opponent.Scars.RecentDefections(p.TitForTatWindow) > p.TitForTatLimit {
			return Defect
		}
		return Cooperate
	}

	if p.Noise > 0 && rng.Float64() < p.Noise {
		if rng.Float64() < 0.5 {
			return Cooperate
		}
		return Defect
	}

	if m, ok := a.scarEcho(gen, p, rng); ok {
		return m
	}

	if rng.Float64() < a.CooperationTendency(gen, p.DecayRate) {
		return Cooperate
	}
	return Defect
}

// scarEcho scans the newest scars for a heavy thriving memory and repeats
// its response with probability equal to the effective weight. Fresh
// memories echo before old ones.
func (a *Agent) scarEcho(gen int, p DecisionParams, rng *rand.Rand) (Move, bool) {
	if p.EchoWindow <= 0 {
		return Cooperate, false
	}
	entries := a.Scars.Entries
	start := len(entries) - p.EchoWindow
	if start < 0 {
		start = 0
	}
	for i := len(entries) - 1; i >= start; i-- {
		s := &entries[i]
		if s.Outcome != OutcomeThrived {
			continue
		}
		w := s.EffectiveWeight(gen, p.DecayRate)
		if w <= p.EchoFloor {
			continue
		}
		if rng.Float64() < w {
			return s.MyResponse, true
		}
	}
	return Cooperate, false
}
