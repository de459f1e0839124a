// Agent scar ledger: the append-only record the cooperation tendency is
// derived from. Entries never mutate; fading is applied by readers.
// See design doc Section 2.2.
package agents

import (
	"math"
	"math/rand"
)

// Ledger constants.
const (
	// MaxScars caps the ledger; the oldest entries fall off past it.
	MaxScars = 100

	// DecayRate is the default per-generation fade applied at read time.
	DecayRate = 0.01

	// EvidenceFloor is the minimum effective weight for a scar to count
	// as evidence when deriving the tendency.
	EvidenceFloor = 0.1

	// BaseTendency is the disposition of an agent with no usable history.
	BaseTendency = 0.5

	// CorruptedTendency is the fixed disposition of corrupted agents.
	CorruptedTendency = 0.1
)

// Experience weights by outcome: thriving burns deeper than breaking even,
// and being harmed barely registers as evidence for the response taken.
const (
	WeightThrived = 0.8
	WeightNeutral = 0.5
	WeightHarmed  = 0.2
)

// ExperienceWeight maps an outcome to the recorded weight of the scar it
// leaves behind.
func ExperienceWeight(o Outcome) float64 {
	switch o {
	case OutcomeThrived:
		return WeightThrived
	case OutcomeHarmed:
		return WeightHarmed
	default:
		return WeightNeutral
	}
}

// Ledger is an append-only sequence of scars with a hard cap.
type Ledger struct {
	Entries []Scar `json:"entries"`
}

// Append adds a scar, dropping the oldest entries once the cap is reached.
func (l *Ledger) Append(s Scar) {
	l.Entries = append(l.Entries, s)
	if len(l.Entries) > MaxScars {
		l.Entries = l.Entries[len(l.Entries)-MaxScars:]
	}
}

// Len returns the number of entries currently held.
func (l *Ledger) Len() int {
	return len(l.Entries)
}

// RecentDefections counts the owner's own defections among the last n
// entries. Teachers read an opponent's ledger through this to spot serial
// defectors.
func (l *Ledger) RecentDefections(n int) int {
	start := len(l.Entries) - n
	if start < 0 {
		start = 0
	}
	count := 0
	for _, s := range l.Entries[start:] {
		if s.MyResponse == Defect {
			count++
		}
	}
	return count
}

// Forget removes each entry with probability fraction and reports how many
// were erased. Cultural wipes are the one operation that deletes history;
// everything else only appends.
func (l *Ledger) Forget(fraction float64, rng *rand.Rand) int {
	if fraction <= 0 || len(l.Entries) == 0 {
		return 0
	}
	kept := l.Entries[:0]
	removed := 0
	for _, s := range l.Entries {
		if rng.Float64() < fraction {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	l.Entries = kept
	return removed
}

// EffectiveWeight is the scar's weight after fading: the recorded weight
// decays by rate per generation since it was earned. History is never
// rewritten; the fade lives here, at read time.
func (s *Scar) EffectiveWeight(currentGen int, rate float64) float64 {
	age := currentGen - s.Generation
	if age <= 0 {
		return s.Weight
	}
	return s.Weight * math.Pow(1-rate, float64(age))
}

// CooperationTendency derives the agent's probability of cooperating from
// trust and the effective scar evidence, weighted equally. A response
// counts as evidence only when it led to thriving or at least breaking
// even; being harmed is not evidence for repeating anything. With no
// usable evidence the scar half sits at the base rate, so a fresh agent
// with neutral trust lands at 0.5.
func (a *Agent) CooperationTendency(currentGen int, decayRate float64) float64 {
	if a.Corrupted {
		return CorruptedTendency
	}
	var coopW, defectW float64
	for i := range a.Scars.Entries {
		s := &a.Scars.Entries[i]
		if s.Outcome == OutcomeHarmed {
			continue
		}
		w := s.EffectiveWeight(currentGen, decayRate)
		if w <= EvidenceFloor {
			continue
		}
		if s.MyResponse == Cooperate {
			coopW += w
		} else {
			defectW += w
		}
	}
	evidence := BaseTendency
	if coopW+defectW > 0 {
		evidence = coopW / (coopW + defectW)
	}
	return clampUnit(0.5*evidence + 0.5*a.Trust)
}

// AdjustTrust shifts trust by delta, clamped to [0,1].
func (a *Agent) AdjustTrust(delta float64) {
	a.Trust = clampUnit(a.Trust + delta)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
