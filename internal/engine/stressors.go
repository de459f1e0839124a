// Stressors and interventions: scheduled mutations applied before pairing.
// Scarcity holds as an ambient level until the next scarcity entry; the
// other shocks fire once.
// See design doc Section 6.1.
package engine

import (
	"math"

	"github.com/talgya/crucible/internal/agents"
)

// applyStressors runs every stressor scheduled for this generation.
func (s *Scheduler) applyStressors(gen int) {
	for _, ev := range s.cfg.Stressors {
		if ev.Generation != gen {
			continue
		}
		switch ev.Type {
		case StressScarcity:
			s.scarcity = ev.Magnitude
			s.emit(gen, "stressor", "scarcity set to %.2f", ev.Magnitude)
		case StressCorruption:
			s.applyCorruption(gen, ev.Magnitude)
		case StressInvasion:
			s.applyInvasion(gen, ev.Magnitude)
		case StressCulturalWipe:
			s.applyCulturalWipe(gen, ev.Magnitude)
		}
	}
}

// applyCorruption flips a fraction of the ordinary live agents hostile.
// Teachers hold the line; the corrupted fall back to naive.
func (s *Scheduler) applyCorruption(gen int, magnitude float64) {
	var candidates []*agents.Agent
	for _, a := range s.pop.Live() {
		if a.Corrupted || a.TeachingCapable() {
			continue
		}
		candidates = append(candidates, a)
	}
	if len(candidates) == 0 {
		return
	}

	count := int(math.Ceil(magnitude * float64(len(candidates))))
	if count > len(candidates) {
		count = len(candidates)
	}
	rng := s.streams.Stress
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	for _, a := range candidates[:count] {
		a.Corrupted = true
		a.Role = agents.RoleNaive
	}
	s.emit(gen, "stressor", "corruption turned %d agents", count)
}

// applyInvasion injects corrupted outsiders sized against the live count.
func (s *Scheduler) applyInvasion(gen int, magnitude float64) {
	count := int(math.Ceil(magnitude * float64(len(s.pop.Live()))))
	for i := 0; i < count; i++ {
		s.pop.Add(s.spawner.SpawnInvader(gen))
	}
	s.emit(gen, "stressor", "invasion added %d hostiles", count)
}

// applyCulturalWipe erases a fraction of every live agent's scars.
func (s *Scheduler) applyCulturalWipe(gen int, magnitude float64) {
	rng := s.streams.Stress
	erased := 0
	for _, a := range s.pop.Live() {
		erased += a.Scars.Forget(magnitude, rng)
	}
	s.emit(gen, "stressor", "cultural wipe erased %d scars", erased)
}

// applyInterventions runs every intervention scheduled for this generation.
func (s *Scheduler) applyInterventions(gen int) {
	for _, ev := range s.cfg.Interventions {
		if ev.Generation != gen {
			continue
		}
		switch ev.Action {
		case InterventionInject:
			for i := 0; i < ev.Count; i++ {
				injected := s.spawner.SpawnFounders(ev.Role, 1)[0]
				injected.BornGeneration = gen
				s.pop.Add(injected)
			}
			s.emit(gen, "intervention", "injected %d %s agents", ev.Count, ev.Role)
		case InterventionRemove:
			removed := s.removeByRole(ev.Role, ev.Count)
			s.emit(gen, "intervention", "removed %d %s agents", removed, ev.Role)
		}
	}
}

// removeByRole retires up to count live agents of the given role, chosen
// from the stress stream. Returns how many actually went.
func (s *Scheduler) removeByRole(role agents.Role, count int) int {
	var matches []*agents.Agent
	for _, a := range s.pop.Live() {
		if a.Role == role {
			matches = append(matches, a)
		}
	}
	if len(matches) == 0 {
		return 0
	}
	rng := s.streams.Stress
	rng.Shuffle(len(matches), func(i, j int) {
		matches[i], matches[j] = matches[j], matches[i]
	})
	if count > len(matches) {
		count = len(matches)
	}
	for _, a := range matches[:count] {
		a.Alive = false
	}
	return count
}
