// Crucible bootstrap: forges crucible-tested founders through one-on-one
// dilemma duels against a coherent sparring partner before generation 0.
// See design doc Section 2.6.
package engine

import (
	"github.com/talgya/crucible/internal/agents"
	"github.com/talgya/crucible/internal/coherence"
)

// runCrucible puts each candidate through the duels. Scars land with
// negative generations, so the forged history arrives already fading.
// Candidates who come out below the viability floor lose the title and
// re-enter as naive, keeping whatever they learned.
func (s *Scheduler) runCrucible(candidates []*agents.Agent) {
	if len(candidates) == 0 {
		return
	}
	rounds := s.cfg.Crucible.Rounds
	rng := s.streams.Crucible

	failed := 0
	for _, c := range candidates {
		// The sparring partner answers in kind; holding cooperation
		// through the duels is what earns the title.
		partner := s.spawner.SpawnFounders(agents.RoleBridge, 1)[0]
		for r := 0; r < rounds; r++ {
			gen := r - rounds
			eff := evalEncounter(c, partner, gen, s.cfg.Payoff, 0, s.cfg.Trust, s.cfg.Decision, rng)
			eff.apply(c, partner)
		}
		if s.agentScore(c, 0) < coherence.ViabilityFloor {
			c.Role = agents.RoleNaive
			failed++
		}
	}
	s.emit(0, "crucible", "forged %d agents over %d rounds, %d failed", len(candidates)-failed, rounds, failed)
}
