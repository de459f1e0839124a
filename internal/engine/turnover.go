// Lifecycle turnover: viability deaths and births, run in the aggregation
// phase when a scenario opts in.
// See design doc Section 2.5.
package engine

import (
	"github.com/talgya/crucible/internal/agents"
	"github.com/talgya/crucible/internal/coherence"
)

// agentScore derives one agent's coherence at the given generation.
func (s *Scheduler) agentScore(a *agents.Agent, gen int) float64 {
	tendency := a.CooperationTendency(gen, s.cfg.Decision.DecayRate)
	return s.cfg.Coherence.AgentScore(a.Trust, tendency)
}

// runTurnover retires agents below the viability floor and births children
// from viable parent pairs, capped at max population.
func (s *Scheduler) runTurnover(gen int) {
	if !s.cfg.Lifecycle.Enabled {
		return
	}

	live := s.pop.Live()
	deaths := 0
	var parents []*agents.Agent
	for _, a := range live {
		score := s.agentScore(a, gen)
		if score < coherence.ViabilityFloor {
			a.Alive = false
			deaths++
			continue
		}
		if score > coherence.ParentFloor && !a.Corrupted {
			parents = append(parents, a)
		}
	}

	births := 0
	if len(parents) >= 2 && s.cfg.Lifecycle.BirthRate > 0 {
		want := int(float64(len(parents)) * s.cfg.Lifecycle.BirthRate)
		room := s.cfg.Lifecycle.MaxPopulation - (len(live) - deaths)
		if want > room {
			want = room
		}
		rng := s.streams.Turnover
		for i := 0; i < want; i++ {
			p1 := parents[rng.Intn(len(parents))]
			p2 := parents[rng.Intn(len(parents))]
			for p2 == p1 {
				p2 = parents[rng.Intn(len(parents))]
			}
			s.pop.Add(s.spawner.SpawnChild(p1, p2, gen, s.cfg.Lifecycle.InheritWeight))
			births++
		}
	}

	if deaths > 0 || births > 0 {
		s.emit(gen, "lifecycle", "%d deaths, %d births", deaths, births)
	}
}
