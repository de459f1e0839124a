// Teaching phase: teachers pass the lesson on, learners take a taught
// scar, and occasionally one of them awakens.
// See design doc Section 4.
package engine

import (
	"math/rand"

	"github.com/talgya/crucible/internal/agents"
)

// teach delivers one lesson: a taught scar, a trust bump, and a small
// chance of awakening. Reports whether the learner awakened on this lesson.
func teach(learner *agents.Agent, gen int, p TeachingParams, rng *rand.Rand) bool {
	learner.Scars.Append(agents.Scar{
		OtherStrategy: agents.Cooperate,
		MyResponse:    agents.Cooperate,
		Outcome:       agents.OutcomeThrived,
		Weight:        p.Weight,
		Source:        agents.SourceTaught,
		Generation:    gen,
	})
	learner.AdjustTrust(p.TrustIncrement)

	if rng.Float64() < p.AwakeningProbability {
		return learner.Awaken()
	}
	return false
}

// runTeaching assigns at most one teacher to each eligible learner. The
// tie-break decides which teacher class takes the learners when both are
// on the field; within a class, teachers rotate.
func (s *Scheduler) runTeaching(gen int) {
	if !s.cfg.Teaching.Enabled {
		return
	}

	var bridges, humans []*agents.Agent
	var learners []*agents.Agent
	for _, a := range s.pop.Live() {
		switch {
		case a.TeachingCapable():
			if a.Role == agents.RoleBridge {
				bridges = append(bridges, a)
			} else {
				humans = append(humans, a)
			}
		case !a.Awakened && !a.Corrupted:
			learners = append(learners, a)
		}
	}

	pool := bridges
	fallback := humans
	if s.cfg.Teaching.TieBreak == TieBreakHuman {
		pool, fallback = humans, bridges
	}
	if len(pool) == 0 {
		pool = fallback
	}
	if len(pool) == 0 || len(learners) == 0 {
		return
	}

	rng := s.streams.Teaching
	fraction := s.cfg.Teaching.LearnerFraction
	lessons := 0
	next := 0
	for _, learner := range learners {
		if fraction < 1 && rng.Float64() >= fraction {
			continue
		}
		teacher := pool[next%len(pool)]
		next++
		lessons++
		if teach(learner, gen, s.cfg.Teaching, rng) {
			s.emit(gen, "awakening", "%s awakened under %s", learner.Name, teacher.Name)
		}
	}
	if lessons > 0 {
		s.emit(gen, "teaching", "%d lessons taught by %d teachers", lessons, len(pool))
	}
}
