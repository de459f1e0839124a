// Interaction phase: pairwise dilemma play. Encounters are evaluated
// against frozen population state and committed in pair order, so a worker
// pool of any size produces the identical run.
// See design doc Section 3.
package engine

import (
	"math/rand"
	"sync"

	"github.com/talgya/crucible/internal/agents"
)

// encounterEffects buffers everything one dilemma play does to its two
// agents. Nothing touches the agents until apply.
type encounterEffects struct {
	moveA, moveB agents.Move
	scarA, scarB agents.Scar
	dTrustA      float64
	dTrustB      float64
}

// biased returns the matrix under scarcity pressure: cooperation pays less,
// defection pays more, and the mutual-defect baseline holds still so
// outcome classification keeps its reference point.
func (m PayoffMatrix) biased(scarcity float64) PayoffMatrix {
	if scarcity <= 0 {
		return m
	}
	return PayoffMatrix{
		Reward:     m.Reward * (1 - scarcity),
		Sucker:     m.Sucker * (1 - scarcity),
		Temptation: m.Temptation * (1 + 2*scarcity),
		Punishment: m.Punishment,
	}
}

// payoffs returns (payoff for a, payoff for b) given the two moves.
func (m PayoffMatrix) payoffs(a, b agents.Move) (float64, float64) {
	switch {
	case a == agents.Cooperate && b == agents.Cooperate:
		return m.Reward, m.Reward
	case a == agents.Defect && b == agents.Defect:
		return m.Punishment, m.Punishment
	case a == agents.Defect:
		return m.Temptation, m.Sucker
	default:
		return m.Sucker, m.Temptation
	}
}

// classify maps a payoff to an outcome by its sign against the baseline.
func classify(payoff, baseline float64) agents.Outcome {
	switch {
	case payoff > baseline:
		return agents.OutcomeThrived
	case payoff < baseline:
		return agents.OutcomeHarmed
	default:
		return agents.OutcomeNeutral
	}
}

// evalEncounter plays one dilemma round between a and b. Both agents are
// read-only here; the returned effects carry the scars and trust deltas.
func evalEncounter(a, b *agents.Agent, gen int, pay PayoffMatrix, scarcity float64, tp TrustParams, dp agents.DecisionParams, rng *rand.Rand) encounterEffects {
	moveA := agents.Decide(a, b, gen, dp, rng)
	moveB := agents.Decide(b, a, gen, dp, rng)

	m := pay.biased(scarcity)
	payA, payB := m.payoffs(moveA, moveB)
	outA := classify(payA, m.Punishment)
	outB := classify(payB, m.Punishment)

	eff := encounterEffects{
		moveA: moveA,
		moveB: moveB,
		scarA: agents.Scar{
			OtherStrategy: moveB,
			MyResponse:    moveA,
			Outcome:       outA,
			Weight:        agents.ExperienceWeight(outA),
			Source:        agents.SourceExperienced,
			Generation:    gen,
		},
		scarB: agents.Scar{
			OtherStrategy: moveA,
			MyResponse:    moveB,
			Outcome:       outB,
			Weight:        agents.ExperienceWeight(outB),
			Source:        agents.SourceExperienced,
			Generation:    gen,
		},
	}

	// Fixed trust steps: mutual cooperation builds it, being exploited
	// burns it, everything else leaves it alone.
	switch {
	case moveA == agents.Cooperate && moveB == agents.Cooperate:
		eff.dTrustA = tp.Gain
		eff.dTrustB = tp.Gain
	case moveA == agents.Cooperate && moveB == agents.Defect:
		eff.dTrustA = -tp.Loss
	case moveA == agents.Defect && moveB == agents.Cooperate:
		eff.dTrustB = -tp.Loss
	}

	return eff
}

// apply commits the buffered effects to the two agents.
func (e encounterEffects) apply(a, b *agents.Agent) {
	a.Scars.Append(e.scarA)
	b.Scars.Append(e.scarB)
	if e.dTrustA != 0 {
		a.AdjustTrust(e.dTrustA)
	}
	if e.dTrustB != 0 {
		b.AdjustTrust(e.dTrustB)
	}
}

// cooperativeMoves counts how many of the two moves cooperated.
func (e encounterEffects) cooperativeMoves() int {
	n := 0
	if e.moveA == agents.Cooperate {
		n++
	}
	if e.moveB == agents.Cooperate {
		n++
	}
	return n
}

// runInteractions evaluates every pair and commits effects in pair order.
// Each pair draws from its own derived RNG, so the trace is identical for
// any worker count. Returns cooperative moves and total moves.
func (s *Scheduler) runInteractions(pairs []Pair, gen int, scarcity float64) (coop, moves int) {
	if len(pairs) == 0 {
		return 0, 0
	}
	results := make([]encounterEffects, len(pairs))

	eval := func(i int) {
		rng := rand.New(rand.NewSource(s.streams.PairSeed(gen, i)))
		results[i] = evalEncounter(
			pairs[i].A, pairs[i].B, gen,
			s.cfg.Payoff, scarcity, s.cfg.Trust, s.cfg.Decision, rng,
		)
	}

	workers := s.cfg.Workers
	if workers <= 1 || len(pairs) < 2 {
		for i := range pairs {
			eval(i)
		}
	} else {
		if workers > len(pairs) {
			workers = len(pairs)
		}
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					eval(i)
				}
			}()
		}
		for i := range pairs {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	for i := range results {
		results[i].apply(pairs[i].A, pairs[i].B)
		coop += results[i].cooperativeMoves()
		moves += 2
	}
	return coop, moves
}
