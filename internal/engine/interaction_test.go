package engine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/talgya/crucible/internal/agents"
)

// fixedAgent returns an agent whose decision is pinned by corruption or
// awakening, so encounter tests control both moves exactly.
func fixedAgent(move agents.Move) *agents.Agent {
	if move == agents.Defect {
		return &agents.Agent{Trust: 0.5, Corrupted: true, Alive: true}
	}
	return &agents.Agent{Trust: 0.5, Awakened: true, Role: agents.RoleHumanTeacher, Alive: true}
}

func evalFixed(t *testing.T, ma, mb agents.Move, scarcity float64) (encounterEffects, *agents.Agent, *agents.Agent) {
	t.Helper()
	a, b := fixedAgent(ma), fixedAgent(mb)
	rng := rand.New(rand.NewSource(1))
	eff := evalEncounter(a, b, 3, DefaultPayoff(), scarcity, DefaultTrust(), agents.DefaultDecisionParams(), rng)
	if eff.moveA != ma || eff.moveB != mb {
		t.Fatalf("pinned moves drifted: want %v/%v, got %v/%v", ma, mb, eff.moveA, eff.moveB)
	}
	return eff, a, b
}

func TestEncounterOutcomes(t *testing.T) {
	// Mutual cooperation beats the baseline on both sides.
	eff, _, _ := evalFixed(t, agents.Cooperate, agents.Cooperate, 0)
	if eff.scarA.Outcome != agents.OutcomeThrived || eff.scarB.Outcome != agents.OutcomeThrived {
		t.Fatalf("mutual cooperation should thrive: %v/%v", eff.scarA.Outcome, eff.scarB.Outcome)
	}

	// Mutual defection is the baseline itself.
	eff, _, _ = evalFixed(t, agents.Defect, agents.Defect, 0)
	if eff.scarA.Outcome != agents.OutcomeNeutral || eff.scarB.Outcome != agents.OutcomeNeutral {
		t.Fatalf("mutual defection should break even: %v/%v", eff.scarA.Outcome, eff.scarB.Outcome)
	}

	// Exploitation: the defector thrives, the cooperator is harmed.
	eff, _, _ = evalFixed(t, agents.Cooperate, agents.Defect, 0)
	if eff.scarA.Outcome != agents.OutcomeHarmed || eff.scarB.Outcome != agents.OutcomeThrived {
		t.Fatalf("exploitation misclassified: %v/%v", eff.scarA.Outcome, eff.scarB.Outcome)
	}
}

func TestEncounterScars(t *testing.T) {
	eff, a, b := evalFixed(t, agents.Cooperate, agents.Defect, 0)
	eff.apply(a, b)

	if a.Scars.Len() != 1 || b.Scars.Len() != 1 {
		t.Fatal("both sides record the encounter")
	}
	sa, sb := a.Scars.Entries[0], b.Scars.Entries[0]
	if sa.OtherStrategy != agents.Defect || sa.MyResponse != agents.Cooperate {
		t.Fatalf("scar misrecorded for a: %+v", sa)
	}
	if sb.OtherStrategy != agents.Cooperate || sb.MyResponse != agents.Defect {
		t.Fatalf("scar misrecorded for b: %+v", sb)
	}
	if sa.Weight != agents.WeightHarmed || sb.Weight != agents.WeightThrived {
		t.Fatalf("scar weights: got %v/%v", sa.Weight, sb.Weight)
	}
	if sa.Source != agents.SourceExperienced || sa.Generation != 3 {
		t.Fatalf("scar metadata: %+v", sa)
	}
}

func TestEncounterTrustSteps(t *testing.T) {
	tp := DefaultTrust()

	eff, a, b := evalFixed(t, agents.Cooperate, agents.Cooperate, 0)
	before := a.Trust
	eff.apply(a, b)
	if math.Abs(a.Trust-(before+tp.Gain)) > 1e-12 {
		t.Fatalf("mutual cooperation should add %v trust, got %v -> %v", tp.Gain, before, a.Trust)
	}

	eff, a, b = evalFixed(t, agents.Cooperate, agents.Defect, 0)
	before, beforeB := a.Trust, b.Trust
	eff.apply(a, b)
	if math.Abs(a.Trust-(before-tp.Loss)) > 1e-12 {
		t.Fatalf("being exploited should cost %v trust, got %v -> %v", tp.Loss, before, a.Trust)
	}
	if b.Trust != beforeB {
		t.Fatalf("the exploiter's trust should not move, got %v -> %v", beforeB, b.Trust)
	}

	eff, a, b = evalFixed(t, agents.Defect, agents.Defect, 0)
	before = a.Trust
	eff.apply(a, b)
	if a.Trust != before {
		t.Fatal("mutual defection should leave trust alone")
	}
}

func TestScarcityBias(t *testing.T) {
	m := DefaultPayoff()

	// Unbiased when scarcity is zero.
	if m.biased(0) != m {
		t.Fatal("zero scarcity must not bias the matrix")
	}

	b := m.biased(0.5)
	if b.Reward >= m.Reward {
		t.Fatalf("scarcity should cut cooperation payoffs: %v -> %v", m.Reward, b.Reward)
	}
	if b.Temptation <= m.Temptation {
		t.Fatalf("scarcity should amplify defection payoffs: %v -> %v", m.Temptation, b.Temptation)
	}
	if b.Punishment != m.Punishment {
		t.Fatal("the baseline must hold still under scarcity")
	}

	// Severe scarcity flips mutual cooperation below the baseline:
	// reward 3 * (1-0.9) = 0.3 against punishment 1.
	eff, _, _ := evalFixed(t, agents.Cooperate, agents.Cooperate, 0.9)
	if eff.scarA.Outcome != agents.OutcomeHarmed {
		t.Fatalf("under severe scarcity mutual cooperation should harm, got %v", eff.scarA.Outcome)
	}
}

func TestRunInteractionsDeterministicAcrossWorkers(t *testing.T) {
	run := func(workers int) *Result {
		cfg := DefaultConfig()
		cfg.Population = RoleCounts{Naive: 60, CrucibleTested: 20, Bridge: 2}
		cfg.MaxGenerations = 20
		cfg.Workers = workers
		res, err := Run(cfg)
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		return res
	}

	serial := run(0)
	pooled := run(4)
	if len(serial.Records) != len(pooled.Records) {
		t.Fatalf("trace lengths differ: %d vs %d", len(serial.Records), len(pooled.Records))
	}
	for i := range serial.Records {
		if serial.Records[i] != pooled.Records[i] {
			t.Fatalf("generation %d differs across worker counts:\n%+v\n%+v",
				i, serial.Records[i], pooled.Records[i])
		}
	}
	if serial.TerminalState != pooled.TerminalState {
		t.Fatalf("terminal states differ: %v vs %v", serial.TerminalState, pooled.TerminalState)
	}
}
