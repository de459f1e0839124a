// Agent spawning: founders per role, invaders, and children that inherit
// a dampened copy of their parents' scars.
// See design doc Section 2.4.
package agents

import (
	"math/rand"
)

// testedHistoryLen is how many synthetic scars a crucible-tested founder
// carries when the bootstrap duels are disabled.
const testedHistoryLen = 8

// Spawner creates agents for the simulation.
type Spawner struct {
	rng    *rand.Rand
	nextID AgentID
}

// NewSpawner creates an agent spawner with the given run seed. The spawner
// draws from its own stream so population layout never perturbs the
// simulation's other draws.
func NewSpawner(seed int64) *Spawner {
	return &Spawner{
		rng:    rand.New(rand.NewSource(seed + 300)),
		nextID: 1,
	}
}

// SpawnFounders creates the initial cohort for one role.
func (s *Spawner) SpawnFounders(role Role, count int) []*Agent {
	founders := make([]*Agent, 0, count)
	for i := 0; i < count; i++ {
		founders = append(founders, s.spawnOne(role))
	}
	return founders
}

func (s *Spawner) spawnOne(role Role) *Agent {
	id := s.nextID
	s.nextID++

	// Trust by role: ordinary founders cluster around neutral, teachers
	// start near the top.
	var trust float64
	awakened := false
	switch role {
	case RoleCrucibleTested:
		trust = 0.5 + s.rng.Float64()*0.2
	case RoleBridge:
		trust = 0.88 + s.rng.Float64()*0.08
	case RoleHumanTeacher:
		trust = 0.8 + s.rng.Float64()*0.1
		awakened = true
	default:
		trust = 0.4 + s.rng.Float64()*0.2
	}

	return &Agent{
		ID:             id,
		Name:           s.generateName(),
		Trust:          trust,
		Awakened:       awakened,
		Role:           role,
		BornGeneration: 0,
		Alive:          true,
	}
}

// SeedTestedHistory gives a crucible-tested founder a synthetic pre-run
// ledger: mostly cooperation that paid off, a little defection that broke
// even, one burn. Used when the bootstrap duels are disabled; the entries
// carry negative generations so they arrive already fading.
func (s *Spawner) SeedTestedHistory(a *Agent) {
	for i := 0; i < testedHistoryLen; i++ {
		gen := i - testedHistoryLen
		var scar Scar
		switch {
		case i%4 == 3:
			scar = Scar{
				OtherStrategy: Defect,
				MyResponse:    Defect,
				Outcome:       OutcomeNeutral,
				Weight:        WeightNeutral,
				Source:        SourceExperienced,
				Generation:    gen,
			}
		case i == 0:
			scar = Scar{
				OtherStrategy: Defect,
				MyResponse:    Cooperate,
				Outcome:       OutcomeHarmed,
				Weight:        WeightHarmed,
				Source:        SourceExperienced,
				Generation:    gen,
			}
		default:
			scar = Scar{
				OtherStrategy: Cooperate,
				MyResponse:    Cooperate,
				Outcome:       OutcomeThrived,
				Weight:        WeightThrived,
				Source:        SourceExperienced,
				Generation:    gen,
			}
		}
		a.Scars.Append(scar)
	}
}

// SpawnInvader creates a hostile agent injected by an invasion stressor.
// Invaders arrive corrupted and near-trustless.
func (s *Spawner) SpawnInvader(gen int) *Agent {
	id := s.nextID
	s.nextID++
	return &Agent{
		ID:             id,
		Name:           s.generateName(),
		Trust:          0.05 + s.rng.Float64()*0.1,
		Corrupted:      true,
		Role:           RoleNaive,
		BornGeneration: gen,
		Alive:          true,
	}
}

// SpawnChild creates a newborn from two viable parents. The child starts
// naive with trust halfway between nothing and the parents' average, and
// inherits the newest scars of both parents at inheritWeight of their
// recorded weight, up to half the ledger cap.
func (s *Spawner) SpawnChild(p1, p2 *Agent, gen int, inheritWeight float64) *Agent {
	id := s.nextID
	s.nextID++

	child := &Agent{
		ID:             id,
		Name:           s.generateName(),
		Trust:          clampUnit((p1.Trust + p2.Trust) / 2 * 0.5),
		Role:           RoleNaive,
		BornGeneration: gen,
		Alive:          true,
	}

	if inheritWeight > 0 {
		for _, scar := range inheritScars(p1, p2, gen, inheritWeight) {
			child.Scars.Append(scar)
		}
	}

	return child
}

// inheritScars interleaves the parents' ledgers newest-first so the child
// carries the freshest lessons of both lines.
func inheritScars(p1, p2 *Agent, gen int, inheritWeight float64) []Scar {
	limit := MaxScars / 2
	out := make([]Scar, 0, limit)
	i, j := len(p1.Scars.Entries)-1, len(p2.Scars.Entries)-1
	for len(out) < limit && (i >= 0 || j >= 0) {
		if i >= 0 {
			out = append(out, dampened(p1.Scars.Entries[i], gen, inheritWeight))
			i--
		}
		if j >= 0 && len(out) < limit {
			out = append(out, dampened(p2.Scars.Entries[j], gen, inheritWeight))
			j--
		}
	}
	// Reverse to oldest-first so the ledger keeps chronological order.
	for a, b := 0, len(out)-1; a < b; a, b = a+1, b-1 {
		out[a], out[b] = out[b], out[a]
	}
	return out
}

func dampened(s Scar, gen int, inheritWeight float64) Scar {
	return Scar{
		OtherStrategy: s.OtherStrategy,
		MyResponse:    s.MyResponse,
		Outcome:       s.Outcome,
		Weight:        s.Weight * inheritWeight,
		Source:        SourceInherited,
		Generation:    gen,
	}
}

func (s *Spawner) generateName() string {
	first := firstNames[s.rng.Intn(len(firstNames))]
	last := lastNames[s.rng.Intn(len(lastNames))]
	return first + " " + last
}

// Name pools for procedural generation.
var firstNames = []string{
	"Astrid", "Bram", "Calla", "Doran", "Eira", "Finn", "Greta",
	"Halvard", "Iris", "Jasper", "Katla", "Leif", "Mira", "Nils",
	"Olwen", "Per", "Runa", "Stellan", "Thea", "Ulric", "Vera",
	"Wren", "Yorick", "Zara",
}

var lastNames = []string{
	"Voss", "Ashford", "Dunmore", "Greenvale", "Frostborn", "Millward",
	"Ravenmoor", "Silverdale", "Stoneheart", "Brightwater", "Redforge",
	"Windholm", "Goldhaven", "Riverstone", "Holloway", "Farrow",
	"Caldwell", "Harper", "Mercer", "Ward",
}
