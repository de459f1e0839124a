package engine

import (
	"math/rand"
	"testing"

	"github.com/talgya/crucible/internal/agents"
)

func testPopulation(t *testing.T, counts RoleCounts) []*agents.Agent {
	t.Helper()
	sp := agents.NewSpawner(17)
	var live []*agents.Agent
	live = append(live, sp.SpawnFounders(agents.RoleNaive, counts.Naive)...)
	live = append(live, sp.SpawnFounders(agents.RoleCrucibleTested, counts.CrucibleTested)...)
	live = append(live, sp.SpawnFounders(agents.RoleBridge, counts.Bridge)...)
	live = append(live, sp.SpawnFounders(agents.RoleHumanTeacher, counts.HumanTeacher)...)
	return live
}

// assertDegreeAtMostOne checks that no agent appears in two pairs and that
// pair membership is sane.
func assertDegreeAtMostOne(t *testing.T, live []*agents.Agent, pairs []Pair) {
	t.Helper()
	seen := make(map[agents.AgentID]bool)
	for _, p := range pairs {
		if p.A == nil || p.B == nil {
			t.Fatal("pair with a missing agent")
		}
		if p.A == p.B {
			t.Fatalf("agent %d paired with itself", p.A.ID)
		}
		if seen[p.A.ID] {
			t.Fatalf("agent %d drawn twice", p.A.ID)
		}
		if seen[p.B.ID] {
			t.Fatalf("agent %d drawn twice", p.B.ID)
		}
		seen[p.A.ID] = true
		seen[p.B.ID] = true
	}
	want := len(live) / 2
	if len(pairs) != want {
		t.Fatalf("want %d pairs from %d agents, got %d", want, len(live), len(pairs))
	}
}

func TestPairingDegreeAllPolicies(t *testing.T) {
	for _, policy := range []PairingPolicy{PairRandom, PairAssortative, PairRoundRobin} {
		for _, n := range []int{2, 7, 20, 51} {
			live := testPopulation(t, RoleCounts{Naive: n - n/3, CrucibleTested: n / 3})
			rng := rand.New(rand.NewSource(5))
			for gen := 0; gen < 4; gen++ {
				pairs := pairAgents(live, policy, gen, rng)
				assertDegreeAtMostOne(t, live, pairs)
			}
		}
	}
}

func TestPairingTinyPopulations(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	if pairs := pairAgents(nil, PairRandom, 0, rng); pairs != nil {
		t.Fatalf("no agents, no pairs, got %d", len(pairs))
	}
	one := testPopulation(t, RoleCounts{Naive: 1})
	for _, policy := range []PairingPolicy{PairRandom, PairAssortative, PairRoundRobin} {
		if pairs := pairAgents(one, policy, 0, rng); len(pairs) != 0 {
			t.Fatalf("a single agent cannot pair, got %d pairs under %v", len(pairs), policy)
		}
	}
}

func TestRoundRobinMeetsEveryone(t *testing.T) {
	live := testPopulation(t, RoleCounts{Naive: 8})
	met := make(map[agents.AgentID]map[agents.AgentID]int)
	for _, a := range live {
		met[a.ID] = make(map[agents.AgentID]int)
	}

	// Over n-1 generations the circle schedule covers every pairing once.
	for gen := 0; gen < len(live)-1; gen++ {
		pairs := pairRoundRobin(live, gen)
		for _, p := range pairs {
			met[p.A.ID][p.B.ID]++
			met[p.B.ID][p.A.ID]++
		}
	}
	for _, a := range live {
		for _, b := range live {
			if a.ID == b.ID {
				continue
			}
			if met[a.ID][b.ID] != 1 {
				t.Fatalf("agents %d and %d met %d times, want exactly once",
					a.ID, b.ID, met[a.ID][b.ID])
			}
		}
	}
}

func TestRoundRobinOddSitsOut(t *testing.T) {
	live := testPopulation(t, RoleCounts{Naive: 7})
	satOut := make(map[agents.AgentID]int)
	for gen := 0; gen < 7; gen++ {
		pairs := pairRoundRobin(live, gen)
		if len(pairs) != 3 {
			t.Fatalf("7 agents should yield 3 pairs, got %d", len(pairs))
		}
		drawn := make(map[agents.AgentID]bool)
		for _, p := range pairs {
			drawn[p.A.ID] = true
			drawn[p.B.ID] = true
		}
		for _, a := range live {
			if !drawn[a.ID] {
				satOut[a.ID]++
			}
		}
	}
	// Over a full cycle everyone sits out exactly once.
	for _, a := range live {
		if satOut[a.ID] != 1 {
			t.Fatalf("agent %d sat out %d times over the cycle, want 1", a.ID, satOut[a.ID])
		}
	}
}

func TestAssortativePrefersSameRole(t *testing.T) {
	live := testPopulation(t, RoleCounts{Naive: 10, CrucibleTested: 10, Bridge: 4})
	rng := rand.New(rand.NewSource(5))
	pairs := pairAssortative(live, rng)
	assertDegreeAtMostOne(t, live, pairs)

	// Even group sizes per role: every pair should match roles exactly.
	for _, p := range pairs {
		if p.A.Role != p.B.Role {
			t.Fatalf("assortative pairing crossed roles with even groups: %v vs %v",
				p.A.Role, p.B.Role)
		}
	}

	// With odd groups the leftovers still pair across roles.
	odd := testPopulation(t, RoleCounts{Naive: 5, CrucibleTested: 5})
	pairs = pairAssortative(odd, rng)
	assertDegreeAtMostOne(t, odd, pairs)
}

func TestPairRandomDeterministic(t *testing.T) {
	live := testPopulation(t, RoleCounts{Naive: 20})
	p1 := pairRandom(live, rand.New(rand.NewSource(9)))
	p2 := pairRandom(live, rand.New(rand.NewSource(9)))
	for i := range p1 {
		if p1[i].A.ID != p2[i].A.ID || p1[i].B.ID != p2[i].B.ID {
			t.Fatalf("same seed should reproduce the schedule, diverged at pair %d", i)
		}
	}
}
