// Pairing phase: draws this generation's encounter schedule. Every policy
// yields each live agent at most once; with an odd count one agent sits the
// generation out.
// See design doc Section 5.2.
package engine

import (
	"math/rand"

	"github.com/talgya/crucible/internal/agents"
)

// Pair is one scheduled encounter.
type Pair struct {
	A, B *agents.Agent
}

func pairAgents(live []*agents.Agent, policy PairingPolicy, generation int, rng *rand.Rand) []Pair {
	if len(live) < 2 {
		return nil
	}
	switch policy {
	case PairAssortative:
		return pairAssortative(live, rng)
	case PairRoundRobin:
		return pairRoundRobin(live, generation)
	default:
		return pairRandom(live, rng)
	}
}

// pairRandom shuffles the whole population and pairs neighbours.
func pairRandom(live []*agents.Agent, rng *rand.Rand) []Pair {
	idx := rng.Perm(len(live))
	pairs := make([]Pair, 0, len(live)/2)
	for i := 0; i+1 < len(idx); i += 2 {
		pairs = append(pairs, Pair{A: live[idx[i]], B: live[idx[i+1]]})
	}
	return pairs
}

// pairAssortative pairs within each role first, then pairs the per-role
// leftovers across roles.
func pairAssortative(live []*agents.Agent, rng *rand.Rand) []Pair {
	byRole := make([][]*agents.Agent, agents.RoleHumanTeacher+1)
	for _, a := range live {
		byRole[a.Role] = append(byRole[a.Role], a)
	}

	pairs := make([]Pair, 0, len(live)/2)
	var leftovers []*agents.Agent
	for _, group := range byRole {
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})
		i := 0
		for ; i+1 < len(group); i += 2 {
			pairs = append(pairs, Pair{A: group[i], B: group[i+1]})
		}
		if i < len(group) {
			leftovers = append(leftovers, group[i])
		}
	}
	for i := 0; i+1 < len(leftovers); i += 2 {
		pairs = append(pairs, Pair{A: leftovers[i], B: leftovers[i+1]})
	}
	return pairs
}

// pairRoundRobin runs the classic circle schedule: the first slot is fixed,
// the rest rotate one step per generation, so over n-1 generations every
// agent meets every other exactly once. Odd counts add a hole; whoever
// draws it sits out.
func pairRoundRobin(live []*agents.Agent, generation int) []Pair {
	ring := make([]*agents.Agent, len(live), len(live)+1)
	copy(ring, live)
	if len(ring)%2 == 1 {
		ring = append(ring, nil)
	}
	m := len(ring)

	rot := generation % (m - 1)
	cur := make([]*agents.Agent, m)
	cur[0] = ring[0]
	for i := 1; i < m; i++ {
		cur[i] = ring[1+((i-1)+rot)%(m-1)]
	}

	pairs := make([]Pair, 0, m/2)
	for i := 0; i < m/2; i++ {
		a, b := cur[i], cur[m-1-i]
		if a == nil || b == nil {
			continue
		}
		pairs = append(pairs, Pair{A: a, B: b})
	}
	return pairs
}
