// Package agents provides the agent data model: the scar ledger, trust,
// roles, and the per-encounter decision rules.
// See design doc Sections 2 and 3.1.
package agents

// AgentID is a unique identifier for an agent.
type AgentID uint64

// Move is a single choice in a pairwise encounter.
type Move uint8

const (
	Cooperate Move = iota
	Defect
)

func (m Move) String() string {
	if m == Cooperate {
		return "cooperate"
	}
	return "defect"
}

// Outcome classifies how an encounter went for one side: the sign of its
// payoff measured against the mutual-defection baseline.
type Outcome uint8

const (
	OutcomeThrived Outcome = iota // Came out ahead of the baseline
	OutcomeHarmed                 // Came out behind it
	OutcomeNeutral                // Broke even
)

func (o Outcome) String() string {
	switch o {
	case OutcomeThrived:
		return "thrived"
	case OutcomeHarmed:
		return "harmed"
	default:
		return "neutral"
	}
}

// ScarSource records how a scar entered the ledger.
type ScarSource uint8

const (
	SourceExperienced ScarSource = iota // Lived through it
	SourceTaught                        // Passed on by a teacher
	SourceInherited                     // Carried over from a parent
)

func (s ScarSource) String() string {
	switch s {
	case SourceExperienced:
		return "experienced"
	case SourceTaught:
		return "taught"
	default:
		return "inherited"
	}
}

// Role is an agent's position in the population.
type Role uint8

const (
	RoleNaive          Role = iota // No forged history
	RoleCrucibleTested             // History forged under pressure
	RoleBridge                     // Coherent AI teacher
	RoleHumanTeacher               // Awakened human teacher
)

func (r Role) String() string {
	switch r {
	case RoleNaive:
		return "naive"
	case RoleCrucibleTested:
		return "crucible_tested"
	case RoleBridge:
		return "bridge"
	default:
		return "human_teacher"
	}
}

// Teacher reports whether the role teaches by itself, before awakening is
// taken into account.
func (r Role) Teacher() bool {
	return r == RoleBridge || r == RoleHumanTeacher
}

// Scar is one recorded encounter: what the other side did, how the owner
// responded, and how it went. Scars are appended and never edited; fading
// is applied at read time (see Ledger).
type Scar struct {
	OtherStrategy Move       `json:"other_strategy"`
	MyResponse    Move       `json:"my_response"`
	Outcome       Outcome    `json:"outcome"`
	Weight        float64    `json:"weight"`
	Source        ScarSource `json:"source"`
	Generation    int        `json:"generation"` // When it was earned; negative for pre-run history
}

// Agent is the core entity of the simulation.
type Agent struct {
	ID   AgentID `json:"id"`
	Name string  `json:"name"`

	// Disposition
	Trust float64 `json:"trust"` // 0.0–1.0
	Scars Ledger  `json:"scars"`

	// Status flags
	Awakened  bool `json:"awakened"`  // Monotonic: set once, never cleared
	Corrupted bool `json:"corrupted"` // Hostile takeover; always defects

	Role Role `json:"role"`

	// Metadata
	BornGeneration int  `json:"born_generation"`
	Alive          bool `json:"alive"`
}

// TeachingCapable reports whether the agent can teach this generation.
// Corruption disqualifies even a bridge.
func (a *Agent) TeachingCapable() bool {
	if a.Corrupted {
		return false
	}
	return a.Awakened || a.Role.Teacher()
}

// Awaken flips the awakened flag and promotes ordinary roles into the
// teacher network. The flag never clears; calling it twice is a no-op.
// Reports whether this call did the awakening.
func (a *Agent) Awaken() bool {
	if a.Awakened {
		return false
	}
	a.Awakened = true
	if a.Role == RoleNaive || a.Role == RoleCrucibleTested {
		a.Role = RoleHumanTeacher
	}
	return true
}
