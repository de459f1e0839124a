// The generation scheduler strings the phases together and decides when
// a run is over.
// See design doc Section 5.1.
package engine

import (
	"encoding/json"
	"fmt"

	"github.com/talgya/crucible/internal/agents"
	"github.com/talgya/crucible/internal/entropy"
	"github.com/talgya/crucible/internal/environment"
)

// Phase is one step of the per-generation state machine.
type Phase uint8

const (
	PhasePairing Phase = iota
	PhaseInteracting
	PhaseTeaching
	PhaseAggregating
	PhaseEvaluating
)

func (p Phase) String() string {
	switch p {
	case PhasePairing:
		return "pairing"
	case PhaseInteracting:
		return "interacting"
	case PhaseTeaching:
		return "teaching"
	case PhaseAggregating:
		return "aggregating"
	default:
		return "evaluating"
	}
}

// RunState is the population's terminal condition.
type RunState uint8

const (
	StateOngoing RunState = iota
	StateCollapsed
	StateSurvived
)

func (s RunState) String() string {
	switch s {
	case StateCollapsed:
		return "COLLAPSED"
	case StateSurvived:
		return "SURVIVED"
	default:
		return "ONGOING"
	}
}

// ParseRunState maps stored strings back onto states.
func ParseRunState(s string) (RunState, error) {
	switch s {
	case "ONGOING":
		return StateOngoing, nil
	case "COLLAPSED":
		return StateCollapsed, nil
	case "SURVIVED":
		return StateSurvived, nil
	default:
		return StateOngoing, fmt.Errorf("unknown run state %q", s)
	}
}

// MarshalJSON encodes the state by name.
func (s RunState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a state encoded by name.
func (s *RunState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseRunState(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// GenerationRecord is the per-generation trace entry.
type GenerationRecord struct {
	Generation        int      `json:"generation"`
	PopulationSize    int      `json:"population_size"`
	CooperationPct    float64  `json:"cooperation_pct"`
	MeanCoherence     float64  `json:"mean_coherence"`
	CruciblePct       float64  `json:"crucible_pct"`
	TeacherNetworkPct float64  `json:"teacher_network_pct"`
	State             RunState `json:"state"`
}

// Event is a notable occurrence in the run.
type Event struct {
	Generation  int    `json:"generation"`
	Description string `json:"description"`
	Category    string `json:"category"` // "stressor", "intervention", "teaching", "awakening", "lifecycle", "crucible", "collapse"
}

// Result is a completed run: the full trace, the notable events, and how
// it ended.
type Result struct {
	Seed          int64              `json:"seed"`
	Records       []GenerationRecord `json:"records"`
	Events        []Event            `json:"events"`
	TerminalState RunState           `json:"terminal_state"`
}

// Final returns the last generation record, or a zero record for an empty
// trace.
func (r *Result) Final() GenerationRecord {
	if len(r.Records) == 0 {
		return GenerationRecord{}
	}
	return r.Records[len(r.Records)-1]
}

// Population holds the agent set. Retired agents stay in the slice with
// Alive cleared, so IDs and history remain inspectable after the run.
type Population struct {
	Agents []*agents.Agent
}

// Live returns the living agents in stable insertion order.
func (p *Population) Live() []*agents.Agent {
	live := make([]*agents.Agent, 0, len(p.Agents))
	for _, a := range p.Agents {
		if a.Alive {
			live = append(live, a)
		}
	}
	return live
}

// Add appends an agent to the population.
func (p *Population) Add(a *agents.Agent) {
	p.Agents = append(p.Agents, a)
}

// Scheduler advances a population generation by generation.
type Scheduler struct {
	cfg     Config
	pop     *Population
	streams *entropy.Streams
	spawner *agents.Spawner
	field   *environment.Field

	phase       Phase
	scarcity    float64 // Ambient level set by the latest scarcity stressor
	belowStreak int     // Consecutive generations under the threshold
	events      []Event
}

// New builds a scheduler for the config, spawning founders and running the
// crucible bootstrap. Returns an ErrConfig-wrapped error on a bad config.
func New(cfg Config) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Scheduler{
		cfg:     cfg,
		pop:     &Population{},
		streams: entropy.NewStreams(cfg.Seed),
		spawner: agents.NewSpawner(cfg.Seed),
		field:   environment.New(cfg.Seed+entropy.OffsetEnvironment, cfg.Environment),
	}

	founders := []struct {
		role  agents.Role
		count int
	}{
		{agents.RoleNaive, cfg.Population.Naive},
		{agents.RoleCrucibleTested, cfg.Population.CrucibleTested},
		{agents.RoleBridge, cfg.Population.Bridge},
		{agents.RoleHumanTeacher, cfg.Population.HumanTeacher},
	}
	var tested []*agents.Agent
	for _, f := range founders {
		cohort := s.spawner.SpawnFounders(f.role, f.count)
		if f.role == agents.RoleCrucibleTested {
			tested = cohort
		}
		for _, a := range cohort {
			s.pop.Add(a)
		}
	}

	if cfg.Crucible.Enabled {
		s.runCrucible(tested)
	} else {
		for _, a := range tested {
			s.spawner.SeedTestedHistory(a)
		}
	}

	return s, nil
}

// Run builds a scheduler for the config and drives it to a terminal state.
func Run(cfg Config) (*Result, error) {
	s, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return s.Run(), nil
}

// Run drives the scheduler until collapse or the generation cap and
// returns the full trace. The run seed replays it exactly.
func (s *Scheduler) Run() *Result {
	records := make([]GenerationRecord, 0, s.cfg.MaxGenerations)
	terminal := StateSurvived
	for gen := 0; gen < s.cfg.MaxGenerations; gen++ {
		rec := s.step(gen)
		records = append(records, rec)
		if rec.State != StateOngoing {
			terminal = rec.State
			break
		}
	}
	return &Result{
		Seed:          s.cfg.Seed,
		Records:       records,
		Events:        s.events,
		TerminalState: terminal,
	}
}

// Phase returns the phase the scheduler is currently in.
func (s *Scheduler) Phase() Phase {
	return s.phase
}

// Events returns the events emitted so far.
func (s *Scheduler) Events() []Event {
	return s.events
}

// step runs one full generation and returns its record.
func (s *Scheduler) step(gen int) GenerationRecord {
	// Scheduled mutations land before pairing.
	s.applyStressors(gen)
	s.applyInterventions(gen)
	scarcity := clampunit(s.scarcity + s.field.Sample(gen))

	s.phase = PhasePairing
	live := s.pop.Live()
	if len(live) == 0 {
		s.emit(gen, "collapse", "population empty")
		return GenerationRecord{Generation: gen, State: StateCollapsed}
	}
	pairs := pairAgents(live, s.cfg.Pairing, gen, s.streams.Pairing)

	s.phase = PhaseInteracting
	coop, moves := s.runInteractions(pairs, gen, scarcity)

	s.phase = PhaseTeaching
	s.runTeaching(gen)

	s.phase = PhaseAggregating
	s.runTurnover(gen)
	rec := s.aggregate(gen, coop, moves)

	s.phase = PhaseEvaluating
	rec.State = s.evaluate(gen, rec)
	return rec
}

// aggregate computes the generation record from the post-turnover
// population.
func (s *Scheduler) aggregate(gen, coop, moves int) GenerationRecord {
	live := s.pop.Live()
	rec := GenerationRecord{
		Generation:     gen,
		PopulationSize: len(live),
		State:          StateOngoing,
	}
	if moves > 0 {
		rec.CooperationPct = 100 * float64(coop) / float64(moves)
	}
	if len(live) == 0 {
		return rec
	}

	scores := make([]float64, len(live))
	trusts := make([]float64, len(live))
	tendencies := make([]float64, len(live))
	crucible, teachers := 0, 0
	for i, a := range live {
		tendencies[i] = a.CooperationTendency(gen, s.cfg.Decision.DecayRate)
		trusts[i] = a.Trust
		scores[i] = s.cfg.Coherence.AgentScore(a.Trust, tendencies[i])
		if a.Role == agents.RoleCrucibleTested {
			crucible++
		}
		if a.TeachingCapable() {
			teachers++
		}
	}
	rec.MeanCoherence = s.cfg.Coherence.PopulationScore(scores, trusts, tendencies)
	rec.CruciblePct = 100 * float64(crucible) / float64(len(live))
	rec.TeacherNetworkPct = 100 * float64(teachers) / float64(len(live))
	return rec
}

// evaluate applies the collapse rule and the generation cap.
func (s *Scheduler) evaluate(gen int, rec GenerationRecord) RunState {
	if rec.PopulationSize == 0 {
		s.emit(gen, "collapse", "population empty")
		return StateCollapsed
	}

	signal := rec.MeanCoherence
	if s.cfg.Stability.Signal == SignalCooperation {
		signal = rec.CooperationPct / 100
	}
	if signal < s.cfg.Stability.Threshold {
		s.belowStreak++
	} else {
		s.belowStreak = 0
	}

	if s.belowStreak >= s.cfg.Stability.Grace {
		s.emit(gen, "collapse", "%s signal below %.3f for %d generations",
			s.cfg.Stability.Signal, s.cfg.Stability.Threshold, s.belowStreak)
		return StateCollapsed
	}
	if gen == s.cfg.MaxGenerations-1 {
		return StateSurvived
	}
	return StateOngoing
}

// emit records a notable event.
func (s *Scheduler) emit(gen int, category, format string, args ...any) {
	s.events = append(s.events, Event{
		Generation:  gen,
		Description: fmt.Sprintf(format, args...),
		Category:    category,
	})
}

func clampunit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
