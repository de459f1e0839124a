// Package engine runs the generational simulation: pairing, encounters,
// teaching, stressors, turnover, and the phase scheduler that strings them
// together.
// See design doc Section 5.
package engine

import (
	"errors"
	"fmt"

	"github.com/talgya/crucible/internal/agents"
	"github.com/talgya/crucible/internal/coherence"
	"github.com/talgya/crucible/internal/environment"
)

// ErrConfig marks configuration failures. Callers can errors.Is against it
// to tell a bad config from a run that collapsed.
var ErrConfig = errors.New("invalid config")

// PairingPolicy selects how encounter partners are drawn each generation.
type PairingPolicy uint8

const (
	PairRandom      PairingPolicy = iota // Uniform shuffle
	PairAssortative                      // Like roles pair first
	PairRoundRobin                       // Rotating circle schedule
)

func (p PairingPolicy) String() string {
	switch p {
	case PairAssortative:
		return "assortative"
	case PairRoundRobin:
		return "round_robin"
	default:
		return "random"
	}
}

// ParsePairingPolicy maps config strings onto policies.
func ParsePairingPolicy(s string) (PairingPolicy, error) {
	switch s {
	case "random", "":
		return PairRandom, nil
	case "assortative":
		return PairAssortative, nil
	case "round_robin":
		return PairRoundRobin, nil
	default:
		return PairRandom, fmt.Errorf("%w: unknown pairing policy %q", ErrConfig, s)
	}
}

// StressorType enumerates the scheduled population shocks.
type StressorType uint8

const (
	StressScarcity     StressorType = iota // Payoff pressure
	StressCorruption                       // Flip live agents hostile
	StressInvasion                         // Inject hostile outsiders
	StressCulturalWipe                     // Erase memory
)

func (s StressorType) String() string {
	switch s {
	case StressScarcity:
		return "scarcity"
	case StressCorruption:
		return "corruption"
	case StressInvasion:
		return "invasion"
	default:
		return "cultural_wipe"
	}
}

// ParseStressorType maps config strings onto stressor types.
func ParseStressorType(s string) (StressorType, error) {
	switch s {
	case "scarcity":
		return StressScarcity, nil
	case "corruption":
		return StressCorruption, nil
	case "invasion":
		return StressInvasion, nil
	case "cultural_wipe":
		return StressCulturalWipe, nil
	default:
		return StressScarcity, fmt.Errorf("%w: unknown stressor type %q", ErrConfig, s)
	}
}

// StressorEvent is one scheduled shock, applied before pairing.
type StressorEvent struct {
	Generation int          `json:"generation"`
	Type       StressorType `json:"type"`
	Magnitude  float64      `json:"magnitude"` // 0.0–1.0
}

// InterventionAction enumerates scheduled population edits.
type InterventionAction uint8

const (
	InterventionInject InterventionAction = iota
	InterventionRemove
)

func (a InterventionAction) String() string {
	if a == InterventionInject {
		return "inject"
	}
	return "remove"
}

// ParseInterventionAction maps config strings onto actions.
func ParseInterventionAction(s string) (InterventionAction, error) {
	switch s {
	case "inject":
		return InterventionInject, nil
	case "remove":
		return InterventionRemove, nil
	default:
		return InterventionInject, fmt.Errorf("%w: unknown intervention action %q", ErrConfig, s)
	}
}

// InterventionEvent is one scheduled population edit, applied before
// pairing alongside stressors.
type InterventionEvent struct {
	Generation int                `json:"generation"`
	Action     InterventionAction `json:"action"`
	Role       agents.Role        `json:"role"`
	Count      int                `json:"count"`
}

// PayoffMatrix is the 2×2 game. The names follow the usual dilemma
// convention; Punishment doubles as the neutral baseline outcomes are
// classified against.
type PayoffMatrix struct {
	Reward     float64 `json:"reward"`     // Both cooperate
	Sucker     float64 `json:"sucker"`     // Cooperate into a defection
	Temptation float64 `json:"temptation"` // Defect against a cooperator
	Punishment float64 `json:"punishment"` // Both defect
}

// DefaultPayoff returns the standard dilemma: T > R > P > S.
func DefaultPayoff() PayoffMatrix {
	return PayoffMatrix{Reward: 3, Sucker: 0, Temptation: 5, Punishment: 1}
}

// TrustParams are the fixed trust steps applied per encounter.
type TrustParams struct {
	Gain float64 `json:"gain"` // Mutual cooperation, both sides
	Loss float64 `json:"loss"` // Being exploited
}

// DefaultTrust returns the calibrated steps.
func DefaultTrust() TrustParams {
	return TrustParams{Gain: 0.05, Loss: 0.10}
}

// TieBreak picks which teacher class wins when both could take a learner.
type TieBreak uint8

const (
	TieBreakBridge TieBreak = iota
	TieBreakHuman
)

func (t TieBreak) String() string {
	if t == TieBreakBridge {
		return "bridge"
	}
	return "human"
}

// ParseTieBreak maps config strings onto tie-break rules.
func ParseTieBreak(s string) (TieBreak, error) {
	switch s {
	case "bridge", "":
		return TieBreakBridge, nil
	case "human":
		return TieBreakHuman, nil
	default:
		return TieBreakBridge, fmt.Errorf("%w: unknown tie_break %q", ErrConfig, s)
	}
}

// TeachingParams tune the teaching phase.
type TeachingParams struct {
	Enabled              bool     `json:"enabled"`
	Weight               float64  `json:"weight"`                // Taught scar weight
	TrustIncrement       float64  `json:"trust_increment"`       // Learner trust bump
	AwakeningProbability float64  `json:"awakening_probability"` // Per lesson
	LearnerFraction      float64  `json:"learner_fraction"`      // Of eligible learners per generation
	TieBreak             TieBreak `json:"tie_break"`
}

// DefaultTeaching returns the calibrated lesson.
func DefaultTeaching() TeachingParams {
	return TeachingParams{
		Enabled:              true,
		Weight:               0.7,
		TrustIncrement:       0.1,
		AwakeningProbability: 0.05,
		LearnerFraction:      1.0,
		TieBreak:             TieBreakBridge,
	}
}

// StabilitySignal selects what the collapse evaluation watches.
type StabilitySignal uint8

const (
	SignalCoherence   StabilitySignal = iota // Population score S*
	SignalCooperation                        // Cooperation rate
)

func (s StabilitySignal) String() string {
	if s == SignalCoherence {
		return "coherence"
	}
	return "cooperation"
}

// ParseStabilitySignal maps config strings onto signals.
func ParseStabilitySignal(s string) (StabilitySignal, error) {
	switch s {
	case "coherence", "":
		return SignalCoherence, nil
	case "cooperation":
		return SignalCooperation, nil
	default:
		return SignalCoherence, fmt.Errorf("%w: unknown stability signal %q", ErrConfig, s)
	}
}

// StabilityParams govern collapse evaluation. The signal must hold below
// the threshold for a full grace window before the run is declared dead.
type StabilityParams struct {
	Threshold float64         `json:"threshold"`
	Grace     int             `json:"grace"`
	Signal    StabilitySignal `json:"signal"`
}

// DefaultStability returns the disaster line. The published calibration
// constant coherence.TStar is a much stricter bar; presets that model the
// narrative set it explicitly.
func DefaultStability() StabilityParams {
	return StabilityParams{
		Threshold: 0.35,
		Grace:     5,
		Signal:    SignalCoherence,
	}
}

// LifecycleParams tune generational turnover. Disabled by default: the
// population is fixed unless a scenario opts in.
type LifecycleParams struct {
	Enabled       bool    `json:"enabled"`
	BirthRate     float64 `json:"birth_rate"`     // Children per viable parent pair pool
	InheritWeight float64 `json:"inherit_weight"` // Scar dampening on inheritance
	MaxPopulation int     `json:"max_population"`
}

// DefaultLifecycle returns turnover switched off with calibrated rates.
func DefaultLifecycle() LifecycleParams {
	return LifecycleParams{
		Enabled:       false,
		BirthRate:     0.1,
		InheritWeight: 0.5,
		MaxPopulation: 1000,
	}
}

// CrucibleParams tune the bootstrap duels that forge crucible-tested
// founders. Disabled, founders get a synthetic ledger instead.
type CrucibleParams struct {
	Enabled bool `json:"enabled"`
	Rounds  int  `json:"rounds"`
}

// DefaultCrucible returns the calibrated bootstrap.
func DefaultCrucible() CrucibleParams {
	return CrucibleParams{Enabled: false, Rounds: 50}
}

// RoleCounts is the initial population composition.
type RoleCounts struct {
	Naive          int `json:"naive"`
	CrucibleTested int `json:"crucible_tested"`
	Bridge         int `json:"bridge"`
	HumanTeacher   int `json:"human_teacher"`
}

// Total returns the founder count across all roles.
func (rc RoleCounts) Total() int {
	return rc.Naive + rc.CrucibleTested + rc.Bridge + rc.HumanTeacher
}

// Config is everything a run needs. Build one with DefaultConfig and
// override; the scheduler validates before the first generation.
type Config struct {
	Seed           int64                   `json:"seed"`
	MaxGenerations int                     `json:"max_generations"`
	Population     RoleCounts              `json:"population"`
	Pairing        PairingPolicy           `json:"pairing"`
	Payoff         PayoffMatrix            `json:"payoff"`
	Trust          TrustParams             `json:"trust"`
	Decision       agents.DecisionParams   `json:"decision"`
	Teaching       TeachingParams          `json:"teaching"`
	Stability      StabilityParams         `json:"stability"`
	Lifecycle      LifecycleParams         `json:"lifecycle"`
	Crucible       CrucibleParams          `json:"crucible"`
	Coherence      coherence.Params        `json:"coherence"`
	Environment    environment.FieldConfig `json:"environment"`
	Stressors      []StressorEvent         `json:"stressors,omitempty"`
	Interventions  []InterventionEvent     `json:"interventions,omitempty"`

	// Workers caps the encounter evaluation pool. 0 or 1 runs serial;
	// results are identical either way.
	Workers int `json:"workers"`
}

// DefaultConfig returns a runnable baseline: 100 naive founders, standard
// dilemma, teaching on, no stressors.
func DefaultConfig() Config {
	return Config{
		Seed:           42,
		MaxGenerations: 100,
		Population:     RoleCounts{Naive: 100},
		Pairing:        PairRandom,
		Payoff:         DefaultPayoff(),
		Trust:          DefaultTrust(),
		Decision:       agents.DefaultDecisionParams(),
		Teaching:       DefaultTeaching(),
		Stability:      DefaultStability(),
		Lifecycle:      DefaultLifecycle(),
		Crucible:       DefaultCrucible(),
		Coherence:      coherence.DefaultParams(),
		Environment:    environment.DefaultFieldConfig(),
	}
}

// Validate checks the config before any generation runs. All failures wrap
// ErrConfig.
func (c *Config) Validate() error {
	if c.Population.Naive < 0 || c.Population.CrucibleTested < 0 ||
		c.Population.Bridge < 0 || c.Population.HumanTeacher < 0 {
		return fmt.Errorf("%w: negative role count in %+v", ErrConfig, c.Population)
	}
	if c.Population.Total() == 0 {
		return fmt.Errorf("%w: initial population is empty", ErrConfig)
	}
	if c.MaxGenerations <= 0 {
		return fmt.Errorf("%w: max_generations must be positive, got %d", ErrConfig, c.MaxGenerations)
	}
	if c.Pairing > PairRoundRobin {
		return fmt.Errorf("%w: unknown pairing policy %d", ErrConfig, c.Pairing)
	}
	if err := probability("teaching.weight", c.Teaching.Weight); err != nil {
		return err
	}
	if err := probability("teaching.trust_increment", c.Teaching.TrustIncrement); err != nil {
		return err
	}
	if err := probability("teaching.awakening_probability", c.Teaching.AwakeningProbability); err != nil {
		return err
	}
	if err := probability("teaching.learner_fraction", c.Teaching.LearnerFraction); err != nil {
		return err
	}
	if c.Stability.Threshold <= 0 || c.Stability.Threshold > 1 {
		return fmt.Errorf("%w: stability.threshold must be in (0,1], got %v", ErrConfig, c.Stability.Threshold)
	}
	if c.Stability.Grace < 1 {
		return fmt.Errorf("%w: stability.grace must be at least 1, got %d", ErrConfig, c.Stability.Grace)
	}
	if c.Stability.Signal > SignalCooperation {
		return fmt.Errorf("%w: unknown stability signal %d", ErrConfig, c.Stability.Signal)
	}
	if c.Lifecycle.Enabled {
		if c.Lifecycle.BirthRate < 0 {
			return fmt.Errorf("%w: lifecycle.birth_rate must not be negative, got %v", ErrConfig, c.Lifecycle.BirthRate)
		}
		if err := probability("lifecycle.inherit_weight", c.Lifecycle.InheritWeight); err != nil {
			return err
		}
		if c.Lifecycle.MaxPopulation <= 0 {
			return fmt.Errorf("%w: lifecycle.max_population must be positive, got %d", ErrConfig, c.Lifecycle.MaxPopulation)
		}
	}
	if c.Crucible.Enabled && c.Crucible.Rounds <= 0 {
		return fmt.Errorf("%w: crucible.rounds must be positive, got %d", ErrConfig, c.Crucible.Rounds)
	}
	if err := probability("trust.gain", c.Trust.Gain); err != nil {
		return err
	}
	if err := probability("trust.loss", c.Trust.Loss); err != nil {
		return err
	}
	if err := probability("decision.noise", c.Decision.Noise); err != nil {
		return err
	}
	if err := probability("decision.echo_floor", c.Decision.EchoFloor); err != nil {
		return err
	}
	if c.Decision.EchoWindow < 0 || c.Decision.TitForTatWindow < 0 || c.Decision.TitForTatLimit < 0 {
		return fmt.Errorf("%w: decision windows must not be negative", ErrConfig)
	}
	if c.Decision.DecayRate < 0 || c.Decision.DecayRate >= 1 {
		return fmt.Errorf("%w: decision.decay_rate must be in [0,1), got %v", ErrConfig, c.Decision.DecayRate)
	}
	if c.Coherence.Sigma <= 0 || c.Coherence.Sigma > 1 {
		return fmt.Errorf("%w: coherence.sigma must be in (0,1], got %v", ErrConfig, c.Coherence.Sigma)
	}
	if c.Environment.Enabled {
		if err := probability("environment.amplitude", c.Environment.Amplitude); err != nil {
			return err
		}
		if c.Environment.Frequency <= 0 {
			return fmt.Errorf("%w: environment.frequency must be positive, got %v", ErrConfig, c.Environment.Frequency)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrConfig, c.Workers)
	}

	for i, ev := range c.Stressors {
		if ev.Generation < 0 {
			return fmt.Errorf("%w: stressor %d scheduled before generation 0", ErrConfig, i)
		}
		if i > 0 && ev.Generation < c.Stressors[i-1].Generation {
			return fmt.Errorf("%w: stressor schedule must be ordered by generation", ErrConfig)
		}
		if ev.Type > StressCulturalWipe {
			return fmt.Errorf("%w: unknown stressor type %d", ErrConfig, ev.Type)
		}
		if err := probability(fmt.Sprintf("stressor %d magnitude", i), ev.Magnitude); err != nil {
			return err
		}
	}
	for i, ev := range c.Interventions {
		if ev.Generation < 0 {
			return fmt.Errorf("%w: intervention %d scheduled before generation 0", ErrConfig, i)
		}
		if i > 0 && ev.Generation < c.Interventions[i-1].Generation {
			return fmt.Errorf("%w: intervention schedule must be ordered by generation", ErrConfig)
		}
		if ev.Action > InterventionRemove {
			return fmt.Errorf("%w: unknown intervention action %d", ErrConfig, ev.Action)
		}
		if ev.Role > agents.RoleHumanTeacher {
			return fmt.Errorf("%w: unknown intervention role %d", ErrConfig, ev.Role)
		}
		if ev.Count <= 0 {
			return fmt.Errorf("%w: intervention %d count must be positive, got %d", ErrConfig, i, ev.Count)
		}
	}

	return nil
}

func probability(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: %s must be in [0,1], got %v", ErrConfig, name, v)
	}
	return nil
}
