// Package scenario loads run configurations from YAML files and carries
// the built-in presets. A scenario is the file-facing mirror of
// engine.Config: same shape, string enums, snake_case keys. Loading starts
// from Default and lets the file override, so partial files inherit the
// calibrated values.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/crucible/internal/agents"
	"github.com/talgya/crucible/internal/engine"
)

// Scenario is one runnable setup.
type Scenario struct {
	Name           string     `yaml:"name" json:"name"`
	Description    string     `yaml:"description,omitempty" json:"description,omitempty"`
	Seed           int64      `yaml:"seed" json:"seed"`
	MaxGenerations int        `yaml:"max_generations" json:"max_generations"`
	Population     Population `yaml:"population" json:"population"`

	// Pairing is one of "random", "assortative", "round_robin".
	Pairing string `yaml:"pairing" json:"pairing"`

	Payoff        Payoff         `yaml:"payoff" json:"payoff"`
	Trust         Trust          `yaml:"trust" json:"trust"`
	Decision      Decision       `yaml:"decision" json:"decision"`
	Teaching      Teaching       `yaml:"teaching" json:"teaching"`
	Stability     Stability      `yaml:"stability" json:"stability"`
	Lifecycle     Lifecycle      `yaml:"lifecycle" json:"lifecycle"`
	Crucible      Crucible       `yaml:"crucible" json:"crucible"`
	Coherence     Coherence      `yaml:"coherence" json:"coherence"`
	Environment   Environment    `yaml:"environment" json:"environment"`
	Stressors     []Stressor     `yaml:"stressors,omitempty" json:"stressors,omitempty"`
	Interventions []Intervention `yaml:"interventions,omitempty" json:"interventions,omitempty"`
	Workers       int            `yaml:"workers" json:"workers"`
}

// Population is the founder composition by role.
type Population struct {
	Naive          int `yaml:"naive" json:"naive"`
	CrucibleTested int `yaml:"crucible_tested" json:"crucible_tested"`
	Bridge         int `yaml:"bridge" json:"bridge"`
	HumanTeacher   int `yaml:"human_teacher" json:"human_teacher"`
}

// Payoff is the 2x2 dilemma matrix.
type Payoff struct {
	Reward     float64 `yaml:"reward" json:"reward"`
	Sucker     float64 `yaml:"sucker" json:"sucker"`
	Temptation float64 `yaml:"temptation" json:"temptation"`
	Punishment float64 `yaml:"punishment" json:"punishment"`
}

// Trust holds the per-encounter trust steps.
type Trust struct {
	Gain float64 `yaml:"gain" json:"gain"`
	Loss float64 `yaml:"loss" json:"loss"`
}

// Decision tunes the per-encounter decision ladder.
type Decision struct {
	Noise           float64 `yaml:"noise" json:"noise"`
	EchoWindow      int     `yaml:"echo_window" json:"echo_window"`
	EchoFloor       float64 `yaml:"echo_floor" json:"echo_floor"`
	TitForTatWindow int     `yaml:"tit_for_tat_window" json:"tit_for_tat_window"`
	TitForTatLimit  int     `yaml:"tit_for_tat_limit" json:"tit_for_tat_limit"`
	DecayRate       float64 `yaml:"decay_rate" json:"decay_rate"`
}

// Teaching tunes the teaching phase. TieBreak is "bridge" or "human".
type Teaching struct {
	Enabled              bool    `yaml:"enabled" json:"enabled"`
	Weight               float64 `yaml:"weight" json:"weight"`
	TrustIncrement       float64 `yaml:"trust_increment" json:"trust_increment"`
	AwakeningProbability float64 `yaml:"awakening_probability" json:"awakening_probability"`
	LearnerFraction      float64 `yaml:"learner_fraction" json:"learner_fraction"`
	TieBreak             string  `yaml:"tie_break" json:"tie_break"`
}

// Stability governs collapse evaluation. Signal is "coherence" or
// "cooperation".
type Stability struct {
	Threshold float64 `yaml:"threshold" json:"threshold"`
	Grace     int     `yaml:"grace" json:"grace"`
	Signal    string  `yaml:"signal" json:"signal"`
}

// Lifecycle tunes generational turnover.
type Lifecycle struct {
	Enabled       bool    `yaml:"enabled" json:"enabled"`
	BirthRate     float64 `yaml:"birth_rate" json:"birth_rate"`
	InheritWeight float64 `yaml:"inherit_weight" json:"inherit_weight"`
	MaxPopulation int     `yaml:"max_population" json:"max_population"`
}

// Crucible tunes the founder bootstrap duels.
type Crucible struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	Rounds  int  `yaml:"rounds" json:"rounds"`
}

// Coherence carries the score calibration.
type Coherence struct {
	Sigma float64 `yaml:"sigma" json:"sigma"`
}

// Environment tunes the ambient scarcity noise field.
type Environment struct {
	Enabled   bool    `yaml:"enabled" json:"enabled"`
	Frequency float64 `yaml:"frequency" json:"frequency"`
	Amplitude float64 `yaml:"amplitude" json:"amplitude"`
}

// Stressor is one scheduled shock. Type is one of "scarcity",
// "corruption", "invasion", "cultural_wipe".
type Stressor struct {
	Generation int     `yaml:"generation" json:"generation"`
	Type       string  `yaml:"type" json:"type"`
	Magnitude  float64 `yaml:"magnitude" json:"magnitude"`
}

// Intervention is one scheduled population edit. Action is "inject" or
// "remove"; Role names the agent role it applies to.
type Intervention struct {
	Generation int    `yaml:"generation" json:"generation"`
	Action     string `yaml:"action" json:"action"`
	Role       string `yaml:"role" json:"role"`
	Count      int    `yaml:"count" json:"count"`
}

// Default returns a scenario mirroring the engine defaults.
func Default() *Scenario {
	ec := engine.DefaultConfig()
	return &Scenario{
		Name:           "custom",
		Seed:           ec.Seed,
		MaxGenerations: ec.MaxGenerations,
		Population: Population{
			Naive:          ec.Population.Naive,
			CrucibleTested: ec.Population.CrucibleTested,
			Bridge:         ec.Population.Bridge,
			HumanTeacher:   ec.Population.HumanTeacher,
		},
		Pairing: ec.Pairing.String(),
		Payoff: Payoff{
			Reward:     ec.Payoff.Reward,
			Sucker:     ec.Payoff.Sucker,
			Temptation: ec.Payoff.Temptation,
			Punishment: ec.Payoff.Punishment,
		},
		Trust: Trust{Gain: ec.Trust.Gain, Loss: ec.Trust.Loss},
		Decision: Decision{
			Noise:           ec.Decision.Noise,
			EchoWindow:      ec.Decision.EchoWindow,
			EchoFloor:       ec.Decision.EchoFloor,
			TitForTatWindow: ec.Decision.TitForTatWindow,
			TitForTatLimit:  ec.Decision.TitForTatLimit,
			DecayRate:       ec.Decision.DecayRate,
		},
		Teaching: Teaching{
			Enabled:              ec.Teaching.Enabled,
			Weight:               ec.Teaching.Weight,
			TrustIncrement:       ec.Teaching.TrustIncrement,
			AwakeningProbability: ec.Teaching.AwakeningProbability,
			LearnerFraction:      ec.Teaching.LearnerFraction,
			TieBreak:             ec.Teaching.TieBreak.String(),
		},
		Stability: Stability{
			Threshold: ec.Stability.Threshold,
			Grace:     ec.Stability.Grace,
			Signal:    ec.Stability.Signal.String(),
		},
		Lifecycle: Lifecycle{
			Enabled:       ec.Lifecycle.Enabled,
			BirthRate:     ec.Lifecycle.BirthRate,
			InheritWeight: ec.Lifecycle.InheritWeight,
			MaxPopulation: ec.Lifecycle.MaxPopulation,
		},
		Crucible:  Crucible{Enabled: ec.Crucible.Enabled, Rounds: ec.Crucible.Rounds},
		Coherence: Coherence{Sigma: ec.Coherence.Sigma},
		Environment: Environment{
			Enabled:   ec.Environment.Enabled,
			Frequency: ec.Environment.Frequency,
			Amplitude: ec.Environment.Amplitude,
		},
		Workers: ec.Workers,
	}
}

// Load reads a scenario file. Missing keys keep their defaults.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing scenario file %s: %w", path, err)
	}
	return s, nil
}

// Config resolves the scenario into a validated engine config. All
// failures wrap engine.ErrConfig.
func (s *Scenario) Config() (engine.Config, error) {
	cfg := engine.DefaultConfig()
	cfg.Seed = s.Seed
	cfg.MaxGenerations = s.MaxGenerations
	cfg.Population = engine.RoleCounts{
		Naive:          s.Population.Naive,
		CrucibleTested: s.Population.CrucibleTested,
		Bridge:         s.Population.Bridge,
		HumanTeacher:   s.Population.HumanTeacher,
	}
	cfg.Payoff = engine.PayoffMatrix{
		Reward:     s.Payoff.Reward,
		Sucker:     s.Payoff.Sucker,
		Temptation: s.Payoff.Temptation,
		Punishment: s.Payoff.Punishment,
	}
	cfg.Trust = engine.TrustParams{Gain: s.Trust.Gain, Loss: s.Trust.Loss}
	cfg.Decision = agents.DecisionParams{
		Noise:           s.Decision.Noise,
		EchoWindow:      s.Decision.EchoWindow,
		EchoFloor:       s.Decision.EchoFloor,
		TitForTatWindow: s.Decision.TitForTatWindow,
		TitForTatLimit:  s.Decision.TitForTatLimit,
		DecayRate:       s.Decision.DecayRate,
	}
	cfg.Stability.Threshold = s.Stability.Threshold
	cfg.Stability.Grace = s.Stability.Grace
	cfg.Lifecycle = engine.LifecycleParams{
		Enabled:       s.Lifecycle.Enabled,
		BirthRate:     s.Lifecycle.BirthRate,
		InheritWeight: s.Lifecycle.InheritWeight,
		MaxPopulation: s.Lifecycle.MaxPopulation,
	}
	cfg.Crucible = engine.CrucibleParams{Enabled: s.Crucible.Enabled, Rounds: s.Crucible.Rounds}
	cfg.Coherence.Sigma = s.Coherence.Sigma
	cfg.Environment.Enabled = s.Environment.Enabled
	cfg.Environment.Frequency = s.Environment.Frequency
	cfg.Environment.Amplitude = s.Environment.Amplitude
	cfg.Workers = s.Workers

	pairing, err := engine.ParsePairingPolicy(s.Pairing)
	if err != nil {
		return engine.Config{}, err
	}
	cfg.Pairing = pairing

	tieBreak, err := engine.ParseTieBreak(s.Teaching.TieBreak)
	if err != nil {
		return engine.Config{}, err
	}
	cfg.Teaching = engine.TeachingParams{
		Enabled:              s.Teaching.Enabled,
		Weight:               s.Teaching.Weight,
		TrustIncrement:       s.Teaching.TrustIncrement,
		AwakeningProbability: s.Teaching.AwakeningProbability,
		LearnerFraction:      s.Teaching.LearnerFraction,
		TieBreak:             tieBreak,
	}

	signal, err := engine.ParseStabilitySignal(s.Stability.Signal)
	if err != nil {
		return engine.Config{}, err
	}
	cfg.Stability.Signal = signal

	cfg.Stressors = nil
	for _, ev := range s.Stressors {
		typ, err := engine.ParseStressorType(ev.Type)
		if err != nil {
			return engine.Config{}, err
		}
		cfg.Stressors = append(cfg.Stressors, engine.StressorEvent{
			Generation: ev.Generation,
			Type:       typ,
			Magnitude:  ev.Magnitude,
		})
	}

	cfg.Interventions = nil
	for _, ev := range s.Interventions {
		action, err := engine.ParseInterventionAction(ev.Action)
		if err != nil {
			return engine.Config{}, err
		}
		role, err := parseRole(ev.Role)
		if err != nil {
			return engine.Config{}, err
		}
		cfg.Interventions = append(cfg.Interventions, engine.InterventionEvent{
			Generation: ev.Generation,
			Action:     action,
			Role:       role,
			Count:      ev.Count,
		})
	}

	if err := cfg.Validate(); err != nil {
		return engine.Config{}, err
	}
	return cfg, nil
}

func parseRole(s string) (agents.Role, error) {
	switch s {
	case "naive", "":
		return agents.RoleNaive, nil
	case "crucible_tested":
		return agents.RoleCrucibleTested, nil
	case "bridge":
		return agents.RoleBridge, nil
	case "human_teacher":
		return agents.RoleHumanTeacher, nil
	default:
		return agents.RoleNaive, fmt.Errorf("%w: unknown role %q", engine.ErrConfig, s)
	}
}
