package engine

import (
	"errors"
	"testing"

	"github.com/talgya/crucible/internal/agents"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate, got %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty population", func(c *Config) { c.Population = RoleCounts{} }},
		{"negative role count", func(c *Config) { c.Population.Bridge = -1 }},
		{"zero generations", func(c *Config) { c.MaxGenerations = 0 }},
		{"bad teaching weight", func(c *Config) { c.Teaching.Weight = 1.5 }},
		{"bad awakening probability", func(c *Config) { c.Teaching.AwakeningProbability = -0.1 }},
		{"bad learner fraction", func(c *Config) { c.Teaching.LearnerFraction = 2 }},
		{"zero threshold", func(c *Config) { c.Stability.Threshold = 0 }},
		{"threshold above one", func(c *Config) { c.Stability.Threshold = 1.01 }},
		{"zero grace", func(c *Config) { c.Stability.Grace = 0 }},
		{"bad decay rate", func(c *Config) { c.Decision.DecayRate = 1 }},
		{"bad noise", func(c *Config) { c.Decision.Noise = -0.5 }},
		{"bad trust gain", func(c *Config) { c.Trust.Gain = 1.5 }},
		{"negative tit-for-tat window", func(c *Config) { c.Decision.TitForTatWindow = -1 }},
		{"bad sigma", func(c *Config) { c.Coherence.Sigma = 0 }},
		{"bad environment amplitude", func(c *Config) {
			c.Environment.Enabled = true
			c.Environment.Amplitude = 1.5
		}},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
		{"negative birth rate", func(c *Config) {
			c.Lifecycle.Enabled = true
			c.Lifecycle.BirthRate = -1
		}},
		{"zero max population", func(c *Config) {
			c.Lifecycle.Enabled = true
			c.Lifecycle.MaxPopulation = 0
		}},
		{"zero crucible rounds", func(c *Config) {
			c.Crucible.Enabled = true
			c.Crucible.Rounds = 0
		}},
		{"stressor before start", func(c *Config) {
			c.Stressors = []StressorEvent{{Generation: -1, Type: StressScarcity, Magnitude: 0.5}}
		}},
		{"unordered stressors", func(c *Config) {
			c.Stressors = []StressorEvent{
				{Generation: 10, Type: StressScarcity, Magnitude: 0.5},
				{Generation: 5, Type: StressInvasion, Magnitude: 0.1},
			}
		}},
		{"stressor magnitude above one", func(c *Config) {
			c.Stressors = []StressorEvent{{Generation: 1, Type: StressCorruption, Magnitude: 1.2}}
		}},
		{"unordered interventions", func(c *Config) {
			c.Interventions = []InterventionEvent{
				{Generation: 8, Action: InterventionInject, Role: agents.RoleBridge, Count: 2},
				{Generation: 3, Action: InterventionInject, Role: agents.RoleBridge, Count: 2},
			}
		}},
		{"zero intervention count", func(c *Config) {
			c.Interventions = []InterventionEvent{
				{Generation: 3, Action: InterventionInject, Role: agents.RoleBridge, Count: 0},
			}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !errors.Is(err, ErrConfig) {
				t.Fatalf("validation errors must wrap ErrConfig, got %v", err)
			}
		})
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Population = RoleCounts{}
	if _, err := New(cfg); !errors.Is(err, ErrConfig) {
		t.Fatalf("New must fail fast on a bad config, got %v", err)
	}
	if _, err := Run(cfg); !errors.Is(err, ErrConfig) {
		t.Fatalf("Run must fail fast on a bad config, got %v", err)
	}
}

func TestParseHelpers(t *testing.T) {
	if p, err := ParsePairingPolicy("round_robin"); err != nil || p != PairRoundRobin {
		t.Fatalf("parse round_robin: %v %v", p, err)
	}
	if p, err := ParsePairingPolicy(""); err != nil || p != PairRandom {
		t.Fatalf("empty pairing should default to random: %v %v", p, err)
	}
	if _, err := ParsePairingPolicy("hexagonal"); !errors.Is(err, ErrConfig) {
		t.Fatalf("unknown pairing must wrap ErrConfig, got %v", err)
	}

	if st, err := ParseStressorType("cultural_wipe"); err != nil || st != StressCulturalWipe {
		t.Fatalf("parse cultural_wipe: %v %v", st, err)
	}
	if _, err := ParseStressorType("meteor"); !errors.Is(err, ErrConfig) {
		t.Fatalf("unknown stressor must wrap ErrConfig, got %v", err)
	}

	if a, err := ParseInterventionAction("remove"); err != nil || a != InterventionRemove {
		t.Fatalf("parse remove: %v %v", a, err)
	}
	if sig, err := ParseStabilitySignal("cooperation"); err != nil || sig != SignalCooperation {
		t.Fatalf("parse cooperation signal: %v %v", sig, err)
	}
	if tb, err := ParseTieBreak("human"); err != nil || tb != TieBreakHuman {
		t.Fatalf("parse human tie-break: %v %v", tb, err)
	}
}

func TestEnumStrings(t *testing.T) {
	pairs := []struct {
		got, want string
	}{
		{PairAssortative.String(), "assortative"},
		{StressInvasion.String(), "invasion"},
		{InterventionInject.String(), "inject"},
		{SignalCoherence.String(), "coherence"},
		{TieBreakBridge.String(), "bridge"},
		{PhaseTeaching.String(), "teaching"},
		{StateCollapsed.String(), "COLLAPSED"},
	}
	for _, p := range pairs {
		if p.got != p.want {
			t.Fatalf("enum string: want %q, got %q", p.want, p.got)
		}
	}
}
