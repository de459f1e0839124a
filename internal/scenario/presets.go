package scenario

import (
	"sort"

	"github.com/talgya/crucible/internal/coherence"
)

// Built-in presets. Each builder returns a fresh Scenario so callers can
// mutate freely.
var presets = map[string]func() *Scenario{
	"baseline":          Baseline,
	"scarcity-collapse": ScarcityCollapse,
	"teaching-rescue":   TeachingRescue,
}

// Preset returns the named built-in scenario.
func Preset(name string) (*Scenario, bool) {
	build, ok := presets[name]
	if !ok {
		return nil, false
	}
	return build(), true
}

// Names lists the built-in presets in stable order.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Baseline is the untaught drift: one hundred naive founders on raw
// payoffs. Runs polarize, locking into cooperation or sliding into
// collapse.
func Baseline() *Scenario {
	s := Default()
	s.Name = "baseline"
	s.Description = "100 naive founders, no teachers, pure payoff drift"
	s.Seed = 42
	s.MaxGenerations = 50
	s.Population = Population{Naive: 100}
	s.Teaching.Enabled = false
	return s
}

// ScarcityCollapse stresses a taught population until it breaks: the
// coherence bar sits at the strict calibration threshold, and scarcity
// compounds into corruption and invasion.
func ScarcityCollapse() *Scenario {
	s := Default()
	s.Name = "scarcity-collapse"
	s.Description = "compounding scarcity, corruption, and invasion against the strict threshold"
	s.Seed = 42
	s.MaxGenerations = 80
	s.Population = Population{Naive: 60, CrucibleTested: 20, Bridge: 8, HumanTeacher: 4}
	s.Crucible = Crucible{Enabled: true, Rounds: 50}
	s.Environment = Environment{Enabled: true, Frequency: 0.05, Amplitude: 0.2}
	// Ten generations of grace: the teacher network needs a few to pull a
	// fresh population over the strict line in the first place.
	s.Stability = Stability{Threshold: coherence.TStar, Grace: 10, Signal: "coherence"}
	s.Stressors = []Stressor{
		{Generation: 20, Type: "scarcity", Magnitude: 0.5},
		{Generation: 35, Type: "scarcity", Magnitude: 0.85},
		{Generation: 45, Type: "corruption", Magnitude: 0.5},
		{Generation: 50, Type: "invasion", Magnitude: 0.3},
	}
	return s
}

// TeachingRescue injects bridges into a population already on its way
// down and gives them room to turn it around.
func TeachingRescue() *Scenario {
	s := Default()
	s.Name = "teaching-rescue"
	s.Description = "bridges injected into a decaying naive population"
	s.Seed = 42
	s.MaxGenerations = 60
	s.Population = Population{Naive: 90}
	s.Stability = Stability{Threshold: 0.35, Grace: 8, Signal: "coherence"}
	s.Interventions = []Intervention{
		{Generation: 12, Action: "inject", Role: "bridge", Count: 6},
	}
	return s
}
