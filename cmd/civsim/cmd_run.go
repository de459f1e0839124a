package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/talgya/crucible/internal/engine"
	"github.com/talgya/crucible/internal/persistence"
	"github.com/talgya/crucible/internal/scenario"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a scenario to collapse or survival",
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarioPath, _ := cmd.Flags().GetString("scenario")
			presetName, _ := cmd.Flags().GetString("preset")
			seed, _ := cmd.Flags().GetInt64("seed")
			generations, _ := cmd.Flags().GetInt("generations")
			workers, _ := cmd.Flags().GetInt("workers")
			dbPath, _ := cmd.Flags().GetString("db")
			jsonOut, _ := cmd.Flags().GetBool("json")

			if scenarioPath != "" && presetName != "" {
				return fmt.Errorf("cannot specify both --scenario and --preset")
			}

			var s *scenario.Scenario
			if scenarioPath != "" {
				loaded, err := scenario.Load(scenarioPath)
				if err != nil {
					return err
				}
				s = loaded
			} else {
				name := presetName
				if name == "" {
					name = "baseline"
				}
				preset, ok := scenario.Preset(name)
				if !ok {
					return fmt.Errorf("unknown preset %q (available: %s)",
						name, strings.Join(scenario.Names(), ", "))
				}
				s = preset
			}

			if cmd.Flags().Changed("seed") {
				s.Seed = seed
			}
			if cmd.Flags().Changed("generations") {
				s.MaxGenerations = generations
			}
			if cmd.Flags().Changed("workers") {
				s.Workers = workers
			}

			cfg, err := s.Config()
			if err != nil {
				return err
			}

			slog.Info("starting run",
				"scenario", s.Name,
				"seed", cfg.Seed,
				"population", cfg.Population.Total(),
				"max_generations", cfg.MaxGenerations,
				"workers", cfg.Workers,
			)

			res, err := engine.Run(cfg)
			if err != nil {
				return err
			}
			logTrace(res)

			if dbPath != "" {
				db, err := persistence.Open(dbPath)
				if err != nil {
					return err
				}
				defer db.Close()
				if _, err := db.SaveRun(s.Name, res); err != nil {
					return err
				}
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(res)
			}
			return nil
		},
	}

	cmd.Flags().String("scenario", "", "Path to a scenario YAML file")
	cmd.Flags().String("preset", "", "Built-in preset name (default baseline)")
	cmd.Flags().Int64("seed", 0, "Override the scenario seed")
	cmd.Flags().Int("generations", 0, "Override the generation cap")
	cmd.Flags().Int("workers", 0, "Encounter evaluation workers (0 = serial)")
	cmd.Flags().String("db", "", "Persist the trace to this SQLite database")
	cmd.Flags().Bool("json", false, "Write the full result as JSON to stdout")
	return cmd
}

// logTrace reports every tenth generation plus the ending.
func logTrace(res *engine.Result) {
	for _, rec := range res.Records {
		if rec.Generation%10 != 0 && rec.State == engine.StateOngoing {
			continue
		}
		slog.Info("generation",
			"gen", rec.Generation,
			"population", rec.PopulationSize,
			"cooperation_pct", fmt.Sprintf("%.1f", rec.CooperationPct),
			"coherence", fmt.Sprintf("%.3f", rec.MeanCoherence),
			"teachers_pct", fmt.Sprintf("%.1f", rec.TeacherNetworkPct),
		)
	}
	final := res.Final()
	slog.Info("run complete",
		"terminal_state", res.TerminalState.String(),
		"generations", len(res.Records),
		"final_cooperation_pct", fmt.Sprintf("%.1f", final.CooperationPct),
		"final_coherence", fmt.Sprintf("%.3f", final.MeanCoherence),
		"events", len(res.Events),
	)
}
