package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/crucible/internal/persistence"
)

const (
	maxReportEvents = 30
	maxOtherRuns    = 5
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize a stored run",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			runID, _ := cmd.Flags().GetString("run")

			db, err := persistence.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if runID == "" {
				runID, err = db.LatestRunID()
				if errors.Is(err, sql.ErrNoRows) {
					return fmt.Errorf("no runs stored in %s", dbPath)
				}
				if err != nil {
					return err
				}
			}

			res, meta, err := db.LoadRun(runID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %s\n", meta.ID)
			fmt.Fprintf(out, "scenario: %s  seed: %d  recorded: %s\n",
				meta.Scenario, meta.Seed, relativeTime(meta.CreatedAt))
			fmt.Fprintf(out, "terminal: %s after %s generations\n\n",
				meta.TerminalState, humanize.Comma(int64(meta.Generations)))

			fmt.Fprintf(out, "%5s %6s %7s %10s %10s %10s\n",
				"gen", "pop", "coop%", "coherence", "crucible%", "teachers%")
			step := len(res.Records)/20 + 1
			for i, rec := range res.Records {
				if i%step != 0 && i != len(res.Records)-1 {
					continue
				}
				fmt.Fprintf(out, "%5d %6d %7.1f %10.3f %10.1f %10.1f\n",
					rec.Generation, rec.PopulationSize, rec.CooperationPct,
					rec.MeanCoherence, rec.CruciblePct, rec.TeacherNetworkPct)
			}

			if len(res.Events) > 0 {
				fmt.Fprintf(out, "\nevents (%d):\n", len(res.Events))
				shown := res.Events
				if len(shown) > maxReportEvents {
					shown = shown[:maxReportEvents]
				}
				for _, e := range shown {
					fmt.Fprintf(out, "  gen %4d  [%s] %s\n", e.Generation, e.Category, e.Description)
				}
				if hidden := len(res.Events) - maxReportEvents; hidden > 0 {
					fmt.Fprintf(out, "  ... %d more\n", hidden)
				}
			}

			return printOtherRuns(out, db, meta.ID)
		},
	}

	cmd.Flags().String("db", "civsim.db", "SQLite database to read")
	cmd.Flags().String("run", "", "Run id to report (default: most recent)")
	return cmd
}

func printOtherRuns(out io.Writer, db *persistence.DB, currentID string) error {
	metas, err := db.ListRuns()
	if err != nil {
		return err
	}

	var others []persistence.RunMeta
	for _, m := range metas {
		if m.ID != currentID {
			others = append(others, m)
		}
	}
	if len(others) == 0 {
		return nil
	}

	fmt.Fprintf(out, "\nother stored runs:\n")
	for i, m := range others {
		if i == maxOtherRuns {
			fmt.Fprintf(out, "  ... %d more\n", len(others)-maxOtherRuns)
			break
		}
		fmt.Fprintf(out, "  %s  %-18s %-10s %4d gens  %s\n",
			m.ID, m.Scenario, m.TerminalState, m.Generations, relativeTime(m.CreatedAt))
	}
	return nil
}

// relativeTime renders a stored RFC 3339 timestamp as "3 hours ago",
// falling back to the raw string if it does not parse.
func relativeTime(rfc3339 string) string {
	t, err := time.Parse(time.RFC3339, rfc3339)
	if err != nil {
		return rfc3339
	}
	return humanize.Time(t)
}
