// Command civsim runs generational coherence simulations.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	rootCmd := &cobra.Command{
		Use:   "civsim",
		Short: "Generational coherence simulator",
		Long: `civsim drives populations of scarred agents through generations of
pairwise dilemmas, teaching, and scheduled stressors, then reports
whether the civilization held together.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newReportCmd(),
		newPresetsCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "civsim version %s\n", version)
		},
	}
}
