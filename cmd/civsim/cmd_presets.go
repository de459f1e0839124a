package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talgya/crucible/internal/scenario"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List built-in scenario presets",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, name := range scenario.Names() {
				p, _ := scenario.Preset(name)
				fmt.Fprintf(out, "%-18s %s\n", name, p.Description)
			}
		},
	}
}
