package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lamim/promptforge/internal/sequence"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List shot presets and keyword bundles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := sequence.DefaultCatalog()
			if err != nil {
				return fmt.Errorf("failed to load shot catalog: %w", err)
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Shot presets:")
			for _, p := range catalog.Presets {
				name := p.Name
				if len(p.Aliases) > 0 {
					name += " (" + strings.Join(p.Aliases, ", ") + ")"
				}
				fmt.Fprintf(out, "  %s: %s\n", name, p.Description)
				for i, shot := range p.Shots {
					fmt.Fprintf(out, "    %02d_%-14s %s\n", i+1, shot.Label, shot.Hint)
				}
			}
			fmt.Fprintf(out, "  (unknown presets use a single %q cut)\n\n", catalog.Fallback.Label)

			fmt.Fprintln(out, "Bundles:")
			for _, name := range catalog.BundleNames() {
				tokens, _ := catalog.Bundle(name)
				fmt.Fprintf(out, "  %-18s %s\n", name, strings.Join(tokens, ", "))
			}
			return nil
		},
	}
}
