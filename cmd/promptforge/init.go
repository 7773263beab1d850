package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lamim/promptforge/internal/config"
	"github.com/lamim/promptforge/internal/writer"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	var (
		outDir     string
		appendMode bool
		skipBase   bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write sample positive.txt and negative.txt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("out-dir") {
				cfg, _, _, err := loadConfig(opts)
				if err != nil {
					return err
				}
				outDir = cfg.Output.Dir
			}
			if skipBase {
				fmt.Fprintln(cmd.OutOrStdout(), "Skipping base prompt files")
				return nil
			}

			layout, err := writer.NewLayout(outDir, nil)
			if err != nil {
				return err
			}
			if err := writer.WriteLines(layout.PositivePath(), config.SamplePositives, appendMode); err != nil {
				return fmt.Errorf("failed to write positive prompts: %w", err)
			}
			if err := writer.WriteLines(layout.NegativePath(), config.SampleNegatives, appendMode); err != nil {
				return fmt.Errorf("failed to write negative prompts: %w", err)
			}

			verb := "Wrote"
			if appendMode {
				verb = "Appended to"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, layout.PositivePath())
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, layout.NegativePath())
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&outDir, "out-dir", "output", "Output directory")
	fs.BoolVar(&appendMode, "append", false, "Append to existing files instead of overwriting")
	fs.BoolVar(&skipBase, "skip-base", false, "Do not write the base prompt files")
	return cmd
}
