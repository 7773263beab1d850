package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// rootOptions holds the persistent flags shared by every command
type rootOptions struct {
	configPath  string
	envFile     string
	verbose     bool
	debugLLM    bool
	metricsFile string
	noLogFile   bool
	noProgress  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "promptforge",
		Short: "promptforge - prompt file generator for image models",
		Long: `promptforge scaffolds positive/negative prompt files for image generation
models, asks a local Ollama (or OpenAI-compatible) LLM for variant prompt lines,
filters them against exclusion lists, and expands storyboard scenarios into
per-cut prompt files.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Path to TOML configuration file (default: ./promptforge.toml when present)")
	pf.StringVar(&opts.envFile, "env-file", ".env", "Path to environment file")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	pf.BoolVar(&opts.debugLLM, "debug-llm", false, "Log raw and normalized LLM outputs")
	pf.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile when the run ends")
	pf.BoolVar(&opts.noLogFile, "no-log-file", false, "Do not write promptforge.log to the output directory")
	pf.BoolVar(&opts.noProgress, "no-progress", false, "Hide the progress bar")

	rootCmd.AddCommand(newInitCmd(opts))
	rootCmd.AddCommand(newVariantsCmd(opts))
	rootCmd.AddCommand(newScenarioCmd(opts))
	rootCmd.AddCommand(newPresetsCmd())
	rootCmd.AddCommand(newCheckpointCmd())

	return rootCmd
}
