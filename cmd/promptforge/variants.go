package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lamim/promptforge/internal/config"
	"github.com/lamim/promptforge/internal/generator"
	"github.com/lamim/promptforge/internal/pipeline"
	"github.com/lamim/promptforge/internal/writer"
)

const variantsCommand = "variants"

type variantsOptions struct {
	llm         llmFlags
	filter      filterFlags
	output      outputFlags
	outDir      string
	variantsOut string
	seed        string
	fromFile    string
}

func newVariantsCmd(opts *rootOptions) *cobra.Command {
	vo := &variantsOptions{}

	cmd := &cobra.Command{
		Use:   "variants",
		Short: "Generate positive prompt variants from seed lines",
		Long: `Generate positive prompt variants with the LLM.

Seeds come from --seed, else --from-file, else the existing positive.txt in the
output directory, else the built-in samples. Accepted lines are appended to
--variants-out (default: positive.txt in the output directory).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVariants(cmd, opts, vo)
		},
	}

	vo.llm.register(cmd, config.DefaultModel, "Read the system prompt from this file")
	vo.filter.register(cmd)
	vo.output.register(cmd, "Variants to generate per seed")

	fs := cmd.Flags()
	fs.StringVar(&vo.outDir, "out-dir", "output", "Output directory")
	fs.StringVar(&vo.variantsOut, "variants-out", "", "Variant output file (default: <out-dir>/positive.txt)")
	fs.StringVar(&vo.seed, "seed", "", "Single seed prompt line")
	fs.StringVar(&vo.fromFile, "from-file", "", "File with one seed prompt per line")

	return cmd
}

// resolveSeeds picks the seed lines by source precedence
func resolveSeeds(vo *variantsOptions, positivePath string) ([]string, string, error) {
	if strings.TrimSpace(vo.seed) != "" {
		return []string{strings.TrimSpace(vo.seed)}, "--seed", nil
	}
	if vo.fromFile != "" {
		seeds, err := writer.ReadLines(vo.fromFile)
		if err != nil {
			return nil, "", &config.ConfigError{Field: "from-file", Message: "cannot read seed file", Err: err}
		}
		if len(seeds) == 0 {
			return nil, "", &config.ConfigError{Field: "from-file", Message: "seed file is empty"}
		}
		return seeds, vo.fromFile, nil
	}
	seeds, err := writer.ReadLines(positivePath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, "", fmt.Errorf("failed to read %s: %w", positivePath, err)
	}
	if len(seeds) > 0 {
		return seeds, positivePath, nil
	}
	return config.SamplePositives, "built-in samples", nil
}

func runVariants(cmd *cobra.Command, opts *rootOptions, vo *variantsOptions) error {
	cfg, secrets, configPath, err := loadConfig(opts)
	if err != nil {
		return err
	}
	vo.llm.apply(cmd, cfg, &cfg.LLM.Model, &cfg.LLM.SystemPromptFile)
	vo.filter.apply(cmd, cfg)
	vo.output.apply(cmd, cfg)
	if cmd.Flags().Changed("out-dir") {
		cfg.Output.Dir = vo.outDir
	}
	if vo.variantsOut != "" {
		cfg.Output.VariantsOut = vo.variantsOut
	}
	if err := finalize(cmd, cfg); err != nil {
		return err
	}

	systemPrompt, err := config.ResolveText(config.Source{
		Field: "llm.system_prompt_file",
		File:  cfg.LLM.SystemPromptFile,
		Text:  cfg.LLM.SystemPrompt,
	})
	if err != nil {
		return err
	}

	s, err := newSession(opts, cfg, secrets, configPath, cfg.Output.Dir)
	if err != nil {
		return err
	}
	defer s.close()

	exclusions, err := s.exclusions()
	if err != nil {
		return err
	}

	// Seeds are read before the sink opens: by default both are positive.txt
	seeds, source, err := resolveSeeds(vo, s.layout.PositivePath())
	if err != nil {
		return err
	}
	target := config.FirstNonEmpty(cfg.Output.VariantsOut, s.layout.PositivePath())
	s.logger.Info("Loaded seeds", "count", len(seeds), "source", source, "target", target)

	if cfg.LLM.Mode == config.ModeChat {
		systemPrompt = config.FirstNonEmpty(systemPrompt, config.GetDefaultVariantSystemPrompt())
	}

	gen := s.newGenerator(cfg.LLM.Model, config.GetDefaultChatMLSystemPrompt())
	p := pipeline.New(gen, pipeline.Options{
		Exclusions:  exclusions,
		Mode:        cfg.Exclusion.Mode,
		Retries:     cfg.Generation.Retries,
		Safety:      !cfg.Generation.DisableSafeAdult,
		Temperature: cfg.LLM.Temperature,
		LLMMode:     generator.Mode(cfg.LLM.Mode),
		System:      systemPrompt,
		Instruction: func(seed string) (string, error) {
			return generator.VariantInstruction(cfg.Generation.InstructionTemplate, seed)
		},
		Debug: cfg.LLM.DebugOutput,
	}, s.logger)
	p.SetObserver(s.metrics)

	// The seed file may be the target itself, so the scope names the sources
	// rather than their contents and a resume keeps the original seed count.
	scope := source + "->" + target
	ckpt, err := s.checkpointManager(s.layout.Dir(), variantsCommand, scope, vo.output.resume)
	if err != nil {
		return err
	}
	if total := ckpt.GetCheckpoint().TotalJobs; vo.output.resume && total > 0 && len(seeds) > total {
		seeds = seeds[:total]
	}
	ckpt.SetTotalJobs(len(seeds))
	seedKeys := make([]string, len(seeds))
	for i := range seeds {
		seedKeys[i] = pipeline.SeedKey(i)
	}
	s.logPending(ckpt, seedKeys)

	if err := s.layout.BackupConfig(configPath); err != nil {
		s.logger.Warn("Failed to backup config", "error", err)
	}

	sink, err := s.openSink(target, true)
	if err != nil {
		return err
	}

	runner := &pipeline.Runner{
		Pipeline:      p,
		Sink:          sink,
		Checkpoint:    ckpt,
		ProgressEvery: cfg.Generation.ProgressEvery,
		ShowProgress:  s.progress,
		Logger:        s.logger,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, runErr := runner.Run(ctx, seeds, cfg.Generation.Variants)
	if err := sink.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to write variants: %w", err)
	}
	s.finish(variantsCommand, stats)

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) && cfg.Generation.EnableCheckpointing {
			s.logger.Warn("Generation interrupted, rerun with --resume to continue",
				"checkpoint", ckpt.Path())
		}
		return runErr
	}
	if err := ckpt.MarkComplete(); err != nil {
		s.logger.Warn("Failed to mark checkpoint complete", "error", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d lines to %s (%d skipped, %d failed)\n",
		stats.Variants.Accepted, target, stats.Variants.Skipped, stats.Variants.Failed)
	return nil
}
