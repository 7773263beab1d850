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
	"github.com/lamim/promptforge/internal/sequence"
	"github.com/lamim/promptforge/internal/tags"
	"github.com/lamim/promptforge/internal/writer"
	"github.com/lamim/promptforge/pkg/models"
)

const (
	scenarioCommand = "scenario"
	// guideFile is picked up as the cut system prompt when it exists
	guideFile = "QWEN Image Creation Prompt Engineer Guide.txt"
)

type scenarioOptions struct {
	llm    llmFlags
	filter filterFlags
	output outputFlags

	scenario     string
	scenarioFile string
	topics       []string
	topicFile    string
	autoScenario bool
	sentences    int
	language     string
	storyStyle   string

	preset       string
	bundles      []string
	extraBundles []string
	style        string
	numCuts      int
	durationSec  int
	sequenceAuto bool

	outDir     string
	slugMaxLen int
	name       string
	indexHTML  bool

	adultOnly          bool
	adultFlagFilenames bool
	adultRejectMinor   bool
	adultBanned        []string
	adultBannedFile    string
}

func newScenarioCmd(opts *rootOptions) *cobra.Command {
	so := &scenarioOptions{}

	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Expand a scenario into per-cut Qwen-Image prompt files",
		Long: `Expand a scenario into a storyboard sequence and generate prompt variants
for every cut. Each cut is written to <out-dir>/<slug>/NN_<label>.txt and the
folder gets an INDEX.md manifest.

The scenario comes from --scenario-file, else --scenario, else it is written by
the LLM from --topic/--topic-file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(cmd, opts, so)
		},
	}

	so.llm.register(cmd, config.DefaultScenarioModel,
		fmt.Sprintf("System prompt file for cut prompts (default: %q when present)", guideFile))
	so.filter.register(cmd)
	so.output.register(cmd, "Variants to generate per cut")

	fs := cmd.Flags()
	fs.StringVar(&so.scenario, "scenario", "", "Scenario text")
	fs.StringVar(&so.scenarioFile, "scenario-file", "", "File holding the scenario text")
	fs.StringArrayVar(&so.topics, "topic", nil, "Topic or keyword to include in the scenario (repeatable)")
	fs.StringVar(&so.topicFile, "topic-file", "", "File with topics (comma or newline separated)")
	fs.BoolVar(&so.autoScenario, "auto-scenario", false, "Write the scenario from the topics with the LLM")
	fs.IntVar(&so.sentences, "story-sentences", 2, "Sentences in a generated scenario")
	fs.StringVar(&so.language, "story-language", "ko", "Language of a generated scenario: en or ko")
	fs.StringVar(&so.storyStyle, "story-style", "logline", "Scenario style: logline or vignette")

	fs.StringVar(&so.preset, "preset", "storyboard", "Shot preset")
	fs.StringArrayVar(&so.bundles, "bundle", nil, "Keyword bundle to add to every cut (repeatable)")
	fs.StringArrayVar(&so.extraBundles, "extra-bundle", nil, "Extra comma-separated tokens for every cut (repeatable)")
	fs.StringVar(&so.style, "style", string(config.DefaultStyle), "Qwen-Image output style: sentence, structured or tags")
	fs.IntVar(&so.numCuts, "num-cuts", 0, "Number of cuts (0 keeps the preset length)")
	fs.IntVar(&so.durationSec, "duration-sec", 10, "Approximate sequence duration in seconds")
	fs.BoolVar(&so.sequenceAuto, "sequence-auto", false, "Ask the LLM for a shot list (requires --num-cuts)")

	fs.StringVar(&so.outDir, "out-dir", "output/scenarios", "Base output directory")
	fs.IntVar(&so.slugMaxLen, "slug-max-len", 80, "Maximum folder slug length; a hash suffix marks truncation")
	fs.StringVar(&so.name, "name", "", "Scenario name for the folder slug (default: the scenario text)")
	fs.BoolVar(&so.indexHTML, "index-html", false, "Also render INDEX.html")

	fs.BoolVar(&so.adultOnly, "adult-only", false, "Add 'adult woman' to every cut seed")
	fs.BoolVar(&so.adultFlagFilenames, "adult-flag-filenames", false, "Suffix cut files with _adult")
	fs.BoolVar(&so.adultRejectMinor, "adult-reject-minor", false, "Reject lines containing minor-coded terms")
	fs.StringArrayVar(&so.adultBanned, "adult-banned", nil, "Additional minor-coded terms (repeatable, comma-separated)")
	fs.StringVar(&so.adultBannedFile, "adult-banned-file", "", "File with additional minor-coded terms")

	return cmd
}

func (so *scenarioOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	so.llm.apply(cmd, cfg, &cfg.Scenario.Model, &cfg.Scenario.SystemPromptFile)
	so.filter.apply(cmd, cfg)
	so.output.apply(cmd, cfg)

	fs := cmd.Flags()
	sc := &cfg.Scenario
	if fs.Changed("preset") {
		sc.Preset = so.preset
	}
	if fs.Changed("bundle") {
		sc.Bundles = so.bundles
	}
	if fs.Changed("extra-bundle") {
		sc.ExtraBundles = so.extraBundles
	}
	if fs.Changed("style") {
		sc.Style = models.OutputStyle(so.style)
	}
	if fs.Changed("num-cuts") {
		sc.NumCuts = so.numCuts
	}
	if fs.Changed("duration-sec") {
		sc.DurationSec = so.durationSec
	}
	if so.sequenceAuto {
		sc.SequenceAuto = true
	}
	if fs.Changed("out-dir") {
		sc.OutDir = so.outDir
	}
	if fs.Changed("slug-max-len") {
		sc.SlugMaxLen = so.slugMaxLen
	}
	if fs.Changed("story-sentences") {
		sc.StorySentences = so.sentences
	}
	if fs.Changed("story-language") {
		sc.StoryLanguage = so.language
	}
	if fs.Changed("story-style") {
		sc.StoryStyle = so.storyStyle
	}
	if so.indexHTML {
		cfg.Output.IndexHTML = true
	}
}

// topicList collects topics from flags and the topic file
func (so *scenarioOptions) topicList() ([]string, error) {
	topics := make([]string, 0, len(so.topics))
	for _, t := range so.topics {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	if so.topicFile != "" {
		data, err := os.ReadFile(so.topicFile)
		if err != nil {
			return nil, &config.ConfigError{Field: "topic-file", Message: "cannot read topic file", Err: err}
		}
		topics = append(topics, tags.SplitList(string(data))...)
	}
	return topics, nil
}

// minorGuard builds the reject set used by --adult-reject-minor
func (so *scenarioOptions) minorGuard() (tags.Set, error) {
	if !so.adultRejectMinor {
		return nil, nil
	}
	guard := tags.DefaultMinorTerms()
	guard.Merge(tags.ParseSet(so.adultBanned...))
	if so.adultBannedFile != "" {
		extra, err := tags.LoadSetFile(so.adultBannedFile)
		if err != nil {
			return nil, &config.ConfigError{Field: "adult-banned-file", Message: "cannot load banned terms", Err: err}
		}
		guard.Merge(extra)
	}
	return guard, nil
}

func (so *scenarioOptions) adultOptions() []string {
	var out []string
	if so.adultOnly {
		out = append(out, "adult_only (added 'adult woman' to seed)")
	}
	if so.adultFlagFilenames {
		out = append(out, "adult_flag_filenames (files suffixed with _adult)")
	}
	if so.adultRejectMinor {
		out = append(out, "adult_reject_minor (filtered minor-coded tokens)")
	}
	return out
}

// cutSystemPrompt resolves the system prompt for cut variants. A file named
// in flags or config must exist; the guide file is only used when present.
func cutSystemPrompt(cfg *config.Config) (string, error) {
	src := config.Source{
		Field:   "scenario.system_prompt_file",
		File:    cfg.Scenario.SystemPromptFile,
		Text:    cfg.LLM.SystemPrompt,
		Default: config.GetDefaultScenarioSystemPrompt(),
	}
	if src.File != "" {
		return config.ResolveText(src)
	}
	src.File = guideFile
	return config.ResolveOptionalText(src)
}

func runScenario(cmd *cobra.Command, opts *rootOptions, so *scenarioOptions) error {
	cfg, secrets, configPath, err := loadConfig(opts)
	if err != nil {
		return err
	}
	so.apply(cmd, cfg)
	if err := finalize(cmd, cfg); err != nil {
		return err
	}

	scenarioText, err := config.ResolveText(config.Source{
		Field: "scenario-file",
		File:  so.scenarioFile,
		Text:  so.scenario,
	})
	if err != nil {
		return err
	}
	topics, err := so.topicList()
	if err != nil {
		return err
	}
	if scenarioText == "" && len(topics) == 0 {
		return &config.ConfigError{Field: "scenario", Message: "provide --scenario/--scenario-file or --topic/--auto-scenario"}
	}
	if so.autoScenario && len(topics) == 0 {
		return &config.ConfigError{Field: "auto-scenario", Message: "requires --topic or --topic-file"}
	}
	systemPrompt, err := cutSystemPrompt(cfg)
	if err != nil {
		return err
	}
	guard, err := so.minorGuard()
	if err != nil {
		return err
	}

	catalog, err := sequence.DefaultCatalog()
	if err != nil {
		return fmt.Errorf("failed to load shot catalog: %w", err)
	}
	bundle, err := catalog.BundleTokens(cfg.Scenario.Bundles, cfg.Scenario.ExtraBundles, so.adultOnly)
	if err != nil {
		return &config.ConfigError{Field: "bundle", Message: "invalid bundle", Err: err}
	}

	s, err := newSession(opts, cfg, secrets, configPath, cfg.Scenario.OutDir)
	if err != nil {
		return err
	}
	defer s.close()

	exclusions, err := s.exclusions()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	model := cfg.Scenario.Model
	gen := s.newGenerator(model, systemPrompt)
	llmMode := generator.Mode(cfg.LLM.Mode)

	if so.autoScenario || scenarioText == "" {
		story := &sequence.StoryWriter{Generator: gen, Temperature: cfg.LLM.Temperature, Logger: s.logger}
		scenarioText, err = story.Write(ctx, topics, cfg.Scenario.StorySentences, cfg.Scenario.StoryLanguage, cfg.Scenario.StoryStyle)
		if err != nil {
			return fmt.Errorf("failed to generate scenario from topics: %w", err)
		}
		s.logger.Info("Generated scenario", "text", scenarioText)
	}

	planner := sequence.NewPlanner(catalog, gen, llmMode, cfg.LLM.Temperature, s.logger)
	cuts, err := planner.Plan(ctx, sequence.PlanRequest{
		Scenario:    scenarioText,
		NumCuts:     cfg.Scenario.NumCuts,
		DurationSec: cfg.Scenario.DurationSec,
		Preset:      cfg.Scenario.Preset,
		Auto:        cfg.Scenario.SequenceAuto,
		Topics:      topics,
		Language:    cfg.Scenario.StoryLanguage,
		Bundle:      bundle,
	})
	if err != nil {
		return err
	}

	scenarioName := config.FirstNonEmpty(so.name, scenarioText)
	slug := sequence.Slugify(scenarioName, cfg.Scenario.SlugMaxLen, true)
	dir, err := s.layout.ScenarioLayout(slug)
	if err != nil {
		return err
	}

	p := pipeline.New(gen, pipeline.Options{
		Exclusions:  exclusions,
		Guard:       guard,
		Mode:        cfg.Exclusion.Mode,
		Retries:     cfg.Generation.Retries,
		Safety:      !cfg.Generation.DisableSafeAdult,
		Temperature: cfg.LLM.Temperature,
		LLMMode:     llmMode,
		System:      systemPrompt,
		Instruction: func(seed string) (string, error) {
			return generator.QwenImageInstruction(seed, cfg.Scenario.Style), nil
		},
		Debug: cfg.LLM.DebugOutput,
	}, s.logger)
	p.SetObserver(s.metrics)

	keys := make([]string, len(cuts))
	for i, cut := range cuts {
		keys[i] = cut.Key() + "|" + cut.Seed
	}
	ckpt, err := s.checkpointManager(dir.Dir(), scenarioCommand, slug+"\n"+strings.Join(keys, "\n"), so.output.resume)
	if err != nil {
		return err
	}
	ckpt.SetTotalJobs(len(cuts))
	cutKeys := make([]string, len(cuts))
	for i, cut := range cuts {
		cutKeys[i] = cut.Key()
	}
	s.logPending(ckpt, cutKeys)

	if err := dir.BackupConfig(configPath); err != nil {
		s.logger.Warn("Failed to backup config", "error", err)
	}

	runner := &pipeline.SequenceRunner{
		Pipeline: p,
		PathFor: func(cut models.CutSpec) string {
			return dir.CutPath(cut, so.adultFlagFilenames)
		},
		Open: func(path string) (writer.LineSink, error) {
			return s.openSink(path, false)
		},
		Checkpoint:   ckpt,
		ShowProgress: s.progress,
		Logger:       s.logger,
	}

	results, stats, runErr := runner.Run(ctx, cuts, cfg.Generation.Variants)
	s.finish(scenarioCommand, stats)

	for _, res := range results {
		switch {
		case res.Err != nil:
			fmt.Fprintf(cmd.ErrOrStderr(), "[FAIL] %s: %v\n", res.Path, res.Err)
		case res.Resumed:
			fmt.Fprintf(cmd.OutOrStdout(), "[SKIP] %s (completed earlier)\n", res.Path)
		case res.Stats.Rejected > 0:
			fmt.Fprintf(cmd.OutOrStdout(), "[OK] %s (%d line(s), filtered %d)\n", res.Path, res.Lines, res.Stats.Rejected)
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "[OK] %s (%d line(s))\n", res.Path, res.Lines)
		}
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) && cfg.Generation.EnableCheckpointing {
			s.logger.Warn("Generation interrupted, rerun with --resume to continue",
				"checkpoint", ckpt.Path())
		}
		return runErr
	}

	files := make([]string, len(cuts))
	for i, cut := range cuts {
		files[i] = writer.CutFileName(cut, so.adultFlagFilenames)
	}
	written, err := writer.WriteManifest(dir.Dir(), writer.Manifest{
		Scenario:     scenarioName,
		Topics:       topics,
		ScenarioText: scenarioText,
		Model:        model,
		Style:        string(cfg.Scenario.Style),
		Preset:       cfg.Scenario.Preset,
		NumCuts:      len(cuts),
		DurationSec:  cfg.Scenario.DurationSec,
		AdultOptions: so.adultOptions(),
		Bundles:      cfg.Scenario.Bundles,
		Extra:        cfg.Scenario.ExtraBundles,
		Files:        files,
	}, cfg.Output.IndexHTML)
	if err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	for _, path := range written {
		fmt.Fprintf(cmd.OutOrStdout(), "[INDEX] %s\n", path)
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d cuts failed", failed, len(cuts))
	}
	if err := ckpt.MarkComplete(); err != nil {
		s.logger.Warn("Failed to mark checkpoint complete", "error", err)
	}
	s.logger.Info("Scenario completed", "dir", dir.Dir(), "cuts", len(cuts), "lines", stats.Variants.Accepted)
	return nil
}
