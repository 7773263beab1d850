package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/lamim/promptforge/internal/api"
	"github.com/lamim/promptforge/internal/checkpoint"
	"github.com/lamim/promptforge/internal/config"
	"github.com/lamim/promptforge/internal/generator"
	"github.com/lamim/promptforge/internal/metrics"
	"github.com/lamim/promptforge/internal/tags"
	"github.com/lamim/promptforge/internal/writer"
	"github.com/lamim/promptforge/pkg/models"
)

const defaultConfigFile = "promptforge.toml"

// loadConfig loads the env file and the TOML configuration. Flags are
// applied by the caller, which then calls Finalize.
func loadConfig(opts *rootOptions) (*config.Config, *config.Secrets, string, error) {
	if opts.envFile != "" {
		if err := loadEnvFile(opts.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load env file: %v\n", err)
		} else if err == nil && opts.verbose {
			fmt.Fprintf(os.Stderr, "Loaded env file: %s\n", opts.envFile)
		}
	}

	configPath := opts.configPath
	if configPath == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			configPath = defaultConfigFile
		}
	}

	cfg, secrets, err := config.Load(configPath)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.debugLLM {
		cfg.LLM.DebugOutput = true
	}
	if opts.noLogFile {
		cfg.Output.NoLogFile = true
	}
	if opts.metricsFile != "" {
		cfg.Output.MetricsFile = opts.metricsFile
	}
	return cfg, secrets, configPath, nil
}

// session bundles what every generating command sets up
type session struct {
	cfg        *config.Config
	secrets    *config.Secrets
	configPath string
	layout     *writer.Layout
	logger     *slog.Logger
	logFile    *os.File
	metrics    *metrics.Collector
	progress   bool
}

func newSession(opts *rootOptions, cfg *config.Config, secrets *config.Secrets, configPath, outDir string) (*session, error) {
	logLevel := slog.LevelInfo
	if opts.verbose || cfg.LLM.DebugOutput {
		logLevel = slog.LevelDebug
	}

	logPath := ""
	if !cfg.Output.NoLogFile {
		logPath = filepath.Join(outDir, writer.LogFile)
	}
	logger, logFile, err := writer.SetupLogger(logPath, logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}

	layout, err := writer.NewLayout(outDir, logger)
	if err != nil {
		if logFile != nil {
			_ = logFile.Close()
		}
		return nil, err
	}

	return &session{
		cfg:        cfg,
		secrets:    secrets,
		configPath: configPath,
		layout:     layout,
		logger:     logger,
		logFile:    logFile,
		metrics:    metrics.NewCollector(logger),
		progress:   !opts.noProgress,
	}, nil
}

func (s *session) close() {
	if s.logFile != nil {
		_ = s.logFile.Sync()
		_ = s.logFile.Close()
	}
}

// finish records run metrics and writes the metrics textfile when requested
func (s *session) finish(command string, stats models.RunStats) {
	s.metrics.RecordRun(command, stats)
	s.logger.Debug(s.metrics.GetMetricsSummary())
	if s.cfg.Output.MetricsFile == "" {
		return
	}
	if err := s.metrics.WriteTextfile(s.cfg.Output.MetricsFile); err != nil {
		s.logger.Warn("Failed to write metrics", "error", err)
	}
}

// newGenerator builds the generator for model on the configured backend.
// chatMLSystem is the system turn used when an empty generate response is
// retried in ChatML form.
func (s *session) newGenerator(model, chatMLSystem string) generator.Generator {
	cfg := s.cfg.LLM
	timeout := time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.Provider == config.ProviderOpenAI {
		client := api.NewOpenAIClient(api.OpenAIOptions{
			BaseURL:            cfg.BaseURL,
			APIKey:             s.secrets.GetAPIKey(cfg.BaseURL),
			Timeout:            timeout,
			MaxRetries:         cfg.MaxRetries,
			RateLimitPerMinute: cfg.RateLimitPerMinute,
			BurstPercent:       cfg.BurstPercent,
		}, s.logger)
		s.logger.Info("Using OpenAI-compatible backend",
			"provider", config.GetProviderName(cfg.BaseURL),
			"model", model)
		return generator.NewOpenAIGenerator(client, model, cfg.MaxOutputTokens)
	}

	client := api.NewClient(api.ClientOptions{
		BaseURL:            cfg.BaseURL,
		Timeout:            timeout,
		MaxRetries:         cfg.MaxRetries,
		MaxBackoff:         time.Duration(cfg.MaxBackoffSeconds) * time.Second,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		BurstPercent:       cfg.BurstPercent,
	}, s.logger)
	s.logger.Info("Using Ollama backend", "host", cfg.BaseURL, "model", model, "mode", cfg.Mode)

	return &generator.FallbackGenerator{
		Primary:    generator.NewOllamaGenerator(client, model, cfg.MaxOutputTokens, s.logger),
		Model:      model,
		Policy:     generator.FallbackPolicy(cfg.ChatMLFallback),
		System:     chatMLSystem,
		OnFallback: s.metrics.IncChatMLFallback,
		Logger:     s.logger,
	}
}

// exclusions merges the exclusion tokens from config, flags and file
func (s *session) exclusions() (tags.Set, error) {
	set := tags.ParseSet(s.cfg.Exclusion.Tokens...)
	if s.cfg.Exclusion.File != "" {
		fileSet, err := tags.LoadSetFile(s.cfg.Exclusion.File)
		if err != nil {
			return nil, &config.ConfigError{Field: "exclusion.file", Message: "cannot load exclusion file", Err: err}
		}
		set.Merge(fileSet)
	}
	if set.Len() > 0 {
		s.logger.Info("Exclusion list loaded", "tokens", set.Len(), "mode", s.cfg.Exclusion.Mode)
		s.logger.Debug("Exclusion tokens", "tokens", set.Sorted())
	}
	return set, nil
}

// checkpointManager returns a manager for dir, resuming from the existing
// checkpoint when resume is set
func (s *session) checkpointManager(dir, command, scope string, resume bool) (*checkpoint.Manager, error) {
	if !resume {
		return checkpoint.NewManager(dir, command, scope, s.cfg, s.logger), nil
	}

	existing, err := checkpoint.Load(dir, s.logger)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Info("No checkpoint found, starting a new run", "dir", dir)
		return checkpoint.NewManager(dir, command, scope, s.cfg, s.logger), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if err := checkpoint.ValidateCheckpoint(existing, s.cfg, command, scope); err != nil {
		return nil, fmt.Errorf("checkpoint validation failed: %w", err)
	}
	s.logger.Info("Resuming from checkpoint",
		"run_id", existing.RunID,
		"completed_jobs", checkpoint.GetCompletedCount(existing),
		"progress", fmt.Sprintf("%.1f%%", checkpoint.GetProgressPercentage(existing, existing.TotalJobs)))
	return checkpoint.NewManagerFromCheckpoint(dir, existing, s.cfg, s.logger), nil
}

// logPending reports how much of the work list a resumed run still has to do
func (s *session) logPending(ckpt *checkpoint.Manager, keys []string) {
	pending := checkpoint.PendingKeys(ckpt.GetCheckpoint(), keys)
	if len(pending) < len(keys) {
		s.logger.Info("Pending jobs", "pending", len(pending), "total", len(keys))
	}
}

// openSink opens the line sink selected by the generation settings
func (s *session) openSink(path string, appendMode bool) (writer.LineSink, error) {
	if s.cfg.Generation.Incremental {
		return writer.NewIncrementalWriter(path, appendMode, s.cfg.Generation.Fsync)
	}
	return writer.NewBufferedWriter(path, appendMode), nil
}

// finalize validates the configuration after flags were applied
func finalize(cmd *cobra.Command, cfg *config.Config) error {
	if err := cfg.Finalize(); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	return nil
}
