package main

import (
	"github.com/spf13/cobra"

	"github.com/lamim/promptforge/internal/config"
	"github.com/lamim/promptforge/pkg/models"
)

// llmFlags are the backend flags shared by variants and scenario. The model
// and system prompt file targets differ per command and are passed to apply.
type llmFlags struct {
	provider         string
	baseURL          string
	model            string
	mode             string
	temperature      float64
	maxTokens        int
	timeout          int
	noChatMLFallback bool
	systemPrompt     string
	systemPromptFile string
}

func (f *llmFlags) register(cmd *cobra.Command, defaultModel, systemFileHelp string) {
	fs := cmd.Flags()
	fs.StringVar(&f.provider, "provider", config.ProviderOllama, "LLM backend: ollama or openai")
	fs.StringVar(&f.baseURL, "llm-host", config.DefaultOllamaHost, "LLM host base URL")
	fs.StringVar(&f.model, "model", defaultModel, "LLM model name")
	fs.StringVar(&f.mode, "llm-mode", config.ModeGenerate, "Ollama request shape: generate or chat")
	fs.Float64Var(&f.temperature, "temperature", config.DefaultTemperature, "Sampling temperature")
	fs.IntVar(&f.maxTokens, "max-tokens", config.DefaultNumPredict, "Maximum output tokens per response")
	fs.IntVar(&f.timeout, "timeout", config.DefaultTimeoutSeconds, "HTTP timeout in seconds")
	fs.BoolVar(&f.noChatMLFallback, "no-chatml-fallback", false, "Disable the ChatML retry for empty generate responses")
	fs.StringVar(&f.systemPrompt, "system-prompt", "", "System prompt for chat and ChatML requests")
	fs.StringVar(&f.systemPromptFile, "system-prompt-file", "", systemFileHelp)
}

// apply copies explicitly set flags over the file configuration
func (f *llmFlags) apply(cmd *cobra.Command, cfg *config.Config, model, systemPromptFile *string) {
	fs := cmd.Flags()
	if fs.Changed("provider") {
		cfg.LLM.Provider = f.provider
		if !fs.Changed("llm-host") && f.provider == config.ProviderOpenAI && cfg.LLM.BaseURL == config.DefaultOllamaHost {
			cfg.LLM.BaseURL = config.DefaultOpenAIBaseURL
		}
	}
	if fs.Changed("llm-host") {
		cfg.LLM.BaseURL = f.baseURL
	}
	if fs.Changed("model") {
		*model = f.model
	}
	if fs.Changed("llm-mode") {
		cfg.LLM.Mode = f.mode
	}
	if fs.Changed("temperature") {
		cfg.LLM.Temperature = f.temperature
	}
	if fs.Changed("max-tokens") {
		cfg.LLM.MaxOutputTokens = f.maxTokens
	}
	if fs.Changed("timeout") {
		cfg.LLM.HTTPTimeoutSeconds = f.timeout
	}
	if f.noChatMLFallback {
		cfg.LLM.ChatMLFallback = config.FallbackOff
	}
	if fs.Changed("system-prompt") {
		cfg.LLM.SystemPrompt = f.systemPrompt
	}
	if fs.Changed("system-prompt-file") {
		*systemPromptFile = f.systemPromptFile
	}
}

// filterFlags control exclusion, retries and safety
type filterFlags struct {
	exclude         []string
	excludeFile     string
	excludeMode     string
	retries         int
	noSafeAdultTags bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringArrayVar(&f.exclude, "exclude", nil, "Exclude tokens (comma-separated); may be repeated")
	fs.StringVar(&f.excludeFile, "exclude-file", "", "File with tokens to exclude (one per line or comma-separated)")
	fs.StringVar(&f.excludeMode, "exclude-mode", string(models.ExcludeModeDrop), "drop: remove tokens; reject: discard lines containing them")
	fs.IntVar(&f.retries, "retries", 3, "Attempts per variant before it is skipped")
	fs.BoolVar(&f.noSafeAdultTags, "no-safe-adult-tags", false, "Disable rewriting ambiguous age tags")
}

func (f *filterFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	if fs.Changed("exclude") {
		cfg.Exclusion.Tokens = append(cfg.Exclusion.Tokens, f.exclude...)
	}
	if fs.Changed("exclude-file") {
		cfg.Exclusion.File = f.excludeFile
	}
	if fs.Changed("exclude-mode") {
		cfg.Exclusion.Mode = models.ExcludeMode(f.excludeMode)
	}
	if fs.Changed("retries") {
		cfg.Generation.Retries = f.retries
	}
	if f.noSafeAdultTags {
		cfg.Generation.DisableSafeAdult = true
	}
}

// outputFlags control how lines reach disk
type outputFlags struct {
	incremental   bool
	fsync         bool
	progressEvery int
	variants      int
	resume        bool
}

func (f *outputFlags) register(cmd *cobra.Command, variantsHelp string) {
	fs := cmd.Flags()
	fs.IntVar(&f.variants, "variants", 3, variantsHelp)
	fs.BoolVar(&f.incremental, "incremental", false, "Write each accepted line immediately")
	fs.BoolVar(&f.fsync, "fsync", false, "fsync after each write (requires --incremental)")
	fs.IntVar(&f.progressEvery, "progress-every", 0, "Log progress every N written lines (0=off)")
	fs.BoolVar(&f.resume, "resume", false, "Skip work recorded as done in checkpoint.json")
}

func (f *outputFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	if fs.Changed("variants") {
		cfg.Generation.Variants = f.variants
	}
	if f.incremental {
		cfg.Generation.Incremental = true
	}
	if f.fsync {
		cfg.Generation.Fsync = true
	}
	if fs.Changed("progress-every") {
		cfg.Generation.ProgressEvery = f.progressEvery
	}
	if f.resume {
		cfg.Generation.EnableCheckpointing = true
	}
}
