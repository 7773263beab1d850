package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Load reads and parses the configuration file and environment variables.
// An empty configPath yields the built-in defaults.
func Load(configPath string) (*Config, *Secrets, error) {
	var cfg Config

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, nil, &ConfigError{Field: "config", Message: "failed to read config file", Err: err}
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, nil, &ConfigError{Field: "config", Message: "failed to parse config file", Err: err}
		}
	}

	applyDefaults(&cfg)

	if err := cfg.Finalize(); err != nil {
		return nil, nil, err
	}

	secrets, err := LoadSecrets()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	return &cfg, secrets, nil
}

// Default returns a configuration holding only built-in defaults
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// Finalize validates the configuration after CLI overrides have been applied
func (c *Config) Finalize() error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := c.ValidateInputs(); err != nil {
		return fmt.Errorf("input validation failed: %w", err)
	}
	return nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = ProviderOllama
	}
	if cfg.LLM.BaseURL == "" {
		if cfg.LLM.Provider == ProviderOpenAI {
			cfg.LLM.BaseURL = DefaultOpenAIBaseURL
		} else {
			cfg.LLM.BaseURL = DefaultOllamaHost
		}
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = DefaultModel
	}
	if cfg.LLM.Mode == "" {
		cfg.LLM.Mode = ModeGenerate
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = DefaultTemperature
	}
	if cfg.LLM.MaxOutputTokens == 0 {
		cfg.LLM.MaxOutputTokens = DefaultNumPredict
	}
	if cfg.LLM.HTTPTimeoutSeconds == 0 {
		cfg.LLM.HTTPTimeoutSeconds = DefaultTimeoutSeconds
	}
	// NOTE: In TOML, we can't distinguish 0 from unset, so:
	// - Unset (0) → defaults to 2 transport retries
	// - Explicitly set to -1 → no transport retries
	if cfg.LLM.MaxRetries == 0 {
		cfg.LLM.MaxRetries = 2
	}
	if cfg.LLM.MaxBackoffSeconds == 0 {
		cfg.LLM.MaxBackoffSeconds = 30
	}
	if cfg.LLM.RateLimitPerMinute == 0 {
		cfg.LLM.RateLimitPerMinute = 600
	}
	if cfg.LLM.BurstPercent == 0 {
		cfg.LLM.BurstPercent = 15
	}
	if cfg.LLM.ChatMLFallback == "" {
		cfg.LLM.ChatMLFallback = FallbackAuto
	}

	if cfg.Generation.Variants == 0 {
		cfg.Generation.Variants = 3
	}
	if cfg.Generation.Retries == 0 {
		cfg.Generation.Retries = 3
	}
	if cfg.Generation.CheckpointInterval == 0 {
		cfg.Generation.CheckpointInterval = 1
	}

	if cfg.Exclusion.Mode == "" {
		cfg.Exclusion.Mode = DefaultExcludeMode
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "output"
	}

	if cfg.Scenario.Model == "" {
		cfg.Scenario.Model = DefaultScenarioModel
	}
	if cfg.Scenario.OutDir == "" {
		cfg.Scenario.OutDir = "output/scenarios"
	}
	if cfg.Scenario.Preset == "" {
		cfg.Scenario.Preset = "storyboard"
	}
	if cfg.Scenario.Style == "" {
		cfg.Scenario.Style = DefaultStyle
	}
	if cfg.Scenario.DurationSec == 0 {
		cfg.Scenario.DurationSec = 10
	}
	if cfg.Scenario.SlugMaxLen == 0 {
		cfg.Scenario.SlugMaxLen = 80
	}
	if cfg.Scenario.StorySentences == 0 {
		cfg.Scenario.StorySentences = 2
	}
	if cfg.Scenario.StoryLanguage == "" {
		cfg.Scenario.StoryLanguage = "ko"
	}
	if cfg.Scenario.StoryStyle == "" {
		cfg.Scenario.StoryStyle = "logline"
	}
}
