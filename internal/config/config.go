package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/lamim/promptforge/pkg/models"
)

// Config represents the complete application configuration
type Config struct {
	LLM        LLMConfig        `toml:"llm"`
	Generation GenerationConfig `toml:"generation"`
	Exclusion  ExclusionConfig  `toml:"exclusion"`
	Output     OutputConfig     `toml:"output"`
	Scenario   ScenarioConfig   `toml:"scenario"`
}

// LLMConfig describes the generator backend
type LLMConfig struct {
	Provider           string  `toml:"provider"` // ollama (default) or openai
	BaseURL            string  `toml:"base_url"`
	Model              string  `toml:"model"`
	Mode               string  `toml:"mode"` // generate or chat (ollama only)
	Temperature        float64 `toml:"temperature"`
	MaxOutputTokens    int     `toml:"max_output_tokens"` // num_predict for ollama
	HTTPTimeoutSeconds int     `toml:"http_timeout_seconds"`
	MaxRetries         int     `toml:"max_retries"` // transport retries, -1 = none
	MaxBackoffSeconds  int     `toml:"max_backoff_seconds"`
	RateLimitPerMinute int     `toml:"rate_limit_per_minute"`
	BurstPercent       int     `toml:"burst_percent"`
	ChatMLFallback     string  `toml:"chatml_fallback"` // auto, always or off
	SystemPrompt       string  `toml:"system_prompt"`
	SystemPromptFile   string  `toml:"system_prompt_file"`
	DebugOutput        bool    `toml:"debug_output"`
}

// GenerationConfig holds variant generation settings. InstructionTemplate
// overrides the built-in variant instruction and is rendered with {{.Seed}}.
type GenerationConfig struct {
	Variants            int    `toml:"variants"`
	Retries             int    `toml:"retries"`
	DisableSafeAdult    bool   `toml:"no_safe_adult_tags"`
	Incremental         bool   `toml:"incremental"`
	Fsync               bool   `toml:"fsync"`
	ProgressEvery       int    `toml:"progress_every"`
	EnableCheckpointing bool   `toml:"enable_checkpointing"`
	CheckpointInterval  int    `toml:"checkpoint_interval"`
	InstructionTemplate string `toml:"instruction_template"`
}

// ExclusionConfig holds the exclusion token sources and policy
type ExclusionConfig struct {
	Tokens []string           `toml:"tokens"`
	File   string             `toml:"file"`
	Mode   models.ExcludeMode `toml:"mode"`
}

// OutputConfig holds output locations
type OutputConfig struct {
	Dir         string `toml:"dir"`
	VariantsOut string `toml:"variants_out"`
	MetricsFile string `toml:"metrics_file"`
	IndexHTML   bool   `toml:"index_html"`
	NoLogFile   bool   `toml:"no_log_file"`
}

// ScenarioConfig holds storyboard sequence settings
type ScenarioConfig struct {
	Model            string             `toml:"model"`
	OutDir           string             `toml:"out_dir"`
	Preset           string             `toml:"preset"`
	Style            models.OutputStyle `toml:"style"`
	Bundles          []string           `toml:"bundles"`
	ExtraBundles     []string           `toml:"extra_bundles"`
	NumCuts          int                `toml:"num_cuts"`
	DurationSec      int                `toml:"duration_sec"`
	SequenceAuto     bool               `toml:"sequence_auto"`
	SlugMaxLen       int                `toml:"slug_max_len"`
	StorySentences   int                `toml:"story_sentences"`
	StoryLanguage    string             `toml:"story_language"`
	StoryStyle       string             `toml:"story_style"`
	SystemPromptFile string             `toml:"system_prompt_file"`
}

// Secrets holds sensitive credentials loaded from environment variables
type Secrets struct {
	APIKeys map[string]string
}

// ConfigError reports an invalid option or option combination. It is
// returned before any generation starts.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErrorf(field, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err wraps a *ConfigError
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

const (
	// MaxVariants is the upper bound for variants per seed or cut
	MaxVariants = 1000
	// MaxRetries is the upper bound for the per-variant retry budget
	MaxRetries = 50
	// MaxNumCuts is the upper bound for cuts in one sequence
	MaxNumCuts = 100
)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOllama, ProviderOpenAI:
	default:
		return configErrorf("llm.provider", "must be one of: ollama, openai (got %s)", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return configErrorf("llm.model", "is required")
	}
	switch c.LLM.Mode {
	case ModeGenerate, ModeChat:
	default:
		return configErrorf("llm.mode", "must be one of: generate, chat (got %s)", c.LLM.Mode)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return configErrorf("llm.temperature", "must be between 0 and 2 (got %.2f)", c.LLM.Temperature)
	}
	if c.LLM.MaxOutputTokens < 1 {
		return configErrorf("llm.max_output_tokens", "must be at least 1")
	}
	switch c.LLM.ChatMLFallback {
	case FallbackAuto, FallbackAlways, FallbackOff:
	default:
		return configErrorf("llm.chatml_fallback", "must be one of: auto, always, off (got %s)", c.LLM.ChatMLFallback)
	}
	if c.LLM.BurstPercent < 1 || c.LLM.BurstPercent > 50 {
		return configErrorf("llm.burst_percent", "must be between 1 and 50 (got %d)", c.LLM.BurstPercent)
	}
	if c.LLM.SystemPrompt != "" && c.LLM.SystemPromptFile != "" {
		// file wins; both being set in the same config file is ambiguous
		fmt.Fprintf(os.Stderr, "WARNING: llm.system_prompt_file overrides llm.system_prompt\n")
	}

	if c.Generation.Variants < 1 || c.Generation.Variants > MaxVariants {
		return configErrorf("generation.variants", "must be between 1 and %d (got %d)", MaxVariants, c.Generation.Variants)
	}
	if c.Generation.Retries < 0 || c.Generation.Retries > MaxRetries {
		return configErrorf("generation.retries", "must be between 0 and %d (got %d)", MaxRetries, c.Generation.Retries)
	}
	if c.Generation.ProgressEvery < 0 {
		return configErrorf("generation.progress_every", "must not be negative")
	}
	if c.Generation.Fsync && !c.Generation.Incremental {
		return configErrorf("generation.fsync", "requires incremental output")
	}

	mode, err := models.ParseExcludeMode(string(c.Exclusion.Mode))
	if err != nil {
		return &ConfigError{Field: "exclusion.mode", Message: "invalid value", Err: err}
	}
	c.Exclusion.Mode = mode

	switch c.Scenario.Style {
	case models.StyleSentence, models.StyleStructured, models.StyleTags:
	default:
		return configErrorf("scenario.style", "must be one of: sentence, structured, tags (got %s)", c.Scenario.Style)
	}
	if c.Scenario.NumCuts < 0 || c.Scenario.NumCuts > MaxNumCuts {
		return configErrorf("scenario.num_cuts", "must be between 0 and %d (got %d)", MaxNumCuts, c.Scenario.NumCuts)
	}
	if c.Scenario.SequenceAuto && c.Scenario.NumCuts == 0 {
		return configErrorf("scenario.sequence_auto", "requires num_cuts")
	}
	if c.Scenario.DurationSec < 1 {
		return configErrorf("scenario.duration_sec", "must be at least 1")
	}
	if c.Scenario.SlugMaxLen < 0 {
		return configErrorf("scenario.slug_max_len", "must not be negative")
	}
	if c.Scenario.StorySentences < 1 {
		return configErrorf("scenario.story_sentences", "must be at least 1")
	}
	switch c.Scenario.StoryLanguage {
	case "en", "ko":
	default:
		return configErrorf("scenario.story_language", "must be one of: en, ko (got %s)", c.Scenario.StoryLanguage)
	}
	switch c.Scenario.StoryStyle {
	case "logline", "vignette":
	default:
		return configErrorf("scenario.story_style", "must be one of: logline, vignette (got %s)", c.Scenario.StoryStyle)
	}

	return nil
}

// LoadSecrets loads sensitive credentials from environment variables
func LoadSecrets() (*Secrets, error) {
	secrets := &Secrets{
		APIKeys: make(map[string]string),
	}

	// Generic key for any OpenAI-compatible server
	if key := os.Getenv("API_KEY"); key != "" {
		secrets.APIKeys["generic"] = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		secrets.APIKeys["openai"] = key
	}

	return secrets, nil
}

// GetAPIKey returns the API key for a given base URL
func (s *Secrets) GetAPIKey(baseURL string) string {
	if strings.Contains(baseURL, "openai.com") {
		if key := s.APIKeys["openai"]; key != "" {
			return key
		}
	}
	if key := s.APIKeys["generic"]; key != "" {
		return key
	}
	// A local server without auth still works with the OpenAI key unset
	return s.APIKeys["openai"]
}

// GetProviderName extracts a provider name from a base URL for rate limiting
func GetProviderName(baseURL string) string {
	if strings.Contains(baseURL, "openai.com") {
		return "openai"
	}
	// For localhost or unknown providers, use the full base URL as provider name
	return baseURL
}
