package config

import (
	"fmt"
	"net/url"
	"unicode"
)

const (
	// MaxModelNameLength is the maximum allowed length for model names
	MaxModelNameLength = 100

	// MaxPromptSize is the maximum allowed size for inline system prompts
	MaxPromptSize = 50 * 1024 // 50KB
)

// ValidateInputs performs additional validation on user-controllable fields
func (c *Config) ValidateInputs() error {
	if err := validateModelName(c.LLM.Model, "llm.model"); err != nil {
		return err
	}
	if err := validateModelName(c.Scenario.Model, "scenario.model"); err != nil {
		return err
	}
	if err := validateBaseURL(c.LLM.BaseURL, "llm.base_url"); err != nil {
		return err
	}
	if len(c.LLM.SystemPrompt) > MaxPromptSize {
		return configErrorf("llm.system_prompt", "exceeds maximum size of %d bytes (got %d)",
			MaxPromptSize, len(c.LLM.SystemPrompt))
	}
	if len(c.Generation.InstructionTemplate) > MaxPromptSize {
		return configErrorf("generation.instruction_template", "exceeds maximum size of %d bytes (got %d)",
			MaxPromptSize, len(c.Generation.InstructionTemplate))
	}
	if err := validateTokens("exclusion.tokens", c.Exclusion.Tokens); err != nil {
		return err
	}
	if err := validateTokens("scenario.extra_bundles", c.Scenario.ExtraBundles); err != nil {
		return err
	}
	return nil
}

// validateModelName checks model name length and characters
func validateModelName(modelName, field string) error {
	if len(modelName) > MaxModelNameLength {
		return configErrorf(field, "exceeds maximum length of %d (got %d)",
			MaxModelNameLength, len(modelName))
	}
	if containsControlChars(modelName) {
		return configErrorf(field, "contains invalid control characters")
	}
	return nil
}

// validateBaseURL checks that the base URL is properly formatted
func validateBaseURL(baseURL, field string) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return &ConfigError{Field: field, Message: "invalid URL", Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return configErrorf(field, "must use http or https scheme (got %s)", u.Scheme)
	}
	if u.Host == "" {
		return configErrorf(field, "must have a host")
	}
	return nil
}

func validateTokens(field string, values []string) error {
	for i, v := range values {
		if containsControlChars(v) {
			return configErrorf(fmt.Sprintf("%s[%d]", field, i), "contains invalid control characters")
		}
		if len(v) > MaxPromptSize {
			return configErrorf(fmt.Sprintf("%s[%d]", field, i), "exceeds maximum size of %d bytes", MaxPromptSize)
		}
	}
	return nil
}

// containsControlChars checks if a string contains control characters
// (excluding newlines, tabs, and carriage returns which are acceptable)
func containsControlChars(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			return true
		}
	}
	return false
}
