package config

import (
	"strings"
	"testing"
)

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{"ollama", "http://localhost:11434", ""},
		{"https", "https://api.openai.com/v1", ""},
		{"ftp scheme", "ftp://example.com", "must use http or https"},
		{"no host", "http://", "must have a host"},
		{"unparseable", "http://[::1", "invalid URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateBaseURL(tt.url, "llm.base_url")
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validateBaseURL(%q) unexpected error: %v", tt.url, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validateBaseURL(%q) = %v, want error containing %q", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateInputs(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"long model name", func(c *Config) { c.LLM.Model = strings.Repeat("m", MaxModelNameLength+1) }, "exceeds maximum length"},
		{"control chars in model", func(c *Config) { c.Scenario.Model = "qwen\x00" }, "invalid control characters"},
		{"control chars in token", func(c *Config) { c.Exclusion.Tokens = []string{"hat", "sc\x07arf"} }, "exclusion.tokens[1]"},
		{"huge system prompt", func(c *Config) { c.LLM.SystemPrompt = strings.Repeat("x", MaxPromptSize+1) }, "llm.system_prompt"},
		{"newline in extra bundle ok", func(c *Config) { c.Scenario.ExtraBundles = []string{"a\nb"} }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.ValidateInputs()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateInputs() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateInputs() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
