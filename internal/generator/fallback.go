package generator

import (
	"context"
	"log/slog"
	"strings"
)

// FallbackPolicy decides when an empty generate-mode response is retried in
// ChatML form
type FallbackPolicy string

const (
	// FallbackAuto retries only for Qwen base models (name contains "qwen"
	// and not "instruct")
	FallbackAuto FallbackPolicy = "auto"
	// FallbackAlways retries for every model
	FallbackAlways FallbackPolicy = "always"
	// FallbackOff never retries
	FallbackOff FallbackPolicy = "off"
)

// Applies reports whether the policy enables the fallback for model
func (p FallbackPolicy) Applies(model string) bool {
	switch p {
	case FallbackAlways:
		return true
	case FallbackOff:
		return false
	default:
		m := strings.ToLower(model)
		return strings.Contains(m, "qwen") && !strings.Contains(m, "instruct")
	}
}

// FallbackGenerator wraps a primary generator. When a generate-mode request
// returns only whitespace it retries once with the same instruction wrapped
// in ChatML tokens. Chat-mode requests and errors are passed through.
type FallbackGenerator struct {
	Primary Generator
	Model   string
	Policy  FallbackPolicy
	// System is used for the ChatML system turn when the request has none
	System string
	// OnFallback is called each time the ChatML retry is sent
	OnFallback func()
	Logger     *slog.Logger
}

// Generate implements Generator
func (f *FallbackGenerator) Generate(ctx context.Context, req Request) (string, error) {
	raw, err := f.Primary.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	if req.Mode == ModeChat || strings.TrimSpace(raw) != "" || !f.Policy.Applies(f.Model) {
		return raw, nil
	}

	system := req.System
	if system == "" {
		system = f.System
	}
	if f.OnFallback != nil {
		f.OnFallback()
	}
	if f.Logger != nil {
		f.Logger.Debug("Empty response, retrying with ChatML prompt", "model", f.Model)
	}

	return f.Primary.Generate(ctx, Request{
		Prompt:      ChatML(system, req.Prompt),
		Mode:        ModeGenerate,
		Temperature: req.Temperature,
	})
}
