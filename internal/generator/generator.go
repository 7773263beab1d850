// Package generator adapts LLM backends to the single capability the
// pipeline needs: turn an instruction into raw text.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lamim/promptforge/internal/api"
)

// Mode selects the request shape sent to the backend
type Mode string

const (
	// ModeGenerate sends a raw completion prompt
	ModeGenerate Mode = "generate"
	// ModeChat sends system and user messages
	ModeChat Mode = "chat"
)

// Request is one generation call
type Request struct {
	Prompt      string
	System      string
	Mode        Mode
	Temperature float64
}

// Generator produces raw text for an instruction. Implementations return
// *GenerationError for backend failures and the context error on cancellation.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GenerationError reports a failed or timed out backend call
type GenerationError struct {
	Backend string
	Model   string
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation with model %s failed: %v", e.Backend, e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// wrapError leaves context errors untouched so callers can tell cancellation
// apart from backend failures
func wrapError(ctx context.Context, backend, model string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &GenerationError{Backend: backend, Model: model, Err: err}
}

// OllamaGenerator calls a local Ollama server
type OllamaGenerator struct {
	client     *api.Client
	model      string
	numPredict int
	logger     *slog.Logger
}

// NewOllamaGenerator creates a generator bound to one model
func NewOllamaGenerator(client *api.Client, model string, numPredict int, logger *slog.Logger) *OllamaGenerator {
	return &OllamaGenerator{
		client:     client,
		model:      model,
		numPredict: numPredict,
		logger:     logger,
	}
}

// Model returns the model name
func (g *OllamaGenerator) Model() string {
	return g.model
}

// Generate sends the request to /api/generate or /api/chat depending on Mode
func (g *OllamaGenerator) Generate(ctx context.Context, req Request) (string, error) {
	opts := api.Options{Temperature: req.Temperature, NumPredict: g.numPredict}

	var (
		text string
		err  error
	)
	if req.Mode == ModeChat {
		text, err = g.client.Chat(ctx, g.model, req.System, req.Prompt, opts)
	} else {
		text, err = g.client.Generate(ctx, g.model, req.Prompt, opts)
	}
	if err != nil {
		return "", wrapError(ctx, "ollama", g.model, err)
	}

	g.logger.Debug("LLM response", "model", g.model, "mode", req.Mode, "length", len(text))
	return text, nil
}

// OpenAIGenerator calls an OpenAI-compatible chat completions endpoint. The
// generate mode has no raw-completion equivalent there, so every request is
// sent as chat.
type OpenAIGenerator struct {
	client     *api.OpenAIClient
	model      string
	numPredict int
}

// NewOpenAIGenerator creates a generator bound to one model
func NewOpenAIGenerator(client *api.OpenAIClient, model string, numPredict int) *OpenAIGenerator {
	return &OpenAIGenerator{client: client, model: model, numPredict: numPredict}
}

// Model returns the model name
func (g *OpenAIGenerator) Model() string {
	return g.model
}

// Generate sends the request as a chat completion
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	text, err := g.client.Complete(ctx, g.model, req.System, req.Prompt, api.Options{
		Temperature: req.Temperature,
		NumPredict:  g.numPredict,
	})
	if err != nil {
		return "", wrapError(ctx, "openai", g.model, err)
	}
	return text, nil
}
