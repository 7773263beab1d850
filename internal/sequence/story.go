package sequence

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lamim/promptforge/internal/generator"
	"github.com/lamim/promptforge/internal/util"
)

// ErrEmptyStory is returned when the generator produced no scenario text
var ErrEmptyStory = errors.New("generator returned an empty scenario")

// StoryWriter generates a scenario from topics
type StoryWriter struct {
	Generator   generator.Generator
	Temperature float64
	Logger      *slog.Logger
}

// Write asks for a chat response first and falls back to a ChatML
// completion when the chat answer is empty
func (w *StoryWriter) Write(ctx context.Context, topics []string, sentences int, language, style string) (string, error) {
	system, user := StoryPrompt(topics, sentences, language, style)

	text, err := w.Generator.Generate(ctx, generator.Request{
		Prompt:      user,
		System:      system,
		Mode:        generator.ModeChat,
		Temperature: w.Temperature,
	})
	if err != nil {
		return "", err
	}
	if util.ContainsThinkTags(text) {
		w.Logger.Debug("Removed reasoning block from scenario response")
	}
	text = util.CleanMetaFromLLMResponse(util.StripThinkTags(text))
	if text != "" {
		return text, nil
	}

	w.Logger.Debug("Empty chat response for scenario, retrying with ChatML prompt")
	text, err = w.Generator.Generate(ctx, generator.Request{
		Prompt:      generator.ChatML(system, user),
		Mode:        generator.ModeGenerate,
		Temperature: w.Temperature,
	})
	if err != nil {
		return "", err
	}
	if text = util.CleanMetaFromLLMResponse(util.StripThinkTags(text)); text == "" {
		return "", ErrEmptyStory
	}
	return text, nil
}
