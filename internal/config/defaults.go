package config

import "github.com/lamim/promptforge/pkg/models"

// Backend and request-shape identifiers
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	ModeGenerate = "generate"
	ModeChat     = "chat"

	FallbackAuto   = "auto"
	FallbackAlways = "always"
	FallbackOff    = "off"
)

// Built-in defaults
const (
	DefaultOllamaHost     = "http://localhost:11434"
	DefaultOpenAIBaseURL  = "https://api.openai.com/v1"
	DefaultModel          = "llama3.1:8b-instruct-q5_K_M"
	DefaultScenarioModel  = "qwen2.5:7b-instruct-q5_K_M"
	DefaultTemperature    = 0.7
	DefaultNumPredict     = 256
	DefaultTimeoutSeconds = 60
	DefaultExcludeMode    = models.ExcludeModeDrop
	DefaultStyle          = models.StyleSentence
)

// SamplePositives are written to positive.txt by the init command and serve
// as seeds when no other seed source exists
var SamplePositives = []string{
	"cat eye shape, almond eyes, sharp eyeliner, foxy look, sharp jawline, " +
		"elegant beauty, pale skin, glossy lips, eyelashes, (black eyes), long hair, " +
		"looking at viewer, k-illustration, 1girl, ((sheer pantyhose)), " +
		"pencil skirt, solo, brown hair, jacket, bag, shirt, white shirt, belt, handbag, " +
		"white background, fur trim, brown eyes, black jacket, simple background, " +
		"long sleeves, off shoulder, closed mouth, bangs",
}

// SampleNegatives are written to negative.txt by the init command
var SampleNegatives = []string{
	"(worst quality, low quality), (2d, anime, drawing, drawn face, cartoon, manga, cg, 3d, rendered), blush, ((hat)), closed eyes",
}

// GetDefaultVariantSystemPrompt returns the system prompt for chat mode
func GetDefaultVariantSystemPrompt() string {
	return "You generate a single-line comma-separated list of positive tags " +
		"for image generation models. Output exactly one line, no quotes."
}

// GetDefaultChatMLSystemPrompt returns the system prompt used when a generate
// request is retried in ChatML form
func GetDefaultChatMLSystemPrompt() string {
	return "You are a prompt generator that outputs exactly one line: " +
		"a comma-separated list of positive tags for image generation."
}

// GetDefaultScenarioSystemPrompt returns the system prompt for Qwen-Image cut
// prompts when no guide file is available
func GetDefaultScenarioSystemPrompt() string {
	return `You are a prompt engineer for the Qwen-Image model. Write prompts in English that describe subject, setting, composition, lighting and lens precisely. All people are adults. Never describe explicit content. Output only the prompt, on a single line.`
}
