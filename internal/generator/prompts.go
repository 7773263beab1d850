package generator

import (
	"strings"

	"github.com/lamim/promptforge/internal/util"
	"github.com/lamim/promptforge/pkg/models"
)

// DefaultVariantTemplate is the built-in instruction for tag variants
const DefaultVariantTemplate = `You are a prompt generator for composing POSITIVE tags for image models (e.g., Stable Diffusion).
Output exactly ONE line: a comma-separated list of tokens, no quotes, no numbering, no extra lines. Keep the overall style, theme, and aesthetics similar to the given seed. Avoid illegal/harmful content. Do NOT output a negative prompt. If the seed contains '1girl' or 'girl', treat the subject as an adult woman.

Seed: {{.Seed}}
One new similar positive prompt line:`

// VariantInstruction renders the variant instruction for seed. An empty
// template selects DefaultVariantTemplate.
func VariantInstruction(tmpl, seed string) (string, error) {
	if strings.TrimSpace(tmpl) == "" {
		tmpl = DefaultVariantTemplate
	}
	return util.RenderTemplate(tmpl, map[string]interface{}{"Seed": seed})
}

var styleInstructions = map[models.OutputStyle]string{
	models.StyleSentence: "Write ONE English prompt for the Qwen-Image model as one or two descriptive sentences: " +
		"subject, action, setting, composition, lighting and lens. All people are adults.",
	models.StyleStructured: "Write ONE English prompt for the Qwen-Image model as labelled fields on a single line: " +
		"Subject: ...; Setting: ...; Composition: ...; Camera: ...; Lighting: ...; Style: .... All people are adults.",
	models.StyleTags: "Write ONE English prompt for the Qwen-Image model as a comma-separated list of concise tags " +
		"covering subject, setting, composition, camera and lighting. All people are adults.",
}

// QwenImageInstruction builds the instruction for one cut variant in the
// requested output style. Unknown styles fall back to sentence.
func QwenImageInstruction(seed string, style models.OutputStyle) string {
	head, ok := styleInstructions[style]
	if !ok {
		head = styleInstructions[models.StyleSentence]
	}
	var b strings.Builder
	b.WriteString(head)
	b.WriteString("\nOutput exactly one line with no quotes, numbering or commentary. Keep every hint from the seed.\n\n")
	b.WriteString("Seed: ")
	b.WriteString(seed)
	b.WriteString("\nPrompt:")
	return b.String()
}

// ChatML composes a ChatML prompt for models that follow the <|im_start|>
// turn format when called through a raw completion endpoint
func ChatML(system, user string) string {
	return "<|im_start|>system\n" +
		strings.TrimSpace(system) +
		"\n<|im_end|>\n" +
		"<|im_start|>user\n" +
		strings.TrimSpace(user) +
		"\n<|im_end|>\n" +
		"<|im_start|>assistant\n"
}
