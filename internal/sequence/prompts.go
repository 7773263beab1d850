package sequence

import (
	"fmt"
	"strings"
)

func languageLabel(language string) string {
	if strings.HasPrefix(strings.ToLower(language), "en") {
		return "English"
	}
	return "Korean"
}

func joinTopics(topics []string) string {
	kept := make([]string, 0, len(topics))
	for _, t := range topics {
		if t = strings.TrimSpace(t); t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, ", ")
}

// StoryPrompt returns the system and user messages asking for a short
// scenario that mentions every topic. style is "logline" or "vignette".
func StoryPrompt(topics []string, sentences int, language, style string) (system, user string) {
	styleHint := "short cinematic vignette"
	if style == "logline" {
		styleHint = "cinematic logline"
	}
	system = "You are a creative scenarist who writes concise, visual-first scenarios. " +
		"Always include the provided topics explicitly. Avoid meta comments and lists."
	user = fmt.Sprintf("Write exactly %d sentences in %s as a %s. Include these topics: %s. "+
		"Keep it concrete and evocative; no dialogue unless essential. Output one paragraph only.",
		sentences, languageLabel(language), styleHint, joinTopics(topics))
	return system, user
}

// ShotListPrompt returns the system and user messages asking for exactly
// numCuts shot lines in the format ParseShotList reads
func ShotListPrompt(scenario string, topics []string, numCuts, durationSec int, language string) (system, user string) {
	system = "You are a cinematographer planning a tightly-edited micro video. " +
		"Produce a coherent shot list with temporal continuity and visual progression. " +
		"Use concise film language."

	tops := joinTopics(topics)
	if tops == "" {
		tops = "(none)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Scenario (context): %s\n", strings.TrimSpace(scenario))
	fmt.Fprintf(&b, "Topics: %s\n", tops)
	fmt.Fprintf(&b, "Total duration: ~%d seconds. Shots: exactly %d.\n", durationSec, numCuts)
	fmt.Fprintf(&b, "Write in %s. Output exactly %d lines. ", languageLabel(language), numCuts)
	b.WriteString("Each line format: Shot <#>: <short-name> | duration: <sec> | shot: <type/angle> | lens: <focal> | " +
		"camera: <movement/height> | subject/action: <...> | continuity: <anchor>. ")
	b.WriteString("Do not add extra commentary or numbering outside the specified format.")
	return system, b.String()
}
