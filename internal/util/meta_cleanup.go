package util

import "strings"

// trailingChatter marks where a model stops answering and starts talking
// about the answer
var trailingChatter = []string{
	"let me know if",
	"i hope this",
	"feel free to",
	"would you like me to",
	"if you'd like, i can",
	"if you want, i can",
}

// preambleStarts open a line that only announces the answer
var preambleStarts = []string{
	"here is",
	"here's",
	"here are",
	"sure",
	"certainly",
	"okay",
	"of course",
}

// CleanMetaFromLLMResponse trims self-referential chatter (e.g. "Let me know
// if you want another version") from the end of an LLM response while keeping
// the answer. A response that is nothing but chatter is returned trimmed.
func CleanMetaFromLLMResponse(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return trimmed
	}

	lower := strings.ToLower(strings.ReplaceAll(trimmed, "’", "'"))
	cutIndex := len(lower)
	for _, phrase := range trailingChatter {
		if idx := strings.Index(lower, phrase); idx >= 0 && idx < cutIndex {
			cutIndex = idx
		}
	}

	if cutIndex < len(lower) && len(lower) == len(trimmed) {
		if result := strings.TrimSpace(trimmed[:cutIndex]); result != "" {
			return result
		}
	}
	return trimmed
}

// IsPreamble reports whether line only introduces the answer, like
// "Here is a new prompt:" or "Sure! Here's one:"
func IsPreamble(line string) bool {
	l := strings.ToLower(strings.TrimSpace(line))
	if !strings.HasSuffix(l, ":") {
		return false
	}
	for _, p := range preambleStarts {
		if strings.HasPrefix(l, p) {
			return true
		}
	}
	return false
}
