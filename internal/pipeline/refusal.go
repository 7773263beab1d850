package pipeline

import "strings"

// Refusal phrases matched anywhere in a candidate line
var refusalPatterns = []string{
	"i'm sorry, but i can't help with that",
	"i cannot help with that",
	"i can't assist with that",
	"i'm unable to help with that",
	"i apologize, but i cannot",
	"i'm not able to assist",
	"i cannot provide",
	"i cannot generate",
	"i'm sorry, i cannot",
	"i'm sorry, but i cannot",
	"as an ai",
	"i don't feel comfortable",
}

// Openers that only indicate a refusal at the start of a line. Tag lists
// never start like this.
var refusalPrefixes = []string{
	"i'm sorry",
	"i am sorry",
	"sorry,",
	"i cannot",
	"i can't",
	"i can not",
	"i won't",
	"i'm unable",
	"i am unable",
	"i apologize",
	"unfortunately, i",
}

// IsRefusal reports whether a candidate line is an LLM refusal instead of a
// prompt
func IsRefusal(line string) bool {
	lower := strings.ToLower(strings.TrimSpace(line))
	lower = strings.ReplaceAll(lower, "’", "'")
	if lower == "" {
		return false
	}

	for _, prefix := range refusalPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	for _, pattern := range refusalPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
