// Package tags implements token-level handling of comma-separated prompt lines:
// normalization for comparison, exclusion filtering and safety substitution.
package tags

import (
	"regexp"
	"strings"
)

// weightSuffix matches an emphasis weight such as ":1.3" at the end of a token
var weightSuffix = regexp.MustCompile(`:\s*[+-]?(?:\d+(?:\.\d*)?|\.\d+)\s*$`)

const (
	openers = "([{"
	closers = ")]}"
)

// Normalize reduces a token to its comparison form: enclosing brackets and a
// trailing weight are stripped (in any nesting order), inner whitespace is
// collapsed and the result is lower-cased. It is used for membership tests only.
func Normalize(token string) string {
	t := strings.TrimSpace(token)
	for {
		prev := t
		// Fold Unicode spaces first; the weight pattern only sees ASCII ones.
		t = strings.Join(strings.Fields(t), " ")
		t = strings.TrimLeft(t, openers)
		t = strings.TrimRight(t, closers)
		t = weightSuffix.ReplaceAllString(t, "")
		t = strings.TrimSpace(t)
		if t == prev {
			break
		}
	}
	return strings.ToLower(strings.Join(strings.Fields(t), " "))
}

// SplitTokens splits a line on commas, trims each token and drops empty ones
func SplitTokens(line string) []string {
	parts := strings.Split(line, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// JoinTokens joins tokens with the canonical ", " separator
func JoinTokens(tokens []string) string {
	return strings.Join(tokens, ", ")
}

// SplitList splits comma- or newline-delimited text into trimmed, non-empty
// entries. It is used for exclusion files, topic files and bundle flags.
func SplitList(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return SplitTokens(strings.ReplaceAll(text, "\n", ","))
}
