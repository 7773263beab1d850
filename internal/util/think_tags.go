package util

import (
	"regexp"
	"strings"
)

var (
	// Matches closed think/reasoning blocks
	thinkTagRegex = regexp.MustCompile(`(?i)<think(?:ing)?>[\s\S]*?</think(?:ing)?>`)
	// Matches an unterminated block left by a response cut off mid-reasoning
	openThinkRegex = regexp.MustCompile(`(?i)<think(?:ing)?>[\s\S]*$`)
	// A stray closing tag when the server already dropped the opening one
	strayCloseRegex = regexp.MustCompile(`(?is)^.*?</think(?:ing)?>`)
)

// ContainsThinkTags reports whether the response carries a reasoning block
func ContainsThinkTags(response string) bool {
	return thinkTagRegex.MatchString(response) || openThinkRegex.MatchString(response)
}

// StripThinkTags removes reasoning blocks emitted by reasoning models so that
// only the final answer remains
func StripThinkTags(response string) string {
	result := thinkTagRegex.ReplaceAllString(response, "")
	result = openThinkRegex.ReplaceAllString(result, "")
	result = strayCloseRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}
