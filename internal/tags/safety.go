package tags

import "strings"

// adultEquivalents maps ambiguous age-coded tags to explicit adult tags
var adultEquivalents = map[string]string{
	"1girl":  "1woman",
	"girl":   "woman",
	"2girls": "2women",
	"girls":  "women",
}

// minorCoded tokens are removed outright when safety is enabled
var minorCoded = NewSet("loli", "teen", "underage")

// ApplySafety rewrites ambiguous age-coded tokens to adult equivalents and
// removes minor-coded tokens. Matching is whole-token and case-insensitive;
// weighting decoration around a rewritten token is kept. When enabled is false
// the line is returned unchanged.
func ApplySafety(line string, enabled bool) string {
	if !enabled {
		return line
	}

	tokens := SplitTokens(line)
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if minorCoded.Contains(t) {
			continue
		}
		out = append(out, substituteToken(t))
	}
	return JoinTokens(out)
}

func substituteToken(token string) string {
	key := Normalize(token)
	repl, ok := adultEquivalents[key]
	if !ok {
		return token
	}
	lower := strings.ToLower(token)
	idx := strings.Index(lower, key)
	if idx < 0 || len(lower) != len(token) {
		return repl
	}
	return token[:idx] + repl + token[idx+len(key):]
}

// DefaultMinorTerms returns the built-in minor-coded terms used by the
// scenario guard (adult-reject-minor)
func DefaultMinorTerms() Set {
	return NewSet(
		"loli",
		"teen",
		"teenage",
		"schoolgirl",
		"underage",
		"minor",
		"child",
		"kid",
		"young girl",
		"young boy",
	)
}
