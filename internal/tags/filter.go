package tags

import "github.com/lamim/promptforge/pkg/models"

// FilterResult is the outcome of filtering one line
type FilterResult struct {
	Accepted bool
	Line     string
	Removed  int // tokens removed in drop mode
}

// Filter applies an exclusion set to a comma-separated line.
//
// In drop mode matching tokens are removed and the survivors are rejoined in
// their original order; the result is always accepted, possibly with an empty
// line. In reject mode any match rejects the whole line without partial edits.
// Matching is exact on the normalized token, never on substrings.
func Filter(line string, set Set, mode models.ExcludeMode) FilterResult {
	tokens := SplitTokens(line)

	if mode == models.ExcludeModeReject {
		for _, t := range tokens {
			if set.Contains(t) {
				return FilterResult{Accepted: false}
			}
		}
		return FilterResult{Accepted: true, Line: JoinTokens(tokens)}
	}

	kept := tokens[:0]
	removed := 0
	for _, t := range tokens {
		if set.Contains(t) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	return FilterResult{Accepted: true, Line: JoinTokens(kept), Removed: removed}
}

// SanitizeSeed prepares a seed before it is sent to the generator: safety
// substitution first, then drop-mode removal of excluded tokens
func SanitizeSeed(seed string, safety bool, exclusions Set) string {
	line := ApplySafety(seed, safety)
	return Filter(line, exclusions, models.ExcludeModeDrop).Line
}
