package tags

import (
	"fmt"
	"os"
	"sort"
)

// Set is a case-insensitive set of normalized tokens
type Set map[string]struct{}

// NewSet builds a set from raw tokens
func NewSet(tokens ...string) Set {
	s := make(Set, len(tokens))
	for _, t := range tokens {
		s.Add(t)
	}
	return s
}

// ParseSet builds a set from comma- or newline-delimited texts, as given by
// repeatable CLI flags
func ParseSet(texts ...string) Set {
	s := make(Set)
	for _, text := range texts {
		for _, t := range SplitList(text) {
			s.Add(t)
		}
	}
	return s
}

// LoadSetFile reads a comma- or newline-delimited token file
func LoadSetFile(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	return ParseSet(string(data)), nil
}

// Add normalizes and inserts a raw token; tokens that normalize to "" are ignored
func (s Set) Add(raw string) {
	if n := Normalize(raw); n != "" {
		s[n] = struct{}{}
	}
}

// Merge inserts every entry of other
func (s Set) Merge(other Set) {
	for k := range other {
		s[k] = struct{}{}
	}
}

// Contains reports whether the normalized form of token is in the set
func (s Set) Contains(token string) bool {
	if len(s) == 0 {
		return false
	}
	_, ok := s[Normalize(token)]
	return ok
}

// Len returns the number of entries
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the entries in lexical order
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
