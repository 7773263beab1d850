package models

import (
	"fmt"
	"time"
)

// ExcludeMode selects how excluded tokens are handled in a generated line
type ExcludeMode string

const (
	// ExcludeModeDrop removes only the offending tokens from the line
	ExcludeModeDrop ExcludeMode = "drop"
	// ExcludeModeReject discards the whole line and asks the generator again
	ExcludeModeReject ExcludeMode = "reject"
)

// ParseExcludeMode converts a flag or config value into an ExcludeMode
func ParseExcludeMode(s string) (ExcludeMode, error) {
	switch ExcludeMode(s) {
	case ExcludeModeDrop, "":
		return ExcludeModeDrop, nil
	case ExcludeModeReject:
		return ExcludeModeReject, nil
	}
	return "", fmt.Errorf("exclude mode must be one of: drop, reject (got %q)", s)
}

// OutputStyle is the Qwen-Image prompt style requested from the generator
type OutputStyle string

const (
	// StyleTags asks for a comma-separated tag list
	StyleTags OutputStyle = "tags"
	// StyleSentence asks for one descriptive sentence
	StyleSentence OutputStyle = "sentence"
	// StyleStructured asks for labeled fields on a single line
	StyleStructured OutputStyle = "structured"
)

// CutSpec is one entry of a storyboard sequence.
// Index is 1-based and contiguous within a plan.
type CutSpec struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	Hint  string `json:"hint"` // shot tokens (camera, lens, continuity) carried as opaque text
	Seed  string `json:"seed"`
}

// Key returns the zero-padded file stem for the cut, e.g. "03_medium"
func (c CutSpec) Key() string {
	return fmt.Sprintf("%02d_%s", c.Index, c.Label)
}

// VariantStats counts the outcome of the variant slots for one seed
type VariantStats struct {
	Requested int `json:"requested"` // variant slots requested
	Accepted  int `json:"accepted"`  // lines emitted
	Skipped   int `json:"skipped"`   // slots whose retry budget was exhausted
	Failed    int `json:"failed"`    // slots ended by a generation error
	Attempts  int `json:"attempts"`  // generator calls made
	Rejected  int `json:"rejected"`  // candidates rejected by exclusion or guard sets
	Dropped   int `json:"dropped"`   // tokens removed in drop mode
}

// Add merges other into s
func (s *VariantStats) Add(other VariantStats) {
	s.Requested += other.Requested
	s.Accepted += other.Accepted
	s.Skipped += other.Skipped
	s.Failed += other.Failed
	s.Attempts += other.Attempts
	s.Rejected += other.Rejected
	s.Dropped += other.Dropped
}

// RunStats tracks statistics for a whole command run
type RunStats struct {
	StartTime     time.Time
	EndTime       time.Time
	Seeds         int
	Cuts          int
	Variants      VariantStats
	TotalDuration time.Duration
}
