package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplySafety(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		enabled bool
		want    string
	}{
		{"enabled rewrites", "1girl, standing", true, "1woman, standing"},
		{"disabled unchanged", "1girl, standing", false, "1girl, standing"},
		{"disabled keeps spacing", "1girl ,standing", false, "1girl ,standing"},
		{"case insensitive", "1GIRL, 2Girls", true, "1woman, 2women"},
		{"weighting kept", "(1girl:1.2), smile", true, "(1woman:1.2), smile"},
		{"minor coded removed", "teen, loli, woman", true, "woman"},
		{"whole token only", "girlfriend, girl", true, "girlfriend, woman"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplySafety(tt.line, tt.enabled))
		})
	}
}

func TestApplySafety_NoAgeCodedTokenRemains(t *testing.T) {
	out := ApplySafety("1girl, standing", true)
	for _, tok := range SplitTokens(out) {
		_, coded := adultEquivalents[Normalize(tok)]
		assert.False(t, coded, "age-coded token %q survived", tok)
	}
}

func TestDefaultMinorTerms(t *testing.T) {
	s := DefaultMinorTerms()
	assert.True(t, s.Contains("Schoolgirl"))
	assert.True(t, s.Contains("young girl"))
	assert.False(t, s.Contains("woman"))
}
