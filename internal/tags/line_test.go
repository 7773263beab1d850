package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstLine(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"single line", "almond eyes, winged eyeliner", "almond eyes, winged eyeliner"},
		{"multi line takes first", "\n\nalmond eyes, lashes\nsecond line", "almond eyes, lashes"},
		{"quoted", `"almond eyes, lashes"`, "almond eyes, lashes"},
		{"numbered", "1. almond eyes, lashes", "almond eyes, lashes"},
		{"bullet", "- almond eyes", "almond eyes"},
		{"trailing separators", "almond eyes, lashes, ;", "almond eyes, lashes"},
		{"think block", "<think>plan</think>\nalmond eyes", "almond eyes"},
		{"fenced block", "```text\nalmond eyes\n```", "almond eyes"},
		{"single line fence", "```almond eyes```", "almond eyes"},
		{"empty", "   \n  ", ""},
		{"crlf", "a, b\r\nc", "a, b"},
		{"preamble skipped", "Here is a new prompt:\nalmond eyes, lashes", "almond eyes, lashes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FirstLine(tt.raw))
		})
	}
}
