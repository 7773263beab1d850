package tags

import (
	"regexp"
	"strings"

	"github.com/lamim/promptforge/internal/util"
)

// listMarker matches numbering or bullets some models put in front of a line
var listMarker = regexp.MustCompile(`^(?:\d+[.)]|[-*•])\s+`)

// FirstLine reduces raw generator output to a single candidate line: reasoning
// blocks, code fences and "Here is ...:" preambles are removed, the first
// non-empty line is taken and enclosing quotes, list markers and trailing
// separators are stripped.
// It returns "" when nothing usable remains.
func FirstLine(raw string) string {
	text := util.StripThinkTags(raw)

	var line string
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		l = strings.TrimSpace(l)
		if strings.HasPrefix(l, "```") {
			// opening or closing fence, possibly with a language tag
			if len(l) < 6 || !strings.HasSuffix(l, "```") {
				continue
			}
			l = strings.TrimSpace(strings.Trim(l, "`"))
		}
		if l == "" || util.IsPreamble(l) {
			continue
		}
		line = l
		break
	}

	line = listMarker.ReplaceAllString(line, "")
	line = strings.Trim(line, "`\"'“”")
	line = strings.TrimSpace(line)
	for strings.HasSuffix(line, ",") || strings.HasSuffix(line, ";") {
		line = strings.TrimSpace(line[:len(line)-1])
	}
	return line
}
