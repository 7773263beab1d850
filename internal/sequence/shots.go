package sequence

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/lamim/promptforge/internal/util"
	"github.com/lamim/promptforge/pkg/models"
)

const maxShotNameLen = 20

// Field labels stripped from shot-list sections; the value is kept
var shotFieldLabels = map[string]bool{
	"shot":           true,
	"lens":           true,
	"camera":         true,
	"subject/action": true,
	"subject":        true,
	"action":         true,
	"continuity":     true,
}

var bulletPrefix = regexp.MustCompile(`^(?:[-*•]\s+|\d+[.)]\s+)`)

// FitShots truncates base to n shots or extends it by cycling. n <= 0 keeps
// the natural length. Cycled shots keep their base label.
func FitShots(base []Shot, n int) []Shot {
	if n <= 0 || len(base) == 0 {
		return base
	}
	if n <= len(base) {
		return base[:n]
	}
	out := make([]Shot, 0, n)
	for i := 0; len(out) < n; i++ {
		out = append(out, base[i%len(base)])
	}
	return out
}

// ParseShotList parses an LLM shot list, one shot per line with fields
// separated by "|":
//
//	Shot 1: rain entry | duration: 2s | shot: wide | lens: 24mm | camera: dolly in | subject/action: ... | continuity: red umbrella
//
// The short name after "Shot N:" becomes the label. The duration field is
// dropped, field labels are stripped and the remaining values become the
// hint. Continuity is kept as opaque text.
func ParseShotList(raw string) []Shot {
	text := util.StripThinkTags(raw)

	var shots []Shot
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		line = bulletPrefix.ReplaceAllString(line, "")

		parts := strings.Split(line, "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		idx := len(shots) + 1
		name := ""
		var hint []string
		if head, value, found := strings.Cut(parts[0], ":"); found {
			name = strings.TrimSpace(value)
			if !shotFieldLabels[strings.ToLower(strings.TrimSpace(head))] {
				parts = parts[1:]
				if strings.IndexFunc(name, isSlugRune) >= 0 {
					hint = append(hint, name)
				}
			}
		}
		if strings.IndexFunc(name, isSlugRune) < 0 {
			name = fmt.Sprintf("shot-%d", idx)
		}

		for _, sec := range parts {
			if sec == "" || strings.HasPrefix(strings.ToLower(sec), "duration") {
				continue
			}
			if label, value, found := strings.Cut(sec, ":"); found && shotFieldLabels[strings.ToLower(strings.TrimSpace(label))] {
				sec = strings.TrimSpace(value)
			}
			if sec != "" {
				hint = append(hint, sec)
			}
		}

		shots = append(shots, Shot{
			Label: strings.ReplaceAll(Slugify(name, maxShotNameLen, false), "-", "_"),
			Hint:  strings.Join(hint, ", "),
		})
	}
	return shots
}

func isSlugRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ComposeSeed joins scenario, shot hint and bundle tokens into one
// comma-separated seed, skipping blanks
func ComposeSeed(scenario, hint string, bundle []string) string {
	parts := make([]string, 0, len(bundle)+2)
	for _, p := range append([]string{scenario, hint}, bundle...) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Number turns shots into cut specs with contiguous indices from 1
func Number(shots []Shot, scenario string, bundle []string) []models.CutSpec {
	cuts := make([]models.CutSpec, len(shots))
	for i, s := range shots {
		cuts[i] = models.CutSpec{
			Index: i + 1,
			Label: s.Label,
			Hint:  s.Hint,
			Seed:  ComposeSeed(scenario, s.Hint, bundle),
		}
	}
	return cuts
}
