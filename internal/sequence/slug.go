package sequence

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"unicode"
)

const hashLen = 8

// Slugify turns free text into a folder name: letters and digits are kept
// and lower-cased, everything else becomes a single dash. When the result
// is longer than maxLen runes it is cut, and with addHash an 8-character
// SHA-1 suffix of the original text keeps truncated names distinct.
// maxLen <= 0 disables truncation.
func Slugify(text string, maxLen int, addHash bool) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune('-')
		}
	}
	slug := b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "scenario"
	}

	runes := []rune(slug)
	if maxLen <= 0 || len(runes) <= maxLen {
		return slug
	}
	if !addHash {
		return strings.TrimRight(string(runes[:maxLen]), "-")
	}

	sum := sha1.Sum([]byte(text))
	digest := hex.EncodeToString(sum[:])[:hashLen]
	headLen := max(10, maxLen-1-hashLen)
	if headLen > len(runes) {
		headLen = len(runes)
	}
	return strings.TrimRight(string(runes[:headLen]), "-") + "-" + digest
}
