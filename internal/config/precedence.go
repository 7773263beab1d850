package config

import (
	"os"
	"strings"
)

// FirstNonEmpty returns the first value that is not blank, or "" when every
// value is blank. Callers list sources from most to least specific.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Source lists the candidate origins of one text setting, most specific first
type Source struct {
	Field   string // option name used in errors
	File    string // path to read, wins when set
	Text    string
	Preset  string
	Default string
}

// ResolveText applies file > text > preset > default precedence. A file that
// was named explicitly but cannot be read is a ConfigError rather than a
// silent fallback.
func ResolveText(src Source) (string, error) {
	if src.File != "" {
		data, err := os.ReadFile(src.File)
		if err != nil {
			return "", &ConfigError{Field: src.Field, Message: "failed to read " + src.File, Err: err}
		}
		if text := strings.TrimSpace(string(data)); text != "" {
			return text, nil
		}
	}
	return strings.TrimSpace(FirstNonEmpty(src.Text, src.Preset, src.Default)), nil
}

// ResolveOptionalText is ResolveText for files that are looked up by
// convention: a missing file falls through to the next source.
func ResolveOptionalText(src Source) (string, error) {
	if src.File != "" {
		if _, err := os.Stat(src.File); err != nil {
			if os.IsNotExist(err) {
				src.File = ""
			}
		}
	}
	return ResolveText(src)
}
