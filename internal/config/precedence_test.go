package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFirstNonEmpty(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"first wins", []string{"a", "b"}, "a"},
		{"blank skipped", []string{"", "  ", "c"}, "c"},
		{"none", []string{"", " "}, ""},
		{"no values", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FirstNonEmpty(tt.values...); got != tt.want {
				t.Errorf("FirstNonEmpty() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveText(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "system.txt")
	if err := os.WriteFile(file, []byte("  from file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		src  Source
		want string
	}{
		{"file over text", Source{File: file, Text: "text", Default: "def"}, "from file"},
		{"text over preset", Source{Text: "text", Preset: "preset", Default: "def"}, "text"},
		{"preset over default", Source{Preset: "preset", Default: "def"}, "preset"},
		{"default", Source{Default: "def"}, "def"},
		{"empty file falls through", Source{File: empty, Text: "text"}, "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveText(tt.src)
			if err != nil {
				t.Fatalf("ResolveText() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveText_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.txt")

	_, err := ResolveText(Source{Field: "system-prompt-file", File: missing, Text: "text"})
	if !IsConfigError(err) {
		t.Fatalf("ResolveText() error = %v, want ConfigError", err)
	}

	got, err := ResolveOptionalText(Source{File: missing, Default: "def"})
	if err != nil {
		t.Fatalf("ResolveOptionalText() unexpected error: %v", err)
	}
	if got != "def" {
		t.Errorf("ResolveOptionalText() = %q, want def", got)
	}
}
