package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := `# comment
PF_TEST_PLAIN=plain
export PF_TEST_EXPORTED="quoted value"
PF_TEST_SINGLE='single'

not-a-pair
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Setenv("PF_TEST_PLAIN", "")
	t.Setenv("PF_TEST_EXPORTED", "")
	t.Setenv("PF_TEST_SINGLE", "")

	if err := loadEnvFile(path); err != nil {
		t.Fatalf("loadEnvFile() error = %v", err)
	}

	tests := map[string]string{
		"PF_TEST_PLAIN":    "plain",
		"PF_TEST_EXPORTED": "quoted value",
		"PF_TEST_SINGLE":   "single",
	}
	for key, want := range tests {
		if got := os.Getenv(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
}

func TestLoadEnvFileMissing(t *testing.T) {
	err := loadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
	if !os.IsNotExist(err) {
		t.Errorf("loadEnvFile() error = %v, want not-exist", err)
	}
}

func TestTrimQuotes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"abc"`, "abc"},
		{`'abc'`, "abc"},
		{`"abc'`, `"abc'`},
		{`"`, `"`},
		{"abc", "abc"},
	}
	for _, tt := range tests {
		if got := trimQuotes(tt.in); got != tt.want {
			t.Errorf("trimQuotes(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
