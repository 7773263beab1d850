package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/lamim/promptforge/internal/config"
	"github.com/lamim/promptforge/internal/writer"
)

// ollamaStub answers /api/generate with a fixed response
func ollamaStub(t *testing.T, response string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"model":    "test",
			"response": response,
			"done":     true,
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--env-file", "", "--no-progress", "--no-log-file"))
	err := root.Execute()
	return out.String(), err
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	lines, err := writer.ReadLines(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return lines
}

func TestInitWritesSamples(t *testing.T) {
	dir := t.TempDir()

	if _, err := execute(t, "init", "--out-dir", dir); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	positives := readLines(t, filepath.Join(dir, writer.PositiveFile))
	if len(positives) != len(config.SamplePositives) || positives[0] != config.SamplePositives[0] {
		t.Errorf("positive.txt = %v", positives)
	}
	negatives := readLines(t, filepath.Join(dir, writer.NegativeFile))
	if len(negatives) != len(config.SampleNegatives) {
		t.Errorf("negative.txt has %d lines, want %d", len(negatives), len(config.SampleNegatives))
	}

	if _, err := execute(t, "init", "--out-dir", dir, "--append"); err != nil {
		t.Fatalf("init --append failed: %v", err)
	}
	if got := readLines(t, filepath.Join(dir, writer.PositiveFile)); len(got) != 2*len(config.SamplePositives) {
		t.Errorf("after append positive.txt has %d lines", len(got))
	}
}

func TestInitSkipBase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	if _, err := execute(t, "init", "--out-dir", dir, "--skip-base"); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, writer.PositiveFile)); !os.IsNotExist(err) {
		t.Errorf("positive.txt should not exist, stat error = %v", err)
	}
}

func TestVariantsAppendsFilteredLines(t *testing.T) {
	srv, calls := ollamaStub(t, "red dress, smile, hat\nsecond line ignored")
	dir := t.TempDir()

	out, err := execute(t, "variants",
		"--out-dir", dir,
		"--seed", "red dress, hat",
		"--llm-host", srv.URL,
		"--variants", "2",
		"--retries", "1",
		"--exclude", "hat",
	)
	if err != nil {
		t.Fatalf("variants failed: %v\n%s", err, out)
	}

	lines := readLines(t, filepath.Join(dir, writer.PositiveFile))
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(lines), lines)
	}
	for _, line := range lines {
		if line != "red dress, smile" {
			t.Errorf("line = %q, want %q", line, "red dress, smile")
		}
	}
	if calls.Load() != 2 {
		t.Errorf("generator calls = %d, want 2", calls.Load())
	}
}

func TestVariantsRejectModeSkipsSlots(t *testing.T) {
	srv, calls := ollamaStub(t, "red dress, hat")
	dir := t.TempDir()
	target := filepath.Join(dir, "variants.txt")

	out, err := execute(t, "variants",
		"--out-dir", dir,
		"--variants-out", target,
		"--seed", "red dress",
		"--llm-host", srv.URL,
		"--variants", "2",
		"--retries", "2",
		"--exclude", "hat",
		"--exclude-mode", "reject",
	)
	if err != nil {
		t.Fatalf("variants failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Wrote 0 lines") {
		t.Errorf("output = %q, want zero lines written", out)
	}
	if calls.Load() != 4 {
		t.Errorf("generator calls = %d, want 4", calls.Load())
	}
}

func TestVariantsRejectsInvalidExcludeMode(t *testing.T) {
	_, err := execute(t, "variants",
		"--out-dir", t.TempDir(),
		"--seed", "red dress",
		"--exclude-mode", "sometimes",
	)
	if err == nil || !config.IsConfigError(err) {
		t.Errorf("error = %v, want ConfigError", err)
	}
}

func TestScenarioWritesCutsAndManifest(t *testing.T) {
	srv, _ := ollamaStub(t, "A woman stands on a rainy rooftop at night, neon reflections")
	dir := t.TempDir()

	out, err := execute(t, "scenario",
		"--scenario", "rainy rooftop",
		"--num-cuts", "2",
		"--variants", "1",
		"--out-dir", dir,
		"--llm-host", srv.URL,
		"--adult-flag-filenames",
	)
	if err != nil {
		t.Fatalf("scenario failed: %v\n%s", err, out)
	}

	folder := filepath.Join(dir, "rainy-rooftop")
	for _, name := range []string{"01_establishing_adult.txt", "02_wide_adult.txt"} {
		if got := readLines(t, filepath.Join(folder, name)); len(got) != 1 {
			t.Errorf("%s has %d lines, want 1", name, len(got))
		}
	}

	index, err := os.ReadFile(filepath.Join(folder, writer.ManifestFile))
	if err != nil {
		t.Fatalf("missing manifest: %v", err)
	}
	for _, want := range []string{"# rainy rooftop", "- Num cuts: 2", "[02_wide_adult.txt](02_wide_adult.txt)"} {
		if !strings.Contains(string(index), want) {
			t.Errorf("manifest missing %q:\n%s", want, index)
		}
	}
}

func TestScenarioRequiresInput(t *testing.T) {
	_, err := execute(t, "scenario", "--out-dir", t.TempDir())
	if err == nil || !config.IsConfigError(err) {
		t.Errorf("error = %v, want ConfigError", err)
	}
}

func TestPresetsListsCatalog(t *testing.T) {
	out, err := execute(t, "presets")
	if err != nil {
		t.Fatalf("presets failed: %v", err)
	}
	for _, want := range []string{"storyboard", "01_establishing", "nsfw-soft"} {
		if !strings.Contains(out, want) {
			t.Errorf("presets output missing %q", want)
		}
	}
}

func TestVariantsCheckpointInspect(t *testing.T) {
	srv, _ := ollamaStub(t, "red dress, smile")
	dir := t.TempDir()

	if out, err := execute(t, "variants",
		"--out-dir", dir,
		"--seed", "red dress",
		"--llm-host", srv.URL,
		"--variants", "1",
		"--resume",
	); err != nil {
		t.Fatalf("variants failed: %v\n%s", err, out)
	}

	out, err := execute(t, "checkpoint", "inspect", dir)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	for _, want := range []string{"Command:             variants", "1 / 1 completed", "This run is complete."} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}

	// a completed run cannot be resumed
	if _, err := execute(t, "variants",
		"--out-dir", dir,
		"--seed", "red dress",
		"--llm-host", srv.URL,
		"--variants", "1",
		"--resume",
	); err == nil {
		t.Error("expected resume of a completed run to fail")
	}
}
