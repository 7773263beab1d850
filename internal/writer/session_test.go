package writer

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lamim/promptforge/pkg/models"
)

func TestLayout_ScenarioLayout(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	base := filepath.Join(t.TempDir(), "scenarios")

	layout, err := NewLayout(base, logger)
	if err != nil {
		t.Fatalf("NewLayout failed: %v", err)
	}

	sub, err := layout.ScenarioLayout("rainy-rooftop")
	if err != nil {
		t.Fatalf("ScenarioLayout failed: %v", err)
	}
	if info, err := os.Stat(sub.Dir()); err != nil || !info.IsDir() {
		t.Fatalf("scenario dir not created: %v", err)
	}

	cut := models.CutSpec{Index: 3, Label: "medium"}
	if got := filepath.Base(sub.CutPath(cut, true)); got != "03_medium_adult.txt" {
		t.Errorf("CutPath = %s", got)
	}
	if got := CutFileName(cut, false); got != "03_medium.txt" {
		t.Errorf("CutFileName = %s", got)
	}

	if _, err := layout.ScenarioLayout("../escape"); err == nil {
		t.Error("expected error for traversal slug")
	}
}

func TestLayout_BackupConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()
	layout, err := NewLayout(filepath.Join(dir, "out"), logger)
	if err != nil {
		t.Fatal(err)
	}

	cfgPath := filepath.Join(dir, "promptforge.toml")
	if err := os.WriteFile(cfgPath, []byte("[llm]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := layout.BackupConfig(cfgPath); err != nil {
		t.Fatalf("BackupConfig failed: %v", err)
	}
	if got := readFile(t, filepath.Join(layout.Dir(), ConfigBackup)); got != "[llm]\n" {
		t.Errorf("backup = %q", got)
	}
	if err := layout.BackupConfig(""); err != nil {
		t.Errorf("empty path should be a no-op, got %v", err)
	}
}

func TestSetupLogger_WritesJSONFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), LogFile)

	logger, f, err := SetupLogger(logPath, slog.LevelInfo)
	if err != nil {
		t.Fatalf("SetupLogger failed: %v", err)
	}
	logger.Info("hello", "k", "v")
	logger.Debug("hidden")
	_ = f.Close()

	got := readFile(t, logPath)
	if !strings.Contains(got, `"msg":"hello"`) || !strings.Contains(got, `"k":"v"`) {
		t.Errorf("log file = %q", got)
	}
	if strings.Contains(got, "hidden") {
		t.Error("debug record written at info level")
	}
}
