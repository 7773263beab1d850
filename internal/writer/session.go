package writer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lamim/promptforge/pkg/models"
)

// File names inside the output directory
const (
	PositiveFile   = "positive.txt"
	NegativeFile   = "negative.txt"
	LogFile        = "promptforge.log"
	ManifestFile   = "INDEX.md"
	ManifestHTML   = "INDEX.html"
	ConfigBackup   = "promptforge.toml.bak"
)

// Layout manages the output directory and the paths inside it
type Layout struct {
	outputDir string
	logger    *slog.Logger
}

// NewLayout creates the output directory if needed
func NewLayout(outputDir string, logger *slog.Logger) (*Layout, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Layout{outputDir: outputDir, logger: logger}, nil
}

// Dir returns the output directory
func (l *Layout) Dir() string {
	return l.outputDir
}

// PositivePath returns the path of the positive prompt file
func (l *Layout) PositivePath() string {
	return filepath.Join(l.outputDir, PositiveFile)
}

// NegativePath returns the path of the negative prompt file
func (l *Layout) NegativePath() string {
	return filepath.Join(l.outputDir, NegativeFile)
}

// ScenarioLayout returns the layout of a scenario folder below the output
// directory, creating it. The slug must be a plain folder name.
func (l *Layout) ScenarioLayout(slug string) (*Layout, error) {
	if err := ValidateSlug(l.outputDir, slug); err != nil {
		return nil, err
	}
	dir := filepath.Join(l.outputDir, slug)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scenario directory: %w", err)
	}
	l.logger.Info("Using scenario directory", "path", dir)
	return &Layout{outputDir: dir, logger: l.logger}, nil
}

// CutFileName returns the file name for a cut, e.g. "03_medium_adult.txt"
func CutFileName(cut models.CutSpec, adultSuffix bool) string {
	name := cut.Key()
	if adultSuffix {
		name += "_adult"
	}
	return name + ".txt"
}

// CutPath returns the path of a cut's prompt file
func (l *Layout) CutPath(cut models.CutSpec, adultSuffix bool) string {
	return filepath.Join(l.outputDir, CutFileName(cut, adultSuffix))
}

// BackupConfig copies the config file into the output directory
func (l *Layout) BackupConfig(configPath string) error {
	if configPath == "" {
		return nil
	}
	source, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	backupPath := filepath.Join(l.outputDir, ConfigBackup)
	if err := os.WriteFile(backupPath, source, 0644); err != nil {
		return fmt.Errorf("failed to write config backup: %w", err)
	}

	l.logger.Info("Backed up config file", "path", backupPath)
	return nil
}
