package writer

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Scenario folder format: lower-case or caseless letters and digits separated
// by single dashes
var slugRegex = regexp.MustCompile(`^[\p{Ll}\p{Lm}\p{Lo}\p{Nd}]+(?:-[\p{Ll}\p{Lm}\p{Lo}\p{Nd}]+)*$`)

// ValidateSlug validates a scenario folder name to prevent path traversal.
// It checks for:
//   - Path traversal attempts (..)
//   - Path separators (the slug must be a simple directory name)
//   - Expected format (lower-case letters, digits and dashes)
//   - Path escaping the base directory
func ValidateSlug(baseDir, slug string) error {
	if slug == "" {
		return fmt.Errorf("scenario name cannot be empty")
	}

	if strings.Contains(slug, "..") {
		return fmt.Errorf("invalid scenario name: contains '..' (path traversal attempt)")
	}

	if filepath.IsAbs(slug) || strings.ContainsAny(slug, "/\\") {
		return fmt.Errorf("invalid scenario name: must be directory name without path separators")
	}

	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("invalid scenario name format: expected lower-case letters, digits and dashes, got '%s'", slug)
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve output directory: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(baseDir, slug))
	if err != nil {
		return fmt.Errorf("failed to resolve scenario path: %w", err)
	}

	// Use separator suffix to prevent prefix attacks like "/out/a" matching "/out/a-b"
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return fmt.Errorf("scenario path escapes output directory")
	}

	return nil
}
