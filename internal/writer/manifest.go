package writer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
)

// Manifest describes one scenario folder
type Manifest struct {
	Scenario     string
	Topics       []string
	ScenarioText string
	Model        string
	Style        string
	Preset       string
	NumCuts      int
	DurationSec  int
	AdultOptions []string
	Bundles      []string
	Extra        []string
	Files        []string // cut files, in cut order
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}

// Markdown renders the manifest as INDEX.md content
func (m Manifest) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", m.Scenario)
	fmt.Fprintf(&b, "**Topics:** %s\n\n", listOrNone(m.Topics))

	if m.ScenarioText != "" {
		b.WriteString("## Scenario Text\n\n")
		b.WriteString(strings.TrimSpace(m.ScenarioText))
		b.WriteString("\n\n")
	}

	b.WriteString("## Settings\n\n")
	fmt.Fprintf(&b, "- Model: %s\n", m.Model)
	fmt.Fprintf(&b, "- Style: %s\n", m.Style)
	fmt.Fprintf(&b, "- Preset: %s\n", m.Preset)
	fmt.Fprintf(&b, "- Num cuts: %d\n", m.NumCuts)
	fmt.Fprintf(&b, "- Duration: %ds\n", m.DurationSec)
	fmt.Fprintf(&b, "- Adult options: %s\n", listOrNone(m.AdultOptions))
	fmt.Fprintf(&b, "- Bundles: %s\n", listOrNone(m.Bundles))
	fmt.Fprintf(&b, "- Extra: %s\n\n", listOrNone(m.Extra))

	b.WriteString("## Files\n\n")
	for _, f := range m.Files {
		fmt.Fprintf(&b, "- [%s](%s)\n", f, f)
	}
	return b.String()
}

// WriteManifest writes INDEX.md into dir and, when html is set, an INDEX.html
// rendering of it. It returns the paths written.
func WriteManifest(dir string, m Manifest, html bool) ([]string, error) {
	md := m.Markdown()
	mdPath := filepath.Join(dir, ManifestFile)
	if err := os.WriteFile(mdPath, []byte(md), 0644); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}
	paths := []string{mdPath}

	if !html {
		return paths, nil
	}

	body, err := RenderHTML(md)
	if err != nil {
		return paths, err
	}
	htmlPath := filepath.Join(dir, ManifestHTML)
	page := "<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>" +
		htmlEscaper.Replace(m.Scenario) + "</title></head>\n<body>\n" + body + "</body>\n</html>\n"
	if err := os.WriteFile(htmlPath, []byte(page), 0644); err != nil {
		return paths, fmt.Errorf("failed to write manifest html: %w", err)
	}
	return append(paths, htmlPath), nil
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

// RenderHTML converts markdown to an HTML fragment
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}
