package sequence

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// catalogYAML holds the built-in presets and bundles baked into the binary
//
//go:embed catalog.yaml
var catalogYAML []byte

// Shot is one entry of a preset: a file label and its hint tokens
type Shot struct {
	Label string `yaml:"label"`
	Hint  string `yaml:"hint"`
}

// Preset is a named, ordered shot list
type Preset struct {
	Name        string   `yaml:"name"`
	Aliases     []string `yaml:"aliases"`
	Description string   `yaml:"description"`
	Shots       []Shot   `yaml:"shots"`
}

// Bundle is a named list of seed tokens
type Bundle struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tokens      []string `yaml:"tokens"`
}

// Catalog holds shot presets and keyword bundles
type Catalog struct {
	Presets  []Preset `yaml:"presets"`
	Fallback Shot     `yaml:"fallback"`
	Bundles  []Bundle `yaml:"bundles"`
}

// ParseCatalog decodes and checks a catalog document
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if c.Fallback.Label == "" {
		return nil, fmt.Errorf("catalog has no fallback shot")
	}
	for _, p := range c.Presets {
		if len(p.Shots) == 0 {
			return nil, fmt.Errorf("preset %q has no shots", p.Name)
		}
	}
	return &c, nil
}

var loadDefault = sync.OnceValues(func() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
})

// DefaultCatalog returns the built-in catalog
func DefaultCatalog() (*Catalog, error) {
	return loadDefault()
}

// Preset returns the shots of the named preset. Names and aliases are
// matched case-insensitively; an unknown name yields the single fallback
// shot and ok=false.
func (c *Catalog) Preset(name string) (shots []Shot, ok bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, p := range c.Presets {
		if strings.EqualFold(p.Name, key) {
			return append([]Shot(nil), p.Shots...), true
		}
		for _, a := range p.Aliases {
			if strings.EqualFold(a, key) {
				return append([]Shot(nil), p.Shots...), true
			}
		}
	}
	return []Shot{c.Fallback}, false
}

// Bundle returns the tokens of the named bundle
func (c *Catalog) Bundle(name string) ([]string, bool) {
	for _, b := range c.Bundles {
		if b.Name == name {
			return append([]string(nil), b.Tokens...), true
		}
	}
	return nil, false
}

// BundleNames returns the bundle names in sorted order
func (c *Catalog) BundleNames() []string {
	names := make([]string, 0, len(c.Bundles))
	for _, b := range c.Bundles {
		names = append(names, b.Name)
	}
	sort.Strings(names)
	return names
}

// BundleTokens resolves named bundles and extra comma-separated token lists
// into one token list, in order. adultOnly appends "adult woman".
func (c *Catalog) BundleTokens(names, extras []string, adultOnly bool) ([]string, error) {
	var tokens []string
	for _, name := range names {
		bt, ok := c.Bundle(name)
		if !ok {
			return nil, fmt.Errorf("unknown bundle %q (available: %s)", name, strings.Join(c.BundleNames(), ", "))
		}
		tokens = append(tokens, bt...)
	}
	for _, extra := range extras {
		for _, part := range strings.Split(strings.ReplaceAll(extra, "\n", ","), ",") {
			if t := strings.TrimSpace(part); t != "" {
				tokens = append(tokens, t)
			}
		}
	}
	if adultOnly {
		tokens = append(tokens, "adult woman")
	}
	return tokens, nil
}
