// Package sequence plans storyboard sequences: it turns a scenario into an
// ordered list of cuts, from a fixed preset or from an LLM shot list.
package sequence

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lamim/promptforge/internal/generator"
	"github.com/lamim/promptforge/pkg/models"
)

// PlanRequest describes the sequence to plan
type PlanRequest struct {
	Scenario    string
	NumCuts     int // <= 0 keeps the preset's natural length
	DurationSec int
	Preset      string
	Auto        bool // ask the generator for a shot list; needs NumCuts > 0
	Topics      []string
	Language    string
	Bundle      []string // tokens appended to every cut seed
}

// Planner builds cut lists
type Planner struct {
	catalog     *Catalog
	gen         generator.Generator
	mode        generator.Mode
	temperature float64
	logger      *slog.Logger
}

// NewPlanner creates a planner. gen may be nil when only fixed presets are used.
func NewPlanner(catalog *Catalog, gen generator.Generator, mode generator.Mode, temperature float64, logger *slog.Logger) *Planner {
	return &Planner{
		catalog:     catalog,
		gen:         gen,
		mode:        mode,
		temperature: temperature,
		logger:      logger,
	}
}

// Plan returns the cuts for req, indexed contiguously from 1. Auto planning
// falls back to the preset when the generator fails or returns nothing
// usable; the only error is context cancellation.
func (p *Planner) Plan(ctx context.Context, req PlanRequest) ([]models.CutSpec, error) {
	preset, ok := p.catalog.Preset(req.Preset)
	if !ok {
		p.logger.Warn("Unknown shot preset, using a single generic cut", "preset", req.Preset)
	}

	shots := FitShots(preset, req.NumCuts)

	if req.Auto && req.NumCuts > 0 && p.gen != nil {
		auto, err := p.autoShots(ctx, req)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			p.logger.Warn("Shot list generation failed, using preset", "preset", req.Preset, "error", err)
		case len(auto) == 0:
			p.logger.Warn("Shot list was empty, using preset", "preset", req.Preset)
		default:
			if len(auto) > req.NumCuts {
				auto = auto[:req.NumCuts]
			}
			for i := 0; len(auto) < req.NumCuts; i++ {
				auto = append(auto, preset[i%len(preset)])
			}
			shots = auto
		}
	}

	return Number(shots, req.Scenario, req.Bundle), nil
}

func (p *Planner) autoShots(ctx context.Context, req PlanRequest) ([]Shot, error) {
	system, user := ShotListPrompt(req.Scenario, req.Topics, req.NumCuts, req.DurationSec, req.Language)

	raw, err := p.gen.Generate(ctx, generator.Request{
		Prompt:      user,
		System:      system,
		Mode:        p.mode,
		Temperature: p.temperature,
	})
	if err != nil {
		return nil, err
	}
	if p.mode != generator.ModeChat && strings.TrimSpace(raw) == "" {
		raw, err = p.gen.Generate(ctx, generator.Request{
			Prompt:      generator.ChatML(system, user),
			Mode:        generator.ModeGenerate,
			Temperature: p.temperature,
		})
		if err != nil {
			return nil, err
		}
	}

	shots := ParseShotList(raw)
	p.logger.Debug("Parsed shot list", "requested", req.NumCuts, "parsed", len(shots))
	return shots, nil
}
