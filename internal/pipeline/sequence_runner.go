package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lamim/promptforge/internal/writer"
	"github.com/lamim/promptforge/pkg/models"
)

// CutResult is the outcome of one cut
type CutResult struct {
	Cut     models.CutSpec
	Path    string
	Lines   int
	Stats   models.VariantStats
	Resumed bool // completed by an earlier run
	Err     error
}

// SequenceRunner runs each cut of a plan through a Pipeline into its own file
type SequenceRunner struct {
	Pipeline *Pipeline
	// PathFor names the output file of a cut
	PathFor func(cut models.CutSpec) string
	// Open creates the sink for a cut file
	Open         func(path string) (writer.LineSink, error)
	Checkpoint   Checkpointer
	ShowProgress bool
	Logger       *slog.Logger
}

// Run processes cuts in index order. A failure in one cut is recorded in its
// CutResult and does not stop the others; only cancellation ends the run
// early.
func (r *SequenceRunner) Run(ctx context.Context, cuts []models.CutSpec, variants int) ([]CutResult, models.RunStats, error) {
	stats := models.RunStats{StartTime: time.Now(), Cuts: len(cuts)}
	results := make([]CutResult, 0, len(cuts))

	bar := newBar(r.ShowProgress, len(cuts), "Generating cuts")
	defer func() { _ = bar.Finish() }()

	finish := func() {
		stats.EndTime = time.Now()
		stats.TotalDuration = stats.EndTime.Sub(stats.StartTime)
	}

	for _, cut := range cuts {
		res := CutResult{Cut: cut, Path: r.PathFor(cut)}

		if r.Checkpoint != nil && r.Checkpoint.IsDone(cut.Key()) {
			r.Logger.Info("Skipping completed cut", "cut", cut.Key())
			res.Resumed = true
			results = append(results, res)
			_ = bar.Add(1)
			continue
		}

		err := r.runCut(ctx, &res, variants)
		stats.Variants.Add(res.Stats)
		if ctxErr := ctx.Err(); ctxErr != nil {
			results = append(results, res)
			finish()
			return results, stats, ctxErr
		}
		if err != nil {
			res.Err = err
			r.Logger.Error("Cut failed", "cut", cut.Key(), "error", err)
		} else if r.Checkpoint != nil {
			if err := r.Checkpoint.MarkDone(cut.Key(), res.Lines, res.Stats); err != nil {
				r.Logger.Warn("Failed to save checkpoint", "error", err)
			}
		}

		r.Logger.Info("Cut finished",
			"cut", cut.Key(),
			"lines", res.Lines,
			"path", res.Path)
		results = append(results, res)
		_ = bar.Add(1)
	}

	finish()
	return results, stats, nil
}

func (r *SequenceRunner) runCut(ctx context.Context, res *CutResult, variants int) (err error) {
	sink, err := r.Open(res.Path)
	if err != nil {
		return fmt.Errorf("failed to open cut output: %w", err)
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close cut output: %w", cerr)
		}
	}()

	stream := r.Pipeline.Variants(ctx, res.Cut.Seed, variants)
	for stream.Next() {
		if err := sink.WriteLine(stream.Line()); err != nil {
			res.Stats = stream.Stats()
			return fmt.Errorf("failed to write variant: %w", err)
		}
		res.Lines++
	}
	res.Stats = stream.Stats()
	return stream.Err()
}
