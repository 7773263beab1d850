package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lamim/promptforge/internal/writer"
	"github.com/lamim/promptforge/pkg/models"
	"github.com/schollz/progressbar/v3"
)

// Checkpointer records finished jobs so an interrupted run can resume
type Checkpointer interface {
	IsDone(key string) bool
	MarkDone(key string, accepted int, stats models.VariantStats) error
}

// SeedKey returns the checkpoint key of the i-th seed (0-based)
func SeedKey(i int) string {
	return fmt.Sprintf("seed-%04d", i+1)
}

// Runner feeds seeds through a Pipeline into one LineSink
type Runner struct {
	Pipeline *Pipeline
	Sink     writer.LineSink
	// Checkpoint is optional
	Checkpoint    Checkpointer
	ProgressEvery int
	ShowProgress  bool
	Logger        *slog.Logger
}

func newBar(show bool, total int, description string) *progressbar.ProgressBar {
	if show {
		return progressbar.Default(int64(total), description)
	}
	return progressbar.DefaultSilent(int64(total), description)
}

// Run generates variants lines for every seed in order. Generation failures
// are absorbed by the pipeline; a sink write failure or cancellation stops
// the run and is returned together with the stats so far.
func (r *Runner) Run(ctx context.Context, seeds []string, variants int) (models.RunStats, error) {
	stats := models.RunStats{StartTime: time.Now(), Seeds: len(seeds)}
	defer func() {
		stats.EndTime = time.Now()
		stats.TotalDuration = stats.EndTime.Sub(stats.StartTime)
	}()

	total := len(seeds) * variants
	written := 0

	r.Logger.Info("Starting variant generation",
		"seeds", len(seeds),
		"variants_per_seed", variants,
		"retry_budget", r.Pipeline.Budget())

	bar := newBar(r.ShowProgress, len(seeds), "Generating variants")
	defer func() { _ = bar.Finish() }()

	for i, seed := range seeds {
		key := SeedKey(i)
		if r.Checkpoint != nil && r.Checkpoint.IsDone(key) {
			r.Logger.Info("Skipping completed seed", "seed", key)
			total -= variants
			_ = bar.Add(1)
			continue
		}

		stream := r.Pipeline.Variants(ctx, seed, variants)
		accepted := 0
		for stream.Next() {
			if err := r.Sink.WriteLine(stream.Line()); err != nil {
				stats.Variants.Add(stream.Stats())
				return stats, fmt.Errorf("failed to write variant: %w", err)
			}
			accepted++
			written++
			if r.ProgressEvery > 0 && written%r.ProgressEvery == 0 {
				r.Logger.Info(fmt.Sprintf("Appended %d/%d lines", written, total))
			}
		}
		seedStats := stream.Stats()
		stats.Variants.Add(seedStats)

		if err := stream.Err(); err != nil {
			return stats, err
		}

		if accepted < variants {
			r.Logger.Warn("Seed produced fewer variants than requested",
				"seed", key,
				"accepted", accepted,
				"requested", variants,
				"skipped", seedStats.Skipped,
				"failed", seedStats.Failed)
		}

		if r.Checkpoint != nil {
			if f, ok := r.Sink.(writer.Flusher); ok {
				if err := f.Flush(); err != nil {
					return stats, fmt.Errorf("failed to flush output for seed %q: %w", key, err)
				}
			}
			if err := r.Checkpoint.MarkDone(key, accepted, seedStats); err != nil {
				r.Logger.Warn("Failed to save checkpoint", "error", err)
			}
		}
		_ = bar.Add(1)
	}

	r.Logger.Info("Variant generation completed",
		"lines", written,
		"attempts", stats.Variants.Attempts,
		"skipped", stats.Variants.Skipped,
		"failed", stats.Variants.Failed)

	return stats, nil
}
