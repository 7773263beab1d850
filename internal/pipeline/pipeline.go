// Package pipeline turns seed prompts into accepted variant lines: it calls
// the generator, reduces each response to one line and filters it, retrying
// within a per-variant budget.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lamim/promptforge/internal/generator"
	"github.com/lamim/promptforge/internal/tags"
	"github.com/lamim/promptforge/internal/util"
	"github.com/lamim/promptforge/pkg/models"
)

// Attempt outcomes reported to an Observer
const (
	OutcomeAccepted = "accepted"
	OutcomeEmpty    = "empty"
	OutcomeRefusal  = "refusal"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Observer receives one event per generator attempt. Implementations must
// be cheap; they run inline.
type Observer interface {
	ObserveAttempt(outcome string, duration time.Duration)
	ObserveDropped(tokens int)
}

type noopObserver struct{}

func (noopObserver) ObserveAttempt(string, time.Duration) {}
func (noopObserver) ObserveDropped(int)                   {}

// Options configures how candidates are requested and filtered
type Options struct {
	Exclusions tags.Set
	// Guard tokens always reject the candidate, whatever Mode says
	Guard       tags.Set
	Mode        models.ExcludeMode
	Retries     int
	Safety      bool
	Temperature float64
	LLMMode     generator.Mode
	System      string
	// Instruction builds the generator prompt for a sanitized seed. Nil sends
	// the seed itself.
	Instruction func(seed string) (string, error)
	Debug       bool
}

// Pipeline produces variant lines for seeds
type Pipeline struct {
	gen      generator.Generator
	opts     Options
	observer Observer
	logger   *slog.Logger
}

// New creates a pipeline
func New(gen generator.Generator, opts Options, logger *slog.Logger) *Pipeline {
	if opts.Mode == "" {
		opts.Mode = models.ExcludeModeDrop
	}
	if opts.LLMMode == "" {
		opts.LLMMode = generator.ModeGenerate
	}
	return &Pipeline{
		gen:      gen,
		opts:     opts,
		observer: noopObserver{},
		logger:   logger,
	}
}

// SetObserver installs an observer; nil restores the no-op observer
func (p *Pipeline) SetObserver(o Observer) {
	if o == nil {
		o = noopObserver{}
	}
	p.observer = o
}

// Budget returns the number of attempts each variant slot may use
func (p *Pipeline) Budget() int {
	return max(1, p.opts.Retries)
}

// Variants returns a stream of up to count accepted lines for seed. The
// stream is lazy: nothing is generated until Next is called.
func (p *Pipeline) Variants(ctx context.Context, seed string, count int) *Stream {
	s := &Stream{
		p:     p,
		ctx:   ctx,
		count: max(0, count),
	}
	s.stats.Requested = s.count

	clean := tags.SanitizeSeed(seed, p.opts.Safety, p.opts.Exclusions)
	s.req = generator.Request{
		Prompt:      clean,
		System:      p.opts.System,
		Mode:        p.opts.LLMMode,
		Temperature: p.opts.Temperature,
	}
	if p.opts.Instruction != nil {
		prompt, err := p.opts.Instruction(clean)
		if err != nil {
			s.err = err
			s.done = true
			return s
		}
		s.req.Prompt = prompt
	}
	return s
}

// evaluate reduces a raw response to an accepted line or names why it was
// not accepted
func (p *Pipeline) evaluate(raw string) (line, outcome string, dropped int) {
	line = tags.FirstLine(raw)
	if line == "" {
		return "", OutcomeEmpty, 0
	}
	if IsRefusal(line) {
		return "", OutcomeRefusal, 0
	}

	line = tags.ApplySafety(line, p.opts.Safety)

	if p.opts.Guard.Len() > 0 {
		if r := tags.Filter(line, p.opts.Guard, models.ExcludeModeReject); !r.Accepted {
			return "", OutcomeRejected, 0
		}
	}

	r := tags.Filter(line, p.opts.Exclusions, p.opts.Mode)
	if !r.Accepted {
		return "", OutcomeRejected, 0
	}
	if r.Line == "" {
		return "", OutcomeEmpty, r.Removed
	}
	return r.Line, OutcomeAccepted, r.Removed
}

// Stream is a finite, non-restartable sequence of accepted lines
type Stream struct {
	p     *Pipeline
	ctx   context.Context
	req   generator.Request
	count int
	slot  int
	line  string
	stats models.VariantStats
	err   error
	done  bool
}

// Next advances to the next accepted line. It returns false when every slot
// has been processed, or when the context was canceled (see Err).
func (s *Stream) Next() bool {
	if s.done {
		return false
	}
	for s.slot < s.count {
		s.slot++
		line, ok, err := s.runSlot()
		if err != nil {
			s.err = err
			s.done = true
			s.line = ""
			return false
		}
		if ok {
			s.line = line
			s.stats.Accepted++
			return true
		}
	}
	s.done = true
	s.line = ""
	return false
}

// Line returns the current line
func (s *Stream) Line() string {
	return s.line
}

// Stats returns the slot statistics so far
func (s *Stream) Stats() models.VariantStats {
	return s.stats
}

// Err returns the error that ended the stream early, if any
func (s *Stream) Err() error {
	return s.err
}

// runSlot fills one variant slot. A nil error with ok=false means the slot
// produced nothing and was counted as skipped or failed.
func (s *Stream) runSlot() (string, bool, error) {
	p := s.p
	budget := p.Budget()

	for attempt := 1; attempt <= budget; attempt++ {
		if err := s.ctx.Err(); err != nil {
			return "", false, err
		}

		s.stats.Attempts++
		start := time.Now()
		raw, err := p.gen.Generate(s.ctx, s.req)
		elapsed := time.Since(start)

		if err != nil {
			if ctxErr := s.ctx.Err(); ctxErr != nil {
				return "", false, ctxErr
			}
			if errors.Is(err, context.Canceled) {
				return "", false, err
			}
			p.observer.ObserveAttempt(OutcomeError, elapsed)

			if p.opts.Mode == models.ExcludeModeDrop {
				p.logger.Warn("Generation failed, skipping variant",
					"slot", s.slot,
					"error", err)
				s.stats.Failed++
				return "", false, nil
			}
			p.logger.Warn("Generation failed, retrying",
				"slot", s.slot,
				"attempt", attempt,
				"budget", budget,
				"error", err)
			continue
		}

		line, outcome, dropped := p.evaluate(raw)
		p.observer.ObserveAttempt(outcome, elapsed)
		if p.opts.Debug {
			p.logger.Debug("LLM output",
				"slot", s.slot,
				"attempt", attempt,
				"raw", util.TruncateString(raw, 200),
				"line", line,
				"outcome", outcome)
		}

		switch outcome {
		case OutcomeAccepted:
			if dropped > 0 {
				s.stats.Dropped += dropped
				p.observer.ObserveDropped(dropped)
			}
			return line, true, nil
		case OutcomeRejected:
			s.stats.Rejected++
		}
	}

	p.logger.Debug("Retry budget exhausted, skipping variant", "slot", s.slot, "budget", budget)
	s.stats.Skipped++
	return "", false, nil
}
