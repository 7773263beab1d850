package metrics

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lamim/promptforge/pkg/models"
)

// Collector records generation metrics in its own registry so a run can be
// exported to a node-exporter textfile when it ends
type Collector struct {
	registry *prometheus.Registry
	logger   *slog.Logger

	attempts        *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	droppedTokens   prometheus.Counter
	chatmlFallbacks prometheus.Counter
	linesWritten    *prometheus.CounterVec
	slots           *prometheus.CounterVec
	runDuration     *prometheus.GaugeVec
}

// NewCollector creates a collector with a fresh registry
func NewCollector(logger *slog.Logger) *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		logger:   logger,
		attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promptforge_generation_attempts_total",
				Help: "Generator calls by outcome",
			},
			[]string{"outcome"}, // accepted, empty, refusal, rejected, error
		),
		attemptDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "promptforge_generation_duration_seconds",
				Help:    "Generator call duration in seconds by outcome",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 0.1s to ~100s
			},
			[]string{"outcome"},
		),
		droppedTokens: factory.NewCounter(prometheus.CounterOpts{
			Name: "promptforge_dropped_tokens_total",
			Help: "Tokens removed from accepted lines in drop mode",
		}),
		chatmlFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "promptforge_chatml_fallbacks_total",
			Help: "Empty generate responses retried in ChatML form",
		}),
		linesWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promptforge_lines_written_total",
				Help: "Prompt lines written by command",
			},
			[]string{"command"},
		),
		slots: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promptforge_variant_slots_total",
				Help: "Variant slots by result",
			},
			[]string{"result"}, // accepted, skipped, failed
		),
		runDuration: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "promptforge_run_duration_seconds",
				Help: "Wall time of the last run by command",
			},
			[]string{"command"},
		),
	}
}

// ObserveAttempt records one generator call
func (c *Collector) ObserveAttempt(outcome string, duration time.Duration) {
	c.attempts.WithLabelValues(outcome).Inc()
	c.attemptDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// ObserveDropped records tokens removed in drop mode
func (c *Collector) ObserveDropped(tokens int) {
	c.droppedTokens.Add(float64(tokens))
}

// IncChatMLFallback counts one ChatML retry
func (c *Collector) IncChatMLFallback() {
	c.chatmlFallbacks.Inc()
}

// RecordRun records the totals of a finished run
func (c *Collector) RecordRun(command string, stats models.RunStats) {
	c.linesWritten.WithLabelValues(command).Add(float64(stats.Variants.Accepted))
	c.slots.WithLabelValues("accepted").Add(float64(stats.Variants.Accepted))
	c.slots.WithLabelValues("skipped").Add(float64(stats.Variants.Skipped))
	c.slots.WithLabelValues("failed").Add(float64(stats.Variants.Failed))
	c.runDuration.WithLabelValues(command).Set(stats.TotalDuration.Seconds())
}

// Registry exposes the registry, mainly for tests
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes all metrics in the Prometheus text format, atomically
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	c.logger.Info("Metrics written", "path", path)
	return nil
}

// GetMetricsSummary returns a one-line summary of the attempt counters
func (c *Collector) GetMetricsSummary() string {
	families, err := c.registry.Gather()
	if err != nil {
		return "metrics unavailable: " + err.Error()
	}

	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "promptforge_generation_attempts_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "outcome" {
					counts[lp.GetValue()] = m.GetCounter().GetValue()
				}
			}
		}
	}
	return fmt.Sprintf("attempts: accepted=%.0f empty=%.0f refusal=%.0f rejected=%.0f error=%.0f",
		counts["accepted"], counts["empty"], counts["refusal"], counts["rejected"], counts["error"])
}
