package metrics

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/lamim/promptforge/pkg/models"
)

func testCollector() *Collector {
	return NewCollector(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCollector_Observe(t *testing.T) {
	c := testCollector()

	c.ObserveAttempt("accepted", 200*time.Millisecond)
	c.ObserveAttempt("accepted", 300*time.Millisecond)
	c.ObserveAttempt("empty", 100*time.Millisecond)
	c.ObserveDropped(3)
	c.IncChatMLFallback()

	if got := testutil.ToFloat64(c.attempts.WithLabelValues("accepted")); got != 2 {
		t.Errorf("accepted attempts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.attempts.WithLabelValues("empty")); got != 1 {
		t.Errorf("empty attempts = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.droppedTokens); got != 3 {
		t.Errorf("dropped tokens = %v, want 3", got)
	}
	if got := testutil.ToFloat64(c.chatmlFallbacks); got != 1 {
		t.Errorf("chatml fallbacks = %v, want 1", got)
	}

	summary := c.GetMetricsSummary()
	if !strings.Contains(summary, "accepted=2") || !strings.Contains(summary, "empty=1") {
		t.Errorf("summary = %q", summary)
	}
}

func TestCollector_SeparateRegistries(t *testing.T) {
	a := testCollector()
	b := testCollector()

	a.ObserveDropped(1)

	if got := testutil.ToFloat64(b.droppedTokens); got != 0 {
		t.Errorf("collectors share state: %v", got)
	}
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := testCollector()
	c.RecordRun("variants", models.RunStats{
		Variants:      models.VariantStats{Accepted: 5, Skipped: 1},
		TotalDuration: 2 * time.Second,
	})

	path := filepath.Join(t.TempDir(), "promptforge.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{
		`promptforge_lines_written_total{command="variants"} 5`,
		`promptforge_variant_slots_total{result="skipped"} 1`,
		`promptforge_run_duration_seconds{command="variants"} 2`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics file missing %q\n%s", want, text)
		}
	}
}
