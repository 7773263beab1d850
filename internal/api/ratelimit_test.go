package api

import (
	"context"
	"testing"

	"golang.org/x/time/rate"
)

func TestRateLimiterPool_GetOrCreate(t *testing.T) {
	pool := NewRateLimiterPool(20)

	l1 := pool.GetOrCreate("ollama:llama3", 600)
	l2 := pool.GetOrCreate("ollama:llama3", 60)
	if l1 != l2 {
		t.Error("Expected the existing limiter to be reused")
	}
	if l1.Burst() != 120 {
		t.Errorf("Expected burst 120 (20%% of 600), got %d", l1.Burst())
	}

	other := pool.GetOrCreate("ollama:qwen", 3)
	if other == l1 {
		t.Error("Expected a distinct limiter per key")
	}
	if other.Burst() != 1 {
		t.Errorf("Expected minimum burst 1, got %d", other.Burst())
	}
}

func TestRateLimiterPool_Unlimited(t *testing.T) {
	pool := NewRateLimiterPool(0)
	l := pool.GetOrCreate("k", 0)
	if l.Limit() != rate.Inf {
		t.Errorf("Expected unlimited limiter, got %v", l.Limit())
	}
	for i := 0; i < 10; i++ {
		if err := pool.Wait(context.Background(), "k", 0); err != nil {
			t.Fatalf("Wait() unexpected error: %v", err)
		}
	}
}
