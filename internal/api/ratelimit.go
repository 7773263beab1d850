package api

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiterPool manages per-endpoint rate limiters
type RateLimiterPool struct {
	limiters     map[string]*rate.Limiter
	rates        map[string]int // Track original rates for consistency check
	burstPercent int
	mu           sync.RWMutex
}

// NewRateLimiterPool creates a new rate limiter pool. burstPercent is the
// burst capacity as a percentage of the per-minute rate (minimum burst 1).
func NewRateLimiterPool(burstPercent int) *RateLimiterPool {
	if burstPercent <= 0 {
		burstPercent = 15
	}
	return &RateLimiterPool{
		limiters:     make(map[string]*rate.Limiter),
		rates:        make(map[string]int),
		burstPercent: burstPercent,
	}
}

// GetOrCreate returns an existing rate limiter or creates a new one.
// If a limiter exists with a different rate, it logs a warning and keeps the existing one.
// A non-positive rate yields an unlimited limiter.
func (p *RateLimiterPool) GetOrCreate(key string, requestsPerMinute int) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if limiter, exists := p.limiters[key]; exists {
		if existingRate, ok := p.rates[key]; ok && existingRate != requestsPerMinute {
			slog.Warn("Rate limiter already exists with different rate, using existing rate",
				"key", key,
				"existing_rpm", existingRate,
				"requested_rpm", requestsPerMinute)
		}
		return limiter
	}

	var limiter *rate.Limiter
	if requestsPerMinute <= 0 {
		limiter = rate.NewLimiter(rate.Inf, 1)
	} else {
		rps := float64(requestsPerMinute) / 60.0
		burst := max(1, requestsPerMinute*p.burstPercent/100)
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
		slog.Debug("Created rate limiter",
			"key", key,
			"rpm", requestsPerMinute,
			"rps", rps,
			"burst", burst)
	}
	p.limiters[key] = limiter
	p.rates[key] = requestsPerMinute

	return limiter
}

// Wait blocks until the rate limiter allows the next request
func (p *RateLimiterPool) Wait(ctx context.Context, key string, requestsPerMinute int) error {
	return p.GetOrCreate(key, requestsPerMinute).Wait(ctx)
}
