package providers

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter_Burst(t *testing.T) {
	tests := []struct {
		name     string
		config   RateLimitConfig
		requests int
	}{
		{"explicit burst", RateLimitConfig{RequestsPerMinute: 1, BurstSize: 3}, 3},
		{"burst defaults to per-minute rate", RateLimitConfig{RequestsPerMinute: 4}, 4},
		{"unlimited", RateLimitConfig{}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := NewRateLimiter(tt.config)

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			start := time.Now()
			for i := 0; i < tt.requests; i++ {
				if err := rl.Wait(ctx); err != nil {
					t.Fatalf("request %d within burst failed: %v", i, err)
				}
			}
			if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
				t.Errorf("burst took %v, want no waiting", elapsed)
			}
		})
	}
}

func TestRateLimiter_WaitHonorsDeadline(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 1, BurstSize: 1})

	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait failed: %v", err)
	}

	// The next token is a minute away
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); err == nil {
		t.Error("expected error when the deadline is before the next token")
	}
}
