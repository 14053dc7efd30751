package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	limiter := New(2, 1) // 2 burst, 1 token/sec

	if !limiter.Allow() {
		t.Error("first request should be allowed")
	}
	if !limiter.Allow() {
		t.Error("second request should be allowed (burst)")
	}
	if limiter.Allow() {
		t.Error("third request should be rejected (bucket empty)")
	}
}

func TestLimiter_Refill(t *testing.T) {
	limiter := New(1, 100) // refills fast: 100 tokens/sec

	if !limiter.Allow() {
		t.Fatal("first request should be allowed")
	}
	if limiter.Allow() {
		t.Fatal("bucket should be empty")
	}

	time.Sleep(20 * time.Millisecond) // enough for ~2 tokens at 100/sec

	if !limiter.Allow() {
		t.Error("request after refill should be allowed")
	}
}

func TestLimiter_WaitRespectsContext(t *testing.T) {
	limiter := New(1, 0.001) // effectively never refills

	if err := limiter.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait should succeed immediately: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx)
	if err == nil {
		t.Error("Wait should fail when context expires before a token is available")
	}
}

func TestNewPerMinute(t *testing.T) {
	limiter := NewPerMinute(600) // 10/sec, burst 20

	if limiter.refillRate != 10 {
		t.Errorf("refillRate = %v, want 10", limiter.refillRate)
	}
	if limiter.maxTokens != 20 {
		t.Errorf("maxTokens = %v, want 20", limiter.maxTokens)
	}
}
