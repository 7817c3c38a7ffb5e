package ratelimiter

import (
	"testing"
	"time"
)

func TestFixedWindowLimits(t *testing.T) {
	rl := NewFixedWindowLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, _ := rl.Allow("10.0.0.1")
		if !allowed {
			t.Fatalf("request %d rejected under the limit", i+1)
		}
	}
	allowed, retryAfter := rl.Allow("10.0.0.1")
	if allowed {
		t.Error("request over the limit was allowed")
	}
	if retryAfter != time.Minute {
		t.Errorf("retry after = %v, want the window length", retryAfter)
	}
}

func TestFixedWindowIsPerClient(t *testing.T) {
	rl := NewFixedWindowLimiter(1, time.Minute)
	rl.Allow("10.0.0.1")

	if allowed, _ := rl.Allow("10.0.0.2"); !allowed {
		t.Error("second client must have its own budget")
	}
}

func TestFixedWindowResets(t *testing.T) {
	rl := NewFixedWindowLimiter(1, 10*time.Millisecond)
	rl.Allow("10.0.0.1")
	if allowed, _ := rl.Allow("10.0.0.1"); allowed {
		t.Fatal("limit not enforced")
	}

	time.Sleep(30 * time.Millisecond)
	if allowed, _ := rl.Allow("10.0.0.1"); !allowed {
		t.Error("window expiry should restore the budget")
	}
}
