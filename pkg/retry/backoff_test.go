package retry

import (
	"context"
	"testing"
	"time"
)

func TestExponentialBackoffBounds(t *testing.T) {
	backoff := &ExponentialBackoff{
		Base:      2.0,
		JitterMax: 500 * time.Millisecond,
		MaxDelay:  60 * time.Second,
	}

	// Delay before retry k lies in [base^(k-1), base^(k-1)+jitterMax)
	for attempt := 1; attempt <= 5; attempt++ {
		expected := time.Duration(1<<(attempt-1)) * time.Second
		for i := 0; i < 50; i++ {
			delay := backoff.NextDelay(attempt)
			if delay < expected {
				t.Fatalf("Attempt %d: delay %v below deterministic floor %v", attempt, delay, expected)
			}
			if delay >= expected+500*time.Millisecond {
				t.Fatalf("Attempt %d: delay %v at or above jitter ceiling %v", attempt, delay, expected+500*time.Millisecond)
			}
		}
	}
}

func TestExponentialBackoffCap(t *testing.T) {
	backoff := &ExponentialBackoff{
		Base:      2.0,
		JitterMax: 100 * time.Millisecond,
		MaxDelay:  4 * time.Second,
	}

	delay := backoff.NextDelay(10)
	if delay >= 4*time.Second+100*time.Millisecond {
		t.Errorf("Capped delay %v exceeds cap plus jitter", delay)
	}
}

func TestExponentialBackoffNoJitter(t *testing.T) {
	backoff := &ExponentialBackoff{Base: 3.0, MaxDelay: time.Minute}

	if got := backoff.NextDelay(1); got != time.Second {
		t.Errorf("Attempt 1: got %v, want 1s", got)
	}
	if got := backoff.NextDelay(3); got != 9*time.Second {
		t.Errorf("Attempt 3: got %v, want 9s", got)
	}
}

func TestConstantBackoff(t *testing.T) {
	backoff := &ConstantBackoff{Delay: 2 * time.Second}
	for attempt := 1; attempt <= 4; attempt++ {
		if got := backoff.NextDelay(attempt); got != 2*time.Second {
			t.Errorf("Attempt %d: got %v, want 2s", attempt, got)
		}
	}
}

func TestWaitHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Wait(ctx, 5*time.Second)
	if err == nil {
		t.Fatal("Expected error from cancelled context")
	}
	if time.Since(start) > time.Second {
		t.Error("Wait should return promptly on cancellation")
	}
}

func TestWaitZeroDelay(t *testing.T) {
	if err := Wait(context.Background(), 0); err != nil {
		t.Errorf("Zero delay should succeed, got %v", err)
	}
}
