package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy defines the interface for different backoff strategies
type BackoffStrategy interface {
	// NextDelay returns the delay to apply before retry attempt (1-indexed)
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff implements exponential backoff with additive jitter.
// The delay before attempt k is Base^(k-1) seconds plus a uniform random
// value in [0, JitterMax).
type ExponentialBackoff struct {
	// Base is the exponent base; the delay grows as Base^(attempt-1) seconds
	Base float64
	// JitterMax bounds the uniform random jitter added to each delay
	JitterMax time.Duration
	// MaxDelay caps the computed delay (0 means no cap)
	MaxDelay time.Duration
}

// DefaultExponentialBackoff returns a backoff with sensible defaults
func DefaultExponentialBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		Base:      2.0,
		JitterMax: 500 * time.Millisecond,
		MaxDelay:  60 * time.Second,
	}
}

// NextDelay calculates the delay before the given attempt (counted from 1)
func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	delay := time.Duration(math.Pow(eb.Base, float64(attempt-1)) * float64(time.Second))

	if eb.MaxDelay > 0 && delay > eb.MaxDelay {
		delay = eb.MaxDelay
	}

	if eb.JitterMax > 0 {
		delay += time.Duration(rand.Int63n(int64(eb.JitterMax)))
	}

	return delay
}

// ConstantBackoff implements constant delay backoff
type ConstantBackoff struct {
	Delay time.Duration
}

// NextDelay returns a constant delay
func (cb *ConstantBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return cb.Delay
}

// Wait waits for the specified duration or until context is cancelled
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
