package retry

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Backoff defaults, matching the delays previously hard-coded at the Gemini
// call site.
const (
	DefaultBaseDelay  = 2 * time.Second
	DefaultMaxDelay   = 60 * time.Second
	DefaultMultiplier = 2.0
)

// Backoff configures the exponential delay policy between attempts.
type Backoff struct {
	// BaseDelay is the delay after the first failed attempt.
	BaseDelay time.Duration

	// MaxDelay caps the delay between attempts.
	MaxDelay time.Duration

	// Multiplier controls exponential growth (2.0 = double each attempt).
	Multiplier float64

	// Jitter scales each delay by a random factor in [0.5, 1.0) to spread
	// out retries from concurrent callers.
	Jitter bool
}

// DefaultBackoff returns the production backoff policy.
func DefaultBackoff() Backoff {
	return Backoff{
		BaseDelay:  DefaultBaseDelay,
		MaxDelay:   DefaultMaxDelay,
		Multiplier: DefaultMultiplier,
		Jitter:     true,
	}
}

// Delay computes the wait after the given 1-indexed failed attempt.
func (b Backoff) Delay(attempt int) time.Duration {
	base := b.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	multiplier := b.Multiplier
	if multiplier <= 0 {
		multiplier = DefaultMultiplier
	}

	delay := float64(base) * math.Pow(multiplier, float64(attempt-1))
	if b.Jitter {
		delay *= 0.5 + rand.Float64()*0.5
	}

	capped := time.Duration(delay)
	if b.MaxDelay > 0 && capped > b.MaxDelay {
		capped = b.MaxDelay
	}
	return capped
}

// DelayFunc adapts the policy into the form Do consumes, sleeping with
// context awareness.
func (b Backoff) DelayFunc() DelayFunc {
	return func(ctx context.Context, attempt int) error {
		timer := time.NewTimer(b.Delay(attempt))
		defer timer.Stop()

		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
