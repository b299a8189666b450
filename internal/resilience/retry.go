package resilience

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Strategy selects the backoff shape (spec.md §4.4).
type Strategy int

const (
	Fixed Strategy = iota
	Linear
	Exponential
)

// RetryConfig tunes one registry's Retry Policy.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Factor      float64 // exponential backoff multiplier
	MaxDelay    time.Duration
	Strategy    Strategy
	JitterEnabled bool
}

// Delay computes delay_i for the i'th retry attempt (0-indexed), clamped to
// MaxDelay, with up to 10% uniform jitter added when enabled
// (spec.md §4.4).
func (c RetryConfig) Delay(attempt int) time.Duration {
	var d time.Duration
	switch c.Strategy {
	case Fixed:
		d = c.BaseDelay
	case Linear:
		d = c.BaseDelay * time.Duration(attempt+1)
	case Exponential:
		d = time.Duration(float64(c.BaseDelay) * math.Pow(c.Factor, float64(attempt)))
	default:
		d = c.BaseDelay
	}
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	if c.JitterEnabled && d > 0 {
		jitter := time.Duration(rand.Float64() * float64(d) * 0.1)
		d += jitter
	}
	return d
}

// Classification tells the retry loop whether an attempt's error is
// retryable and, if the server asked for a specific delay (HTTP
// Retry-After on 429), what it was.
type Classification struct {
	Retryable  bool
	RetryAfter time.Duration // zero if not specified
}

// Do runs fn up to cfg.MaxAttempts times (spec.md §8: "the total number of
// underlying requests for one logical call is ≤ retry_max"). classify
// inspects the error returned by fn to decide retryability and extract any
// Retry-After hint; fn itself is responsible for producing an error whose
// shape classify understands. Do returns the last error if every attempt
// is exhausted, or nil on the first success.
func Do(ctx context.Context, cfg RetryConfig, classify func(error) Classification, fn func(ctx context.Context) error) error {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		cls := classify(err)
		if !cls.Retryable || attempt == maxAttempts-1 {
			return lastErr
		}

		delay := cfg.Delay(attempt)
		if cls.RetryAfter > 0 {
			delay = cls.RetryAfter
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}
