// Package resilience implements the per-registry Circuit Breaker, Retry
// Policy, and Request Cache described in spec.md §4.4, translated from the
// original Python core/resilience.py (CircuitBreaker, RetryHandler,
// ResilientAPIClient) into idiomatic Go: explicit state enums, a
// context.Context-aware retry loop, and a recovery check of the time
// elapsed since the breaker opened, instead of the Python
// decorator/global-dict pattern.
package resilience

import (
	"sync"
	"time"
)

// State is one of the three Circuit Breaker states (spec.md §4.4).
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig tunes one registry's breaker.
type CircuitBreakerConfig struct {
	FailureThreshold int
	RecoveryTimeout  time.Duration
	SuccessThreshold int
}

// CircuitBreaker implements the state table in spec.md §4.4. One instance
// guards one registry; all transitions are protected by a mutex so readers
// (state queries for /health) never block on a concurrent writer for long.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	mu           sync.Mutex
	state        State
	failureCount int
	successCount int
	openedAt     time.Time
}

// NewCircuitBreaker constructs a breaker starting in the Closed state.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 1
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = 30 * time.Second
	}
	return &CircuitBreaker{cfg: cfg, state: Closed}
}

// Allow reports whether a call may proceed. If the breaker is Open but the
// recovery timeout has elapsed, it transitions to Half-Open and allows
// this call through as a probe. While Half-Open, Allow returns true for
// every call until RecordSuccess or RecordFailure moves the breaker on;
// the number of concurrent Half-Open calls is not limited to one.
func (b *CircuitBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return true
	case HalfOpen:
		return true
	case Open:
		if time.Since(b.openedAt) >= b.cfg.RecoveryTimeout {
			b.state = HalfOpen
			b.successCount = 0
			return true
		}
		return false
	default:
		return false
	}
}

// RecordSuccess transitions the breaker per the state table's success
// edges: Closed resets its failure counter; Half-Open accumulates
// successes until success_threshold closes it.
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		b.failureCount = 0
	case HalfOpen:
		b.successCount++
		if b.successCount >= b.cfg.SuccessThreshold {
			b.state = Closed
			b.failureCount = 0
			b.successCount = 0
		}
	}
}

// RecordFailure transitions the breaker per the state table's failure
// edges: Closed opens once failure_threshold consecutive failures
// accumulate; Half-Open reopens immediately on any failure.
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		b.failureCount++
		if b.failureCount >= b.cfg.FailureThreshold {
			b.state = Open
			b.openedAt = time.Now()
		}
	case HalfOpen:
		b.state = Open
		b.openedAt = time.Now()
		b.successCount = 0
	}
}

// State returns the breaker's current state for observability
// (spec.md §6 /health).
func (b *CircuitBreaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
