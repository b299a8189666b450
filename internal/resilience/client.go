package resilience

import (
	"context"
	"time"

	apperrors "github.com/ingredient-intel/iie/pkg/errors"
)

// ErrCircuitOpen is returned when a call is rejected without any network
// attempt because the registry's breaker is Open (spec.md §4.4).
var ErrCircuitOpen = apperrors.New(apperrors.CodeCircuitOpen, "circuit open: registry unavailable")

// RegistryConfig bundles one registry's Circuit Breaker, Retry Policy, and
// Request Cache tunables, plus its outbound call timeout and bounded
// concurrency (spec.md §4.4, §5).
type RegistryConfig struct {
	CircuitBreaker CircuitBreakerConfig
	Retry          RetryConfig
	CacheTTL       time.Duration
	Timeout        time.Duration
	Concurrency    int
}

// defaultRegistryConfigs mirrors the illustrative per-registry defaults in
// spec.md §4.4, carried forward verbatim from the original Python
// core/resilience.py preconfigured clients (get_fda_api_client /
// get_pubchem_api_client / get_ewg_api_client), extended with
// CIR/SCCS/ICCR/INCI Beauty entries using the same shape.
var defaultRegistryConfigs = map[string]RegistryConfig{
	"fda": {
		CircuitBreaker: CircuitBreakerConfig{FailureThreshold: 3, RecoveryTimeout: 30 * time.Second, SuccessThreshold: 1},
		Retry:          RetryConfig{MaxAttempts: 3, BaseDelay: time.Second, Factor: 2, MaxDelay: 30 * time.Second, Strategy: Exponential, JitterEnabled: true},
		CacheTTL:       time.Hour,
		Timeout:        30 * time.Second,
		Concurrency:    3,
	},
	"pubchem": {
		CircuitBreaker: CircuitBreakerConfig{FailureThreshold: 5, RecoveryTimeout: 60 * time.Second, SuccessThreshold: 1},
		Retry:          RetryConfig{MaxAttempts: 3, BaseDelay: 2 * time.Second, Factor: 2, MaxDelay: 30 * time.Second, Strategy: Exponential, JitterEnabled: true},
		CacheTTL:       2 * time.Hour,
		Timeout:        45 * time.Second,
		Concurrency:    3,
	},
	"ewg": {
		CircuitBreaker: CircuitBreakerConfig{FailureThreshold: 3, RecoveryTimeout: 45 * time.Second, SuccessThreshold: 1},
		Retry:          RetryConfig{MaxAttempts: 2, BaseDelay: 1500 * time.Millisecond, Factor: 1, MaxDelay: 15 * time.Second, Strategy: Linear, JitterEnabled: true},
		CacheTTL:       30 * time.Minute,
		Timeout:        30 * time.Second,
		Concurrency:    3,
	},
	"cir": {
		CircuitBreaker: CircuitBreakerConfig{FailureThreshold: 3, RecoveryTimeout: 45 * time.Second, SuccessThreshold: 1},
		Retry:          RetryConfig{MaxAttempts: 2, BaseDelay: 1500 * time.Millisecond, Factor: 1, MaxDelay: 15 * time.Second, Strategy: Linear, JitterEnabled: true},
		CacheTTL:       time.Hour,
		Timeout:        30 * time.Second,
		Concurrency:    3,
	},
	"sccs": {
		CircuitBreaker: CircuitBreakerConfig{FailureThreshold: 3, RecoveryTimeout: 45 * time.Second, SuccessThreshold: 1},
		Retry:          RetryConfig{MaxAttempts: 2, BaseDelay: 1500 * time.Millisecond, Factor: 1, MaxDelay: 15 * time.Second, Strategy: Linear, JitterEnabled: true},
		CacheTTL:       time.Hour,
		Timeout:        30 * time.Second,
		Concurrency:    3,
	},
	"iccr": {
		CircuitBreaker: CircuitBreakerConfig{FailureThreshold: 3, RecoveryTimeout: 45 * time.Second, SuccessThreshold: 1},
		Retry:          RetryConfig{MaxAttempts: 2, BaseDelay: 1500 * time.Millisecond, Factor: 1, MaxDelay: 15 * time.Second, Strategy: Linear, JitterEnabled: true},
		CacheTTL:       time.Hour,
		Timeout:        30 * time.Second,
		Concurrency:    3,
	},
	"incibeauty": {
		CircuitBreaker: CircuitBreakerConfig{FailureThreshold: 3, RecoveryTimeout: 45 * time.Second, SuccessThreshold: 1},
		Retry:          RetryConfig{MaxAttempts: 2, BaseDelay: time.Second, Factor: 1, MaxDelay: 10 * time.Second, Strategy: Linear, JitterEnabled: true},
		CacheTTL:       time.Hour,
		Timeout:        30 * time.Second,
		Concurrency:    3,
	},
}

// DefaultRegistryConfig returns the illustrative defaults for a registry id,
// or a generic fallback if the id is unrecognized.
func DefaultRegistryConfig(registryID string) RegistryConfig {
	if cfg, ok := defaultRegistryConfigs[registryID]; ok {
		return cfg
	}
	return RegistryConfig{
		CircuitBreaker: CircuitBreakerConfig{FailureThreshold: 3, RecoveryTimeout: 30 * time.Second, SuccessThreshold: 1},
		Retry:          RetryConfig{MaxAttempts: 3, BaseDelay: time.Second, Factor: 2, MaxDelay: 20 * time.Second, Strategy: Exponential, JitterEnabled: true},
		CacheTTL:       time.Hour,
		Timeout:        30 * time.Second,
		Concurrency:    3,
	}
}

// Client wraps one registry's outbound calls with its Circuit Breaker and
// Retry Policy. Its RequestCache is consulted by the caller (a Fetcher)
// directly so that GET-only caching stays explicit at the call site.
type Client struct {
	Breaker *CircuitBreaker
	Retry   RetryConfig
	Timeout time.Duration
}

// NewClient constructs a resilient Client for one registry's config.
func NewClient(cfg RegistryConfig) *Client {
	return &Client{
		Breaker: NewCircuitBreaker(cfg.CircuitBreaker),
		Retry:   cfg.Retry,
		Timeout: cfg.Timeout,
	}
}

// Call executes fn under the Circuit Breaker and Retry Policy. classify
// must classify errors returned by fn as retryable/not, per spec.md §4.4
// ("Only transport errors, 5xx responses, and request timeouts are
// retried; 4xx (except 408/429) is not").
func (c *Client) Call(ctx context.Context, classify func(error) Classification, fn func(ctx context.Context) error) error {
	if !c.Breaker.Allow() {
		return ErrCircuitOpen
	}

	callCtx := ctx
	var cancel context.CancelFunc
	if c.Timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	err := Do(callCtx, c.Retry, classify, fn)
	if err != nil {
		c.Breaker.RecordFailure()
		return err
	}
	c.Breaker.RecordSuccess()
	return nil
}
