package client

import (
	"net/http"
	"time"
)

// Default constants for Client configuration.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultRetryMax     = 3
	DefaultRetryWaitMin = 500 * time.Millisecond
	DefaultRetryWaitMax = 5 * time.Second
	DefaultUserAgent    = "iie-go-sdk/" + Version
	MaxRetryMax         = 10
)

// Option configures a Client. Options are applied in order during NewClient.
type Option func(*Client)

// WithHTTPClient injects a custom *http.Client. Nil is ignored.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger injects a custom Logger. Nil is ignored (keeps noopLogger).
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent overrides the default User-Agent. Empty string is ignored.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithRetryMax sets the maximum retry count. Clamped to [0, MaxRetryMax].
func WithRetryMax(retryMax int) Option {
	return func(c *Client) {
		if retryMax < 0 {
			retryMax = 0
		}
		if retryMax > MaxRetryMax {
			retryMax = MaxRetryMax
		}
		c.retryMax = retryMax
	}
}

// WithRetryWait sets the min/max backoff durations. Invalid values fall back
// to defaults; if min > max the two are swapped.
func WithRetryWait(min, max time.Duration) Option {
	return func(c *Client) {
		if min <= 0 {
			min = DefaultRetryWaitMin
		}
		if max <= 0 {
			max = DefaultRetryWaitMax
		}
		if min > max {
			min, max = max, min
		}
		c.retryWaitMin = min
		c.retryWaitMax = max
	}
}

// WithTimeout sets the HTTP client timeout. Values <= 0 are ignored. If
// combined with WithHTTPClient, the last applied option wins.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout <= 0 {
			return
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
}
