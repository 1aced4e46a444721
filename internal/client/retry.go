package client

import (
	"net/http"
	"time"

	"winesearcher/parser/internal/config"
)

// RetryPolicy is an explicit, injectable retry configuration. It is passed
// into the client instead of being baked into the transport so tests can
// exercise it independently.
type RetryPolicy struct {
	MaxAttempts int           // total attempts per URL, including the first
	MinWait     time.Duration // backoff floor
	MaxWait     time.Duration // backoff ceiling
}

// DefaultRetryPolicy mirrors the upstream site's observed tolerance: three
// attempts with a 2s..10s exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		MinWait:     2 * time.Second,
		MaxWait:     10 * time.Second,
	}
}

// PolicyFromConfig builds a RetryPolicy from the loaded configuration.
func PolicyFromConfig(cfg config.WineSearcherConfig) RetryPolicy {
	policy := DefaultRetryPolicy()
	if cfg.MaxRetries > 0 {
		policy.MaxAttempts = cfg.MaxRetries
	}
	if cfg.RetryWait > 0 {
		policy.MinWait = time.Duration(cfg.RetryWait) * time.Second
	}
	if cfg.RetryMaxWait > 0 {
		policy.MaxWait = time.Duration(cfg.RetryMaxWait) * time.Second
	}
	return policy
}

// Retryable reports whether a given outcome should be retried: network
// errors, 5xx responses, and 429 (rate limit). Any other 4xx is permanent.
func (p RetryPolicy) Retryable(statusCode int, err error) bool {
	if statusCode == 0 {
		return err != nil
	}
	if statusCode == http.StatusTooManyRequests {
		return true
	}
	return statusCode >= http.StatusInternalServerError
}

// Backoff returns the exponential delay before the given retry attempt
// (attempt 1 = first retry), capped at MaxWait.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}
	delay := p.MinWait * time.Duration(1<<(attempt-1))
	if p.MaxWait > 0 && delay > p.MaxWait {
		delay = p.MaxWait
	}
	return delay
}
