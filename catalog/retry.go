package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smallnest/collabwalk/log"
)

// RetryConfig configures retry behavior for catalog requests
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	RetryableErrors func(error) bool // Determines if an error should trigger retry
}

// DefaultRetryConfig returns a configuration that makes a single attempt.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     1,
		InitialDelay:    250 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		BackoffFactor:   2.0,
		RetryableErrors: IsRetryable,
	}
}

// IsRetryable reports whether err is a *CatalogError worth repeating.
func IsRetryable(err error) bool {
	ce, ok := AsCatalogError(err)
	return ok && ce.Retryable()
}

// RetryClient wraps a Client with exponential backoff.
type RetryClient struct {
	client Client
	config RetryConfig
	logger log.Logger
}

var _ Client = (*RetryClient)(nil)

// WithRetry wraps client so that retryable failures are repeated.
// A server supplied Retry-After delay takes precedence over the backoff delay.
func WithRetry(client Client, config RetryConfig) *RetryClient {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.BackoffFactor < 1 {
		config.BackoffFactor = 1
	}
	if config.RetryableErrors == nil {
		config.RetryableErrors = IsRetryable
	}
	return &RetryClient{
		client: client,
		config: config,
		logger: log.GetDefaultLogger(),
	}
}

// SetLogger sets the logger used to report retried calls.
func (r *RetryClient) SetLogger(logger log.Logger) {
	r.logger = logger
}

// SearchArtist implements Client.
func (r *RetryClient) SearchArtist(ctx context.Context, name string) (Artist, error) {
	return retry(ctx, r, "search "+name, func() (Artist, error) {
		return r.client.SearchArtist(ctx, name)
	})
}

// ListReleases implements Client.
func (r *RetryClient) ListReleases(ctx context.Context, artistID string, query ReleaseQuery) ([]Release, error) {
	return retry(ctx, r, "releases "+artistID, func() ([]Release, error) {
		return r.client.ListReleases(ctx, artistID, query)
	})
}

// retry runs fn until it succeeds, fails with a non-retryable error or runs
// out of attempts. The last error is returned unchanged.
func retry[T any](ctx context.Context, r *RetryClient, what string, fn func() (T, error)) (T, error) {
	var zero T
	delay := r.config.InitialDelay

	for attempt := 1; ; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if attempt >= r.config.MaxAttempts || !r.config.RetryableErrors(err) {
			return zero, err
		}

		wait := delay
		if ce, ok := AsCatalogError(err); ok && ce.RetryAfter > wait {
			wait = ce.RetryAfter
		}
		r.logger.Warn("catalog %s failed (attempt %d/%d), retrying in %v: %v",
			what, attempt, r.config.MaxAttempts, wait, err)

		select {
		case <-time.After(wait):
			delay = time.Duration(float64(delay) * r.config.BackoffFactor)
			if r.config.MaxDelay > 0 {
				delay = min(delay, r.config.MaxDelay)
			}
		case <-ctx.Done():
			return zero, fmt.Errorf("retry cancelled during backoff: %w", errors.Join(err, ctx.Err()))
		}
	}
}
