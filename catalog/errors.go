package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// NotFoundError is returned when an artist search has no match.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no artist found for %q", e.Query)
}

// CatalogError describes a failed catalog request.
type CatalogError struct {
	// Op is the catalog operation, e.g. "search" or "releases".
	Op string

	// StatusCode is the HTTP status, zero for transport or decode failures.
	StatusCode int

	// Message is the error message reported by the catalog.
	Message string

	// RetryAfter is the server requested delay, if any.
	RetryAfter time.Duration

	// Err is the underlying cause.
	Err error
}

func (e *CatalogError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("catalog %s failed with status %d: %s", e.Op, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("catalog %s failed with status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("catalog %s failed: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("catalog %s failed", e.Op)
	}
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// RateLimited reports whether the catalog rejected the request for exceeding its quota.
func (e *CatalogError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// Retryable reports whether repeating the request may succeed.
func (e *CatalogError) Retryable() bool {
	return e.RateLimited() || e.StatusCode >= http.StatusInternalServerError
}

// IsNotFound reports whether err is, or wraps, a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// AsCatalogError extracts a *CatalogError from err.
func AsCatalogError(err error) (*CatalogError, bool) {
	var ce *CatalogError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
