package catalog

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.MaxAttempts = attempts
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	return cfg
}

func TestWithRetry_RetriesRetryableErrors(t *testing.T) {
	a := MockArtist("A")
	mock := NewMockClient(a).
		QueueReleasesError(a.ID, &CatalogError{Op: "releases", StatusCode: http.StatusBadGateway}).
		QueueReleasesError(a.ID, &CatalogError{Op: "releases", StatusCode: http.StatusTooManyRequests, RetryAfter: 2 * time.Millisecond}).
		QueueReleases(a.ID, MockRelease("Ok", a))

	client := WithRetry(mock, fastRetry(3))
	releases, err := client.ListReleases(context.Background(), a.ID, ReleaseQuery{Type: ReleaseSingle, Limit: 5})
	require.NoError(t, err)
	require.Len(t, releases, 1)
	assert.Equal(t, 3, mock.ReleaseCalls(a.ID))
}

func TestWithRetry_DefaultMakesOneAttempt(t *testing.T) {
	a := MockArtist("A")
	failure := &CatalogError{Op: "releases", StatusCode: http.StatusServiceUnavailable}
	mock := NewMockClient(a).QueueReleasesError(a.ID, failure)

	client := WithRetry(mock, DefaultRetryConfig())
	_, err := client.ListReleases(context.Background(), a.ID, ReleaseQuery{})

	// Returned unchanged
	assert.Same(t, failure, err)
	assert.Equal(t, 1, mock.ReleaseCalls(a.ID))
}

func TestWithRetry_StopsOnNonRetryableError(t *testing.T) {
	mock := NewMockClient()
	client := WithRetry(mock, fastRetry(5))

	_, err := client.SearchArtist(context.Background(), "Missing")
	assert.True(t, IsNotFound(err))
	assert.Len(t, mock.Calls(), 1)

	badRequest := &CatalogError{Op: "search", StatusCode: http.StatusBadRequest}
	mock.FailSearch("Bad", badRequest)
	_, err = client.SearchArtist(context.Background(), "Bad")
	assert.Same(t, badRequest, err)
	assert.Len(t, mock.Calls(), 2)
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	a := MockArtist("A")
	mock := NewMockClient(a).QueueReleasesError(a.ID, &CatalogError{Op: "releases", StatusCode: http.StatusInternalServerError})

	client := WithRetry(mock, fastRetry(4))
	_, err := client.ListReleases(context.Background(), a.ID, ReleaseQuery{})
	ce, ok := AsCatalogError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, ce.StatusCode)
	assert.Equal(t, 4, mock.ReleaseCalls(a.ID))
}

func TestWithRetry_CancelledDuringBackoff(t *testing.T) {
	a := MockArtist("A")
	mock := NewMockClient(a).QueueReleasesError(a.ID, &CatalogError{Op: "releases", StatusCode: http.StatusTooManyRequests, RetryAfter: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	client := WithRetry(mock, fastRetry(3))
	_, err := client.ListReleases(ctx, a.ID, ReleaseQuery{})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	ce, ok := AsCatalogError(err)
	require.True(t, ok, "last catalog error is kept: %v", err)
	assert.True(t, ce.RateLimited())
	assert.Equal(t, 1, mock.ReleaseCalls(a.ID))
}
