package retry_test

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yueh722/Web3-news-app/internal/news"
	"github.com/yueh722/Web3-news-app/internal/resilience/retry"
)

func fastConfig(attempts int) retry.Config {
	return retry.Config{
		MaxAttempts:    attempts,
		InitialDelay:   5 * time.Millisecond,
		MaxDelay:       20 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

func TestWithBackoff_Success(t *testing.T) {
	attempts := 0
	err := retry.WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithBackoff_SuccessAfterRetry(t *testing.T) {
	attempts := 0
	err := retry.WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		if attempts < 3 {
			return &news.BackendError{StatusCode: 502, Body: "bad gateway"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithBackoff_MaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	testErr := &news.BackendError{StatusCode: 500, Body: "boom"}
	err := retry.WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return testErr
	})
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.ErrorIs(t, err, testErr)

	var be *news.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "boom", be.Detail())
}

func TestWithBackoff_NonRetryable(t *testing.T) {
	attempts := 0
	err := retry.WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return &news.BackendError{StatusCode: 404, Body: "no sheet"}
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithBackoff_SingleAttemptReturnsRawError(t *testing.T) {
	testErr := &news.BackendError{StatusCode: 503}
	err := retry.WithBackoff(context.Background(), fastConfig(1), func() error { return testErr })
	assert.Same(t, testErr, err)
}

func TestWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig(5)
	cfg.InitialDelay = time.Second

	attempts := 0
	err := retry.WithBackoff(ctx, cfg, func() error {
		attempts++
		cancel()
		return &news.BackendError{StatusCode: 500}
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"conn refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
		{"conn reset", syscall.ECONNRESET, true},
		{"transport refused", &news.TransportError{Op: "GET", Err: syscall.ECONNREFUSED}, true},
		{"500", &news.BackendError{StatusCode: 500}, true},
		{"429", &news.BackendError{StatusCode: 429}, true},
		{"408", &news.BackendError{StatusCode: 408}, true},
		{"400", &news.BackendError{StatusCode: 400}, false},
		{"wrapped 503", fmt.Errorf("fetch: %w", &news.BackendError{StatusCode: 503}), true},
		{"malformed", &news.MalformedResponseError{Reason: "not a list"}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retry.IsRetryable(tt.err))
		})
	}
}

func TestWebhookReadConfig(t *testing.T) {
	assert.Equal(t, 1, retry.WebhookReadConfig(0).MaxAttempts)
	assert.Equal(t, 4, retry.WebhookReadConfig(4).MaxAttempts)
}
