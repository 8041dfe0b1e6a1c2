package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryStopsAfterMaxAttempts(t *testing.T) {
	boom := errors.New("boom")
	calls := 0

	var exhausted error
	policy := RetryPolicy{
		MaxAttempts: 3,
		OnExhausted: func(err error) { exhausted = err },
	}

	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, exhausted, boom)
}

func TestRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	policy := RetryPolicy{
		MaxAttempts: 5,
		OnExhausted: func(error) { t.Fatal("must not be called on success") },
	}

	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("boom")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	err := RetryPolicy{}.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	policy := RetryPolicy{MaxAttempts: 10}
	err := policy.Do(ctx, func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("boom")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
