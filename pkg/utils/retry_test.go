package utils

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryUntil_StopsWhenFinal(t *testing.T) {
	attempts := 0
	op := func(ctx context.Context) (int, error) {
		attempts++
		return attempts, nil
	}

	result, err := RetryUntil(context.Background(), 5, Fixed(time.Millisecond), op, func(v int) bool {
		return v >= 3
	})

	require.NoError(t, err)
	assert.Equal(t, 3, result)
	assert.Equal(t, 3, attempts)
}

func TestRetryUntil_ReturnsLastResultWhenNeverFinal(t *testing.T) {
	attempts := 0
	op := func(ctx context.Context) (string, error) {
		attempts++
		return "pending", nil
	}

	result, err := RetryUntil(context.Background(), 3, Fixed(time.Millisecond), op, func(string) bool {
		return false
	})

	require.NoError(t, err)
	assert.Equal(t, "pending", result)
	assert.Equal(t, 3, attempts)
}

func TestRetryUntil_RetriesThroughErrors(t *testing.T) {
	attempts := 0
	op := func(ctx context.Context) (int, error) {
		attempts++
		if attempts < 3 {
			return 0, fmt.Errorf("transient")
		}
		return 42, nil
	}

	result, err := RetryUntil(context.Background(), 5, Fixed(time.Millisecond), op, func(v int) bool {
		return v == 42
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
}

func TestRetryUntil_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	op := func(ctx context.Context) (int, error) {
		cancel()
		return 0, fmt.Errorf("not yet")
	}

	_, err := RetryUntil(ctx, 5, Fixed(50*time.Millisecond), op, func(int) bool {
		return false
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestLinearSchedule(t *testing.T) {
	schedule := Linear(10 * time.Millisecond)

	assert.Equal(t, 10*time.Millisecond, schedule(2))
	assert.Equal(t, 20*time.Millisecond, schedule(3))
}

func TestFixedSchedule(t *testing.T) {
	schedule := Fixed(7 * time.Millisecond)

	assert.Equal(t, 7*time.Millisecond, schedule(2))
	assert.Equal(t, 7*time.Millisecond, schedule(9))
}
