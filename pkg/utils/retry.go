package utils

import (
	"context"
	"time"
)

// RetrySchedule returns the delay to wait before the given attempt
// (1-based). Attempt 1 runs immediately; the schedule is consulted before
// attempts 2..n.
type RetrySchedule func(attempt int) time.Duration

// Linear returns a schedule with linearly increasing delays: base, 2*base,
// 3*base, ...
func Linear(base time.Duration) RetrySchedule {
	return func(attempt int) time.Duration {
		return time.Duration(attempt-1) * base
	}
}

// Fixed returns a constant-delay schedule.
func Fixed(delay time.Duration) RetrySchedule {
	return func(int) time.Duration {
		return delay
	}
}

// RetryUntil runs op up to maxAttempts times, sleeping per schedule between
// attempts, and stops early as soon as final reports the result is good
// enough. The last observed result is returned even when no attempt was
// final, together with the last error. Context cancellation stops the loop.
func RetryUntil[T any](ctx context.Context, maxAttempts int, schedule RetrySchedule, op func(ctx context.Context) (T, error), final func(T) bool) (T, error) {
	var result T
	var err error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(schedule(attempt)):
			}
		}

		result, err = op(ctx)
		if err == nil && final(result) {
			return result, nil
		}
	}

	return result, err
}
