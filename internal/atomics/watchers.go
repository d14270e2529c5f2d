package atomics

import (
	"context"
	"sync/atomic"
	"time"
)

// Waits until atomic value is 0 three consecutive times in a row, with backoff and timeout.
// Returns early (not reached) if ctx is cancelled.
func WaitUntilZero(ctx context.Context, value *atomic.Uint64, timeout time.Duration) (reachedZero bool, lastValue uint64) {
	const successfulStreakCount = 3

	backoff := 10 * time.Millisecond
	maxBackoff := 250 * time.Millisecond

	deadline := time.Now().Add(timeout)
	zeroStreak := 0

	for {
		lastValue = value.Load()

		if lastValue == 0 {
			zeroStreak++
			if zeroStreak >= successfulStreakCount {
				reachedZero = true
				return
			}
		} else {
			zeroStreak = 0
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}

		sleep := backoff
		if sleep > remaining {
			sleep = remaining
		}

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		// Exponential backoff with cap
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
