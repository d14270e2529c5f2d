// Types shared between the relay tasks and their external boundaries
package shared

import (
	"context"
	"time"
)

func NewLatch() (new *Latch) {
	new = &Latch{
		done: make(chan struct{}),
	}
	return
}

// Sets the latch. Safe to call any number of times from any goroutine.
func (latch *Latch) Set() {
	latch.once.Do(func() {
		close(latch.done)
	})
}

func (latch *Latch) IsSet() (set bool) {
	select {
	case <-latch.done:
		set = true
	default:
	}
	return
}

// Closed once the latch is set
func (latch *Latch) Done() (done <-chan struct{}) {
	done = latch.done
	return
}

// Blocks until the latch is set, timeout elapses or ctx is cancelled.
// A timeout of zero or less waits without bound.
func (latch *Latch) Wait(ctx context.Context, timeout time.Duration) (set bool) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-latch.done:
		set = true
	case <-ctx.Done():
		set = latch.IsSet()
	case <-expired:
		set = latch.IsSet()
	}
	return
}
