package collector

import (
	"context"
	"errors"
	"logpush/internal/relay/shared"
	"sync"
	"sync/atomic"
	"time"
)

// Scripted poll result
type pollStep struct {
	state shared.PollState
	lines []string
	err   error
}

// Replays steps in order, then reports NoData after waiting the poll timeout
type scriptedSource struct {
	mu     sync.Mutex
	steps  []pollStep
	polls  atomic.Int64
	closed atomic.Bool
}

func (source *scriptedSource) Poll(ctx context.Context, timeout time.Duration) (state shared.PollState, lines []string, err error) {
	source.polls.Add(1)

	source.mu.Lock()
	if len(source.steps) > 0 {
		step := source.steps[0]
		source.steps = source.steps[1:]
		source.mu.Unlock()
		state, lines, err = step.state, step.lines, step.err
		return
	}
	source.mu.Unlock()

	select {
	case <-ctx.Done():
	case <-time.After(timeout):
	}
	state = shared.NoData
	return
}

func (source *scriptedSource) Close() (err error) {
	source.closed.Store(true)
	return
}

var errDeviceGone = errors.New("input device gone")
