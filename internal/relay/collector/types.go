package collector

import (
	"errors"
	"logpush/internal/queue/fifo"
	"logpush/internal/relay/shared"
	"sync/atomic"
	"time"
)

// Dispatcher did not signal readiness within the configured bound
var ErrReadyTimeout = errors.New("outbound channel not ready in time")

type Options struct {
	ReadyTimeout time.Duration // bound on waiting for the readiness signal
	PollTimeout  time.Duration // bound on each poll of the line source
}

// Input collector task. Single producer of the pending queue.
type Instance struct {
	Namespace  []string
	source     shared.LineSource
	outbox     *fifo.Queue[string]
	ready      *shared.Latch
	terminated *shared.Latch
	opts       Options
	Metrics    *MetricStorage
}

type MetricStorage struct {
	LinesQueued atomic.Uint64 // lines pushed to the pending queue
	EmptyPolls  atomic.Uint64 // polls that returned no data
}
