package dispatcher

import (
	"context"
	"logpush/internal/message"
	"logpush/internal/queue/fifo"
	"logpush/internal/relay/shared"
	"sync/atomic"
	"time"
)

// Establishes the outbound channel. Called once at dispatcher start.
type Opener func(ctx context.Context) (channel shared.OutboundChannel, err error)

// Message dispatcher task. Single consumer of the pending queue.
type Instance struct {
	Namespace            []string
	inbox                *fifo.Queue[string]
	formatter            *message.Formatter
	open                 Opener
	ready                *shared.Latch
	terminated           *shared.Latch
	sent                 *atomic.Uint64 // owned by the coordinator
	backpressureInterval time.Duration
	Metrics              *MetricStorage
}

type MetricStorage struct {
	Dispatched        atomic.Uint64 // records written to the channel
	DispatchedBytes   atomic.Uint64
	BackpressureWaits atomic.Uint64 // loop turns spent above the low watermark
	FormatErrors      atomic.Uint64
	DroppedLines      atomic.Uint64 // dequeued lines lost to a recovered panic
}
