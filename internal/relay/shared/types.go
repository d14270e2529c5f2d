package shared

import (
	"context"
	"sync"
	"time"
)

// Result of a single poll of the line source
type PollState int

const (
	NoData        PollState = iota // timeout elapsed without input
	DataAvailable                  // one or more complete lines returned
	Ended                          // end of input, no further lines
)

// Newline-delimited text input polled with a bounded timeout
type LineSource interface {
	Poll(ctx context.Context, timeout time.Duration) (state PollState, lines []string, err error)
	Close() error
}

// Push-only best-effort destination with watermark based backpressure
type OutboundChannel interface {
	Write(frame []byte)
	BufferedBytes() (size uint64)
	LowWatermark() (size uint64)
	Drain(ctx context.Context)
	Close(ctx context.Context) (dropped int, err error)
}

// One-way boolean signal. Once set, it stays set.
type Latch struct {
	once sync.Once
	done chan struct{}
}
