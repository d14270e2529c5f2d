package transport

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// Send failed but the connection is still usable, wait and retry without redialing
var ErrTemporary = errors.New("temporary send failure")

// Destination specific delivery of single frames
type Sink interface {
	Send(ctx context.Context, frame []byte) (err error)
	Close() (err error)
}

// Creates a fresh sink. Called at establishment and after every non-temporary send failure.
type Dialer func(ctx context.Context) (sink Sink, err error)

type Options struct {
	LowWatermark      uint64        // buffered bytes at or below which writing may resume
	HighWatermark     uint64        // buffered bytes above which writes are flagged
	ReconnectInterval time.Duration // fixed wait after a failed dial or send
	DrainTimeout      time.Duration // upper bound of a single Drain call
	Linger            time.Duration // wait for buffered frames at close, 0 discards immediately
}

// Buffered push channel with a single background flusher
type Channel struct {
	Namespace []string
	opts      Options
	dial      Dialer

	mu     sync.Mutex
	frames [][]byte // head is the next frame to send

	bufferedBytes atomic.Uint64
	wake          chan struct{} // frame appended
	progress      chan struct{} // frame removed

	sink      Sink // owned by the flusher goroutine
	ctx       context.Context
	cancel    context.CancelFunc
	flushDone chan struct{}
	closed    atomic.Bool

	Metrics *MetricStorage
}

type MetricStorage struct {
	FramesWritten  atomic.Uint64
	FramesSent     atomic.Uint64
	BytesSent      atomic.Uint64
	SendErrors     atomic.Uint64
	DialErrors     atomic.Uint64
	Reconnects     atomic.Uint64
	HighWaterHits  atomic.Uint64
	FramesDropped  atomic.Uint64
	BufferedFrames atomic.Uint64
}
