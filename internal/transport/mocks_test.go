package transport

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// In-memory sink. Sends block while gate is closed and fail per the failures script.
type fakeSink struct {
	mu       sync.Mutex
	received [][]byte
	gate     chan struct{} // nil means never block
	failures []error       // consumed one per Send, nil entries succeed
	closed   atomic.Bool
}

func (sink *fakeSink) Send(ctx context.Context, frame []byte) (err error) {
	if sink.gate != nil {
		select {
		case <-sink.gate:
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.failures) > 0 {
		err = sink.failures[0]
		sink.failures = sink.failures[1:]
		if err != nil {
			return
		}
	}
	sink.received = append(sink.received, append([]byte(nil), frame...))
	return
}

func (sink *fakeSink) Close() (err error) {
	sink.closed.Store(true)
	return
}

func (sink *fakeSink) frames() (out []string) {
	sink.mu.Lock()
	defer sink.mu.Unlock()
	for _, frame := range sink.received {
		out = append(out, string(frame))
	}
	return
}

// Hands out the given sinks in order, then fails
type fakeDialer struct {
	mu    sync.Mutex
	sinks []*fakeSink
	dials int
}

var errNoSink = errors.New("no sink available")

func (dialer *fakeDialer) Dial(ctx context.Context) (sink Sink, err error) {
	dialer.mu.Lock()
	defer dialer.mu.Unlock()
	dialer.dials++
	if len(dialer.sinks) == 0 {
		err = errNoSink
		return
	}
	sink = dialer.sinks[0]
	dialer.sinks = dialer.sinks[1:]
	return
}

func (dialer *fakeDialer) count() (dials int) {
	dialer.mu.Lock()
	defer dialer.mu.Unlock()
	dials = dialer.dials
	return
}
