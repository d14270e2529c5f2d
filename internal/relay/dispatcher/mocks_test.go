package dispatcher

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Records writes. Buffered bytes are set by the test, drains can release them.
type fakeChannel struct {
	mu       sync.Mutex
	written  []string
	low      uint64
	buffered atomic.Uint64

	drains       atomic.Int64
	releaseAfter int64 // drains before buffered drops to zero, 0 never
	writesAbove  atomic.Int64
	closed       atomic.Bool
	closeDropped int

	panicWrites atomic.Int64 // upcoming writes that panic instead of recording

	// Buffer rises above low after write number congestAfter and clears on the
	// first drain once congestFor has passed
	congestAfter int
	congestFor   time.Duration
	congestedAt  time.Time
	writeTimes   []time.Time
}

func (channel *fakeChannel) Write(frame []byte) {
	if channel.panicWrites.Load() > 0 {
		channel.panicWrites.Add(-1)
		panic("channel write failed")
	}
	if channel.buffered.Load() > channel.low {
		channel.writesAbove.Add(1)
	}
	channel.mu.Lock()
	defer channel.mu.Unlock()
	channel.written = append(channel.written, string(frame))
	channel.writeTimes = append(channel.writeTimes, time.Now())
	if channel.congestAfter > 0 && len(channel.written) == channel.congestAfter {
		channel.congestedAt = time.Now()
		channel.buffered.Store(channel.low + 1)
	}
}

func (channel *fakeChannel) BufferedBytes() (size uint64) {
	size = channel.buffered.Load()
	return
}

func (channel *fakeChannel) LowWatermark() (size uint64) {
	size = channel.low
	return
}

func (channel *fakeChannel) Drain(ctx context.Context) {
	count := channel.drains.Add(1)
	if channel.releaseAfter > 0 && count >= channel.releaseAfter {
		channel.buffered.Store(0)
	}

	channel.mu.Lock()
	defer channel.mu.Unlock()
	if !channel.congestedAt.IsZero() && time.Since(channel.congestedAt) >= channel.congestFor {
		channel.buffered.Store(0)
	}
}

func (channel *fakeChannel) Close(ctx context.Context) (dropped int, err error) {
	channel.closed.Store(true)
	dropped = channel.closeDropped
	return
}

func (channel *fakeChannel) records() (out []string) {
	channel.mu.Lock()
	defer channel.mu.Unlock()
	out = append(out, channel.written...)
	return
}

func (channel *fakeChannel) writeTimestamps() (out []time.Time) {
	channel.mu.Lock()
	defer channel.mu.Unlock()
	out = append(out, channel.writeTimes...)
	return
}
