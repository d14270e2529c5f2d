// Best-effort outbound channel with watermark based backpressure and fixed interval reconnects
package transport

import (
	"context"
	"fmt"
	"logpush/internal/atomics"
	"logpush/internal/global"
	"logpush/internal/logctx"
	"time"
)

// Establishes the first sink and starts the flusher. A dial error here is fatal to the caller.
func New(ctx context.Context, dial Dialer, opts Options) (new *Channel, err error) {
	opts.setDefaults()

	sink, err := dial(ctx)
	if err != nil {
		err = fmt.Errorf("failed to establish outbound channel: %w", err)
		return
	}

	ctx = logctx.AppendCtxTag(ctx, global.NSTransport)

	new = &Channel{
		Namespace: logctx.GetTagList(ctx),
		opts:      opts,
		dial:      dial,
		wake:      make(chan struct{}, 1),
		progress:  make(chan struct{}, 1),
		sink:      sink,
		flushDone: make(chan struct{}),
		Metrics:   &MetricStorage{},
	}

	// Flusher lifetime is bound to Close, not to the caller's cancellation
	new.ctx, new.cancel = context.WithCancel(context.WithoutCancel(ctx))
	flusherCtx := logctx.AppendCtxTag(new.ctx, global.NSFlusher)
	go new.flush(flusherCtx)

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"Outbound channel ready (low watermark %d bytes, high watermark %d bytes, linger %v)\n",
		opts.LowWatermark, opts.HighWatermark, opts.Linger)
	return
}

// Sets defaults for any missing/invalid values
func (opts *Options) setDefaults() {
	if opts.LowWatermark == 0 {
		opts.LowWatermark = global.DefaultLowWatermark
	}
	if opts.HighWatermark < opts.LowWatermark {
		opts.HighWatermark = opts.LowWatermark * 4
	}
	if opts.ReconnectInterval <= 0 {
		opts.ReconnectInterval = global.DefaultReconnectInterval
	}
	if opts.DrainTimeout <= 0 {
		opts.DrainTimeout = global.DefaultDrainTimeout
	}
	if opts.Linger < 0 {
		opts.Linger = 0
	}
}

// Queues frame for sending. Never blocks.
func (channel *Channel) Write(frame []byte) {
	if channel.closed.Load() {
		channel.Metrics.FramesDropped.Add(1)
		return
	}

	channel.mu.Lock()
	channel.frames = append(channel.frames, frame)
	channel.Metrics.BufferedFrames.Store(uint64(len(channel.frames)))
	channel.mu.Unlock()

	buffered := channel.bufferedBytes.Add(uint64(len(frame)))
	channel.Metrics.FramesWritten.Add(1)
	if buffered > channel.opts.HighWatermark {
		channel.Metrics.HighWaterHits.Add(1)
	}

	select {
	case channel.wake <- struct{}{}:
	default:
	}
}

// Bytes written but not yet sent
func (channel *Channel) BufferedBytes() (size uint64) {
	size = channel.bufferedBytes.Load()
	return
}

func (channel *Channel) LowWatermark() (size uint64) {
	size = channel.opts.LowWatermark
	return
}

func (channel *Channel) HighWatermark() (size uint64) {
	size = channel.opts.HighWatermark
	return
}

// Waits for the buffer to fall to the low watermark, bounded by the drain timeout
func (channel *Channel) Drain(ctx context.Context) {
	timer := time.NewTimer(channel.opts.DrainTimeout)
	defer timer.Stop()

	for channel.bufferedBytes.Load() > channel.opts.LowWatermark {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			return
		case <-channel.flushDone:
			return
		case <-channel.progress:
		}
	}
}

// Stops the flusher according to the linger policy and releases the sink.
// Frames still buffered afterwards are discarded and counted.
func (channel *Channel) Close(ctx context.Context) (dropped int, err error) {
	if !channel.closed.CompareAndSwap(false, true) {
		return
	}
	ctx = logctx.AppendCtxTag(ctx, global.NSTransport)

	if channel.opts.Linger > 0 {
		// Linger is honoured even when ctx is already cancelled
		reached, last := atomics.WaitUntilZero(channel.ctx, &channel.bufferedBytes, channel.opts.Linger)
		if !reached {
			logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
				"Linger of %v expired with %d bytes still buffered\n", channel.opts.Linger, last)
		}
	}

	channel.cancel()
	<-channel.flushDone

	channel.mu.Lock()
	dropped = len(channel.frames)
	channel.frames = nil
	channel.Metrics.BufferedFrames.Store(0)
	channel.mu.Unlock()
	channel.bufferedBytes.Store(0)
	channel.Metrics.FramesDropped.Add(uint64(dropped))

	if dropped > 0 {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Discarded %d unsent messages at shutdown\n", dropped)
	}

	if channel.sink != nil {
		err = channel.sink.Close()
		if err != nil {
			err = fmt.Errorf("failed to close sink: %w", err)
		}
		channel.sink = nil
	}
	return
}
