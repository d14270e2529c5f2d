package transport

import (
	"context"
	"errors"
	"logpush/internal/atomics"
	"logpush/internal/global"
	"logpush/internal/logctx"
	"runtime/debug"
	"time"
)

// Sends buffered frames in order. A frame leaves the buffer only after a successful send.
func (channel *Channel) flush(ctx context.Context) {
	defer close(channel.flushDone)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frame, ok := channel.head()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-channel.wake:
			}
			continue
		}

		if !channel.sendHead(ctx, frame) {
			if !sleep(ctx, channel.opts.ReconnectInterval) {
				return
			}
		}
	}
}

// One delivery attempt, redialing first when no sink is held
func (channel *Channel) sendHead(ctx context.Context, frame []byte) (sent bool) {
	// Record panics and retry after the reconnect interval
	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in flusher thread: %v\n%s", fatalError, stack)
			sent = false
			channel.resetSink(ctx)
		}
	}()

	if channel.sink == nil {
		sink, err := channel.dial(ctx)
		if err != nil {
			if ctx.Err() == nil {
				channel.Metrics.DialErrors.Add(1)
				logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
					"Reconnect failed, retrying in %v: %v\n", channel.opts.ReconnectInterval, err)
			}
			return
		}
		channel.sink = sink
		channel.Metrics.Reconnects.Add(1)
		logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "Reconnected\n")
	}

	err := channel.sink.Send(ctx, frame)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		channel.Metrics.SendErrors.Add(1)
		if errors.Is(err, ErrTemporary) {
			logctx.LogEvent(ctx, global.VerbosityData, global.WarnLog,
				"Send deferred: %v\n", err)
			return
		}
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Send failed, reconnecting in %v: %v\n", channel.opts.ReconnectInterval, err)
		channel.resetSink(ctx)
		return
	}

	channel.popHead(len(frame))
	channel.Metrics.FramesSent.Add(1)
	channel.Metrics.BytesSent.Add(uint64(len(frame)))
	logctx.LogEvent(ctx, global.VerbosityFullData, global.InfoLog,
		"Sent frame (size %d)\n", len(frame))
	sent = true
	return
}

func (channel *Channel) resetSink(ctx context.Context) {
	if channel.sink == nil {
		return
	}
	err := channel.sink.Close()
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
			"Failed to close broken sink: %v\n", err)
	}
	channel.sink = nil
}

func (channel *Channel) head() (frame []byte, ok bool) {
	channel.mu.Lock()
	defer channel.mu.Unlock()
	if len(channel.frames) == 0 {
		return
	}
	frame = channel.frames[0]
	ok = true
	return
}

func (channel *Channel) popHead(size int) {
	channel.mu.Lock()
	if len(channel.frames) > 0 {
		channel.frames[0] = nil
		channel.frames = channel.frames[1:]
		if len(channel.frames) == 0 {
			channel.frames = nil
		}
	}
	channel.Metrics.BufferedFrames.Store(uint64(len(channel.frames)))
	channel.mu.Unlock()

	atomics.Subtract(&channel.bufferedBytes, uint64(size), 4)

	select {
	case channel.progress <- struct{}{}:
	default:
	}
}

// Returns false if ctx was cancelled during the wait
func sleep(ctx context.Context, duration time.Duration) (completed bool) {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
		completed = true
	}
	return
}
