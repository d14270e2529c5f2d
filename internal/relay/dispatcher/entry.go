// Moves queued lines to the outbound channel, honouring its low watermark
package dispatcher

import (
	"context"
	"fmt"
	"logpush/internal/global"
	"logpush/internal/logctx"
	"logpush/internal/message"
	"logpush/internal/queue/fifo"
	"logpush/internal/relay/shared"
	"runtime"
	"runtime/debug"
	"sync/atomic"
	"time"
)

func New(namespace []string, inbox *fifo.Queue[string], formatter *message.Formatter, open Opener, ready, terminated *shared.Latch, sent *atomic.Uint64, backpressureInterval time.Duration) (new *Instance) {
	if backpressureInterval <= 0 {
		backpressureInterval = global.DefaultBackpressureInterval
	}

	new = &Instance{
		Namespace:            append(append([]string(nil), namespace...), global.NSDispatcher),
		inbox:                inbox,
		formatter:            formatter,
		open:                 open,
		ready:                ready,
		terminated:           terminated,
		sent:                 sent,
		backpressureInterval: backpressureInterval,
		Metrics:              &MetricStorage{},
	}
	return
}

// Establishes the channel, signals readiness and dispatches until the collector
// has terminated and the queue is empty, or ctx is cancelled.
// stop is called on every return path.
func (instance *Instance) Run(ctx context.Context, stop func()) (err error) {
	defer stop()

	channel, err := instance.open(ctx)
	if err != nil {
		err = fmt.Errorf("failed to establish outbound channel: %w", err)
		return
	}
	defer func() {
		dropped, closeErr := channel.Close(ctx)
		if closeErr != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"Outbound channel did not close cleanly: %v\n", closeErr)
		}
		logctx.LogEvent(ctx, global.VerbosityDebug, global.InfoLog,
			"Outbound channel closed (%d frames discarded)\n", dropped)
	}()

	lowWatermark := channel.LowWatermark()
	instance.ready.Set()

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"Dispatching (low watermark %d bytes)\n", lowWatermark)

	for {
		if ctx.Err() != nil {
			logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
				"Dispatch interrupted, abandoning %d queued lines\n", instance.inbox.Len())
			return
		}

		finished := instance.step(ctx, channel, lowWatermark)
		if finished {
			logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
				"Input drained, dispatch finished\n")
			return
		}
	}
}

// One loop turn. Returns true once input has terminated and nothing is left to send.
func (instance *Instance) step(ctx context.Context, channel shared.OutboundChannel, lowWatermark uint64) (finished bool) {
	// Set between dequeue and the sent count
	var inFlight bool

	// Record panics and continue with the next turn
	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in dispatcher thread: %v\n%s", fatalError, stack)
			if inFlight {
				instance.Metrics.DroppedLines.Add(1)
				logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
					"Dropped dequeued line after panic\n")
			}
		}
	}()

	buffered := channel.BufferedBytes()
	if buffered > lowWatermark {
		// Never dequeue while above the watermark
		instance.Metrics.BackpressureWaits.Add(1)
		logctx.LogEvent(ctx, global.VerbosityDebug, global.InfoLog,
			"Backpressure: %d bytes buffered above low watermark %d\n", buffered, lowWatermark)

		channel.Drain(ctx)
		sleep(ctx, instance.backpressureInterval)
		return
	}

	if instance.terminated.IsSet() && instance.inbox.Empty() {
		finished = true
		return
	}

	// Termination wakes the pop so the check above runs again
	line, ok := instance.inbox.Pop(ctx, instance.terminated.Done())
	if !ok {
		return
	}
	inFlight = true

	record, err := instance.formatter.Format(line)
	if err != nil {
		instance.Metrics.FormatErrors.Add(1)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Dropping line that could not be formatted: %v\n", err)
		return
	}

	channel.Write(record)
	instance.sent.Add(1)
	inFlight = false
	instance.Metrics.Dispatched.Add(1)
	instance.Metrics.DispatchedBytes.Add(uint64(len(record)))

	logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog,
		"Dispatched record (size %d)\n", len(record))

	if instance.inbox.Empty() {
		runtime.Gosched()
	}
	return
}

func sleep(ctx context.Context, duration time.Duration) {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
