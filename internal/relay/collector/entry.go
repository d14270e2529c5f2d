// Reads lines from the input source into the pending queue
package collector

import (
	"context"
	"fmt"
	"logpush/internal/global"
	"logpush/internal/logctx"
	"logpush/internal/queue/fifo"
	"logpush/internal/relay/shared"
	"runtime"
	"runtime/debug"
)

func New(namespace []string, source shared.LineSource, outbox *fifo.Queue[string], ready, terminated *shared.Latch, opts Options) (new *Instance) {
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = global.DefaultReadyTimeout
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = global.DefaultPollTimeout
	}

	new = &Instance{
		Namespace:  append(append([]string(nil), namespace...), global.NSCollector),
		source:     source,
		outbox:     outbox,
		ready:      ready,
		terminated: terminated,
		opts:       opts,
		Metrics:    &MetricStorage{},
	}
	return
}

// Collects until end of input, failure or cancellation.
// The termination signal is set on every return path.
// A nil error means input ended or ctx was cancelled.
func (instance *Instance) Run(ctx context.Context) (err error) {
	defer instance.terminated.Set()

	// Record panics as a collector failure
	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in collector thread: %v\n%s", fatalError, stack)
			err = fmt.Errorf("collector panic: %v", fatalError)
		}
	}()

	logctx.LogEvent(ctx, global.VerbosityDebug, global.InfoLog,
		"Waiting up to %v for outbound channel readiness\n", instance.opts.ReadyTimeout)

	if !instance.ready.Wait(ctx, instance.opts.ReadyTimeout) {
		if ctx.Err() != nil {
			logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
				"Cancelled before outbound channel was ready\n")
			return
		}
		err = fmt.Errorf("%w (waited %v)", ErrReadyTimeout, instance.opts.ReadyTimeout)
		return
	}

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "Collecting input\n")

	for {
		if ctx.Err() != nil {
			logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
				"Collection interrupted with %d lines pending\n", instance.outbox.Len())
			return
		}

		state, lines, pollErr := instance.source.Poll(ctx, instance.opts.PollTimeout)
		if pollErr != nil {
			err = fmt.Errorf("failed polling input: %w", pollErr)
			return
		}

		for _, line := range lines {
			instance.outbox.Push(line, len(line))
			instance.Metrics.LinesQueued.Add(1)

			logctx.LogEvent(ctx, global.VerbosityFullData, global.InfoLog,
				"Queued line: %q\n", line)

			// give the dispatcher a chance to run between lines
			runtime.Gosched()
		}

		switch state {
		case shared.Ended:
			logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
				"End of input reached\n")
			return
		case shared.NoData:
			instance.Metrics.EmptyPolls.Add(1)
		}
	}
}
