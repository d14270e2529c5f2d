// Relay coordinator: runs the input collector and message dispatcher over one pending queue
package relay

import (
	"context"
	"errors"
	"fmt"
	"logpush/internal/global"
	"logpush/internal/logctx"
	"logpush/internal/message"
	"logpush/internal/queue/fifo"
	"logpush/internal/relay/collector"
	"logpush/internal/relay/dispatcher"
	"logpush/internal/relay/metrics"
	"logpush/internal/relay/shared"
	"os"
	"sync"
	"time"
)

// Readiness was not signalled within the configured bound
var ErrReadyTimeout = collector.ErrReadyTimeout

// Creates a relay over source, establishing the outbound channel through open at Run
func New(cfg Config, source shared.LineSource, open dispatcher.Opener) (new *Relay, err error) {
	cfg.SetDefaults()
	err = cfg.Validate()
	if err != nil {
		err = fmt.Errorf("invalid relay configuration: %w", err)
		return
	}
	if source == nil || open == nil {
		err = fmt.Errorf("relay requires a line source and an outbound channel opener")
		return
	}

	if global.PID == 0 {
		global.PID = os.Getpid()
	}

	formatter, err := message.NewFormatter(cfg.MessageType, global.PID, cfg.EscapeMode)
	if err != nil {
		return
	}

	new = &Relay{
		cfg:        cfg,
		queue:      fifo.New[string]([]string{global.NSRelay}),
		ready:      shared.NewLatch(),
		terminated: shared.NewLatch(),
		source:     source,
		Formatter:  formatter,
	}

	namespace := []string{global.NSRelay}
	new.Collector = collector.New(namespace, source, new.queue, new.ready, new.terminated,
		collector.Options{
			ReadyTimeout: cfg.ReadyTimeout,
			PollTimeout:  cfg.PollTimeout,
		})

	if cfg.MetricsEnabled {
		new.Gatherer = metrics.New(&new.queue.Metrics.Bytes, cfg.MetricCollectionInterval, cfg.MetricMaxAge)
		new.Gatherer.Register(new.Collector, new.queue)
		if collectable, ok := source.(metrics.Collector); ok {
			new.Gatherer.Register(collectable)
		}
	}

	// Channel metrics can only be registered once it exists
	new.open = func(ctx context.Context) (channel shared.OutboundChannel, err error) {
		channel, err = open(ctx)
		if err != nil {
			return
		}
		if new.Gatherer != nil {
			if collectable, ok := channel.(metrics.Collector); ok {
				new.Gatherer.Register(collectable)
			}
		}
		return
	}

	new.Dispatcher = dispatcher.New(namespace, new.queue, formatter, new.open,
		new.ready, new.terminated, &new.sent, cfg.BackpressureInterval)
	if new.Gatherer != nil {
		new.Gatherer.Register(new.Dispatcher)
	}
	return
}

// Closed once the outbound channel is established
func (relay *Relay) Ready() (ready <-chan struct{}) {
	ready = relay.ready.Done()
	return
}

// Runs both tasks to completion. The summary is valid on every return path.
// Cancelling ctx interrupts the run, queued lines are abandoned and no error is returned.
func (relay *Relay) Run(ctx context.Context) (summary Summary, err error) {
	ctx = logctx.AppendCtxTag(ctx, global.NSRelay)

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"Starting relay (type '%s', transport %s to %s)\n",
		relay.cfg.MessageType, relay.cfg.TransportKind, relay.cfg.Endpoint)

	start := time.Now()

	var metricWg sync.WaitGroup
	metricCtx, stopMetrics := context.WithCancel(ctx)
	if relay.Gatherer != nil {
		metricWg.Add(1)
		go func() {
			defer metricWg.Done()
			relay.Gatherer.Run(metricCtx)
		}()
	}

	var wg sync.WaitGroup
	var dispatchErr, collectErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		dispatchCtx := logctx.AppendCtxTag(runCtx, global.NSDispatcher)
		dispatchErr = relay.Dispatcher.Run(dispatchCtx, stop)
	}()
	go func() {
		defer wg.Done()
		collectCtx := logctx.AppendCtxTag(runCtx, global.NSCollector)
		collectErr = relay.Collector.Run(collectCtx)
		if collectErr != nil {
			// Unrecoverable input failure stops the whole run
			stop()
		}
	}()
	wg.Wait()

	summary = Summary{
		Sent:    relay.sent.Load(),
		Elapsed: time.Since(start),
		PID:     global.PID,
	}

	stopMetrics()
	metricWg.Wait()
	if relay.Gatherer != nil {
		relay.Gatherer.Finish(ctx)
	}

	closeErr := relay.source.Close()
	if closeErr != nil {
		logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
			"Failed to release input source: %v\n", closeErr)
	}

	err = joinRunErrors(ctx.Err() != nil, collectErr, dispatchErr)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Relay failed: %v\n", err)
		return
	}

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"Relay finished: %d messages sent in %v\n", summary.Sent, summary.Elapsed)
	return
}

// Dispatcher cancellation caused by an interrupt or by the collector stopping the run is not an error of its own
func joinRunErrors(interrupted bool, collectErr, dispatchErr error) (err error) {
	if dispatchErr != nil && errors.Is(dispatchErr, context.Canceled) && (interrupted || collectErr != nil) {
		dispatchErr = nil
	}
	err = errors.Join(collectErr, dispatchErr)
	return
}

func (summary Summary) String() (line string) {
	elapsedMs := float64(summary.Elapsed) / float64(time.Millisecond)
	line = fmt.Sprintf("Processed %d messages in %.04fms. Tagged with @pid:%d",
		summary.Sent, elapsedMs, summary.PID)
	return
}
