// Gathers relay component metrics into a central registry
package metrics

import (
	"context"
	"logpush/internal/global"
	"logpush/internal/logctx"
	"logpush/internal/metrics"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/pbnjay/memory"
)

const minPollInterval time.Duration = time.Millisecond

// Counters summed across all components in the shutdown report
var totalNames = []string{
	"lines_read",
	"lines_queued",
	"dispatched",
	"dispatched_bytes",
	"backpressure_waits",
	"frames_sent",
	"send_errors",
	"reconnects",
	"frames_dropped",
	"dropped_lines",
}

func New(queueBytes *atomic.Uint64, interval time.Duration, maximumMetricAge time.Duration) (new *Gatherer) {
	if interval <= 0 {
		interval = global.DefaultMetricInterval
	}
	if maximumMetricAge <= 0 {
		maximumMetricAge = global.DefaultMetricMaxAge
	}

	new = &Gatherer{
		Registry:   metrics.New(),
		Interval:   interval,
		Retention:  maximumMetricAge,
		queueBytes: queueBytes,
		freeMemory: memory.FreeMemory,
	}
	return
}

// Adds components to every following collection
func (gatherer *Gatherer) Register(collectors ...Collector) {
	gatherer.mu.Lock()
	defer gatherer.mu.Unlock()
	for _, collector := range collectors {
		if collector == nil {
			continue
		}
		gatherer.collectors = append(gatherer.collectors, collector)
	}
}

func (gatherer *Gatherer) Run(ctx context.Context) {
	ctx = logctx.AppendCtxTag(ctx, global.NSMetric)

	// Tracking last interval run time
	lastRun := time.Now()

	ticker := time.NewTicker(pollInterval(gatherer.Interval))
	defer ticker.Stop()

	// Counter to track how many ticks have passed (for retention)
	var tickCount int

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			gatherer.checkMemory(ctx)

			if now.Sub(lastRun) >= gatherer.Interval {
				timeSlice := gatherer.Registry.NewTimeSlice(now, gatherer.Interval)
				lastRun = now
				gatherer.runIntervalTasks(ctx, timeSlice, gatherer.Interval)
			}

			// Conduct old metric evaluations and cleanup
			tickCount++
			if tickCount >= 30 {
				removed := gatherer.Registry.Prune(now, gatherer.Retention)
				if removed > 0 {
					logctx.LogEvent(ctx, global.VerbosityDebug, global.InfoLog,
						"Pruned %d expired metric slices\n", removed)
				}
				tickCount = 0
			}
		}
	}
}

// Half of the record interval, never below the ticker minimum
func pollInterval(interval time.Duration) (poll time.Duration) {
	poll = max(interval/2, minPollInterval)
	return
}

// Read and store metrics for each registered component
func (gatherer *Gatherer) runIntervalTasks(ctx context.Context, timeSlice time.Time, interval time.Duration) {
	// Record panics and continue on next interval
	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in relay metric collector thread: %v\n%s", fatalError, stack)
		}
	}()

	gatherer.mu.Lock()
	collectors := append([]Collector(nil), gatherer.collectors...)
	gatherer.mu.Unlock()

	for _, collector := range collectors {
		gatherer.Registry.Add(timeSlice, collector.CollectMetrics(interval))
	}
}

// Warns once when the unbounded pending queue holds more than half of free memory
func (gatherer *Gatherer) checkMemory(ctx context.Context) {
	if gatherer.queueBytes == nil || gatherer.memoryWarned.Load() {
		return
	}

	queued := gatherer.queueBytes.Load()
	free := gatherer.freeMemory()
	if free == 0 || queued <= free/2 {
		return
	}

	if gatherer.memoryWarned.CompareAndSwap(false, true) {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Pending queue holds %d bytes, more than half of free system memory (%d bytes): outbound transport is not keeping up\n",
			queued, free)
	}
}

// Takes a last collection and logs run totals
func (gatherer *Gatherer) Finish(ctx context.Context) (totals map[string]uint64) {
	ctx = logctx.AppendCtxTag(ctx, global.NSMetric)

	now := time.Now()
	timeSlice := gatherer.Registry.NewTimeSlice(now, 0)
	gatherer.runIntervalTasks(ctx, timeSlice, gatherer.Interval)

	totals = make(map[string]uint64, len(totalNames))
	for _, name := range totalNames {
		totals[name] = gatherer.Registry.Total(name, nil)
	}

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"Totals: read=%d queued=%d dispatched=%d (%d bytes) sent=%d send_errors=%d reconnects=%d dropped=%d backpressure_waits=%d\n",
		totals["lines_read"], totals["lines_queued"], totals["dispatched"], totals["dispatched_bytes"],
		totals["frames_sent"], totals["send_errors"], totals["reconnects"], totals["frames_dropped"],
		totals["backpressure_waits"])
	return
}
