package dispatcher

import (
	"logpush/internal/metrics"
	"time"
)

func (instance *Instance) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	// Read and clear
	dispatched := instance.Metrics.Dispatched.Swap(0)
	dispatchedBytes := instance.Metrics.DispatchedBytes.Swap(0)
	waits := instance.Metrics.BackpressureWaits.Swap(0)
	formatErrors := instance.Metrics.FormatErrors.Swap(0)
	droppedLines := instance.Metrics.DroppedLines.Swap(0)

	recordTime := time.Now()

	collection = []metrics.Metric{
		{
			Name:        "dispatched",
			Description: "Records written to the outbound channel in the interval",
			Namespace:   instance.Namespace,
			Value: metrics.MetricValue{
				Raw:      dispatched,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
		{
			Name:        "dispatched_bytes",
			Description: "Record bytes written to the outbound channel in the interval",
			Namespace:   instance.Namespace,
			Value: metrics.MetricValue{
				Raw:      dispatchedBytes,
				Unit:     "bytes",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
		{
			Name:        "backpressure_waits",
			Description: "Dispatch turns spent waiting for the channel to drain",
			Namespace:   instance.Namespace,
			Value: metrics.MetricValue{
				Raw:      waits,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
		{
			Name:        "format_errors",
			Description: "Lines dropped because they could not be formatted",
			Namespace:   instance.Namespace,
			Value: metrics.MetricValue{
				Raw:      formatErrors,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
		{
			Name:        "dropped_lines",
			Description: "Dequeued lines lost to a failure before reaching the channel",
			Namespace:   instance.Namespace,
			Value: metrics.MetricValue{
				Raw:      droppedLines,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
	}
	return
}
