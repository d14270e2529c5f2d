package fifo

import (
	"logpush/internal/metrics"
	"time"
)

func (queue *Queue[T]) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	recordTime := time.Now()

	// Helper to add metrics
	add := func(name string, raw uint64, unit string, t metrics.MetricType, description string) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   queue.Namespace,
			Type:        t,
			Timestamp:   recordTime,
			Value: metrics.MetricValue{
				Raw:      raw,
				Unit:     unit,
				Interval: interval,
			},
		})
	}

	depth := queue.Metrics.Depth.Load()
	add("depth", depth, "count", metrics.Gauge, "Current number of lines waiting in the queue")
	add("byte_sum", queue.Metrics.Bytes.Load(), "bytes", metrics.Gauge, "Byte sum of all lines waiting in the queue")
	add("max_depth", queue.Metrics.MaxDepth.Swap(depth), "count", metrics.Gauge, "Highest queue depth seen in the interval")
	add("pushed", queue.Metrics.Pushed.Swap(0), "count", metrics.Counter, "Lines pushed in the interval")
	add("popped", queue.Metrics.Popped.Swap(0), "count", metrics.Counter, "Lines popped in the interval")
	add("pop_waits", queue.Metrics.PopWaits.Swap(0), "count", metrics.Counter, "Times the consumer waited on an empty queue in the interval")
	return
}
