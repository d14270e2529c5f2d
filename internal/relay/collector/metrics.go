package collector

import (
	"logpush/internal/metrics"
	"time"
)

func (instance *Instance) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	// Read and clear
	queued := instance.Metrics.LinesQueued.Swap(0)
	empty := instance.Metrics.EmptyPolls.Swap(0)

	recordTime := time.Now()

	collection = []metrics.Metric{
		{
			Name:        "lines_queued",
			Description: "Lines pushed to the pending queue in the interval",
			Namespace:   instance.Namespace,
			Value: metrics.MetricValue{
				Raw:      queued,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
		{
			Name:        "empty_polls",
			Description: "Polls without input in the interval",
			Namespace:   instance.Namespace,
			Value: metrics.MetricValue{
				Raw:      empty,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
	}
	return
}
