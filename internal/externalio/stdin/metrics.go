package stdin

import (
	"logpush/internal/metrics"
	"time"
)

func (source *EpollSource) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	collection = collect(source.Namespace, source.Metrics, interval)
	return
}

func (source *ReaderSource) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	collection = collect(source.Namespace, source.Metrics, interval)
	return
}

func collect(namespace []string, storage *MetricStorage, interval time.Duration) (collection []metrics.Metric) {
	// Read and clear
	linesRead := storage.LinesRead.Swap(0)
	bytesRead := storage.BytesRead.Swap(0)
	polls := storage.Polls.Swap(0)
	emptyPolls := storage.EmptyPolls.Swap(0)

	recordTime := time.Now()

	collection = []metrics.Metric{
		{
			Name:        "lines_read",
			Description: "Complete lines read from input in the interval",
			Namespace:   namespace,
			Value: metrics.MetricValue{
				Raw:      linesRead,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
		{
			Name:        "bytes_read",
			Description: "Raw bytes read from input in the interval",
			Namespace:   namespace,
			Value: metrics.MetricValue{
				Raw:      bytesRead,
				Unit:     "bytes",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
		{
			Name:        "polls",
			Description: "Poll calls made in the interval",
			Namespace:   namespace,
			Value: metrics.MetricValue{
				Raw:      polls,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
		{
			Name:        "empty_polls",
			Description: "Polls that timed out without a complete line",
			Namespace:   namespace,
			Value: metrics.MetricValue{
				Raw:      emptyPolls,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
	}
	return
}
