package transport

import (
	"logpush/internal/metrics"
	"time"
)

func (channel *Channel) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	// Read and clear counters
	written := channel.Metrics.FramesWritten.Swap(0)
	sent := channel.Metrics.FramesSent.Swap(0)
	sentBytes := channel.Metrics.BytesSent.Swap(0)
	sendErrors := channel.Metrics.SendErrors.Swap(0)
	dialErrors := channel.Metrics.DialErrors.Swap(0)
	reconnects := channel.Metrics.Reconnects.Swap(0)
	highWaterHits := channel.Metrics.HighWaterHits.Swap(0)
	dropped := channel.Metrics.FramesDropped.Swap(0)

	// Point in time
	bufferedFrames := channel.Metrics.BufferedFrames.Load()
	bufferedBytes := channel.bufferedBytes.Load()

	recordTime := time.Now()

	counter := func(name, description, unit string, raw uint64) (metric metrics.Metric) {
		metric = metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   channel.Namespace,
			Value: metrics.MetricValue{
				Raw:      raw,
				Unit:     unit,
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		}
		return
	}
	gauge := func(name, description, unit string, raw uint64) (metric metrics.Metric) {
		metric = counter(name, description, unit, raw)
		metric.Type = metrics.Gauge
		return
	}

	collection = []metrics.Metric{
		counter("frames_written", "Frames accepted from the dispatcher", "count", written),
		counter("frames_sent", "Frames delivered to the sink", "count", sent),
		counter("bytes_sent", "Bytes delivered to the sink", "bytes", sentBytes),
		counter("send_errors", "Failed send attempts", "count", sendErrors),
		counter("dial_errors", "Failed reconnect attempts", "count", dialErrors),
		counter("reconnects", "Successful reconnects", "count", reconnects),
		counter("high_watermark_hits", "Writes that left the buffer above the high watermark", "count", highWaterHits),
		counter("frames_dropped", "Frames discarded at close", "count", dropped),
		gauge("buffered_frames", "Frames waiting to be sent", "count", bufferedFrames),
		gauge("buffered_bytes", "Bytes waiting to be sent", "bytes", bufferedBytes),
	}
	return
}
