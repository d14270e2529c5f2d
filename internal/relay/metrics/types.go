package metrics

import (
	"logpush/internal/metrics"
	"sync"
	"sync/atomic"
	"time"
)

// Any relay component exposing interval counters
type Collector interface {
	CollectMetrics(interval time.Duration) (collection []metrics.Metric)
}

type Gatherer struct {
	Interval  time.Duration     // Polling interval to gather metrics at
	Retention time.Duration     // Maximum time to maintain metrics for
	Registry  *metrics.Registry // Storage for metric data

	mu         sync.Mutex
	collectors []Collector

	queueBytes   *atomic.Uint64       // pending queue byte size
	freeMemory   func() (free uint64) // system free memory source
	memoryWarned atomic.Bool
}
