package fifo

import (
	"sync"
	"sync/atomic"
)

type entry[T any] struct {
	value T
	size  int
}

// Unbounded first-in first-out queue.
// Push never blocks; Pop blocks until an entry, cancellation or abort.
type Queue[T any] struct {
	Namespace []string
	mu        sync.Mutex
	items     []entry[T]
	notEmpty  chan struct{} // Capacity 1, wakes a parked consumer
	Metrics   *MetricStorage
}

type MetricStorage struct {
	Depth    atomic.Uint64 // Current items in queue
	Bytes    atomic.Uint64 // Current byte size in queue (just data)
	MaxDepth atomic.Uint64 // Highest depth seen in the interval

	Pushed   atomic.Uint64 // every Push call
	Popped   atomic.Uint64 // every successful Pop
	PopWaits atomic.Uint64 // times a consumer parked on an empty queue
}
