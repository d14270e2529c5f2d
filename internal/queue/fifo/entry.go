// Unbounded FIFO shared between one producer and one consumer task
package fifo

import (
	"context"
	"logpush/internal/atomics"
	"logpush/internal/global"
)

// Creates a new empty queue
func New[T any](namespace []string) (new *Queue[T]) {
	new = &Queue[T]{
		Namespace: append(append([]string(nil), namespace...), global.NSQueue),
		notEmpty:  make(chan struct{}, 1),
		Metrics:   &MetricStorage{},
	}
	return
}

// Appends value to the tail. Size is the byte weight recorded in metrics.
func (queue *Queue[T]) Push(value T, size int) {
	queue.mu.Lock()
	queue.items = append(queue.items, entry[T]{value: value, size: size})
	depth := uint64(len(queue.items))
	queue.Metrics.Depth.Store(depth)
	queue.mu.Unlock()

	queue.Metrics.Pushed.Add(1)
	queue.Metrics.Bytes.Add(uint64(size))
	atomics.StoreMax(&queue.Metrics.MaxDepth, depth)

	// notify blocked consumer, non-blocking
	select {
	case queue.notEmpty <- struct{}{}:
	default:
	}
}

// Removes the head entry if one is present
func (queue *Queue[T]) TryPop() (out T, success bool) {
	queue.mu.Lock()
	if len(queue.items) == 0 {
		queue.mu.Unlock()
		return
	}

	head := queue.items[0]
	queue.items[0] = entry[T]{} // release reference held by backing array
	queue.items = queue.items[1:]
	depth := uint64(len(queue.items))
	if depth == 0 {
		queue.items = nil // let the backing array go
	}
	queue.Metrics.Depth.Store(depth)
	queue.mu.Unlock()

	queue.Metrics.Popped.Add(1)
	atomics.Subtract(&queue.Metrics.Bytes, uint64(head.size), 4)

	out = head.value
	success = true
	return
}

// Removes the head entry, waiting while the queue is empty.
// Returns false when ctx is cancelled or abort is closed before an entry arrives.
func (queue *Queue[T]) Pop(ctx context.Context, abort <-chan struct{}) (out T, success bool) {
	for {
		out, success = queue.TryPop()
		if success {
			return
		}

		queue.Metrics.PopWaits.Add(1)
		select {
		case <-ctx.Done():
			return
		case <-abort:
			// Entry may have raced in right before abort
			out, success = queue.TryPop()
			return
		case <-queue.notEmpty:
		}
	}
}

// Current number of entries
func (queue *Queue[T]) Len() (depth int) {
	queue.mu.Lock()
	defer queue.mu.Unlock()
	depth = len(queue.items)
	return
}

// Reports whether the queue holds no entries
func (queue *Queue[T]) Empty() (empty bool) {
	empty = queue.Len() == 0
	return
}
