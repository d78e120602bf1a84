package stream

import (
	"sync"

	"github.com/comunica/comunica-sub013/internal/bindings"
)

// item is a queued row or a terminal error.
type item struct {
	row bindings.Bindings
	err error
}

// rowQueue is a thread-safe FIFO queue between a producing goroutine and a
// pulling consumer.
//
// The queue is unbounded so a producer draining a database cursor never
// blocks on a slow consumer while holding the connection.
//
// The queue uses a channel for signaling to enable context-aware waiting
// in Next (prevents goroutine hangs on context cancellation).
type rowQueue struct {
	mu     sync.Mutex
	items  []item
	closed bool
	signal chan struct{} // Signals item availability (buffered, size 1)
}

func newRowQueue() *rowQueue {
	return &rowQueue{
		items:  make([]item, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an item to the back of the queue.
// Returns false if the queue is closed.
func (q *rowQueue) Enqueue(it item) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.items = append(q.items, it)

	// Non-blocking: the buffer of 1 coalesces multiple signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes the front item without blocking.
func (q *rowQueue) TryDequeue() (item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return item{}, false
	}

	it := q.items[0]
	q.items[0] = item{} // release the row for GC

	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}

	return it, true
}

// Drained reports whether the queue is closed and empty.
func (q *rowQueue) Drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.items) == 0
}

// Wait returns a channel that signals when items may be available.
func (q *rowQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *rowQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close signals that no more items will be enqueued and wakes waiters.
func (q *rowQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}

// Discard closes the queue and drops anything still buffered.
func (q *rowQueue) Discard() {
	q.Close()
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()
}
