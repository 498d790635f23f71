package event

import "sync"

// Queue is a per-agent FIFO of typed events. It is the one cross-thread shared surface between an
// agent's own tick goroutine and any other agent/engine goroutine that
// raises events at it.
//
// A plain mutex-guarded slice is used rather than a third-party queue
// library: the corpus's own concurrency primitives for in-process
// fan-in (golang.org/x/sync's errgroup/semaphore) solve pool scheduling,
// not single-producer-single-consumer FIFO ordering, and pulling in a
// lock-free queue package for this would add a dependency the rest of
// the engine never needs.
type Queue struct {
	mu     sync.Mutex
	items  []Event
	closed bool
}

// NewQueue constructs an empty Queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends ev to the tail of the queue. It is a no-op once Close has
// been called.
func (q *Queue) Push(ev Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, ev)
}

// PopAll atomically drains and returns every queued event in FIFO order,
// used by the agent tick loop to process a full backlog in one pass.
func (q *Queue) PopAll() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	drained := q.items
	q.items = nil
	return drained
}

// PushFront reinserts events at the head of the queue, preserving their
// relative order, ahead of anything already queued. Used to restore events
// that were held back while the agent was not RUNNING once it starts, so
// they are processed before newer traffic. A no-op once Close has been
// called.
func (q *Queue) PushFront(events []Event) {
	if len(events) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(events, q.items...)
}

// Len reports the number of currently queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close marks the queue closed; subsequent Push calls are dropped. Used
// during agent teardown to stop accepting new work while the executor
// drains to IDLE.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}
