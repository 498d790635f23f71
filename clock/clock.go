// Package clock provides the agent's monotonic internal clock and the
// min-heap of pending timer events it drives. Timers are keyed by the
// injected Clock's reading at submission plus duration, so a fake Clock
// can drive deterministic tests of the agent tick loop.
package clock

import (
	"container/heap"
	"time"

	"bdi.dev/engine/handle"
)

// Clock is the narrow time source the agent depends on. The production
// implementation wraps time.Now; tests substitute a manually-advanced
// fake to exercise timer firing deterministically without sleeping.
type Clock interface {
	Now() time.Time
}

// RealClock reports the wall-clock time.
type RealClock struct{}

// Now implements Clock.
func (RealClock) Now() time.Time { return time.Now() }

// FakeClock is a manually-advanced Clock for tests.
type FakeClock struct {
	current time.Time
}

// NewFakeClock constructs a FakeClock starting at t.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{current: t}
}

// Now implements Clock.
func (c *FakeClock) Now() time.Time { return c.current }

// Advance moves the fake clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

// Timer is one pending sleep, keyed by the Clock reading it was submitted
// at plus its requested duration.
type Timer struct {
	IntentionID handle.Handle
	TaskID      handle.Handle
	FireAt      time.Time

	index int // heap bookkeeping
}

// timerHeap implements container/heap.Interface ordered by FireAt.
type timerHeap []*Timer

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].FireAt.Before(h[j].FireAt) }
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// Queue is a per-agent min-heap of pending Timers.
type Queue struct {
	heap timerHeap
}

// NewQueue constructs an empty timer Queue.
func NewQueue() *Queue {
	q := &Queue{}
	heap.Init(&q.heap)
	return q
}

// Submit pushes a new Timer that will fire at now+d.
func (q *Queue) Submit(now time.Time, d time.Duration, intentionID, taskID handle.Handle) *Timer {
	t := &Timer{IntentionID: intentionID, TaskID: taskID, FireAt: now.Add(d)}
	heap.Push(&q.heap, t)
	return t
}

// Len reports the number of pending timers.
func (q *Queue) Len() int { return q.heap.Len() }

// DrainExpired pops and returns every timer whose FireAt has elapsed by
// now, in FireAt order.
func (q *Queue) DrainExpired(now time.Time) []*Timer {
	var fired []*Timer
	for q.heap.Len() > 0 && !q.heap[0].FireAt.After(now) {
		fired = append(fired, heap.Pop(&q.heap).(*Timer))
	}
	return fired
}

// Cancel removes a pending timer belonging to (intentionID, taskID).
// Reports whether a timer was found and removed.
func (q *Queue) Cancel(intentionID, taskID handle.Handle) bool {
	for i, t := range q.heap {
		if t.IntentionID.Equal(intentionID) && t.TaskID.Equal(taskID) {
			heap.Remove(&q.heap, i)
			return true
		}
	}
	return false
}
