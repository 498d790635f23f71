package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bdi.dev/engine/clock"
	"bdi.dev/engine/handle"
)

func TestQueueFiresInOrder(t *testing.T) {
	start := time.Unix(0, 0)
	fc := clock.NewFakeClock(start)
	q := clock.NewQueue()

	intention := handle.New("i")
	taskA := handle.New("a")
	taskB := handle.New("b")

	q.Submit(fc.Now(), 5*time.Second, intention, taskA)
	q.Submit(fc.Now(), 2*time.Second, intention, taskB)
	require.Equal(t, 2, q.Len())

	fc.Advance(3 * time.Second)
	fired := q.DrainExpired(fc.Now())
	require.Len(t, fired, 1)
	require.True(t, fired[0].TaskID.Equal(taskB))
	require.Equal(t, 1, q.Len())

	fc.Advance(3 * time.Second)
	fired = q.DrainExpired(fc.Now())
	require.Len(t, fired, 1)
	require.True(t, fired[0].TaskID.Equal(taskA))
	require.Equal(t, 0, q.Len())
}

func TestCancelRemovesPendingTimer(t *testing.T) {
	start := time.Unix(0, 0)
	q := clock.NewQueue()
	intention := handle.New("i")
	task := handle.New("t")
	q.Submit(start, time.Second, intention, task)

	require.True(t, q.Cancel(intention, task))
	require.Equal(t, 0, q.Len())
	require.False(t, q.Cancel(intention, task))
}
