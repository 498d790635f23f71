package event_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bdi.dev/engine/event"
	"bdi.dev/engine/handle"
	"bdi.dev/engine/message"
	"bdi.dev/engine/promise"
)

func TestEnvelopeRoutingRule(t *testing.T) {
	self := handle.New("agent-a")
	other := handle.New("agent-b")

	ev := event.NewControlEvent(self, event.ControlStart)
	require.False(t, event.Routed(ev, self))

	routedEnvelope := ev.Envelope.WithRecipient(other)
	routed := &event.ControlEvent{Envelope: routedEnvelope, Command: event.ControlStart}
	require.True(t, event.Routed(routed, self))
}

func TestMirrorsToBus(t *testing.T) {
	require.True(t, event.MirrorsToBus(event.Message))
	require.True(t, event.MirrorsToBus(event.Percept))
	require.True(t, event.MirrorsToBus(event.Pursue))
	require.True(t, event.MirrorsToBus(event.Drop))
	require.True(t, event.MirrorsToBus(event.ShareBeliefSet))
	require.False(t, event.MirrorsToBus(event.Action))
	require.False(t, event.MirrorsToBus(event.Timer))
}

func TestDirtyFlagPreempting(t *testing.T) {
	require.False(t, event.DirtyMessage.Preempting())
	require.False(t, (event.DirtyMessage | event.DirtyPercept).Preempting())
	require.True(t, event.DirtyGoalRemoved.Preempting())
	require.True(t, event.DirtyForce.Preempting())
	require.True(t, (event.DirtyMessage | event.DirtyMemberRemoved).Preempting())
}

func TestPursueEventPromiseSingleFire(t *testing.T) {
	caller := handle.New("caller")
	rec := message.NewRecordFromMap("greet.v1", map[string]any{"who": "world"})
	ev := event.NewPursueEvent(caller, "Greet", rec, false)
	require.Equal(t, event.Pursue, ev.Type())

	var got promise.Result
	ev.Promise.Then(func(r promise.Result) { got = r }, func(r promise.Result) { got = r })
	ev.Promise.Resolve(promise.Result{Status: promise.StatusSuccess})
	require.Equal(t, promise.StatusSuccess, got.Status)
}

func TestTimerEventFields(t *testing.T) {
	caller := handle.New("agent")
	intention := handle.New("intention")
	task := handle.New("task")
	ev := event.NewTimerEvent(caller, intention, task, 2*time.Second)
	require.Equal(t, event.Timer, ev.Type())
	require.Equal(t, 2*time.Second, ev.Duration)
	require.True(t, ev.IntentionID.Equal(intention))
	require.True(t, ev.TaskID.Equal(task))
}

func TestQueueFIFOOrder(t *testing.T) {
	q := event.NewQueue()
	caller := handle.New("agent")
	e1 := event.NewControlEvent(caller, event.ControlStart)
	e2 := event.NewControlEvent(caller, event.ControlStop)
	q.Push(e1)
	q.Push(e2)
	require.Equal(t, 2, q.Len())

	drained := q.PopAll()
	require.Len(t, drained, 2)
	require.Same(t, event.Event(e1), drained[0])
	require.Same(t, event.Event(e2), drained[1])
	require.Equal(t, 0, q.Len())
}

func TestQueueDropsAfterClose(t *testing.T) {
	q := event.NewQueue()
	q.Close()
	q.Push(event.NewControlEvent(handle.New("agent"), event.ControlStart))
	require.Equal(t, 0, q.Len())
}
