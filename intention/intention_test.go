package intention_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bdi.dev/engine/belief"
	"bdi.dev/engine/handle"
	"bdi.dev/engine/intention"
	"bdi.dev/engine/model"
	"bdi.dev/engine/promise"
)

func TestSingleActionCompletesOnResolve(t *testing.T) {
	bctx := belief.New()
	body := model.Action("SayHello")
	in := intention.New(handle.New("d1"), "P", body, model.Bindings{}, nil, handle.Handle{}, handle.Handle{})

	effects, terminal, _ := in.Start(bctx)
	require.False(t, terminal)
	require.Len(t, effects, 1)
	action, ok := effects[0].(intention.ActionEffect)
	require.True(t, ok)
	require.Equal(t, "SayHello", action.Name)
	require.Equal(t, intention.RunningTask, in.Mode)

	_, terminal, result := in.Resolve(action.TaskID, intention.TaskSuccess, bctx)
	require.True(t, terminal)
	require.Equal(t, promise.StatusSuccess, result)
	require.Equal(t, intention.Done, in.Status)
}

func TestSequenceFailsWithoutRunningLaterSteps(t *testing.T) {
	bctx := belief.New()
	body := model.Sequence(model.Action("A"), model.Action("B"))
	in := intention.New(handle.New("d1"), "P", body, model.Bindings{}, nil, handle.Handle{}, handle.Handle{})

	effects, _, _ := in.Start(bctx)
	require.Len(t, effects, 1)
	a := effects[0].(intention.ActionEffect)
	require.Equal(t, "A", a.Name)

	_, terminal, result := in.Resolve(a.TaskID, intention.TaskFail, bctx)
	require.True(t, terminal)
	require.Equal(t, promise.StatusFail, result)
}

func TestParallelWaitsForAllChildren(t *testing.T) {
	bctx := belief.New()
	body := model.Parallel(model.Action("A"), model.Action("B"))
	in := intention.New(handle.New("d1"), "P", body, model.Bindings{}, nil, handle.Handle{}, handle.Handle{})

	effects, _, _ := in.Start(bctx)
	require.Len(t, effects, 2)

	_, terminal, _ := in.Resolve(effects[0].TaskHandle(), intention.TaskSuccess, bctx)
	require.False(t, terminal)

	_, terminal, result := in.Resolve(effects[1].TaskHandle(), intention.TaskSuccess, bctx)
	require.True(t, terminal)
	require.Equal(t, promise.StatusSuccess, result)
}

func TestCondChoosesBranchByPredicate(t *testing.T) {
	bctx := belief.New()
	body := model.Cond(func(model.BeliefView, model.Bindings) bool { return false },
		model.Action("ThenAction"), model.Action("ElseAction"))
	in := intention.New(handle.New("d1"), "P", body, model.Bindings{}, nil, handle.Handle{}, handle.Handle{})

	effects, _, _ := in.Start(bctx)
	require.Len(t, effects, 1)
	require.Equal(t, "ElseAction", effects[0].(intention.ActionEffect).Name)
}

func TestSleepEmitsSleepEffect(t *testing.T) {
	bctx := belief.New()
	body := model.Sleep(5 * time.Second)
	in := intention.New(handle.New("d1"), "P", body, model.Bindings{}, nil, handle.Handle{}, handle.Handle{})

	effects, terminal, _ := in.Start(bctx)
	require.False(t, terminal)
	require.Len(t, effects, 1)
	sleep, ok := effects[0].(intention.SleepEffect)
	require.True(t, ok)
	require.Equal(t, 5*time.Second, sleep.Duration)
}

func TestDropDFSVisitsSubIntentionsBeforeTarget(t *testing.T) {
	bctx := belief.New()
	child := intention.New(handle.New("child"), "P", model.Action("A"), model.Bindings{}, nil, handle.Handle{}, handle.Handle{})
	parentBody := model.PursueSubGoal("Child", nil)
	parent := intention.New(handle.New("parent"), "P", parentBody, model.Bindings{}, nil, handle.Handle{}, handle.Handle{})
	effects, _, _ := parent.Start(bctx)
	require.Len(t, effects, 1)
	sub := effects[0].(intention.SubGoalEffect)
	parent.RecordSubIntention(sub.TaskID, child.Handle)

	var droppedOrder []handle.Handle
	deps := intention.DropDeps{
		Lookup: func(d handle.Handle) (*intention.Intention, bool) {
			if d.Equal(child.Handle) {
				return child, true
			}
			if d.Equal(parent.Handle) {
				return parent, true
			}
			return nil, false
		},
		FinishOrphan: func(d handle.Handle) { droppedOrder = append(droppedOrder, d) },
		FinishDesire: func(d handle.Handle) { droppedOrder = append(droppedOrder, d) },
	}

	ok := intention.Drop(parent.Handle, false, deps)
	require.True(t, ok)
	require.Equal(t, intention.Dropping, child.Status)
	require.Equal(t, intention.Dropping, parent.Status)
	require.Equal(t, []handle.Handle{child.Handle, parent.Handle}, droppedOrder)
}
