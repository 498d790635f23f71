package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bdi.dev/engine/agent"
	"bdi.dev/engine/engine"
	"bdi.dev/engine/event"
	"bdi.dev/engine/handle"
	"bdi.dev/engine/message"
	"bdi.dev/engine/model"
)

// These mirror the literal end-to-end scenarios of spec §8, as automated
// assertions rather than the printed snapshots cmd/demo drives them as.

func pollN(ctx context.Context, eng *engine.Engine, n int, step time.Duration) engine.PollStats {
	var stats engine.PollStats
	for i := 0; i < n; i++ {
		stats = eng.Poll(ctx, step)
	}
	return stats
}

func mustCommit[T any](t *testing.T, v T, err error) T {
	t.Helper()
	require.NoError(t, err)
	return v
}

// Scenario 1: StartStop.
func TestScenarioStartStop(t *testing.T) {
	ctx := context.Background()
	reg := model.NewRegistry()

	count := 0
	mustCommit(t, reg.NewAction("Plan1Action", func(ac model.ActionContext) model.ActionStatus {
		count++
		return model.ActionSuccess
	}).Commit())
	mustCommit(t, reg.NewGoal("Goal1").Commit())
	mustCommit(t, reg.NewPlan("Plan1").Handles("Goal1").Body(model.Action("Plan1Action")).Commit())
	mustCommit(t, reg.NewTemplate("StartStopAgent").
		Plans("Plan1").
		HandleAction("Plan1Action").
		Commit())
	reg.Commit()

	eng := engine.New(engine.Options{Registry: reg})
	a := eng.CreateAgent("StartStopAgent", "agent1", handle.Handle{})
	require.NotNil(t, a)

	a.Pursue("Goal1", true, nil, handle.Handle{})
	pollN(ctx, eng, 100, time.Millisecond)
	require.Equal(t, 0, count, "no plan runs before start()")

	a.Start()
	pollN(ctx, eng, 100, time.Millisecond)
	require.GreaterOrEqual(t, count, 1, "plan runs once started")
}

// Scenario 2: PlanSwitch.
func TestScenarioPlanSwitch(t *testing.T) {
	ctx := context.Background()
	reg := model.NewRegistry()

	switchPlans := false
	var planARan, planBRan bool
	var a *agent.Agent

	mustCommit(t, reg.NewAction("ActionA", func(ac model.ActionContext) model.ActionStatus {
		planARan = true
		switchPlans = true
		ac.ForceReschedule()
		return model.ActionSuccess
	}).Commit())
	mustCommit(t, reg.NewAction("ActionB", func(ac model.ActionContext) model.ActionStatus {
		planBRan = true
		if a != nil {
			a.Stop()
		}
		return model.ActionSuccess
	}).Commit())

	mustCommit(t, reg.NewGoal("SwitchGoal").Commit())
	mustCommit(t, reg.NewPlan("PlanA").
		Handles("SwitchGoal").
		Pre(func(proj *model.Projection, b model.Bindings) bool { return !switchPlans }).
		Body(model.Action("ActionA")).
		Commit())
	mustCommit(t, reg.NewPlan("PlanB").
		Handles("SwitchGoal").
		Pre(func(proj *model.Projection, b model.Bindings) bool { return switchPlans }).
		Body(model.Action("ActionB")).
		Commit())
	mustCommit(t, reg.NewTemplate("PlanSwitchAgent").
		Plans("PlanA", "PlanB").
		HandleAction("ActionA").
		HandleAction("ActionB").
		Commit())
	reg.Commit()

	eng := engine.New(engine.Options{Registry: reg})
	a = eng.CreateAgent("PlanSwitchAgent", "switcher", handle.Handle{})

	a.Pursue("SwitchGoal", true, nil, handle.Handle{})
	a.Start()
	pollN(ctx, eng, 200, time.Millisecond)

	require.True(t, planARan, "plan A should have run first")
	require.True(t, planBRan, "plan B should have run after the forced reschedule")
}

// Scenario 3: reject a goal with no plans and no delegates.
func TestScenarioRejectNoPlans(t *testing.T) {
	ctx := context.Background()
	reg := model.NewRegistry()

	mustCommit(t, reg.NewGoal("Goal").Commit())
	mustCommit(t, reg.NewTemplate("NoPlansAgent").Commit())
	reg.Commit()

	eng := engine.New(engine.Options{Registry: reg})
	a := eng.CreateAgent("NoPlansAgent", "hopeless", handle.Handle{})
	a.Start()
	a.Pursue("Goal", false, nil, handle.Handle{})

	pollN(ctx, eng, 32, time.Millisecond)
	require.Empty(t, a.Desires())
}

// Scenario 4: PingPong, two agents volleying messages through the legacy
// direct-handler path until the shared count passes 5.
func TestScenarioPingPong(t *testing.T) {
	ctx := context.Background()
	reg := model.NewRegistry()
	eng := engine.New(engine.Options{Registry: reg})

	var bob, sue *agent.Agent
	var countLast int

	send := func(from, to handle.Handle, schema string, count int) {
		msg := message.NewRecordFromMap(schema, map[string]any{"count": count})
		ev := event.NewMessageEvent(from, msg, true)
		ev.Envelope = ev.Envelope.WithRecipient(to)
		eng.Route(ev)
	}

	intField := func(msg message.Message) int {
		v, _ := msg.Get("count")
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		default:
			return 0
		}
	}

	onPing := func(ac model.ActionContext, msg message.Message) {
		countLast = intField(msg)
		if countLast > 5 {
			bob.Stop()
			sue.Stop()
			return
		}
		send(sue.Handle, bob.Handle, "pong.v1", countLast+1)
	}
	onPong := func(ac model.ActionContext, msg message.Message) {
		countLast = intField(msg)
		if countLast > 5 {
			bob.Stop()
			sue.Stop()
			return
		}
		send(bob.Handle, sue.Handle, "ping.v1", countLast+1)
	}

	mustCommit(t, reg.NewTemplate("PingAgent").
		HandleMessage("pong.v1", onPong).
		Commit())
	mustCommit(t, reg.NewTemplate("PongAgent").
		HandleMessage("ping.v1", onPing).
		Commit())
	reg.Commit()

	bob = eng.CreateAgent("PingAgent", "bob", handle.Handle{})
	sue = eng.CreateAgent("PongAgent", "sue", handle.Handle{})
	bob.Start()
	sue.Start()

	send(bob.Handle, sue.Handle, "ping.v1", 1)

	pollN(ctx, eng, 200, time.Millisecond)

	require.Equal(t, agent.Stopped, bob.State())
	require.Equal(t, agent.Stopped, sue.State())
	require.GreaterOrEqual(t, countLast, 6)
}

// Scenario 5: creating an agent from an unknown template refuses start().
func TestScenarioUnknownTemplate(t *testing.T) {
	eng := engine.New(engine.Options{})
	a := eng.CreateAgent("UnknownTemplate", "ghost", handle.Handle{})
	require.Nil(t, a)

	err := eng.Start(time.Millisecond)
	require.Error(t, err)
	require.NotEqual(t, 0, eng.GetStatus())
}

// Scenario 6: AttachService routes an unhandled action to the attached
// service, detach leaves it unhandled, and force-attach replaces.
func TestScenarioAttachService(t *testing.T) {
	ctx := context.Background()
	reg := model.NewRegistry()

	var ranOn []handle.Handle
	mustCommit(t, reg.NewAction("DoWork", func(ac model.ActionContext) model.ActionStatus {
		ranOn = append(ranOn, ac.Self())
		return model.ActionSuccess
	}).Commit())

	mustCommit(t, reg.NewGoal("WorkGoal").Commit())
	mustCommit(t, reg.NewPlan("WorkPlan").
		Handles("WorkGoal").
		Pre(func(proj *model.Projection, b model.Bindings) bool { return true }).
		Body(model.Action("DoWork")).
		Commit())

	mustCommit(t, reg.NewTemplate("Requester").
		Plans("WorkPlan").
		Commit())
	mustCommit(t, reg.NewService("Worker").
		HandleAction("DoWork").
		Commit())
	reg.Commit()

	eng := engine.New(engine.Options{Registry: reg})
	requester := eng.CreateAgent("Requester", "req", handle.Handle{})
	svcA := eng.CreateAgent("Worker", "svcA", handle.Handle{})
	svcB := eng.CreateAgent("Worker", "svcB", handle.Handle{})
	requester.Start()
	svcA.Start()
	svcB.Start()

	pursue := func() {
		requester.Pursue("WorkGoal", false, nil, handle.Handle{})
		pollN(ctx, eng, 50, time.Millisecond)
	}

	requester.AttachService(svcA.Handle, "Worker", false)
	pursue()
	require.Len(t, ranOn, 1)
	require.True(t, ranOn[len(ranOn)-1].Equal(svcA.Handle))

	requester.DetachService("Worker")
	pursue()
	require.Len(t, ranOn, 1, "unhandled after detach, no new invocation")

	requester.AttachService(svcB.Handle, "Worker", false)
	pursue()
	require.Len(t, ranOn, 2)
	require.True(t, ranOn[len(ranOn)-1].Equal(svcB.Handle))

	requester.AttachService(svcA.Handle, "Worker", true)
	pursue()
	require.Len(t, ranOn, 3)
	require.True(t, ranOn[len(ranOn)-1].Equal(svcA.Handle))
}

// Stop() forces an in-flight sleep to conclude immediately rather than
// waiting for its timer, and leaves the agent with no desires or
// intentions once STOPPED.
func TestScenarioStopDrainsInFlightSleep(t *testing.T) {
	ctx := context.Background()
	reg := model.NewRegistry()

	actionRan := false
	mustCommit(t, reg.NewAction("Plan1Action", func(ac model.ActionContext) model.ActionStatus {
		actionRan = true
		return model.ActionSuccess
	}).Commit())
	mustCommit(t, reg.NewGoal("Goal1").Commit())
	mustCommit(t, reg.NewPlan("Plan1").
		Handles("Goal1").
		Body(model.Sequence(model.Sleep(time.Hour), model.Action("Plan1Action"))).
		Commit())
	mustCommit(t, reg.NewTemplate("SleepyAgent").
		Plans("Plan1").
		HandleAction("Plan1Action").
		Commit())
	reg.Commit()

	eng := engine.New(engine.Options{Registry: reg})
	a := eng.CreateAgent("SleepyAgent", "sleeper", handle.Handle{})
	a.Start()
	a.Pursue("Goal1", true, nil, handle.Handle{})
	pollN(ctx, eng, 10, time.Millisecond)
	require.True(t, a.Executing(), "should be mid-sleep, blocked on the timer")

	a.Stop()
	pollN(ctx, eng, 10, time.Millisecond)

	require.Equal(t, agent.Stopped, a.State())
	require.Empty(t, a.Desires())
	require.Empty(t, a.Intentions())
	require.False(t, actionRan, "the sleep never fires once the agent is stopping")
}

// A tactic with two plans under PolicyExclude retries onto the second plan
// once the first FAILs, invoking each plan's action exactly once.
func TestScenarioTacticRetriesAfterFailedPlan(t *testing.T) {
	ctx := context.Background()
	reg := model.NewRegistry()

	var countA, countB int
	mustCommit(t, reg.NewAction("ActionA", func(ac model.ActionContext) model.ActionStatus {
		countA++
		return model.ActionFail
	}).Commit())
	mustCommit(t, reg.NewAction("ActionB", func(ac model.ActionContext) model.ActionStatus {
		countB++
		return model.ActionSuccess
	}).Commit())
	mustCommit(t, reg.NewGoal("RetryGoal").Commit())
	mustCommit(t, reg.NewPlan("PlanA").Handles("RetryGoal").Body(model.Action("ActionA")).Commit())
	mustCommit(t, reg.NewPlan("PlanB").Handles("RetryGoal").Body(model.Action("ActionB")).Commit())
	mustCommit(t, reg.NewTactic("RetryTactic").
		Goal("RetryGoal").
		Plans("PlanA", "PlanB").
		Policy(model.PolicyExclude).
		Commit())
	mustCommit(t, reg.NewTemplate("RetryAgent").
		Plans("PlanA", "PlanB").
		HandleAction("ActionA").
		HandleAction("ActionB").
		Commit())
	reg.Commit()

	eng := engine.New(engine.Options{Registry: reg})
	a := eng.CreateAgent("RetryAgent", "retrier", handle.Handle{})
	require.NoError(t, a.SelectTactic("RetryTactic"))
	a.Start()
	a.Pursue("RetryGoal", false, nil, handle.Handle{})

	pollN(ctx, eng, 50, time.Millisecond)

	require.Equal(t, 1, countA)
	require.Equal(t, 1, countB)
	require.Empty(t, a.Desires())
}

// Scenario 7: the same non-persistent goal pursued 1000 times yields
// exactly 1000 action invocations and an empty desire set at idle.
func TestScenarioPerform1kGoals(t *testing.T) {
	ctx := context.Background()
	reg := model.NewRegistry()

	count := 0
	mustCommit(t, reg.NewAction("BumpAction", func(ac model.ActionContext) model.ActionStatus {
		count++
		return model.ActionSuccess
	}).Commit())
	mustCommit(t, reg.NewGoal("BumpGoal").Commit())
	mustCommit(t, reg.NewPlan("BumpPlan").Handles("BumpGoal").Body(model.Action("BumpAction")).Commit())
	mustCommit(t, reg.NewTemplate("BumpAgent").
		Plans("BumpPlan").
		HandleAction("BumpAction").
		Commit())
	reg.Commit()

	eng := engine.New(engine.Options{Registry: reg})
	a := eng.CreateAgent("BumpAgent", "bumper", handle.Handle{})
	a.Start()

	const n = 1000
	for i := 0; i < n; i++ {
		a.Pursue("BumpGoal", false, nil, handle.Handle{})
	}

	eng.Execute(ctx, 10000)
	require.Equal(t, n, count)
	require.Empty(t, a.Desires())
}
