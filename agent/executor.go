package agent

import (
	"context"

	"bdi.dev/engine/bus"
	"bdi.dev/engine/event"
	"bdi.dev/engine/handle"
	"bdi.dev/engine/intention"
	"bdi.dev/engine/message"
	"bdi.dev/engine/model"
	"bdi.dev/engine/promise"
	"bdi.dev/engine/schedule"
)

// taskStatusOf maps a completed action's outcome onto the executor's
// tri-state task status. ActionPending never reaches here: a PENDING
// handler result leaves the task live in current_actions instead.
func taskStatusOf(status model.ActionStatus) intention.TaskStatus {
	if status == model.ActionSuccess {
		return intention.TaskSuccess
	}
	return intention.TaskFail
}

// startIntentions turns a finished schedule result into running
// intentions (spec §4.8 step 7): one Intention per non-delegated
// assignment, or a winner-bound delegation for assignments the scheduler
// routed to a team member.
func (a *Agent) startIntentions(ctx context.Context, assignments []schedule.Assignment) {
	for _, asn := range assignments {
		d, ok := a.desires[asn.Desire.Handle]
		if !ok {
			continue
		}
		if asn.Delegate.Valid() {
			a.startDelegatedExecution(ctx, d, asn.Delegate)
			continue
		}
		a.startIntention(ctx, d, asn)
	}
}

func (a *Agent) startIntention(ctx context.Context, d *desire, asn schedule.Assignment) {
	plan, ok := a.Registry.Plan(asn.PlanName)
	if !ok {
		a.finishDesire(ctx, d, promise.StatusFail, "plan "+asn.PlanName+" not found")
		return
	}
	for _, ru := range plan.ResourceUsage {
		a.Belief.LockResource(ru.Name)
	}
	in := intention.New(d.Handle, plan.Name, plan.Body, asn.Bindings, plan.ResourceUsage, d.ParentIntentionID, d.ParentTaskID)
	a.intentions[d.Handle] = in

	kind := bus.LogGoalStarted
	if d.ParentIntentionID.Valid() {
		kind = bus.LogSubGoalStarted
	}
	a.bdiLog(ctx, kind, bus.LevelNormal, d.Handle, "executing plan "+plan.Name)

	effects, terminal, result := in.Start(a.Belief)
	a.dispatchEffects(ctx, in, effects)
	if terminal {
		a.concludeIntention(ctx, d, in, result)
	}
}

// resolveTask feeds a completed leaf task's outcome back into its owning
// intention and processes whatever the executor does next.
func (a *Agent) resolveTask(ctx context.Context, intentionID, taskID handle.Handle, status intention.TaskStatus, result message.Message) {
	in, ok := a.intentions[intentionID]
	if !ok {
		a.Logger.Warn(ctx, "dead letter: no live intention for resolved task", "intention", intentionID.String(), "task", taskID.String())
		return
	}
	effects, terminal, presult := in.Resolve(taskID, status, a.Belief)
	a.dispatchEffects(ctx, in, effects)
	if terminal {
		d, ok := a.desires[intentionID]
		if ok {
			a.concludeIntention(ctx, d, in, presult)
		}
	}
}

// dispatchEffects turns newly-ready task-DAG leaves into concrete events,
// running locally-handled ones inline within this same tick.
func (a *Agent) dispatchEffects(ctx context.Context, in *intention.Intention, effects []intention.Effect) {
	for _, eff := range effects {
		switch e := eff.(type) {
		case intention.ActionEffect:
			a.handleAction(ctx, event.NewActionEvent(a.Handle, in.Handle, e.TaskID, e.Name, e.Bindings))
		case intention.SleepEffect:
			a.Timers.Submit(a.Clock.Now(), e.Duration, in.Handle, e.TaskID)
			a.bdiLog(ctx, bus.LogSleepStarted, bus.LevelNormal, in.Handle, "")
		case intention.SubGoalEffect:
			a.spawnSubGoal(ctx, in, e)
		}
	}
}

// spawnSubGoal pursues a child desire on behalf of a SubGoalTask and wires
// its promise back into resolveTask for the owning task.
func (a *Agent) spawnSubGoal(ctx context.Context, in *intention.Intention, e intention.SubGoalEffect) {
	ev := event.NewPursueEvent(a.Handle, e.Goal, e.Parameters, e.Persistent)
	ev.ParentIntentionID = in.Handle
	ev.ParentTaskID = e.TaskID
	a.handlePursue(ctx, ev)

	if _, ok := a.desires[ev.ID()]; ok {
		in.RecordSubIntention(e.TaskID, ev.ID())
	}

	intentionID, taskID := in.Handle, e.TaskID
	ev.Promise.Then(
		func(promise.Result) { a.resolveTask(ctx, intentionID, taskID, intention.TaskSuccess, nil) },
		func(promise.Result) { a.resolveTask(ctx, intentionID, taskID, intention.TaskFail, nil) },
	)
}

// concludeIntention runs the CONCLUDING phase for a terminal intention:
// unlock its resources, then either retry (FAIL, tactic permitting) or
// finish the owning desire (SUCCESS).
func (a *Agent) concludeIntention(ctx context.Context, d *desire, in *intention.Intention, result promise.Status) {
	for _, ru := range in.ResourceUsage {
		a.Belief.UnlockResource(ru.Name)
	}
	delete(a.intentions, d.Handle)

	if result == promise.StatusFail {
		d.FailedPlans[in.PlanName] = true
		d.RoundRobinStart++
		a.bdiLog(ctx, bus.LogActionFinished, bus.LevelNormal, d.Handle, "plan "+in.PlanName+" FAILed, will retry")
		a.markDirty(event.DirtyGoalAdded)
		return
	}

	a.finishDesire(ctx, d, promise.StatusSuccess, "")
}

// finishDesire concludes d with the given terminal status: logs
// GOAL_FINISHED/SUB_GOAL_FINISHED, resolves its promise, and either resets
// a persistent desire for its next auto-pursued cycle or removes it
// entirely.
func (a *Agent) finishDesire(ctx context.Context, d *desire, status promise.Status, reason string) {
	kind := bus.LogGoalFinished
	if d.ParentIntentionID.Valid() {
		kind = bus.LogSubGoalFinished
	}
	a.bdiLog(ctx, kind, bus.LevelNormal, d.Handle, string(status))

	if status == promise.StatusSuccess && d.Persistent {
		d.Promise.Resolve(promise.Result{Status: status, Reason: reason})
		d.Promise = promise.New()
		d.FailedPlans = map[string]bool{}
		d.RoundRobinStart = 0
		a.markDirty(event.DirtyGoalAdded)
		return
	}

	delete(a.desires, d.Handle)
	delete(a.intentions, d.Handle)
	a.Belief.ClearGoalContext()
	d.Promise.Resolve(promise.Result{Status: status, Reason: reason})
	a.markDirty(event.DirtyGoalRemoved)
}
