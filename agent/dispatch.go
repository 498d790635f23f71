package agent

import (
	"context"

	"bdi.dev/engine/bus"
	"bdi.dev/engine/event"
	"bdi.dev/engine/handle"
)

// markDirty ORs flags into the scheduler's re-planning bitset.
func (a *Agent) markDirty(flags event.DirtyFlag) {
	a.scheduleDirty |= flags
}

// dispatch drains the event queue and runs every event's per-type contract
// (spec §4.1). It is the sole mutator of agent state, called once per Tick
// from the single goroutine currently driving this agent.
func (a *Agent) dispatch(ctx context.Context) {
	events := a.queue.PopAll()
	for _, ev := range events {
		if event.Routed(ev, a.Handle) {
			a.forward(ev)
			continue
		}

		if ev.Type() != event.Control && a.state != Running {
			a.backlogCount++
			a.backlogged = append(a.backlogged, ev)
			continue
		}

		a.mirror(ctx, ev)
		a.handle(ctx, ev)
	}
}

// forward rewrites caller to self and routes ev onward, per the routing
// rule: no further local processing happens for a misaddressed event.
func (a *Agent) forward(ev event.Event) {
	if a.Router == nil {
		return
	}
	switch e := ev.(type) {
	case *event.ActionEvent:
		a.Router.Route(&event.ActionEvent{Envelope: e.Envelope.WithCaller(a.Handle), IntentionID: e.IntentionID, TaskID: e.TaskID, ActionName: e.ActionName, Bindings: e.Bindings})
	case *event.DelegationEvent:
		a.Router.Route(&event.DelegationEvent{Envelope: e.Envelope.WithCaller(a.Handle), Analyse: e.Analyse, ScheduleID: e.ScheduleID, Goal: e.Goal, Parameters: e.Parameters, Promise: e.Promise})
	case *event.MessageEvent:
		a.Router.Route(&event.MessageEvent{Envelope: e.Envelope.WithCaller(a.Handle), Msg: e.Msg, DeprecatedDirect: e.DeprecatedDirect})
	case *event.ShareBeliefSetEvent:
		a.Router.Route(&event.ShareBeliefSetEvent{Envelope: e.Envelope.WithCaller(a.Handle), Schema: e.Schema, Owner: e.Owner, Msg: e.Msg, UpdatedAt: e.UpdatedAt})
	case *event.PursueEvent:
		cp := *e
		cp.Envelope = cp.Envelope.WithCaller(a.Handle)
		a.Router.Route(&cp)
	default:
		a.Router.Route(ev)
	}
}

// mirror implements the bus-mirroring rule: MESSAGE/PERCEPT/PURSUE/DROP/
// SHARE_BELIEFSET always mirror; ACTION mirrors only when handled locally
// (decided by the caller, not here); everything else follows
// BroadcastToBus explicitly.
func (a *Agent) mirror(ctx context.Context, ev event.Event) {
	if !event.MirrorsToBus(ev.Type()) && !ev.BroadcastToBus() {
		return
	}
	switch e := ev.(type) {
	case *event.MessageEvent:
		a.publish(ctx, bus.MessagePayload{SchemaName: e.Msg.SchemaName()}, handle.Handle{})
	case *event.PerceptEvent:
		a.publish(ctx, bus.PerceptPayload{Field: e.Field, IsResource: e.IsResource, ResourceDelta: e.ResourceDelta}, handle.Handle{})
	case *event.PursueEvent:
		// Mirrored implicitly via the GoalStarted/SubGoalStarted BDILog
		// emitted once the desire is actually instantiated.
	case *event.DropEvent:
		a.publish(ctx, bus.DropPayload{Target: e.Target, Reason: e.Reason()}, handle.Handle{})
	case *event.ShareBeliefSetEvent:
		a.publish(ctx, bus.MessagePayload{SchemaName: e.Schema}, handle.Handle{})
	}
}

func (a *Agent) handle(ctx context.Context, ev event.Event) {
	switch e := ev.(type) {
	case *event.TimerEvent:
		a.Timers.Submit(a.Clock.Now(), e.Duration, e.IntentionID, e.TaskID)
		a.bdiLog(ctx, bus.LogSleepStarted, bus.LevelNormal, e.IntentionID, "")
	case *event.ControlEvent:
		a.handleControl(ctx, e)
	case *event.MessageEvent:
		a.handleMessage(ctx, e)
	case *event.TacticEvent:
		a.handleTactic(e)
	case *event.ActionEvent:
		a.handleAction(ctx, e)
	case *event.ActionCompleteEvent:
		a.handleActionComplete(ctx, e)
	case *event.PerceptEvent:
		a.handlePercept(e)
	case *event.PursueEvent:
		a.handlePursue(ctx, e)
	case *event.DropEvent:
		a.handleDrop(ctx, e)
	case *event.ScheduleEvent:
		a.markDirty(e.Dirty)
	case *event.AuctionEvent:
		a.handleAuction(e)
	case *event.DelegationEvent:
		a.handleDelegation(ctx, e)
	case *event.ShareBeliefSetEvent:
		a.handleShareBeliefSet(e)
	case *event.RegisterEvent:
		if a.Router != nil {
			a.Router.Route(e)
		}
	}
}

func (a *Agent) handleControl(ctx context.Context, e *event.ControlEvent) {
	switch e.Command {
	case event.ControlStart:
		if a.state == Created || a.state == Stopped {
			a.state = Running
			a.backlogCount = 0
			a.backlogWarned = false
			if len(a.backlogged) > 0 {
				a.queue.PushFront(a.backlogged)
				a.backlogged = nil
			}
			a.markDirty(event.DirtyAgentStarted)
		}
	case event.ControlResume:
		if a.state == Paused {
			a.state = Running
			a.backlogCount = 0
			a.backlogWarned = false
			if len(a.backlogged) > 0 {
				a.queue.PushFront(a.backlogged)
				a.backlogged = nil
			}
		}
	case event.ControlPause:
		if a.state == Running {
			a.state = Paused
		}
	case event.ControlStop:
		if a.state != Stopped && a.state != Stopping {
			a.state = Stopping
			a.stopExecutor(ctx)
		}
	}
}

func (a *Agent) handleMessage(ctx context.Context, e *event.MessageEvent) {
	if e.DeprecatedDirect {
		if h, ok := a.Template.MessageHandlers[e.Msg.SchemaName()]; ok {
			h(a.newActionContext(ctx, nil), e.Msg)
			return
		}
	}
	a.Belief.AddMessage(a.Clock.Now(), e.Msg)
	a.markDirty(event.DirtyMessage)
}

func (a *Agent) handleTactic(e *event.TacticEvent) {
	a.activeTactics[e.Goal] = e.Tactic
	for _, d := range a.desires {
		if d.TemplateName() == e.Goal {
			d.FailedPlans = map[string]bool{}
			d.RoundRobinStart = 0
		}
	}
	a.markDirty(event.DirtyTacticsChanged)
}

func (a *Agent) handlePercept(e *event.PerceptEvent) {
	now := a.Clock.Now()
	if e.IsResource {
		if !a.Belief.ApplyResourceDelta(e.Field, e.ResourceDelta) {
			return
		}
	} else if e.Msg != nil {
		a.Belief.AddMessage(now, e.Msg)
	}
	a.Belief.MarkPerceptDirty(now)
	a.markDirty(event.DirtyPercept)
}

func (a *Agent) handleShareBeliefSet(e *event.ShareBeliefSetEvent) {
	if a.Belief.UpsertShared(e.Schema, e.Owner, e.Msg, e.UpdatedAt) {
		a.markDirty(event.DirtyPercept)
	}
}
