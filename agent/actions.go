package agent

import (
	"context"

	"bdi.dev/engine/bus"
	"bdi.dev/engine/event"
	"bdi.dev/engine/handle"
	"bdi.dev/engine/message"
	"bdi.dev/engine/model"
	"bdi.dev/engine/telemetry"
)

// actionContext implements model.ActionContext for one running action
// invocation.
type actionContext struct {
	context.Context
	agent    *Agent
	bindings model.Bindings
	taskID   handle.Handle
}

func (a *Agent) newActionContext(ctx context.Context, bindings model.Bindings) *actionContext {
	return &actionContext{Context: ctx, agent: a, bindings: bindings}
}

func (c *actionContext) Self() handle.Handle      { return c.agent.Handle }
func (c *actionContext) Bindings() model.Bindings { return c.bindings }
func (c *actionContext) Belief() model.BeliefView { return c.agent.Belief }

func (c *actionContext) SetMessage(msg message.Message) {
	c.agent.Belief.AddMessage(c.agent.Clock.Now(), msg)
}

func (c *actionContext) Logger() telemetry.Logger { return c.agent.Logger }

func (c *actionContext) Resolve(status model.ActionStatus, result message.Message) {
	c.agent.resolveCurrentAction(context.Background(), c.taskID, status, result)
}

func (c *actionContext) ForceReschedule() {
	c.agent.markDirty(event.DirtyForce)
}

// handleAction implements spec §4.1 ACTION: if the named action is
// registered on this agent's template, lock its declared resources and
// invoke the handler inline; PENDING leaves it live in current_actions.
// Otherwise forward it to an attached service agent for dispatch. A
// service owns completion for an action it ran on a requester's behalf:
// it replies with ACTION_COMPLETE addressed to e.Caller() instead of
// resolving its own (nonexistent) intention, per spec §4.1's "if
// forwarded to a service the service owns the mirror" — the same holds
// for the completion notice.
func (a *Agent) handleAction(ctx context.Context, e *event.ActionEvent) {
	act, ok := a.Template.Actions[e.ActionName]
	if !ok {
		svc, attached := a.anyAttachedService()
		if attached && a.Router != nil {
			a.Router.Route(&event.ActionEvent{
				Envelope:    e.Envelope.WithRecipient(svc).WithCaller(e.Caller()),
				IntentionID: e.IntentionID,
				TaskID:      e.TaskID,
				ActionName:  e.ActionName,
				Bindings:    e.Bindings,
			})
			return
		}
		a.completeAction(ctx, e.Caller(), e.IntentionID, e.TaskID, model.ActionFail, nil)
		return
	}

	var usage []model.ResourceUsage
	if in, ok := a.intentions[e.IntentionID]; ok {
		usage = in.ResourceUsage
	}
	for _, ru := range usage {
		a.Belief.LockResource(ru.Name)
	}

	a.bdiLog(ctx, bus.LogActionStarted, bus.LevelNormal, e.IntentionID, e.ActionName)
	a.publish(ctx, bus.MessagePayload{SchemaName: e.ActionName}, handle.Handle{})

	ac := a.newActionContext(ctx, e.Bindings)
	ac.taskID = e.TaskID
	status := act.Handler(ac)
	if status == model.ActionPending {
		a.currentActions[e.TaskID] = &currentAction{
			ReplyTo:       e.Caller(),
			IntentionID:   e.IntentionID,
			TaskID:        e.TaskID,
			ActionName:    e.ActionName,
			ResourceUsage: usage,
		}
		return
	}
	a.unlockAndComplete(ctx, e.Caller(), e.IntentionID, e.TaskID, usage, status, nil)
}

func (a *Agent) unlockAndComplete(ctx context.Context, replyTo, intentionID, taskID handle.Handle, usage []model.ResourceUsage, status model.ActionStatus, result message.Message) {
	for _, ru := range usage {
		a.Belief.UnlockResource(ru.Name)
	}
	a.bdiLog(ctx, bus.LogActionFinished, bus.LevelNormal, intentionID, status.String())
	a.completeAction(ctx, replyTo, intentionID, taskID, status, result)
}

// completeAction resolves a finished action's owning task. When replyTo
// names this very agent (the common, non-delegated case), it resolves the
// task inline; otherwise it routes an ACTION_COMPLETE back to the
// requesting agent, which owns the (intentionID, taskID) pair in its own
// intentions map.
func (a *Agent) completeAction(ctx context.Context, replyTo, intentionID, taskID handle.Handle, status model.ActionStatus, result message.Message) {
	if !replyTo.Valid() || replyTo.Equal(a.Handle) {
		a.resolveTask(ctx, intentionID, taskID, taskStatusOf(status), result)
		return
	}
	if a.Router == nil {
		return
	}
	ev := event.NewActionCompleteEvent(a.Handle, intentionID, taskID, status, result)
	ev.Envelope = ev.Envelope.WithRecipient(replyTo)
	a.Router.Route(ev)
}

// resolveCurrentAction completes a PENDING action out-of-band, e.g. from a
// goroutine the handler spawned before returning PENDING.
func (a *Agent) resolveCurrentAction(ctx context.Context, taskID handle.Handle, status model.ActionStatus, result message.Message) {
	ca, ok := a.currentActions[taskID]
	if !ok || ca.Resolved {
		return
	}
	ca.Resolved = true
	ca.Status = status
	ca.Result = result
}

// processCurrentActions sweeps current_actions for handlers that resolved
// out-of-band since the last tick (spec §4.8 step 4).
func (a *Agent) processCurrentActions(ctx context.Context) {
	for taskID, ca := range a.currentActions {
		if !ca.Resolved {
			continue
		}
		delete(a.currentActions, taskID)
		a.unlockAndComplete(ctx, ca.ReplyTo, ca.IntentionID, ca.TaskID, ca.ResourceUsage, ca.Status, ca.Result)
	}
}

// handleActionComplete implements spec §4.1 ACTION_COMPLETE: route to the
// owning intention by (IntentionID, TaskID); warn (dead-letter) if the task
// is gone.
func (a *Agent) handleActionComplete(ctx context.Context, e *event.ActionCompleteEvent) {
	a.resolveTask(ctx, e.IntentionID, e.TaskID, taskStatusOf(e.Status), e.Result)
}
