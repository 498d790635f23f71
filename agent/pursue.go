package agent

import (
	"context"

	"bdi.dev/engine/bus"
	"bdi.dev/engine/event"
	"bdi.dev/engine/message"
	"bdi.dev/engine/model"
	"bdi.dev/engine/promise"
	"bdi.dev/engine/schedule"
)

// handlePursue implements spec §4.2: merge-by-id, merge persistent
// duplicates, validate the goal/schema, then instantiate a fresh desire.
func (a *Agent) handlePursue(ctx context.Context, ev *event.PursueEvent) {
	if existing, ok := a.desires[ev.ID()]; ok {
		existing.Promise = ev.Promise
		existing.Parameters = ev.Parameters
		if ev.Parameters != nil {
			a.Belief.SetGoalContext(ev.Parameters)
		}
		return
	}

	if ev.Persistent {
		for _, d := range a.desires {
			if d.TemplateName() != ev.Goal {
				continue
			}
			if !equalParams(d.Parameters, ev.Parameters) {
				continue
			}
			d.Promise = ev.Promise
			return
		}
	}

	goal, ok := a.Registry.Goal(ev.Goal)
	if !ok {
		ev.Promise.Resolve(promise.Result{Status: promise.StatusFail, Reason: "unknown goal " + ev.Goal})
		return
	}

	if err := a.verifySchema(goal, ev.Parameters); err != nil {
		ev.Promise.Resolve(promise.Result{Status: promise.StatusFail, Reason: err.Error(), Err: err})
		return
	}

	delegated := len(a.Template.PlansFor(ev.Goal)) == 0

	d := &desire{
		Desire: schedule.Desire{
			Handle:            ev.ID(),
			Goal:              goal,
			Parameters:        ev.Parameters,
			Persistent:        ev.Persistent,
			Delegated:         delegated,
			ParentIntentionID: ev.ParentIntentionID,
			InsertionOrder:    a.nextInsertionOrder(),
			FailedPlans:       map[string]bool{},
		},
		Promise:           ev.Promise,
		ParentIntentionID: ev.ParentIntentionID,
		ParentTaskID:      ev.ParentTaskID,
	}
	a.desires[d.Handle] = d
	a.Belief.SetGoalContext(ev.Parameters)

	kind := bus.LogGoalStarted
	if ev.ParentIntentionID.Valid() {
		kind = bus.LogSubGoalStarted
	}
	a.bdiLog(ctx, kind, bus.LevelNormal, d.Handle, "pursuing "+ev.Goal)

	a.markDirty(event.DirtyGoalAdded)
}

// TemplateName exposes the underlying goal template's name.
func (d *desire) TemplateName() string {
	if d.Desire.Goal == nil {
		return ""
	}
	return d.Desire.Goal.Name
}

func equalParams(a, b message.Message) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Equal(b)
}

// verifySchema implements spec §4.2 step 4: reject when a goal requires a
// parameters message but none was supplied, or vice versa, and when the
// supplied message's schema doesn't match or fails validation.
func (a *Agent) verifySchema(goal *model.Goal, params message.Message) error {
	if goal.MessageSchema == "" {
		if params != nil {
			return errUnexpectedParameters(goal.Name)
		}
		return nil
	}
	if params == nil {
		return errMissingParameters(goal.Name)
	}
	if params.SchemaName() != goal.MessageSchema {
		return errSchemaMismatch(goal.Name, goal.MessageSchema, params.SchemaName())
	}
	if s, ok := a.Registry.Schema(goal.MessageSchema); ok {
		return s.Verify(params)
	}
	return nil
}
