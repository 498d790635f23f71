package agent

import (
	"context"

	"bdi.dev/engine/event"
	"bdi.dev/engine/handle"
	"bdi.dev/engine/intention"
	"bdi.dev/engine/promise"
)

// handleDrop implements spec §4.5: recursively tear down target's
// intention tree depth-first, concluding every live or orphaned desire
// along the way as DROPPED.
func (a *Agent) handleDrop(ctx context.Context, e *event.DropEvent) {
	force := e.Mode == event.DropForce
	found := intention.Drop(e.Target, force, intention.DropDeps{
		Lookup: func(desireHandle handle.Handle) (*intention.Intention, bool) {
			in, ok := a.intentions[desireHandle]
			return in, ok
		},
		FinishOrphan: func(desireHandle handle.Handle) {
			a.finishDroppedDesire(ctx, desireHandle, e.Reason())
		},
		FinishDesire: func(desireHandle handle.Handle) {
			if in, ok := a.intentions[desireHandle]; ok {
				for _, ru := range in.ResourceUsage {
					a.Belief.UnlockResource(ru.Name)
				}
			}
			a.finishDroppedDesire(ctx, desireHandle, e.Reason())
		},
	})
	if found {
		a.markDirty(event.DirtyGoalRemoved)
	}
}

func (a *Agent) finishDroppedDesire(ctx context.Context, desireHandle handle.Handle, reason string) {
	d, ok := a.desires[desireHandle]
	if !ok {
		return
	}
	a.finishDesire(ctx, d, promise.StatusDropped, reason)
}

// stopExecutor implements the STOPPING-transition half of spec §4.1: force
// every live intention to conclude immediately and drop every desire as
// DROPPED, the same way an explicit top-level DropEvent(force) would. This
// is what lets maybeFinishStopping observe an idle executor on the very
// tick the agent stops, instead of waiting on in-flight sleeps or actions
// that, absent an active Drop, would never resolve (a persistent desire)
// or would only resolve on the timer's own schedule (a live sleep). It also
// satisfies the invariant that a STOPPED agent has no desires or
// intentions left: everything still live when Stop() is issued is torn
// down right away rather than drained naturally.
func (a *Agent) stopExecutor(ctx context.Context) {
	deps := intention.DropDeps{
		Lookup: func(desireHandle handle.Handle) (*intention.Intention, bool) {
			in, ok := a.intentions[desireHandle]
			return in, ok
		},
		FinishOrphan: func(desireHandle handle.Handle) {
			a.finishDroppedDesire(ctx, desireHandle, "agent stopped")
		},
		FinishDesire: func(desireHandle handle.Handle) {
			if in, ok := a.intentions[desireHandle]; ok {
				for _, ru := range in.ResourceUsage {
					a.Belief.UnlockResource(ru.Name)
				}
			}
			a.finishDroppedDesire(ctx, desireHandle, "agent stopped")
		},
	}
	for desireHandle, d := range a.desires {
		if d.ParentIntentionID.Valid() {
			continue
		}
		intention.Drop(desireHandle, true, deps)
	}
}
