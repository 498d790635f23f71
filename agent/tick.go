package agent

import (
	"context"

	"bdi.dev/engine/bus"
	"bdi.dev/engine/intention"
)

// backlogWarnThreshold is the number of events queued against a non-
// RUNNING agent before the backlog-growth warning fires once per run.
const backlogWarnThreshold = 1000

// Tick runs exactly one pass of the reasoning loop (spec §4.8), in order:
//  1. skip straight to step 10 if the agent is not RUNNING (a PAUSED,
//     CREATED, or STOPPED agent dispatches CONTROL events and nothing
//     else; a STOPPING agent additionally still drains to STOPPED)
//  2. advance candidate-side delegation backlog scoring
//  3. close any initiator-side auctions that are due
//  4. sweep current_actions for out-of-band resolutions
//  5. run the shared-belief relay
//  6. decide whether to (re-)start a schedule search
//  7. advance the live schedule search
//  8. fire any expired timers
//  9. (folded into steps above) advance the executor as effects land
//  10. once STOPPING and the executor has drained to idle, become
//     STOPPED; warn once if the event backlog against a non-RUNNING
//     agent is growing without bound
//
// Steps 2-9 only run while RUNNING, per spec §4.8 step 1 ("skip tick if
// not RUNNING"): a PAUSED agent must not keep firing timers or advancing
// its schedule/executor just because Tick is still being called on it.
// Dispatch itself (step 1) always runs, since CONTROL events (and the
// backlog meter for everything else) must be serviced regardless of
// state, and maybeFinishStopping/warnBacklogGrowth (step 10) always run
// so a STOPPING agent can still reach STOPPED once already-dispatched
// effects have resolved it to idle.
//
// Tick must only ever be called from the single goroutine currently
// driving this agent.
func (a *Agent) Tick(ctx context.Context) {
	a.dispatch(ctx)
	if a.state == Running {
		a.processBacklog(ctx)
		a.processAuctions(ctx)
		a.processCurrentActions(ctx)
		a.processSharedBeliefs(ctx)
		a.maybeReplan(ctx)
		a.advanceSchedule(ctx)
		a.fireTimers(ctx)
	}
	a.maybeFinishStopping(ctx)
	a.warnBacklogGrowth(ctx)
}

// maybeFinishStopping implements spec §4.8 step 10: once a STOPPING agent's
// executor has drained to idle, it transitions to STOPPED.
func (a *Agent) maybeFinishStopping(ctx context.Context) {
	if a.state != Stopping || !a.executorIdle() {
		return
	}
	a.state = Stopped
	_ = ctx
}

func (a *Agent) fireTimers(ctx context.Context) {
	for _, t := range a.Timers.DrainExpired(a.Clock.Now()) {
		a.bdiLog(ctx, bus.LogSleepFinished, bus.LevelNormal, t.IntentionID, "")
		a.resolveTask(ctx, t.IntentionID, t.TaskID, intention.TaskSuccess, nil)
	}
}

func (a *Agent) warnBacklogGrowth(ctx context.Context) {
	if a.backlogWarned || a.state == Running {
		return
	}
	if a.backlogCount < backlogWarnThreshold {
		return
	}
	a.backlogWarned = true
	a.Logger.Warn(ctx, "event backlog growing against a non-running agent", "agent", a.Handle.String(), "count", a.backlogCount)
}
