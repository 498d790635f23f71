package agent

import (
	"context"

	"bdi.dev/engine/auction"
	"bdi.dev/engine/event"
	"bdi.dev/engine/handle"
	"bdi.dev/engine/intention"
	"bdi.dev/engine/model"
	"bdi.dev/engine/schedule"
)

// tacticFor resolves the active tactic for goal: a runtime TACTIC
// override if one was applied, else the template's default.
func (a *Agent) tacticFor(goal string) *model.Tactic {
	if name, ok := a.activeTactics[goal]; ok {
		if t, ok := a.Registry.Tactic(name); ok {
			return t
		}
	}
	return a.Template.TacticFor(goal)
}

func (a *Agent) schedulerDeps() schedule.Deps {
	return schedule.Deps{
		PlansFor:  a.Template.PlansFor,
		TacticFor: a.tacticFor,
		Candidates: func(goal string) []handle.Handle {
			if !a.IsTeam() {
				return nil
			}
			return a.members
		},
	}
}

// executorIdle reports whether every live intention is between steps,
// the condition the replan decision and the belief-sharing rate gate both
// consult.
func (a *Agent) executorIdle() bool {
	for _, in := range a.intentions {
		if in.Mode != intention.Idle {
			return false
		}
	}
	return true
}

// maybeReplan implements spec §4.8 step 6: start a fresh search whenever
// there is no schedule in flight, or preempt an in-flight one when
// scheduleDirty carries a preempting flag (GOAL_REMOVED, MEMBER_REMOVED,
// or FORCE).
func (a *Agent) maybeReplan(ctx context.Context) {
	if a.scheduleDirty == event.DirtyNone {
		return
	}
	if a.planner == nil {
		a.startPlanner(ctx)
		a.scheduleDirty = event.DirtyNone
		return
	}
	if a.scheduleDirty.Preempting() {
		a.Logger.Info(ctx, "preempting in-flight schedule", "reason", a.scheduleDirty)
		a.startPlanner(ctx)
		a.scheduleDirty = event.DirtyNone
	}
}

func (a *Agent) startPlanner(ctx context.Context) {
	a.auctions = map[handle.Handle]*auction.Auction{}
	active := a.activeDesires(ctx)
	if len(active) == 0 {
		a.planner = nil
		return
	}
	a.planner = schedule.New(a.Belief, active, a.schedulerDeps())
}

// advanceSchedule implements spec §4.8 step 7: run up to MaxIterations of
// A* expansion, parking nodes awaiting auctions, materializing intentions
// once a terminal node is found, and discarding the planner on either
// completion or outright failure.
func (a *Agent) advanceSchedule(ctx context.Context) {
	if a.planner == nil {
		return
	}
	res := a.planner.Advance(schedule.MaxIterations)
	switch res.Status {
	case schedule.StatusPendingAuction:
		for _, req := range res.Delegations {
			a.startAuction(ctx, req)
		}
	case schedule.StatusFinished:
		a.startIntentions(ctx, res.Intentions)
		a.planner = nil
	case schedule.StatusFailed:
		a.planner = nil
	}
}
