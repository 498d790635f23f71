package auction

import (
	"bdi.dev/engine/handle"
	"bdi.dev/engine/message"
	"bdi.dev/engine/model"
	"bdi.dev/engine/schedule"
)

// BacklogEntry is a member-side record of one delegation it was asked to
// analyse. The member runs its own sandbox scheduler against a clone of
// its live desire set plus the delegated goal, never touching its real
// schedule, and reports back a bid scored by the sandbox's total cost
// (its live desires plus the delegated goal).
type BacklogEntry struct {
	ScheduleID   handle.Handle // correlates with the initiator's auction
	Initiator    handle.Handle
	Goal         *model.Goal
	Parameters   message.Message
	ClonedDesire *schedule.Desire
	Sandbox      *schedule.Planner
}

// NewBacklogEntry builds a member-side backlog entry: ClonedDesire is a
// fresh desire for goal/parameters appended to the member's existing
// live desires, and Sandbox is a Planner seeded with that full set so
// its resulting cost reflects what taking on the delegated goal would
// actually cost this member.
func NewBacklogEntry(scheduleID, initiator handle.Handle, goal *model.Goal, parameters message.Message, liveDesires []*schedule.Desire, belief model.BeliefView, deps schedule.Deps) *BacklogEntry {
	clone := &schedule.Desire{
		Handle:         handle.New("sandbox-" + goal.Name),
		Goal:           goal,
		Parameters:     parameters,
		InsertionOrder: len(liveDesires),
	}
	sandboxDesires := append(append([]*schedule.Desire(nil), liveDesires...), clone)
	return &BacklogEntry{
		ScheduleID:   scheduleID,
		Initiator:    initiator,
		Goal:         goal,
		Parameters:   parameters,
		ClonedDesire: clone,
		Sandbox:      schedule.New(belief, sandboxDesires, deps),
	}
}

// Score runs the sandbox to completion (bounded by maxIterations) and
// returns the bid the member should submit: the sandbox's total
// selection cost on success, or (0, false) if the sandbox could not
// satisfy every desire.
func (b *BacklogEntry) Score(maxIterations int) (cost float64, ok bool) {
	res := b.Sandbox.Advance(maxIterations)
	if res.Status != schedule.StatusFinished {
		return 0, false
	}
	return res.Cost, true
}
