package agent

import (
	"context"
	"time"

	"bdi.dev/engine/auction"
	"bdi.dev/engine/bus"
	"bdi.dev/engine/event"
	"bdi.dev/engine/handle"
	"bdi.dev/engine/model"
	"bdi.dev/engine/promise"
	"bdi.dev/engine/schedule"
)

// auctionWindow bounds how long an initiated auction waits for every
// candidate to bid before closing on whatever bids arrived.
const auctionWindow = 2 * time.Second

// startAuction opens a team-side auction for one delegated desire (spec
// §4.6): every candidate receives an analyse DELEGATION, and each
// candidate sends its bid back as an AUCTION event (see replyBid).
func (a *Agent) startAuction(ctx context.Context, req schedule.DelegationRequest) {
	au := auction.New(req.ScheduleID, req.Goal, req.Candidates, a.Clock.Now().Add(auctionWindow))
	a.auctions[req.ScheduleID] = au
	for _, cand := range req.Candidates {
		ev := event.NewDelegationEvent(a.Handle, cand, req.ScheduleID, req.Goal, req.Parameters, true)
		if a.Router != nil {
			a.Router.Route(ev)
		}
	}
}

// processAuctions implements spec §4.8 step 3 on the initiator side: close
// every auction that has expired or collected every expected bid, feeding
// the outcome back into the live planner.
func (a *Agent) processAuctions(ctx context.Context) {
	now := a.Clock.Now()
	for scheduleID, au := range a.auctions {
		if !au.Finished(now) {
			continue
		}
		delete(a.auctions, scheduleID)
		if a.planner == nil {
			continue
		}
		winner, ok := au.Winner()
		if !ok {
			a.planner.ResolveAuction(scheduleID, handle.Handle{}, 0, false)
			continue
		}
		a.planner.ResolveAuction(scheduleID, winner.Member, winner.Score, true)
	}
}

// handleAuction applies bids carried by e to the matching in-flight
// auction (spec §4.1 AUCTION: "bids returned to the initiator").
func (a *Agent) handleAuction(e *event.AuctionEvent) {
	au, ok := a.auctions[e.ScheduleID]
	if !ok {
		return
	}
	now := a.Clock.Now()
	for _, bid := range e.Bids {
		au.AddBid(now, bid.Member, bid.Score, bid.Status == model.ActionSuccess)
	}
}

// handleDelegation implements spec §4.6 on the candidate side: analyse
// mode scores a sandboxed backlog entry without touching live state;
// execute mode pursues the delegated goal as an ordinary (untrusted)
// desire and threads its result back through e.Promise.
func (a *Agent) handleDelegation(ctx context.Context, e *event.DelegationEvent) {
	if e.Analyse {
		a.analyseDelegation(ctx, e)
		return
	}

	pursueEv := event.NewPursueEvent(a.Handle, e.Goal, e.Parameters, false)
	a.handlePursue(ctx, pursueEv)
	delegationPromise := e.Promise
	pursueEv.Promise.Then(
		func(r promise.Result) { delegationPromise.Resolve(r) },
		func(r promise.Result) { delegationPromise.Resolve(r) },
	)
}

// analyseDelegation handles the bidding half of delegation: an already-
// executing identical goal bids 0 immediately (spec open question,
// documented in DESIGN.md); otherwise it opens a sandboxed backlog entry
// scored over subsequent ticks.
func (a *Agent) analyseDelegation(ctx context.Context, e *event.DelegationEvent) {
	for _, d := range a.desires {
		if d.TemplateName() != e.Goal || !equalParams(d.Parameters, e.Parameters) {
			continue
		}
		if _, executing := a.intentions[d.Handle]; executing {
			a.replyBid(e.Caller(), e.ScheduleID, 0, true)
			return
		}
	}

	goal, ok := a.Registry.Goal(e.Goal)
	if !ok {
		a.replyBid(e.Caller(), e.ScheduleID, 0, false)
		return
	}
	if err := a.verifySchema(goal, e.Parameters); err != nil {
		a.replyBid(e.Caller(), e.ScheduleID, 0, false)
		return
	}

	entry := auction.NewBacklogEntry(e.ScheduleID, e.Caller(), goal, e.Parameters, a.liveScheduleDesires(), a.Belief, a.schedulerDeps())
	a.backlog[e.ScheduleID] = entry
}

// processBacklog implements spec §4.8 step 2 on the candidate side:
// advance every sandboxed backlog scorer by up to MAX_ITERATIONS, replying
// with a bid once its sandbox schedule finishes or is found infeasible.
func (a *Agent) processBacklog(ctx context.Context) {
	for scheduleID, entry := range a.backlog {
		res := entry.Sandbox.Advance(schedule.MaxIterations)
		switch res.Status {
		case schedule.StatusRunning, schedule.StatusPendingAuction:
			continue
		case schedule.StatusFinished:
			delete(a.backlog, scheduleID)
			a.replyBid(entry.Initiator, scheduleID, res.Cost, true)
		default: // StatusFailed
			delete(a.backlog, scheduleID)
			a.replyBid(entry.Initiator, scheduleID, 0, false)
		}
	}
}

func (a *Agent) replyBid(initiator, scheduleID handle.Handle, score float64, ok bool) {
	status := model.ActionFail
	if ok {
		status = model.ActionSuccess
	}
	bidEv := event.NewAuctionEvent(a.Handle, scheduleID, []event.AuctionBid{{Member: a.Handle, Score: score, Status: status}}, 0)
	bidEv.Envelope = bidEv.Envelope.WithRecipient(initiator)
	if a.Router != nil {
		a.Router.Route(bidEv)
	}
}

func (a *Agent) liveScheduleDesires() []*schedule.Desire {
	out := make([]*schedule.Desire, 0, len(a.desires))
	for _, d := range a.desires {
		out = append(out, &d.Desire)
	}
	return out
}

// startDelegatedExecution dispatches the winning assignment for a
// delegated desire: the real (non-analyse) DELEGATION runs on the winner,
// and its promise resolves d directly since no local Intention ever forms
// for a delegated desire.
func (a *Agent) startDelegatedExecution(ctx context.Context, d *desire, winner handle.Handle) {
	ev := event.NewDelegationEvent(a.Handle, winner, handle.New("delegated-"+d.Goal.Name), d.Goal.Name, d.Parameters, false)
	if a.Router != nil {
		a.Router.Route(ev)
	}
	kind := bus.LogGoalStarted
	if d.ParentIntentionID.Valid() {
		kind = bus.LogSubGoalStarted
	}
	a.bdiLog(ctx, kind, bus.LevelNormal, d.Handle, "delegated to "+winner.String())

	ev.Promise.Then(
		func(r promise.Result) { a.finishDesire(ctx, d, promise.StatusSuccess, r.Reason) },
		func(r promise.Result) { a.finishDesire(ctx, d, promise.StatusFail, r.Reason) },
	)
}
