// Package auction implements the team-side delegation backlog and
// auction bookkeeping. It knows nothing about the A* search that
// produced a delegation request or the goal templates being delegated;
// it only tracks which candidates were asked, what they bid, and when
// the auction closes.
package auction

import (
	"sort"
	"time"

	"bdi.dev/engine/handle"
)

// Bid is one candidate member's response to a Delegation(analyse=true).
type Bid struct {
	Member  handle.Handle
	Score   float64
	Success bool
}

// Auction tracks one in-flight delegation round for a single scheduler
// node.
type Auction struct {
	ScheduleID      handle.Handle
	Goal            string
	Candidates      map[handle.Handle]bool
	Expiry          time.Time
	ExpectedBidders int
	bids            map[handle.Handle]Bid
}

// New starts an auction for scheduleID, asking every candidate in
// candidates, closing at expiry.
func New(scheduleID handle.Handle, goal string, candidates []handle.Handle, expiry time.Time) *Auction {
	set := make(map[handle.Handle]bool, len(candidates))
	for _, c := range candidates {
		set[c] = true
	}
	return &Auction{
		ScheduleID:      scheduleID,
		Goal:            goal,
		Candidates:      set,
		Expiry:          expiry,
		ExpectedBidders: len(candidates),
		bids:            map[handle.Handle]Bid{},
	}
}

// AddBid records member's bid. It is silently dropped when member was
// not an original candidate, already bid, or now is at/after Expiry.
func (a *Auction) AddBid(now time.Time, member handle.Handle, score float64, success bool) bool {
	if !a.Candidates[member] {
		return false
	}
	if _, dup := a.bids[member]; dup {
		return false
	}
	if !now.Before(a.Expiry) {
		return false
	}
	a.bids[member] = Bid{Member: member, Score: score, Success: success}
	return true
}

// Finished reports whether the auction should close: now has reached
// Expiry, or every candidate has bid.
func (a *Auction) Finished(now time.Time) bool {
	return !now.Before(a.Expiry) || len(a.bids) >= a.ExpectedBidders
}

// Missing returns how many candidates have not yet bid.
func (a *Auction) Missing() int {
	n := a.ExpectedBidders - len(a.bids)
	if n < 0 {
		return 0
	}
	return n
}

// Bids returns a defensive copy of all recorded bids.
func (a *Auction) Bids() []Bid {
	out := make([]Bid, 0, len(a.bids))
	for _, b := range a.bids {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Member.Name < out[j].Member.Name })
	return out
}

// Winner picks the lowest-score successful bid, tie-broken by member
// handle name in lexical order. ok is false if no bidder reported
// success.
func (a *Auction) Winner() (winner Bid, ok bool) {
	bids := a.Bids() // already lexically sorted by member name
	best := -1
	for i, b := range bids {
		if !b.Success {
			continue
		}
		if best == -1 || b.Score < bids[best].Score {
			best = i
		}
	}
	if best == -1 {
		return Bid{}, false
	}
	return bids[best], true
}
