// Package schedule implements the agent's A* planner: it searches over
// assignments of one candidate plan (or, for a delegated desire, one
// delegate) to each active desire, subject to precondition, cost, and
// resource-deconflict checks, and produces the ordered intention list
// the executor runs.
package schedule

import (
	"bdi.dev/engine/handle"
	"bdi.dev/engine/message"
	"bdi.dev/engine/model"
)

// MaxIterations bounds how many A* expansions a single Advance call may
// perform, so an agent tick never blocks indefinitely.
const MaxIterations = 64

// Desire is one goal instance the scheduler must cover. InsertionOrder
// breaks ties between desires created in the same tick.
type Desire struct {
	Handle            handle.Handle
	Goal              *model.Goal
	Parameters        message.Message
	Persistent        bool
	Delegated         bool // true iff the agent has no local plans for Goal
	ParentIntentionID handle.Handle
	InsertionOrder    int

	// FailedPlans records plan names that already FAILed for this desire,
	// consulted by TacticPolicy Exclude.
	FailedPlans map[string]bool
	// RoundRobinStart is the starting candidate index for TacticPolicy
	// RoundRobin, advanced each time this desire's plan fails.
	RoundRobinStart int
}

// Selection is one resolved (plan, bindings) choice for a single desire
// within a search node, or a delegate-target choice when the desire is
// delegated.
type Selection struct {
	DesireIdx int
	PlanName  string // empty when Delegate is set
	Delegate  handle.Handle
	Bindings  model.Bindings
	PlanIndex int // candidate's position under the tactic, for tie-break
}

// Assignment is one finished selection, promoted out of the search once
// the owning node is terminal.
type Assignment struct {
	Desire   *Desire
	PlanName string
	Delegate handle.Handle
	Bindings model.Bindings
}

// Status reports the outcome of an Advance call.
type Status int

const (
	// StatusRunning means the open set is non-empty and iterations ran
	// out before a terminal node was reached.
	StatusRunning Status = iota
	// StatusPendingAuction means at least one node is parked awaiting
	// delegation bids; Advance will not progress further until
	// ResolveAuction is called for every parked node (or they are
	// abandoned).
	StatusPendingAuction
	// StatusFinished means a terminal node covering every desire with
	// finite cost was found.
	StatusFinished
	// StatusFailed means the open set emptied without finding a terminal
	// node: no feasible assignment exists.
	StatusFailed
)

// DelegationRequest describes one desire's need to auction a delegate,
// emitted once each time the scheduler parks a node on it, listing every
// candidate in Candidates.
type DelegationRequest struct {
	ScheduleID handle.Handle
	Goal       string
	Parameters message.Message
	Candidates []handle.Handle
}

// Result is returned by Advance.
type Result struct {
	Status      Status
	Intentions  []Assignment        // set when Status == StatusFinished
	Cost        float64             // total selection cost, set when Status == StatusFinished
	Delegations []DelegationRequest // newly-parked nodes this Advance call produced
}
