package schedule

import (
	"container/heap"

	"bdi.dev/engine/handle"
	"bdi.dev/engine/model"
)

// Deps are the planner's external lookups, supplied by the owning agent
// so this package never depends on agent/model-registry plumbing
// directly.
type Deps struct {
	// PlansFor returns every plan in the agent's template that handles
	// goal, in authoring order.
	PlansFor func(goal string) []*model.Plan
	// TacticFor returns the active tactic for goal, or nil to fall back
	// to authoring order.
	TacticFor func(goal string) *model.Tactic
	// Candidates returns the team members eligible to bid on a delegated
	// goal, or nil/empty if none are available.
	Candidates func(goal string) []handle.Handle
}

// Planner runs one A* search over a fixed set of active desires (spec
// §4.3). A Planner instance is single-use: construct a fresh one each
// time the agent decides to re-plan.
type Planner struct {
	desires []*Desire
	deps    Deps

	open    openHeap
	pending map[handle.Handle]*node
}

// New constructs a Planner seeded with belief as the root node's
// hypothetical context and desires as the set to cover, in the order
// given (desires should already be sorted/tagged with InsertionOrder by
// the caller).
func New(belief model.BeliefView, desires []*Desire, deps Deps) *Planner {
	p := &Planner{
		desires: desires,
		deps:    deps,
		pending: map[handle.Handle]*node{},
	}
	p.open.desires = desires
	root := &node{proj: model.NewProjection(belief), locked: map[string]bool{}}
	heap.Init(&p.open)
	heap.Push(&p.open, root)
	return p
}

// Advance runs up to maxIterations A* expansion steps.
func (p *Planner) Advance(maxIterations int) Result {
	var delegations []DelegationRequest

	for i := 0; i < maxIterations; i++ {
		if p.open.Len() == 0 {
			if len(p.pending) > 0 {
				return Result{Status: StatusPendingAuction, Delegations: delegations}
			}
			return Result{Status: StatusFailed, Delegations: delegations}
		}

		n := heap.Pop(&p.open).(*node)

		if n.nextIdx >= len(p.desires) {
			return Result{Status: StatusFinished, Intentions: p.materialize(n), Cost: n.cost, Delegations: delegations}
		}

		d := p.desires[n.nextIdx]
		if d.Delegated {
			parked, req := p.expandDelegated(n, d)
			if parked == nil {
				// No candidates available: this branch is infeasible.
				continue
			}
			p.pending[parked.id] = parked
			delegations = append(delegations, *req)
			continue
		}

		for _, child := range p.expand(n) {
			heap.Push(&p.open, child)
		}
	}

	if p.open.Len() == 0 && len(p.pending) == 0 {
		return Result{Status: StatusFailed, Delegations: delegations}
	}
	return Result{Status: StatusRunning, Delegations: delegations}
}

// ResolveAuction applies a closed auction's outcome to the node parked
// under scheduleID, binding winner as the delegate and folding score
// into the node's cost before returning it to open. ok=false means the auction produced no usable winner
// (e.g. every candidate FAILed); the parked branch is then dropped as
// infeasible. Resolving an unknown scheduleID is a no-op (the auction
// closed after this planner instance was already discarded for a fresh
// re-plan).
func (p *Planner) ResolveAuction(scheduleID handle.Handle, winner handle.Handle, score float64, ok bool) {
	parked, found := p.pending[scheduleID]
	if !found {
		return
	}
	delete(p.pending, scheduleID)
	if !ok {
		return
	}

	child := parked.clone()
	child.selections = append(child.selections, Selection{
		DesireIdx: parked.nextIdx,
		Delegate:  winner,
		Bindings:  model.Bindings{"delegate": winner},
	})
	child.cost += score
	child.nextIdx = parked.nextIdx + 1
	heap.Push(&p.open, child)
}

// Pending reports whether any node is currently parked awaiting an
// auction outcome.
func (p *Planner) Pending() bool { return len(p.pending) > 0 }

func (p *Planner) expandDelegated(n *node, d *Desire) (*node, *DelegationRequest) {
	candidates := p.candidatesFor(d.Goal.Name)
	if len(candidates) == 0 {
		return nil, nil
	}
	parked := n.clone()
	parked.id = handle.New("schedule-" + d.Goal.Name)
	req := &DelegationRequest{
		ScheduleID: parked.id,
		Goal:       d.Goal.Name,
		Parameters: d.Parameters,
		Candidates: candidates,
	}
	return parked, req
}

func (p *Planner) candidatesFor(goal string) []handle.Handle {
	if p.deps.Candidates == nil {
		return nil
	}
	return p.deps.Candidates(goal)
}

// expand performs phases 1-3 (Expand/Cost/Deconflict) for every
// candidate plan of the desire at n.nextIdx, returning the feasible
// children.
func (p *Planner) expand(n *node) []*node {
	d := p.desires[n.nextIdx]
	candidates, planIndex := p.candidatePlans(d)

	var children []*node
	for _, plan := range candidates {
		if !plan.PreconditionHolds(n.proj, model.Bindings{}) {
			continue
		}

		childProj := n.proj.Clone()
		bindings := model.Bindings{}
		plan.ApplyEffects(childProj, bindings)

		cost := plan.CostOf(childProj, bindings)
		if model.IsFailedCost(cost) {
			continue
		}

		lockedCopy := make(map[string]bool, len(n.locked))
		for k, v := range n.locked {
			lockedCopy[k] = v
		}

		feasible := true
		for _, ru := range plan.ResourceUsage {
			if ru.Exclusive {
				if lockedCopy[ru.Name] {
					feasible = false
					break
				}
				lockedCopy[ru.Name] = true
			}
			childProj.AdjustResource(ru.Name, -ru.Amount)
			snap, ok := childProj.Resource(ru.Name)
			if !ok || snap.Current < snap.Min || snap.Current > snap.Max {
				feasible = false
				break
			}
		}
		if !feasible {
			continue
		}

		child := &node{
			selections: append(append([]Selection(nil), n.selections...), Selection{
				DesireIdx: n.nextIdx,
				PlanName:  plan.Name,
				Bindings:  bindings,
				PlanIndex: planIndex[plan.Name],
			}),
			proj:    childProj,
			cost:    n.cost + cost,
			nextIdx: n.nextIdx + 1,
			locked:  lockedCopy,
		}
		children = append(children, child)
	}
	return children
}

// candidatePlans orders d's plan candidates per its tactic's policy
//, and returns a stable plan-name ->
// tactic-order-index map for tie-breaking (spec "lower plan selection
// index under the tactic") that does not itself shift under RoundRobin
// rotation.
func (p *Planner) candidatePlans(d *Desire) ([]*model.Plan, map[string]int) {
	all := p.deps.PlansFor(d.Goal.Name)
	tactic := p.deps.TacticFor(d.Goal.Name)

	ordered := all
	if tactic != nil {
		byName := make(map[string]*model.Plan, len(all))
		for _, pl := range all {
			byName[pl.Name] = pl
		}
		ordered = make([]*model.Plan, 0, len(tactic.AllowedPlans))
		for _, name := range tactic.AllowedPlans {
			if pl, ok := byName[name]; ok {
				ordered = append(ordered, pl)
			}
		}
	}

	planIndex := make(map[string]int, len(ordered))
	for i, pl := range ordered {
		planIndex[pl.Name] = i
	}

	if tactic == nil {
		return ordered, planIndex
	}

	switch tactic.Policy {
	case model.PolicyExclude:
		filtered := make([]*model.Plan, 0, len(ordered))
		for _, pl := range ordered {
			if !d.FailedPlans[pl.Name] {
				filtered = append(filtered, pl)
			}
		}
		return filtered, planIndex
	case model.PolicyRoundRobin:
		if len(ordered) == 0 {
			return ordered, planIndex
		}
		start := d.RoundRobinStart % len(ordered)
		rotated := make([]*model.Plan, len(ordered))
		for i := range ordered {
			rotated[i] = ordered[(start+i)%len(ordered)]
		}
		return rotated, planIndex
	default: // PolicyStrict
		return ordered, planIndex
	}
}

// materialize converts a terminal node's selections into the ordered
// intention list handed to the executor. The incremental per-step
// resource check in expand already enforces the final deconflict pass,
// so no further validation happens here.
func (p *Planner) materialize(n *node) []Assignment {
	out := make([]Assignment, len(n.selections))
	for i, sel := range n.selections {
		out[i] = Assignment{
			Desire:   p.desires[sel.DesireIdx],
			PlanName: sel.PlanName,
			Delegate: sel.Delegate,
			Bindings: sel.Bindings,
		}
	}
	return out
}
