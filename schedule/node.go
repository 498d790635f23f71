package schedule

import (
	"container/heap"

	"bdi.dev/engine/handle"
	"bdi.dev/engine/model"
)

// node is one partial (or terminal) assignment in the A* search, over
// sequences of (desire_i, chosen_plan_j, bindings) tuples.
type node struct {
	selections []Selection
	proj       *model.Projection
	cost       float64
	nextIdx    int // index into the planner's desire list of the next desire to schedule
	locked     map[string]bool // resource names locked exclusively anywhere in this lineage

	// id is assigned only when the node is parked pending auction, so it
	// can be correlated with returning AUCTION events.
	id handle.Handle

	index int // heap bookkeeping
}

// lastTieBreak returns the (planIndex, desire insertion order) of this
// node's most recent selection, used to break f-cost ties.
func (n *node) lastTieBreak(desires []*Desire) (planIndex, insertionOrder int) {
	if len(n.selections) == 0 {
		return 0, 0
	}
	last := n.selections[len(n.selections)-1]
	return last.PlanIndex, desires[last.DesireIdx].InsertionOrder
}

func (n *node) clone() *node {
	cp := &node{
		selections: append([]Selection(nil), n.selections...),
		proj:       n.proj.Clone(),
		cost:       n.cost,
		nextIdx:    n.nextIdx,
		locked:     make(map[string]bool, len(n.locked)),
	}
	for k, v := range n.locked {
		cp.locked[k] = v
	}
	return cp
}

// openHeap is a container/heap-ordered priority queue of search nodes,
// ordered by the f-cost-then-tie-break key.
type openHeap struct {
	nodes   []*node
	desires []*Desire
}

func (h *openHeap) Len() int { return len(h.nodes) }

func (h *openHeap) Less(i, j int) bool {
	a, b := h.nodes[i], h.nodes[j]
	if a.cost != b.cost {
		return a.cost < b.cost
	}
	aPlan, aIns := a.lastTieBreak(h.desires)
	bPlan, bIns := b.lastTieBreak(h.desires)
	if aPlan != bPlan {
		return aPlan < bPlan
	}
	return aIns < bIns
}

func (h *openHeap) Swap(i, j int) {
	h.nodes[i], h.nodes[j] = h.nodes[j], h.nodes[i]
	h.nodes[i].index = i
	h.nodes[j].index = j
}

func (h *openHeap) Push(x any) {
	n := x.(*node)
	n.index = len(h.nodes)
	h.nodes = append(h.nodes, n)
}

func (h *openHeap) Pop() any {
	old := h.nodes
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	h.nodes = old[:n-1]
	return item
}

var _ heap.Interface = (*openHeap)(nil)
