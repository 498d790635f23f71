package agent

import (
	"context"
	"sort"

	"bdi.dev/engine/intention"
	"bdi.dev/engine/promise"
	"bdi.dev/engine/schedule"
)

// activeDesires implements the spec §4.4 Goal Activation Filter: it
// excludes desires whose owning intention is FORCE_DROPPING, drops any
// desire whose drop predicate now holds or that is already satisfied and
// neither persistent nor delegated, and drops any desire left with no
// plans and no delegate candidates at all. The survivors are returned in
// insertion order for deterministic scheduling.
func (a *Agent) activeDesires(ctx context.Context) []*schedule.Desire {
	var out []*schedule.Desire
	for h, d := range a.desires {
		if in, ok := a.intentions[h]; ok && in.Status == intention.ForceDropping {
			continue
		}
		if d.Goal.ShouldDrop(a.Belief) {
			a.finishDesire(ctx, d, promise.StatusDropped, "drop predicate satisfied")
			continue
		}
		if !d.Persistent && !d.Delegated && d.Goal.IsSatisfied(a.Belief) {
			a.finishDesire(ctx, d, promise.StatusDropped, "already satisfied")
			continue
		}
		if d.Delegated && !a.hasDelegateCandidates() {
			a.finishDesire(ctx, d, promise.StatusDropped, "no plans or delegates available")
			continue
		}
		out = append(out, &d.Desire)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InsertionOrder < out[j].InsertionOrder })
	return out
}

func (a *Agent) hasDelegateCandidates() bool {
	return a.IsTeam() && len(a.members) > 0
}
