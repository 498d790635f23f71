package intention

import "bdi.dev/engine/handle"

// DropDeps are the agent-level lookups the drop protocol needs, kept
// narrow so this package never imports agent/schedule/event directly.
type DropDeps struct {
	// Lookup returns the live Intention for a desire handle, if one has
	// formed (a desire may exist without ever having become an
	// intention, e.g. it never got past the scheduler).
	Lookup func(desire handle.Handle) (*Intention, bool)
	// FinishOrphan concludes an orphan sub-desire (one that never formed
	// an intention) directly with DROPPED.
	FinishOrphan func(desire handle.Handle)
	// FinishDesire concludes desire (which did form an intention) with
	// DROPPED, after its Intention has been dropped.
	FinishDesire func(desire handle.Handle)
}

// Drop runs the recursive drop protocol for target: DFS every recorded
// sub-intention first, then drop target itself. Returns true if target
// (or an orphan stand-in) was found and processed at all, so the caller
// knows whether to mark GOAL_REMOVED dirty.
func Drop(target handle.Handle, force bool, deps DropDeps) bool {
	in, found := deps.Lookup(target)
	if !found {
		deps.FinishOrphan(target)
		return true
	}

	for _, sub := range in.SubIntentionHandles() {
		Drop(sub, force, deps)
	}

	in.Drop(force)
	deps.FinishDesire(target)
	return true
}
