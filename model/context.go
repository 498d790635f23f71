package model

import (
	"context"

	"bdi.dev/engine/handle"
	"bdi.dev/engine/message"
	"bdi.dev/engine/telemetry"
)

// Bindings carries the free variables a plan resolves during scheduling
// (e.g. which teammate handle a delegated sub-goal targets).
type Bindings map[string]any

// Clone returns a shallow copy, used when the scheduler branches a search
// node into several children that must not share a binding map.
func (b Bindings) Clone() Bindings {
	cp := make(Bindings, len(b))
	for k, v := range b {
		cp[k] = v
	}
	return cp
}

// ResourceSnapshot is a read-only view of a named resource's bounds and
// current state, as seen by precondition/cost/heuristic closures.
type ResourceSnapshot struct {
	Name      string
	Min       int
	Max       int
	Current   int
	LockCount int
}

// BeliefView is the read-only surface closures (satisfied/drop/heuristic/
// precondition/cost) see. The real belief.Context and the scheduler's
// Projection both implement it, so authoring code never depends on either
// concrete type directly.
type BeliefView interface {
	// Message returns the stored message for schema, if any.
	Message(schema string) (message.Message, bool)
	// Resource returns the named resource's current snapshot, if defined.
	Resource(name string) (ResourceSnapshot, bool)
	// GoalContext returns the parameters the active desire was pursued
	// with, if the view is scoped to a specific desire.
	GoalContext() (message.Message, bool)
}

// ActionStatus is the tri-state result of an action handler invocation.
type ActionStatus int

const (
	// ActionPending leaves the action live in current_actions.
	ActionPending ActionStatus = iota
	ActionSuccess
	ActionFail
)

func (s ActionStatus) String() string {
	switch s {
	case ActionSuccess:
		return "SUCCESS"
	case ActionFail:
		return "FAIL"
	default:
		return "PENDING"
	}
}

// ActionContext is passed to action handlers. It exposes the bindings
// resolved for the enclosing plan, read access to beliefs, and the means
// to mutate real (non-projected) agent state as a side effect of running.
type ActionContext interface {
	context.Context

	// Self returns the handle of the agent actually running this action —
	// the attached service, when the action was forwarded there, rather
	// than the requester that scheduled it.
	Self() handle.Handle
	// Bindings returns the plan's resolved binding environment.
	Bindings() Bindings
	// Belief returns a read-only view of the agent's real belief context.
	Belief() BeliefView
	// SetMessage stores msg in the agent's real belief context. Unlike a
	// PERCEPT event this does not re-enter the dispatcher; callers that
	// want percept semantics should emit a percept event instead.
	SetMessage(msg message.Message)
	// Logger returns a logger scoped to the current intention/task.
	Logger() telemetry.Logger
	// Resolve completes a PENDING action out-of-band, e.g. from a
	// goroutine the handler spawned before returning ActionPending. It is
	// a no-op if the action already concluded.
	Resolve(status ActionStatus, result message.Message)
	// ForceReschedule marks the agent's in-flight schedule search, if any,
	// for preemptive abandonment and restart on the next tick, even though
	// nothing the scheduler itself watches (a new/dropped goal, a member
	// roster change) has actually changed. A plan that flips a
	// precondition out from under its own running intention calls this so
	// the next replan picks a different plan immediately instead of
	// waiting for the current one to finish or fail.
	ForceReschedule()
}

// ActionHandler implements the behavior of one named action. PENDING leaves the action alive for a later
// ACTION_COMPLETE; SUCCESS/FAIL conclude it immediately.
type ActionHandler func(ac ActionContext) ActionStatus

// MessageHandler implements the legacy direct-handler path: invoked
// inline instead of storing the message, when the agent template
// registers deprecated_direct=true for a schema.
type MessageHandler func(ac ActionContext, msg message.Message)
