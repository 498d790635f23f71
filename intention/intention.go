package intention

import (
	"bdi.dev/engine/handle"
	"bdi.dev/engine/model"
	"bdi.dev/engine/promise"
)

// Intention is a running desire with its own executor state machine and
// task-DAG coroutine frame. One Intention
// exists per top-level scheduled desire for the lifetime of that
// desire's execution.
type Intention struct {
	Handle            handle.Handle // == owning desire's handle
	PlanName          string
	Bindings          model.Bindings
	ResourceUsage     []model.ResourceUsage
	ParentIntentionID handle.Handle
	ParentTaskID      handle.Handle

	Status Status
	Mode   ExecutingMode

	root   *frame
	leaves map[handle.Handle]*frame

	// subIntentions maps a SubGoalTask's taskID to the child desire
	// handle formed for it, recorded once the owning agent turns the
	// SubGoalEffect into a real Pursue.
	subIntentions map[handle.Handle]handle.Handle
}

// New builds an Intention for plan's body, ready to Start.
func New(h handle.Handle, planName string, body model.Task, bindings model.Bindings, resourceUsage []model.ResourceUsage, parentIntentionID, parentTaskID handle.Handle) *Intention {
	leaves := map[handle.Handle]*frame{}
	return &Intention{
		Handle:            h,
		PlanName:          planName,
		Bindings:          bindings,
		ResourceUsage:     resourceUsage,
		ParentIntentionID: parentIntentionID,
		ParentTaskID:      parentTaskID,
		Status:            Waiting,
		Mode:              Idle,
		root:              newFrame(body, leaves),
		leaves:            leaves,
		subIntentions:     map[handle.Handle]handle.Handle{},
	}
}

// Start transitions WAITING -> STARTING -> EXECUTING and returns the
// first batch of effects from the task body's ready leaves.
// The caller is responsible for having already locked i.ResourceUsage
// against the belief context before calling Start. terminal is true if
// the body completed with no leaves to dispatch at all (e.g. an empty
// Sequence, or a Cond with a nil chosen branch).
func (i *Intention) Start(belief model.BeliefView) (effects []Effect, terminal bool, result promise.Status) {
	i.Status = Starting
	i.Status = Executing
	effects = i.step(belief)
	return i.checkTerminal(effects)
}

// Resolve applies a completed leaf task's outcome (from an
// ACTION_COMPLETE, fired TIMER, or a resolved sub-goal Promise) and
// re-walks the body, returning any newly-dispatched effects plus
// whether the intention concluded this call.
func (i *Intention) Resolve(taskID handle.Handle, status TaskStatus, belief model.BeliefView) (effects []Effect, terminal bool, result promise.Status) {
	if i.Status != Executing {
		return nil, false, ""
	}
	leaf, ok := i.leaves[taskID]
	if !ok || leaf.status != TaskPending {
		return nil, false, ""
	}
	leaf.status = status
	effects = i.step(belief)
	return i.checkTerminal(effects)
}

// RecordSubIntention associates a SubGoalTask's taskID with the child
// desire handle the agent formed for it, so the drop protocol's DFS can
// reach it.
func (i *Intention) RecordSubIntention(taskID, childDesire handle.Handle) {
	i.subIntentions[taskID] = childDesire
}

// SubIntentionHandles returns every child desire handle recorded via
// RecordSubIntention, in no particular order.
func (i *Intention) SubIntentionHandles() []handle.Handle {
	out := make([]handle.Handle, 0, len(i.subIntentions))
	for _, h := range i.subIntentions {
		out = append(out, h)
	}
	return out
}

// Drop transitions the intention into DROPPING (mode == NORMAL) or
// FORCE_DROPPING (mode == FORCE). FORCE skips conclude-phase effects
// and the intention is excluded from the next activation pass.
func (i *Intention) Drop(force bool) {
	if force {
		i.Status = ForceDropping
	} else {
		i.Status = Dropping
	}
	i.Mode = Idle
}

func (i *Intention) step(belief model.BeliefView) []Effect {
	var effects []Effect
	rootStatus := i.root.advance(belief, i.Bindings, &effects, i.leaves)
	switch {
	case rootStatus == TaskPending && len(effects) > 0:
		i.Mode = RunningTask
	case rootStatus == TaskPending:
		i.Mode = BusyWaitingOnExecutor
	default:
		i.Mode = Idle
	}
	return effects
}

func (i *Intention) checkTerminal(effects []Effect) ([]Effect, bool, promise.Status) {
	switch i.root.status {
	case TaskSuccess:
		i.Status = Concluding
		i.Status = Done
		return effects, true, promise.StatusSuccess
	case TaskFail:
		i.Status = Concluding
		i.Status = Done
		return effects, true, promise.StatusFail
	default:
		return effects, false, ""
	}
}
