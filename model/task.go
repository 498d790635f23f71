package model

import (
	"time"

	"bdi.dev/engine/message"
)

// Task is one node of a plan body's coroutine-like DAG. The intention
// executor advances ready tasks every tick; it does not need a
// stack-switching primitive.
//
// Task is a closed (sealed) interface: only the concrete kinds declared in
// this file implement it, via the unexported isTask marker method.
type Task interface {
	isTask()
}

type (
	// ActionTask invokes a registered action by name.
	ActionTask struct {
		Name string
	}

	// SleepTask parks the task until Duration has elapsed on the agent's
	// clock, then completes with SUCCESS.
	SleepTask struct {
		Duration time.Duration
	}

	// SubGoalTask pursues a sub-goal as a child desire of the owning
	// intention. ParamsFn resolves the parameters message from the plan's
	// bindings; nil means the goal takes no parameters.
	SubGoalTask struct {
		Goal       string
		ParamsFn   func(Bindings) message.Message
		Persistent bool
	}

	// CondTask branches on Predicate, evaluated against the intention's
	// live belief view and bindings.
	CondTask struct {
		Predicate func(BeliefView, Bindings) bool
		Then      Task
		Else      Task
	}

	// SequenceTask runs its children strictly in order; a child FAIL fails
	// the sequence without running later children.
	SequenceTask struct {
		Tasks []Task
	}

	// ParallelTask runs its children concurrently (within one agent's
	// single-threaded tick advancement — "concurrently" means interleaved
	// readiness, not parallel goroutines). The task completes SUCCESS only
	// once every child has completed SUCCESS; any child FAIL fails it.
	ParallelTask struct {
		Tasks []Task
	}
)

func (ActionTask) isTask()   {}
func (SleepTask) isTask()    {}
func (SubGoalTask) isTask()  {}
func (CondTask) isTask()     {}
func (SequenceTask) isTask() {}
func (ParallelTask) isTask() {}

// Action builds a leaf task invoking the named action.
func Action(name string) Task { return ActionTask{Name: name} }

// Sleep builds a leaf task that waits d before completing.
func Sleep(d time.Duration) Task { return SleepTask{Duration: d} }

// PursueSubGoal builds a non-persistent sub-goal task.
func PursueSubGoal(goal string, paramsFn func(Bindings) message.Message) Task {
	return SubGoalTask{Goal: goal, ParamsFn: paramsFn}
}

// PursuePersistentSubGoal builds a persistent sub-goal task.
func PursuePersistentSubGoal(goal string, paramsFn func(Bindings) message.Message) Task {
	return SubGoalTask{Goal: goal, ParamsFn: paramsFn, Persistent: true}
}

// Cond builds a branch task.
func Cond(pred func(BeliefView, Bindings) bool, then, els Task) Task {
	return CondTask{Predicate: pred, Then: then, Else: els}
}

// Sequence builds an ordered composite task.
func Sequence(tasks ...Task) Task { return SequenceTask{Tasks: tasks} }

// Parallel builds a fan-out composite task.
func Parallel(tasks ...Task) Task { return ParallelTask{Tasks: tasks} }
