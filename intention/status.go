// Package intention implements the Intention Executor: the
// per-desire state machine that runs a plan body as a coroutine-like
// task DAG. The executor never switches stacks; instead it re-walks the task tree every
// Start/Resolve call, dispatching a leaf task's effect at most once
// and caching completed subtrees.
package intention

// Status is the intention lifecycle state.
type Status int

const (
	Waiting Status = iota
	Starting
	Executing
	Concluding
	Done
	Dropping
	ForceDropping
)

func (s Status) String() string {
	switch s {
	case Starting:
		return "STARTING"
	case Executing:
		return "EXECUTING"
	case Concluding:
		return "CONCLUDING"
	case Done:
		return "DONE"
	case Dropping:
		return "DROPPING"
	case ForceDropping:
		return "FORCE_DROPPING"
	default:
		return "WAITING"
	}
}

// ExecutingMode is the observable sub-state of an EXECUTING intention.
type ExecutingMode int

const (
	Idle ExecutingMode = iota
	RunningTask
	BusyWaitingOnExecutor
)

func (m ExecutingMode) String() string {
	switch m {
	case RunningTask:
		return "EXECUTING"
	case BusyWaitingOnExecutor:
		return "BUSY_WAITING_ON_EXECUTOR"
	default:
		return "IDLE"
	}
}

// TaskStatus is the tri-state completion of one task-DAG node.
type TaskStatus int

const (
	TaskPending TaskStatus = iota
	TaskSuccess
	TaskFail
)
