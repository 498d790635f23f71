package intention

import (
	"bdi.dev/engine/handle"
	"bdi.dev/engine/message"
	"bdi.dev/engine/model"
)

// frame is one live node of a plan body's task DAG. Composite frames (Cond/Sequence/Parallel)
// delegate to their children; leaf frames (Action/Sleep/SubGoal) emit
// exactly one Effect the first time they are reached and then wait for
// an external Resolve call.
type frame struct {
	task model.Task

	status     TaskStatus
	dispatched bool          // leaf only: effect already emitted
	taskID     handle.Handle // leaf only: identity used by Resolve

	// SequenceTask
	seqChildren []*frame
	seqIdx      int

	// ParallelTask
	parChildren []*frame

	// CondTask: Then/Else are mutually exclusive, so the chosen branch's
	// frame is built lazily once the predicate resolves.
	branch    *frame
	evaluated bool
}

// newFrame builds f (and, eagerly, every Sequence/Parallel descendant)
// registering each leaf's taskID into leaves so Resolve can find it
// later. Cond branches register into the same leaves map once chosen.
func newFrame(t model.Task, leaves map[handle.Handle]*frame) *frame {
	f := &frame{task: t}
	switch tt := t.(type) {
	case model.ActionTask, model.SleepTask, model.SubGoalTask:
		f.taskID = handle.New("task")
		leaves[f.taskID] = f
	case model.SequenceTask:
		f.seqChildren = make([]*frame, len(tt.Tasks))
		for i, child := range tt.Tasks {
			f.seqChildren[i] = newFrame(child, leaves)
		}
	case model.ParallelTask:
		f.parChildren = make([]*frame, len(tt.Tasks))
		for i, child := range tt.Tasks {
			f.parChildren[i] = newFrame(child, leaves)
		}
	}
	return f
}

// advance walks f, emitting at most one Effect per unvisited leaf into
// effects, and returns f's (possibly still-pending) status. leaves
// receives any frame newly created while resolving a Cond branch.
func (f *frame) advance(belief model.BeliefView, bindings model.Bindings, effects *[]Effect, leaves map[handle.Handle]*frame) TaskStatus {
	if f.status != TaskPending {
		return f.status
	}

	switch t := f.task.(type) {
	case model.ActionTask:
		if !f.dispatched {
			f.dispatched = true
			*effects = append(*effects, ActionEffect{TaskID: f.taskID, Name: t.Name, Bindings: bindings})
		}
		return TaskPending

	case model.SleepTask:
		if !f.dispatched {
			f.dispatched = true
			*effects = append(*effects, SleepEffect{TaskID: f.taskID, Duration: t.Duration})
		}
		return TaskPending

	case model.SubGoalTask:
		if !f.dispatched {
			f.dispatched = true
			var params message.Message
			if t.ParamsFn != nil {
				params = t.ParamsFn(bindings)
			}
			*effects = append(*effects, SubGoalEffect{TaskID: f.taskID, Goal: t.Goal, Parameters: params, Persistent: t.Persistent})
		}
		return TaskPending

	case model.CondTask:
		if !f.evaluated {
			f.evaluated = true
			var chosen model.Task
			if t.Predicate == nil || t.Predicate(belief, bindings) {
				chosen = t.Then
			} else {
				chosen = t.Else
			}
			if chosen == nil {
				f.status = TaskSuccess
				return TaskSuccess
			}
			f.branch = newFrame(chosen, leaves)
		}
		if f.branch == nil {
			f.status = TaskSuccess
			return TaskSuccess
		}
		st := f.branch.advance(belief, bindings, effects, leaves)
		if st != TaskPending {
			f.status = st
		}
		return st

	case model.SequenceTask:
		for f.seqIdx < len(f.seqChildren) {
			st := f.seqChildren[f.seqIdx].advance(belief, bindings, effects, leaves)
			if st == TaskPending {
				return TaskPending
			}
			if st == TaskFail {
				f.status = TaskFail
				return TaskFail
			}
			f.seqIdx++
		}
		f.status = TaskSuccess
		return TaskSuccess

	case model.ParallelTask:
		anyPending, anyFail := false, false
		for _, child := range f.parChildren {
			st := child.advance(belief, bindings, effects, leaves)
			if st == TaskPending {
				anyPending = true
			} else if st == TaskFail {
				anyFail = true
			}
		}
		if anyFail {
			f.status = TaskFail
			return TaskFail
		}
		if anyPending {
			return TaskPending
		}
		f.status = TaskSuccess
		return TaskSuccess

	default:
		f.status = TaskSuccess
		return TaskSuccess
	}
}
