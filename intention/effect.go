package intention

import (
	"time"

	"bdi.dev/engine/handle"
	"bdi.dev/engine/message"
	"bdi.dev/engine/model"
)

// Effect is a side-effecting request a leaf task emits the first time
// it becomes ready; the owning agent turns it into the matching event
// (ACTION, TIMER, or PURSUE) and later calls Intention.Resolve with the
// TaskID once it completes.
type Effect interface {
	isEffect()
	TaskHandle() handle.Handle
}

// ActionEffect requests that the named action run with bindings.
type ActionEffect struct {
	TaskID   handle.Handle
	Name     string
	Bindings model.Bindings
}

func (e ActionEffect) isEffect()                  {}
func (e ActionEffect) TaskHandle() handle.Handle { return e.TaskID }

// SleepEffect requests that the agent's timer queue wake the task after
// Duration.
type SleepEffect struct {
	TaskID   handle.Handle
	Duration time.Duration
}

func (e SleepEffect) isEffect()                  {}
func (e SleepEffect) TaskHandle() handle.Handle { return e.TaskID }

// SubGoalEffect requests that a child desire be pursued for Goal, whose
// terminal result resolves this task.
type SubGoalEffect struct {
	TaskID     handle.Handle
	Goal       string
	Parameters message.Message
	Persistent bool
}

func (e SubGoalEffect) isEffect()                  {}
func (e SubGoalEffect) TaskHandle() handle.Handle { return e.TaskID }
