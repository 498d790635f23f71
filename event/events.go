package event

import (
	"time"

	"bdi.dev/engine/handle"
	"bdi.dev/engine/message"
	"bdi.dev/engine/model"
	"bdi.dev/engine/promise"
)

// TimerEvent requests that the dispatcher push a sleep onto the agent's
// timer heap. IntentionID/TaskID identify the Sleep
// task to resume when the timer fires.
type TimerEvent struct {
	Envelope
	Duration   time.Duration
	IntentionID handle.Handle
	TaskID     handle.Handle
}

// NewTimerEvent constructs a TimerEvent raised by caller for the named
// Sleep task.
func NewTimerEvent(caller, intentionID, taskID handle.Handle, d time.Duration) *TimerEvent {
	return &TimerEvent{Envelope: newEnvelope(Timer, caller), Duration: d, IntentionID: intentionID, TaskID: taskID}
}

// ControlCommand enumerates the agent service state transitions handled
// by the common service state machine.
type ControlCommand int

const (
	ControlStart ControlCommand = iota
	ControlStop
	ControlPause
	ControlResume
)

// ControlEvent requests an agent lifecycle transition.
type ControlEvent struct {
	Envelope
	Command ControlCommand
}

// NewControlEvent constructs a ControlEvent.
func NewControlEvent(caller handle.Handle, cmd ControlCommand) *ControlEvent {
	return &ControlEvent{Envelope: newEnvelope(Control, caller), Command: cmd}
}

// MessageEvent delivers a message into the belief context under its
// schema name.
type MessageEvent struct {
	Envelope
	Msg              message.Message
	DeprecatedDirect bool
}

// NewMessageEvent constructs a MessageEvent.
func NewMessageEvent(caller handle.Handle, msg message.Message, deprecatedDirect bool) *MessageEvent {
	return &MessageEvent{Envelope: newEnvelope(Message, caller), Msg: msg, DeprecatedDirect: deprecatedDirect}
}

// TacticEvent switches the active tactic for a goal.
type TacticEvent struct {
	Envelope
	Goal   string
	Tactic string // tactic name, resolved against the template/registry
}

// NewTacticEvent constructs a TacticEvent.
func NewTacticEvent(caller handle.Handle, goal, tactic string) *TacticEvent {
	return &TacticEvent{Envelope: newEnvelope(Tactic, caller), Goal: goal, Tactic: tactic}
}

// ActionEvent requests that a locally-handled action run. The dispatcher locks ResourceUsage and invokes the handler;
// a Pending status leaves it live in current_actions.
type ActionEvent struct {
	Envelope
	IntentionID handle.Handle
	TaskID      handle.Handle
	ActionName  string
	Bindings    model.Bindings
}

// NewActionEvent constructs an ActionEvent.
func NewActionEvent(caller, intentionID, taskID handle.Handle, actionName string, bindings model.Bindings) *ActionEvent {
	return &ActionEvent{Envelope: newEnvelope(Action, caller), IntentionID: intentionID, TaskID: taskID, ActionName: actionName, Bindings: bindings}
}

// ActionCompleteEvent routes a finished action back to its owning
// intention task by (IntentionID, TaskID).
type ActionCompleteEvent struct {
	Envelope
	IntentionID handle.Handle
	TaskID      handle.Handle
	Status      model.ActionStatus
	Result      message.Message
}

// NewActionCompleteEvent constructs an ActionCompleteEvent.
func NewActionCompleteEvent(caller, intentionID, taskID handle.Handle, status model.ActionStatus, result message.Message) *ActionCompleteEvent {
	return &ActionCompleteEvent{Envelope: newEnvelope(ActionComplete, caller), IntentionID: intentionID, TaskID: taskID, Status: status, Result: result}
}

// PerceptEvent applies a payload to a named belief field, either a stored
// message (schema-addressed) or a resource delta.
type PerceptEvent struct {
	Envelope
	Field         string
	Msg           message.Message // set for schema-addressed percepts
	ResourceDelta int             // set for resource percepts
	IsResource    bool
}

// NewMessagePerceptEvent constructs a PerceptEvent that stores msg under
// its own schema name.
func NewMessagePerceptEvent(caller handle.Handle, msg message.Message) *PerceptEvent {
	return &PerceptEvent{Envelope: newEnvelope(Percept, caller), Field: msg.SchemaName(), Msg: msg}
}

// NewResourcePerceptEvent constructs a PerceptEvent that adjusts a named
// resource by delta.
func NewResourcePerceptEvent(caller handle.Handle, resource string, delta int) *PerceptEvent {
	return &PerceptEvent{Envelope: newEnvelope(Percept, caller), Field: resource, ResourceDelta: delta, IsResource: true}
}

// PursueEvent requests that the agent adopt or merge a desire for goal
//. Promise is
// resolved exactly once with the goal's eventual terminal result.
type PursueEvent struct {
	Envelope
	Goal               string
	Parameters         message.Message
	Persistent         bool
	ParentIntentionID  handle.Handle
	ParentTaskID       handle.Handle
	Promise            *promise.Promise
}

// NewPursueEvent constructs a PursueEvent with a freshly generated event
// id; callers that need to merge-by-id override it with an existing
// desire's id via WithID.
func NewPursueEvent(caller handle.Handle, goal string, params message.Message, persistent bool) *PursueEvent {
	return &PursueEvent{Envelope: newEnvelope(Pursue, caller), Goal: goal, Parameters: params, Persistent: persistent, Promise: promise.New()}
}

// WithID returns a copy of p whose event id is overridden, used for the
// merge-by-id path.
func (p *PursueEvent) WithID(id handle.Handle) *PursueEvent {
	cp := *p
	cp.Envelope.id = id
	return &cp
}

// DropMode selects how the drop protocol tears down an intention.
type DropMode int

const (
	DropNormal DropMode = iota
	DropForce
)

// DropEvent requests recursive cancellation of a desire's intention tree.
type DropEvent struct {
	Envelope
	Target handle.Handle
	Mode   DropMode
}

// NewDropEvent constructs a DropEvent.
func NewDropEvent(caller, target handle.Handle, mode DropMode, reason string) *DropEvent {
	return &DropEvent{Envelope: newEnvelope(Drop, caller).WithReason(reason), Target: target, Mode: mode}
}

// ScheduleEvent carries one or more ScheduleDirty bits into the
// dispatcher, marking the scheduler's re-planning bitset.
type ScheduleEvent struct {
	Envelope
	Dirty DirtyFlag
}

// NewScheduleEvent constructs a ScheduleEvent.
func NewScheduleEvent(caller handle.Handle, dirty DirtyFlag) *ScheduleEvent {
	return &ScheduleEvent{Envelope: newEnvelope(Schedule, caller), Dirty: dirty}
}

// AuctionBid is one candidate's response to a Delegation(analyse=true).
type AuctionBid struct {
	Member handle.Handle
	Score  float64
	Status model.ActionStatus
}

// AuctionEvent both raises bids to the initiator and, once closed,
// carries the accumulated bids to the schedule for winner selection.
type AuctionEvent struct {
	Envelope
	ScheduleID handle.Handle
	Bids       []AuctionBid
	Missing    int
}

// NewAuctionEvent constructs an AuctionEvent.
func NewAuctionEvent(caller, scheduleID handle.Handle, bids []AuctionBid, missing int) *AuctionEvent {
	return &AuctionEvent{Envelope: newEnvelope(Auction, caller), ScheduleID: scheduleID, Bids: bids, Missing: missing}
}

// DelegationEvent is sent to a candidate team member, either to analyse
// (bid) or to execute the winning goal.
type DelegationEvent struct {
	Envelope
	Analyse    bool
	ScheduleID handle.Handle
	Goal       string
	Parameters message.Message
	Promise    *promise.Promise
}

// NewDelegationEvent constructs a DelegationEvent addressed to a single
// candidate member via recipient.
func NewDelegationEvent(caller, recipient, scheduleID handle.Handle, goal string, params message.Message, analyse bool) *DelegationEvent {
	return &DelegationEvent{
		Envelope:   newEnvelope(Delegation, caller).WithRecipient(recipient),
		Analyse:    analyse,
		ScheduleID: scheduleID,
		Goal:       goal,
		Parameters: params,
		Promise:    promise.New(),
	}
}

// ShareBeliefSetEvent upserts a shared belief entry on the receiving team
// or member.
type ShareBeliefSetEvent struct {
	Envelope
	Schema    string
	Owner     handle.Handle
	Msg       message.Message
	UpdatedAt int64 // unix millis
}

// NewShareBeliefSetEvent constructs a ShareBeliefSetEvent.
func NewShareBeliefSetEvent(caller, owner handle.Handle, schema string, msg message.Message, updatedAt int64) *ShareBeliefSetEvent {
	return &ShareBeliefSetEvent{Envelope: newEnvelope(ShareBeliefSet, caller), Schema: schema, Owner: owner, Msg: msg, UpdatedAt: updatedAt}
}

// RegisterEvent requests that the engine instantiate a new agent from a
// template; the agent dispatcher never handles this itself.
type RegisterEvent struct {
	Envelope
	Template string
	Name     string
	Team     handle.Handle
}

// NewRegisterEvent constructs a RegisterEvent.
func NewRegisterEvent(caller handle.Handle, template, name string, team handle.Handle) *RegisterEvent {
	return &RegisterEvent{Envelope: newEnvelope(Register, caller), Template: template, Name: name, Team: team}
}
