// Package agent wires the event dispatcher, belief context, A* scheduler,
// intention executor, timer queue, and delegation/auction bookkeeping into
// the single per-agent reasoning loop: Tick. Every subsystem it owns is
// touched from exactly one goroutine at a time (the goroutine currently
// running Tick, or a foreign caller briefly taking apiMu to publish a
// PURSUE/DROP event); the event Queue is the only structure other
// goroutines reach into directly.
package agent

import (
	"context"
	"sync"

	"bdi.dev/engine/auction"
	"bdi.dev/engine/belief"
	"bdi.dev/engine/bus"
	"bdi.dev/engine/clock"
	"bdi.dev/engine/event"
	"bdi.dev/engine/handle"
	"bdi.dev/engine/intention"
	"bdi.dev/engine/message"
	"bdi.dev/engine/model"
	"bdi.dev/engine/promise"
	"bdi.dev/engine/schedule"
	"bdi.dev/engine/telemetry"
)

// Router forwards an event to the agent it's addressed to and answers
// delegate-candidate queries for a team. The engine is the only production
// implementation; tests substitute a narrower fake.
type Router interface {
	// Route delivers ev to the agent named by ev.Recipient(). Delivery is
	// best-effort: an unknown recipient is a logged TransportLoss, not an
	// error returned to the caller.
	Route(ev event.Event)
	// TeamMembers returns the live member handles of the team identified
	// by teamHandle, or nil if teamHandle is not a team.
	TeamMembers(teamHandle handle.Handle) []handle.Handle
	// MemberTeams returns every team handle the given member belongs to.
	MemberTeams(member handle.Handle) []handle.Handle
	// MemberRoles returns the roles a given agent's template carries,
	// consulted by the shared-belief relay to decide what a team may push
	// down to or accept up from a particular member.
	MemberRoles(member handle.Handle) []*model.Role
}

// desire is the agent-local bookkeeping record for one adopted goal
// instance (spec §3 Desire). It embeds the scheduler's lighter-weight
// schedule.Desire so the same record flows into the planner without
// copying.
type desire struct {
	schedule.Desire

	Promise           *promise.Promise
	ParentIntentionID handle.Handle
	ParentTaskID      handle.Handle
}

// currentAction is a locally-handled ACTION still live in current_actions
// (its handler returned PENDING).
type currentAction struct {
	ReplyTo       handle.Handle // agent owning the intention; self if not forwarded
	IntentionID   handle.Handle
	TaskID        handle.Handle
	ActionName    string
	ResourceUsage []model.ResourceUsage
	Resolved      bool
	Status        model.ActionStatus
	Result        message.Message
}

// Agent is a runtime instance of a model.AgentTemplate: the BDI engine's
// unit of concurrency. Team and proxy agents are the same struct with
// IsTeam/IsProxy capability flags (spec §9 "no open inheritance required").
type Agent struct {
	Handle   handle.Handle
	Template *model.AgentTemplate
	Registry *model.Registry

	Belief *belief.Context
	Timers *clock.Queue
	Clock  clock.Clock
	Bus    bus.Adapter
	Logger telemetry.Logger
	Router Router

	apiMu sync.Mutex
	queue *event.Queue

	state           State
	backlogCount    int
	backlogWarned   bool
	backlogged      []event.Event

	desires     map[handle.Handle]*desire
	intentions  map[handle.Handle]*intention.Intention
	insertionSeq int

	currentActions map[handle.Handle]*currentAction // keyed by taskID

	activeTactics map[string]string // goal name -> tactic name override

	planner       *schedule.Planner
	scheduleDirty event.DirtyFlag

	// auctions is populated only on team agents: scheduleID -> in-flight
	// auction this agent initiated.
	auctions map[handle.Handle]*auction.Auction
	// backlog is populated only on member agents being analysed:
	// scheduleID -> the sandbox entry being scored.
	backlog map[handle.Handle]*auction.BacklogEntry

	// attachedServices maps a template name to the service agent handle
	// currently attached for it (spec §6 "one service per template type
	// per agent").
	attachedServices map[string]handle.Handle

	members []handle.Handle // team only: current roster

	// fanoutSeen tracks, per schema then owner, the UpdatedAt last
	// forwarded to the rest of the team, so fanOutToMembers only resends
	// entries that actually changed.
	fanoutSeen map[string]map[handle.Handle]int64
}

// New constructs an Agent instance from tmpl, ready to receive events but
// not yet RUNNING.
func New(h handle.Handle, tmpl *model.AgentTemplate, reg *model.Registry, busAdapter bus.Adapter, clk clock.Clock, router Router, logger telemetry.Logger) *Agent {
	if busAdapter == nil {
		busAdapter = bus.Noop{}
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	if logger == nil {
		logger = telemetry.NoopLogger{}
	}
	a := &Agent{
		Handle:           h,
		Template:         tmpl,
		Registry:         reg,
		Belief:           belief.New(),
		Timers:           clock.NewQueue(),
		Clock:            clk,
		Bus:              busAdapter,
		Logger:           logger,
		Router:           router,
		queue:            event.NewQueue(),
		state:            Created,
		desires:          map[handle.Handle]*desire{},
		intentions:       map[handle.Handle]*intention.Intention{},
		currentActions:   map[handle.Handle]*currentAction{},
		activeTactics:    map[string]string{},
		auctions:         map[handle.Handle]*auction.Auction{},
		backlog:          map[handle.Handle]*auction.BacklogEntry{},
		attachedServices: map[string]handle.Handle{},
		fanoutSeen:       map[string]map[handle.Handle]int64{},
	}
	for _, def := range tmpl.Resources {
		a.Belief.DefineResource(def)
	}
	return a
}

// State reports the agent's current lifecycle state.
func (a *Agent) State() State {
	a.apiMu.Lock()
	defer a.apiMu.Unlock()
	return a.state
}

// IsTeam reports whether this agent's template marks it as team-capable.
func (a *Agent) IsTeam() bool { return a.Template.IsTeam }

// IsProxy reports whether this agent's template marks it as a proxy.
func (a *Agent) IsProxy() bool { return a.Template.IsProxy }

// SetMembers replaces the team's member roster (engine-driven, called when
// agents register against this team).
func (a *Agent) SetMembers(members []handle.Handle) {
	a.members = members
	a.raiseLocked(event.NewScheduleEvent(a.Handle, event.DirtyMemberRemoved))
}

// Start requests the RUNNING transition.
func (a *Agent) Start() { a.pushControl(event.ControlStart) }

// Stop requests the STOPPING transition.
func (a *Agent) Stop() { a.pushControl(event.ControlStop) }

// Pause requests the PAUSED transition.
func (a *Agent) Pause() { a.pushControl(event.ControlPause) }

// Resume requests the RUNNING transition from PAUSED.
func (a *Agent) Resume() { a.pushControl(event.ControlResume) }

func (a *Agent) pushControl(cmd event.ControlCommand) {
	a.apiMu.Lock()
	defer a.apiMu.Unlock()
	a.queue.Push(event.NewControlEvent(a.Handle, cmd))
}

// Pursue adopts or merges a desire for goal, returning its handle and a
// Promise resolved exactly once with the goal's terminal result. This is
// the foreign-caller entry point (spec §6 Agent.pursue); id, when the zero
// Handle, is generated fresh.
func (a *Agent) Pursue(goal string, persistent bool, params message.Message, id handle.Handle) (handle.Handle, *promise.Promise) {
	a.apiMu.Lock()
	defer a.apiMu.Unlock()
	ev := event.NewPursueEvent(a.Handle, goal, params, persistent)
	if id.Valid() {
		ev = ev.WithID(id)
	}
	a.queue.Push(ev)
	return ev.ID(), ev.Promise
}

// Drop requests recursive cancellation of target's intention tree.
func (a *Agent) Drop(target handle.Handle, reason string) {
	a.apiMu.Lock()
	defer a.apiMu.Unlock()
	a.queue.Push(event.NewDropEvent(a.Handle, target, event.DropNormal, reason))
}

// SelectTactic requests a tactic switch for the goal it's scoped to in the
// registry.
func (a *Agent) SelectTactic(name string) error {
	t, ok := a.Registry.Tactic(name)
	if !ok {
		return errTacticNotFound(name)
	}
	a.apiMu.Lock()
	defer a.apiMu.Unlock()
	a.queue.Push(event.NewTacticEvent(a.Handle, t.Goal, name))
	return nil
}

// AttachService attaches svc (running the named template's actions) to this
// agent. force replaces any existing attachment for the same template name;
// without force, an existing attachment of the same template is a no-op
// returning false.
func (a *Agent) AttachService(svc handle.Handle, templateName string, force bool) bool {
	a.apiMu.Lock()
	defer a.apiMu.Unlock()
	if existing, ok := a.attachedServices[templateName]; ok {
		if !force {
			return false
		}
		_ = existing
	}
	a.attachedServices[templateName] = svc
	return true
}

// DetachService removes any service attached under templateName.
func (a *Agent) DetachService(templateName string) {
	a.apiMu.Lock()
	defer a.apiMu.Unlock()
	delete(a.attachedServices, templateName)
}

// anyAttachedService returns one currently-attached service handle, used
// by handleAction to forward an action this agent's own template doesn't
// handle. attachedServices is keyed by service template type so a second
// AttachService call for the same type replaces rather than duplicates
// (spec §6 "one service per template type per agent"); unhandled-action
// routing itself doesn't disambiguate between distinct attached types,
// since the spec names no rule for picking among several.
func (a *Agent) anyAttachedService() (handle.Handle, bool) {
	for _, svc := range a.attachedServices {
		return svc, true
	}
	return handle.Handle{}, false
}

// Raise enqueues an externally-constructed event, used by the engine
// router to deliver cross-agent traffic (MESSAGE, DELEGATION, AUCTION,
// SHARE_BELIEFSET, ACTION forwarded to an attached service, ...).
func (a *Agent) Raise(ev event.Event) {
	a.apiMu.Lock()
	defer a.apiMu.Unlock()
	a.raiseLocked(ev)
}

func (a *Agent) raiseLocked(ev event.Event) {
	a.queue.Push(ev)
}

// HasEvents reports whether any event is currently queued, used by
// Engine.Execute's idle check.
func (a *Agent) HasEvents() bool { return a.queue.Len() > 0 }

// Desires returns the live desire handles, in no particular order.
func (a *Agent) Desires() []handle.Handle {
	out := make([]handle.Handle, 0, len(a.desires))
	for h := range a.desires {
		out = append(out, h)
	}
	return out
}

// Executing reports whether this agent currently has at least one live
// intention running a plan body, the coarse signal the engine's Poll
// stats use to report agents_executing (spec §4.5 ExecutingMode).
func (a *Agent) Executing() bool { return len(a.intentions) > 0 }

// Intentions returns the live intention handles, in no particular order.
func (a *Agent) Intentions() []handle.Handle {
	out := make([]handle.Handle, 0, len(a.intentions))
	for h := range a.intentions {
		out = append(out, h)
	}
	return out
}

func (a *Agent) publish(ctx context.Context, payload any, recipient handle.Handle) {
	if a.Bus == nil {
		return
	}
	if err := a.Bus.Publish(ctx, bus.Envelope{
		Sender:    a.Handle,
		Recipient: recipient,
		At:        a.Clock.Now(),
		Payload:   payload,
	}); err != nil {
		a.Logger.Warn(ctx, "bus publish failed", "error", err, "agent", a.Handle.String())
	}
}

func (a *Agent) bdiLog(ctx context.Context, kind bus.LogKind, level bus.Level, desire handle.Handle, detail string) {
	a.publish(ctx, bus.BDILogPayload{Kind: kind, Level: level, Desire: desire, Detail: detail}, handle.Handle{})
}

func (a *Agent) nextInsertionOrder() int {
	a.insertionSeq++
	return a.insertionSeq
}
