// Package engine provides the top-level Engine: the Runtime API's
// Engine.createAgent/start/poll/execute surface (spec §6), the sole owner
// of agents and the event allocator, and the inter-agent event router
// every Agent's Router field points back at.
package engine

import (
	"context"
	"sync"
	"time"

	"bdi.dev/engine/agent"
	"bdi.dev/engine/bdierrors"
	"bdi.dev/engine/bus"
	"bdi.dev/engine/clock"
	"bdi.dev/engine/handle"
	"bdi.dev/engine/model"
	"bdi.dev/engine/telemetry"
)

// Options configures a new Engine.
type Options struct {
	Registry *model.Registry
	Bus      bus.Adapter
	Clock    clock.Clock
	Logger   telemetry.Logger
	Metrics  telemetry.Metrics

	// Concurrency bounds how many agents are ticked in parallel by Poll.
	// Zero means unbounded (one goroutine per agent).
	Concurrency int
}

// membership tracks a team's current roster and, from each member's side,
// the teams it belongs to. Both directions are handle-only, per spec §9's
// "handle + engine lookup" resolution of what would otherwise be a cyclic
// team<->member reference.
type membership struct {
	teamMembers map[handle.Handle][]handle.Handle
	memberTeams map[handle.Handle][]handle.Handle
}

// Engine owns every Agent and the event allocator (spec §3 "Ownership
// summary": "The Engine exclusively owns agents and the event
// allocator"), routes inter-agent events, and refuses to start once any
// agent creation hit an unknown template (spec §7 CriticalBootstrapError).
type Engine struct {
	mu       sync.RWMutex
	registry *model.Registry
	bus      bus.Adapter
	clock    clock.Clock
	logger   telemetry.Logger
	metrics  telemetry.Metrics

	agents map[handle.Handle]*agent.Agent
	byName map[string]handle.Handle

	membership membership

	criticalError bool
	criticalFault error

	concurrency int

	runMu   sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New constructs an Engine. A nil Registry is replaced with a fresh,
// immediately-committed empty one so a zero-value Options{} is usable in
// tests that only exercise the router/lifecycle plumbing.
func New(opts Options) *Engine {
	reg := opts.Registry
	if reg == nil {
		reg = model.NewRegistry()
		reg.Commit()
	}
	busAdapter := opts.Bus
	if busAdapter == nil {
		busAdapter = bus.Noop{}
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = telemetry.NoopLogger{}
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NoopMetrics{}
	}
	return &Engine{
		registry: reg,
		bus:      busAdapter,
		clock:    clk,
		logger:   logger,
		metrics:  metrics,
		agents:   map[handle.Handle]*agent.Agent{},
		byName:   map[string]handle.Handle{},
		membership: membership{
			teamMembers: map[handle.Handle][]handle.Handle{},
			memberTeams: map[handle.Handle][]handle.Handle{},
		},
		concurrency: opts.Concurrency,
	}
}

// Registry exposes the engine's model registry, e.g. for authoring
// templates before any agent is created.
func (e *Engine) Registry() *model.Registry { return e.registry }

// CreateAgent instantiates a new Agent from the named template (spec §6
// "Engine.createAgent(template, name, id) -> AgentHandle"). It returns nil
// when the template is unknown, and permanently sets the engine's critical
// error flag so Start refuses to run (spec §7 CriticalBootstrapError). A
// zero id generates a fresh one.
func (e *Engine) CreateAgent(templateName, name string, id handle.Handle) *agent.Agent {
	e.mu.Lock()
	defer e.mu.Unlock()

	tmpl, ok := e.registry.Template(templateName)
	if !ok {
		e.criticalError = true
		e.criticalFault = bdierrors.Newf(bdierrors.KindCriticalBootstrap, "engine: unknown agent template %q", templateName)
		e.logger.Error(context.Background(), "refusing agent creation: unknown template", "template", templateName)
		return nil
	}

	h := id
	if !h.Valid() {
		h = handle.New(name)
	} else {
		h = handle.WithID(name, h.ID)
	}

	a := agent.New(h, tmpl, e.registry, e.bus, e.clock, e, e.logger)
	e.agents[h] = a
	e.byName[name] = h
	return a
}

// Agent looks up a previously created agent by handle.
func (e *Engine) Agent(h handle.Handle) (*agent.Agent, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, ok := e.agents[h]
	return a, ok
}

// AgentByName looks up a previously created agent by its registration name.
func (e *Engine) AgentByName(name string) (*agent.Agent, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	h, ok := e.byName[name]
	if !ok {
		return nil, false
	}
	a, ok := e.agents[h]
	return a, ok
}

// Agents returns every live agent handle, in no particular order.
func (e *Engine) Agents() []handle.Handle {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]handle.Handle, 0, len(e.agents))
	for h := range e.agents {
		out = append(out, h)
	}
	return out
}

// AddMember enrolls member onto team's roster in both directions, and
// pushes the team's updated membership so its scheduler picks up the new
// delegate candidate (spec §4.6 candidate set) and its belief relay picks
// up the new fan-out target (spec §4.7).
func (e *Engine) AddMember(team, member handle.Handle) {
	e.mu.Lock()
	e.membership.teamMembers[team] = appendUnique(e.membership.teamMembers[team], member)
	e.membership.memberTeams[member] = appendUnique(e.membership.memberTeams[member], team)
	members := append([]handle.Handle(nil), e.membership.teamMembers[team]...)
	teamAgent, ok := e.agents[team]
	e.mu.Unlock()
	if ok {
		teamAgent.SetMembers(members)
	}
}

// RemoveMember strikes member from team's roster in both directions.
func (e *Engine) RemoveMember(team, member handle.Handle) {
	e.mu.Lock()
	e.membership.teamMembers[team] = removeHandle(e.membership.teamMembers[team], member)
	e.membership.memberTeams[member] = removeHandle(e.membership.memberTeams[member], team)
	members := append([]handle.Handle(nil), e.membership.teamMembers[team]...)
	teamAgent, ok := e.agents[team]
	e.mu.Unlock()
	if ok {
		teamAgent.SetMembers(members)
	}
}

func appendUnique(list []handle.Handle, h handle.Handle) []handle.Handle {
	for _, existing := range list {
		if existing.Equal(h) {
			return list
		}
	}
	return append(list, h)
}

func removeHandle(list []handle.Handle, h handle.Handle) []handle.Handle {
	out := list[:0:0]
	for _, existing := range list {
		if !existing.Equal(h) {
			out = append(out, existing)
		}
	}
	return out
}

// GetStatus returns 0 when the engine is healthy, non-zero once a
// critical bootstrap error has occurred (spec §6 exit codes).
func (e *Engine) GetStatus() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.criticalError {
		return 1
	}
	return 0
}

// CriticalFault returns the fault that tripped the critical error flag,
// if any.
func (e *Engine) CriticalFault() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.criticalFault
}

// now is a small indirection so Start/Poll/Execute share one clock read
// path regardless of which Clock implementation is configured.
func (e *Engine) now() time.Time { return e.clock.Now() }
