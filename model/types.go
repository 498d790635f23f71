package model

import (
	"bdi.dev/engine/handle"
)

// FailedCost is the A* sentinel cost meaning "this plan (or node) is
// infeasible". It is larger than any real plan cost but still
// finite so it can flow through ordinary float arithmetic without special
// casing +Inf.
const FailedCost = 1e18

// IsFailedCost reports whether cost should be treated as the infeasibility
// sentinel.
func IsFailedCost(cost float64) bool { return cost >= FailedCost }

// TacticPolicy enumerates how a tactic orders and retries candidate plans.
type TacticPolicy int

const (
	// PolicyExclude never retries a plan that has already FAILed for the
	// current desire.
	PolicyExclude TacticPolicy = iota
	// PolicyRoundRobin rotates the starting index across attempts.
	PolicyRoundRobin
	// PolicyStrict always tries plans in the tactic's fixed order.
	PolicyStrict
)

func (p TacticPolicy) String() string {
	switch p {
	case PolicyRoundRobin:
		return "RoundRobin"
	case PolicyStrict:
		return "Strict"
	default:
		return "Exclude"
	}
}

// Goal is an immutable goal template.
type Goal struct {
	Handle        handle.Handle
	Name          string
	MessageSchema string // empty means the goal takes no parameters message
	Satisfied     func(BeliefView) bool
	Drop          func(BeliefView) bool
	Heuristic     func(BeliefView) float64
}

// HeuristicOf evaluates g.Heuristic, defaulting to 0 (admissible) when unset.
func (g *Goal) HeuristicOf(view BeliefView) float64 {
	if g.Heuristic == nil {
		return 0
	}
	return g.Heuristic(view)
}

// IsSatisfied evaluates g.Satisfied, defaulting to false when unset.
func (g *Goal) IsSatisfied(view BeliefView) bool {
	if g.Satisfied == nil {
		return false
	}
	return g.Satisfied(view)
}

// ShouldDrop evaluates g.Drop, defaulting to false when unset.
func (g *Goal) ShouldDrop(view BeliefView) bool {
	if g.Drop == nil {
		return false
	}
	return g.Drop(view)
}

// ResourceUsage declares how much of a named resource a plan consumes
// while executing, and whether that consumption is exclusive (no other
// concurrently-scheduled intention may also lock it).
type ResourceUsage struct {
	Name      string
	Amount    int
	Exclusive bool
}

// Plan handles exactly one goal.
type Plan struct {
	Handle        handle.Handle
	Name          string
	Goal          string
	Precondition  func(*Projection, Bindings) bool
	Effects       func(*Projection, Bindings)
	Cost          func(*Projection, Bindings) float64
	ResourceUsage []ResourceUsage
	Body          Task
}

// PreconditionHolds evaluates p.Precondition, defaulting to true when unset.
func (p *Plan) PreconditionHolds(proj *Projection, b Bindings) bool {
	if p.Precondition == nil {
		return true
	}
	return p.Precondition(proj, b)
}

// ApplyEffects runs p.Effects against proj, a no-op when unset. Effects
// closures mutate only the hypothetical projection, never the real
// belief context, and therefore never emit a percept event.
func (p *Plan) ApplyEffects(proj *Projection, b Bindings) {
	if p.Effects == nil {
		return
	}
	p.Effects(proj, b)
}

// CostOf evaluates p.Cost, defaulting to a flat cost of 1 when unset.
func (p *Plan) CostOf(proj *Projection, b Bindings) float64 {
	if p.Cost == nil {
		return 1
	}
	return p.Cost(proj, b)
}

// ActionDef is a named, directly invocable leaf behavior.
type ActionDef struct {
	Handle  handle.Handle
	Name    string
	Handler ActionHandler
}

// ResourceDef declares a named bounded-integer resource's static bounds
//. Runtime state (current value, lock count) is held
// per-agent by the belief package, not here.
type ResourceDef struct {
	Handle handle.Handle
	Name   string
	Min    int
	Max    int
}

// Role controls which beliefset schemas flow between a team and a member.
type Role struct {
	Handle             handle.Handle
	Name               string
	ReadableBeliefsets []string
	WritableBeliefsets []string
}

// CanReadFromTeam reports whether this role lets its holder receive
// schema from the team it belongs to.
func (r *Role) CanReadFromTeam(schema string) bool {
	return containsStr(r.ReadableBeliefsets, schema)
}

// CanWriteToTeam reports whether this role lets its holder push schema up
// to the team it belongs to.
func (r *Role) CanWriteToTeam(schema string) bool {
	return containsStr(r.WritableBeliefsets, schema)
}

func containsStr(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Tactic scopes a plan-selection policy to one goal.
type Tactic struct {
	Handle       handle.Handle
	Name         string
	Goal         string
	AllowedPlans []string // plan names, in this tactic's candidate order
	Policy       TacticPolicy
}

// AgentTemplate is the immutable catalogue entry Engine.CreateAgent
// instantiates from. It aggregates the subset of registry-wide
// goals/plans/actions/resources/roles a given kind of agent uses, plus
// its default per-goal tactics and any legacy direct message handlers.
type AgentTemplate struct {
	Handle          handle.Handle
	Name            string
	Plans           map[string][]*Plan // goal name -> ordered candidate plans
	Actions         map[string]*ActionDef
	Resources       map[string]*ResourceDef
	Roles           []*Role
	DefaultTactics  map[string]*Tactic // goal name -> tactic
	MessageHandlers map[string]MessageHandler
	DirectHandlers  map[string]bool // schema -> deprecated_direct flag
	IsTeam          bool
	IsProxy         bool

	// pending* fields are authoring-time bookkeeping used by TemplateBuilder
	// to defer name resolution to Commit(); they carry no meaning once the
	// registry is committed.
	pendingPlanNames     []string
	pendingActionNames   []string
	pendingResourceNames []string
	pendingRoleNames     []string
	pendingTacticNames   []string
}

// PlansFor returns the candidate plan list for goal, or nil if the
// template has none.
func (t *AgentTemplate) PlansFor(goal string) []*Plan {
	return t.Plans[goal]
}

// TacticFor returns the active tactic for goal, or nil if none was set
// (the scheduler then falls back to authoring order, per PolicyStrict).
func (t *AgentTemplate) TacticFor(goal string) *Tactic {
	return t.DefaultTactics[goal]
}
