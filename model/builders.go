package model

import "fmt"

// The builders below implement the model authoring API:
//
//	goal(name).message(schema).satisfied(fn).drop(fn).heuristic(fn).commit()
//	plan(name).handles(goal).pre(fn).effects(fn).body(coroutine).commit()
//	tactic(name).goal(goal).plans([...]).commit()
//	role(name).reads(...).writes(...).commit()
//	resource(name).min(x).max(y).commit()
//	template(name).plans(...).handleAction(name).handleMessage(schema, fn).commit()
//
// Each builder is a thin fluent wrapper that mutates a not-yet-registered
// value and inserts it into the Registry on Commit, returning an error if
// the registry itself was already committed or the definition is invalid.
// Unlike a compile-time "eval" DSL that defers all validation to a
// separate eval pass, these builders validate eagerly: there is no
// codegen step in this engine to defer to.

type GoalBuilder struct {
	reg  *Registry
	goal *Goal
}

func (b *GoalBuilder) Message(schema string) *GoalBuilder   { b.goal.MessageSchema = schema; return b }
func (b *GoalBuilder) Satisfied(fn func(BeliefView) bool) *GoalBuilder {
	b.goal.Satisfied = fn
	return b
}
func (b *GoalBuilder) Drop(fn func(BeliefView) bool) *GoalBuilder { b.goal.Drop = fn; return b }
func (b *GoalBuilder) Heuristic(fn func(BeliefView) float64) *GoalBuilder {
	b.goal.Heuristic = fn
	return b
}

func (b *GoalBuilder) Commit() (*Goal, error) {
	b.reg.mu.Lock()
	defer b.reg.mu.Unlock()
	if err := b.reg.checkOpen(); err != nil {
		return nil, err
	}
	if b.goal.Name == "" {
		return nil, fmt.Errorf("model: goal name cannot be empty")
	}
	if _, dup := b.reg.goals[b.goal.Name]; dup {
		return nil, fmt.Errorf("model: goal %q already registered", b.goal.Name)
	}
	b.reg.goals[b.goal.Name] = b.goal
	return b.goal, nil
}

type PlanBuilder struct {
	reg  *Registry
	plan *Plan
}

func (b *PlanBuilder) Handles(goal string) *PlanBuilder { b.plan.Goal = goal; return b }
func (b *PlanBuilder) Pre(fn func(*Projection, Bindings) bool) *PlanBuilder {
	b.plan.Precondition = fn
	return b
}
func (b *PlanBuilder) Effects(fn func(*Projection, Bindings)) *PlanBuilder {
	b.plan.Effects = fn
	return b
}
func (b *PlanBuilder) Cost(fn func(*Projection, Bindings) float64) *PlanBuilder {
	b.plan.Cost = fn
	return b
}
func (b *PlanBuilder) Requires(usage ResourceUsage) *PlanBuilder {
	b.plan.ResourceUsage = append(b.plan.ResourceUsage, usage)
	return b
}
func (b *PlanBuilder) Body(t Task) *PlanBuilder { b.plan.Body = t; return b }

func (b *PlanBuilder) Commit() (*Plan, error) {
	b.reg.mu.Lock()
	defer b.reg.mu.Unlock()
	if err := b.reg.checkOpen(); err != nil {
		return nil, err
	}
	if b.plan.Name == "" {
		return nil, fmt.Errorf("model: plan name cannot be empty")
	}
	if b.plan.Goal == "" {
		return nil, fmt.Errorf("model: plan %q must declare Handles(goal)", b.plan.Name)
	}
	if b.plan.Body == nil {
		return nil, fmt.Errorf("model: plan %q must declare a Body", b.plan.Name)
	}
	if _, dup := b.reg.plans[b.plan.Name]; dup {
		return nil, fmt.Errorf("model: plan %q already registered", b.plan.Name)
	}
	b.reg.plans[b.plan.Name] = b.plan
	return b.plan, nil
}

type ActionBuilder struct {
	reg    *Registry
	action *ActionDef
}

func (b *ActionBuilder) Commit() (*ActionDef, error) {
	b.reg.mu.Lock()
	defer b.reg.mu.Unlock()
	if err := b.reg.checkOpen(); err != nil {
		return nil, err
	}
	if b.action.Name == "" {
		return nil, fmt.Errorf("model: action name cannot be empty")
	}
	if b.action.Handler == nil {
		return nil, fmt.Errorf("model: action %q must have a handler", b.action.Name)
	}
	if _, dup := b.reg.actions[b.action.Name]; dup {
		return nil, fmt.Errorf("model: action %q already registered", b.action.Name)
	}
	b.reg.actions[b.action.Name] = b.action
	return b.action, nil
}

type ResourceBuilder struct {
	reg *Registry
	def *ResourceDef
}

func (b *ResourceBuilder) Min(v int) *ResourceBuilder { b.def.Min = v; return b }
func (b *ResourceBuilder) Max(v int) *ResourceBuilder { b.def.Max = v; return b }

func (b *ResourceBuilder) Commit() (*ResourceDef, error) {
	b.reg.mu.Lock()
	defer b.reg.mu.Unlock()
	if err := b.reg.checkOpen(); err != nil {
		return nil, err
	}
	if b.def.Name == "" {
		return nil, fmt.Errorf("model: resource name cannot be empty")
	}
	if b.def.Min > b.def.Max {
		return nil, fmt.Errorf("model: resource %q has min %d > max %d", b.def.Name, b.def.Min, b.def.Max)
	}
	if _, dup := b.reg.resources[b.def.Name]; dup {
		return nil, fmt.Errorf("model: resource %q already registered", b.def.Name)
	}
	b.reg.resources[b.def.Name] = b.def
	return b.def, nil
}

type RoleBuilder struct {
	reg  *Registry
	role *Role
}

func (b *RoleBuilder) Reads(schemas ...string) *RoleBuilder {
	b.role.ReadableBeliefsets = append(b.role.ReadableBeliefsets, schemas...)
	return b
}
func (b *RoleBuilder) Writes(schemas ...string) *RoleBuilder {
	b.role.WritableBeliefsets = append(b.role.WritableBeliefsets, schemas...)
	return b
}

func (b *RoleBuilder) Commit() (*Role, error) {
	b.reg.mu.Lock()
	defer b.reg.mu.Unlock()
	if err := b.reg.checkOpen(); err != nil {
		return nil, err
	}
	if b.role.Name == "" {
		return nil, fmt.Errorf("model: role name cannot be empty")
	}
	if _, dup := b.reg.roles[b.role.Name]; dup {
		return nil, fmt.Errorf("model: role %q already registered", b.role.Name)
	}
	b.reg.roles[b.role.Name] = b.role
	return b.role, nil
}

type TacticBuilder struct {
	reg    *Registry
	tactic *Tactic
}

func (b *TacticBuilder) Goal(goal string) *TacticBuilder { b.tactic.Goal = goal; return b }
func (b *TacticBuilder) Plans(names ...string) *TacticBuilder {
	b.tactic.AllowedPlans = append(b.tactic.AllowedPlans, names...)
	return b
}
func (b *TacticBuilder) Policy(p TacticPolicy) *TacticBuilder { b.tactic.Policy = p; return b }

func (b *TacticBuilder) Commit() (*Tactic, error) {
	b.reg.mu.Lock()
	defer b.reg.mu.Unlock()
	if err := b.reg.checkOpen(); err != nil {
		return nil, err
	}
	if b.tactic.Name == "" {
		return nil, fmt.Errorf("model: tactic name cannot be empty")
	}
	if b.tactic.Goal == "" {
		return nil, fmt.Errorf("model: tactic %q must declare Goal(goal)", b.tactic.Name)
	}
	if len(b.tactic.AllowedPlans) == 0 {
		return nil, fmt.Errorf("model: tactic %q must allow at least one plan", b.tactic.Name)
	}
	if _, dup := b.reg.tactics[b.tactic.Name]; dup {
		return nil, fmt.Errorf("model: tactic %q already registered", b.tactic.Name)
	}
	b.reg.tactics[b.tactic.Name] = b.tactic
	return b.tactic, nil
}

// TemplateBuilder authors an AgentTemplate.
type TemplateBuilder struct {
	reg  *Registry
	tmpl *AgentTemplate
}

// Plans attaches committed plans (looked up by name) to the template,
// grouped under each plan's declared goal.
func (b *TemplateBuilder) Plans(names ...string) *TemplateBuilder {
	for _, n := range names {
		p, ok := b.reg.plans[n]
		if !ok {
			continue // surfaced as a Commit-time error below
		}
		b.tmpl.Plans[p.Goal] = append(b.tmpl.Plans[p.Goal], p)
	}
	b.tmpl.pendingPlanNames = append(b.tmpl.pendingPlanNames, names...)
	return b
}

// HandleAction attaches a committed action (by name) the template's agents
// can invoke.
func (b *TemplateBuilder) HandleAction(name string) *TemplateBuilder {
	b.tmpl.pendingActionNames = append(b.tmpl.pendingActionNames, name)
	return b
}

// HandleMessage registers a legacy direct handler for schema.
func (b *TemplateBuilder) HandleMessage(schema string, fn MessageHandler) *TemplateBuilder {
	b.tmpl.MessageHandlers[schema] = fn
	b.tmpl.DirectHandlers[schema] = true
	return b
}

// Resources attaches committed resource definitions (by name).
func (b *TemplateBuilder) Resources(names ...string) *TemplateBuilder {
	b.tmpl.pendingResourceNames = append(b.tmpl.pendingResourceNames, names...)
	return b
}

// Roles attaches committed roles (by name), used by team fan-out.
func (b *TemplateBuilder) Roles(names ...string) *TemplateBuilder {
	b.tmpl.pendingRoleNames = append(b.tmpl.pendingRoleNames, names...)
	return b
}

// Tactic sets the default tactic (by name) for one of the template's goals.
func (b *TemplateBuilder) Tactic(name string) *TemplateBuilder {
	b.tmpl.pendingTacticNames = append(b.tmpl.pendingTacticNames, name)
	return b
}

// Team marks the template as producing team-capable agents.
func (b *TemplateBuilder) Team() *TemplateBuilder { b.tmpl.IsTeam = true; return b }

// Proxy marks the template as producing proxy agents.
func (b *TemplateBuilder) Proxy() *TemplateBuilder { b.tmpl.IsProxy = true; return b }

func (b *TemplateBuilder) Commit() (*AgentTemplate, error) {
	b.reg.mu.Lock()
	defer b.reg.mu.Unlock()
	if err := b.reg.checkOpen(); err != nil {
		return nil, err
	}
	if b.tmpl.Name == "" {
		return nil, fmt.Errorf("model: template name cannot be empty")
	}
	for _, n := range b.tmpl.pendingActionNames {
		a, ok := b.reg.actions[n]
		if !ok {
			return nil, fmt.Errorf("model: template %q references unknown action %q", b.tmpl.Name, n)
		}
		b.tmpl.Actions[n] = a
	}
	for _, n := range b.tmpl.pendingResourceNames {
		r, ok := b.reg.resources[n]
		if !ok {
			return nil, fmt.Errorf("model: template %q references unknown resource %q", b.tmpl.Name, n)
		}
		b.tmpl.Resources[n] = r
	}
	for _, n := range b.tmpl.pendingRoleNames {
		r, ok := b.reg.roles[n]
		if !ok {
			return nil, fmt.Errorf("model: template %q references unknown role %q", b.tmpl.Name, n)
		}
		b.tmpl.Roles = append(b.tmpl.Roles, r)
	}
	for _, n := range b.tmpl.pendingPlanNames {
		if _, ok := b.reg.plans[n]; !ok {
			return nil, fmt.Errorf("model: template %q references unknown plan %q", b.tmpl.Name, n)
		}
	}
	for _, n := range b.tmpl.pendingTacticNames {
		t, ok := b.reg.tactics[n]
		if !ok {
			return nil, fmt.Errorf("model: template %q references unknown tactic %q", b.tmpl.Name, n)
		}
		b.tmpl.DefaultTactics[t.Goal] = t
	}
	if _, dup := b.reg.templates[b.tmpl.Name]; dup {
		return nil, fmt.Errorf("model: template %q already registered", b.tmpl.Name)
	}
	b.reg.templates[b.tmpl.Name] = b.tmpl
	return b.tmpl, nil
}
