package model

import (
	"fmt"
	"sync"

	"bdi.dev/engine/handle"
	"bdi.dev/engine/message"
)

// Registry is the immutable catalogue of definitions: goals, plans, actions, resources, roles, tactics, and
// message schemas. It is mutable only via the fluent authoring API until
// Commit freezes it; afterward every lookup is lock-free and safe for
// concurrent reads from any number of agent goroutines.
type Registry struct {
	mu        sync.Mutex
	committed bool

	goals     map[string]*Goal
	plans     map[string]*Plan
	actions   map[string]*ActionDef
	resources map[string]*ResourceDef
	roles     map[string]*Role
	tactics   map[string]*Tactic
	templates map[string]*AgentTemplate
	schemas   map[string]*message.Schema

	schemaNames *message.Registry
}

// NewRegistry constructs an empty, uncommitted Registry.
func NewRegistry() *Registry {
	return &Registry{
		goals:       map[string]*Goal{},
		plans:       map[string]*Plan{},
		actions:     map[string]*ActionDef{},
		resources:   map[string]*ResourceDef{},
		roles:       map[string]*Role{},
		tactics:     map[string]*Tactic{},
		templates:   map[string]*AgentTemplate{},
		schemas:     map[string]*message.Schema{},
		schemaNames: message.NewRegistry(),
	}
}

// Commit freezes the registry. Subsequent authoring calls return an error.
func (r *Registry) Commit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = true
}

func (r *Registry) checkOpen() error {
	if r.committed {
		return fmt.Errorf("model: registry already committed")
	}
	return nil
}

// Goal looks up a committed goal template by name.
func (r *Registry) Goal(name string) (*Goal, bool) {
	g, ok := r.goals[name]
	return g, ok
}

// Plan looks up a committed plan by name.
func (r *Registry) Plan(name string) (*Plan, bool) {
	p, ok := r.plans[name]
	return p, ok
}

// Action looks up a committed action by name.
func (r *Registry) Action(name string) (*ActionDef, bool) {
	a, ok := r.actions[name]
	return a, ok
}

// Resource looks up a committed resource definition by name.
func (r *Registry) Resource(name string) (*ResourceDef, bool) {
	rd, ok := r.resources[name]
	return rd, ok
}

// Role looks up a committed role by name.
func (r *Registry) Role(name string) (*Role, bool) {
	ro, ok := r.roles[name]
	return ro, ok
}

// Tactic looks up a committed tactic by name.
func (r *Registry) Tactic(name string) (*Tactic, bool) {
	t, ok := r.tactics[name]
	return t, ok
}

// Template looks up a committed agent template by name.
func (r *Registry) Template(name string) (*AgentTemplate, bool) {
	t, ok := r.templates[name]
	return t, ok
}

// Schema looks up a committed message schema validator by name.
func (r *Registry) Schema(name string) (*message.Schema, bool) {
	s, ok := r.schemas[name]
	return s, ok
}

// NewGoal starts authoring a goal template.
func (r *Registry) NewGoal(name string) *GoalBuilder {
	return &GoalBuilder{reg: r, goal: &Goal{Handle: handle.New(name), Name: name}}
}

// NewPlan starts authoring a plan.
func (r *Registry) NewPlan(name string) *PlanBuilder {
	return &PlanBuilder{reg: r, plan: &Plan{Handle: handle.New(name), Name: name}}
}

// NewAction starts authoring an action.
func (r *Registry) NewAction(name string, h ActionHandler) *ActionBuilder {
	return &ActionBuilder{reg: r, action: &ActionDef{Handle: handle.New(name), Name: name, Handler: h}}
}

// NewResource starts authoring a resource definition.
func (r *Registry) NewResource(name string) *ResourceBuilder {
	return &ResourceBuilder{reg: r, def: &ResourceDef{Handle: handle.New(name), Name: name}}
}

// NewRole starts authoring a role.
func (r *Registry) NewRole(name string) *RoleBuilder {
	return &RoleBuilder{reg: r, role: &Role{Handle: handle.New(name), Name: name}}
}

// NewTactic starts authoring a tactic.
func (r *Registry) NewTactic(name string) *TacticBuilder {
	return &TacticBuilder{reg: r, tactic: &Tactic{Handle: handle.New(name), Name: name}}
}

// NewTemplate starts authoring an agent template.
func (r *Registry) NewTemplate(name string) *TemplateBuilder {
	return &TemplateBuilder{reg: r, tmpl: &AgentTemplate{
		Handle:          handle.New(name),
		Name:            name,
		Plans:           map[string][]*Plan{},
		Actions:         map[string]*ActionDef{},
		Resources:       map[string]*ResourceDef{},
		DefaultTactics:  map[string]*Tactic{},
		MessageHandlers: map[string]MessageHandler{},
		DirectHandlers:  map[string]bool{},
	}}
}

// NewMessageSchema registers a JSON-schema-validated message schema. doc is
// a JSON-schema document (e.g. map[string]any).
func (r *Registry) NewMessageSchema(name string, doc any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkOpen(); err != nil {
		return err
	}
	if err := r.schemaNames.Declare(name); err != nil {
		return err
	}
	s, err := message.Compile(name, doc)
	if err != nil {
		return err
	}
	r.schemas[name] = s
	return nil
}
