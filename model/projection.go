package model

import "bdi.dev/engine/message"

// Projection is a hypothetical belief view layered on top of a real
// BeliefView: it accumulates the resource deltas and message overrides a
// plan's effects closure would apply, without mutating the real context.
// The scheduler clones a Projection per search-node expansion.
type Projection struct {
	base             BeliefView
	resourceDeltas   map[string]int
	messageOverrides map[string]message.Message
	goalContext      message.Message
	hasGoalContext   bool
}

// NewProjection seeds a Projection from a real (or parent projected)
// BeliefView with no deltas applied yet.
func NewProjection(base BeliefView) *Projection {
	return &Projection{
		base:             base,
		resourceDeltas:   map[string]int{},
		messageOverrides: map[string]message.Message{},
	}
}

// Clone returns an independent copy so sibling search-node expansions do
// not observe each other's hypothetical effects.
func (p *Projection) Clone() *Projection {
	cp := &Projection{
		base:             p.base,
		resourceDeltas:   make(map[string]int, len(p.resourceDeltas)),
		messageOverrides: make(map[string]message.Message, len(p.messageOverrides)),
		goalContext:      p.goalContext,
		hasGoalContext:   p.hasGoalContext,
	}
	for k, v := range p.resourceDeltas {
		cp.resourceDeltas[k] = v
	}
	for k, v := range p.messageOverrides {
		cp.messageOverrides[k] = v
	}
	return cp
}

// Message returns an override if the projection has one, else falls
// through to the base view.
func (p *Projection) Message(schema string) (message.Message, bool) {
	if m, ok := p.messageOverrides[schema]; ok {
		return m, true
	}
	return p.base.Message(schema)
}

// Resource applies any accumulated delta on top of the base resource's
// current value. The result is not clamped: Current may fall outside
// [Min, Max], and callers compare it against those bounds themselves.
func (p *Projection) Resource(name string) (ResourceSnapshot, bool) {
	snap, ok := p.base.Resource(name)
	if !ok {
		return ResourceSnapshot{}, false
	}
	delta := p.resourceDeltas[name]
	snap.Current += delta
	return snap, true
}

// GoalContext returns the projection's goal context override if set, else
// the base's.
func (p *Projection) GoalContext() (message.Message, bool) {
	if p.hasGoalContext {
		return p.goalContext, true
	}
	return p.base.GoalContext()
}

// SetMessage records a hypothetical message write, visible to subsequent
// Message() lookups against this projection only.
func (p *Projection) SetMessage(msg message.Message) {
	p.messageOverrides[msg.SchemaName()] = msg
}

// SetGoalContext records a hypothetical goal-context override.
func (p *Projection) SetGoalContext(msg message.Message) {
	p.goalContext = msg
	p.hasGoalContext = true
}

// AdjustResource accumulates delta against the named resource. Multiple
// calls are additive within the same projection.
func (p *Projection) AdjustResource(name string, delta int) {
	p.resourceDeltas[name] += delta
}

// ResourceDelta returns the accumulated delta for name.
func (p *Projection) ResourceDelta(name string) int {
	return p.resourceDeltas[name]
}

// Deltas returns a defensive copy of all accumulated resource deltas.
func (p *Projection) Deltas() map[string]int {
	cp := make(map[string]int, len(p.resourceDeltas))
	for k, v := range p.resourceDeltas {
		cp[k] = v
	}
	return cp
}
