// Package belief implements the agent's local Belief Context: stored
// messages by schema, bounded-integer resources with lock counts, the
// active desire's goal-context snapshot, and the shared-beliefset table
// used by the team relay.
package belief

import (
	"sync"
	"time"

	"bdi.dev/engine/handle"
	"bdi.dev/engine/message"
	"bdi.dev/engine/model"
)

// shareThreshold is the minimum gap between successive shares of a given
// agent's own belief deltas to its teams.
const shareThreshold = 500 * time.Millisecond

// SharedEntry is one (schema, owner) slot in a shared-beliefset table.
type SharedEntry struct {
	Msg       message.Message
	UpdatedAt int64 // unix millis
}

// Context is the mutable belief state owned by exactly one agent and
// touched on exactly one goroutine at a time. It implements
// model.BeliefView so authoring closures (satisfied/drop/heuristic,
// plan precondition/effects/cost) can read it without importing this
// package.
type Context struct {
	mu sync.Mutex

	messages    map[string]message.Message
	resources   *resourceTable
	goalContext message.Message
	hasGoal     bool

	// shared holds beliefs this agent has received, keyed by schema then
	// by the owning agent's handle id.
	shared map[string]map[handle.Handle]SharedEntry

	lastDirtied time.Time
	lastShared  time.Time
}

// New constructs an empty Context.
func New() *Context {
	return &Context{
		messages:  map[string]message.Message{},
		resources: newResourceTable(),
		shared:    map[string]map[handle.Handle]SharedEntry{},
	}
}

// DefineResource registers a resource definition's live runtime slot.
func (c *Context) DefineResource(def *model.ResourceDef) {
	c.resources.define(def)
}

// Message implements model.BeliefView.
func (c *Context) Message(schema string) (message.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.messages[schema]
	return m, ok
}

// Resource implements model.BeliefView.
func (c *Context) Resource(name string) (model.ResourceSnapshot, bool) {
	return c.resources.snapshot(name)
}

// GoalContext implements model.BeliefView.
func (c *Context) GoalContext() (message.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.goalContext, c.hasGoal
}

// SetGoalContext snapshots the parameters a newly-instantiated desire was
// pursued with.
func (c *Context) SetGoalContext(msg message.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.goalContext = msg
	c.hasGoal = true
}

// ClearGoalContext drops the goal-context snapshot, e.g. when the owning
// desire finishes.
func (c *Context) ClearGoalContext() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.goalContext = nil
	c.hasGoal = false
}

// AddMessage upserts msg under its own schema name and marks the context
// dirty for the sharing relay.
func (c *Context) AddMessage(now time.Time, msg message.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages[msg.SchemaName()] = msg
	c.lastDirtied = now
}

// ApplyResourceDelta mutates a real (non-hypothetical) resource by delta.
// A delta that would leave the declared bounds is rejected: the value is
// left unchanged and false is returned. It deliberately does not mark the
// context dirty for sharing: effect-closure mutations are hypothetical
// during search and only real PERCEPT/ACTION mutation paths call this
// directly, which do their own dirtying via MarkPerceptDirty.
func (c *Context) ApplyResourceDelta(name string, delta int) bool {
	return c.resources.apply(name, delta)
}

// MarkPerceptDirty records that a PERCEPT event mutated belief state,
// without itself storing a message.
func (c *Context) MarkPerceptDirty(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastDirtied = now
}

// LockResource increments the named resource's lock count.
func (c *Context) LockResource(name string) { c.resources.lock(name) }

// UnlockResource decrements the named resource's lock count.
func (c *Context) UnlockResource(name string) { c.resources.unlock(name) }

// ResourceLocked reports whether the named resource currently has any
// lock holders.
func (c *Context) ResourceLocked(name string) bool { return c.resources.isLocked(name) }

// UpsertShared stores or updates a shared-beliefset entry. It reports whether the entry's UpdatedAt actually
// changed, the signal the team fan-out pass uses to decide whether to
// forward it onward.
func (c *Context) UpsertShared(schema string, owner handle.Handle, msg message.Message, updatedAt int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	byOwner, ok := c.shared[schema]
	if !ok {
		byOwner = map[handle.Handle]SharedEntry{}
		c.shared[schema] = byOwner
	}
	prev, existed := byOwner[owner]
	if existed && prev.UpdatedAt == updatedAt {
		return false
	}
	byOwner[owner] = SharedEntry{Msg: msg, UpdatedAt: updatedAt}
	c.lastDirtied = time.UnixMilli(updatedAt)
	return true
}

// SharedEntries returns a defensive copy of every owner's entry for
// schema.
func (c *Context) SharedEntries(schema string) map[handle.Handle]SharedEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	byOwner := c.shared[schema]
	cp := make(map[handle.Handle]SharedEntry, len(byOwner))
	for k, v := range byOwner {
		cp[k] = v
	}
	return cp
}

// ShouldShare reports whether this agent's own belief deltas are due to
// be pushed to its teams, per spec §4.7: share when
// (last_dirtied - last_shared) >= 500ms, or when the executor is idle and
// a delta is outstanding (flushing a quiet agent's final delta). Either
// way there must be an actual delta since the last share — a dirty mark
// that predates the last share never re-triggers a send. The condition
// compares only the two stored timestamps; now does not enter into it.
func (c *Context) ShouldShare(now time.Time, executorIdle bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastDirtied.IsZero() || !c.lastDirtied.After(c.lastShared) {
		return false
	}
	if executorIdle {
		return true
	}
	return c.lastDirtied.Sub(c.lastShared) >= shareThreshold
}

// Messages returns a defensive copy of every locally-stored belief
// message, keyed by schema name, used by the sharing relay to decide what
// to push to this agent's teams.
func (c *Context) Messages() map[string]message.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make(map[string]message.Message, len(c.messages))
	for k, v := range c.messages {
		cp[k] = v
	}
	return cp
}

// SharedSchemas returns every schema name this context has received at
// least one shared-beliefset entry for, used by the team fan-out pass to
// know which tables to scan.
func (c *Context) SharedSchemas() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.shared))
	for schema := range c.shared {
		out = append(out, schema)
	}
	return out
}

// MarkShared records that a share just occurred at now.
func (c *Context) MarkShared(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastShared = now
}
