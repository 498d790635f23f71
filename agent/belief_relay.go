package agent

import (
	"context"
	"time"

	"bdi.dev/engine/event"
	"bdi.dev/engine/handle"
	"bdi.dev/engine/model"
)

// processSharedBeliefs implements spec §4.7/§4.8 step 5: push this
// agent's own belief deltas up to its teams when due, and, for a team
// agent, fan every newly-updated shared entry back out to the other
// members entitled to read it.
func (a *Agent) processSharedBeliefs(ctx context.Context) {
	if a.Router == nil {
		return
	}
	now := a.Clock.Now()
	idle := a.executorIdle()
	if a.Belief.ShouldShare(now, idle) {
		a.shareOwnBeliefs(ctx, now)
		a.Belief.MarkShared(now)
	}
	if a.IsTeam() {
		a.fanOutToMembers(ctx)
	}
}

// shareOwnBeliefs pushes every locally-held belief message whose owning
// role grants write access up to each team this agent belongs to.
func (a *Agent) shareOwnBeliefs(ctx context.Context, now time.Time) {
	teams := a.Router.MemberTeams(a.Handle)
	if len(teams) == 0 {
		return
	}
	roles := a.Template.Roles
	for schema, msg := range a.Belief.Messages() {
		if !anyRoleCanWrite(roles, schema) {
			continue
		}
		for _, team := range teams {
			ev := event.NewShareBeliefSetEvent(a.Handle, a.Handle, schema, msg, now.UnixMilli())
			ev.Envelope = ev.Envelope.WithRecipient(team)
			a.Router.Route(ev)
		}
	}
}

// fanOutToMembers forwards every shared-beliefset entry this team has
// received that changed since the last fan-out, to every other member
// whose role grants read access, per spec §4.7's "never echo back to the
// originator" rule.
func (a *Agent) fanOutToMembers(ctx context.Context) {
	for _, schema := range a.Belief.SharedSchemas() {
		entries := a.Belief.SharedEntries(schema)
		for owner, entry := range entries {
			seenBySchema, ok := a.fanoutSeen[schema]
			if !ok {
				seenBySchema = map[handle.Handle]int64{}
				a.fanoutSeen[schema] = seenBySchema
			}
			if prev, ok := seenBySchema[owner]; ok && prev == entry.UpdatedAt {
				continue
			}
			seenBySchema[owner] = entry.UpdatedAt

			for _, member := range a.members {
				if member.Equal(owner) {
					continue
				}
				if !anyRoleCanRead(a.Router.MemberRoles(member), schema) {
					continue
				}
				ev := event.NewShareBeliefSetEvent(a.Handle, owner, schema, entry.Msg, entry.UpdatedAt)
				ev.Envelope = ev.Envelope.WithRecipient(member)
				a.Router.Route(ev)
			}
		}
	}
}

func anyRoleCanWrite(roles []*model.Role, schema string) bool {
	for _, r := range roles {
		if r.CanWriteToTeam(schema) {
			return true
		}
	}
	return false
}

func anyRoleCanRead(roles []*model.Role, schema string) bool {
	for _, r := range roles {
		if r.CanReadFromTeam(schema) {
			return true
		}
	}
	return false
}
