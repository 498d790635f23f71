package engine

import (
	"context"

	"bdi.dev/engine/event"
	"bdi.dev/engine/handle"
	"bdi.dev/engine/model"
)

// Route implements agent.Router: deliver ev to the agent its Recipient
// names, best-effort (spec §7 TransportLoss — an unknown recipient is
// logged, never returned as an error to the raising agent). A REGISTER
// event is the one type the dispatcher never handles locally (spec §4.1);
// it is the event-driven path onto CreateAgent/AddMember, complementing
// the direct Engine.CreateAgent call.
func (e *Engine) Route(ev event.Event) {
	if reg, ok := ev.(*event.RegisterEvent); ok {
		e.handleRegister(reg)
		return
	}

	recipient := ev.Recipient()
	if !recipient.Valid() {
		e.logger.Warn(context.Background(), "dropping event with no recipient", "type", ev.Type().String())
		return
	}
	target, ok := e.Agent(recipient)
	if !ok {
		e.logger.Warn(context.Background(), "transport loss: unknown recipient", "type", ev.Type().String(), "recipient", recipient.String())
		return
	}
	target.Raise(ev)
}

func (e *Engine) handleRegister(reg *event.RegisterEvent) {
	a := e.CreateAgent(reg.Template, reg.Name, handle.Handle{})
	if a == nil {
		return
	}
	if reg.Team.Valid() {
		e.AddMember(reg.Team, a.Handle)
	}
}

// TeamMembers implements agent.Router.
func (e *Engine) TeamMembers(team handle.Handle) []handle.Handle {
	e.mu.RLock()
	defer e.mu.RUnlock()
	members := e.membership.teamMembers[team]
	if len(members) == 0 {
		return nil
	}
	return append([]handle.Handle(nil), members...)
}

// MemberTeams implements agent.Router.
func (e *Engine) MemberTeams(member handle.Handle) []handle.Handle {
	e.mu.RLock()
	defer e.mu.RUnlock()
	teams := e.membership.memberTeams[member]
	if len(teams) == 0 {
		return nil
	}
	return append([]handle.Handle(nil), teams...)
}

// MemberRoles implements agent.Router.
func (e *Engine) MemberRoles(member handle.Handle) []*model.Role {
	a, ok := e.Agent(member)
	if !ok {
		return nil
	}
	return a.Template.Roles
}
