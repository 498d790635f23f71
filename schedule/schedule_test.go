package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bdi.dev/engine/belief"
	"bdi.dev/engine/handle"
	"bdi.dev/engine/model"
	"bdi.dev/engine/schedule"
)

func TestAdvanceFindsCheapestFeasiblePlan(t *testing.T) {
	bctx := belief.New()
	bctx.DefineResource(&model.ResourceDef{Name: "fuel", Min: 0, Max: 10})
	bctx.ApplyResourceDelta("fuel", 10)

	goal := &model.Goal{Handle: handle.New("Goal"), Name: "Goal"}
	cheap := &model.Plan{Handle: handle.New("Cheap"), Name: "Cheap", Goal: "Goal",
		Cost: func(*model.Projection, model.Bindings) float64 { return 1 }}
	expensive := &model.Plan{Handle: handle.New("Expensive"), Name: "Expensive", Goal: "Goal",
		Cost: func(*model.Projection, model.Bindings) float64 { return 5 }}

	desire := &schedule.Desire{Handle: handle.New("d1"), Goal: goal, InsertionOrder: 0}

	deps := schedule.Deps{
		PlansFor: func(goal string) []*model.Plan { return []*model.Plan{expensive, cheap} },
		TacticFor: func(goal string) *model.Tactic { return nil },
	}

	p := schedule.New(bctx, []*schedule.Desire{desire}, deps)
	res := p.Advance(schedule.MaxIterations)
	require.Equal(t, schedule.StatusFinished, res.Status)
	require.Len(t, res.Intentions, 1)
	require.Equal(t, "Cheap", res.Intentions[0].PlanName)
}

func TestAdvanceRejectsOverResourcePlan(t *testing.T) {
	bctx := belief.New()
	bctx.DefineResource(&model.ResourceDef{Name: "fuel", Min: 0, Max: 10})

	goal := &model.Goal{Handle: handle.New("Goal"), Name: "Goal"}
	thirsty := &model.Plan{Handle: handle.New("Thirsty"), Name: "Thirsty", Goal: "Goal",
		ResourceUsage: []model.ResourceUsage{{Name: "fuel", Amount: 100}}}

	desire := &schedule.Desire{Handle: handle.New("d1"), Goal: goal}
	deps := schedule.Deps{
		PlansFor:  func(goal string) []*model.Plan { return []*model.Plan{thirsty} },
		TacticFor: func(goal string) *model.Tactic { return nil },
	}

	p := schedule.New(bctx, []*schedule.Desire{desire}, deps)
	res := p.Advance(schedule.MaxIterations)
	require.Equal(t, schedule.StatusFailed, res.Status)
}

func TestAdvanceParksDelegatedDesireAndResolvesAuction(t *testing.T) {
	bctx := belief.New()
	goal := &model.Goal{Handle: handle.New("Goal"), Name: "Goal"}
	member := handle.New("member-a")

	desire := &schedule.Desire{Handle: handle.New("d1"), Goal: goal, Delegated: true}
	deps := schedule.Deps{
		PlansFor:   func(goal string) []*model.Plan { return nil },
		TacticFor:  func(goal string) *model.Tactic { return nil },
		Candidates: func(goal string) []handle.Handle { return []handle.Handle{member} },
	}

	p := schedule.New(bctx, []*schedule.Desire{desire}, deps)
	res := p.Advance(schedule.MaxIterations)
	require.Equal(t, schedule.StatusPendingAuction, res.Status)
	require.Len(t, res.Delegations, 1)
	require.True(t, p.Pending())

	p.ResolveAuction(res.Delegations[0].ScheduleID, member, 2.5, true)
	require.False(t, p.Pending())

	res = p.Advance(schedule.MaxIterations)
	require.Equal(t, schedule.StatusFinished, res.Status)
	require.Len(t, res.Intentions, 1)
	require.True(t, res.Intentions[0].Delegate.Equal(member))
}

func TestCandidatePlansExcludePolicySkipsFailedPlan(t *testing.T) {
	bctx := belief.New()
	goal := &model.Goal{Handle: handle.New("Goal"), Name: "Goal"}
	a := &model.Plan{Handle: handle.New("A"), Name: "A", Goal: "Goal"}
	b := &model.Plan{Handle: handle.New("B"), Name: "B", Goal: "Goal"}
	tactic := &model.Tactic{Name: "T", Goal: "Goal", AllowedPlans: []string{"A", "B"}, Policy: model.PolicyExclude}

	desire := &schedule.Desire{Handle: handle.New("d1"), Goal: goal, FailedPlans: map[string]bool{"A": true}}
	deps := schedule.Deps{
		PlansFor:  func(goal string) []*model.Plan { return []*model.Plan{a, b} },
		TacticFor: func(goal string) *model.Tactic { return tactic },
	}

	p := schedule.New(bctx, []*schedule.Desire{desire}, deps)
	res := p.Advance(schedule.MaxIterations)
	require.Equal(t, schedule.StatusFinished, res.Status)
	require.Equal(t, "B", res.Intentions[0].PlanName)
}
