package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bdi.dev/engine/agent"
	"bdi.dev/engine/engine"
	"bdi.dev/engine/handle"
	"bdi.dev/engine/model"
)

// newPlanSwitchCmd implements spec §8 scenario 2 (PlanSwitch): plan A's
// precondition holds until its action flips a belief and forces an
// immediate reschedule, at which point plan B's precondition takes over
// and its action stops the agent. Both plans are expected to run.
func newPlanSwitchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan-switch",
		Short: "action A forces a reschedule onto plan B",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			reg := newRegistry()

			switchPlans := false
			var planARan, planBRan bool
			var a *agent.Agent

			mustCommit(reg.NewAction("ActionA", func(ac model.ActionContext) model.ActionStatus {
				planARan = true
				switchPlans = true
				ac.ForceReschedule()
				return model.ActionSuccess
			}).Commit())
			mustCommit(reg.NewAction("ActionB", func(ac model.ActionContext) model.ActionStatus {
				planBRan = true
				if a != nil {
					a.Stop()
				}
				return model.ActionSuccess
			}).Commit())

			mustCommit(reg.NewGoal("SwitchGoal").Commit())
			mustCommit(reg.NewPlan("PlanA").
				Handles("SwitchGoal").
				Pre(func(proj *model.Projection, b model.Bindings) bool { return !switchPlans }).
				Body(model.Action("ActionA")).
				Commit())
			mustCommit(reg.NewPlan("PlanB").
				Handles("SwitchGoal").
				Pre(func(proj *model.Projection, b model.Bindings) bool { return switchPlans }).
				Body(model.Action("ActionB")).
				Commit())
			mustCommit(reg.NewTemplate("PlanSwitchAgent").
				Plans("PlanA", "PlanB").
				HandleAction("ActionA").
				HandleAction("ActionB").
				Commit())
			reg.Commit()

			eng := engine.New(engine.Options{Registry: reg})
			a = eng.CreateAgent("PlanSwitchAgent", "switcher", handle.Handle{})

			a.Pursue("SwitchGoal", true, nil, handle.Handle{})
			a.Start()
			stats := pollN(ctx, eng, 200, 10*time.Millisecond)
			printStats("plan-switch, 200 polls", stats)
			fmt.Printf("PlanA ran: %v, PlanB ran: %v (want both true)\n", planARan, planBRan)
			return nil
		},
	}
}
