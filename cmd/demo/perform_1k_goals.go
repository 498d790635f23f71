package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"bdi.dev/engine/engine"
	"bdi.dev/engine/handle"
	"bdi.dev/engine/model"
)

// newPerform1kGoalsCmd implements spec §8 scenario 7: the same
// non-persistent goal pursued 1000 times against one agent yields
// exactly 1000 action invocations and an empty desire set once the
// engine drains to idle.
func newPerform1kGoalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "perform-1k-goals",
		Short: "pursue the same non-persistent goal 1000 times",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			reg := newRegistry()

			count := 0
			mustCommit(reg.NewAction("BumpAction", func(ac model.ActionContext) model.ActionStatus {
				count++
				return model.ActionSuccess
			}).Commit())
			mustCommit(reg.NewGoal("BumpGoal").Commit())
			mustCommit(reg.NewPlan("BumpPlan").Handles("BumpGoal").Body(model.Action("BumpAction")).Commit())
			mustCommit(reg.NewTemplate("BumpAgent").
				Plans("BumpPlan").
				HandleAction("BumpAction").
				Commit())
			reg.Commit()

			eng := engine.New(engine.Options{Registry: reg})
			a := eng.CreateAgent("BumpAgent", "bumper", handle.Handle{})
			a.Start()

			const n = 1000
			for i := 0; i < n; i++ {
				a.Pursue("BumpGoal", false, nil, handle.Handle{})
			}

			stats := eng.Execute(ctx, 10000)
			printStats("perform-1k-goals, until idle", stats)
			fmt.Printf("invocations: %d (want %d), live desires: %d (want 0)\n", count, n, len(a.Desires()))
			return nil
		},
	}
}
