package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bdi.dev/engine/engine"
	"bdi.dev/engine/handle"
	"bdi.dev/engine/model"
)

// newStartStopCmd implements spec §8 scenario 1 (StartStop): a goal
// pursued before start() backlogs without ever running its plan; once
// started, the plan's action fires.
func newStartStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start-stop",
		Short: "pursue before start() backlogs; start() lets the plan run",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			reg := newRegistry()

			count := 0
			mustCommit(reg.NewAction("Plan1Action", func(ac model.ActionContext) model.ActionStatus {
				count++
				return model.ActionSuccess
			}).Commit())
			mustCommit(reg.NewGoal("Goal1").Commit())
			mustCommit(reg.NewPlan("Plan1").Handles("Goal1").Body(model.Action("Plan1Action")).Commit())
			mustCommit(reg.NewTemplate("StartStopAgent").
				Plans("Plan1").
				HandleAction("Plan1Action").
				Commit())
			reg.Commit()

			eng := engine.New(engine.Options{Registry: reg})
			a := eng.CreateAgent("StartStopAgent", "agent1", handle.Handle{})

			a.Pursue("Goal1", true, nil, handle.Handle{})
			stats := pollN(ctx, eng, 100, 10*time.Millisecond)
			printStats("before start, 100 polls", stats)
			fmt.Printf("Plan1Action invocations before start: %d (want 0)\n", count)

			a.Start()
			stats = pollN(ctx, eng, 100, 10*time.Millisecond)
			printStats("after start, 100 polls", stats)
			fmt.Printf("Plan1Action invocations after start: %d (want >= 1)\n", count)
			return nil
		},
	}
}
