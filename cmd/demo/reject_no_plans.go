package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bdi.dev/engine/engine"
	"bdi.dev/engine/handle"
)

// newRejectNoPlansCmd implements spec §8 scenario 3: an agent whose
// template carries no plan for a goal drops the desire instead of
// stalling on it forever.
func newRejectNoPlansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reject-no-plans",
		Short: "pursuing a goal with no plans drops the desire",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			reg := newRegistry()

			mustCommit(reg.NewGoal("Goal").Commit())
			mustCommit(reg.NewTemplate("NoPlansAgent").Commit())
			reg.Commit()

			eng := engine.New(engine.Options{Registry: reg})
			a := eng.CreateAgent("NoPlansAgent", "hopeless", handle.Handle{})
			a.Start()
			a.Pursue("Goal", false, nil, handle.Handle{})

			stats := pollN(ctx, eng, 32, 10*time.Millisecond)
			printStats("reject-no-plans, 32 polls", stats)
			fmt.Printf("live desires: %d (want 0)\n", len(a.Desires()))
			return nil
		},
	}
}
