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

// newAttachServiceCmd implements spec §8 scenario 6 (AttachService): a
// requester's plan calls an action its own template never registers, so
// handleAction forwards it to whichever service is attached. svcA is
// attached first and runs the action; detaching it leaves the action
// unhandled on the next pursue; attaching svcB and then force-replacing it
// with svcA again proves the replacement took by checking which agent's
// handle ac.Self() reports.
func newAttachServiceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach-service",
		Short: "forward an unhandled action to an attached service, then swap it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			reg := newRegistry()

			var ranOn []handle.Handle

			mustCommit(reg.NewAction("DoWork", func(ac model.ActionContext) model.ActionStatus {
				ranOn = append(ranOn, ac.Self())
				return model.ActionSuccess
			}).Commit())

			mustCommit(reg.NewGoal("WorkGoal").Commit())
			mustCommit(reg.NewPlan("WorkPlan").
				Handles("WorkGoal").
				Pre(func(proj *model.Projection, b model.Bindings) bool { return true }).
				Body(model.Action("DoWork")).
				Commit())

			mustCommit(reg.NewTemplate("Requester").
				Plans("WorkPlan").
				Commit())
			mustCommit(reg.NewService("Worker").
				HandleAction("DoWork").
				Commit())
			reg.Commit()

			eng := engine.New(engine.Options{Registry: reg})
			requester := eng.CreateAgent("Requester", "req", handle.Handle{})
			svcA := eng.CreateAgent("Worker", "svcA", handle.Handle{})
			svcB := eng.CreateAgent("Worker", "svcB", handle.Handle{})
			requester.Start()
			svcA.Start()
			svcB.Start()

			pursue := func(label string) {
				requester.Pursue("WorkGoal", false, nil, handle.Handle{})
				stats := pollN(ctx, eng, 50, 5*time.Millisecond)
				printStats(label, stats)
			}

			requester.AttachService(svcA.Handle, "Worker", false)
			pursue("attach-service, svcA attached")
			lastRanOnA := lastHandle(ranOn).Equal(svcA.Handle)

			requester.DetachService("Worker")
			pursue("attach-service, detached")
			unhandledAfterDetach := len(ranOn) == 1

			requester.AttachService(svcB.Handle, "Worker", false)
			pursue("attach-service, svcB attached")
			ranOnB := lastHandle(ranOn).Equal(svcB.Handle)

			requester.AttachService(svcA.Handle, "Worker", true)
			pursue("attach-service, force-replaced with svcA")
			ranOnAAgain := lastHandle(ranOn).Equal(svcA.Handle)

			fmt.Printf("ran on svcA first: %v, stayed unhandled after detach: %v, ran on svcB: %v, force-replace restored svcA: %v\n",
				lastRanOnA, unhandledAfterDetach, ranOnB, ranOnAAgain)
			fmt.Printf("total successful invocations: %d (want 3)\n", len(ranOn))
			return nil
		},
	}
}

func lastHandle(hs []handle.Handle) handle.Handle {
	if len(hs) == 0 {
		return handle.Handle{}
	}
	return hs[len(hs)-1]
}
