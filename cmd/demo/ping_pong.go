package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bdi.dev/engine/agent"
	"bdi.dev/engine/engine"
	"bdi.dev/engine/event"
	"bdi.dev/engine/handle"
	"bdi.dev/engine/message"
	"bdi.dev/engine/model"
)

// newPingPongCmd implements spec §8 scenario 4 (PingPong): bob
// (PingAgent) and sue (PongAgent) volley Ping/Pong messages through the
// legacy direct-handler path (spec §4.1 MESSAGE "deprecated_direct"),
// bumping a shared count each exchange and stopping once it passes 5.
// Both agents are expected to settle in STOPPED with count_last >= 6.
func newPingPongCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping-pong",
		Short: "two agents volley Ping/Pong messages until count > 5",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			reg := newRegistry()
			eng := engine.New(engine.Options{Registry: reg})

			var bob, sue *agent.Agent
			var countLast int

			send := func(from handle.Handle, to handle.Handle, schema string, count int) {
				msg := message.NewRecordFromMap(schema, map[string]any{"count": count})
				ev := event.NewMessageEvent(from, msg, true)
				ev.Envelope = ev.Envelope.WithRecipient(to)
				eng.Route(ev)
			}

			onPing := func(ac model.ActionContext, msg message.Message) {
				countLast = intField(msg)
				if countLast > 5 {
					bob.Stop()
					sue.Stop()
					return
				}
				send(sue.Handle, bob.Handle, "pong.v1", countLast+1)
			}
			onPong := func(ac model.ActionContext, msg message.Message) {
				countLast = intField(msg)
				if countLast > 5 {
					bob.Stop()
					sue.Stop()
					return
				}
				send(bob.Handle, sue.Handle, "ping.v1", countLast+1)
			}

			mustCommit(reg.NewTemplate("PingAgent").
				HandleMessage("pong.v1", onPong).
				Commit())
			mustCommit(reg.NewTemplate("PongAgent").
				HandleMessage("ping.v1", onPing).
				Commit())
			reg.Commit()

			bob = eng.CreateAgent("PingAgent", "bob", handle.Handle{})
			sue = eng.CreateAgent("PongAgent", "sue", handle.Handle{})
			bob.Start()
			sue.Start()

			send(bob.Handle, sue.Handle, "ping.v1", 1)

			stats := pollN(ctx, eng, 200, 5*time.Millisecond)
			printStats("ping-pong, 200 polls", stats)
			fmt.Printf("bob state: %v, sue state: %v (want both STOPPED), count_last: %d (want >= 6)\n",
				bob.State(), sue.State(), countLast)
			return nil
		},
	}
}

func intField(msg message.Message) int {
	v, _ := msg.Get("count")
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}
